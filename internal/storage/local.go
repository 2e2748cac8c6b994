package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

// localStorage implements Storage on a single flat directory on disk.
// Keys are bare filenames; collision avoidance is the caller's concern
// (upload keys carry a timestamp and random suffix).
type localStorage struct {
	dir string
}

// NewLocal creates a filesystem-backed blob store rooted at dir,
// creating the directory if it does not exist.
func NewLocal(dir string) (Storage, error) {
	if dir == "" {
		return nil, fmt.Errorf("storage directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	return &localStorage{dir: dir}, nil
}

// keyPath validates a key and resolves it inside the storage directory.
// Keys are flat names; anything path-like is rejected.
func (l *localStorage) keyPath(key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("blob key is required")
	}
	if strings.ContainsAny(key, `/\`) || key != filepath.Base(key) {
		return "", fmt.Errorf("invalid blob key %q", key)
	}
	return filepath.Join(l.dir, key), nil
}

func (l *localStorage) Put(ctx context.Context, key string, r io.Reader, opt PutOptions) (BlobInfo, error) {
	path, err := l.keyPath(key)
	if err != nil {
		return BlobInfo{}, err
	}

	f, err := os.Create(path)
	if err != nil {
		return BlobInfo{}, fmt.Errorf("create blob file: %w", err)
	}

	_, err = io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		// Do not leave a truncated blob behind.
		_ = os.Remove(path)
		return BlobInfo{}, fmt.Errorf("write blob file: %w", err)
	}

	st, err := os.Stat(path)
	if err != nil {
		return BlobInfo{}, fmt.Errorf("stat blob file: %w", err)
	}

	return BlobInfo{
		Key:          key,
		Size:         st.Size(),
		ContentType:  contentTypeFor(key, opt.ContentType),
		LastModified: st.ModTime(),
	}, nil
}

func (l *localStorage) Get(ctx context.Context, key string) (io.ReadCloser, BlobInfo, error) {
	path, err := l.keyPath(key)
	if err != nil {
		return nil, BlobInfo{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, BlobInfo{}, fmt.Errorf("%w: %s", ErrNotExist, key)
		}
		return nil, BlobInfo{}, fmt.Errorf("open blob file: %w", err)
	}

	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, BlobInfo{}, fmt.Errorf("stat blob file: %w", err)
	}

	info := BlobInfo{
		Key:          key,
		Size:         st.Size(),
		ContentType:  contentTypeFor(key, ""),
		LastModified: st.ModTime(),
	}
	return f, info, nil
}

func (l *localStorage) Delete(ctx context.Context, key string) error {
	path, err := l.keyPath(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove blob file: %w", err)
	}
	return nil
}

// contentTypeFor prefers an explicitly declared content type and falls back
// to the key's extension.
func contentTypeFor(key, declared string) string {
	if declared != "" {
		return declared
	}
	if ct := mime.TypeByExtension(filepath.Ext(key)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
