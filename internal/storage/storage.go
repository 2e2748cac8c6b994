package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// Package storage contains the blob store abstraction the paper catalog keeps
// uploaded PDFs in. Two implementations exist: a flat local directory (the
// default) and an S3-compatible object store. Both address blobs by the key
// recorded on the paper.

// ErrNotExist is returned by Get when no blob exists under the requested key.
// Callers use it to distinguish a missing file from an unreachable backend.
var ErrNotExist = errors.New("blob does not exist")

// PutOptions define optional parameters for storing blobs.
// Size should be the exact number of bytes if known; if unknown, set to -1
// and the implementation will buffer/chunk as supported by the backend.
type PutOptions struct {
	Size        int64
	ContentType string
}

// BlobInfo contains basic information about a stored blob.
type BlobInfo struct {
	Key          string
	Size         int64
	ContentType  string
	LastModified time.Time
}

// Storage is the blob store interface. Methods use context and streaming
// readers; nothing is buffered whole in memory.
type Storage interface {
	// Put stores a blob under the given key from the provided reader.
	Put(ctx context.Context, key string, r io.Reader, opt PutOptions) (BlobInfo, error)
	// Get retrieves a blob's content as a streaming reader alongside its info.
	// Returns an error wrapping ErrNotExist when the key is absent.
	Get(ctx context.Context, key string) (io.ReadCloser, BlobInfo, error)
	// Delete removes a blob by key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
