package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLocal(t *testing.T) {
	t.Run("creates directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "uploads")
		_, err := NewLocal(dir)
		require.NoError(t, err)

		st, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, st.IsDir())
	})

	t.Run("empty dir rejected", func(t *testing.T) {
		_, err := NewLocal("")
		assert.Error(t, err)
	})
}

func TestLocalStorage_PutGet(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	content := "%PDF-1.4 fake pdf bytes"
	info, err := store.Put(ctx, "file-1700000000000-12345.pdf", strings.NewReader(content), PutOptions{
		Size:        int64(len(content)),
		ContentType: "application/pdf",
	})
	require.NoError(t, err)
	assert.Equal(t, "file-1700000000000-12345.pdf", info.Key)
	assert.Equal(t, int64(len(content)), info.Size)
	assert.Equal(t, "application/pdf", info.ContentType)

	rc, got, err := store.Get(ctx, "file-1700000000000-12345.pdf")
	require.NoError(t, err)
	defer rc.Close()

	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, content, string(b))
	assert.Equal(t, int64(len(content)), got.Size)
	assert.Equal(t, "application/pdf", got.ContentType)
}

func TestLocalStorage_GetMissing(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	_, _, err = store.Get(ctx, "file-0-0.pdf")
	assert.True(t, errors.Is(err, ErrNotExist))
}

func TestLocalStorage_Delete(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	_, err = store.Put(ctx, "file-1-1.pdf", strings.NewReader("x"), PutOptions{Size: 1})
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, "file-1-1.pdf"))
	_, _, err = store.Get(ctx, "file-1-1.pdf")
	assert.True(t, errors.Is(err, ErrNotExist))

	// Deleting an absent key is not an error.
	assert.NoError(t, store.Delete(ctx, "file-1-1.pdf"))
}

func TestLocalStorage_RejectsPathKeys(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"", "../escape.pdf", "a/b.pdf", `a\b.pdf`} {
		_, _, err := store.Get(ctx, key)
		assert.Error(t, err, "key %q", key)
		assert.False(t, errors.Is(err, ErrNotExist), "key %q", key)
	}
}
