package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteReadRoundTrip(t *testing.T) {
	req := require.New(t)
	store, err := NewLocalStorage(t.TempDir())
	req.NoError(err)
	ctx := context.Background()

	content := "hello, storage"
	req.NoError(store.Write(ctx, "greeting.txt", strings.NewReader(content), int64(len(content)), "text/plain"))

	rc, err := store.Read(ctx, "greeting.txt")
	req.NoError(err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	req.NoError(err)
	req.Equal(content, string(data))
}

func TestWriteOverwritesExisting(t *testing.T) {
	req := require.New(t)
	store, err := NewLocalStorage(t.TempDir())
	req.NoError(err)
	ctx := context.Background()

	req.NoError(store.Write(ctx, "file.txt", strings.NewReader("first"), 5, "text/plain"))
	req.NoError(store.Write(ctx, "file.txt", strings.NewReader("second"), 6, "text/plain"))

	rc, err := store.Read(ctx, "file.txt")
	req.NoError(err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	req.NoError(err)
	req.Equal("second", string(data))
}

func TestExistsAndDelete(t *testing.T) {
	req := require.New(t)
	store, err := NewLocalStorage(t.TempDir())
	req.NoError(err)
	ctx := context.Background()

	ok, err := store.Exists(ctx, "missing.txt")
	req.NoError(err)
	req.False(ok)

	req.NoError(store.Write(ctx, "present.txt", strings.NewReader("x"), 1, "text/plain"))
	ok, err = store.Exists(ctx, "present.txt")
	req.NoError(err)
	req.True(ok)

	req.NoError(store.Delete(ctx, "present.txt"))
	ok, err = store.Exists(ctx, "present.txt")
	req.NoError(err)
	req.False(ok)

	// Deleting something already gone is not an error.
	req.NoError(store.Delete(ctx, "present.txt"))
}

func TestList(t *testing.T) {
	req := require.New(t)
	store, err := NewLocalStorage(t.TempDir())
	req.NoError(err)
	ctx := context.Background()

	for _, key := range []string{"a.txt", "nested/b.txt", "nested/deep/c.txt"} {
		req.NoError(store.Write(ctx, key, strings.NewReader("content"), 7, "text/plain"))
	}

	files, err := store.List(ctx, "nested")
	req.NoError(err)
	keys := make([]string, 0, len(files))
	for _, f := range files {
		keys = append(keys, f.Key)
	}
	req.ElementsMatch([]string{
		filepath.Join("nested", "b.txt"),
		filepath.Join("nested", "deep", "c.txt"),
	}, keys)
}

func TestTraversalKeysStayInsideBase(t *testing.T) {
	req := require.New(t)

	base := t.TempDir()
	outside := filepath.Join(filepath.Dir(base), "escape.txt")
	store, err := NewLocalStorage(base)
	req.NoError(err)
	ctx := context.Background()

	// The write may fail outright; what matters is that no file lands
	// outside the base directory.
	_ = store.Write(ctx, "../escape.txt", strings.NewReader("x"), 1, "text/plain")

	_, err = os.Stat(outside)
	req.True(os.IsNotExist(err), "write escaped the base directory")
}

func TestReadMissingKey(t *testing.T) {
	req := require.New(t)
	store, err := NewLocalStorage(t.TempDir())
	req.NoError(err)

	_, err = store.Read(context.Background(), "nope.txt")
	req.Error(err)
}
