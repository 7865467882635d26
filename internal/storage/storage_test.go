package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskStorageRoundTrip(t *testing.T) {
	store, err := NewDiskStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	n, err := store.Save(ctx, "avatar/7.png", strings.NewReader("png bytes"))
	require.NoError(t, err)
	assert.Equal(t, int64(len("png bytes")), n)

	rc, err := store.Get(ctx, "avatar/7.png")
	require.NoError(t, err)
	defer rc.Close()
	content, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "png bytes", string(content))
}

func TestDiskStorageSaveOverwrites(t *testing.T) {
	store, err := NewDiskStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	_, err = store.Save(ctx, "avatar/7.png", strings.NewReader("old"))
	require.NoError(t, err)
	_, err = store.Save(ctx, "avatar/7.png", strings.NewReader("new"))
	require.NoError(t, err)

	rc, err := store.Get(ctx, "avatar/7.png")
	require.NoError(t, err)
	defer rc.Close()
	content, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "new", string(content))
}

func TestDiskStorageRejectsTraversal(t *testing.T) {
	store, err := NewDiskStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	for _, path := range []string{"../outside", "a/../../outside", "/etc/passwd", "."} {
		_, err := store.Save(ctx, path, strings.NewReader("x"))
		assert.ErrorIs(t, err, ErrInvalidPath, "path %q", path)
		_, err = store.Get(ctx, path)
		assert.ErrorIs(t, err, ErrInvalidPath, "path %q", path)
	}
}

func TestDiskStorageDelete(t *testing.T) {
	store, err := NewDiskStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	_, err = store.Save(ctx, "tasks/1/report.pdf", strings.NewReader("pdf"))
	require.NoError(t, err)
	require.NoError(t, store.Delete(ctx, "tasks/1/report.pdf"))

	_, err = store.Get(ctx, "tasks/1/report.pdf")
	assert.Error(t, err)

	// Deleting a file that is already gone is fine.
	assert.NoError(t, store.Delete(ctx, "tasks/1/report.pdf"))
}
