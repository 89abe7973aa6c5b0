package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalPutGetDelete(t *testing.T) {
	ctx := context.Background()
	d, err := NewLocal(t.TempDir(), "http://localhost:3000/storage/")
	require.NoError(t, err)

	require.NoError(t, d.Put(ctx, "foods/a.jpg", strings.NewReader("jpeg"), "image/jpeg"))

	ok, err := d.Exists(ctx, "foods/a.jpg")
	require.NoError(t, err)
	assert.True(t, ok)

	rc, err := d.Get(ctx, "foods/a.jpg")
	require.NoError(t, err)
	data, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "jpeg", string(data))

	assert.Equal(t, "http://localhost:3000/storage/foods/a.jpg", d.URL("foods/a.jpg"))

	require.NoError(t, d.Delete(ctx, "foods/a.jpg"))
	require.NoError(t, d.Delete(ctx, "foods/a.jpg"))
	_, err = d.Get(ctx, "foods/a.jpg")
	assert.ErrorIs(t, err, ErrNotExist)
}

func TestLocalPathStaysInsideRoot(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	d, err := NewLocal(root, "")
	require.NoError(t, err)

	require.NoError(t, d.Put(ctx, "../../escape.txt", strings.NewReader("x"), ""))
	ok, err := d.Exists(ctx, "escape.txt")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(Config{Driver: "ftp"})
	assert.Error(t, err)
}
