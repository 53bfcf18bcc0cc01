package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalDisk(t *testing.T) {
	ctx := context.Background()
	d, err := NewLocal(t.TempDir(), "http://cdn.test/storage/")
	require.NoError(t, err)

	assert.False(t, d.Exists(ctx, "media/hero.jpg"))

	require.NoError(t, d.Put(ctx, "media/hero.jpg", []byte("img")))
	assert.True(t, d.Exists(ctx, "media/hero.jpg"))

	got, err := d.Get(ctx, "/media/hero.jpg")
	require.NoError(t, err)
	assert.Equal(t, []byte("img"), got)

	assert.Equal(t, "http://cdn.test/storage/media/hero.jpg", d.URL("media/hero.jpg"))

	require.NoError(t, d.Delete(ctx, "media/hero.jpg"))
	require.NoError(t, d.Delete(ctx, "media/hero.jpg"))

	_, err = d.Get(ctx, "media/hero.jpg")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOpenUnknownDisk(t *testing.T) {
	_, err := Open("ftp")
	assert.Error(t, err)
}
