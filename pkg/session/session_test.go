package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sparkcrackers/storefront/pkg/crypt"
	"github.com/sparkcrackers/storefront/pkg/storage"
)

func exerciseStore(t *testing.T, st Store) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := st.Get(ctx, KeyToken)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, st.Set(ctx, KeyToken, "abc"))
	require.NoError(t, st.Set(ctx, KeyUser, `{"_id":"u1"}`))

	v, ok, err := st.Get(ctx, KeyToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abc", v)

	require.NoError(t, st.Delete(ctx, KeyToken, KeyUser))
	_, ok, _ = st.Get(ctx, KeyToken)
	assert.False(t, ok)
	_, ok, _ = st.Get(ctx, KeyUser)
	assert.False(t, ok)

	// deleting again is not an error
	assert.NoError(t, st.Delete(ctx, KeyToken))
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemory())
}

func TestDiskStore(t *testing.T) {
	disk, err := storage.NewLocal(t.TempDir(), "")
	require.NoError(t, err)
	exerciseStore(t, NewDisk(disk, "session"))
}

func TestSealedStoreEncryptsToken(t *testing.T) {
	ctx := context.Background()
	inner := NewMemory()
	box, err := crypt.NewBox("test-key")
	require.NoError(t, err)

	st := Sealed(inner, box, KeyToken)
	exerciseStore(t, st)

	require.NoError(t, st.Set(ctx, KeyToken, "secret-token"))
	require.NoError(t, st.Set(ctx, KeyUser, "plain"))

	raw, _, _ := inner.Get(ctx, KeyToken)
	assert.NotEqual(t, "secret-token", raw)
	rawUser, _, _ := inner.Get(ctx, KeyUser)
	assert.Equal(t, "plain", rawUser)

	v, ok, err := st.Get(ctx, KeyToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "secret-token", v)
}

func TestSealedStoreUnreadableValueIsMissing(t *testing.T) {
	ctx := context.Background()
	inner := NewMemory()
	box, _ := crypt.NewBox("k")
	require.NoError(t, inner.Set(ctx, KeyToken, "garbage"))

	_, ok, err := Sealed(inner, box, KeyToken).Get(ctx, KeyToken)
	require.NoError(t, err)
	assert.False(t, ok)
}
