package uploads

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewUploadID(t *testing.T) {
	t.Parallel()

	id := NewUploadID()
	require.True(t, strings.HasPrefix(id, "upload_"))
	require.NotEqual(t, id, NewUploadID())
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.Get(ctx, "upload_missing")
	require.ErrorIs(t, err, ErrNotFound)

	data := []byte("phone number\r\n07700 900321\r\n")
	require.NoError(t, store.Put(ctx, "upload_1", data))

	got, err := store.Get(ctx, "upload_1")
	require.NoError(t, err)
	require.Equal(t, data, got)

	// callers can't mutate stored bytes
	got[0] = 'X'
	got, err = store.Get(ctx, "upload_1")
	require.NoError(t, err)
	require.Equal(t, data, got)
}
