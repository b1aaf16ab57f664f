package objectstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorePutCopiesData(t *testing.T) {
	store := NewMemory()
	data := []byte("id-card-bytes")

	obj, err := store.Put(context.Background(), "verifications/t1/id", data, "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "mem://verifications/t1/id", obj.URL)

	data[0] = 'X'
	stored, ok := store.Get("verifications/t1/id")
	require.True(t, ok)
	assert.Equal(t, "id-card-bytes", string(stored))
}
