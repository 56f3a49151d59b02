package blobstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Put(ctx, "k", []byte("value")))

	blob, err := s.Open(ctx, "k")
	require.NoError(t, err)
	defer blob.Close()

	data, err := ReadAll(ctx, blob)
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), data)
}

func TestMemoryStoreIsolation(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	original := []byte("abc")
	require.NoError(t, s.Put(ctx, "k", original))

	// Mutating the caller's slice after Put must not affect the store.
	original[0] = 'z'

	blob, err := s.Open(ctx, "k")
	require.NoError(t, err)
	defer blob.Close()
	data, err := ReadAll(ctx, blob)
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), data)
}

func TestMemoryStoreMissing(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.Open(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreList(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Put(ctx, "a/1", nil))
	require.NoError(t, s.Put(ctx, "a/2", nil))
	require.NoError(t, s.Put(ctx, "b/1", nil))

	names, err := s.List(ctx, "a/")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a/1", "a/2"}, names)
}
