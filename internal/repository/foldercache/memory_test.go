package foldercache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryCacheSeed(t *testing.T) {
	cache := NewMemoryCache(map[string]map[string]string{
		"42": {"pages": "ent-1"},
	})

	labels, err := cache.Get(context.Background(), "42")
	require.NoError(t, err)
	require.Equal(t, map[string]string{"pages": "ent-1"}, labels)

	labels, err = cache.Get(context.Background(), "unknown")
	require.NoError(t, err)
	require.Empty(t, labels)
}

func TestMemoryCachePut(t *testing.T) {
	cache := NewMemoryCache(nil)

	require.NoError(t, cache.Put(context.Background(), "42", "photos", "ent-2"))

	labels, err := cache.Get(context.Background(), "42")
	require.NoError(t, err)
	require.Equal(t, "ent-2", labels["photos"])
}

func TestMemoryCacheGetReturnsCopy(t *testing.T) {
	cache := NewMemoryCache(map[string]map[string]string{"42": {"pages": "ent-1"}})

	labels, err := cache.Get(context.Background(), "42")
	require.NoError(t, err)
	labels["pages"] = "mutated"

	fresh, err := cache.Get(context.Background(), "42")
	require.NoError(t, err)
	require.Equal(t, "ent-1", fresh["pages"])
}

func TestRedisKey(t *testing.T) {
	require.Equal(t, "fc:42", getKey(KeyFolderCache, "42"))
}
