package foldercache

import (
	"context"
	"sync"
)

// memoryCache keeps folder id mappings for the lifetime of the process. It may
// be seeded with externally known mappings (collection id -> label -> id).
type memoryCache struct {
	mu sync.RWMutex
	m  map[string]map[string]string
}

func NewMemoryCache(seed map[string]map[string]string) *memoryCache {
	m := make(map[string]map[string]string, len(seed))
	for collectionID, labels := range seed {
		m[collectionID] = make(map[string]string, len(labels))
		for label, id := range labels {
			m[collectionID][label] = id
		}
	}

	return &memoryCache{m: m}
}

func (c *memoryCache) Get(_ context.Context, collectionID string) (map[string]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	labels := make(map[string]string, len(c.m[collectionID]))
	for label, id := range c.m[collectionID] {
		labels[label] = id
	}

	return labels, nil
}

func (c *memoryCache) Put(_ context.Context, collectionID, label, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.m[collectionID] == nil {
		c.m[collectionID] = make(map[string]string)
	}
	c.m[collectionID][label] = id

	return nil
}
