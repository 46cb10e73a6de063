package foldercache

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"
)

const (
	KeyFolderCache = "fc" // HASH. fc:{collection_id} label -> remote folder id
	KeySeparator   = ":"
)

// redisCache persists folder id mappings across runs, so repeat uploads into
// the same collection never re-create folders.
type redisCache struct {
	cl  *redis.Client
	log *slog.Logger
}

func NewRedisCache(cl *redis.Client, log *slog.Logger) *redisCache {
	return &redisCache{
		cl:  cl,
		log: log.With(slog.String("item", "FolderCache")),
	}
}

func (c *redisCache) Get(ctx context.Context, collectionID string) (map[string]string, error) {
	labels, err := c.cl.HGetAll(ctx, getKey(KeyFolderCache, collectionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("cannot get folder cache for collection %s: %w", collectionID, err)
	}

	return labels, nil
}

func (c *redisCache) Put(ctx context.Context, collectionID, label, id string) error {
	if err := c.cl.HSet(ctx, getKey(KeyFolderCache, collectionID), label, id).Err(); err != nil {
		return fmt.Errorf("cannot cache folder %s: %w", label, err)
	}

	c.log.Debug("Cached folder id", slog.String("collection_id", collectionID),
		slog.String("label", label), slog.String("id", id))

	return nil
}

func getKey(keys ...string) string {
	return strings.Join(keys, KeySeparator)
}
