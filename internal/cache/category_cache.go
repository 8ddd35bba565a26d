// Package cache holds the read-through cache for the category list used by
// the material filter dropdown and the category index.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/agassama1998/materialmanagementapp/internal/domain"

	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	categoriesKey = "materialmanagement:categories"
	generationKey = "materialmanagement:categories:generation"
)

// Generation identifies the cache epoch a list was read in. Invalidate starts
// a new epoch, so a list loaded before a write is stored where no reader looks.
type Generation int64

// noGeneration is returned when the epoch is unknown; Set ignores it.
const noGeneration Generation = -1

type CategoryCache interface {
	// GetCategories returns the cached list, whether it was present and the
	// generation to pass to SetCategories on a miss.
	GetCategories(ctx context.Context) ([]domain.Category, Generation, bool)
	SetCategories(ctx context.Context, gen Generation, categories []domain.Category)
	Invalidate(ctx context.Context)
	Close() error
}

type redisCategoryCache struct {
	rdb *goredis.Client
	ttl time.Duration
	log *logrus.Logger
}

// NewRedisCategoryCache connects to redisURL (redis://host:port/db) and pings it.
func NewRedisCategoryCache(ctx context.Context, redisURL string, ttl time.Duration, logger *logrus.Logger) (CategoryCache, error) {
	opts, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	opts.DialTimeout = 5 * time.Second

	rdb := goredis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &redisCategoryCache{rdb: rdb, ttl: ttl, log: logger}, nil
}

func entryKey(gen Generation) string {
	return fmt.Sprintf("%s:%d", categoriesKey, gen)
}

func (c *redisCategoryCache) generation(ctx context.Context) Generation {
	n, err := c.rdb.Get(ctx, generationKey).Int64()
	switch {
	case errors.Is(err, goredis.Nil):
		return 0
	case err != nil:
		c.log.Warnf("Cache: Failed to read categories generation: %v", err)
		return noGeneration
	}
	return Generation(n)
}

func (c *redisCategoryCache) GetCategories(ctx context.Context) ([]domain.Category, Generation, bool) {
	gen := c.generation(ctx)
	if gen == noGeneration {
		return nil, gen, false
	}
	raw, err := c.rdb.Get(ctx, entryKey(gen)).Bytes()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			c.log.Warnf("Cache: Failed to read categories: %v", err)
		}
		return nil, gen, false
	}
	var categories []domain.Category
	if err := json.Unmarshal(raw, &categories); err != nil {
		c.log.Warnf("Cache: Discarding undecodable categories entry: %v", err)
		return nil, gen, false
	}
	return categories, gen, true
}

func (c *redisCategoryCache) SetCategories(ctx context.Context, gen Generation, categories []domain.Category) {
	if gen == noGeneration {
		return
	}
	raw, err := json.Marshal(categories)
	if err != nil {
		c.log.Warnf("Cache: Failed to encode categories: %v", err)
		return
	}
	if err := c.rdb.Set(ctx, entryKey(gen), raw, c.ttl).Err(); err != nil {
		c.log.Warnf("Cache: Failed to store categories: %v", err)
	}
}

func (c *redisCategoryCache) Invalidate(ctx context.Context) {
	if err := c.rdb.Incr(ctx, generationKey).Err(); err != nil {
		c.log.Warnf("Cache: Failed to invalidate categories: %v", err)
	}
}

func (c *redisCategoryCache) Close() error {
	return c.rdb.Close()
}

type noopCategoryCache struct{}

// NewNoop returns a cache that never hits.
func NewNoop() CategoryCache { return noopCategoryCache{} }

func (noopCategoryCache) GetCategories(context.Context) ([]domain.Category, Generation, bool) {
	return nil, noGeneration, false
}
func (noopCategoryCache) SetCategories(context.Context, Generation, []domain.Category) {}
func (noopCategoryCache) Invalidate(context.Context)                                   {}
func (noopCategoryCache) Close() error                                                 { return nil }
