package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iconidentify/mediagrab/internal/config"
	"github.com/iconidentify/mediagrab/internal/domain"
)

// Cache stores extract-endpoint metadata in Redis with a TTL, so
// repeated requests for the same post skip the engine. A nil *Cache is
// valid and means caching is disabled.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to Redis. Returns (nil, nil) when no address is
// configured, which callers treat as caching disabled.
func New(cfg config.CacheConfig) (*Cache, error) {
	if cfg.Addr == "" {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &Cache{client: client, ttl: cfg.TTL}, nil
}

// Close closes the Redis connection.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}

func metadataKey(url string) string {
	return "extract:" + url
}

// GetMetadata returns cached metadata for a URL, or (nil, nil) on a
// miss or when caching is disabled.
func (c *Cache) GetMetadata(ctx context.Context, url string) (*domain.MediaMetadata, error) {
	if c == nil {
		return nil, nil
	}

	data, err := c.client.Get(ctx, metadataKey(url)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("cache get: %w", err)
	}

	var meta domain.MediaMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("cache unmarshal: %w", err)
	}
	return &meta, nil
}

// SetMetadata stores metadata for a URL under the configured TTL.
// No-op when caching is disabled.
func (c *Cache) SetMetadata(ctx context.Context, url string, meta *domain.MediaMetadata) error {
	if c == nil {
		return nil
	}

	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("cache marshal: %w", err)
	}
	return c.client.Set(ctx, metadataKey(url), data, c.ttl).Err()
}
