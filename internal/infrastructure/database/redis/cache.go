package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/turtacn/Resonance-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Resonance-Intelligence/pkg/errors"
)

var ErrCacheMiss = errors.New(errors.ErrCodeNotFound, "cache miss")

const defaultCacheTTL = 15 * time.Minute

// Cache stores JSON values under a key prefix.
type Cache struct {
	client *Client
	logger logging.Logger
	prefix string
	ttl    time.Duration
	group  singleflight.Group
}

type CacheOption func(*Cache)

func WithPrefix(prefix string) CacheOption {
	return func(c *Cache) { c.prefix = prefix }
}

// WithDefaultTTL sets the expiry used when Set is given a zero ttl.
func WithDefaultTTL(ttl time.Duration) CacheOption {
	return func(c *Cache) { c.ttl = ttl }
}

func NewCache(client *Client, log logging.Logger, opts ...CacheOption) *Cache {
	if log == nil {
		log = logging.NewNopLogger()
	}
	c := &Cache{client: client, logger: log.Named("cache"), prefix: "resonance:", ttl: defaultCacheTTL}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cache) key(k string) string { return c.prefix + k }

// Get decodes the value stored at key into dest. A missing key is
// ErrCacheMiss.
func (c *Cache) Get(ctx context.Context, key string, dest any) error {
	rdb, err := c.client.RDB()
	if err != nil {
		return err
	}
	data, err := rdb.Get(ctx, c.key(key)).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return ErrCacheMiss
	case err != nil:
		return errors.Wrap(err, errors.ErrCodeCacheError, "cache get failed").WithDetail(key)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "cached value is not valid JSON").WithDetail(key)
	}
	return nil
}

// Set stores value as JSON. A zero ttl uses the cache default.
func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	rdb, err := c.client.RDB()
	if err != nil {
		return err
	}
	data, err := json.Marshal(value)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "value cannot be encoded").WithDetail(key)
	}
	if ttl == 0 {
		ttl = c.ttl
	}
	if err := rdb.Set(ctx, c.key(key), string(data), ttl).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "cache set failed").WithDetail(key)
	}
	return nil
}

func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	rdb, err := c.client.RDB()
	if err != nil {
		return err
	}
	full := make([]string, 0, len(keys))
	for _, k := range keys {
		full = append(full, c.key(k))
	}
	if err := rdb.Del(ctx, full...).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "cache delete failed")
	}
	return nil
}

// Loader produces a value for Fetch. keep reports whether the value may be
// cached; an error is never cached.
type Loader[T any] func(ctx context.Context) (value T, keep bool, err error)

// Fetch returns the value cached at key, or runs load and caches what it
// returns. Concurrent fetches of one key share a single load. A failing cache
// only costs the lookup: it is logged and the loaded value is returned.
func Fetch[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, load Loader[T]) (T, error) {
	var cached T
	err := c.Get(ctx, key, &cached)
	if err == nil {
		c.logger.Debug("cache hit", logging.String("key", key))
		return cached, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		c.logger.Warn("cache read failed, loading", logging.String("key", key), logging.Err(err))
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		val, keep, err := load(ctx)
		if err != nil || !keep {
			return val, err
		}
		if serr := c.Set(ctx, key, val, ttl); serr != nil {
			c.logger.Warn("cache write failed", logging.String("key", key), logging.Err(serr))
		}
		return val, nil
	})
	out, _ := v.(T)
	return out, err
}

//Personal.AI order the ending
