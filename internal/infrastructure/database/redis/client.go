package redis

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/turtacn/Resonance-Intelligence/internal/config"
	"github.com/turtacn/Resonance-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Resonance-Intelligence/pkg/errors"
)

var (
	ErrClientClosed     = errors.New(errors.ErrCodeInternal, "redis client is closed")
	ErrConnectionFailed = errors.New(errors.ErrCodeCacheError, "redis connection failed")
)

const defaultPingTimeout = 5 * time.Second

// Client is the shared Redis pool behind the grid cache, the search cache
// and the location store. Zero timeouts in the config fall back to go-redis
// defaults.
type Client struct {
	rdb    redis.UniversalClient
	logger logging.Logger
	closed atomic.Bool
}

// NewClient connects and fails unless the server answers PING.
func NewClient(cfg config.RedisConfig, log logging.Logger) (*Client, error) {
	c := NewClientFromRDB(redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}), log)

	timeout := cfg.DialTimeout
	if timeout <= 0 {
		timeout = defaultPingTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := c.Ping(ctx); err != nil {
		_ = c.rdb.Close()
		return nil, ErrConnectionFailed.WithCause(err).WithDetail(cfg.Addr)
	}
	c.logger.Info("connected", logging.String("addr", cfg.Addr), logging.Int("db", cfg.DB))
	return c, nil
}

// NewClientFromRDB wraps an existing go-redis client, e.g. one pointed at
// miniredis or a redismock.
func NewClientFromRDB(rdb redis.UniversalClient, log logging.Logger) *Client {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Client{rdb: rdb, logger: log.Named("redis")}
}

func (c *Client) Ping(ctx context.Context) error {
	if c.closed.Load() {
		return ErrClientClosed
	}
	return c.rdb.Ping(ctx).Err()
}

// Close is idempotent.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	if err := c.rdb.Close(); err != nil {
		c.logger.Error("close failed", logging.Err(err))
		return err
	}
	c.logger.Info("closed")
	return nil
}

// RDB returns the underlying client until Close is called.
func (c *Client) RDB() (redis.UniversalClient, error) {
	if c.closed.Load() {
		return nil, ErrClientClosed
	}
	return c.rdb, nil
}

//Personal.AI order the ending
