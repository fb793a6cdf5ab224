package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/Resonance-Intelligence/internal/config"
	"github.com/turtacn/Resonance-Intelligence/pkg/errors"
)

func TestNewClient_PingsServer(t *testing.T) {
	mr := miniredis.RunT(t)

	c, err := NewClient(config.RedisConfig{Addr: mr.Addr(), DB: 0}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	rdb, err := c.RDB()
	require.NoError(t, err)
	require.NoError(t, rdb.Set(context.Background(), "resonance:probe", "1", 0).Err())
	assert.True(t, mr.Exists("resonance:probe"))
}

func TestNewClient_UnreachableIsCacheError(t *testing.T) {
	c, err := NewClient(config.RedisConfig{Addr: "127.0.0.1:1", DialTimeout: 200 * time.Millisecond}, nil)
	require.Error(t, err)
	assert.Nil(t, c)
	assert.True(t, errors.IsCode(err, errors.ErrCodeCacheError))
	assert.Contains(t, err.Error(), "127.0.0.1:1")
}

func TestClient_CloseIsIdempotent(t *testing.T) {
	mr := miniredis.RunT(t)
	c, err := NewClient(config.RedisConfig{Addr: mr.Addr()}, nil)
	require.NoError(t, err)

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	assert.ErrorIs(t, c.Ping(context.Background()), ErrClientClosed)
	_, err = c.RDB()
	assert.ErrorIs(t, err, ErrClientClosed)
}

//Personal.AI order the ending
