package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/makemydestiny/travel-booking/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNop(t *testing.T) {
	var c Cache = Nop{}
	ctx := context.Background()

	require.NoError(t, c.SetJSON(ctx, KeyBookingStats, map[string]int{"a": 1}))
	var dest map[string]int
	found, err := c.GetJSON(ctx, KeyBookingStats, &dest)
	assert.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, c.Delete(ctx, KeyBookingStats))
	assert.NoError(t, c.Ping(ctx))
}

// Integration test (requires running Redis)
func TestRedis_Integration(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	ctx := context.Background()
	client, err := NewRedisClient(ctx, config.RedisConfig{Addr: addr})
	if err != nil {
		t.Skipf("failed to connect: %v, skipping integration test", err)
	}
	c := NewRedis(client, 5*time.Second)
	defer c.Close()

	key := "makemydestiny:test:" + t.Name()
	type payload struct {
		Count int64 `json:"count"`
	}

	require.NoError(t, c.SetJSON(ctx, key, payload{Count: 7}))
	var got payload
	found, err := c.GetJSON(ctx, key, &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, int64(7), got.Count)

	require.NoError(t, c.Delete(ctx, key))
	found, err = c.GetJSON(ctx, key, &got)
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, c.Ping(ctx))
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	_, err := NewRedisClient(context.Background(), config.RedisConfig{Addr: "127.0.0.1:1"})
	assert.Error(t, err)
}
