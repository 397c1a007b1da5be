package ratelimit

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCounter struct {
	counts  map[string]int64
	expires map[string]time.Duration
	err     error
}

func newFakeCounter() *fakeCounter {
	return &fakeCounter{counts: map[string]int64{}, expires: map[string]time.Duration{}}
}

func (f *fakeCounter) Incr(_ context.Context, key string) *redis.IntCmd {
	if f.err != nil {
		return redis.NewIntResult(0, f.err)
	}
	f.counts[key]++
	return redis.NewIntResult(f.counts[key], nil)
}

func (f *fakeCounter) Expire(_ context.Context, key string, d time.Duration) *redis.BoolCmd {
	f.expires[key] = d
	return redis.NewBoolResult(true, nil)
}

func TestRedisLimiterAllow(t *testing.T) {
	c := newFakeCounter()
	l := newRedisLimiter(c, "auth", 3, time.Hour)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := l.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err := l.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = l.Allow(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, ok, "other keys have their own window")

	require.Len(t, c.expires, 2)
	for k, d := range c.expires {
		assert.True(t, strings.HasPrefix(k, "ratelimit:auth:"))
		assert.Equal(t, time.Hour, d)
	}
}

func TestRedisLimiterError(t *testing.T) {
	c := newFakeCounter()
	c.err = errors.New("connection refused")
	l := newRedisLimiter(c, "auth", 3, 0)

	ok, err := l.Allow(context.Background(), "k")
	assert.Error(t, err)
	assert.False(t, ok)
	assert.Equal(t, time.Minute, l.window)
}
