package redisstore

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

type setCall struct {
	key string
	ttl time.Duration
}

// memClient keeps keys in a map; only the commands the repository issues are implemented.
type memClient struct {
	redis.Cmdable

	mu   sync.Mutex
	data map[string][]byte
	sets []setCall
	err  error
}

func newMemClient() *memClient { return &memClient{data: make(map[string][]byte)} }

func (c *memClient) Get(_ context.Context, key string) *redis.StringCmd {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return redis.NewStringResult("", c.err)
	}
	val, ok := c.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(string(val), nil)
}

func (c *memClient) Set(_ context.Context, key string, value interface{}, ttl time.Duration) *redis.StatusCmd {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return redis.NewStatusResult("", c.err)
	}
	c.data[key] = value.([]byte)
	c.sets = append(c.sets, setCall{key: key, ttl: ttl})
	return redis.NewStatusResult("OK", nil)
}

func (c *memClient) Del(_ context.Context, keys ...string) *redis.IntCmd {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return redis.NewIntResult(0, c.err)
	}
	var n int64
	for _, k := range keys {
		if _, ok := c.data[k]; ok {
			delete(c.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}
