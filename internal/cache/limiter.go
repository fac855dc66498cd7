package cache

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	MaxLoginFailures   = 5
	LoginFailureWindow = 15 * time.Minute
)

// LoginLimiter counts failed logins per key inside a fixed window.
type LoginLimiter interface {
	Blocked(ctx context.Context, key string) (bool, error)
	Fail(ctx context.Context, key string) error
	Reset(ctx context.Context, key string) error
}

// --------------------------------------------------
// Redis
// --------------------------------------------------

type RedisLoginLimiter struct {
	rdb    *redis.Client
	prefix string
	max    int
	window time.Duration
}

func NewRedisLoginLimiter(rdb *redis.Client) *RedisLoginLimiter {
	return &RedisLoginLimiter{
		rdb:    rdb,
		prefix: "login:fail:",
		max:    MaxLoginFailures,
		window: LoginFailureWindow,
	}
}

func (l *RedisLoginLimiter) Blocked(ctx context.Context, key string) (bool, error) {
	v, err := l.rdb.Get(ctx, l.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return false, err
	}
	return n >= l.max, nil
}

func (l *RedisLoginLimiter) Fail(ctx context.Context, key string) error {
	k := l.prefix + key

	// window starts at the first failure; NX keeps later failures from
	// extending it
	_, err := l.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, k)
		pipe.ExpireNX(ctx, k, l.window)
		return nil
	})
	return err
}

func (l *RedisLoginLimiter) Reset(ctx context.Context, key string) error {
	return l.rdb.Del(ctx, l.prefix+key).Err()
}

// --------------------------------------------------
// Memory
// --------------------------------------------------

type memoryCounter struct {
	n       int
	expires time.Time
}

type MemoryLoginLimiter struct {
	mu     sync.Mutex
	items  map[string]memoryCounter
	max    int
	window time.Duration
	now    func() time.Time
}

func NewMemoryLoginLimiter() *MemoryLoginLimiter {
	return &MemoryLoginLimiter{
		items:  map[string]memoryCounter{},
		max:    MaxLoginFailures,
		window: LoginFailureWindow,
		now:    time.Now,
	}
}

func (l *MemoryLoginLimiter) Blocked(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	c, ok := l.items[key]
	if !ok || l.now().After(c.expires) {
		return false, nil
	}
	return c.n >= l.max, nil
}

func (l *MemoryLoginLimiter) Fail(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	c, ok := l.items[key]
	if !ok || now.After(c.expires) {
		c = memoryCounter{expires: now.Add(l.window)}
	}
	c.n++
	l.items[key] = c
	return nil
}

func (l *MemoryLoginLimiter) Reset(_ context.Context, key string) error {
	l.mu.Lock()
	delete(l.items, key)
	l.mu.Unlock()
	return nil
}

var (
	_ LoginLimiter = (*RedisLoginLimiter)(nil)
	_ LoginLimiter = (*MemoryLoginLimiter)(nil)
)
