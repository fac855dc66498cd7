package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

var ErrStateNotFound = errors.New("cache: oauth state not found")

const StateTTL = 10 * time.Minute

// OAuthState is what the authorize step remembers until the callback.
type OAuthState struct {
	Provider string `json:"provider"`
	// LinkClientID is set when an authenticated client links a provider.
	LinkClientID uint   `json:"link_client_id,omitempty"`
	ReturnTo     string `json:"return_to,omitempty"`
}

// StateStore keeps OAuth states. Take is single use.
type StateStore interface {
	Put(ctx context.Context, key string, st OAuthState, ttl time.Duration) error
	Take(ctx context.Context, key string) (*OAuthState, error)
}

// --------------------------------------------------
// Redis
// --------------------------------------------------

type RedisStateStore struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisStateStore(rdb *redis.Client) *RedisStateStore {
	return &RedisStateStore{rdb: rdb, prefix: "oauth:state:"}
}

func (s *RedisStateStore) Put(ctx context.Context, key string, st OAuthState, ttl time.Duration) error {
	b, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, s.prefix+key, b, ttl).Err()
}

func (s *RedisStateStore) Take(ctx context.Context, key string) (*OAuthState, error) {
	var get *redis.StringCmd

	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		get = pipe.Get(ctx, s.prefix+key)
		pipe.Del(ctx, s.prefix+key)
		return nil
	})
	if errors.Is(err, redis.Nil) {
		return nil, ErrStateNotFound
	}
	if err != nil {
		return nil, err
	}

	var st OAuthState
	if err := json.Unmarshal([]byte(get.Val()), &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// --------------------------------------------------
// Memory
// --------------------------------------------------

type memoryState struct {
	st      OAuthState
	expires time.Time
}

// MemoryStateStore is used when Redis is not configured.
type MemoryStateStore struct {
	mu    sync.Mutex
	items map[string]memoryState
	now   func() time.Time
}

func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{items: map[string]memoryState{}, now: time.Now}
}

func (s *MemoryStateStore) Put(_ context.Context, key string, st OAuthState, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for k, v := range s.items {
		if now.After(v.expires) {
			delete(s.items, k)
		}
	}
	s.items[key] = memoryState{st: st, expires: now.Add(ttl)}
	return nil
}

func (s *MemoryStateStore) Take(_ context.Context, key string) (*OAuthState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.items[key]
	delete(s.items, key)
	if !ok || s.now().After(v.expires) {
		return nil, ErrStateNotFound
	}
	st := v.st
	return &st, nil
}

var (
	_ StateStore = (*RedisStateStore)(nil)
	_ StateStore = (*MemoryStateStore)(nil)
)
