package middleware

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

type windowEntry struct {
	count  int
	resets time.Time
}

// MemoryCounterStore keeps fixed-window counters in process. Entries are
// swept opportunistically once the map has seen enough traffic.
type MemoryCounterStore struct {
	mu      sync.Mutex
	entries map[string]*windowEntry
	ops     int
	now     func() time.Time
}

func NewMemoryCounterStore() *MemoryCounterStore {
	return &MemoryCounterStore{
		entries: make(map[string]*windowEntry),
		now:     time.Now,
	}
}

func (s *MemoryCounterStore) Incr(_ context.Context, key string, window time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	s.ops++
	if s.ops >= 5000 {
		for k, e := range s.entries {
			if now.After(e.resets) {
				delete(s.entries, k)
			}
		}
		s.ops = 0
	}

	e, ok := s.entries[key]
	if !ok || now.After(e.resets) {
		e = &windowEntry{resets: now.Add(window)}
		s.entries[key] = e
	}
	e.count++
	return e.count, nil
}

func (s *MemoryCounterStore) Decr(_ context.Context, key string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[key]; ok && !s.now().After(e.resets) && e.count > 0 {
		e.count--
	}
	return nil
}

// Reset drops all counters; used by tests.
func (s *MemoryCounterStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]*windowEntry)
	s.ops = 0
}

// RedisCounterStore enforces the same fixed windows across instances.
type RedisCounterStore struct {
	client *redis.Client
}

func NewRedisCounterStore(client *redis.Client) *RedisCounterStore {
	return &RedisCounterStore{client: client}
}

func (s *RedisCounterStore) Incr(ctx context.Context, key string, window time.Duration) (int, error) {
	n, err := s.client.Incr(ctx, "ratelimit:"+key).Result()
	if err != nil {
		return 0, err
	}
	if n == 1 {
		// First hit opens the window.
		if err := s.client.Expire(ctx, "ratelimit:"+key, window).Err(); err != nil {
			return int(n), err
		}
	}
	return int(n), nil
}

func (s *RedisCounterStore) Decr(ctx context.Context, key string, _ time.Duration) error {
	return s.client.Decr(ctx, "ratelimit:"+key).Err()
}
