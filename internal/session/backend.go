package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Valkey stores sessions in Valkey through a go-redis client.
func Valkey(client *redis.Client) Backend {
	return valkeyBackend{client: client}
}

type valkeyBackend struct {
	client *redis.Client
}

func (v valkeyBackend) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := v.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMissing
	}
	return b, err
}

func (v valkeyBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return v.client.Set(ctx, key, value, ttl).Err()
}

func (v valkeyBackend) Del(ctx context.Context, key string) error {
	return v.client.Del(ctx, key).Err()
}

// Memory returns a process-local backend. Sessions are lost on restart, so
// it is meant for development and tests.
func Memory() Backend {
	return &memoryBackend{items: make(map[string]memoryItem)}
}

type memoryItem struct {
	value   []byte
	expires time.Time
}

type memoryBackend struct {
	mu    sync.Mutex
	items map[string]memoryItem
}

func (m *memoryBackend) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[key]
	if !ok {
		return nil, ErrMissing
	}
	if time.Now().After(it.expires) {
		delete(m.items, key)
		return nil, ErrMissing
	}
	return it.value, nil
}

func (m *memoryBackend) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = memoryItem{value: append([]byte(nil), value...), expires: time.Now().Add(ttl)}
	return nil
}

func (m *memoryBackend) Del(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}
