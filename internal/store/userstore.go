// Package store holds the optional persistence shadow behind the User
// Registry. It is never the source of truth (the in-memory registry is);
// it exists so a deployment can warm-restart its nickname assignments,
// nothing more.
package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// UserStore is the narrow persistence contract the User Registry writes
// through on every claim/rename/delete, when a backend is configured.
type UserStore interface {
	Open(ctx context.Context) error
	Close() error
	Save(id int64, nickname string) error
	Delete(id int64) error
	LoadAll() (map[int64]string, error)
}

// MemoryStore is the in-process UserStore used when no backend is configured;
// it keeps data in a map only, so tests can exercise the Registry<->Store
// wiring without a Redis dependency.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[int64]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[int64]string)}
}

func (m *MemoryStore) Open(context.Context) error { return nil }
func (m *MemoryStore) Close() error               { return nil }

func (m *MemoryStore) Save(id int64, nickname string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[id] = nickname
	return nil
}

func (m *MemoryStore) Delete(id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, id)
	return nil
}

func (m *MemoryStore) LoadAll() (map[int64]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[int64]string, len(m.data))
	for k, v := range m.data {
		out[k] = v
	}
	return out, nil
}

const usersHashKey = "lobbyserver:users"

// RedisUserStore stores the user id -> nickname shadow as a single Redis
// hash, the closest natural analogue of a users(id, username UNIQUE) table;
// uniqueness is still enforced in-process by the Registry, not by Redis.
type RedisUserStore struct {
	client *redis.Client
}

func NewRedisUserStore(addr, password string, db int) *RedisUserStore {
	return &RedisUserStore{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
	}
}

func (s *RedisUserStore) Open(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("store: connect to redis: %w", err)
	}
	return nil
}

func (s *RedisUserStore) Close() error {
	return s.client.Close()
}

func (s *RedisUserStore) Save(id int64, nickname string) error {
	ctx := context.Background()
	return s.client.HSet(ctx, usersHashKey, id, nickname).Err()
}

func (s *RedisUserStore) Delete(id int64) error {
	ctx := context.Background()
	return s.client.HDel(ctx, usersHashKey, fmt.Sprint(id)).Err()
}

func (s *RedisUserStore) LoadAll() (map[int64]string, error) {
	ctx := context.Background()
	raw, err := s.client.HGetAll(ctx, usersHashKey).Result()
	if err != nil {
		return nil, err
	}
	out := make(map[int64]string, len(raw))
	for k, v := range raw {
		var id int64
		if _, err := fmt.Sscan(k, &id); err != nil {
			continue
		}
		out[id] = v
	}
	return out, nil
}
