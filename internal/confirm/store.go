package confirm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

type MemoryStore struct {
	mu     sync.Mutex
	tokens map[string]Token
	now    func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tokens: make(map[string]Token), now: time.Now}
}

func (s *MemoryStore) Put(_ context.Context, token Token, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// opportunistic sweep of expired tokens
	now := s.now()
	for id, t := range s.tokens {
		if !now.Before(t.ExpiresAt) {
			delete(s.tokens, id)
		}
	}
	s.tokens[token.ID] = token
	return nil
}

func (s *MemoryStore) Take(_ context.Context, id string) (*Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tokens[id]
	if !ok {
		return nil, nil
	}
	delete(s.tokens, id)
	return &t, nil
}

// RedisStore shares pending confirmations between server replicas.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, prefix: "timesheet:confirm:"}
}

func (s *RedisStore) Put(ctx context.Context, token Token, ttl time.Duration) error {
	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("encode confirmation: %w", err)
	}
	return s.client.Set(ctx, s.prefix+token.ID, data, ttl).Err()
}

func (s *RedisStore) Take(ctx context.Context, id string) (*Token, error) {
	data, err := s.client.GetDel(ctx, s.prefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("take confirmation: %w", err)
	}

	var t Token
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("decode confirmation: %w", err)
	}
	return &t, nil
}
