package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ProcessedEventStore registra ids de eventos de webhook ya aplicados, para
// descartar reentregas del proveedor.
type ProcessedEventStore interface {
	// MarkProcessed devuelve true si el evento no se había visto antes.
	MarkProcessed(eventID string, ttl time.Duration) (bool, error)
	// Unmark libera un id marcado cuyo evento no llegó a aplicarse, para que
	// la reentrega del proveedor no se descarte.
	Unmark(eventID string) error
}

type memoryProcessedEventStore struct {
	mu    sync.Mutex
	items map[string]time.Time
}

func NewMemoryProcessedEventStore() ProcessedEventStore {
	return &memoryProcessedEventStore{
		items: make(map[string]time.Time),
	}
}

func (s *memoryProcessedEventStore) MarkProcessed(eventID string, ttl time.Duration) (bool, error) {
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return true, nil
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	if exp, ok := s.items[eventID]; ok && now.Before(exp) {
		return false, nil
	}
	s.items[eventID] = now.Add(ttl)
	return true, nil
}

func (s *memoryProcessedEventStore) Unmark(eventID string) error {
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, eventID)
	return nil
}

// redisSetNXClient es la porción de *redis.Client que usa el store, como
// interfaz para poder simularla en tests.
type redisSetNXClient interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type redisProcessedEventStore struct {
	client redisSetNXClient
	prefix string
}

func NewRedisProcessedEventStore(client *redis.Client) ProcessedEventStore {
	if client == nil {
		return nil
	}
	return &redisProcessedEventStore{
		client: client,
		prefix: "webhooks:event:",
	}
}

func (s *redisProcessedEventStore) MarkProcessed(eventID string, ttl time.Duration) (bool, error) {
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return true, nil
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	return s.client.SetNX(ctx, s.prefix+eventID, 1, ttl).Result()
}

func (s *redisProcessedEventStore) Unmark(eventID string) error {
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	return s.client.Del(ctx, s.prefix+eventID).Err()
}
