package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const refreshKeyPrefix = "refresh:"

// TokenStore keeps hashes of live refresh tokens
type TokenStore interface {
	Save(ctx context.Context, hash string, userID uuid.UUID, ttl time.Duration) error
	// Take returns the owner of hash and removes it, so a refresh token works once
	Take(ctx context.Context, hash string) (uuid.UUID, error)
	Delete(ctx context.Context, hash string) error
}

// NewTokenStore returns a Redis store, or an in-process one when rdb is nil
func NewTokenStore(rdb *redis.Client) TokenStore {
	if rdb == nil {
		return newMemoryTokenStore()
	}
	return &redisTokenStore{rdb: rdb}
}

type redisTokenStore struct {
	rdb *redis.Client
}

func (s *redisTokenStore) Save(ctx context.Context, hash string, userID uuid.UUID, ttl time.Duration) error {
	return s.rdb.Set(ctx, refreshKeyPrefix+hash, userID.String(), ttl).Err()
}

func (s *redisTokenStore) Take(ctx context.Context, hash string) (uuid.UUID, error) {
	val, err := s.rdb.GetDel(ctx, refreshKeyPrefix+hash).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return uuid.Nil, ErrInvalidRefreshToken
		}
		return uuid.Nil, errors.Join(ErrSessionsUnavailable, err)
	}
	return uuid.Parse(val)
}

func (s *redisTokenStore) Delete(ctx context.Context, hash string) error {
	return s.rdb.Del(ctx, refreshKeyPrefix+hash).Err()
}

type memoryEntry struct {
	userID    uuid.UUID
	expiresAt time.Time
}

// memoryTokenStore keeps sessions in process; they do not survive restarts
type memoryTokenStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
}

func newMemoryTokenStore() *memoryTokenStore {
	return &memoryTokenStore{entries: make(map[string]memoryEntry)}
}

func (s *memoryTokenStore) Save(ctx context.Context, hash string, userID uuid.UUID, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[hash] = memoryEntry{userID: userID, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (s *memoryTokenStore) Take(ctx context.Context, hash string) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[hash]
	delete(s.entries, hash)
	if !ok || time.Now().After(e.expiresAt) {
		return uuid.Nil, ErrInvalidRefreshToken
	}
	return e.userID, nil
}

func (s *memoryTokenStore) Delete(ctx context.Context, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, hash)
	return nil
}
