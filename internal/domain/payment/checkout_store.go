package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const checkoutKeyPrefix = "checkout:"

// CheckoutStore keeps checkouts between the checkout call and the confirm call
type CheckoutStore interface {
	Save(ctx context.Context, c *Checkout, ttl time.Duration) error
	// Get returns ErrCheckoutNotFound when absent or expired
	Get(ctx context.Context, orderID string) (*Checkout, error)
	Delete(ctx context.Context, orderID string) error
}

// NewCheckoutStore returns a Redis store, or an in-process one when rdb is nil
func NewCheckoutStore(rdb *redis.Client) CheckoutStore {
	if rdb == nil {
		return newMemoryCheckoutStore()
	}
	return &redisCheckoutStore{rdb: rdb}
}

type redisCheckoutStore struct {
	rdb *redis.Client
}

func (s *redisCheckoutStore) Save(ctx context.Context, c *Checkout, ttl time.Duration) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode checkout: %w", err)
	}
	if err := s.rdb.Set(ctx, checkoutKeyPrefix+c.OrderID, data, ttl).Err(); err != nil {
		return errors.Join(ErrCheckoutStore, err)
	}
	return nil
}

func (s *redisCheckoutStore) Get(ctx context.Context, orderID string) (*Checkout, error) {
	data, err := s.rdb.Get(ctx, checkoutKeyPrefix+orderID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCheckoutNotFound
		}
		return nil, errors.Join(ErrCheckoutStore, err)
	}

	var c Checkout
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode checkout %s: %w", orderID, err)
	}
	return &c, nil
}

func (s *redisCheckoutStore) Delete(ctx context.Context, orderID string) error {
	return s.rdb.Del(ctx, checkoutKeyPrefix+orderID).Err()
}

type checkoutEntry struct {
	checkout  Checkout
	expiresAt time.Time
}

// memoryCheckoutStore keeps checkouts in process; they do not survive restarts
type memoryCheckoutStore struct {
	mu      sync.Mutex
	entries map[string]checkoutEntry
}

func newMemoryCheckoutStore() *memoryCheckoutStore {
	return &memoryCheckoutStore{entries: make(map[string]checkoutEntry)}
}

func (s *memoryCheckoutStore) Save(ctx context.Context, c *Checkout, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[c.OrderID] = checkoutEntry{checkout: *c, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (s *memoryCheckoutStore) Get(ctx context.Context, orderID string) (*Checkout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[orderID]
	if !ok {
		return nil, ErrCheckoutNotFound
	}
	if time.Now().After(e.expiresAt) {
		delete(s.entries, orderID)
		return nil, ErrCheckoutNotFound
	}
	c := e.checkout
	return &c, nil
}

func (s *memoryCheckoutStore) Delete(ctx context.Context, orderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, orderID)
	return nil
}
