package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LockStore handles distributed locking in Redis. Session transitions are
// query-then-act sequences over two denormalized copies, so OpenSession
// serializes per customer and the later transitions serialize per session.
type LockStore struct {
	client *redis.Client
}

// NewLockStore creates a new LockStore.
func NewLockStore(client *redis.Client) *LockStore {
	return &LockStore{client: client}
}

// AcquireCustomerLock attempts to acquire the pairing lock for a customer.
// Returns true if the lock was acquired, false if already held.
func (s *LockStore) AcquireCustomerLock(ctx context.Context, customerID string, ttl time.Duration) (bool, error) {
	key := fmt.Sprintf("lock:customer:%s", customerID)

	ok, err := s.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

// ReleaseCustomerLock releases the pairing lock for a customer.
func (s *LockStore) ReleaseCustomerLock(ctx context.Context, customerID string) error {
	key := fmt.Sprintf("lock:customer:%s", customerID)

	return s.client.Del(ctx, key).Err()
}

// AcquireSessionLock attempts to acquire the transition lock for a session.
// Returns true if the lock was acquired, false if already held.
func (s *LockStore) AcquireSessionLock(ctx context.Context, sessionID string, ttl time.Duration) (bool, error) {
	key := fmt.Sprintf("lock:session:%s", sessionID)

	ok, err := s.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

// ReleaseSessionLock releases the transition lock for a session.
func (s *LockStore) ReleaseSessionLock(ctx context.Context, sessionID string) error {
	key := fmt.Sprintf("lock:session:%s", sessionID)

	return s.client.Del(ctx, key).Err()
}
