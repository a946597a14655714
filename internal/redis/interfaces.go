package redis

import (
	"context"
	"time"
)

// LockStoreInterface defines the interface for distributed locking.
type LockStoreInterface interface {
	AcquireCustomerLock(ctx context.Context, customerID string, ttl time.Duration) (bool, error)
	ReleaseCustomerLock(ctx context.Context, customerID string) error
	AcquireSessionLock(ctx context.Context, sessionID string, ttl time.Duration) (bool, error)
	ReleaseSessionLock(ctx context.Context, sessionID string) error
}

// Ensure concrete types implement interfaces.
var (
	_ LockStoreInterface = (*LockStore)(nil)
)
