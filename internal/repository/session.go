package repository

import (
	"context"

	"park/internal/domain"
)

// SessionRepository defines the persistence operations for the two
// denormalized session copies. The customer copy lives under the owning
// customer and the vendor copy under the owning vendor; they share an ID.
type SessionRepository interface {
	// CreateCustomerCopy persists the customer-side copy of a session.
	CreateCustomerCopy(ctx context.Context, s *domain.Session) error

	// CreateVendorCopy persists the vendor-side copy of a session.
	CreateVendorCopy(ctx context.Context, s *domain.Session) error

	// GetCustomerCopy retrieves the customer-side copy.
	GetCustomerCopy(ctx context.Context, customerID, sessionID string) (*domain.Session, error)

	// GetVendorCopy retrieves the vendor-side copy.
	GetVendorCopy(ctx context.Context, vendorID, sessionID string) (*domain.Session, error)

	// UpdateCustomerCopy overwrites the customer-side copy.
	UpdateCustomerCopy(ctx context.Context, s *domain.Session) error

	// UpdateVendorCopy overwrites the vendor-side copy.
	UpdateVendorCopy(ctx context.Context, s *domain.Session) error

	// ListCustomerByStatus returns the customer's sessions in any of the
	// given statuses. Used for the single in-flight session check.
	ListCustomerByStatus(ctx context.Context, customerID string, statuses []domain.SessionStatus) ([]*domain.Session, error)
}

// SessionUnitOfWork runs fn against a transactional view of the session
// store. Both copies of a session are written inside one transaction so a
// partial dual-copy write cannot be observed.
type SessionUnitOfWork interface {
	WithinTx(ctx context.Context, fn func(SessionRepository) error) error
}
