package repository

import (
	"context"
	"time"

	"park/internal/domain"
)

// CustomerRepository defines the persistence operations for customers and
// their coupons.
type CustomerRepository interface {
	// Create persists a new customer.
	Create(ctx context.Context, customer *domain.Customer) error

	// GetByID retrieves a customer by ID.
	GetByID(ctx context.Context, id string) (*domain.Customer, error)

	// UpdatePairingCode stores a freshly issued pairing code, overwriting
	// any prior unconsumed code.
	UpdatePairingCode(ctx context.Context, id, code string, expiry time.Time) error

	// UpdateVerification sets the verification code, or marks the customer
	// verified and clears the code.
	UpdateVerification(ctx context.Context, id, code string, verified bool) error

	// CreateCoupon persists a coupon for a customer.
	CreateCoupon(ctx context.Context, coupon *domain.Coupon) error

	// GetCoupon retrieves one of the customer's coupons.
	GetCoupon(ctx context.Context, customerID, couponID string) (*domain.Coupon, error)

	// DeleteCoupon removes a consumed coupon.
	DeleteCoupon(ctx context.Context, customerID, couponID string) error
}

// EmployeeRepository defines the persistence operations for employees.
type EmployeeRepository interface {
	// Create persists a new employee.
	Create(ctx context.Context, employee *domain.Employee) error

	// GetByID retrieves an employee by ID.
	GetByID(ctx context.Context, id string) (*domain.Employee, error)

	// GetByEmail retrieves an employee by email.
	GetByEmail(ctx context.Context, email string) (*domain.Employee, error)

	// UpdateVerification sets the verification code, or marks the employee
	// verified and clears the code.
	UpdateVerification(ctx context.Context, id, code string, verified bool) error
}
