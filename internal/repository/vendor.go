package repository

import (
	"context"

	"park/internal/domain"
)

// VendorRepository defines the persistence operations for vendors.
type VendorRepository interface {
	// Create persists a new vendor.
	Create(ctx context.Context, vendor *domain.Vendor) error

	// GetByID retrieves a vendor by ID.
	GetByID(ctx context.Context, id string) (*domain.Vendor, error)

	// QueryByGeohashRange returns vendors whose geohash falls
	// lexicographically within [lower, upper]. A limit of 0 means no cap.
	// Results are candidates only and require true-distance refinement.
	QueryByGeohashRange(ctx context.Context, lower, upper string, limit int) ([]*domain.Vendor, error)

	// UpdateRatings overwrites the vendor's aggregate rating fields.
	UpdateRatings(ctx context.Context, id string, security, accessibility, serviceQuality, rating float64) error

	// AddMembership links an employee to the vendor.
	AddMembership(ctx context.Context, m *domain.VendorMembership) error

	// ListMembershipsByEmployee returns the vendors an employee belongs to.
	ListMembershipsByEmployee(ctx context.Context, employeeID string) ([]*domain.VendorMembership, error)
}
