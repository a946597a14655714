package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"park/internal/domain"
	"park/internal/repository"
)

// VendorRepository is a PostgreSQL implementation of repository.VendorRepository.
type VendorRepository struct {
	q Querier
}

// NewVendorRepository creates a new PostgreSQL vendor repository.
func NewVendorRepository(db *sql.DB) *VendorRepository {
	return &VendorRepository{q: db}
}

// Create persists a new vendor.
func (r *VendorRepository) Create(ctx context.Context, vendor *domain.Vendor) error {
	query := `
		INSERT INTO vendors (id, park_name, address, iban, tax_number, latitude, longitude, geohash, open_time, close_time, price_table, commission_rate, tax_rate, security, accessibility, service_quality, rating, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`

	priceTable, err := json.Marshal(vendor.PriceTable)
	if err != nil {
		return err
	}

	_, err = r.q.ExecContext(ctx, query,
		vendor.ID,
		vendor.ParkName,
		vendor.Address,
		vendor.IBAN,
		vendor.TaxNumber,
		vendor.Latitude,
		vendor.Longitude,
		vendor.Geohash,
		vendor.OpenTime,
		vendor.CloseTime,
		priceTable,
		vendor.CommissionRate,
		vendor.TaxRate,
		vendor.Security,
		vendor.Accessibility,
		vendor.ServiceQuality,
		vendor.Rating,
		vendor.Active,
		vendor.CreatedAt,
	)

	return err
}

const vendorColumns = `id, park_name, address, iban, tax_number, latitude, longitude, geohash, open_time, close_time, price_table, commission_rate, tax_rate, security, accessibility, service_quality, rating, active, created_at`

// GetByID retrieves a vendor by ID.
func (r *VendorRepository) GetByID(ctx context.Context, id string) (*domain.Vendor, error) {
	query := `SELECT ` + vendorColumns + ` FROM vendors WHERE id = $1`

	vendor, err := scanVendor(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return vendor, nil
}

// QueryByGeohashRange returns vendors whose geohash falls lexicographically
// within [lower, upper], ordered by geohash. A limit of 0 means no cap.
func (r *VendorRepository) QueryByGeohashRange(ctx context.Context, lower, upper string, limit int) ([]*domain.Vendor, error) {
	query := `SELECT ` + vendorColumns + ` FROM vendors WHERE geohash >= $1 AND geohash <= $2 ORDER BY geohash`

	var (
		rows *sql.Rows
		err  error
	)
	if limit > 0 {
		rows, err = r.q.QueryContext(ctx, query+` LIMIT $3`, lower, upper, limit)
	} else {
		rows, err = r.q.QueryContext(ctx, query, lower, upper)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vendors []*domain.Vendor
	for rows.Next() {
		vendor, err := scanVendor(rows)
		if err != nil {
			return nil, err
		}
		vendors = append(vendors, vendor)
	}

	return vendors, rows.Err()
}

// UpdateRatings overwrites the vendor's aggregate rating fields.
func (r *VendorRepository) UpdateRatings(ctx context.Context, id string, security, accessibility, serviceQuality, rating float64) error {
	query := `UPDATE vendors SET security = $2, accessibility = $3, service_quality = $4, rating = $5 WHERE id = $1`

	res, err := r.q.ExecContext(ctx, query, id, security, accessibility, serviceQuality, rating)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// AddMembership links an employee to the vendor.
func (r *VendorRepository) AddMembership(ctx context.Context, m *domain.VendorMembership) error {
	query := `
		INSERT INTO vendor_employees (vendor_id, employee_id, permission, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (vendor_id, employee_id) DO NOTHING
	`

	_, err := r.q.ExecContext(ctx, query, m.VendorID, m.EmployeeID, m.Permission, m.CreatedAt)
	return err
}

// ListMembershipsByEmployee returns the vendors an employee belongs to.
func (r *VendorRepository) ListMembershipsByEmployee(ctx context.Context, employeeID string) ([]*domain.VendorMembership, error) {
	query := `
		SELECT vendor_id, employee_id, permission, created_at
		FROM vendor_employees WHERE employee_id = $1 ORDER BY created_at
	`

	rows, err := r.q.QueryContext(ctx, query, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var memberships []*domain.VendorMembership
	for rows.Next() {
		var m domain.VendorMembership
		if err := rows.Scan(&m.VendorID, &m.EmployeeID, &m.Permission, &m.CreatedAt); err != nil {
			return nil, err
		}
		memberships = append(memberships, &m)
	}

	return memberships, rows.Err()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanVendor(row rowScanner) (*domain.Vendor, error) {
	var vendor domain.Vendor
	var priceTable []byte

	err := row.Scan(
		&vendor.ID,
		&vendor.ParkName,
		&vendor.Address,
		&vendor.IBAN,
		&vendor.TaxNumber,
		&vendor.Latitude,
		&vendor.Longitude,
		&vendor.Geohash,
		&vendor.OpenTime,
		&vendor.CloseTime,
		&priceTable,
		&vendor.CommissionRate,
		&vendor.TaxRate,
		&vendor.Security,
		&vendor.Accessibility,
		&vendor.ServiceQuality,
		&vendor.Rating,
		&vendor.Active,
		&vendor.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(priceTable) > 0 {
		if err := json.Unmarshal(priceTable, &vendor.PriceTable); err != nil {
			return nil, err
		}
	}

	return &vendor, nil
}
