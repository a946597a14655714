package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"park/internal/domain"
	"park/internal/repository"
)

// CustomerRepository is a PostgreSQL implementation of repository.CustomerRepository.
type CustomerRepository struct {
	q Querier
}

// NewCustomerRepository creates a new PostgreSQL customer repository.
func NewCustomerRepository(db *sql.DB) *CustomerRepository {
	return &CustomerRepository{q: db}
}

// Create persists a new customer.
func (r *CustomerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	query := `
		INSERT INTO customers (id, name_surname, email, phone, image, card_user_key, verified, verification_code, pairing_code, pairing_code_expiry, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	var expiry sql.NullTime
	if !customer.PairingCodeExpiry.IsZero() {
		expiry = sql.NullTime{Time: customer.PairingCodeExpiry, Valid: true}
	}

	_, err := r.q.ExecContext(ctx, query,
		customer.ID,
		customer.NameSurname,
		customer.Email,
		customer.Phone,
		customer.Image,
		customer.CardUserKey,
		customer.Verified,
		customer.VerificationCode,
		customer.PairingCode,
		expiry,
		customer.CreatedAt,
	)

	return err
}

// GetByID retrieves a customer by ID.
func (r *CustomerRepository) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	query := `
		SELECT id, name_surname, email, phone, image, card_user_key, verified, verification_code, pairing_code, pairing_code_expiry, created_at
		FROM customers WHERE id = $1
	`

	var customer domain.Customer
	var expiry sql.NullTime

	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&customer.ID,
		&customer.NameSurname,
		&customer.Email,
		&customer.Phone,
		&customer.Image,
		&customer.CardUserKey,
		&customer.Verified,
		&customer.VerificationCode,
		&customer.PairingCode,
		&expiry,
		&customer.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	if expiry.Valid {
		customer.PairingCodeExpiry = expiry.Time
	}

	return &customer, nil
}

// UpdatePairingCode stores a freshly issued pairing code. The previous code,
// consumed or not, is overwritten.
func (r *CustomerRepository) UpdatePairingCode(ctx context.Context, id, code string, expiry time.Time) error {
	query := `UPDATE customers SET pairing_code = $2, pairing_code_expiry = $3 WHERE id = $1`

	res, err := r.q.ExecContext(ctx, query, id, code, expiry)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// UpdateVerification sets the verification code, or marks the customer
// verified and clears the code.
func (r *CustomerRepository) UpdateVerification(ctx context.Context, id, code string, verified bool) error {
	query := `UPDATE customers SET verification_code = $2, verified = $3 WHERE id = $1`

	res, err := r.q.ExecContext(ctx, query, id, code, verified)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// CreateCoupon persists a coupon for a customer.
func (r *CustomerRepository) CreateCoupon(ctx context.Context, coupon *domain.Coupon) error {
	query := `
		INSERT INTO coupons (id, customer_id, code, title, description, price, used, created_at, valid_until)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.q.ExecContext(ctx, query,
		coupon.ID,
		coupon.CustomerID,
		coupon.Code,
		coupon.Title,
		coupon.Description,
		coupon.Price,
		coupon.Used,
		coupon.CreatedAt,
		coupon.ValidUntil,
	)

	return err
}

// GetCoupon retrieves one of the customer's coupons.
func (r *CustomerRepository) GetCoupon(ctx context.Context, customerID, couponID string) (*domain.Coupon, error) {
	query := `
		SELECT id, customer_id, code, title, description, price, used, created_at, valid_until
		FROM coupons WHERE customer_id = $1 AND id = $2
	`

	var coupon domain.Coupon
	err := r.q.QueryRowContext(ctx, query, customerID, couponID).Scan(
		&coupon.ID,
		&coupon.CustomerID,
		&coupon.Code,
		&coupon.Title,
		&coupon.Description,
		&coupon.Price,
		&coupon.Used,
		&coupon.CreatedAt,
		&coupon.ValidUntil,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &coupon, nil
}

// DeleteCoupon removes a consumed coupon.
func (r *CustomerRepository) DeleteCoupon(ctx context.Context, customerID, couponID string) error {
	query := `DELETE FROM coupons WHERE customer_id = $1 AND id = $2`

	res, err := r.q.ExecContext(ctx, query, customerID, couponID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return repository.ErrNotFound
	}

	return nil
}
