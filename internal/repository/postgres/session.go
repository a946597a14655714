package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/lib/pq"

	"park/internal/domain"
	"park/internal/repository"
)

// SessionRepository is a PostgreSQL implementation of
// repository.SessionRepository. The two denormalized copies live in separate
// tables: customer_sessions and vendor_sessions.
type SessionRepository struct {
	q Querier
}

// NewSessionRepository creates a new PostgreSQL session repository.
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{q: db}
}

// NewSessionRepositoryWithTx creates a session repository using a transaction.
func NewSessionRepositoryWithTx(tx *sql.Tx) *SessionRepository {
	return &SessionRepository{q: tx}
}

// CreateCustomerCopy persists the customer-side copy of a session.
func (r *SessionRepository) CreateCustomerCopy(ctx context.Context, s *domain.Session) error {
	query := `
		INSERT INTO customer_sessions (id, customer_id, vendor_id, employee_id, status, request_time, reply_time, closed_time, closed_by, price_table, customer_name, customer_image, park_name, employee_name, employee_image, total_minutes, total_price, payment_id, payment_completed_time, coupon_id, coupon_price, rated)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
	`

	priceTable, err := json.Marshal(s.PriceTable)
	if err != nil {
		return err
	}

	_, err = r.q.ExecContext(ctx, query,
		s.ID, s.CustomerID, s.VendorID, s.EmployeeID,
		s.Status, s.RequestTime, nullTime(s.ReplyTime), nullTime(s.ClosedTime), nullString(s.ClosedBy),
		priceTable,
		s.CustomerName, s.CustomerImage, s.ParkName, s.EmployeeName, s.EmployeeImage,
		s.TotalMinutes, s.TotalPrice,
		nullString(s.PaymentID), nullTime(s.PaymentCompletedTime),
		nullString(s.CouponID), s.CouponPrice, s.Rated,
	)

	return err
}

// CreateVendorCopy persists the vendor-side copy of a session.
func (r *SessionRepository) CreateVendorCopy(ctx context.Context, s *domain.Session) error {
	query := `
		INSERT INTO vendor_sessions (id, vendor_id, customer_id, employee_id, status, request_time, reply_time, closed_time, closed_by, price_table, customer_name, customer_image, park_name, employee_name, employee_image, total_minutes, total_price, commission, tax, commission_with_tax, allowance, allowance_completed, payment_completed, payment_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)
	`

	priceTable, err := json.Marshal(s.PriceTable)
	if err != nil {
		return err
	}

	var commission, tax, commissionWithTax, allowance sql.NullFloat64
	if s.Breakdown != nil {
		commission = sql.NullFloat64{Float64: s.Breakdown.Commission, Valid: true}
		tax = sql.NullFloat64{Float64: s.Breakdown.Tax, Valid: true}
		commissionWithTax = sql.NullFloat64{Float64: s.Breakdown.CommissionWithTax, Valid: true}
		allowance = sql.NullFloat64{Float64: s.Breakdown.Allowance, Valid: true}
	}

	_, err = r.q.ExecContext(ctx, query,
		s.ID, s.VendorID, s.CustomerID, s.EmployeeID,
		s.Status, s.RequestTime, nullTime(s.ReplyTime), nullTime(s.ClosedTime), nullString(s.ClosedBy),
		priceTable,
		s.CustomerName, s.CustomerImage, s.ParkName, s.EmployeeName, s.EmployeeImage,
		s.TotalMinutes, s.TotalPrice,
		commission, tax, commissionWithTax, allowance,
		s.AllowanceCompleted, s.PaymentCompleted, nullString(s.PaymentID),
	)

	return err
}

const customerSessionColumns = `id, customer_id, vendor_id, employee_id, status, request_time, reply_time, closed_time, closed_by, price_table, customer_name, customer_image, park_name, employee_name, employee_image, total_minutes, total_price, payment_id, payment_completed_time, coupon_id, coupon_price, rated`

// GetCustomerCopy retrieves the customer-side copy.
func (r *SessionRepository) GetCustomerCopy(ctx context.Context, customerID, sessionID string) (*domain.Session, error) {
	query := `SELECT ` + customerSessionColumns + ` FROM customer_sessions WHERE customer_id = $1 AND id = $2`

	s, err := scanCustomerSession(r.q.QueryRowContext(ctx, query, customerID, sessionID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return s, nil
}

// GetVendorCopy retrieves the vendor-side copy.
func (r *SessionRepository) GetVendorCopy(ctx context.Context, vendorID, sessionID string) (*domain.Session, error) {
	query := `
		SELECT id, vendor_id, customer_id, employee_id, status, request_time, reply_time, closed_time, closed_by, price_table, customer_name, customer_image, park_name, employee_name, employee_image, total_minutes, total_price, commission, tax, commission_with_tax, allowance, allowance_completed, payment_completed, payment_id
		FROM vendor_sessions WHERE vendor_id = $1 AND id = $2
	`

	var s domain.Session
	var priceTable []byte
	var replyTime, closedTime sql.NullTime
	var closedBy, paymentID sql.NullString
	var commission, tax, commissionWithTax, allowance sql.NullFloat64

	err := r.q.QueryRowContext(ctx, query, vendorID, sessionID).Scan(
		&s.ID, &s.VendorID, &s.CustomerID, &s.EmployeeID,
		&s.Status, &s.RequestTime, &replyTime, &closedTime, &closedBy,
		&priceTable,
		&s.CustomerName, &s.CustomerImage, &s.ParkName, &s.EmployeeName, &s.EmployeeImage,
		&s.TotalMinutes, &s.TotalPrice,
		&commission, &tax, &commissionWithTax, &allowance,
		&s.AllowanceCompleted, &s.PaymentCompleted, &paymentID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	if len(priceTable) > 0 {
		if err := json.Unmarshal(priceTable, &s.PriceTable); err != nil {
			return nil, err
		}
	}
	s.ReplyTime = replyTime.Time
	s.ClosedTime = closedTime.Time
	s.ClosedBy = closedBy.String
	s.PaymentID = paymentID.String
	if commission.Valid {
		s.Breakdown = &domain.Breakdown{
			Commission:        commission.Float64,
			Tax:               tax.Float64,
			CommissionWithTax: commissionWithTax.Float64,
			Allowance:         allowance.Float64,
		}
	}

	return &s, nil
}

// UpdateCustomerCopy overwrites the mutable fields of the customer-side copy.
func (r *SessionRepository) UpdateCustomerCopy(ctx context.Context, s *domain.Session) error {
	query := `
		UPDATE customer_sessions
		SET status = $3, reply_time = $4, closed_time = $5, closed_by = $6, total_minutes = $7, total_price = $8, payment_id = $9, payment_completed_time = $10, coupon_id = $11, coupon_price = $12, rated = $13
		WHERE customer_id = $1 AND id = $2
	`

	res, err := r.q.ExecContext(ctx, query,
		s.CustomerID, s.ID,
		s.Status, nullTime(s.ReplyTime), nullTime(s.ClosedTime), nullString(s.ClosedBy),
		s.TotalMinutes, s.TotalPrice,
		nullString(s.PaymentID), nullTime(s.PaymentCompletedTime),
		nullString(s.CouponID), s.CouponPrice, s.Rated,
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// UpdateVendorCopy overwrites the mutable fields of the vendor-side copy.
func (r *SessionRepository) UpdateVendorCopy(ctx context.Context, s *domain.Session) error {
	query := `
		UPDATE vendor_sessions
		SET status = $3, reply_time = $4, closed_time = $5, closed_by = $6, total_minutes = $7, total_price = $8, commission = $9, tax = $10, commission_with_tax = $11, allowance = $12, allowance_completed = $13, payment_completed = $14, payment_id = $15
		WHERE vendor_id = $1 AND id = $2
	`

	var commission, tax, commissionWithTax, allowance sql.NullFloat64
	if s.Breakdown != nil {
		commission = sql.NullFloat64{Float64: s.Breakdown.Commission, Valid: true}
		tax = sql.NullFloat64{Float64: s.Breakdown.Tax, Valid: true}
		commissionWithTax = sql.NullFloat64{Float64: s.Breakdown.CommissionWithTax, Valid: true}
		allowance = sql.NullFloat64{Float64: s.Breakdown.Allowance, Valid: true}
	}

	res, err := r.q.ExecContext(ctx, query,
		s.VendorID, s.ID,
		s.Status, nullTime(s.ReplyTime), nullTime(s.ClosedTime), nullString(s.ClosedBy),
		s.TotalMinutes, s.TotalPrice,
		commission, tax, commissionWithTax, allowance,
		s.AllowanceCompleted, s.PaymentCompleted, nullString(s.PaymentID),
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// ListCustomerByStatus returns the customer's sessions in any of the given
// statuses.
func (r *SessionRepository) ListCustomerByStatus(ctx context.Context, customerID string, statuses []domain.SessionStatus) ([]*domain.Session, error) {
	query := `SELECT ` + customerSessionColumns + ` FROM customer_sessions WHERE customer_id = $1 AND status = ANY($2)`

	values := make([]string, len(statuses))
	for i, status := range statuses {
		values[i] = string(status)
	}

	rows, err := r.q.QueryContext(ctx, query, customerID, pq.Array(values))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*domain.Session
	for rows.Next() {
		s, err := scanCustomerSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}

	return sessions, rows.Err()
}

func scanCustomerSession(row rowScanner) (*domain.Session, error) {
	var s domain.Session
	var priceTable []byte
	var replyTime, closedTime, paymentCompletedTime sql.NullTime
	var closedBy, paymentID, couponID sql.NullString

	err := row.Scan(
		&s.ID, &s.CustomerID, &s.VendorID, &s.EmployeeID,
		&s.Status, &s.RequestTime, &replyTime, &closedTime, &closedBy,
		&priceTable,
		&s.CustomerName, &s.CustomerImage, &s.ParkName, &s.EmployeeName, &s.EmployeeImage,
		&s.TotalMinutes, &s.TotalPrice,
		&paymentID, &paymentCompletedTime,
		&couponID, &s.CouponPrice, &s.Rated,
	)
	if err != nil {
		return nil, err
	}

	if len(priceTable) > 0 {
		if err := json.Unmarshal(priceTable, &s.PriceTable); err != nil {
			return nil, err
		}
	}
	s.ReplyTime = replyTime.Time
	s.ClosedTime = closedTime.Time
	s.ClosedBy = closedBy.String
	s.PaymentID = paymentID.String
	s.PaymentCompletedTime = paymentCompletedTime.Time
	s.CouponID = couponID.String

	return &s, nil
}

// SessionUnitOfWork runs session writes inside a database transaction.
type SessionUnitOfWork struct {
	db *sql.DB
}

// NewSessionUnitOfWork creates a transactional session store over db.
func NewSessionUnitOfWork(db *sql.DB) *SessionUnitOfWork {
	return &SessionUnitOfWork{db: db}
}

// WithinTx begins a transaction, runs fn with a transaction-scoped session
// repository, and commits. Any error rolls the transaction back, so the two
// session copies are never left half-written.
func (u *SessionUnitOfWork) WithinTx(ctx context.Context, fn func(repository.SessionRepository) error) error {
	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if err := fn(NewSessionRepositoryWithTx(tx)); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
