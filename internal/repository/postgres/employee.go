package postgres

import (
	"context"
	"database/sql"
	"errors"

	"park/internal/domain"
	"park/internal/repository"
)

// EmployeeRepository is a PostgreSQL implementation of repository.EmployeeRepository.
type EmployeeRepository struct {
	q Querier
}

// NewEmployeeRepository creates a new PostgreSQL employee repository.
func NewEmployeeRepository(db *sql.DB) *EmployeeRepository {
	return &EmployeeRepository{q: db}
}

// Create persists a new employee.
func (r *EmployeeRepository) Create(ctx context.Context, employee *domain.Employee) error {
	query := `
		INSERT INTO employees (id, name_surname, email, phone, image, verified, verification_code, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.q.ExecContext(ctx, query,
		employee.ID,
		employee.NameSurname,
		employee.Email,
		employee.Phone,
		employee.Image,
		employee.Verified,
		employee.VerificationCode,
		employee.CreatedAt,
	)

	return err
}

// GetByID retrieves an employee by ID.
func (r *EmployeeRepository) GetByID(ctx context.Context, id string) (*domain.Employee, error) {
	return r.getBy(ctx, `id = $1`, id)
}

// GetByEmail retrieves an employee by email.
func (r *EmployeeRepository) GetByEmail(ctx context.Context, email string) (*domain.Employee, error) {
	return r.getBy(ctx, `email = $1`, email)
}

func (r *EmployeeRepository) getBy(ctx context.Context, where, arg string) (*domain.Employee, error) {
	query := `
		SELECT id, name_surname, email, phone, image, verified, verification_code, created_at
		FROM employees WHERE ` + where

	var employee domain.Employee
	err := r.q.QueryRowContext(ctx, query, arg).Scan(
		&employee.ID,
		&employee.NameSurname,
		&employee.Email,
		&employee.Phone,
		&employee.Image,
		&employee.Verified,
		&employee.VerificationCode,
		&employee.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &employee, nil
}

// UpdateVerification sets the verification code, or marks the employee
// verified and clears the code.
func (r *EmployeeRepository) UpdateVerification(ctx context.Context, id, code string, verified bool) error {
	query := `UPDATE employees SET verification_code = $2, verified = $3 WHERE id = $1`

	res, err := r.q.ExecContext(ctx, query, id, code, verified)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return repository.ErrNotFound
	}

	return nil
}
