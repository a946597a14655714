package service

import (
	"context"
	"fmt"
	"math/rand"

	"park/internal/repository"
)

// randomSixDigitCode returns a uniformly random code in [100000, 999999].
func randomSixDigitCode() string {
	return fmt.Sprintf("%06d", 100000+rand.Intn(900000))
}

// VerificationService issues and checks phone verification codes for
// customers and employees. Delivering the code over SMS is the caller's
// concern; this service only manages the stored code.
type VerificationService struct {
	customers repository.CustomerRepository
	employees repository.EmployeeRepository
}

// NewVerificationService creates a new VerificationService.
func NewVerificationService(customers repository.CustomerRepository, employees repository.EmployeeRepository) *VerificationService {
	return &VerificationService{customers: customers, employees: employees}
}

// SendCode generates a verification code and stores it on the customer or
// employee record, returning the code for delivery.
func (s *VerificationService) SendCode(ctx context.Context, accountID string, isEmployee bool) (string, error) {
	if accountID == "" {
		return "", ErrInvalidCustomerID
	}

	code := randomSixDigitCode()

	var err error
	if isEmployee {
		err = s.employees.UpdateVerification(ctx, accountID, code, false)
	} else {
		err = s.customers.UpdateVerification(ctx, accountID, code, false)
	}
	if err != nil {
		return "", err
	}

	return code, nil
}

// VerifyCode compares the presented code with the stored one. On a match the
// account is marked verified and the code is cleared.
func (s *VerificationService) VerifyCode(ctx context.Context, accountID, code string, isEmployee bool) error {
	if accountID == "" {
		return ErrInvalidCustomerID
	}
	if code == "" {
		return ErrInvalidVerificationCode
	}

	var stored string
	if isEmployee {
		employee, err := s.employees.GetByID(ctx, accountID)
		if err != nil {
			return err
		}
		stored = employee.VerificationCode
	} else {
		customer, err := s.customers.GetByID(ctx, accountID)
		if err != nil {
			return err
		}
		stored = customer.VerificationCode
	}

	if stored == "" || stored != code {
		return ErrInvalidVerificationCode
	}

	if isEmployee {
		return s.employees.UpdateVerification(ctx, accountID, "", true)
	}
	return s.customers.UpdateVerification(ctx, accountID, "", true)
}
