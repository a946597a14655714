package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"park/internal/domain"
	"park/internal/repository"
)

const (
	welcomeCouponValue = 10.0
	welcomeCouponDays  = 10
)

// CustomerService handles customer provisioning.
type CustomerService struct {
	customers repository.CustomerRepository
}

// NewCustomerService creates a new CustomerService.
func NewCustomerService(customers repository.CustomerRepository) *CustomerService {
	return &CustomerService{customers: customers}
}

// RegisterCustomerRequest contains the parameters for provisioning a
// customer. ID may carry an external identity; when empty one is generated.
type RegisterCustomerRequest struct {
	ID          string
	NameSurname string
	Email       string
	Phone       string
}

// RegisterCustomer creates the customer record and grants the single-use
// welcome coupon.
func (s *CustomerService) RegisterCustomer(ctx context.Context, req RegisterCustomerRequest) (*domain.Customer, error) {
	now := time.Now()

	customer := &domain.Customer{
		ID:          req.ID,
		NameSurname: req.NameSurname,
		Email:       req.Email,
		Phone:       req.Phone,
		CreatedAt:   now,
	}
	if customer.ID == "" {
		customer.ID = uuid.New().String()
	}

	if err := s.customers.Create(ctx, customer); err != nil {
		return nil, err
	}

	coupon := &domain.Coupon{
		ID:          uuid.New().String(),
		CustomerID:  customer.ID,
		Code:        "WELCOME",
		Title:       "Welcome coupon",
		Description: "Welcome discount on your first parking payment.",
		Price:       welcomeCouponValue,
		CreatedAt:   now,
		ValidUntil:  now.AddDate(0, 0, welcomeCouponDays),
	}
	if err := s.customers.CreateCoupon(ctx, coupon); err != nil {
		return nil, err
	}

	return customer, nil
}
