package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"park/internal/domain"
	"park/internal/service"
)

// ──────────────────────────────────────────────
// PAIRING CODES, REGISTRATION, VERIFICATION
// ──────────────────────────────────────────────

func TestIssuePairingCode_OverwritesPreviousCode(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.seedCustomer("111111", time.Now().Add(time.Minute))

	ctx := context.Background()
	first, err := f.svc.IssuePairingCode(ctx, "customer-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(first.Code) != 6 {
		t.Errorf("expected a 6-digit code, got %q", first.Code)
	}
	if remaining := time.Until(first.Expiry); remaining > service.PairingCodeTTL || remaining < 4*time.Minute {
		t.Errorf("unexpected expiry window: %v", remaining)
	}

	second, err := f.svc.IssuePairingCode(ctx, "customer-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Only the latest code is live.
	customer := f.customers.GetCustomer("customer-1")
	if customer.PairingCode != second.Code {
		t.Error("expected the stored code to be the latest issued")
	}
}

func TestIssuePairingCode_UnknownCustomer(t *testing.T) {
	t.Parallel()

	f := newFixture()

	_, err := f.svc.IssuePairingCode(context.Background(), "missing")
	if err == nil {
		t.Fatal("expected an error for an unknown customer")
	}
}

func TestRegisterCustomer_GrantsWelcomeCoupon(t *testing.T) {
	t.Parallel()

	customers := NewMockCustomerRepository()
	svc := service.NewCustomerService(customers)

	customer, err := svc.RegisterCustomer(context.Background(), service.RegisterCustomerRequest{
		NameSurname: "Ali Demir",
		Email:       "ali@example.com",
		Phone:       "+905551112233",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if customer.ID == "" {
		t.Error("expected a generated customer id")
	}
	if customers.CouponCount() != 1 {
		t.Errorf("expected one welcome coupon, got %d", customers.CouponCount())
	}
}

func TestVerification_RoundTrip(t *testing.T) {
	t.Parallel()

	customers := NewMockCustomerRepository()
	employees := NewMockEmployeeRepository()
	svc := service.NewVerificationService(customers, employees)

	customers.AddCustomer(&domain.Customer{ID: "customer-1", NameSurname: "Ayse Yilmaz"})

	ctx := context.Background()
	code, err := svc.SendCode(ctx, "customer-1", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.VerifyCode(ctx, "customer-1", "000000", false); !errors.Is(err, service.ErrInvalidVerificationCode) {
		t.Errorf("expected ErrInvalidVerificationCode, got %v", err)
	}

	if err := svc.VerifyCode(ctx, "customer-1", code, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !customers.GetCustomer("customer-1").Verified {
		t.Error("expected customer marked verified")
	}
}
