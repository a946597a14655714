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
// SETTLEMENT AND RATING
// ──────────────────────────────────────────────

// seedClosedSession stores a session pair ready for settlement: customer
// copy in payment, vendor copy completed and unpaid.
func seedClosedSession(f *fixture, totalPrice float64) *domain.Session {
	session := &domain.Session{
		ID:          "session-1",
		CustomerID:  "customer-1",
		VendorID:    "vendor-1",
		EmployeeID:  "employee-1",
		Status:      domain.SessionStatusPayment,
		RequestTime: time.Now().Add(-2 * time.Hour),
		ClosedTime:  time.Now(),
		TotalPrice:  totalPrice,
	}
	f.sessions.AddCustomerCopy(session)

	vendorCopy := *session
	vendorCopy.Status = domain.SessionStatusCompleted
	vendorCopy.Breakdown = &domain.Breakdown{
		Commission: 1.5, Tax: 0.27, CommissionWithTax: 1.77, Allowance: totalPrice - 1.77,
	}
	f.sessions.AddVendorCopy(&vendorCopy)

	return session
}

func TestSettlePayment_ChargesAndCompletes(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.seedCustomer("", time.Time{})
	seedClosedSession(f, 15)

	result, err := f.svc.SettlePayment(context.Background(), service.SettlePaymentRequest{
		SessionID:          "session-1",
		CustomerID:         "customer-1",
		VendorID:           "vendor-1",
		PaymentMethodToken: "pm_card",
		Density:            0.75,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.AmountCharged != 15 {
		t.Errorf("expected 15 charged, got %v", result.AmountCharged)
	}
	if f.gateway.LastRequest.AmountMinorUnits != 1500 {
		t.Errorf("expected 1500 minor units, got %d", f.gateway.LastRequest.AmountMinorUnits)
	}
	if f.gateway.LastRequest.GatewayCustomerKey != "cus_abc" {
		t.Errorf("expected stored gateway key, got %s", f.gateway.LastRequest.GatewayCustomerKey)
	}

	customerCopy := f.sessions.CustomerCopy("session-1")
	if customerCopy.Status != domain.SessionStatusCompleted {
		t.Errorf("expected completed, got %s", customerCopy.Status)
	}
	if customerCopy.PaymentID == "" || customerCopy.PaymentCompletedTime.IsZero() {
		t.Error("expected payment id and completion time")
	}

	vendorCopy := f.sessions.VendorCopy("session-1")
	if !vendorCopy.PaymentCompleted {
		t.Error("expected vendor copy marked paid")
	}

	if f.samples.DensitySampleCount() != 1 {
		t.Errorf("expected 1 density sample, got %d", f.samples.DensitySampleCount())
	}
}

func TestSettlePayment_DeclineLeavesStateUntouched(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.seedCustomer("", time.Time{})
	seedClosedSession(f, 15)
	f.gateway.Fail = true

	_, err := f.svc.SettlePayment(context.Background(), service.SettlePaymentRequest{
		SessionID:          "session-1",
		CustomerID:         "customer-1",
		VendorID:           "vendor-1",
		PaymentMethodToken: "pm_card",
	})
	if !errors.Is(err, service.ErrPaymentRejected) {
		t.Fatalf("expected ErrPaymentRejected, got %v", err)
	}

	customerCopy := f.sessions.CustomerCopy("session-1")
	if customerCopy.Status != domain.SessionStatusPayment {
		t.Errorf("customer copy mutated to %s", customerCopy.Status)
	}
	if f.sessions.VendorCopy("session-1").PaymentCompleted {
		t.Error("vendor copy must stay unpaid after a decline")
	}
	if f.samples.DensitySampleCount() != 0 {
		t.Error("no density sample may be recorded on a decline")
	}

	// The client can retry with a different card.
	f.gateway.Fail = false
	if _, err := f.svc.SettlePayment(context.Background(), service.SettlePaymentRequest{
		SessionID:          "session-1",
		CustomerID:         "customer-1",
		VendorID:           "vendor-1",
		PaymentMethodToken: "pm_other",
	}); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
}

func TestSettlePayment_SecondSettlementRejected(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.seedCustomer("", time.Time{})
	seedClosedSession(f, 15)

	ctx := context.Background()
	req := service.SettlePaymentRequest{
		SessionID:          "session-1",
		CustomerID:         "customer-1",
		VendorID:           "vendor-1",
		PaymentMethodToken: "pm_card",
	}

	if _, err := f.svc.SettlePayment(ctx, req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := f.svc.SettlePayment(ctx, req)
	if !errors.Is(err, service.ErrInvalidState) {
		t.Errorf("expected ErrInvalidState, got %v", err)
	}
	if f.gateway.ChargeCount != 1 {
		t.Errorf("expected a single charge, got %d", f.gateway.ChargeCount)
	}
}

func TestSettlePayment_CouponReducesCharge(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.seedCustomer("", time.Time{})
	seedClosedSession(f, 15)
	f.customers.AddCoupon(&domain.Coupon{
		ID:         "coupon-1",
		CustomerID: "customer-1",
		Price:      10,
		ValidUntil: time.Now().Add(24 * time.Hour),
	})

	result, err := f.svc.SettlePayment(context.Background(), service.SettlePaymentRequest{
		SessionID:          "session-1",
		CustomerID:         "customer-1",
		VendorID:           "vendor-1",
		PaymentMethodToken: "pm_card",
		CouponID:           "coupon-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.AmountCharged != 5 {
		t.Errorf("expected 5 charged after discount, got %v", result.AmountCharged)
	}

	customerCopy := f.sessions.CustomerCopy("session-1")
	if customerCopy.CouponID != "coupon-1" || customerCopy.CouponPrice != 10 {
		t.Error("coupon usage not recorded on the session")
	}
	if customerCopy.TotalPrice != 5 {
		t.Errorf("expected recorded total 5, got %v", customerCopy.TotalPrice)
	}

	// The coupon is single use.
	if f.customers.CouponCount() != 0 {
		t.Error("expected coupon to be deleted after settlement")
	}
}

func TestSettlePayment_ExpiredCouponRejected(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.seedCustomer("", time.Time{})
	seedClosedSession(f, 15)
	f.customers.AddCoupon(&domain.Coupon{
		ID:         "coupon-1",
		CustomerID: "customer-1",
		Price:      10,
		ValidUntil: time.Now().Add(-time.Hour),
	})

	_, err := f.svc.SettlePayment(context.Background(), service.SettlePaymentRequest{
		SessionID:          "session-1",
		CustomerID:         "customer-1",
		VendorID:           "vendor-1",
		PaymentMethodToken: "pm_card",
		CouponID:           "coupon-1",
	})
	if !errors.Is(err, service.ErrInvalidCoupon) {
		t.Errorf("expected ErrInvalidCoupon, got %v", err)
	}
	if f.gateway.ChargeCount != 0 {
		t.Error("no charge may happen with an invalid coupon")
	}
}

func TestSettlePayment_CouponLargerThanTotalChargesZero(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.seedCustomer("", time.Time{})
	seedClosedSession(f, 10)
	f.customers.AddCoupon(&domain.Coupon{
		ID:         "coupon-1",
		CustomerID: "customer-1",
		Price:      25,
		ValidUntil: time.Now().Add(24 * time.Hour),
	})

	result, err := f.svc.SettlePayment(context.Background(), service.SettlePaymentRequest{
		SessionID:          "session-1",
		CustomerID:         "customer-1",
		VendorID:           "vendor-1",
		PaymentMethodToken: "pm_card",
		CouponID:           "coupon-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.AmountCharged != 0 {
		t.Errorf("expected 0 charged, got %v", result.AmountCharged)
	}
}

func TestRateSession_UpdatesVendorAggregates(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.seedVendor()
	seedClosedSession(f, 15)

	err := f.svc.RateSession(context.Background(), service.RateSessionRequest{
		SessionID:      "session-1",
		CustomerID:     "customer-1",
		VendorID:       "vendor-1",
		Security:       4,
		Accessibility:  5,
		ServiceQuality: 3,
		Comment:        "tight spaces",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	vendor := f.vendors.GetVendor("vendor-1")
	if vendor.Security != 4 || vendor.Accessibility != 5 || vendor.ServiceQuality != 3 {
		t.Errorf("unexpected aggregates: %+v", vendor)
	}
	if vendor.Rating != 4 {
		t.Errorf("expected overall rating 4, got %v", vendor.Rating)
	}
	if !f.sessions.CustomerCopy("session-1").Rated {
		t.Error("expected session marked rated")
	}
}

func TestRateSession_SecondRatingRejected(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.seedVendor()
	seedClosedSession(f, 15)

	req := service.RateSessionRequest{
		SessionID:      "session-1",
		CustomerID:     "customer-1",
		VendorID:       "vendor-1",
		Security:       4,
		Accessibility:  4,
		ServiceQuality: 4,
	}
	if err := f.svc.RateSession(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := f.svc.RateSession(context.Background(), req)
	if !errors.Is(err, service.ErrAlreadyRated) {
		t.Errorf("expected ErrAlreadyRated, got %v", err)
	}
	if f.vendors.UpdateRatingsCallCount != 1 {
		t.Errorf("expected one aggregate update, got %d", f.vendors.UpdateRatingsCallCount)
	}
}

func TestRateSession_ScoreOutOfRange(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.seedVendor()
	seedClosedSession(f, 15)

	err := f.svc.RateSession(context.Background(), service.RateSessionRequest{
		SessionID:      "session-1",
		CustomerID:     "customer-1",
		VendorID:       "vendor-1",
		Security:       6,
		Accessibility:  4,
		ServiceQuality: 4,
	})
	if !errors.Is(err, service.ErrInvalidRating) {
		t.Errorf("expected ErrInvalidRating, got %v", err)
	}
}

func TestRateSession_OpenSessionNotRateable(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.seedVendor()
	seedSessionPair(f, domain.SessionStatusProcess, time.Now())

	err := f.svc.RateSession(context.Background(), service.RateSessionRequest{
		SessionID:      "session-1",
		CustomerID:     "customer-1",
		VendorID:       "vendor-1",
		Security:       4,
		Accessibility:  4,
		ServiceQuality: 4,
	})
	if !errors.Is(err, service.ErrInvalidState) {
		t.Errorf("expected ErrInvalidState, got %v", err)
	}
}
