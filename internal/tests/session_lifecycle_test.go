package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"park/internal/domain"
	"park/internal/service"
)

// ──────────────────────────────────────────────
// SESSION LIFECYCLE
// ──────────────────────────────────────────────

// fixture bundles the mocks behind one SessionService.
type fixture struct {
	customers *MockCustomerRepository
	employees *MockEmployeeRepository
	vendors   *MockVendorRepository
	sessions  *MockSessionRepository
	samples   *MockSampleRepository
	locks     *MockLockStore
	gateway   *service.MockGateway
	svc       *service.SessionService
}

func newFixture() *fixture {
	f := &fixture{
		customers: NewMockCustomerRepository(),
		employees: NewMockEmployeeRepository(),
		vendors:   NewMockVendorRepository(),
		sessions:  NewMockSessionRepository(),
		samples:   NewMockSampleRepository(),
		locks:     NewMockLockStore(),
		gateway:   service.NewMockGateway(),
	}

	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	f.svc = service.NewSessionService(
		f.sessions, f.sessions, f.customers, f.vendors, f.employees,
		f.samples, f.locks, f.gateway, "try", log,
	)
	return f
}

func intPtr(v int) *int { return &v }

func (f *fixture) seedVendor() *domain.Vendor {
	vendor := &domain.Vendor{
		ID:       "vendor-1",
		ParkName: "Central Park Garage",
		PriceTable: []domain.PriceTier{
			{Start: 0, End: intPtr(1), Price: 10},
			{Start: 1, End: intPtr(2), Price: 15},
			{Start: 2, End: nil, Price: 20},
		},
		CommissionRate: 0.1,
		TaxRate:        0.18,
		Active:         true,
	}
	f.vendors.AddVendor(vendor)
	return vendor
}

func (f *fixture) seedCustomer(code string, expiry time.Time) *domain.Customer {
	customer := &domain.Customer{
		ID:                "customer-1",
		NameSurname:       "Ayse Yilmaz",
		PairingCode:       code,
		PairingCodeExpiry: expiry,
		CardUserKey:       "cus_abc",
	}
	f.customers.AddCustomer(customer)
	return customer
}

func (f *fixture) seedEmployee() *domain.Employee {
	employee := &domain.Employee{
		ID:          "employee-1",
		NameSurname: "Mehmet Kaya",
	}
	f.employees.AddEmployee(employee)
	return employee
}

func TestParsePairingToken(t *testing.T) {
	t.Parallel()

	token, err := service.ParsePairingToken("123456-550e8400-e29b-41d4-a716-446655440000")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token.Code != "123456" {
		t.Errorf("expected code 123456, got %s", token.Code)
	}
	// Only the first separator splits; the customer ID keeps its dashes.
	if token.CustomerID != "550e8400-e29b-41d4-a716-446655440000" {
		t.Errorf("unexpected customer id: %s", token.CustomerID)
	}

	for _, bad := range []string{"", "123456", "-customer", "123456-"} {
		if _, err := service.ParsePairingToken(bad); !errors.Is(err, service.ErrInvalidPairingToken) {
			t.Errorf("token %q: expected ErrInvalidPairingToken, got %v", bad, err)
		}
	}
}

func TestOpenSession_CreatesBothCopiesInApproval(t *testing.T) {
	t.Parallel()

	f := newFixture()
	vendor := f.seedVendor()
	f.seedCustomer("123456", time.Now().Add(4*time.Minute))
	f.seedEmployee()

	session, err := f.svc.OpenSession(context.Background(), service.OpenSessionRequest{
		EmployeeID: "employee-1",
		VendorID:   "vendor-1",
		Token:      service.PairingToken{Code: "123456", CustomerID: "customer-1"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if session.Status != domain.SessionStatusApproval {
		t.Errorf("expected status approval, got %s", session.Status)
	}
	if session.ParkName != "Central Park Garage" || session.CustomerName != "Ayse Yilmaz" {
		t.Error("display snapshots not taken")
	}

	customerCopy := f.sessions.CustomerCopy(session.ID)
	vendorCopy := f.sessions.VendorCopy(session.ID)
	if customerCopy == nil || vendorCopy == nil {
		t.Fatal("expected both copies to be created")
	}
	if customerCopy.Status != domain.SessionStatusApproval || vendorCopy.Status != domain.SessionStatusApproval {
		t.Error("expected both copies in approval")
	}

	// The session's table is a deep copy; mutating the vendor's table must
	// not leak into it.
	vendor.PriceTable[0].Price = 999
	if customerCopy.PriceTable[0].Price == 999 {
		t.Error("price table was not frozen at open time")
	}
}

func TestOpenSession_WrongCode(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.seedVendor()
	f.seedCustomer("123456", time.Now().Add(4*time.Minute))
	f.seedEmployee()

	_, err := f.svc.OpenSession(context.Background(), service.OpenSessionRequest{
		EmployeeID: "employee-1",
		VendorID:   "vendor-1",
		Token:      service.PairingToken{Code: "654321", CustomerID: "customer-1"},
	})
	if !errors.Is(err, service.ErrInvalidCode) {
		t.Errorf("expected ErrInvalidCode, got %v", err)
	}
}

func TestOpenSession_ExpiredCode(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.seedVendor()
	f.seedCustomer("123456", time.Now().Add(-time.Minute))
	f.seedEmployee()

	_, err := f.svc.OpenSession(context.Background(), service.OpenSessionRequest{
		EmployeeID: "employee-1",
		VendorID:   "vendor-1",
		Token:      service.PairingToken{Code: "123456", CustomerID: "customer-1"},
	})
	if !errors.Is(err, service.ErrExpiredCode) {
		t.Errorf("expected ErrExpiredCode, got %v", err)
	}
}

func TestOpenSession_SecondInFlightSessionRejected(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.seedVendor()
	f.seedCustomer("123456", time.Now().Add(4*time.Minute))
	f.seedEmployee()

	ctx := context.Background()
	req := service.OpenSessionRequest{
		EmployeeID: "employee-1",
		VendorID:   "vendor-1",
		Token:      service.PairingToken{Code: "123456", CustomerID: "customer-1"},
	}

	if _, err := f.svc.OpenSession(ctx, req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := f.svc.OpenSession(ctx, req)
	if !errors.Is(err, service.ErrConflictingSession) {
		t.Errorf("expected ErrConflictingSession, got %v", err)
	}
}

func TestOpenSession_CustomerLockHeld(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.seedVendor()
	f.seedCustomer("123456", time.Now().Add(4*time.Minute))
	f.seedEmployee()
	f.locks.HoldCustomerLock("customer-1")

	_, err := f.svc.OpenSession(context.Background(), service.OpenSessionRequest{
		EmployeeID: "employee-1",
		VendorID:   "vendor-1",
		Token:      service.PairingToken{Code: "123456", CustomerID: "customer-1"},
	})
	if !errors.Is(err, service.ErrLocked) {
		t.Errorf("expected ErrLocked, got %v", err)
	}
}

func TestRespond_AcceptMovesToProcess(t *testing.T) {
	t.Parallel()

	f := newFixture()
	session := seedSessionPair(f, domain.SessionStatusApproval, time.Now())

	err := f.svc.Respond(context.Background(), service.RespondRequest{
		SessionID:  session.ID,
		VendorID:   session.VendorID,
		CustomerID: session.CustomerID,
		Accept:     true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := f.sessions.CustomerCopy(session.ID).Status; got != domain.SessionStatusProcess {
		t.Errorf("customer copy: expected process, got %s", got)
	}
	if got := f.sessions.VendorCopy(session.ID).Status; got != domain.SessionStatusProcess {
		t.Errorf("vendor copy: expected process, got %s", got)
	}
}

func TestRespond_RejectIsTerminal(t *testing.T) {
	t.Parallel()

	f := newFixture()
	session := seedSessionPair(f, domain.SessionStatusApproval, time.Now())

	err := f.svc.Respond(context.Background(), service.RespondRequest{
		SessionID:  session.ID,
		VendorID:   session.VendorID,
		CustomerID: session.CustomerID,
		Accept:     false,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	customerCopy := f.sessions.CustomerCopy(session.ID)
	if customerCopy.Status != domain.SessionStatusDenied {
		t.Errorf("expected denied, got %s", customerCopy.Status)
	}
	if customerCopy.ClosedTime.IsZero() {
		t.Error("expected closed time to be set on rejection")
	}

	// A denied session cannot be accepted afterwards.
	err = f.svc.Respond(context.Background(), service.RespondRequest{
		SessionID:  session.ID,
		VendorID:   session.VendorID,
		CustomerID: session.CustomerID,
		Accept:     true,
	})
	if !errors.Is(err, service.ErrInvalidState) {
		t.Errorf("expected ErrInvalidState, got %v", err)
	}
}

func TestCloseSession_PricesElapsedTime(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.seedVendor()
	f.seedEmployee()
	// Opened 95 minutes ago: 1 whole hour elapsed, second tier applies.
	session := seedSessionPair(f, domain.SessionStatusProcess, time.Now().Add(-95*time.Minute))

	result, err := f.svc.CloseSession(context.Background(), service.CloseSessionRequest{
		SessionID:  session.ID,
		VendorID:   session.VendorID,
		EmployeeID: "employee-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.CustomerCopy.TotalMinutes != 95 {
		t.Errorf("expected 95 minutes, got %d", result.CustomerCopy.TotalMinutes)
	}
	if result.CustomerCopy.TotalPrice != 15 {
		t.Errorf("expected price 15, got %v", result.CustomerCopy.TotalPrice)
	}
	if result.CustomerCopy.Status != domain.SessionStatusPayment {
		t.Errorf("customer copy: expected payment, got %s", result.CustomerCopy.Status)
	}
	if result.VendorCopy.Status != domain.SessionStatusCompleted {
		t.Errorf("vendor copy: expected completed, got %s", result.VendorCopy.Status)
	}

	if result.CustomerCopy.Breakdown != nil {
		t.Error("breakdown must not appear on the customer copy")
	}
	breakdown := result.VendorCopy.Breakdown
	if breakdown == nil {
		t.Fatal("expected breakdown on the vendor copy")
	}
	// 15 * 0.1 = 1.5 commission, 1.5 * 0.18 = 0.27 tax.
	if breakdown.Commission != 1.5 || breakdown.Tax != 0.27 {
		t.Errorf("unexpected breakdown: %+v", breakdown)
	}
	if breakdown.Allowance+breakdown.CommissionWithTax != result.VendorCopy.TotalPrice {
		t.Error("allowance and commission with tax must sum to the total price")
	}
}

func TestCloseSession_DivergentCopiesRejected(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.seedVendor()
	f.seedEmployee()
	session := seedSessionPair(f, domain.SessionStatusProcess, time.Now().Add(-30*time.Minute))

	// Simulate a historical partial write: the vendor copy lags behind.
	vendorCopy := f.sessions.VendorCopy(session.ID)
	vendorCopy.Status = domain.SessionStatusApproval
	f.sessions.AddVendorCopy(vendorCopy)

	_, err := f.svc.CloseSession(context.Background(), service.CloseSessionRequest{
		SessionID:  session.ID,
		VendorID:   session.VendorID,
		EmployeeID: "employee-1",
	})
	if !errors.Is(err, service.ErrInvalidState) {
		t.Errorf("expected ErrInvalidState, got %v", err)
	}

	// Neither copy may have been touched.
	if got := f.sessions.CustomerCopy(session.ID).Status; got != domain.SessionStatusProcess {
		t.Errorf("customer copy mutated to %s", got)
	}
}

// seedSessionPair stores both copies of a session in the given status.
func seedSessionPair(f *fixture, status domain.SessionStatus, requestTime time.Time) *domain.Session {
	session := &domain.Session{
		ID:          "session-1",
		CustomerID:  "customer-1",
		VendorID:    "vendor-1",
		EmployeeID:  "employee-1",
		Status:      status,
		RequestTime: requestTime,
		PriceTable: []domain.PriceTier{
			{Start: 0, End: intPtr(1), Price: 10},
			{Start: 1, End: intPtr(2), Price: 15},
			{Start: 2, End: nil, Price: 20},
		},
	}
	f.sessions.AddCustomerCopy(session)
	f.sessions.AddVendorCopy(session)
	return session
}
