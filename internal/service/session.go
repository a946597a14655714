package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"park/internal/domain"
	"park/internal/redis"
	"park/internal/repository"
)

const (
	// PairingCodeTTL is how long an issued pairing code stays valid.
	PairingCodeTTL = 5 * time.Minute

	// transitionLockTTL bounds how long a transition lock can be held if a
	// handler dies before releasing it.
	transitionLockTTL = 10 * time.Second
)

// PairingToken is the composite credential an employee terminal presents to
// open a session: the customer's short-lived code plus the customer ID.
type PairingToken struct {
	Code       string
	CustomerID string
}

// ParsePairingToken splits a "code-customerId" composite on the first
// separator only, so customer IDs containing dashes stay intact.
func ParsePairingToken(token string) (PairingToken, error) {
	parts := strings.SplitN(token, "-", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return PairingToken{}, ErrInvalidPairingToken
	}
	return PairingToken{Code: parts[0], CustomerID: parts[1]}, nil
}

// SessionService owns the parking-session lifecycle: pairing, approval,
// occupancy, closing, settlement and the rating gate. Every transition
// validates the pre-transition status of both denormalized copies before
// writing either, and writes both inside one transaction.
type SessionService struct {
	sessions  repository.SessionRepository
	sessionTx repository.SessionUnitOfWork
	customers repository.CustomerRepository
	vendors   repository.VendorRepository
	employees repository.EmployeeRepository
	samples   repository.SampleRepository
	locks     redis.LockStoreInterface
	gateway   PaymentGateway
	currency  string
	log       *logrus.Logger
}

// NewSessionService creates a new SessionService.
func NewSessionService(
	sessions repository.SessionRepository,
	sessionTx repository.SessionUnitOfWork,
	customers repository.CustomerRepository,
	vendors repository.VendorRepository,
	employees repository.EmployeeRepository,
	samples repository.SampleRepository,
	locks redis.LockStoreInterface,
	gateway PaymentGateway,
	currency string,
	log *logrus.Logger,
) *SessionService {
	return &SessionService{
		sessions:  sessions,
		sessionTx: sessionTx,
		customers: customers,
		vendors:   vendors,
		employees: employees,
		samples:   samples,
		locks:     locks,
		gateway:   gateway,
		currency:  currency,
		log:       log,
	}
}

// IssuePairingCodeResponse carries a freshly issued code and its expiry.
type IssuePairingCodeResponse struct {
	Code   string
	Expiry time.Time
}

// IssuePairingCode generates a uniformly random 6-digit code for the
// customer, valid for five minutes. Any previously issued unconsumed code is
// invalidated by the overwrite.
func (s *SessionService) IssuePairingCode(ctx context.Context, customerID string) (*IssuePairingCodeResponse, error) {
	if customerID == "" {
		return nil, ErrInvalidCustomerID
	}

	if _, err := s.customers.GetByID(ctx, customerID); err != nil {
		return nil, err
	}

	code := randomSixDigitCode()
	expiry := time.Now().Add(PairingCodeTTL)

	if err := s.customers.UpdatePairingCode(ctx, customerID, code, expiry); err != nil {
		return nil, err
	}

	return &IssuePairingCodeResponse{Code: code, Expiry: expiry}, nil
}

// OpenSessionRequest contains the parameters for opening a session.
type OpenSessionRequest struct {
	EmployeeID string
	VendorID   string
	Token      PairingToken
}

// OpenSession pairs an employee terminal with a customer code and creates
// both session copies in the approval state. The vendor's current price
// table is deep-copied into the session, so later price changes never affect
// it.
func (s *SessionService) OpenSession(ctx context.Context, req OpenSessionRequest) (*domain.Session, error) {
	if req.EmployeeID == "" {
		return nil, ErrInvalidEmployeeID
	}
	if req.VendorID == "" {
		return nil, ErrInvalidVendorID
	}
	if req.Token.Code == "" || req.Token.CustomerID == "" {
		return nil, ErrInvalidPairingToken
	}

	vendor, err := s.vendors.GetByID(ctx, req.VendorID)
	if err != nil {
		return nil, err
	}

	employee, err := s.employees.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return nil, err
	}

	// Serialize pairing per customer: the in-flight check below is a
	// query-then-act sequence.
	ok, err := s.locks.AcquireCustomerLock(ctx, req.Token.CustomerID, transitionLockTTL)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLocked
	}
	defer func() { _ = s.locks.ReleaseCustomerLock(ctx, req.Token.CustomerID) }()

	customer, err := s.customers.GetByID(ctx, req.Token.CustomerID)
	if err != nil {
		return nil, err
	}

	now := time.Now()

	if customer.PairingCode == "" || customer.PairingCode != req.Token.Code {
		return nil, ErrInvalidCode
	}
	if customer.PairingCodeExpiry.Before(now) {
		return nil, ErrExpiredCode
	}

	inFlight, err := s.sessions.ListCustomerByStatus(ctx, customer.ID, []domain.SessionStatus{
		domain.SessionStatusApproval,
		domain.SessionStatusProcess,
	})
	if err != nil {
		return nil, err
	}
	if len(inFlight) > 0 {
		return nil, ErrConflictingSession
	}

	session := &domain.Session{
		ID:            uuid.New().String(),
		CustomerID:    customer.ID,
		VendorID:      vendor.ID,
		EmployeeID:    employee.ID,
		Status:        domain.SessionStatusApproval,
		RequestTime:   now,
		PriceTable:    domain.ClonePriceTable(vendor.PriceTable),
		CustomerName:  customer.NameSurname,
		CustomerImage: customer.Image,
		ParkName:      vendor.ParkName,
		EmployeeName:  employee.NameSurname,
		EmployeeImage: employee.Image,
	}

	err = s.sessionTx.WithinTx(ctx, func(repo repository.SessionRepository) error {
		if err := repo.CreateVendorCopy(ctx, session); err != nil {
			return err
		}
		return repo.CreateCustomerCopy(ctx, session)
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"session_id":  session.ID,
		"customer_id": customer.ID,
		"vendor_id":   vendor.ID,
	}).Info("session opened")

	return session, nil
}

// RespondRequest contains the parameters for the customer's approval reply.
type RespondRequest struct {
	SessionID  string
	VendorID   string
	CustomerID string
	Accept     bool
}

// Respond moves an approval-state session to process (accept) or to the
// terminal denied state (reject).
func (s *SessionService) Respond(ctx context.Context, req RespondRequest) error {
	if req.SessionID == "" {
		return ErrInvalidSessionID
	}
	if req.VendorID == "" {
		return ErrInvalidVendorID
	}
	if req.CustomerID == "" {
		return ErrInvalidCustomerID
	}

	ok, err := s.locks.AcquireSessionLock(ctx, req.SessionID, transitionLockTTL)
	if err != nil {
		return err
	}
	if !ok {
		return ErrLocked
	}
	defer func() { _ = s.locks.ReleaseSessionLock(ctx, req.SessionID) }()

	customerCopy, vendorCopy, err := s.loadCopies(ctx, req.CustomerID, req.VendorID, req.SessionID)
	if err != nil {
		return err
	}

	if err := s.requireBothStatus(customerCopy, vendorCopy, domain.SessionStatusApproval); err != nil {
		return err
	}

	now := time.Now()
	var status domain.SessionStatus
	if req.Accept {
		status = domain.SessionStatusProcess
		customerCopy.ReplyTime, vendorCopy.ReplyTime = now, now
	} else {
		status = domain.SessionStatusDenied
		customerCopy.ReplyTime, vendorCopy.ReplyTime = now, now
		customerCopy.ClosedTime, vendorCopy.ClosedTime = now, now
	}
	customerCopy.Status, vendorCopy.Status = status, status

	return s.sessionTx.WithinTx(ctx, func(repo repository.SessionRepository) error {
		if err := repo.UpdateVendorCopy(ctx, vendorCopy); err != nil {
			return err
		}
		return repo.UpdateCustomerCopy(ctx, customerCopy)
	})
}

// CloseSessionRequest contains the parameters for closing a session.
type CloseSessionRequest struct {
	SessionID  string
	VendorID   string
	EmployeeID string
}

// CloseSessionResponse carries the post-close state of both copies.
type CloseSessionResponse struct {
	CustomerCopy *domain.Session
	VendorCopy   *domain.Session
}

// CloseSession ends the occupancy, prices the elapsed time against the
// session's frozen price table and writes the customer copy to payment and
// the vendor copy to completed with the full financial breakdown. Both
// copies must independently report process; a disagreement rejects the close
// and flags the session for out-of-band repair.
func (s *SessionService) CloseSession(ctx context.Context, req CloseSessionRequest) (*CloseSessionResponse, error) {
	if req.SessionID == "" {
		return nil, ErrInvalidSessionID
	}
	if req.VendorID == "" {
		return nil, ErrInvalidVendorID
	}
	if req.EmployeeID == "" {
		return nil, ErrInvalidEmployeeID
	}

	vendor, err := s.vendors.GetByID(ctx, req.VendorID)
	if err != nil {
		return nil, err
	}

	ok, err := s.locks.AcquireSessionLock(ctx, req.SessionID, transitionLockTTL)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLocked
	}
	defer func() { _ = s.locks.ReleaseSessionLock(ctx, req.SessionID) }()

	vendorCopy, err := s.sessions.GetVendorCopy(ctx, req.VendorID, req.SessionID)
	if err != nil {
		return nil, err
	}

	customerCopy, err := s.sessions.GetCustomerCopy(ctx, vendorCopy.CustomerID, req.SessionID)
	if err != nil {
		return nil, err
	}

	if err := s.requireBothStatus(customerCopy, vendorCopy, domain.SessionStatusProcess); err != nil {
		return nil, err
	}

	now := time.Now()
	elapsed := now.Sub(vendorCopy.RequestTime)
	totalMinutes := int(elapsed / time.Minute)
	elapsedHours := int(elapsed / time.Hour)

	unitPrice, err := SelectTier(elapsedHours, vendorCopy.PriceTable)
	if err != nil {
		return nil, err
	}

	breakdown := ComputeBreakdown(unitPrice, vendor.CommissionRate, vendor.TaxRate)

	customerCopy.Status = domain.SessionStatusPayment
	customerCopy.TotalMinutes = totalMinutes
	customerCopy.TotalPrice = unitPrice
	customerCopy.ClosedTime = now
	customerCopy.ClosedBy = req.EmployeeID
	customerCopy.Rated = false

	vendorCopy.Status = domain.SessionStatusCompleted
	vendorCopy.TotalMinutes = totalMinutes
	vendorCopy.TotalPrice = unitPrice
	vendorCopy.ClosedTime = now
	vendorCopy.ClosedBy = req.EmployeeID
	vendorCopy.Breakdown = &breakdown
	vendorCopy.AllowanceCompleted = false
	vendorCopy.PaymentCompleted = false

	err = s.sessionTx.WithinTx(ctx, func(repo repository.SessionRepository) error {
		if err := repo.UpdateCustomerCopy(ctx, customerCopy); err != nil {
			return err
		}
		return repo.UpdateVendorCopy(ctx, vendorCopy)
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"session_id":    req.SessionID,
		"total_minutes": totalMinutes,
		"total_price":   unitPrice,
	}).Info("session closed")

	return &CloseSessionResponse{CustomerCopy: customerCopy, VendorCopy: vendorCopy}, nil
}

// SettlePaymentRequest contains the parameters for settling a closed
// session.
type SettlePaymentRequest struct {
	SessionID          string
	CustomerID         string
	VendorID           string
	PaymentMethodToken string

	// CouponID optionally consumes one of the customer's coupons.
	CouponID string

	// Density is the caller-supplied instantaneous occupancy at the lot.
	Density float64
}

// SettlePaymentResponse carries the gateway payment ID and the amount
// actually charged after any coupon discount.
type SettlePaymentResponse struct {
	PaymentID     string
	AmountCharged float64
}

// SettlePayment charges the customer through the payment gateway and, on
// success, marks the customer copy completed, records the payment on the
// vendor copy and appends a density sample. A gateway decline leaves all
// session state untouched so the client may retry.
func (s *SessionService) SettlePayment(ctx context.Context, req SettlePaymentRequest) (*SettlePaymentResponse, error) {
	if req.SessionID == "" {
		return nil, ErrInvalidSessionID
	}
	if req.CustomerID == "" {
		return nil, ErrInvalidCustomerID
	}
	if req.VendorID == "" {
		return nil, ErrInvalidVendorID
	}

	ok, err := s.locks.AcquireSessionLock(ctx, req.SessionID, transitionLockTTL)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLocked
	}
	defer func() { _ = s.locks.ReleaseSessionLock(ctx, req.SessionID) }()

	customerCopy, vendorCopy, err := s.loadCopies(ctx, req.CustomerID, req.VendorID, req.SessionID)
	if err != nil {
		return nil, err
	}

	if customerCopy.Status != domain.SessionStatusPayment || vendorCopy.PaymentCompleted {
		return nil, ErrInvalidState
	}

	customer, err := s.customers.GetByID(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	amount := customerCopy.TotalPrice

	var coupon *domain.Coupon
	if req.CouponID != "" {
		coupon, err = s.customers.GetCoupon(ctx, req.CustomerID, req.CouponID)
		if err != nil {
			return nil, err
		}
		if coupon.Used || coupon.ValidUntil.Before(now) {
			return nil, ErrInvalidCoupon
		}
		amount -= coupon.Price
		if amount < 0 {
			amount = 0
		}
	}

	result, err := s.gateway.Charge(ctx, ChargeRequest{
		AmountMinorUnits:   priceToMinorUnits(amount),
		Currency:           s.currency,
		PaymentMethodToken: req.PaymentMethodToken,
		GatewayCustomerKey: customer.CardUserKey,
		Description:        "parking session " + req.SessionID,
	})
	if err != nil {
		return nil, err
	}
	if !result.Succeeded {
		return nil, fmt.Errorf("%w: %s", ErrPaymentRejected, result.FailureMessage)
	}

	customerCopy.Status = domain.SessionStatusCompleted
	customerCopy.PaymentID = result.PaymentID
	customerCopy.PaymentCompletedTime = now
	if coupon != nil {
		customerCopy.CouponID = coupon.ID
		customerCopy.CouponPrice = coupon.Price
		customerCopy.TotalPrice = amount
	}

	vendorCopy.PaymentID = result.PaymentID
	vendorCopy.PaymentCompleted = true

	err = s.sessionTx.WithinTx(ctx, func(repo repository.SessionRepository) error {
		if err := repo.UpdateCustomerCopy(ctx, customerCopy); err != nil {
			return err
		}
		return repo.UpdateVendorCopy(ctx, vendorCopy)
	})
	if err != nil {
		return nil, err
	}

	if coupon != nil {
		if err := s.customers.DeleteCoupon(ctx, req.CustomerID, coupon.ID); err != nil {
			s.log.WithError(err).WithField("coupon_id", coupon.ID).Warn("coupon delete failed after settlement")
		}
	}

	sample := &domain.DensitySample{
		ID:         uuid.New().String(),
		VendorID:   req.VendorID,
		CustomerID: req.CustomerID,
		Density:    req.Density,
		TakenAt:    now,
	}
	if err := s.samples.AppendDensity(ctx, sample); err != nil {
		s.log.WithError(err).WithField("vendor_id", req.VendorID).Warn("density sample append failed")
	}

	s.log.WithFields(logrus.Fields{
		"session_id": req.SessionID,
		"payment_id": result.PaymentID,
		"amount":     amount,
	}).Info("session settled")

	return &SettlePaymentResponse{PaymentID: result.PaymentID, AmountCharged: amount}, nil
}

// RateSessionRequest contains the parameters for rating a settled session.
type RateSessionRequest struct {
	SessionID      string
	CustomerID     string
	VendorID       string
	Security       float64
	Accessibility  float64
	ServiceQuality float64
	Comment        string
}

// RateSession appends a rating sample for the vendor, marks the customer
// copy rated and recomputes the vendor's aggregate rating fields from the
// full sample set.
func (s *SessionService) RateSession(ctx context.Context, req RateSessionRequest) error {
	if req.SessionID == "" {
		return ErrInvalidSessionID
	}
	if req.CustomerID == "" {
		return ErrInvalidCustomerID
	}
	if req.VendorID == "" {
		return ErrInvalidVendorID
	}
	for _, score := range []float64{req.Security, req.Accessibility, req.ServiceQuality} {
		if score < 1 || score > 5 {
			return ErrInvalidRating
		}
	}

	ok, err := s.locks.AcquireSessionLock(ctx, req.SessionID, transitionLockTTL)
	if err != nil {
		return err
	}
	if !ok {
		return ErrLocked
	}
	defer func() { _ = s.locks.ReleaseSessionLock(ctx, req.SessionID) }()

	customerCopy, err := s.sessions.GetCustomerCopy(ctx, req.CustomerID, req.SessionID)
	if err != nil {
		return err
	}
	if customerCopy.Rated {
		return ErrAlreadyRated
	}
	if customerCopy.Status != domain.SessionStatusPayment && customerCopy.Status != domain.SessionStatusCompleted {
		return ErrInvalidState
	}

	sample := &domain.RatingSample{
		ID:             uuid.New().String(),
		VendorID:       req.VendorID,
		CustomerID:     req.CustomerID,
		SessionID:      req.SessionID,
		Security:       req.Security,
		Accessibility:  req.Accessibility,
		ServiceQuality: req.ServiceQuality,
		Comment:        req.Comment,
		CreatedAt:      time.Now(),
	}
	if err := s.samples.AppendRating(ctx, sample); err != nil {
		return err
	}

	customerCopy.Rated = true
	if err := s.sessions.UpdateCustomerCopy(ctx, customerCopy); err != nil {
		return err
	}

	return s.recomputeVendorRating(ctx, req.VendorID)
}

// recomputeVendorRating folds the full rating sample set into the vendor's
// aggregate fields. Idempotent and order-independent.
func (s *SessionService) recomputeVendorRating(ctx context.Context, vendorID string) error {
	agg, err := s.samples.RatingAggregates(ctx, vendorID)
	if err != nil {
		return err
	}
	if agg.Count == 0 {
		return nil
	}

	rating := (agg.Security + agg.Accessibility + agg.ServiceQuality) / 3

	return s.vendors.UpdateRatings(ctx, vendorID, agg.Security, agg.Accessibility, agg.ServiceQuality, rating)
}

// loadCopies fetches both denormalized copies of a session.
func (s *SessionService) loadCopies(ctx context.Context, customerID, vendorID, sessionID string) (*domain.Session, *domain.Session, error) {
	customerCopy, err := s.sessions.GetCustomerCopy(ctx, customerID, sessionID)
	if err != nil {
		return nil, nil, err
	}

	vendorCopy, err := s.sessions.GetVendorCopy(ctx, vendorID, sessionID)
	if err != nil {
		return nil, nil, err
	}

	return customerCopy, vendorCopy, nil
}

// requireBothStatus validates that both copies agree on the expected
// pre-transition status. A disagreement means a previous partial write must
// be repaired out of band, and the transition is rejected.
func (s *SessionService) requireBothStatus(customerCopy, vendorCopy *domain.Session, want domain.SessionStatus) error {
	if customerCopy.Status == want && vendorCopy.Status == want {
		return nil
	}

	if customerCopy.Status != vendorCopy.Status {
		s.log.WithFields(logrus.Fields{
			"session_id":      customerCopy.ID,
			"customer_status": customerCopy.Status,
			"vendor_status":   vendorCopy.Status,
		}).Warn("session copies disagree; repair required")
	}

	return ErrInvalidState
}
