package service

import "errors"

var (
	// ErrInvalidCustomerID is returned when the customer ID is empty.
	ErrInvalidCustomerID = errors.New("invalid customer id")

	// ErrInvalidVendorID is returned when the vendor ID is empty.
	ErrInvalidVendorID = errors.New("invalid vendor id")

	// ErrInvalidEmployeeID is returned when the employee ID is empty.
	ErrInvalidEmployeeID = errors.New("invalid employee id")

	// ErrInvalidSessionID is returned when the session ID is empty.
	ErrInvalidSessionID = errors.New("invalid session id")

	// ErrInvalidPairingToken is returned when the pairing token is not a
	// "code-customerId" composite.
	ErrInvalidPairingToken = errors.New("invalid pairing token")

	// ErrInvalidCode is returned when the presented pairing code does not
	// match the customer's stored code.
	ErrInvalidCode = errors.New("customer code is not correct")

	// ErrExpiredCode is returned when the pairing code has passed its
	// expiry.
	ErrExpiredCode = errors.New("customer code is expired")

	// ErrConflictingSession is returned when the customer already has a
	// session awaiting approval or in process.
	ErrConflictingSession = errors.New("customer already has a session in progress")

	// ErrInvalidState is returned when a transition is attempted from a
	// status that does not permit it, including when the two session copies
	// disagree.
	ErrInvalidState = errors.New("session is not in a valid state for this transition")

	// ErrPaymentRejected is returned when the payment gateway declines the
	// charge. Session state is left untouched so the client may retry.
	ErrPaymentRejected = errors.New("payment rejected by gateway")

	// ErrNoMatchingTier is returned when no price tier covers the elapsed
	// hours. This signals a pricing configuration defect.
	ErrNoMatchingTier = errors.New("no price tier matches elapsed hours")

	// ErrAlreadyRated is returned when the session has already been rated.
	ErrAlreadyRated = errors.New("session already rated")

	// ErrInvalidCoupon is returned when a supplied coupon is used or past
	// its validity date.
	ErrInvalidCoupon = errors.New("coupon is not valid")

	// ErrInvalidLocation is returned when coordinates are out of range.
	ErrInvalidLocation = errors.New("invalid location")

	// ErrInvalidRadius is returned when the discovery radius is not
	// positive.
	ErrInvalidRadius = errors.New("invalid radius")

	// ErrInvalidRating is returned when a rating score is outside the 1-5
	// scale.
	ErrInvalidRating = errors.New("invalid rating score")

	// ErrInvalidVerificationCode is returned when the verification code
	// does not match.
	ErrInvalidVerificationCode = errors.New("verification code is not correct")

	// ErrLocked is returned when a concurrent transition holds the lock for
	// the same customer or session.
	ErrLocked = errors.New("a concurrent operation is in progress")
)
