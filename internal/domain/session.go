package domain

import "time"

// SessionStatus represents the current status of a parking session copy.
type SessionStatus string

const (
	// SessionStatusApproval means the employee opened the session and the
	// customer has not yet accepted or rejected it.
	SessionStatusApproval SessionStatus = "approval"

	// SessionStatusProcess means the customer accepted and the vehicle is
	// parked.
	SessionStatusProcess SessionStatus = "process"

	// SessionStatusPayment is the customer-copy state after close, while the
	// charge is outstanding.
	SessionStatusPayment SessionStatus = "payment"

	// SessionStatusCompleted is the vendor-copy state after close, and the
	// customer-copy state after a successful charge.
	SessionStatusCompleted SessionStatus = "completed"

	// SessionStatusDenied is the terminal state when the customer rejects
	// the session.
	SessionStatusDenied SessionStatus = "denied"
)

// Breakdown is the vendor-side financial split of a closed session. It is
// never exposed on the customer copy.
type Breakdown struct {
	Commission        float64
	Tax               float64
	CommissionWithTax float64
	Allowance         float64
}

// Session represents one parking visit. Each session exists as two
// denormalized copies sharing the same ID, one under the owning customer and
// one under the owning vendor. A transition is valid only when both copies
// agree on the pre-transition status.
type Session struct {
	ID         string
	CustomerID string
	VendorID   string
	EmployeeID string

	Status      SessionStatus
	RequestTime time.Time
	ReplyTime   time.Time
	ClosedTime  time.Time
	ClosedBy    string // employee who closed the session

	// Price table frozen at open time.
	PriceTable []PriceTier

	// Display snapshots taken at creation, never refreshed.
	CustomerName  string
	CustomerImage string
	ParkName      string
	EmployeeName  string
	EmployeeImage string

	TotalMinutes int
	TotalPrice   float64

	// Vendor copy only.
	Breakdown          *Breakdown
	AllowanceCompleted bool
	PaymentCompleted   bool

	PaymentID            string
	PaymentCompletedTime time.Time
	CouponID             string
	CouponPrice          float64
	Rated                bool
}
