package domain

import "time"

// Customer represents a driver who pays for parking sessions.
type Customer struct {
	ID                string
	NameSurname       string
	Email             string
	Phone             string
	Image             string
	CardUserKey       string // opaque key at the payment gateway
	Verified          bool
	VerificationCode  string
	PairingCode       string // 6 numeric digits, empty when none issued
	PairingCodeExpiry time.Time
	CreatedAt         time.Time
}

// Coupon is a single-use discount attached to a customer.
type Coupon struct {
	ID          string
	CustomerID  string
	Code        string
	Title       string
	Description string
	Price       float64
	Used        bool
	CreatedAt   time.Time
	ValidUntil  time.Time
}

// Employee represents a terminal operator working at one or more vendors.
type Employee struct {
	ID               string
	NameSurname      string
	Email            string
	Phone            string
	Image            string
	Verified         bool
	VerificationCode string
	CreatedAt        time.Time
}
