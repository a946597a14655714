package domain

import "time"

// DensitySample is a point-in-time occupancy reading for a vendor, recorded
// when a customer settles a session. Samples are append-only and consumed in
// aggregate over a trailing window.
type DensitySample struct {
	ID         string
	VendorID   string
	CustomerID string
	Density    float64
	TakenAt    time.Time
}

// RatingSample is one customer rating of a vendor, linked to the session that
// produced it. Append-only.
type RatingSample struct {
	ID             string
	VendorID       string
	CustomerID     string
	SessionID      string
	Security       float64
	Accessibility  float64
	ServiceQuality float64
	Comment        string
	CreatedAt      time.Time
}
