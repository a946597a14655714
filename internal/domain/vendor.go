package domain

import "time"

// PriceTier maps an elapsed-hour range to a flat price. End is nil for the
// final open-ended tier ("this hour and beyond").
type PriceTier struct {
	Start int     `json:"start"`
	End   *int    `json:"end,omitempty"`
	Price float64 `json:"price"`
}

// Vendor represents a parking lot in the marketplace. It is the unit of
// geospatial indexing and pricing.
type Vendor struct {
	ID             string
	ParkName       string
	Address        string
	IBAN           string
	TaxNumber      string
	Latitude       float64
	Longitude      float64
	Geohash        string // computed once at creation, never refreshed
	OpenTime       string // "09:00"
	CloseTime      string // "18:00"
	PriceTable     []PriceTier
	CommissionRate float64 // 0-1
	TaxRate        float64 // 0-1
	Security       float64
	Accessibility  float64
	ServiceQuality float64
	Rating         float64
	Active         bool
	CreatedAt      time.Time
}

// DefaultPriceTable returns the price table assigned to newly provisioned
// vendors until the owner configures their own.
func DefaultPriceTable() []PriceTier {
	one, two, three := 1, 2, 3
	return []PriceTier{
		{Start: 0, End: &one, Price: 10},
		{Start: 1, End: &two, Price: 15},
		{Start: 2, End: &three, Price: 20},
		{Start: 3, Price: 25},
	}
}

// ClonePriceTable deep-copies a price table. Sessions capture the vendor's
// table at open time so later price changes never affect open sessions.
func ClonePriceTable(table []PriceTier) []PriceTier {
	if table == nil {
		return nil
	}
	out := make([]PriceTier, len(table))
	for i, tier := range table {
		out[i] = tier
		if tier.End != nil {
			end := *tier.End
			out[i].End = &end
		}
	}
	return out
}

// VendorMembership links an employee to a vendor with a permission level.
type VendorMembership struct {
	VendorID   string
	EmployeeID string
	Permission string // "owner" or "staff"
	CreatedAt  time.Time
}
