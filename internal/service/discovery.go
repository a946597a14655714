package service

import (
	"context"
	"sort"

	"github.com/sirupsen/logrus"

	"park/internal/domain"
	"park/internal/geo"
	"park/internal/repository"
)

// VendorSummary is the public view of a vendor returned by discovery and
// lookups. Internal-only fields (commission rate, tax rate, banking and tax
// identifiers, creation time) are never included.
type VendorSummary struct {
	VendorID       string             `json:"vendorId"`
	ParkName       string             `json:"parkName"`
	Address        string             `json:"address"`
	Latitude       float64            `json:"latitude"`
	Longitude      float64            `json:"longitude"`
	Geohash        string             `json:"geohash"`
	OpenTime       string             `json:"openTime"`
	CloseTime      string             `json:"closeTime"`
	PriceTable     []domain.PriceTier `json:"price"`
	Security       float64            `json:"security"`
	Accessibility  float64            `json:"accessibility"`
	ServiceQuality float64            `json:"serviceQuality"`
	Rating         float64            `json:"rating"`
	Active         bool               `json:"active"`

	// DistanceKm is set only on discovery results.
	DistanceKm float64 `json:"distance,omitempty"`

	// Density is nil when no sample fell inside the trailing window, which
	// is distinct from a measured zero.
	Density *float64 `json:"density"`
}

// DiscoveryService answers "vendors near me" queries by combining the
// geohash range pre-filter with true-distance refinement and the recent
// density signal.
type DiscoveryService struct {
	vendors repository.VendorRepository
	density *DensityService
	log     *logrus.Logger
}

// NewDiscoveryService creates a new DiscoveryService.
func NewDiscoveryService(vendors repository.VendorRepository, density *DensityService, log *logrus.Logger) *DiscoveryService {
	return &DiscoveryService{vendors: vendors, density: density, log: log}
}

// FindNearRequest contains the parameters for a discovery query.
type FindNearRequest struct {
	Latitude    float64
	Longitude   float64
	RadiusMiles float64
	Limit       int
}

// FindNear returns vendors within the requested radius of the center,
// nearest first. The geohash range query produces a superset of the true
// radius, so every candidate is refined by great-circle distance and
// candidates beyond the radius are dropped.
func (s *DiscoveryService) FindNear(ctx context.Context, req FindNearRequest) ([]*VendorSummary, error) {
	if req.Latitude < -90 || req.Latitude > 90 || req.Longitude < -180 || req.Longitude > 180 {
		return nil, ErrInvalidLocation
	}
	if req.RadiusMiles <= 0 {
		return nil, ErrInvalidRadius
	}

	lower, upper := geo.RangeFor(req.Latitude, req.Longitude, req.RadiusMiles)

	candidates, err := s.vendors.QueryByGeohashRange(ctx, lower, upper, req.Limit)
	if err != nil {
		return nil, err
	}

	radiusKm := req.RadiusMiles * geo.MilesToKm

	results := make([]*VendorSummary, 0, len(candidates))
	for _, vendor := range candidates {
		distance := geo.TrueDistance(req.Latitude, req.Longitude, vendor.Latitude, vendor.Longitude)
		if distance > radiusKm {
			continue
		}

		summary := summarizeVendor(vendor)
		summary.DistanceKm = distance

		density, err := s.density.RecentAverage(ctx, vendor.ID)
		if err != nil {
			// A vendor without a density signal is still worth returning.
			s.log.WithError(err).WithField("vendor_id", vendor.ID).Warn("density lookup failed")
		} else {
			summary.Density = density
		}

		results = append(results, summary)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].DistanceKm < results[j].DistanceKm
	})

	return results, nil
}

func summarizeVendor(vendor *domain.Vendor) *VendorSummary {
	return &VendorSummary{
		VendorID:       vendor.ID,
		ParkName:       vendor.ParkName,
		Address:        vendor.Address,
		Latitude:       vendor.Latitude,
		Longitude:      vendor.Longitude,
		Geohash:        vendor.Geohash,
		OpenTime:       vendor.OpenTime,
		CloseTime:      vendor.CloseTime,
		PriceTable:     domain.ClonePriceTable(vendor.PriceTable),
		Security:       vendor.Security,
		Accessibility:  vendor.Accessibility,
		ServiceQuality: vendor.ServiceQuality,
		Rating:         vendor.Rating,
		Active:         vendor.Active,
	}
}
