package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"park/internal/domain"
	"park/internal/geo"
	"park/internal/service"
)

// ──────────────────────────────────────────────
// VENDOR DISCOVERY
// ──────────────────────────────────────────────

func newDiscoveryFixture() (*MockVendorRepository, *MockSampleRepository, *service.DiscoveryService) {
	vendors := NewMockVendorRepository()
	samples := NewMockSampleRepository()

	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	density := service.NewDensityService(samples, 4*time.Hour)
	return vendors, samples, service.NewDiscoveryService(vendors, density, log)
}

func seedVendorAt(vendors *MockVendorRepository, id string, lat, lng float64) {
	vendors.AddVendor(&domain.Vendor{
		ID:        id,
		ParkName:  id,
		Latitude:  lat,
		Longitude: lng,
		Geohash:   geo.Encode(lat, lng),
		Active:    true,
	})
}

func TestFindNear_RefinesAndSortsByDistance(t *testing.T) {
	t.Parallel()

	vendors, _, svc := newDiscoveryFixture()

	// Two vendors inside the 1-mile radius around the center.
	seedVendorAt(vendors, "nearest", 41.0005, 29.0)
	seedVendorAt(vendors, "near", 41.001, 29.001)
	// Inside the bounding box corner but farther than the radius.
	seedVendorAt(vendors, "box-corner", 41.0144, 29.018)
	// Nowhere near the center.
	seedVendorAt(vendors, "elsewhere", 10.0, 10.0)

	results, err := svc.FindNear(context.Background(), service.FindNearRequest{
		Latitude:    41.0,
		Longitude:   29.0,
		RadiusMiles: 1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].VendorID != "nearest" || results[1].VendorID != "near" {
		t.Errorf("unexpected order: %s, %s", results[0].VendorID, results[1].VendorID)
	}
	if results[0].DistanceKm >= results[1].DistanceKm {
		t.Error("results must be ordered by ascending distance")
	}
	if results[1].DistanceKm > geo.MilesToKm {
		t.Errorf("result beyond radius: %v km", results[1].DistanceKm)
	}
}

func TestFindNear_AttachesDensityWhenSampled(t *testing.T) {
	t.Parallel()

	vendors, samples, svc := newDiscoveryFixture()
	seedVendorAt(vendors, "sampled", 41.0005, 29.0)
	seedVendorAt(vendors, "unsampled", 41.001, 29.001)

	now := time.Now()
	samples.AddDensitySample(&domain.DensitySample{VendorID: "sampled", Density: 0.6, TakenAt: now.Add(-time.Hour)})
	samples.AddDensitySample(&domain.DensitySample{VendorID: "sampled", Density: 0.8, TakenAt: now.Add(-2 * time.Hour)})
	// Outside the 4-hour window, must not count.
	samples.AddDensitySample(&domain.DensitySample{VendorID: "sampled", Density: 0.1, TakenAt: now.Add(-5 * time.Hour)})

	results, err := svc.FindNear(context.Background(), service.FindNearRequest{
		Latitude:    41.0,
		Longitude:   29.0,
		RadiusMiles: 1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	byID := map[string]*service.VendorSummary{}
	for _, r := range results {
		byID[r.VendorID] = r
	}

	sampled := byID["sampled"]
	if sampled.Density == nil {
		t.Fatal("expected density on the sampled vendor")
	}
	if *sampled.Density < 0.699 || *sampled.Density > 0.701 {
		t.Errorf("expected density 0.7, got %v", *sampled.Density)
	}

	// No sample in the window means unknown, not zero.
	if byID["unsampled"].Density != nil {
		t.Error("expected nil density for the unsampled vendor")
	}
}

func TestFindNear_RejectsBadInput(t *testing.T) {
	t.Parallel()

	_, _, svc := newDiscoveryFixture()

	_, err := svc.FindNear(context.Background(), service.FindNearRequest{Latitude: 91, Longitude: 29, RadiusMiles: 1})
	if !errors.Is(err, service.ErrInvalidLocation) {
		t.Errorf("expected ErrInvalidLocation, got %v", err)
	}

	_, err = svc.FindNear(context.Background(), service.FindNearRequest{Latitude: 41, Longitude: 29, RadiusMiles: 0})
	if !errors.Is(err, service.ErrInvalidRadius) {
		t.Errorf("expected ErrInvalidRadius, got %v", err)
	}
}

func TestFindNear_SummariesExcludeInternalFields(t *testing.T) {
	t.Parallel()

	vendors, _, svc := newDiscoveryFixture()
	vendors.AddVendor(&domain.Vendor{
		ID:             "vendor-1",
		ParkName:       "Lot",
		Latitude:       41.0005,
		Longitude:      29.0,
		Geohash:        geo.Encode(41.0005, 29.0),
		IBAN:           "TR000000",
		TaxNumber:      "12345",
		CommissionRate: 0.1,
		PriceTable:     domain.DefaultPriceTable(),
	})

	results, err := svc.FindNear(context.Background(), service.FindNearRequest{
		Latitude:    41.0,
		Longitude:   29.0,
		RadiusMiles: 1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if len(results[0].PriceTable) == 0 {
		t.Error("expected price table on the summary")
	}
}
