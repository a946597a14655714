package service

import (
	"context"
	"time"

	"park/internal/repository"
)

// DefaultDensityWindow is the trailing window over which occupancy samples
// are averaged.
const DefaultDensityWindow = 4 * time.Hour

// DensityService computes the trailing-window occupancy signal per vendor.
type DensityService struct {
	samples repository.SampleRepository
	window  time.Duration
}

// NewDensityService creates a new DensityService. A window of 0 selects the
// default 4-hour window.
func NewDensityService(samples repository.SampleRepository, window time.Duration) *DensityService {
	if window <= 0 {
		window = DefaultDensityWindow
	}
	return &DensityService{samples: samples, window: window}
}

// RecentAverage returns the mean of all density samples for the vendor
// inside the trailing window. With zero samples the average is undefined and
// nil is returned; callers must not conflate that with a true zero reading.
func (s *DensityService) RecentAverage(ctx context.Context, vendorID string) (*float64, error) {
	if vendorID == "" {
		return nil, ErrInvalidVendorID
	}

	since := time.Now().Add(-s.window)
	avg, count, err := s.samples.DensityAverageSince(ctx, vendorID, since)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}

	return &avg, nil
}
