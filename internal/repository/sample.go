package repository

import (
	"context"
	"time"

	"park/internal/domain"
)

// RatingAggregate holds the unweighted means of all rating samples for a
// vendor.
type RatingAggregate struct {
	Security       float64
	Accessibility  float64
	ServiceQuality float64
	Count          int
}

// SampleRepository defines the append-only persistence operations for
// density and rating samples.
type SampleRepository interface {
	// AppendDensity records a density sample. Samples are never mutated or
	// deleted.
	AppendDensity(ctx context.Context, sample *domain.DensitySample) error

	// DensityAverageSince returns the mean density of all samples for the
	// vendor taken at or after since, plus the sample count. A count of 0
	// means the average is undefined.
	DensityAverageSince(ctx context.Context, vendorID string, since time.Time) (float64, int, error)

	// AppendRating records a rating sample.
	AppendRating(ctx context.Context, sample *domain.RatingSample) error

	// RatingAggregates computes the per-axis means over all rating samples
	// for the vendor.
	RatingAggregates(ctx context.Context, vendorID string) (*RatingAggregate, error)
}
