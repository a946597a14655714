package postgres

import (
	"context"
	"database/sql"
	"time"

	"park/internal/domain"
	"park/internal/repository"
)

// SampleRepository is a PostgreSQL implementation of repository.SampleRepository.
type SampleRepository struct {
	q Querier
}

// NewSampleRepository creates a new PostgreSQL sample repository.
func NewSampleRepository(db *sql.DB) *SampleRepository {
	return &SampleRepository{q: db}
}

// AppendDensity records a density sample.
func (r *SampleRepository) AppendDensity(ctx context.Context, sample *domain.DensitySample) error {
	query := `
		INSERT INTO density_samples (id, vendor_id, customer_id, density, taken_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.q.ExecContext(ctx, query,
		sample.ID,
		sample.VendorID,
		sample.CustomerID,
		sample.Density,
		sample.TakenAt,
	)

	return err
}

// DensityAverageSince returns the mean density of all samples for the vendor
// taken at or after since, plus the sample count.
func (r *SampleRepository) DensityAverageSince(ctx context.Context, vendorID string, since time.Time) (float64, int, error) {
	query := `
		SELECT COALESCE(AVG(density), 0), COUNT(*)
		FROM density_samples WHERE vendor_id = $1 AND taken_at >= $2
	`

	var avg float64
	var count int
	if err := r.q.QueryRowContext(ctx, query, vendorID, since).Scan(&avg, &count); err != nil {
		return 0, 0, err
	}

	return avg, count, nil
}

// AppendRating records a rating sample.
func (r *SampleRepository) AppendRating(ctx context.Context, sample *domain.RatingSample) error {
	query := `
		INSERT INTO rating_samples (id, vendor_id, customer_id, session_id, security, accessibility, service_quality, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.q.ExecContext(ctx, query,
		sample.ID,
		sample.VendorID,
		sample.CustomerID,
		sample.SessionID,
		sample.Security,
		sample.Accessibility,
		sample.ServiceQuality,
		sample.Comment,
		sample.CreatedAt,
	)

	return err
}

// RatingAggregates computes the per-axis means over all rating samples for
// the vendor. The aggregate is a pure function of the full sample set, so
// recomputation is idempotent and order-independent.
func (r *SampleRepository) RatingAggregates(ctx context.Context, vendorID string) (*repository.RatingAggregate, error) {
	query := `
		SELECT COALESCE(AVG(security), 0), COALESCE(AVG(accessibility), 0), COALESCE(AVG(service_quality), 0), COUNT(*)
		FROM rating_samples WHERE vendor_id = $1
	`

	var agg repository.RatingAggregate
	err := r.q.QueryRowContext(ctx, query, vendorID).Scan(
		&agg.Security,
		&agg.Accessibility,
		&agg.ServiceQuality,
		&agg.Count,
	)
	if err != nil {
		return nil, err
	}

	return &agg, nil
}
