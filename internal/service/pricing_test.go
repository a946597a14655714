package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"park/internal/domain"
)

func intPtr(v int) *int { return &v }

func TestSelectTier(t *testing.T) {
	table := []domain.PriceTier{
		{Start: 0, End: intPtr(1), Price: 10},
		{Start: 1, End: intPtr(2), Price: 15},
		{Start: 2, Price: 20},
	}

	cases := []struct {
		name         string
		elapsedHours int
		want         float64
	}{
		{"first hour", 0, 10},
		{"second hour", 1, 15},
		{"open-ended tier lower bound", 2, 20},
		{"well past the last bound", 48, 20},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			price, err := SelectTier(tc.elapsedHours, table)
			require.NoError(t, err)
			assert.Equal(t, tc.want, price)
		})
	}
}

func TestSelectTier_NoOpenEndedTier(t *testing.T) {
	// A malformed table with a closed final tier must fail rather than pick
	// an arbitrary price.
	table := []domain.PriceTier{
		{Start: 0, End: intPtr(1), Price: 10},
		{Start: 1, End: intPtr(2), Price: 15},
	}

	_, err := SelectTier(5, table)
	assert.ErrorIs(t, err, ErrNoMatchingTier)
}

func TestSelectTier_EmptyTable(t *testing.T) {
	_, err := SelectTier(0, nil)
	assert.ErrorIs(t, err, ErrNoMatchingTier)
}

func TestComputeBreakdown_Scenario(t *testing.T) {
	// commissionRate=0.1, taxRate=0.18, price=15
	b := ComputeBreakdown(15, 0.1, 0.18)

	assert.InDelta(t, 1.5, b.Commission, 1e-9)
	assert.InDelta(t, 0.27, b.Tax, 1e-9)
	assert.InDelta(t, 1.77, b.CommissionWithTax, 1e-9)
	assert.InDelta(t, 13.23, b.Allowance, 1e-9)
}

func TestComputeBreakdown_AllowanceIdentity(t *testing.T) {
	cases := []struct {
		price, commissionRate, taxRate float64
	}{
		{15, 0.1, 0.18},
		{25, 0.15, 0.18},
		{10, 0, 0.18},
		{10, 1, 1},
		{0, 0.1, 0.18},
		{19.99, 0.07, 0.08},
		{1234.56, 0.33, 0.2},
	}

	for _, tc := range cases {
		b := ComputeBreakdown(tc.price, tc.commissionRate, tc.taxRate)
		assert.InDelta(t, tc.price, b.Allowance+b.CommissionWithTax, 1e-9,
			"allowance + commissionWithTax must equal price for %+v", tc)
	}
}

func TestPriceToMinorUnits(t *testing.T) {
	assert.Equal(t, int64(1500), priceToMinorUnits(15))
	assert.Equal(t, int64(1323), priceToMinorUnits(13.23))
	assert.Equal(t, int64(0), priceToMinorUnits(0))
}
