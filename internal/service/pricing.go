package service

import (
	"github.com/shopspring/decimal"

	"park/internal/domain"
)

// SelectTier returns the price of the first tier covering elapsedHours: the
// first entry where elapsedHours >= Start and (End is nil or
// elapsedHours < End). Tables are expected to end with an open-ended tier;
// if nothing matches, ErrNoMatchingTier is returned instead of guessing.
func SelectTier(elapsedHours int, table []domain.PriceTier) (float64, error) {
	for _, tier := range table {
		if elapsedHours < tier.Start {
			continue
		}
		if tier.End == nil || elapsedHours < *tier.End {
			return tier.Price, nil
		}
	}

	return 0, ErrNoMatchingTier
}

// ComputeBreakdown splits a session price into the vendor settlement
// amounts:
//
//	commission        = price * commissionRate
//	tax               = commission * taxRate
//	commissionWithTax = commission + tax
//	allowance         = price - commissionWithTax
//
// Arithmetic runs on decimals, with derived amounts rounded half-up to two
// places. The allowance is computed by subtraction from the rounded
// commissionWithTax, so allowance + commissionWithTax always equals price
// exactly.
func ComputeBreakdown(price, commissionRate, taxRate float64) domain.Breakdown {
	p := decimal.NewFromFloat(price)

	commission := p.Mul(decimal.NewFromFloat(commissionRate)).Round(2)
	tax := commission.Mul(decimal.NewFromFloat(taxRate)).Round(2)
	commissionWithTax := commission.Add(tax)
	allowance := p.Sub(commissionWithTax)

	return domain.Breakdown{
		Commission:        commission.InexactFloat64(),
		Tax:               tax.InexactFloat64(),
		CommissionWithTax: commissionWithTax.InexactFloat64(),
		Allowance:         allowance.InexactFloat64(),
	}
}

// priceToMinorUnits converts a settlement-currency price into the integer
// minor units the payment gateway expects.
func priceToMinorUnits(price float64) int64 {
	return decimal.NewFromFloat(price).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
