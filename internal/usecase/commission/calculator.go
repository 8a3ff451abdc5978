package commission

import (
	"fmt"

	"github.com/mkarelin/sales-commission-service/internal/domain"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Minor-unit precision per ISO currency. Anything unlisted settles to
// two decimals.
var currencyDecimals = map[string]int32{
	"JPY": 0,
	"KRW": 0,
	"VND": 0,
	"BHD": 3,
	"KWD": 3,
	"OMR": 3,
}

func CurrencyDecimals(currency string) int32 {
	if d, ok := currencyDecimals[currency]; ok {
		return d
	}
	return 2
}

// Line is one computed commission amount.
type Line struct {
	AllocationID string
	Role         domain.CommissionRole
	Amount       decimal.Decimal
}

// AllocationAmount derives the amount of a single allocation from the
// order base amount. Rate-based allocations are rounded half-up to the
// currency's minor unit; fixed amounts are taken as-is.
func AllocationAmount(baseAmount decimal.Decimal, currency string, alloc *domain.CommissionAllocation) (decimal.Decimal, error) {
	if !alloc.Rate.IsZero() && !alloc.FixedAmount.IsZero() {
		return decimal.Zero, fmt.Errorf("allocation %s (%s): %w", alloc.ID, alloc.Role, domain.ErrConflictingBasis)
	}

	var amount decimal.Decimal
	if !alloc.Rate.IsZero() {
		amount = baseAmount.Mul(alloc.Rate).Div(hundred).Round(CurrencyDecimals(currency))
	} else {
		amount = alloc.FixedAmount
	}

	if amount.IsNegative() {
		return decimal.Zero, fmt.Errorf("allocation %s (%s): %w", alloc.ID, alloc.Role, domain.ErrNegativeCommission)
	}
	return amount, nil
}

// Compute derives all commission amounts for an order. It is pure: no
// I/O, no mutation of the inputs, identical results on repeated calls.
func Compute(baseAmount decimal.Decimal, currency string, allocs []*domain.CommissionAllocation) ([]Line, error) {
	lines := make([]Line, 0, len(allocs))
	for _, alloc := range allocs {
		amount, err := AllocationAmount(baseAmount, currency, alloc)
		if err != nil {
			return nil, err
		}
		lines = append(lines, Line{
			AllocationID: alloc.ID,
			Role:         alloc.Role,
			Amount:       amount,
		})
	}
	return lines, nil
}

// NetResult is the reporting-only net commission figure:
// base - (internal commissions - external commissions). External
// commissions increase the net under this formula; that mirrors the
// books this service replaces and is pending product-owner review.
func NetResult(baseAmount decimal.Decimal, allocs []*domain.CommissionAllocation) decimal.Decimal {
	internal := decimal.Zero
	external := decimal.Zero
	for _, alloc := range allocs {
		if alloc.Role.External() {
			external = external.Add(alloc.Amount)
		} else {
			internal = internal.Add(alloc.Amount)
		}
	}
	return baseAmount.Sub(internal.Sub(external))
}
