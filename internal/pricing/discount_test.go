package pricing_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-pos/internal/pricing"
)

func TestDistributePercentMode(t *testing.T) {
	cart := newTestCart(t, pricing.PYG)
	_, err := cart.AddLine(&pricing.Article{ID: 1, UnitPrice: decimal.NewFromInt(100000), TaxCategory: pricing.TaxTenPercent}, 2)
	require.NoError(t, err)
	require.NoError(t, cart.SetDiscount(pricing.DiscountPercent, decimal.NewFromInt(10)))

	result := pricing.Distribute(cart)
	require.True(t, result.Amount.Equal(decimal.NewFromInt(20000)))
	require.Len(t, result.Lines, 1)
	require.True(t, result.Lines[0].Discount.Equal(decimal.NewFromInt(20000)))
	require.True(t, result.Lines[0].Ten.Equal(decimal.NewFromInt(180000)))
	require.True(t, result.Lines[0].Exempt.IsZero())
	require.True(t, result.Lines[0].Five.IsZero())
}

func TestDistributeFixedAmountProratesBySubtotalShare(t *testing.T) {
	cart := newTestCart(t, pricing.PYG)
	_, err := cart.AddLine(&pricing.Article{ID: 1, UnitPrice: decimal.NewFromInt(30000), TaxCategory: pricing.TaxTenPercent}, 1)
	require.NoError(t, err)
	_, err = cart.AddLine(&pricing.Article{ID: 2, UnitPrice: decimal.NewFromInt(70000), TaxCategory: pricing.TaxExempt}, 1)
	require.NoError(t, err)
	require.NoError(t, cart.SetDiscount(pricing.DiscountAmount, decimal.NewFromInt(10000)))

	result := pricing.Distribute(cart)
	require.True(t, result.Amount.Equal(decimal.NewFromInt(10000)))
	require.True(t, result.Lines[0].Discount.Equal(decimal.NewFromInt(3000)))
	require.True(t, result.Lines[1].Discount.Equal(decimal.NewFromInt(7000)))
}

func TestDistributeApportionmentSumsToCartDiscount(t *testing.T) {
	cart := newTestCart(t, pricing.PYG)
	prices := []int64{12345, 67890, 11111}
	for i, p := range prices {
		_, err := cart.AddLine(&pricing.Article{ID: int64(i + 1), UnitPrice: decimal.NewFromInt(p), TaxCategory: pricing.TaxTenPercent}, i+1)
		require.NoError(t, err)
	}
	tolerance := decimal.RequireFromString("0.0001")

	for _, mode := range []pricing.DiscountMode{pricing.DiscountPercent, pricing.DiscountAmount} {
		value := decimal.NewFromInt(15)
		if mode == pricing.DiscountAmount {
			value = decimal.NewFromInt(9999)
		}
		require.NoError(t, cart.SetDiscount(mode, value))
		result := pricing.Distribute(cart)
		sum := decimal.Zero
		for _, line := range result.Lines {
			sum = sum.Add(line.Discount)
		}
		diff := sum.Sub(result.Amount).Abs()
		require.True(t, diff.LessThanOrEqual(tolerance), "mode %s: per-line sum %s vs cart %s", mode, sum, result.Amount)
	}
}

func TestDistributeZeroSubtotalShortCircuits(t *testing.T) {
	cart := newTestCart(t, pricing.PYG)
	require.NoError(t, cart.SetDiscount(pricing.DiscountAmount, decimal.NewFromInt(5000)))

	result := pricing.Distribute(cart)
	require.Empty(t, result.Lines)
	require.True(t, result.Amount.Equal(decimal.NewFromInt(5000)))

	// a line with zero price keeps apportionment at zero instead of dividing by zero
	_, err := cart.AddLine(&pricing.Article{ID: 1, UnitPrice: decimal.Zero, TaxCategory: pricing.TaxExempt}, 1)
	require.NoError(t, err)
	result = pricing.Distribute(cart)
	require.Len(t, result.Lines, 1)
	require.True(t, result.Lines[0].Discount.IsZero())
}

func TestDistributeFloorsBucketsAtZero(t *testing.T) {
	cart := newTestCart(t, pricing.PYG)
	_, err := cart.AddLine(&pricing.Article{ID: 1, UnitPrice: decimal.NewFromInt(1000), TaxCategory: pricing.TaxFivePercent}, 1)
	require.NoError(t, err)
	require.NoError(t, cart.SetDiscount(pricing.DiscountAmount, decimal.NewFromInt(5000)))

	result := pricing.Distribute(cart)
	require.True(t, result.Lines[0].Five.IsZero(), "bucket must floor at zero, got %s", result.Lines[0].Five)
}
