package pricing_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-pos/internal/pricing"
)

// One line, 100000 PYG at 10%, qty 2, no discount.
func TestAggregateSingleTenPercentLine(t *testing.T) {
	cart := newTestCart(t, pricing.PYG)
	_, err := cart.AddLine(&pricing.Article{ID: 1, UnitPrice: decimal.NewFromInt(100000), TaxCategory: pricing.TaxTenPercent}, 2)
	require.NoError(t, err)

	totals := pricing.Aggregate(cart)
	require.True(t, totals.Subtotal.Equal(decimal.NewFromInt(200000)))
	require.True(t, totals.TotalTen.Equal(decimal.NewFromInt(200000)))
	require.True(t, totals.TaxTen.Equal(decimal.NewFromInt(20000)))
	require.True(t, totals.TotalFive.IsZero())
	require.True(t, totals.TaxFive.IsZero())
	require.True(t, totals.Discount.IsZero())
	require.True(t, totals.NetTotal.Equal(decimal.NewFromInt(200000)))
}

// Same cart with a 10% discount.
func TestAggregateWithPercentDiscount(t *testing.T) {
	cart := newTestCart(t, pricing.PYG)
	_, err := cart.AddLine(&pricing.Article{ID: 1, UnitPrice: decimal.NewFromInt(100000), TaxCategory: pricing.TaxTenPercent}, 2)
	require.NoError(t, err)
	require.NoError(t, cart.SetDiscount(pricing.DiscountPercent, decimal.NewFromInt(10)))

	totals := pricing.Aggregate(cart)
	require.True(t, totals.Discount.Equal(decimal.NewFromInt(20000)))
	require.True(t, totals.NetTotal.Equal(decimal.NewFromInt(180000)))

	distribution := pricing.Distribute(cart)
	require.True(t, distribution.Lines[0].Discount.Equal(decimal.NewFromInt(20000)))
	require.True(t, distribution.Lines[0].Ten.Equal(decimal.NewFromInt(180000)))
}

// Switching PYG to USD scales every derived amount by the USD rate.
func TestAggregateAfterCurrencySwitch(t *testing.T) {
	cart := newTestCart(t, pricing.PYG)
	_, err := cart.AddLine(&pricing.Article{ID: 1, UnitPrice: decimal.NewFromInt(100000), TaxCategory: pricing.TaxTenPercent}, 2)
	require.NoError(t, err)
	require.NoError(t, cart.SetDiscount(pricing.DiscountAmount, decimal.NewFromInt(20000)))

	before := pricing.Aggregate(cart)
	require.NoError(t, cart.SetCurrency(pricing.USD))
	after := pricing.Aggregate(cart)

	rate := decimal.RequireFromString("0.00013")
	require.True(t, after.Subtotal.Equal(before.Subtotal.Mul(rate)))
	require.True(t, after.TotalTen.Equal(before.TotalTen.Mul(rate)))
	require.True(t, after.Discount.Equal(before.Discount.Mul(rate)), "fixed discount must scale with the currency")
}

func TestTotalsRoundPerCurrency(t *testing.T) {
	cart := newTestCart(t, pricing.PYG)
	_, err := cart.AddLine(&pricing.Article{ID: 1, UnitPrice: decimal.RequireFromString("333.33"), TaxCategory: pricing.TaxFivePercent}, 3)
	require.NoError(t, err)

	pyg := pricing.Aggregate(cart).Round(pricing.PYG)
	require.True(t, pyg.Subtotal.Equal(decimal.NewFromInt(999)), "PYG truncates to whole guaraníes, got %s", pyg.Subtotal)

	require.NoError(t, cart.SetCurrency(pricing.USD))
	usd := pricing.Aggregate(cart).Round(pricing.USD)
	require.Equal(t, int32(-2), usd.Subtotal.Exponent())
}
