package pricing_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-pos/internal/pricing"
)

func newTestCart(t *testing.T, currency pricing.Currency) *pricing.Cart {
	t.Helper()
	cart, err := pricing.NewCart(pricing.DefaultRates(), currency)
	require.NoError(t, err)
	return cart
}

func TestAddLineSnapshotsArticle(t *testing.T) {
	cart := newTestCart(t, pricing.PYG)
	article := &pricing.Article{
		ID:          42,
		Description: "Jeringa 10ml",
		UnitPrice:   decimal.NewFromInt(100000),
		TaxCategory: pricing.TaxTenPercent,
	}
	line, err := cart.AddLine(article, 2)
	require.NoError(t, err)
	require.Equal(t, int64(42), line.ArticleID)
	require.True(t, line.Subtotal.Equal(decimal.NewFromInt(200000)))
	require.True(t, line.Tax.Ten.Equal(decimal.NewFromInt(100000)))
	require.True(t, line.Tax.Exempt.IsZero())

	// later catalog changes must not reach the cart
	article.UnitPrice = decimal.NewFromInt(999)
	require.True(t, cart.Lines[0].UnitPriceRef.Equal(decimal.NewFromInt(100000)))
}

func TestAddLineRejectsNilArticle(t *testing.T) {
	cart := newTestCart(t, pricing.PYG)
	_, err := cart.AddLine(nil, 1)
	require.ErrorIs(t, err, pricing.ErrNoItemSelected)
	require.Empty(t, cart.Lines)
}

func TestAddLineRejectsZeroQuantity(t *testing.T) {
	cart := newTestCart(t, pricing.PYG)
	_, err := cart.AddLine(&pricing.Article{ID: 1, UnitPrice: decimal.NewFromInt(10)}, 0)
	require.ErrorIs(t, err, pricing.ErrInvalidQuantity)
}

func TestRemoveLineKeepsOrder(t *testing.T) {
	cart := newTestCart(t, pricing.PYG)
	for i := int64(1); i <= 3; i++ {
		_, err := cart.AddLine(&pricing.Article{ID: i, UnitPrice: decimal.NewFromInt(i * 10)}, 1)
		require.NoError(t, err)
	}
	require.NoError(t, cart.RemoveLine(1))
	require.Len(t, cart.Lines, 2)
	require.Equal(t, int64(1), cart.Lines[0].ArticleID)
	require.Equal(t, int64(3), cart.Lines[1].ArticleID)

	require.ErrorIs(t, cart.RemoveLine(7), pricing.ErrLineNotFound)
}

func TestSetCurrencyRecomputesFromReference(t *testing.T) {
	cart := newTestCart(t, pricing.PYG)
	_, err := cart.AddLine(&pricing.Article{ID: 1, UnitPrice: decimal.NewFromInt(100000), TaxCategory: pricing.TaxTenPercent}, 2)
	require.NoError(t, err)

	require.NoError(t, cart.SetCurrency(pricing.USD))
	rate := decimal.RequireFromString("0.00013")
	require.True(t, cart.Lines[0].UnitPrice.Equal(decimal.NewFromInt(100000).Mul(rate)))
	require.True(t, cart.Lines[0].Tax.Ten.Equal(cart.Lines[0].UnitPrice))
	require.True(t, cart.Lines[0].UnitPriceRef.Equal(decimal.NewFromInt(100000)))
}

func TestSetCurrencyIdempotent(t *testing.T) {
	cart := newTestCart(t, pricing.PYG)
	_, err := cart.AddLine(&pricing.Article{ID: 1, UnitPrice: decimal.RequireFromString("33333.33"), TaxCategory: pricing.TaxFivePercent}, 3)
	require.NoError(t, err)

	require.NoError(t, cart.SetCurrency(pricing.USD))
	first := cart.Lines[0]
	require.NoError(t, cart.SetCurrency(pricing.USD))
	second := cart.Lines[0]
	require.True(t, first.UnitPrice.Equal(second.UnitPrice), "derived price drifted")
	require.True(t, first.Subtotal.Equal(second.Subtotal), "subtotal drifted")
}

func TestSetCurrencyRejectsUnknownWithoutMutation(t *testing.T) {
	cart := newTestCart(t, pricing.PYG)
	_, err := cart.AddLine(&pricing.Article{ID: 1, UnitPrice: decimal.NewFromInt(500)}, 1)
	require.NoError(t, err)

	err = cart.SetCurrency(pricing.Currency("XXX"))
	require.ErrorIs(t, err, pricing.ErrUnknownCurrency)
	require.Equal(t, pricing.PYG, cart.Currency)
	require.True(t, cart.Lines[0].UnitPrice.Equal(decimal.NewFromInt(500)))
}

func TestSetCurrencyConvertsFixedDiscount(t *testing.T) {
	cart := newTestCart(t, pricing.PYG)
	require.NoError(t, cart.SetDiscount(pricing.DiscountAmount, decimal.NewFromInt(73000)))

	require.NoError(t, cart.SetCurrency(pricing.USD))
	rate := decimal.RequireFromString("0.00013")
	want := decimal.NewFromInt(73000).Mul(rate)
	require.True(t, cart.DiscountValue.Equal(want), "discount %s, want %s", cart.DiscountValue, want)
}

func TestRestoreRebuildsDerivedFields(t *testing.T) {
	cart := newTestCart(t, pricing.USD)
	_, err := cart.AddLine(&pricing.Article{ID: 5, Description: "Suero", UnitPrice: decimal.NewFromInt(50000), TaxCategory: pricing.TaxExempt}, 4)
	require.NoError(t, err)

	restored, err := pricing.Restore(pricing.DefaultRates(), cart.Currency, cart.DiscountMode, cart.DiscountValue, cart.Lines)
	require.NoError(t, err)
	require.Len(t, restored.Lines, 1)
	require.True(t, restored.Lines[0].Subtotal.Equal(cart.Lines[0].Subtotal))
	require.True(t, restored.Lines[0].Tax.Exempt.Equal(cart.Lines[0].Tax.Exempt))
}
