package pricing

import "github.com/shopspring/decimal"

var (
	twenty = decimal.NewFromInt(20)
	ten    = decimal.NewFromInt(10)
)

// Totals aggregates the cart-level figures handed to display and submission.
// TotalFive and TotalTen are the tax-inclusive bucket sums; TaxFive and TaxTen
// are the derived liabilities using the upstream's embedded-rate divisors
// (bucket/20 and bucket/10). The divisors must not be replaced with a straight
// 5% or 10% of the bucket, the upstream ledger depends on them.
type Totals struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	TotalExempt decimal.Decimal `json:"totalExempt"`
	TotalFive   decimal.Decimal `json:"totalFive"`
	TotalTen    decimal.Decimal `json:"totalTen"`
	TaxFive     decimal.Decimal `json:"taxFive"`
	TaxTen      decimal.Decimal `json:"taxTen"`
	Discount    decimal.Decimal `json:"discount"`
	NetTotal    decimal.Decimal `json:"netTotal"`
}

// Aggregate recomputes the cart totals. Nothing is cached; callers invoke it
// on every read.
func Aggregate(c *Cart) Totals {
	totals := Totals{
		Subtotal:    decimal.Zero,
		TotalExempt: decimal.Zero,
		TotalFive:   decimal.Zero,
		TotalTen:    decimal.Zero,
	}
	for _, line := range c.Lines {
		qty := decimal.NewFromInt(int64(line.Quantity))
		totals.Subtotal = totals.Subtotal.Add(line.Subtotal)
		totals.TotalExempt = totals.TotalExempt.Add(line.Tax.Exempt.Mul(qty))
		totals.TotalFive = totals.TotalFive.Add(line.Tax.Five.Mul(qty))
		totals.TotalTen = totals.TotalTen.Add(line.Tax.Ten.Mul(qty))
	}
	totals.TaxFive = totals.TotalFive.Div(twenty)
	totals.TaxTen = totals.TotalTen.Div(ten)
	totals.Discount = Distribute(c).Amount
	totals.NetTotal = totals.Subtotal.Sub(totals.Discount)
	return totals
}

// Round truncates every figure to the display scale of the given currency.
func (t Totals) Round(c Currency) Totals {
	return Totals{
		Subtotal:    RoundDisplay(t.Subtotal, c),
		TotalExempt: RoundDisplay(t.TotalExempt, c),
		TotalFive:   RoundDisplay(t.TotalFive, c),
		TotalTen:    RoundDisplay(t.TotalTen, c),
		TaxFive:     RoundDisplay(t.TaxFive, c),
		TaxTen:      RoundDisplay(t.TaxTen, c),
		Discount:    RoundDisplay(t.Discount, c),
		NetTotal:    RoundDisplay(t.NetTotal, c),
	}
}
