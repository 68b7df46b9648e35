package pricing

import "github.com/shopspring/decimal"

// TaxCategory identifies the IVA treatment of an article. The numeric codes
// match the ar_iva column of the upstream catalog: 0 exempt, 1 taxed at 5%,
// 2 taxed at 10%.
type TaxCategory int

const (
	TaxExempt      TaxCategory = 0
	TaxFivePercent TaxCategory = 1
	TaxTenPercent  TaxCategory = 2
)

// TaxBreakdown splits a unit price into IVA buckets. The Five and Ten fields
// hold the portion of the price subject to that rate, not the tax amount; the
// tax liability is derived by the aggregator using the upstream's embedded-rate
// divisors.
type TaxBreakdown struct {
	Exempt decimal.Decimal `json:"exempt"`
	Five   decimal.Decimal `json:"five"`
	Ten    decimal.Decimal `json:"ten"`
}

// Classify assigns the full unit price to the bucket matching the category.
// A price belongs to exactly one bucket. Unknown categories classify to zero
// in every bucket, matching the upstream billing system.
func Classify(unitPrice decimal.Decimal, category TaxCategory) TaxBreakdown {
	switch category {
	case TaxFivePercent:
		return TaxBreakdown{Exempt: decimal.Zero, Five: unitPrice, Ten: decimal.Zero}
	case TaxTenPercent:
		return TaxBreakdown{Exempt: decimal.Zero, Five: decimal.Zero, Ten: unitPrice}
	case TaxExempt:
		return TaxBreakdown{Exempt: unitPrice, Five: decimal.Zero, Ten: decimal.Zero}
	default:
		return TaxBreakdown{Exempt: decimal.Zero, Five: decimal.Zero, Ten: decimal.Zero}
	}
}
