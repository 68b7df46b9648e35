package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestClassifySingleBucket(t *testing.T) {
	price := decimal.NewFromInt(100000)
	cases := []struct {
		category TaxCategory
		bucket   string
	}{
		{TaxExempt, "exempt"},
		{TaxFivePercent, "five"},
		{TaxTenPercent, "ten"},
	}
	for _, tc := range cases {
		breakdown := Classify(price, tc.category)
		got := map[string]decimal.Decimal{
			"exempt": breakdown.Exempt,
			"five":   breakdown.Five,
			"ten":    breakdown.Ten,
		}
		for name, value := range got {
			if name == tc.bucket {
				if !value.Equal(price) {
					t.Fatalf("category %d: bucket %s = %s, want %s", tc.category, name, value, price)
				}
				continue
			}
			if !value.IsZero() {
				t.Fatalf("category %d: bucket %s = %s, want 0", tc.category, name, value)
			}
		}
	}
}

func TestClassifyUnknownCategoryIsAllZero(t *testing.T) {
	breakdown := Classify(decimal.NewFromInt(500), TaxCategory(9))
	if !breakdown.Exempt.IsZero() || !breakdown.Five.IsZero() || !breakdown.Ten.IsZero() {
		t.Fatalf("unknown category must classify to zero, got %+v", breakdown)
	}
}
