package pricing

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// LineDiscount carries the discount apportioned to one line and the line's tax
// buckets (already multiplied by quantity) after that discount is subtracted.
// The same apportioned amount is subtracted from each bucket independently and
// floored at zero; since a unit price lives in exactly one bucket this never
// over-reduces in practice.
type LineDiscount struct {
	Discount decimal.Decimal
	Exempt   decimal.Decimal
	Five     decimal.Decimal
	Ten      decimal.Decimal
}

// DiscountResult is the cart-level discount plus its per-line apportionment.
type DiscountResult struct {
	Amount decimal.Decimal
	Lines  []LineDiscount
}

// Distribute applies the cart's discount across its lines. In percent mode
// each line carries its own percentage cut; in fixed-amount mode the value is
// prorated by the line's share of the subtotal. An empty or zero-subtotal cart
// apportions zero everywhere rather than dividing by zero.
func Distribute(c *Cart) DiscountResult {
	subtotal := c.Subtotal()
	result := DiscountResult{
		Amount: decimal.Zero,
		Lines:  make([]LineDiscount, len(c.Lines)),
	}

	switch c.DiscountMode {
	case DiscountAmount:
		result.Amount = c.DiscountValue
	default:
		result.Amount = subtotal.Mul(c.DiscountValue).Div(hundred)
	}

	for i, line := range c.Lines {
		apportioned := decimal.Zero
		switch c.DiscountMode {
		case DiscountAmount:
			if subtotal.IsPositive() {
				apportioned = line.Subtotal.Div(subtotal).Mul(c.DiscountValue)
			}
		default:
			apportioned = line.Subtotal.Mul(c.DiscountValue).Div(hundred)
		}
		qty := decimal.NewFromInt(int64(line.Quantity))
		result.Lines[i] = LineDiscount{
			Discount: apportioned,
			Exempt:   floorZero(line.Tax.Exempt.Mul(qty).Sub(apportioned)),
			Five:     floorZero(line.Tax.Five.Mul(qty).Sub(apportioned)),
			Ten:      floorZero(line.Tax.Ten.Mul(qty).Sub(apportioned)),
		}
	}
	return result
}

func floorZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
