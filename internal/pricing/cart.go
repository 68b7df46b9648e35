package pricing

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrNoItemSelected is returned when a line is added without a resolved
// catalog selection.
var ErrNoItemSelected = errors.New("no article selected")

// ErrInvalidQuantity is returned when the requested quantity is below one.
var ErrInvalidQuantity = errors.New("quantity must be at least 1")

// ErrLineNotFound is returned when a line index is out of range.
var ErrLineNotFound = errors.New("line not found")

// ErrInvalidDiscount is returned for a negative discount value.
var ErrInvalidDiscount = errors.New("discount value must not be negative")

// DiscountMode selects how the cart discount value is interpreted.
type DiscountMode string

const (
	// DiscountPercent treats the value as a percentage of the subtotal.
	DiscountPercent DiscountMode = "percent"
	// DiscountAmount treats the value as a fixed amount in the display currency.
	DiscountAmount DiscountMode = "amount"
)

// Article is the catalog snapshot a line item is built from. Price is in the
// reference currency.
type Article struct {
	ID          int64
	Description string
	UnitPrice   decimal.Decimal
	TaxCategory TaxCategory
	Lot         string
	Expiration  string
}

// LineItem is one cart entry. UnitPriceRef is the immutable snapshot taken at
// add time; every derived field is recomputed from it on a currency switch so
// rounding error never compounds.
type LineItem struct {
	ArticleID    int64           `json:"articleId"`
	Description  string          `json:"description"`
	Quantity     int             `json:"quantity"`
	TaxCategory  TaxCategory     `json:"taxCategory"`
	UnitPriceRef decimal.Decimal `json:"unitPriceRef"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	Tax          TaxBreakdown    `json:"tax"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	Lot          string          `json:"lot,omitempty"`
	Expiration   string          `json:"expiration,omitempty"`
}

func (l LineItem) snapshot() Article {
	return Article{
		ID:          l.ArticleID,
		Description: l.Description,
		UnitPrice:   l.UnitPriceRef,
		TaxCategory: l.TaxCategory,
		Lot:         l.Lot,
		Expiration:  l.Expiration,
	}
}

// Cart accumulates line items in a display currency. Lines keep insertion
// order. The zero value is not usable; construct with NewCart or Restore.
type Cart struct {
	Currency      Currency
	DiscountMode  DiscountMode
	DiscountValue decimal.Decimal
	Lines         []LineItem

	rates RateTable
}

// NewCart builds an empty cart in the given display currency.
func NewCart(rates RateTable, currency Currency) (*Cart, error) {
	if rates == nil {
		rates = DefaultRates()
	}
	if _, err := rates.Rate(currency); err != nil {
		return nil, err
	}
	return &Cart{
		Currency:      currency,
		DiscountMode:  DiscountPercent,
		DiscountValue: decimal.Zero,
		rates:         rates,
	}, nil
}

// Restore rebuilds a cart from previously persisted state. Derived line fields
// are recomputed from the reference prices so a stale snapshot cannot leak
// values computed under a different rate table.
func Restore(rates RateTable, currency Currency, mode DiscountMode, value decimal.Decimal, lines []LineItem) (*Cart, error) {
	cart, err := NewCart(rates, currency)
	if err != nil {
		return nil, err
	}
	if mode == DiscountAmount {
		cart.DiscountMode = DiscountAmount
	}
	if value.IsNegative() {
		return nil, ErrInvalidDiscount
	}
	cart.DiscountValue = value
	for _, line := range lines {
		if line.Quantity < 1 {
			return nil, ErrInvalidQuantity
		}
		rebuilt, err := cart.buildLine(line.snapshot(), line.Quantity)
		if err != nil {
			return nil, err
		}
		cart.Lines = append(cart.Lines, rebuilt)
	}
	return cart, nil
}

// AddLine appends a line for the given article snapshot. A nil article is the
// "nothing selected" case and is rejected without mutating the cart.
func (c *Cart) AddLine(article *Article, quantity int) (LineItem, error) {
	if article == nil {
		return LineItem{}, ErrNoItemSelected
	}
	if quantity < 1 {
		return LineItem{}, ErrInvalidQuantity
	}
	line, err := c.buildLine(*article, quantity)
	if err != nil {
		return LineItem{}, err
	}
	c.Lines = append(c.Lines, line)
	return line, nil
}

// RemoveLine drops the line at the given position.
func (c *Cart) RemoveLine(index int) error {
	if index < 0 || index >= len(c.Lines) {
		return ErrLineNotFound
	}
	c.Lines = append(c.Lines[:index], c.Lines[index+1:]...)
	return nil
}

// SetCurrency switches the display currency and re-derives every line from its
// reference price. A fixed-amount discount is converted from the old currency
// to the new one. Unknown currencies are rejected before any state changes.
func (c *Cart) SetCurrency(target Currency) error {
	if _, err := c.rates.Rate(target); err != nil {
		return err
	}
	previous := c.Currency
	converted := c.DiscountValue
	if c.DiscountMode == DiscountAmount && previous != target {
		var err error
		converted, err = c.rates.Convert(c.DiscountValue, previous, target)
		if err != nil {
			return err
		}
	}
	c.Currency = target
	c.DiscountValue = converted
	for i, line := range c.Lines {
		rebuilt, err := c.buildLine(line.snapshot(), line.Quantity)
		if err != nil {
			c.Currency = previous
			return err
		}
		c.Lines[i] = rebuilt
	}
	return nil
}

// SetDiscount stores the cart-level discount. A fixed-amount value is
// interpreted in the current display currency.
func (c *Cart) SetDiscount(mode DiscountMode, value decimal.Decimal) error {
	if mode != DiscountPercent && mode != DiscountAmount {
		return ErrInvalidDiscount
	}
	if value.IsNegative() {
		return ErrInvalidDiscount
	}
	c.DiscountMode = mode
	c.DiscountValue = value
	return nil
}

// Clear empties the cart, keeping currency and rate table.
func (c *Cart) Clear() {
	c.Lines = nil
	c.DiscountMode = DiscountPercent
	c.DiscountValue = decimal.Zero
}

// Subtotal sums the line subtotals in the display currency.
func (c *Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.Lines {
		total = total.Add(line.Subtotal)
	}
	return total
}

func (c *Cart) buildLine(article Article, quantity int) (LineItem, error) {
	unitPrice, err := c.rates.Normalize(article.UnitPrice, c.Currency)
	if err != nil {
		return LineItem{}, err
	}
	return LineItem{
		ArticleID:    article.ID,
		Description:  article.Description,
		Quantity:     quantity,
		TaxCategory:  article.TaxCategory,
		UnitPriceRef: article.UnitPrice,
		UnitPrice:    unitPrice,
		Tax:          Classify(unitPrice, article.TaxCategory),
		Subtotal:     unitPrice.Mul(decimal.NewFromInt(int64(quantity))),
		Lot:          article.Lot,
		Expiration:   article.Expiration,
	}, nil
}
