package sale

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-pos/internal/pricing"
)

// Kind selects which upstream document a finalised cart becomes.
type Kind string

const (
	KindSale  Kind = "sale"
	KindQuote Kind = "quote"
)

// SaleHeader mirrors the upstream venta record. Field names are the upstream
// API's own; ve_moneda is 1 for guaranies and 0 for dollars.
type SaleHeader struct {
	Customer  int64   `json:"ve_cliente"`
	Operator  int64   `json:"ve_operador"`
	Warehouse int64   `json:"ve_deposito"`
	Currency  int     `json:"ve_moneda"`
	Date      string  `json:"ve_fecha"`
	Invoice   string  `json:"ve_factura"`
	Credit    int     `json:"ve_credito"`
	Branch    int64   `json:"ve_sucursal"`
	Total     float64 `json:"ve_total"`
	Discount  float64 `json:"ve_descuento"`
	Seller    int64   `json:"ve_vendedor"`
	Time      string  `json:"ve_hora"`
}

// SaleLine mirrors one detalle_ventas row. Tax buckets are already multiplied
// by quantity and reduced by the line's apportioned discount.
type SaleLine struct {
	Article  int64   `json:"deve_articulo"`
	Quantity int     `json:"deve_cantidad"`
	Price    float64 `json:"deve_precio"`
	Discount float64 `json:"deve_descuento"`
	Exempt   float64 `json:"deve_exentas"`
	Five     float64 `json:"deve_cinco"`
	Ten      float64 `json:"deve_diez"`
	Seller   int64   `json:"deve_vendedor"`
}

// SalePayload is the body posted to venta/agregarVenta.
type SalePayload struct {
	Sale  SaleHeader `json:"venta"`
	Lines []SaleLine `json:"detalle_ventas"`
}

// QuoteHeader mirrors the upstream presupuesto record.
type QuoteHeader struct {
	Customer    int64   `json:"pre_cliente"`
	Operator    int64   `json:"pre_operador"`
	Currency    int     `json:"pre_moneda"`
	Date        string  `json:"pre_fecha"`
	Discount    float64 `json:"pre_descuento"`
	Seller      int64   `json:"pre_vendedor"`
	Time        string  `json:"pre_hora"`
	Observation string  `json:"pre_obs"`
	Branch      int64   `json:"pre_sucursal"`
	Warehouse   int64   `json:"pre_deposito"`
	Total       float64 `json:"pre_total"`
	Condition   int     `json:"pre_condicion"`
}

// QuoteLine mirrors one detalle_presupuesto row. Lot and expiration travel on
// quote lines only; the sale detail table has no columns for them.
type QuoteLine struct {
	Article    int64   `json:"depre_articulo"`
	Quantity   int     `json:"depre_cantidad"`
	Price      float64 `json:"depre_precio"`
	Discount   float64 `json:"depre_descuento"`
	Exempt     float64 `json:"depre_exentas"`
	Five       float64 `json:"depre_cinco"`
	Ten        float64 `json:"depre_diez"`
	Seller     int64   `json:"depre_vendedor"`
	Lot        string  `json:"depre_lote"`
	Expiration string  `json:"depre_vence"`
}

// QuotePayload is the body posted to presupuestos/agregarPresupuesto.
type QuotePayload struct {
	Quote QuoteHeader `json:"presupuesto"`
	Lines []QuoteLine `json:"detalle_presupuesto"`
}

func currencyFlag(c pricing.Currency) int {
	if c == pricing.PYG {
		return 1
	}
	return 0
}

func f(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

// BuildSalePayload freezes the cart into the upstream venta shape at the given
// instant. The discount distribution feeding the lines is the same one the
// totals endpoint reports, so what the operator saw is what gets submitted.
func BuildSalePayload(cart *pricing.Cart, in Input, now time.Time) SalePayload {
	distribution := pricing.Distribute(cart)
	totals := pricing.Aggregate(cart)

	payload := SalePayload{
		Sale: SaleHeader{
			Customer:  in.CustomerID,
			Operator:  in.OperatorID,
			Warehouse: in.WarehouseID,
			Currency:  currencyFlag(cart.Currency),
			Date:      now.Format("2006-01-02"),
			Invoice:   in.InvoiceNumber,
			Credit:    in.Condition,
			Branch:    in.BranchID,
			Total:     f(totals.NetTotal),
			Discount:  f(totals.Discount),
			Seller:    in.SellerID,
			Time:      now.Format("15:04:05"),
		},
		Lines: make([]SaleLine, len(cart.Lines)),
	}
	for i, line := range cart.Lines {
		apportioned := distribution.Lines[i]
		payload.Lines[i] = SaleLine{
			Article:  line.ArticleID,
			Quantity: line.Quantity,
			Price:    f(line.UnitPrice),
			Discount: f(apportioned.Discount),
			Exempt:   f(apportioned.Exempt),
			Five:     f(apportioned.Five),
			Ten:      f(apportioned.Ten),
			Seller:   in.SellerID,
		}
	}
	return payload
}

// BuildQuotePayload freezes the cart into the upstream presupuesto shape.
func BuildQuotePayload(cart *pricing.Cart, in Input, now time.Time) QuotePayload {
	distribution := pricing.Distribute(cart)
	totals := pricing.Aggregate(cart)

	payload := QuotePayload{
		Quote: QuoteHeader{
			Customer:    in.CustomerID,
			Operator:    in.OperatorID,
			Currency:    currencyFlag(cart.Currency),
			Date:        now.Format("2006-01-02"),
			Discount:    f(totals.Discount),
			Seller:      in.SellerID,
			Time:        now.Format("15:04:05"),
			Observation: in.Observation,
			Branch:      in.BranchID,
			Warehouse:   in.WarehouseID,
			Total:       f(totals.NetTotal),
			Condition:   in.Condition,
		},
		Lines: make([]QuoteLine, len(cart.Lines)),
	}
	for i, line := range cart.Lines {
		apportioned := distribution.Lines[i]
		payload.Lines[i] = QuoteLine{
			Article:    line.ArticleID,
			Quantity:   line.Quantity,
			Price:      f(line.UnitPrice),
			Discount:   f(apportioned.Discount),
			Exempt:     f(apportioned.Exempt),
			Five:       f(apportioned.Five),
			Ten:        f(apportioned.Ten),
			Seller:     in.SellerID,
			Lot:        line.Lot,
			Expiration: line.Expiration,
		}
	}
	return payload
}
