package sale_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-pos/internal/common"
	"github.com/noah-isme/backend-pos/internal/pricing"
	"github.com/noah-isme/backend-pos/internal/resilience"
	"github.com/noah-isme/backend-pos/internal/sale"
	"github.com/noah-isme/backend-pos/internal/session"
)

type fakeArticles map[int64]pricing.Article

func (f fakeArticles) Lookup(_ context.Context, articleID int64) (pricing.Article, bool, error) {
	a, ok := f[articleID]
	return a, ok, nil
}

type fakeUpstream struct {
	saleID     int64
	quoteID    int64
	err        error
	lastSale   *sale.SalePayload
	lastQuote  *sale.QuotePayload
	saleCalls  int
	quoteCalls int
}

func (f *fakeUpstream) SubmitSale(_ context.Context, p sale.SalePayload) (int64, error) {
	f.saleCalls++
	f.lastSale = &p
	if f.err != nil {
		return 0, f.err
	}
	return f.saleID, nil
}

func (f *fakeUpstream) SubmitQuote(_ context.Context, p sale.QuotePayload) (int64, error) {
	f.quoteCalls++
	f.lastQuote = &p
	if f.err != nil {
		return 0, f.err
	}
	return f.quoteID, nil
}

func validInput(cartID string) sale.Input {
	return sale.Input{
		CartID:      cartID,
		Kind:        sale.KindSale,
		CustomerID:  12,
		OperatorID:  1,
		BranchID:    1,
		WarehouseID: 1,
		SellerID:    4,
	}
}

type fixture struct {
	carts    *session.Service
	upstream *fakeUpstream
	svc      *sale.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	carts := &session.Service{
		Store: &session.Store{Client: client},
		Articles: fakeArticles{
			7: {ID: 7, Description: "Coca Cola 1L", UnitPrice: decimal.NewFromInt(100000), TaxCategory: pricing.TaxTenPercent, Lot: "L-22", Expiration: "2026-01-31"},
			8: {ID: 8, Description: "Libro", UnitPrice: decimal.NewFromInt(50000), TaxCategory: pricing.TaxExempt},
		},
	}
	upstream := &fakeUpstream{saleID: 901, quoteID: 305}
	return &fixture{
		carts:    carts,
		upstream: upstream,
		svc: &sale.Service{
			Carts:    carts,
			Upstream: upstream,
			Guard:    sale.Guard{R: client, TTL: time.Minute},
			Now:      func() time.Time { return time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC) },
		},
	}
}

func (fx *fixture) seedCart(t *testing.T, cartID string) {
	t.Helper()
	ctx := context.Background()
	_, err := fx.carts.AddLine(ctx, cartID, 7, 2)
	require.NoError(t, err)
	_, err = fx.carts.AddLine(ctx, cartID, 8, 1)
	require.NoError(t, err)
}

func TestFinalizeSale(t *testing.T) {
	fx := newFixture(t)
	fx.seedCart(t, "cart-1")

	result, err := fx.svc.Finalize(context.Background(), validInput("cart-1"))
	require.NoError(t, err)
	require.Equal(t, int64(901), result.ID)
	require.Equal(t, sale.KindSale, result.Kind)
	require.Equal(t, 1, fx.upstream.saleCalls)

	payload := fx.upstream.lastSale
	require.NotNil(t, payload)
	require.Equal(t, int64(12), payload.Sale.Customer)
	require.Equal(t, 1, payload.Sale.Currency)
	require.Equal(t, "2025-03-14", payload.Sale.Date)
	require.Equal(t, "09:30:00", payload.Sale.Time)
	require.InDelta(t, 250000, payload.Sale.Total, 0.001)
	require.Len(t, payload.Lines, 2)
	require.Equal(t, int64(7), payload.Lines[0].Article)
	require.InDelta(t, 200000, payload.Lines[0].Ten, 0.001)
	require.InDelta(t, 50000, payload.Lines[1].Exempt, 0.001)

	// success clears the cart
	cart, err := fx.carts.Get(context.Background(), "cart-1")
	require.NoError(t, err)
	require.Empty(t, cart.Lines)
}

func TestFinalizeQuote(t *testing.T) {
	fx := newFixture(t)
	fx.seedCart(t, "cart-q")

	in := validInput("cart-q")
	in.Kind = sale.KindQuote
	in.Observation = "entrega en 5 dias"

	result, err := fx.svc.Finalize(context.Background(), in)
	require.NoError(t, err)
	require.Equal(t, int64(305), result.ID)
	require.Equal(t, 1, fx.upstream.quoteCalls)
	require.Zero(t, fx.upstream.saleCalls)
	require.Equal(t, "entrega en 5 dias", fx.upstream.lastQuote.Quote.Observation)
	require.Len(t, fx.upstream.lastQuote.Lines, 2)
	require.Equal(t, "L-22", fx.upstream.lastQuote.Lines[0].Lot)
	require.Equal(t, "2026-01-31", fx.upstream.lastQuote.Lines[0].Expiration)
}

func TestFinalizeValidation(t *testing.T) {
	fx := newFixture(t)

	in := validInput("cart-v")
	in.CustomerID = 0
	in.SellerID = 0
	_, err := fx.svc.Finalize(context.Background(), in)
	requireAppError(t, err, "MISSING_REQUIRED_FIELD", http.StatusUnprocessableEntity)
}

func TestFinalizeEmptyCart(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.svc.Finalize(context.Background(), validInput("cart-empty"))
	requireAppError(t, err, "EMPTY_CART", http.StatusUnprocessableEntity)
}

func TestFinalizeInFlightGuard(t *testing.T) {
	fx := newFixture(t)
	fx.seedCart(t, "cart-g")

	held, err := fx.svc.Guard.Acquire(context.Background(), "cart-g")
	require.NoError(t, err)
	require.True(t, held)

	_, err = fx.svc.Finalize(context.Background(), validInput("cart-g"))
	requireAppError(t, err, "SUBMISSION_IN_FLIGHT", http.StatusConflict)
}

func TestFinalizeUpstreamFailurePreservesCart(t *testing.T) {
	fx := newFixture(t)
	fx.seedCart(t, "cart-f")
	fx.upstream.err = context.DeadlineExceeded

	_, err := fx.svc.Finalize(context.Background(), validInput("cart-f"))
	requireAppError(t, err, "SUBMISSION_FAILED", http.StatusBadGateway)

	cart, err := fx.carts.Get(context.Background(), "cart-f")
	require.NoError(t, err)
	require.Len(t, cart.Lines, 2)

	// the guard is released so the operator can retry immediately
	fx.upstream.err = nil
	result, err := fx.svc.Finalize(context.Background(), validInput("cart-f"))
	require.NoError(t, err)
	require.Equal(t, int64(901), result.ID)
}

func TestClientParsesUpstreamResponse(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"body": 4471}`))
	}))
	defer server.Close()

	client := &sale.Client{
		BaseURL: server.URL,
		HTTP:    resilience.HTTPClient{Client: server.Client(), MaxAttempts: 1},
	}
	cart, err := pricing.NewCart(nil, pricing.PYG)
	require.NoError(t, err)
	payload := sale.BuildSalePayload(cart, validInput("cart-c"), time.Now())

	id, err := client.SubmitSale(context.Background(), payload)
	require.NoError(t, err)
	require.Equal(t, int64(4471), id)
	require.True(t, strings.HasSuffix(gotPath, "/venta/agregarVenta"))
	require.Contains(t, gotBody, "venta")
	require.Contains(t, gotBody, "detalle_ventas")
}

func TestClientRejectsUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := &sale.Client{
		BaseURL: server.URL,
		HTTP:    resilience.HTTPClient{Client: server.Client(), MaxAttempts: 2, BaseBackoff: time.Millisecond},
	}
	cart, err := pricing.NewCart(nil, pricing.PYG)
	require.NoError(t, err)

	_, err = client.SubmitSale(context.Background(), sale.BuildSalePayload(cart, validInput("cart-e"), time.Now()))
	require.Error(t, err)
}

func requireAppError(t *testing.T, err error, code string, status int) {
	t.Helper()
	require.Error(t, err)
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, code, appErr.Code)
	require.Equal(t, status, appErr.HTTPStatus)
}
