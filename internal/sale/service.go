// Package sale turns an accumulated cart into a venta or presupuesto document
// in the upstream ledger.
package sale

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	validator "github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-pos/internal/common"
	"github.com/noah-isme/backend-pos/internal/obs"
	"github.com/noah-isme/backend-pos/internal/pricing"
	"github.com/noah-isme/backend-pos/internal/session"
)

// Input is everything a terminal must supply to finalise a cart.
type Input struct {
	CartID        string `json:"cartId" validate:"required"`
	Kind          Kind   `json:"kind" validate:"required,oneof=sale quote"`
	CustomerID    int64  `json:"customerId" validate:"required,gt=0"`
	OperatorID    int64  `json:"operatorId" validate:"required,gt=0"`
	BranchID      int64  `json:"branchId" validate:"required,gt=0"`
	WarehouseID   int64  `json:"warehouseId" validate:"required,gt=0"`
	SellerID      int64  `json:"sellerId" validate:"required,gt=0"`
	Condition     int    `json:"condition" validate:"gte=0,lte=1"`
	InvoiceNumber string `json:"invoiceNumber"`
	Observation   string `json:"observation"`
}

// Result reports the ledger id assigned to the submitted document together
// with the totals the operator confirmed.
type Result struct {
	ID     int64          `json:"id"`
	Kind   Kind           `json:"kind"`
	Totals pricing.Totals `json:"totals"`
}

// Service coordinates validation, the in-flight guard and the upstream call.
type Service struct {
	Carts    *session.Service
	Upstream Upstream
	Guard    Guard
	Validate *validator.Validate
	Now      func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Finalize submits the cart identified by in.CartID. The cart is only cleared
// after the upstream acknowledges the document; any failure leaves it intact
// so the operator can retry.
func (s *Service) Finalize(ctx context.Context, in Input) (Result, error) {
	if s == nil || s.Carts == nil || s.Upstream == nil {
		return Result{}, errors.New("sale service not configured")
	}

	if err := s.validate(in); err != nil {
		return Result{}, err
	}

	cart, err := s.Carts.Get(ctx, in.CartID)
	if err != nil {
		return Result{}, err
	}
	if len(cart.Lines) == 0 {
		return Result{}, common.NewAppError("EMPTY_CART", "add at least one article before finalising", http.StatusUnprocessableEntity, nil)
	}

	acquired, err := s.Guard.Acquire(ctx, in.CartID)
	if err != nil {
		return Result{}, err
	}
	if !acquired {
		return Result{}, common.NewAppError("SUBMISSION_IN_FLIGHT", "this cart is already being finalised", http.StatusConflict, nil)
	}

	totals := pricing.Aggregate(cart).Round(cart.Currency)
	started := time.Now()
	id, err := s.submit(ctx, cart, in)
	elapsed := float64(time.Since(started).Milliseconds())
	if err != nil {
		s.Guard.Release(ctx, in.CartID)
		obs.SaleSubmit(string(in.Kind), "error", elapsed)
		zerolog.Ctx(ctx).Error().Err(err).Str("kind", string(in.Kind)).Msg("upstream submission failed")
		return Result{}, common.NewAppError("SUBMISSION_FAILED", "the sales ledger rejected the submission", http.StatusBadGateway, err)
	}
	obs.SaleSubmit(string(in.Kind), "ok", elapsed)

	// Failure to clear is logged, not surfaced: the document already exists
	// upstream and reporting an error here would invite a double submission.
	if err := s.Carts.Clear(ctx, in.CartID); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("cart_id", in.CartID).Msg("clear cart after submission")
	}
	s.Guard.Release(ctx, in.CartID)

	return Result{ID: id, Kind: in.Kind, Totals: totals}, nil
}

func (s *Service) submit(ctx context.Context, cart *pricing.Cart, in Input) (int64, error) {
	if in.Kind == KindQuote {
		return s.Upstream.SubmitQuote(ctx, BuildQuotePayload(cart, in, s.now()))
	}
	return s.Upstream.SubmitSale(ctx, BuildSalePayload(cart, in, s.now()))
}

func (s *Service) validate(in Input) error {
	v := s.Validate
	if v == nil {
		v = validator.New()
	}
	err := v.Struct(in)
	if err == nil {
		return nil
	}
	var invalid validator.ValidationErrors
	if errors.As(err, &invalid) {
		fields := make([]string, 0, len(invalid))
		for _, fe := range invalid {
			fields = append(fields, fe.Field())
		}
		return common.NewAppError(
			"MISSING_REQUIRED_FIELD",
			"missing or invalid fields: "+strings.Join(fields, ", "),
			http.StatusUnprocessableEntity,
			nil,
		)
	}
	return err
}
