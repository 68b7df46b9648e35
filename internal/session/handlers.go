package session

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-pos/internal/common"
	"github.com/noah-isme/backend-pos/internal/obs"
	"github.com/noah-isme/backend-pos/internal/pricing"
)

// Handler exposes the cart session endpoints.
type Handler struct {
	Svc *Service
}

// CartView is the serialised cart plus its derived totals.
type CartView struct {
	Currency      pricing.Currency     `json:"currency"`
	DiscountMode  pricing.DiscountMode `json:"discountMode"`
	DiscountValue decimal.Decimal      `json:"discountValue"`
	Lines         []pricing.LineItem   `json:"lines"`
	Totals        pricing.Totals       `json:"totals"`
}

type addItemRequest struct {
	ArticleID int64 `json:"articleId"`
	Quantity  int   `json:"quantity"`
}

type currencyRequest struct {
	Currency pricing.Currency `json:"currency"`
}

type discountRequest struct {
	Mode  pricing.DiscountMode `json:"mode"`
	Value decimal.Decimal      `json:"value"`
}

// Create handles POST /api/v1/carts.
func (h *Handler) Create(w http.ResponseWriter, _ *http.Request) {
	common.JSON(w, http.StatusCreated, map[string]any{"data": map[string]string{"cartId": uuid.NewString()}})
}

// Get handles GET /api/v1/carts/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return
	}
	cart, err := h.Svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": viewOf(cart)})
}

// AddItem handles POST /api/v1/carts/{id}/items.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return
	}
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON payload", nil)
		return
	}
	id := chi.URLParam(r, "id")
	line, err := h.Svc.AddLine(r.Context(), id, req.ArticleID, req.Quantity)
	if err != nil {
		h.writeError(w, err)
		return
	}
	obs.CartMutation("add_item")
	cart, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": map[string]any{"line": line, "cart": viewOf(cart)}})
}

// RemoveItem handles DELETE /api/v1/carts/{id}/items/{index}.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "line index must be an integer", nil)
		return
	}
	if err := h.Svc.RemoveLine(r.Context(), chi.URLParam(r, "id"), index); err != nil {
		h.writeError(w, err)
		return
	}
	obs.CartMutation("remove_item")
	w.WriteHeader(http.StatusNoContent)
}

// SetCurrency handles PUT /api/v1/carts/{id}/currency.
func (h *Handler) SetCurrency(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return
	}
	var req currencyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON payload", nil)
		return
	}
	id := chi.URLParam(r, "id")
	if err := h.Svc.SetCurrency(r.Context(), id, req.Currency); err != nil {
		h.writeError(w, err)
		return
	}
	obs.CartMutation("set_currency")
	cart, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": viewOf(cart)})
}

// SetDiscount handles PUT /api/v1/carts/{id}/discount.
func (h *Handler) SetDiscount(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return
	}
	var req discountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON payload", nil)
		return
	}
	id := chi.URLParam(r, "id")
	if err := h.Svc.SetDiscount(r.Context(), id, req.Mode, req.Value); err != nil {
		h.writeError(w, err)
		return
	}
	obs.CartMutation("set_discount")
	cart, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": viewOf(cart)})
}

// Clear handles DELETE /api/v1/carts/{id}.
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return
	}
	if err := h.Svc.Clear(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, err)
		return
	}
	obs.CartMutation("clear")
	w.WriteHeader(http.StatusNoContent)
}

func viewOf(cart *pricing.Cart) CartView {
	lines := cart.Lines
	if lines == nil {
		lines = []pricing.LineItem{}
	}
	return CartView{
		Currency:      cart.Currency,
		DiscountMode:  cart.DiscountMode,
		DiscountValue: cart.DiscountValue,
		Lines:         lines,
		Totals:        pricing.Aggregate(cart).Round(cart.Currency),
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, pricing.ErrNoItemSelected):
		common.JSONError(w, http.StatusUnprocessableEntity, "NO_ITEM_SELECTED", "select an article before adding it", nil)
	case errors.Is(err, pricing.ErrInvalidQuantity):
		common.JSONError(w, http.StatusUnprocessableEntity, "INVALID_QUANTITY", "quantity must be at least 1", nil)
	case errors.Is(err, pricing.ErrInvalidDiscount):
		common.JSONError(w, http.StatusUnprocessableEntity, "INVALID_DISCOUNT", "discount value is invalid", nil)
	case errors.Is(err, pricing.ErrUnknownCurrency):
		common.JSONError(w, http.StatusUnprocessableEntity, "UNKNOWN_CURRENCY", "currency is not configured", nil)
	case errors.Is(err, pricing.ErrLineNotFound):
		common.JSONError(w, http.StatusNotFound, "LINE_NOT_FOUND", "no cart line at that position", nil)
	default:
		var appErr *common.AppError
		if errors.As(err, &appErr) {
			common.JSONError(w, appErr.HTTPStatus, appErr.Code, appErr.Message, appErr.Details)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
	}
}
