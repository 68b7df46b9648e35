package refdata

import (
	"errors"
	"net/http"

	"github.com/noah-isme/backend-pos/internal/common"
)

// Handler exposes the reference data endpoints.
type Handler struct {
	Svc *Service
}

// Branches handles GET /api/v1/branches.
func (h *Handler) Branches(w http.ResponseWriter, r *http.Request) {
	branches, err := h.svc().Branches(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": branches})
}

// Warehouses handles GET /api/v1/warehouses.
func (h *Handler) Warehouses(w http.ResponseWriter, r *http.Request) {
	warehouses, err := h.svc().Warehouses(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": warehouses})
}

// Sellers handles GET /api/v1/sellers.
func (h *Handler) Sellers(w http.ResponseWriter, r *http.Request) {
	sellers, err := h.svc().Sellers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": sellers})
}

// Customers handles GET /api/v1/customers.
func (h *Handler) Customers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.svc().SearchCustomers(r.Context(), r.URL.Query())
	if err != nil {
		writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": customers})
}

func (h *Handler) svc() *Service {
	if h == nil {
		return nil
	}
	return h.Svc
}

func writeError(w http.ResponseWriter, err error) {
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		common.JSONError(w, appErr.HTTPStatus, appErr.Code, appErr.Message, appErr.Details)
		return
	}
	common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
}
