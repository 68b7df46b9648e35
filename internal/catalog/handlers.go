package catalog

import (
	"errors"
	"net/http"

	"github.com/noah-isme/backend-pos/internal/common"
	"github.com/noah-isme/backend-pos/internal/obs"
)

// Handler exposes the article search endpoint.
type Handler struct {
	Svc *Service
}

// Search handles GET /api/v1/articles.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog service not configured", nil)
		return
	}
	params, err := h.Svc.ParseSearchParams(r.URL.Query())
	if err != nil {
		h.writeError(w, err)
		return
	}
	articles, err := h.Svc.Search(r.Context(), params)
	if err != nil {
		h.writeError(w, err)
		return
	}
	obs.CatalogSearch(len(articles))
	common.JSON(w, http.StatusOK, map[string]any{"data": articles})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		common.JSONError(w, appErr.HTTPStatus, appErr.Code, appErr.Message, appErr.Details)
		return
	}
	common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
}
