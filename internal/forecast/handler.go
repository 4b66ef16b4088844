package forecast

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/vantage-erp/vantage-erp/internal/catalog"
	"github.com/vantage-erp/vantage-erp/internal/platform/httpx"
)

// Handler manages forecast registry endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers forecast routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/forecast/lines", h.listLines)
	r.Post("/forecast/lines/refresh", h.refreshLines)
	r.Post("/forecast/populate", h.populate)
	r.Get("/forecast/lines/{id}/incoming", h.incomingMovements)
	r.Post("/catalog/products/{id}/tracking", h.setTracking)
}

func (h *Handler) listLines(w http.ResponseWriter, r *http.Request) {
	lines, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list forecast lines", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"lines": lines})
}

type refreshRequest struct {
	LineIDs []int64 `json:"line_ids" validate:"required,min=1,dive,gt=0"`
}

func (h *Handler) refreshLines(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "line_ids is required")
		return
	}
	refreshed, err := h.service.RefreshLines(r.Context(), req.LineIDs)
	if err != nil {
		h.logger.Error("refresh forecast lines", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"refreshed": refreshed})
}

func (h *Handler) populate(w http.ResponseWriter, r *http.Request) {
	created, err := h.service.Populate(r.Context())
	if err != nil {
		h.logger.Error("populate forecast lines", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"created": created})
}

func (h *Handler) incomingMovements(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid line id")
		return
	}
	groups, err := h.service.IncomingMovements(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrLineNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
			return
		}
		h.logger.Error("incoming movements", slog.Any("error", err), slog.Int64("line_id", id))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"receipts": groups})
}

type trackingRequest struct {
	Tracked *bool `json:"tracked" validate:"required"`
}

func (h *Handler) setTracking(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid product id")
		return
	}
	var req trackingRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "tracked is required")
		return
	}
	affected, err := h.service.SetTracking(r.Context(), id, *req.Tracked)
	if err != nil {
		switch {
		case errors.Is(err, ErrDuplicateLine):
			httpx.Problem(w, http.StatusConflict, "Duplicate", err.Error())
		case errors.Is(err, catalog.ErrNotFound):
			httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
		default:
			h.logger.Error("set tracking", slog.Any("error", err), slog.Int64("product_id", id))
			httpx.RespondError(w, err)
		}
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"affected": affected})
}
