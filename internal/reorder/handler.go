package reorder

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/vantage-erp/vantage-erp/internal/platform/httpx"
)

// Handler manages reorder wizard endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers reorder routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/reorder/wizard", h.launch)
	r.Post("/reorder/wizard/{id}/generate", h.generate)
}

type launchRequest struct {
	LineIDs []int64 `json:"line_ids" validate:"required,min=1,dive,gt=0"`
}

func (h *Handler) launch(w http.ResponseWriter, r *http.Request) {
	var req launchRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "line_ids is required")
		return
	}
	wizard, err := h.service.Launch(r.Context(), req.LineIDs)
	if err != nil {
		h.logger.Error("launch reorder wizard", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, wizard)
}

type generateLine struct {
	ProductID  int64    `json:"product_id" validate:"required,gt=0"`
	SupplierID int64    `json:"supplier_id" validate:"omitempty,gt=0"`
	Qty        *float64 `json:"qty" validate:"omitempty,gte=0"`
}

type generateRequest struct {
	Lines []generateLine `json:"lines" validate:"omitempty,dive"`
}

func (h *Handler) generate(w http.ResponseWriter, r *http.Request) {
	wizardID := chi.URLParam(r, "id")
	if wizardID == "" {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid wizard id")
		return
	}
	var req generateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid line overrides")
		return
	}
	choices := make([]LineChoice, 0, len(req.Lines))
	for _, line := range req.Lines {
		choices = append(choices, LineChoice{ProductID: line.ProductID, SupplierID: line.SupplierID, Qty: line.Qty})
	}
	orderIDs, err := h.service.Generate(r.Context(), wizardID, choices)
	if err != nil {
		h.logger.Error("generate purchase orders", slog.Any("error", err), slog.String("wizard_id", wizardID))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"order_ids": orderIDs})
}
