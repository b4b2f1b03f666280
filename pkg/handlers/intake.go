package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ascot-inc/intake-hub/pkg/services"
)

// IntakeHandler triggers intake runs.
type IntakeHandler struct {
	intakeService services.IntakeService
	logger        *zap.Logger
}

// NewIntakeHandler creates a new intake handler.
func NewIntakeHandler(intakeService services.IntakeService, logger *zap.Logger) *IntakeHandler {
	return &IntakeHandler{
		intakeService: intakeService,
		logger:        logger,
	}
}

// RegisterRoutes registers the intake handler's routes on the given mux.
func (h *IntakeHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/intake", h.Run)
}

// Run handles POST /api/intake?date=YYYY-MM-DD&provider=Name
// Both parameters are optional: date defaults to today, omitting provider
// runs every enabled provider.
func (h *IntakeHandler) Run(w http.ResponseWriter, r *http.Request) {
	date := time.Now()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			_ = ErrorResponse(w, http.StatusBadRequest, "invalid_date", "date must be formatted YYYY-MM-DD")
			return
		}
		date = parsed
	}

	lines := h.intakeService.IntakeRacecards(r.Context(), date, r.URL.Query().Get("provider"))

	if err := WriteJSON(w, http.StatusOK, lines); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
