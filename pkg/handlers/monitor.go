package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ascot-inc/intake-hub/pkg/services"
)

// MonitorHandler exposes the latest provider health snapshot.
type MonitorHandler struct {
	monitor *services.Monitor
	logger  *zap.Logger
}

// NewMonitorHandler creates a new monitor handler.
func NewMonitorHandler(monitor *services.Monitor, logger *zap.Logger) *MonitorHandler {
	return &MonitorHandler{
		monitor: monitor,
		logger:  logger,
	}
}

// RegisterRoutes registers the monitor handler's routes on the given mux.
func (h *MonitorHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/providers/health", h.Snapshot)
}

// Snapshot handles GET /api/providers/health
func (h *MonitorHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	if err := WriteJSON(w, http.StatusOK, h.monitor.GetAll()); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
