package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ascot-inc/intake-hub/pkg/apperrors"
	"github.com/ascot-inc/intake-hub/pkg/models"
	"github.com/ascot-inc/intake-hub/pkg/services"
)

// RegisterProviderRequest for POST /api/providers
type RegisterProviderRequest struct {
	Name                   string `json:"name"`
	BaseURL                string `json:"base_url"`
	AuthType               string `json:"auth_type"`
	RateLimitRequests      *int   `json:"rate_limit_requests,omitempty"`
	RateLimitWindowSeconds *int   `json:"rate_limit_window_seconds,omitempty"`
	CloudflareTunnel       bool   `json:"cloudflare_tunnel"`
	Enabled                *bool  `json:"enabled,omitempty"`
	Priority               *int   `json:"priority,omitempty"`
}

// ProviderListResponse for GET /api/providers
type ProviderListResponse struct {
	Providers []*models.Provider `json:"providers"`
	Total     int                `json:"total"`
}

// ProviderHandler handles provider registration and lookup requests.
type ProviderHandler struct {
	providerService services.ProviderService
	logger          *zap.Logger
}

// NewProviderHandler creates a new provider handler.
func NewProviderHandler(providerService services.ProviderService, logger *zap.Logger) *ProviderHandler {
	return &ProviderHandler{
		providerService: providerService,
		logger:          logger,
	}
}

// RegisterRoutes registers the provider handler's routes on the given mux.
func (h *ProviderHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/providers", h.List)
	mux.HandleFunc("POST /api/providers", h.Register)
	mux.HandleFunc("GET /api/providers/{id}", h.Get)
}

// List handles GET /api/providers
func (h *ProviderHandler) List(w http.ResponseWriter, r *http.Request) {
	providers, err := h.providerService.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list providers", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "list_providers_failed", err.Error())
		return
	}

	if err := WriteJSON(w, http.StatusOK, ProviderListResponse{Providers: providers, Total: len(providers)}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Register handles POST /api/providers
func (h *ProviderHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterProviderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	provider := &models.Provider{
		Name:                   req.Name,
		BaseURL:                req.BaseURL,
		AuthType:               models.AuthType(req.AuthType),
		RateLimitRequests:      req.RateLimitRequests,
		RateLimitWindowSeconds: req.RateLimitWindowSeconds,
		CloudflareTunnel:       req.CloudflareTunnel,
		Enabled:                true,
		Priority:               100,
	}
	if req.Enabled != nil {
		provider.Enabled = *req.Enabled
	}
	if req.Priority != nil {
		provider.Priority = *req.Priority
	}

	created, err := h.providerService.Register(r.Context(), provider)
	if err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			_ = ErrorResponse(w, http.StatusConflict, "provider_exists", "a provider with this name is already registered")
			return
		}
		h.logger.Error("Failed to register provider", zap.String("name", req.Name), zap.Error(err))
		_ = ErrorResponse(w, http.StatusBadRequest, "register_provider_failed", err.Error())
		return
	}

	if err := WriteJSON(w, http.StatusCreated, created); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Get handles GET /api/providers/{id}
func (h *ProviderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_provider_id", "provider id must be a UUID")
		return
	}

	provider, err := h.providerService.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			_ = ErrorResponse(w, http.StatusNotFound, "provider_not_found", "no provider with this id")
			return
		}
		h.logger.Error("Failed to get provider", zap.String("provider_id", id.String()), zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "get_provider_failed", err.Error())
		return
	}

	if err := WriteJSON(w, http.StatusOK, provider); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
