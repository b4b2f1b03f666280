package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ascot-inc/intake-hub/pkg/apperrors"
	"github.com/ascot-inc/intake-hub/pkg/services"
)

// SaveCredentialsResponse confirms a save without echoing any field values.
type SaveCredentialsResponse struct {
	ProviderID    uuid.UUID `json:"provider_id"`
	LastRotatedAt time.Time `json:"last_rotated_at"`
}

// CredentialHandler handles the write-only credential endpoint. There is
// deliberately no read endpoint: stored credentials never leave the service.
type CredentialHandler struct {
	credentialService services.CredentialService
	logger            *zap.Logger
}

// NewCredentialHandler creates a new credential handler.
func NewCredentialHandler(credentialService services.CredentialService, logger *zap.Logger) *CredentialHandler {
	return &CredentialHandler{
		credentialService: credentialService,
		logger:            logger,
	}
}

// RegisterRoutes registers the credential handler's routes on the given mux.
func (h *CredentialHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/credentials/{providerId}", h.Save)
}

// Save handles POST /api/credentials/{providerId}
func (h *CredentialHandler) Save(w http.ResponseWriter, r *http.Request) {
	providerID, err := uuid.Parse(r.PathValue("providerId"))
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_provider_id", "provider id must be a UUID")
		return
	}

	var fields map[string]string
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "body must be a JSON object of string fields")
		return
	}
	if len(fields) == 0 {
		_ = ErrorResponse(w, http.StatusBadRequest, "empty_credentials", "at least one credential field is required")
		return
	}

	bundle, err := h.credentialService.Save(r.Context(), providerID, fields)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			_ = ErrorResponse(w, http.StatusNotFound, "provider_not_found", "no provider with this id")
			return
		}
		h.logger.Error("Failed to save credentials",
			zap.String("provider_id", providerID.String()),
			zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "save_credentials_failed", "failed to save credentials")
		return
	}

	response := SaveCredentialsResponse{
		ProviderID:    bundle.ProviderID,
		LastRotatedAt: bundle.LastRotatedAt,
	}
	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
