package handler

import (
	"net/http"

	"github.com/zabecode/dac/internal/api/middleware"
	"github.com/zabecode/dac/internal/api/response"
	"github.com/zabecode/dac/internal/service"
	"github.com/zabecode/dac/pkg/models"
)

// APIKeyHandler serves key administration endpoints.
type APIKeyHandler struct {
	svc *service.APIKeyService
}

func NewAPIKeyHandler(svc *service.APIKeyService) *APIKeyHandler {
	return &APIKeyHandler{svc: svc}
}

type createKeyResponse struct {
	APIKey *models.APIKey `json:"api_key"`
	RawKey string         `json:"raw_key"`
}

// Create handles POST /api/v1/admin/keys. The raw secret appears in this
// response and nowhere else.
func (h *APIKeyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var params service.CreateAPIKeyParams
	if !decodeJSON(w, r, &params) {
		return
	}
	if params.UserID == nil {
		if caller, ok := middleware.GetAPIKey(r); ok {
			params.UserID = caller.UserID
		}
	}
	key, secret, err := h.svc.Create(r.Context(), params)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.Created(w, createKeyResponse{APIKey: key, RawKey: secret})
}

// List handles GET /api/v1/admin/keys, scoped to the calling key's owner.
func (h *APIKeyHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetAPIKey(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized,
			"INVALID_KEY", "Missing, invalid, or expired API key", nil)
		return
	}
	if caller.UserID == nil {
		response.JSON(w, []*models.APIKey{})
		return
	}
	keys, err := h.svc.ListForUser(r.Context(), *caller.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.JSON(w, keys)
}

// Update handles PUT /api/v1/admin/keys/{keyID}.
func (h *APIKeyHandler) Update(w http.ResponseWriter, r *http.Request) {
	keyID, ok := pathID(w, r, "keyID")
	if !ok {
		return
	}
	var params service.UpdateAPIKeyParams
	if !decodeJSON(w, r, &params) {
		return
	}
	key, err := h.svc.Update(r.Context(), keyID, params)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.JSON(w, key)
}

// Revoke handles DELETE /api/v1/admin/keys/{keyID}.
func (h *APIKeyHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	keyID, ok := pathID(w, r, "keyID")
	if !ok {
		return
	}
	if err := h.svc.Revoke(r.Context(), keyID); err != nil {
		writeServiceError(w, err)
		return
	}
	response.NoContent(w)
}

// Modules handles GET /api/v1/admin/modules, the permission module registry.
func (h *APIKeyHandler) Modules(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, h.svc.Modules())
}
