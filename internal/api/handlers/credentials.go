package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/veritum/veritum-pro/internal/api/dto"
	"github.com/veritum/veritum-pro/internal/api/middleware"
	"github.com/veritum/veritum-pro/internal/tenant"
)

// CredentialsHandler manages the user's bring-your-own-database override:
// the pair is persisted on preferences (encrypted) and mirrored in long-lived
// cookies so the browser carries it across sessions.
type CredentialsHandler struct {
	tenants      *tenant.Service
	cookieDomain string
}

func NewCredentialsHandler(tenants *tenant.Service, cookieDomain string) *CredentialsHandler {
	return &CredentialsHandler{tenants: tenants, cookieDomain: cookieDomain}
}

type credentialsRequest struct {
	Endpoint string `json:"endpoint"`
	Key      string `json:"key"`
	AIKey    string `json:"ai_key,omitempty"`
}

// Put stores the override. A partial pair is rejected outright: resolution
// is all-or-nothing, so storing half a credential would only mislead.
func (h *CredentialsHandler) Put(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	creds := tenant.Credentials{Endpoint: req.Endpoint, Key: req.Key}
	if !creds.Complete() {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{
			Error: "Both endpoint and key are required",
		})
		return
	}

	userID := middleware.GetUserID(r.Context())
	if err := h.tenants.SaveOverrides(r.Context(), userID, creds, req.AIKey); err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to store credentials"})
		return
	}

	tenant.WriteOverrideCookies(w, creds, req.AIKey, h.cookieDomain)
	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Credentials stored"})
}

// Delete clears the stored override and expires the cookies; subsequent
// requests fall back to the platform default.
func (h *CredentialsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if err := h.tenants.ClearOverrides(r.Context(), userID); err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to clear credentials"})
		return
	}

	tenant.ClearOverrideCookies(w, h.cookieDomain)
	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Credentials cleared"})
}
