package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/veritum/veritum-pro/internal/api/dto"
	"github.com/veritum/veritum-pro/internal/api/middleware"
	"github.com/veritum/veritum-pro/internal/database/models"
	"github.com/veritum/veritum-pro/internal/identity"
	"github.com/veritum/veritum-pro/internal/permissions"
	"github.com/veritum/veritum-pro/internal/tenant"
	"gorm.io/gorm"
)

type MeHandler struct {
	db       *gorm.DB
	loader   *identity.Loader
	resolver *permissions.Resolver
	tenants  *tenant.Service
}

func NewMeHandler(db *gorm.DB, loader *identity.Loader, resolver *permissions.Resolver, tenants *tenant.Service) *MeHandler {
	return &MeHandler{db: db, loader: loader, resolver: resolver, tenants: tenants}
}

// meResponse is the app-shell bootstrap payload: who the user is, what they
// may use, and which credential layer their tenant operations run against.
// The key material itself never leaves the server.
type meResponse struct {
	User             *models.User           `json:"user"`
	Preferences      models.UserPreferences `json:"preferences"`
	Permissions      permissions.GrantSet   `json:"permissions"`
	CredentialSource tenant.Source          `json:"credential_source"`
	DBEndpoint       string                 `json:"db_endpoint,omitempty"`
}

func (h *MeHandler) Me(w http.ResponseWriter, r *http.Request) {
	session, err := h.loader.Load(r.Context(), middleware.GetClaims(r.Context()))
	if err != nil {
		if errors.Is(err, identity.ErrNoIdentity) {
			writeJSON(w, http.StatusUnauthorized, dto.ErrorResponse{Error: "Unauthorized"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to load identity"})
		return
	}

	grants, err := h.resolver.Resolve(r.Context(), session.User)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to resolve permissions"})
		return
	}

	creds, source, err := h.tenants.ResolveForRequest(r.Context(), session.User.ID, tenant.ReadOverrideCookies(r))
	if err != nil {
		if errors.Is(err, tenant.ErrMissingConfiguration) {
			writeJSON(w, http.StatusConflict, dto.ErrorResponse{Error: "No tenant database configured"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to resolve credentials"})
		return
	}

	writeJSON(w, http.StatusOK, meResponse{
		User:             session.User,
		Preferences:      identity.PreferencesOrDefault(session.Preferences),
		Permissions:      grants,
		CredentialSource: source,
		DBEndpoint:       creds.Endpoint,
	})
}

func (h *MeHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	session, err := h.loader.Load(r.Context(), middleware.GetClaims(r.Context()))
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, dto.ErrorResponse{Error: "Unauthorized"})
		return
	}
	writeJSON(w, http.StatusOK, identity.PreferencesOrDefault(session.Preferences))
}

type preferencesRequest struct {
	Locale string `json:"locale"`
	Theme  string `json:"theme"`
}

// UpdatePreferences lazily creates the row on first save, then upserts.
func (h *MeHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	var req preferencesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	userID := middleware.GetUserID(r.Context())

	var prefs models.UserPreferences
	err := h.db.WithContext(r.Context()).Where("user_id = ?", userID).First(&prefs).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		prefs = models.UserPreferences{UserID: userID}
	} else if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to load preferences"})
		return
	}

	if req.Locale != "" {
		prefs.Locale = req.Locale
	}
	if req.Theme != "" {
		prefs.Theme = req.Theme
	}

	if err := h.db.WithContext(r.Context()).Save(&prefs).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to save preferences"})
		return
	}
	writeJSON(w, http.StatusOK, identity.PreferencesOrDefault(&prefs))
}
