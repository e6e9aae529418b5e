package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/veritum/veritum-pro/internal/api/dto"
	"github.com/veritum/veritum-pro/internal/database/models"
	"github.com/veritum/veritum-pro/pkg/crypto"
	"gorm.io/gorm"
)

// EmailSettingsHandler manages the platform's single SMTP settings row. The
// password is sealed before it reaches the database and never read back out
// through the API.
type EmailSettingsHandler struct {
	db        *gorm.DB
	encryptor *crypto.Encryptor
}

func NewEmailSettingsHandler(db *gorm.DB, encryptor *crypto.Encryptor) *EmailSettingsHandler {
	return &EmailSettingsHandler{db: db, encryptor: encryptor}
}

func (h *EmailSettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	var setting models.EmailSetting
	err := h.db.WithContext(r.Context()).Order("created_at DESC").First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Email settings not configured"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to load email settings"})
		return
	}
	writeJSON(w, http.StatusOK, setting)
}

type emailSettingsRequest struct {
	SMTPHost     string `json:"smtp_host"`
	SMTPPort     int    `json:"smtp_port"`
	SMTPUser     string `json:"smtp_user"`
	SMTPPassword string `json:"smtp_password"`
	FromAddress  string `json:"from_address"`
	IsActive     *bool  `json:"is_active"`
}

func (h *EmailSettingsHandler) Put(w http.ResponseWriter, r *http.Request) {
	var req emailSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if req.SMTPHost == "" {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "SMTP host is required"})
		return
	}

	var setting models.EmailSetting
	err := h.db.WithContext(r.Context()).Order("created_at DESC").First(&setting).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to load email settings"})
		return
	}

	setting.SMTPHost = req.SMTPHost
	if req.SMTPPort > 0 {
		setting.SMTPPort = req.SMTPPort
	}
	setting.SMTPUser = req.SMTPUser
	setting.FromAddress = req.FromAddress
	if req.IsActive != nil {
		setting.IsActive = *req.IsActive
	}

	if req.SMTPPassword != "" {
		sealed, err := h.encryptor.EncryptString(req.SMTPPassword)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to store password"})
			return
		}
		setting.SMTPPassword = sealed
	}

	if err := h.db.WithContext(r.Context()).Save(&setting).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to save email settings"})
		return
	}
	writeJSON(w, http.StatusOK, setting)
}
