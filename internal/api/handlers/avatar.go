package handlers

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/veritum/veritum-pro/internal/api/dto"
	"github.com/veritum/veritum-pro/internal/api/middleware"
	"github.com/veritum/veritum-pro/internal/database/models"
	"github.com/veritum/veritum-pro/internal/storage"
	"gorm.io/gorm"
)

const maxAvatarSize = 5 << 20 // 5 MiB

type AvatarHandler struct {
	db    *gorm.DB
	store storage.Storage
}

func NewAvatarHandler(db *gorm.DB, store storage.Storage) *AvatarHandler {
	return &AvatarHandler{db: db, store: store}
}

// Upload stores a new avatar through the storage layer and records its path
// on the profile.
func (h *AvatarHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxAvatarSize); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid multipart form"})
		return
	}

	file, header, err := r.FormFile("avatar")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Avatar file is required"})
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".webp":
	default:
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Unsupported image format"})
		return
	}

	userID := middleware.GetUserID(r.Context())
	path, err := h.store.Upload(r.Context(), userID, header.Filename, file)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Upload failed"})
		return
	}

	if err := h.db.WithContext(r.Context()).
		Model(&models.User{}).
		Where("id = ?", userID).
		Update("avatar_url", "/api/v1/me/avatar/"+path).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to save avatar"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"avatar_url": "/api/v1/me/avatar/" + path})
}
