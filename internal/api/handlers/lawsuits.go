package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/veritum/veritum-pro/internal/api/dto"
	"github.com/veritum/veritum-pro/internal/api/middleware"
	"github.com/veritum/veritum-pro/internal/database/models"
	"github.com/veritum/veritum-pro/internal/lawsuits"
)

type LawsuitsHandler struct {
	service *lawsuits.Service
}

func NewLawsuitsHandler(service *lawsuits.Service) *LawsuitsHandler {
	return &LawsuitsHandler{service: service}
}

func (h *LawsuitsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input lawsuits.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	lawsuit, err := h.service.Create(r.Context(), middleware.GetUserID(r.Context()), input)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, lawsuit)
}

func (h *LawsuitsHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context(), middleware.GetUserID(r.Context()), r.URL.Query().Get("status"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *LawsuitsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	lawsuit, err := h.service.Get(r.Context(), middleware.GetUserID(r.Context()), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lawsuit)
}

func (h *LawsuitsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var input lawsuits.UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	lawsuit, err := h.service.Update(r.Context(), middleware.GetUserID(r.Context()), id, input)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lawsuit)
}

type statusRequest struct {
	Status string `json:"status"`
}

// statusResponse echoes the previous column so a client that moved the card
// optimistically can roll it back if its own state diverged.
type statusResponse struct {
	Lawsuit        *models.Lawsuit      `json:"lawsuit"`
	PreviousStatus models.LawsuitStatus `json:"previous_status"`
}

func (h *LawsuitsHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	lawsuit, previous, err := h.service.UpdateStatus(r.Context(), middleware.GetUserID(r.Context()), id, req.Status)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Lawsuit: lawsuit, PreviousStatus: previous})
}

func (h *LawsuitsHandler) Archive(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	lawsuit, err := h.service.Archive(r.Context(), middleware.GetUserID(r.Context()), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lawsuit)
}

func (h *LawsuitsHandler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, lawsuits.ErrLawsuitNotFound):
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Lawsuit not found"})
	case errors.Is(err, lawsuits.ErrInvalidStatus):
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid status"})
	case errors.Is(err, lawsuits.ErrMissingClient):
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Client name is required"})
	default:
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Operation failed"})
	}
}
