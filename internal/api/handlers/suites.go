package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/veritum/veritum-pro/internal/api/dto"
	"github.com/veritum/veritum-pro/internal/catalog"
)

type SuitesHandler struct {
	service  *catalog.Service
	snapshot *catalog.Snapshot
}

func NewSuitesHandler(service *catalog.Service, snapshot *catalog.Snapshot) *SuitesHandler {
	return &SuitesHandler{service: service, snapshot: snapshot}
}

// ListPublic serves the landing-page catalog from the in-memory snapshot.
func (h *SuitesHandler) ListPublic(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.snapshot.Suites())
}

func (h *SuitesHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	suites, err := h.service.ListAll(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to list suites"})
		return
	}
	writeJSON(w, http.StatusOK, suites)
}

func (h *SuitesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input catalog.SuiteInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := input.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	suite, err := h.service.CreateSuite(r.Context(), input)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, suite)
}

func (h *SuitesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	suite, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, suite)
}

func (h *SuitesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var input catalog.SuiteInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	suite, err := h.service.UpdateSuite(r.Context(), id, input)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, suite)
}

func (h *SuitesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteSuite(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Suite deleted"})
}

func (h *SuitesHandler) CreateFeature(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var input catalog.FeatureInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if input.Key == "" {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Feature key is required"})
		return
	}

	feature, err := h.service.CreateFeature(r.Context(), id, input)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, feature)
}

func (h *SuitesHandler) DeleteFeature(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "featureID")
	if !ok {
		return
	}

	if err := h.service.DeleteFeature(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Feature deleted"})
}

func (h *SuitesHandler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalog.ErrSuiteNotFound):
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Suite not found"})
	case errors.Is(err, catalog.ErrFeatureNotFound):
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Feature not found"})
	case errors.Is(err, catalog.ErrSuiteKeyTaken):
		writeJSON(w, http.StatusConflict, dto.ErrorResponse{Error: "Suite key already in use"})
	default:
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Operation failed"})
	}
}
