package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hibiken/asynq"
	"github.com/veritum/veritum-pro/internal/ai"
	"github.com/veritum/veritum-pro/internal/api/dto"
	"github.com/veritum/veritum-pro/internal/api/middleware"
	"github.com/veritum/veritum-pro/internal/database/models"
	"github.com/veritum/veritum-pro/internal/tasks"
	"github.com/veritum/veritum-pro/internal/tenant"
	"gorm.io/gorm"
)

// AIHandler fronts the generative gateway. Every call resolves the user's
// AI-key override first: stored preferences win over the cookie, and the
// platform key is the fallback inside the gateway.
type AIHandler struct {
	db      *gorm.DB
	gateway *ai.Gateway
	tenants *tenant.Service
	queue   *asynq.Client
}

func NewAIHandler(db *gorm.DB, gateway *ai.Gateway, tenants *tenant.Service, queue *asynq.Client) *AIHandler {
	return &AIHandler{db: db, gateway: gateway, tenants: tenants, queue: queue}
}

func (h *AIHandler) overrideKey(r *http.Request) string {
	_, stored, err := h.tenants.StoredOverrides(r.Context(), middleware.GetUserID(r.Context()))
	if err == nil && stored != "" {
		return stored
	}
	return tenant.ReadAIKeyCookie(r)
}

type textRequest struct {
	Text string `json:"text"`
}

type textResponse struct {
	Text string `json:"text"`
}

func (h *AIHandler) decodeText(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req textRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return "", false
	}
	if req.Text == "" {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Text is required"})
		return "", false
	}
	return req.Text, true
}

func (h *AIHandler) Draft(w http.ResponseWriter, r *http.Request) {
	text, ok := h.decodeText(w, r)
	if !ok {
		return
	}

	out, err := h.gateway.Draft(r.Context(), h.overrideKey(r), text)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, textResponse{Text: out})
}

func (h *AIHandler) PredictOutcome(w http.ResponseWriter, r *http.Request) {
	text, ok := h.decodeText(w, r)
	if !ok {
		return
	}

	prediction, err := h.gateway.PredictOutcome(r.Context(), h.overrideKey(r), text)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, prediction)
}

// AnalyzeSentiment relays the model's JSON verbatim; the gateway has already
// checked it is well-formed.
func (h *AIHandler) AnalyzeSentiment(w http.ResponseWriter, r *http.Request) {
	text, ok := h.decodeText(w, r)
	if !ok {
		return
	}

	raw, err := h.gateway.AnalyzeSentiment(r.Context(), h.overrideKey(r), text)
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}

type translateRequest struct {
	Text   string `json:"text"`
	Target string `json:"target"`
}

func (h *AIHandler) Translate(w http.ResponseWriter, r *http.Request) {
	var req translateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if req.Text == "" || req.Target == "" {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Text and target are required"})
		return
	}

	out, err := h.gateway.Translate(r.Context(), h.overrideKey(r), req.Text, req.Target)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, textResponse{Text: out})
}

func (h *AIHandler) TranslatePlain(w http.ResponseWriter, r *http.Request) {
	text, ok := h.decodeText(w, r)
	if !ok {
		return
	}

	out, err := h.gateway.TranslatePlain(r.Context(), h.overrideKey(r), text)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, textResponse{Text: out})
}

type batchRequest struct {
	Items models.TranslationItems `json:"items"`
}

// TranslateBatch records the job and enqueues it; the client polls GetJob.
func (h *AIHandler) TranslateBatch(w http.ResponseWriter, r *http.Request) {
	// The server runs without a queue client when Redis is down at startup.
	if h.queue == nil {
		writeJSON(w, http.StatusServiceUnavailable, dto.ErrorResponse{Error: "Background jobs are unavailable"})
		return
	}

	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if len(req.Items) == 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "At least one item is required"})
		return
	}
	for _, item := range req.Items {
		if item.Text == "" || len(item.Targets) == 0 {
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Every item needs text and targets"})
			return
		}
	}

	job := models.TranslationJob{
		UserID: middleware.GetUserID(r.Context()),
		Status: models.JobPending,
		Items:  req.Items,
	}
	if err := h.db.WithContext(r.Context()).Create(&job).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to create job"})
		return
	}

	task, err := tasks.NewTranslateBatchTask(job.ID, h.overrideKey(r))
	if err != nil {
		h.failUnqueuedJob(r, &job)
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to enqueue job"})
		return
	}
	if _, err := h.queue.EnqueueContext(r.Context(), task); err != nil {
		h.failUnqueuedJob(r, &job)
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to enqueue job"})
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{
		"job_id": job.ID.String(),
		"status": string(job.Status),
	})
}

// failUnqueuedJob marks a job the worker will never see as failed, so the
// polling endpoint does not report it pending forever.
func (h *AIHandler) failUnqueuedJob(r *http.Request, job *models.TranslationJob) {
	_ = h.db.WithContext(r.Context()).Model(job).Updates(map[string]interface{}{
		"status": models.JobFailed,
		"error":  "job could not be enqueued",
	}).Error
}

// GetJob is the polling endpoint for batch jobs; users only see their own.
func (h *AIHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var job models.TranslationJob
	err := h.db.WithContext(r.Context()).
		Where("user_id = ?", middleware.GetUserID(r.Context())).
		First(&job, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Job not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to load job"})
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// writeError maps gateway failures: a missing key is a configuration
// problem the caller can fix, everything else (network, parse) is a 500.
func (h *AIHandler) writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, ai.ErrMissingAPIKey) {
		writeJSON(w, http.StatusConflict, dto.ErrorResponse{Error: "No generative API key configured"})
		return
	}
	writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "AI request failed"})
}
