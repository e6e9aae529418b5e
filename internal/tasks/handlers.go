package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/veritum/veritum-pro/internal/ai"
	"github.com/veritum/veritum-pro/internal/billing"
	"github.com/veritum/veritum-pro/internal/database/models"
	"gorm.io/gorm"
)

// Handler carries the worker-side dependencies for all task types.
type Handler struct {
	db            *gorm.DB
	gateway       *ai.Gateway
	subscriptions *billing.SubscriptionService
	logger        *slog.Logger
}

func NewHandler(db *gorm.DB, gateway *ai.Gateway, subscriptions *billing.SubscriptionService, logger *slog.Logger) *Handler {
	return &Handler{db: db, gateway: gateway, subscriptions: subscriptions, logger: logger}
}

// Register attaches every task type to the mux.
func (h *Handler) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeTranslateBatch, h.HandleTranslateBatch)
	mux.HandleFunc(TypeSubscriptionSweep, h.HandleSubscriptionSweep)
}

// HandleTranslateBatch works a translation job item by item. Any item
// failure marks the whole job failed with the error message; partial
// results are not kept.
func (h *Handler) HandleTranslateBatch(ctx context.Context, task *asynq.Task) error {
	var payload TranslateBatchPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshaling payload: %v: %w", err, asynq.SkipRetry)
	}

	var job models.TranslationJob
	if err := h.db.WithContext(ctx).First(&job, payload.JobID).Error; err != nil {
		return fmt.Errorf("loading job %s: %w", payload.JobID, err)
	}
	if job.Status != models.JobPending {
		h.logger.Info("translation job already picked up", "job_id", job.ID, "status", job.Status)
		return nil
	}

	if err := h.db.WithContext(ctx).Model(&job).
		Update("status", models.JobInProgress).Error; err != nil {
		return err
	}

	results := make(models.TranslationResults, 0, len(job.Items))
	for _, item := range job.Items {
		translations := make(map[string]string, len(item.Targets))
		for _, target := range item.Targets {
			translated, err := h.gateway.Translate(ctx, payload.AIKey, item.Text, target)
			if err != nil {
				return h.failJob(ctx, &job, err)
			}
			translations[target] = translated
		}
		results = append(results, models.TranslationResult{Text: item.Text, Translations: translations})
	}

	err := h.db.WithContext(ctx).Model(&job).Updates(map[string]interface{}{
		"status":  models.JobCompleted,
		"results": results,
	}).Error
	if err != nil {
		return err
	}

	h.logger.Info("translation job completed", "job_id", job.ID, "items", len(job.Items))
	return nil
}

// failJob records the failure on the row and stops the task without asynq
// retries; the client sees the error through the polling endpoint.
func (h *Handler) failJob(ctx context.Context, job *models.TranslationJob, cause error) error {
	h.logger.Error("translation job failed", "job_id", job.ID, "error", cause)

	if err := h.db.WithContext(ctx).Model(job).Updates(map[string]interface{}{
		"status": models.JobFailed,
		"error":  cause.Error(),
	}).Error; err != nil {
		return err
	}
	return fmt.Errorf("translation job %s: %v: %w", job.ID, cause, asynq.SkipRetry)
}

// HandleSubscriptionSweep expires lapsed subscriptions.
func (h *Handler) HandleSubscriptionSweep(ctx context.Context, _ *asynq.Task) error {
	swept, err := h.subscriptions.SweepExpired(ctx, time.Now())
	if err != nil {
		return fmt.Errorf("sweeping subscriptions: %w", err)
	}
	if swept > 0 {
		h.logger.Info("subscription sweep expired rows", "count", swept)
	}
	return nil
}
