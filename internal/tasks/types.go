// Package tasks defines the asynq task types the server enqueues and the
// worker consumes.
package tasks

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	TypeTranslateBatch    = "ai:translate_batch"
	TypeSubscriptionSweep = "billing:subscription_sweep"
)

// TranslateBatchPayload names the job row the worker processes; the items
// themselves live in the database, not in the queue.
type TranslateBatchPayload struct {
	JobID uuid.UUID `json:"job_id"`
	AIKey string    `json:"ai_key,omitempty"`
}

func NewTranslateBatchTask(jobID uuid.UUID, aiKey string) (*asynq.Task, error) {
	payload, err := json.Marshal(TranslateBatchPayload{JobID: jobID, AIKey: aiKey})
	if err != nil {
		return nil, fmt.Errorf("marshaling payload: %w", err)
	}
	return asynq.NewTask(TypeTranslateBatch, payload, asynq.Queue("default")), nil
}

func NewSubscriptionSweepTask() *asynq.Task {
	return asynq.NewTask(TypeSubscriptionSweep, nil, asynq.Queue("low"))
}
