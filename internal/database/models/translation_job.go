package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobInProgress JobStatus = "in_progress"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

// TranslationItem is one text to translate into one or more target languages.
type TranslationItem struct {
	Text    string   `json:"text"`
	Targets []string `json:"targets"`
}

// TranslationResult carries the translated text per target language for one
// item, in item order.
type TranslationResult struct {
	Text         string            `json:"text"`
	Translations map[string]string `json:"translations"`
}

type TranslationItems []TranslationItem

func (t *TranslationItems) Scan(value interface{}) error { return scanJSON(value, t) }
func (t TranslationItems) Value() (driver.Value, error)  { return json.Marshal(t) }

type TranslationResults []TranslationResult

func (t *TranslationResults) Scan(value interface{}) error { return scanJSON(value, t) }
func (t TranslationResults) Value() (driver.Value, error)  { return json.Marshal(t) }

func scanJSON(value, dest interface{}) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, dest)
	case string:
		return json.Unmarshal([]byte(v), dest)
	default:
		return fmt.Errorf("expected []byte or string, got %T", value)
	}
}

// TranslationJob is a batch-translation request processed by the worker and
// polled by the client.
type TranslationJob struct {
	Base
	UserID  uuid.UUID          `gorm:"type:uuid;index;not null" json:"user_id"`
	Status  JobStatus          `gorm:"default:'pending';index" json:"status"`
	Items   TranslationItems   `gorm:"type:jsonb" json:"items"`
	Results TranslationResults `gorm:"type:jsonb" json:"results,omitempty"`
	Error   string             `json:"error,omitempty"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}

func (TranslationJob) TableName() string {
	return "translation_jobs"
}
