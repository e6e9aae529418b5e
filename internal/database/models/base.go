package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LocalizedText maps a locale tag ("pt-BR", "en-US") to copy for that locale.
// Stored as a JSON column.
type LocalizedText map[string]string

// Scan implements the sql.Scanner interface for reading from database
func (l *LocalizedText) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("LocalizedText: expected []byte or string, got %T", value)
	}

	if len(data) == 0 {
		*l = nil
		return nil
	}

	return json.Unmarshal(data, l)
}

// Value implements the driver.Valuer interface for writing to database
func (l LocalizedText) Value() (driver.Value, error) {
	if len(l) == 0 {
		return nil, nil
	}
	return json.Marshal(l)
}

// Get returns the copy for a locale, falling back to pt-BR, then to any entry.
func (l LocalizedText) Get(locale string) string {
	if v, ok := l[locale]; ok {
		return v
	}
	if v, ok := l["pt-BR"]; ok {
		return v
	}
	for _, v := range l {
		return v
	}
	return ""
}

// Base model with UUID primary key and timestamps
type Base struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
