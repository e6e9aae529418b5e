package models

import "github.com/google/uuid"

// UserPreferences is 1:1 with User and created lazily on first save.
// DBKey and AIKey hold age-encrypted ciphertext, never plaintext.
type UserPreferences struct {
	Base
	UserID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	Locale string    `gorm:"default:'pt-BR'" json:"locale"`
	Theme  string    `gorm:"default:'light'" json:"theme"`

	// BYODB override: when both endpoint and key are set the user's
	// tenant-scoped operations target this database instead of the
	// platform default.
	DBEndpoint string `json:"db_endpoint,omitempty"`
	DBKey      string `json:"-"`

	// Optional per-user generative-API key override.
	AIKey string `json:"-"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}

func (UserPreferences) TableName() string {
	return "user_preferences"
}
