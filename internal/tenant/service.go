package tenant

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/veritum/veritum-pro/internal/database/models"
	"github.com/veritum/veritum-pro/pkg/crypto"
	"gorm.io/gorm"
)

// Service persists BYODB and AI-key overrides on user preferences, sealing
// the secret halves at rest.
type Service struct {
	db        *gorm.DB
	encryptor *crypto.Encryptor
	platform  Credentials
}

func NewService(db *gorm.DB, encryptor *crypto.Encryptor, platform Credentials) *Service {
	return &Service{db: db, encryptor: encryptor, platform: platform}
}

// Platform returns the shared default credential pair.
func (s *Service) Platform() Credentials {
	return s.platform
}

// SaveOverrides stores the BYODB pair and optional AI key on the user's
// preferences row, creating it if needed. Secrets are encrypted before they
// touch the database. Empty values clear the stored override.
func (s *Service) SaveOverrides(ctx context.Context, userID uuid.UUID, creds Credentials, aiKey string) error {
	dbKey := ""
	if creds.Key != "" {
		sealed, err := s.encryptor.EncryptString(creds.Key)
		if err != nil {
			return err
		}
		dbKey = sealed
	}
	sealedAIKey := ""
	if aiKey != "" {
		sealed, err := s.encryptor.EncryptString(aiKey)
		if err != nil {
			return err
		}
		sealedAIKey = sealed
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var prefs models.UserPreferences
		err := tx.Where("user_id = ?", userID).First(&prefs).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			prefs = models.UserPreferences{UserID: userID}
		} else if err != nil {
			return err
		}

		prefs.DBEndpoint = creds.Endpoint
		prefs.DBKey = dbKey
		prefs.AIKey = sealedAIKey
		return tx.Save(&prefs).Error
	})
}

// ClearOverrides removes any stored BYODB pair and AI key.
func (s *Service) ClearOverrides(ctx context.Context, userID uuid.UUID) error {
	return s.db.WithContext(ctx).
		Model(&models.UserPreferences{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{"db_endpoint": "", "db_key": "", "ai_key": ""}).Error
}

// StoredOverrides returns the decrypted override pair and AI key from the
// user's preferences. A user without a preferences row has no overrides.
func (s *Service) StoredOverrides(ctx context.Context, userID uuid.UUID) (Credentials, string, error) {
	var prefs models.UserPreferences
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&prefs).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Credentials{}, "", nil
	}
	if err != nil {
		return Credentials{}, "", err
	}
	return s.decryptOverrides(&prefs)
}

func (s *Service) decryptOverrides(prefs *models.UserPreferences) (Credentials, string, error) {
	creds := Credentials{Endpoint: prefs.DBEndpoint}
	if prefs.DBKey != "" {
		key, err := s.encryptor.DecryptString(prefs.DBKey)
		if err != nil {
			return Credentials{}, "", err
		}
		creds.Key = key
	}
	aiKey := ""
	if prefs.AIKey != "" {
		key, err := s.encryptor.DecryptString(prefs.AIKey)
		if err != nil {
			return Credentials{}, "", err
		}
		aiKey = key
	}
	return creds, aiKey, nil
}

// ResolveForRequest layers stored preferences over a cookie-carried pair
// over the platform default, and reports which layer won.
func (s *Service) ResolveForRequest(ctx context.Context, userID uuid.UUID, cookie Credentials) (Credentials, Source, error) {
	stored, _, err := s.StoredOverrides(ctx, userID)
	if err != nil {
		return Credentials{}, "", err
	}
	if stored.Complete() {
		return stored, SourcePreferences, nil
	}
	if cookie.Complete() {
		return cookie, SourceCookie, nil
	}
	resolved, err := Resolve(Credentials{}, s.platform)
	if err != nil {
		return Credentials{}, "", err
	}
	return resolved, SourcePlatform, nil
}
