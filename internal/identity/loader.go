// Package identity loads the authenticated user's profile and preferences on
// every protected request, merging the token's provider metadata with the
// stored profile row under a fixed precedence.
package identity

import (
	"context"
	"errors"

	"github.com/veritum/veritum-pro/internal/auth"
	"github.com/veritum/veritum-pro/internal/database/models"
	"gorm.io/gorm"
)

// ErrNoIdentity means no authenticated identity exists for the request.
// This is a hard boundary: API callers get 401, page loads are redirected to
// the login entry point. It is never treated as a recoverable error.
var ErrNoIdentity = errors.New("no authenticated identity")

const (
	defaultLocale = "pt-BR"
	defaultTheme  = "light"
)

// Session is the fully loaded per-request identity: the merged profile plus
// the preference row when one exists.
type Session struct {
	User        *models.User
	Preferences *models.UserPreferences
}

type Loader struct {
	db *gorm.DB
}

func NewLoader(db *gorm.DB) *Loader {
	return &Loader{db: db}
}

// Load resolves the session for validated claims. The stored profile row is
// authoritative; claims only fill fields the profile left empty; fixed
// defaults cover the rest. Preferences are optional — they are created
// lazily on first save, so a missing row is not an error.
func (l *Loader) Load(ctx context.Context, claims *auth.Claims) (*Session, error) {
	if claims == nil {
		return nil, ErrNoIdentity
	}

	var user models.User
	if err := l.db.WithContext(ctx).First(&user, claims.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoIdentity
		}
		return nil, err
	}

	merged := MergeProfile(&user, claims)

	session := &Session{User: merged}

	var prefs models.UserPreferences
	err := l.db.WithContext(ctx).Where("user_id = ?", user.ID).First(&prefs).Error
	switch {
	case err == nil:
		session.Preferences = &prefs
	case errors.Is(err, gorm.ErrRecordNotFound):
		// Lazily created on first save; leave nil.
	default:
		return nil, err
	}

	return session, nil
}

// MergeProfile applies the field precedence: stored profile value if
// non-empty, else provider metadata, else the fixed default. Pure function
// shared by the loader and its tests.
func MergeProfile(stored *models.User, claims *auth.Claims) *models.User {
	merged := *stored

	if merged.Email == "" {
		merged.Email = claims.Email
	}
	if merged.Name == "" {
		merged.Name = claims.Name
	}
	if merged.Role == "" {
		merged.Role = claims.Role
	}
	if merged.Role == "" || !merged.Role.Valid() {
		merged.Role = models.DefaultRole
	}

	return &merged
}

// PreferencesOrDefault returns the stored preference row or the fixed
// defaults when none has been saved yet.
func PreferencesOrDefault(prefs *models.UserPreferences) models.UserPreferences {
	if prefs != nil {
		out := *prefs
		if out.Locale == "" {
			out.Locale = defaultLocale
		}
		if out.Theme == "" {
			out.Theme = defaultTheme
		}
		return out
	}
	return models.UserPreferences{
		Locale: defaultLocale,
		Theme:  defaultTheme,
	}
}
