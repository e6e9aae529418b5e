package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/veritum/veritum-pro/internal/database/models"
	"github.com/veritum/veritum-pro/pkg/config"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"
)

var ErrOAuthNotConfigured = errors.New("oauth is not configured")

const userinfoEndpoint = "https://www.googleapis.com/oauth2/v2/userinfo"

// OAuthService exchanges an authorization code for a provider identity and
// signs the matching account in, creating it on first login.
type OAuthService struct {
	db   *gorm.DB
	jwt  *JWTService
	conf *oauth2.Config
}

func NewOAuthService(db *gorm.DB, jwt *JWTService, cfg *config.OAuthConfig) *OAuthService {
	var conf *oauth2.Config
	if cfg.ClientID != "" {
		conf = &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		}
	}
	return &OAuthService{db: db, jwt: jwt, conf: conf}
}

// AuthURL returns the provider consent URL for the given anti-forgery state.
func (s *OAuthService) AuthURL(state string) (string, error) {
	if s.conf == nil {
		return "", ErrOAuthNotConfigured
	}
	return s.conf.AuthCodeURL(state, oauth2.AccessTypeOnline), nil
}

type providerProfile struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// Exchange trades the authorization code for the provider profile and
// returns an authenticated session for the matching user.
func (s *OAuthService) Exchange(ctx context.Context, code string) (*AuthResponse, error) {
	if s.conf == nil {
		return nil, ErrOAuthNotConfigured
	}

	token, err := s.conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchanging code: %w", err)
	}

	profile, err := s.fetchProfile(ctx, token)
	if err != nil {
		return nil, err
	}

	var user models.User
	err = s.db.WithContext(ctx).Where("email = ?", profile.Email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// First OAuth login provisions an owner account with an unusable
		// password; these accounts only sign in through the provider.
		placeholder, err := GenerateRandomPassword()
		if err != nil {
			return nil, err
		}
		hash, err := HashPassword(placeholder)
		if err != nil {
			return nil, err
		}
		user = models.User{
			Email:        profile.Email,
			PasswordHash: hash,
			Name:         profile.Name,
			Username:     generateUsername(profile.Email),
			Role:         models.RoleOwner,
			IsActive:     true,
			AvatarURL:    profile.Picture,
		}
		if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	if !user.IsActive {
		return nil, ErrInactiveUser
	}

	jwtToken, err := s.jwt.GenerateToken(user.ID, user.Email, user.Name, user.Role)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		Token:         jwtToken,
		User:          &user,
		ResetRequired: user.ResetRequired,
	}, nil
}

func (s *OAuthService) fetchProfile(ctx context.Context, token *oauth2.Token) (*providerProfile, error) {
	client := s.conf.Client(ctx, token)
	resp, err := client.Get(userinfoEndpoint)
	if err != nil {
		return nil, fmt.Errorf("fetching userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo returned status %d", resp.StatusCode)
	}

	var profile providerProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("decoding userinfo: %w", err)
	}
	if profile.Email == "" {
		return nil, errors.New("provider profile has no email")
	}
	return &profile, nil
}
