package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/veritum/veritum-pro/internal/database/models"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactiveUser       = errors.New("user is inactive")
	ErrResetNotRequired   = errors.New("password reset not required")
)

type Service struct {
	db  *gorm.DB
	jwt *JWTService
}

func NewService(db *gorm.DB, jwt *JWTService) *Service {
	return &Service{db: db, jwt: jwt}
}

type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Username string // Optional: derived from the email when empty
}

type LoginInput struct {
	Email    string
	Password string
}

type ResetPasswordInput struct {
	UserID      uuid.UUID
	NewPassword string
}

// AuthResponse carries the token and the authenticated profile.
// ResetRequired tells the client to enter the forced-reset flow instead of
// the application shell; that flow is terminal and ends in a fresh login.
type AuthResponse struct {
	Token         string       `json:"token"`
	User          *models.User `json:"user"`
	ResetRequired bool         `json:"reset_required"`
}

func (s *Service) Register(ctx context.Context, input RegisterInput) (*AuthResponse, error) {
	var existing models.User
	if err := s.db.WithContext(ctx).Where("email = ?", input.Email).First(&existing).Error; err == nil {
		return nil, ErrUserExists
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	username := input.Username
	if username == "" {
		username = generateUsername(input.Email)
	}

	// Self-service registration creates an owner account. Operator accounts
	// are only issued by an administrator (internal/users).
	user := models.User{
		Email:        input.Email,
		PasswordHash: hash,
		Name:         input.Name,
		Username:     username,
		Role:         models.RoleOwner,
		IsActive:     true,
	}

	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}

	token, err := s.jwt.GenerateToken(user.ID, user.Email, user.Name, user.Role)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{Token: token, User: &user}, nil
}

func (s *Service) Login(ctx context.Context, input LoginInput) (*AuthResponse, error) {
	var user models.User
	if err := s.db.WithContext(ctx).
		Where("email = ?", input.Email).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, ErrInactiveUser
	}

	if !CheckPassword(input.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateToken(user.ID, user.Email, user.Name, user.Role)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		Token:         token,
		User:          &user,
		ResetRequired: user.ResetRequired,
	}, nil
}

// CompleteReset finishes the forced password-reset flow: stores the new
// password, clears the flag, and issues a fresh token for the app shell.
func (s *Service) CompleteReset(ctx context.Context, input ResetPasswordInput) (*AuthResponse, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, input.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if !user.ResetRequired {
		return nil, ErrResetNotRequired
	}

	hash, err := HashPassword(input.NewPassword)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"password_hash":  hash,
		"reset_required": false,
	}
	if err := s.db.WithContext(ctx).Model(&user).Updates(updates).Error; err != nil {
		return nil, err
	}
	user.ResetRequired = false

	token, err := s.jwt.GenerateToken(user.ID, user.Email, user.Name, user.Role)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{Token: token, User: &user}, nil
}

func (s *Service) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).
		Preload("Preferences").
		First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func generateUsername(email string) string {
	local := email
	if at := strings.Index(email, "@"); at > 0 {
		local = email[:at]
	}
	local = strings.ToLower(local)
	// Timestamp suffix keeps the unique index happy for common local parts.
	return local + "-" + time.Now().Format("0601021504")
}
