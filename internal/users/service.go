// Package users is the admin-facing account management: listing, operator
// provisioning under a parent account, plan assignment, and deactivation.
package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/veritum/veritum-pro/internal/auth"
	"github.com/veritum/veritum-pro/internal/database/models"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrPlanNotFound = errors.New("plan not found")
	ErrEmailTaken   = errors.New("email already in use")
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// List returns accounts, optionally filtered to one parent's operators.
func (s *Service) List(ctx context.Context, parentID *uuid.UUID) ([]models.User, error) {
	query := s.db.WithContext(ctx).Preload("Plan")
	if parentID != nil {
		query = query.Where("parent_user_id = ?", *parentID)
	}

	var users []models.User
	if err := query.Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Preload("Plan").First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateOperatorInput provisions a staff account under a parent.
type CreateOperatorInput struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

func (in CreateOperatorInput) Validate() map[string]string {
	problems := make(map[string]string)
	if in.Email == "" || !strings.Contains(in.Email, "@") {
		problems["email"] = "a valid email is required"
	}
	if in.Name == "" {
		problems["name"] = "name is required"
	}
	if len(in.Password) < 8 {
		problems["password"] = "password must be at least 8 characters"
	}
	return problems
}

// CreateOperator creates an operator linked to the parent account. Operators
// carry no plan of their own; entitlement flows from the parent at
// permission-resolution time. The account starts with a forced password
// reset.
func (s *Service) CreateOperator(ctx context.Context, parentID uuid.UUID, input CreateOperatorInput) (*models.User, error) {
	if _, err := s.Get(ctx, parentID); err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("email = ?", input.Email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	operator := &models.User{
		Email:         input.Email,
		PasswordHash:  hash,
		Name:          input.Name,
		Username:      operatorUsername(input.Email),
		Role:          models.RoleOperator,
		IsActive:      true,
		ResetRequired: true,
		ParentUserID:  &parentID,
	}
	if err := s.db.WithContext(ctx).Create(operator).Error; err != nil {
		return nil, err
	}
	return operator, nil
}

func operatorUsername(email string) string {
	local := strings.SplitN(email, "@", 2)[0]
	return fmt.Sprintf("%s-%d", strings.ToLower(local), time.Now().UnixNano()%100000)
}

// UpdateInput carries the editable account fields; nil means unchanged.
type UpdateInput struct {
	Name      *string `json:"name"`
	AvatarURL *string `json:"avatar_url"`
	Role      *string `json:"role"`
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil && *input.Name != "" {
		user.Name = *input.Name
	}
	if input.AvatarURL != nil {
		user.AvatarURL = *input.AvatarURL
	}
	if input.Role != nil {
		role := models.Role(*input.Role)
		if !role.Valid() {
			return nil, fmt.Errorf("invalid role %q", *input.Role)
		}
		user.Role = role
	}

	if err := s.db.WithContext(ctx).Save(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// AssignPlan points the account at a plan directly (admin action, outside
// the subscription flow).
func (s *Service) AssignPlan(ctx context.Context, userID, planID uuid.UUID) (*models.User, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	var plan models.Plan
	if err := s.db.WithContext(ctx).First(&plan, planID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(user).Update("plan_id", planID).Error; err != nil {
		return nil, err
	}
	user.PlanID = &planID
	return user, nil
}

// Deactivate blocks the account from logging in. Accounts are never hard
// deleted.
func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Reactivate restores a deactivated account.
func (s *Service) Reactivate(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Update("is_active", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}
