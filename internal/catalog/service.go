// Package catalog manages the suites/features catalog and keeps an
// in-memory snapshot of the active suites that is refreshed wholesale when a
// change notification arrives on Redis.
package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/veritum/veritum-pro/internal/database/models"
	"gorm.io/gorm"
)

// Channel carries suite-change notifications between instances.
const Channel = "catalog:suites"

var (
	ErrSuiteNotFound   = errors.New("suite not found")
	ErrSuiteKeyTaken   = errors.New("suite key already in use")
	ErrFeatureNotFound = errors.New("feature not found")
)

type Service struct {
	db    *gorm.DB
	redis *redis.Client
}

func NewService(db *gorm.DB, redisClient *redis.Client) *Service {
	return &Service{db: db, redis: redisClient}
}

// ListActive returns active suites with their features, in display order.
// This is the query the snapshot refetches.
func (s *Service) ListActive(ctx context.Context) ([]models.Suite, error) {
	var suites []models.Suite
	err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Preload("Features").
		Order("display_order, created_at").
		Find(&suites).Error
	return suites, err
}

// ListAll is the admin view, inactive suites included.
func (s *Service) ListAll(ctx context.Context) ([]models.Suite, error) {
	var suites []models.Suite
	err := s.db.WithContext(ctx).
		Preload("Features").
		Order("display_order, created_at").
		Find(&suites).Error
	return suites, err
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Suite, error) {
	var suite models.Suite
	err := s.db.WithContext(ctx).Preload("Features").First(&suite, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSuiteNotFound
	}
	if err != nil {
		return nil, err
	}
	return &suite, nil
}

// SuiteInput carries the writable suite fields.
type SuiteInput struct {
	Key          string               `json:"key"`
	Name         models.LocalizedText `json:"name"`
	Description  models.LocalizedText `json:"description"`
	Icon         string               `json:"icon"`
	IsActive     *bool                `json:"is_active"`
	DisplayOrder int                  `json:"display_order"`
}

func (in SuiteInput) Validate() map[string]string {
	problems := make(map[string]string)
	if in.Key == "" {
		problems["key"] = "key is required"
	}
	return problems
}

func (s *Service) CreateSuite(ctx context.Context, input SuiteInput) (*models.Suite, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Suite{}).
		Where("key = ?", input.Key).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrSuiteKeyTaken
	}

	suite := &models.Suite{
		Key:          input.Key,
		Name:         input.Name,
		Description:  input.Description,
		Icon:         input.Icon,
		IsActive:     input.IsActive == nil || *input.IsActive,
		DisplayOrder: input.DisplayOrder,
	}
	if err := s.db.WithContext(ctx).Create(suite).Error; err != nil {
		return nil, err
	}
	s.publishChange(ctx)
	return suite, nil
}

func (s *Service) UpdateSuite(ctx context.Context, id uuid.UUID, input SuiteInput) (*models.Suite, error) {
	suite, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Key != "" && input.Key != suite.Key {
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.Suite{}).
			Where("key = ? AND id <> ?", input.Key, id).Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, ErrSuiteKeyTaken
		}
		suite.Key = input.Key
	}
	if input.Name != nil {
		suite.Name = input.Name
	}
	if input.Description != nil {
		suite.Description = input.Description
	}
	if input.Icon != "" {
		suite.Icon = input.Icon
	}
	if input.IsActive != nil {
		suite.IsActive = *input.IsActive
	}
	suite.DisplayOrder = input.DisplayOrder

	if err := s.db.WithContext(ctx).Save(suite).Error; err != nil {
		return nil, err
	}
	s.publishChange(ctx)
	return suite, nil
}

func (s *Service) DeleteSuite(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Delete(&models.Suite{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSuiteNotFound
	}
	s.publishChange(ctx)
	return nil
}

// FeatureInput carries the writable feature fields.
type FeatureInput struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

func (s *Service) CreateFeature(ctx context.Context, suiteID uuid.UUID, input FeatureInput) (*models.Feature, error) {
	if _, err := s.Get(ctx, suiteID); err != nil {
		return nil, err
	}
	feature := &models.Feature{SuiteID: suiteID, Key: input.Key, Name: input.Name}
	if err := s.db.WithContext(ctx).Create(feature).Error; err != nil {
		return nil, err
	}
	s.publishChange(ctx)
	return feature, nil
}

func (s *Service) DeleteFeature(ctx context.Context, featureID uuid.UUID) error {
	result := s.db.WithContext(ctx).Delete(&models.Feature{}, featureID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrFeatureNotFound
	}
	s.publishChange(ctx)
	return nil
}

// publishChange fans the notification out after a successful write. A failed
// publish is not a failed mutation: peers catch up on their next restart.
func (s *Service) publishChange(ctx context.Context) {
	if s.redis == nil {
		return
	}
	s.redis.Publish(ctx, Channel, "changed")
}
