// Package billing manages the plan catalog, the plan→feature grant rows the
// permission resolver reads, and user subscriptions.
package billing

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/veritum/veritum-pro/internal/database/models"
	"gorm.io/gorm"
)

var (
	ErrPlanNotFound    = errors.New("plan not found")
	ErrPlanNameTaken   = errors.New("plan name already in use")
	ErrFeatureNotFound = errors.New("feature not found")
)

type PlanService struct {
	db *gorm.DB
}

func NewPlanService(db *gorm.DB) *PlanService {
	return &PlanService{db: db}
}

// ListActive returns the public pricing-page view: active plans in display
// order.
func (s *PlanService) ListActive(ctx context.Context) ([]models.Plan, error) {
	var plans []models.Plan
	err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("display_order, created_at").
		Find(&plans).Error
	return plans, err
}

// ListAll is the admin view, inactive plans included.
func (s *PlanService) ListAll(ctx context.Context) ([]models.Plan, error) {
	var plans []models.Plan
	err := s.db.WithContext(ctx).Order("display_order, created_at").Find(&plans).Error
	return plans, err
}

func (s *PlanService) Get(ctx context.Context, id uuid.UUID) (*models.Plan, error) {
	var plan models.Plan
	err := s.db.WithContext(ctx).First(&plan, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPlanNotFound
	}
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// PlanInput carries the writable plan fields.
type PlanInput struct {
	Name               string               `json:"name"`
	ShortDescription   models.LocalizedText `json:"short_description"`
	LongDescription    models.LocalizedText `json:"long_description"`
	PriceMonthly       float64              `json:"price_monthly"`
	PriceYearly        float64              `json:"price_yearly"`
	DiscountMonthlyPct float64              `json:"discount_monthly_pct"`
	DiscountYearlyPct  float64              `json:"discount_yearly_pct"`
	IsActive           *bool                `json:"is_active"`
	DisplayOrder       int                  `json:"display_order"`
	Recommended        bool                 `json:"recommended"`
}

// Validate returns field-level problems, empty when the input is usable.
func (in PlanInput) Validate() map[string]string {
	problems := make(map[string]string)
	if in.Name == "" {
		problems["name"] = "name is required"
	}
	if in.PriceMonthly < 0 || in.PriceYearly < 0 {
		problems["price"] = "prices must not be negative"
	}
	if in.DiscountMonthlyPct < 0 || in.DiscountMonthlyPct > 100 ||
		in.DiscountYearlyPct < 0 || in.DiscountYearlyPct > 100 {
		problems["discount"] = "discounts must be between 0 and 100"
	}
	return problems
}

func (s *PlanService) Create(ctx context.Context, input PlanInput) (*models.Plan, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Plan{}).
		Where("name = ?", input.Name).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrPlanNameTaken
	}

	plan := &models.Plan{
		Name:               input.Name,
		ShortDescription:   input.ShortDescription,
		LongDescription:    input.LongDescription,
		PriceMonthly:       input.PriceMonthly,
		PriceYearly:        input.PriceYearly,
		DiscountMonthlyPct: input.DiscountMonthlyPct,
		DiscountYearlyPct:  input.DiscountYearlyPct,
		IsActive:           input.IsActive == nil || *input.IsActive,
		DisplayOrder:       input.DisplayOrder,
		Recommended:        input.Recommended,
	}
	if err := s.db.WithContext(ctx).Create(plan).Error; err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *PlanService) Update(ctx context.Context, id uuid.UUID, input PlanInput) (*models.Plan, error) {
	plan, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != "" && input.Name != plan.Name {
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.Plan{}).
			Where("name = ? AND id <> ?", input.Name, id).Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, ErrPlanNameTaken
		}
		plan.Name = input.Name
	}
	if input.ShortDescription != nil {
		plan.ShortDescription = input.ShortDescription
	}
	if input.LongDescription != nil {
		plan.LongDescription = input.LongDescription
	}
	plan.PriceMonthly = input.PriceMonthly
	plan.PriceYearly = input.PriceYearly
	plan.DiscountMonthlyPct = input.DiscountMonthlyPct
	plan.DiscountYearlyPct = input.DiscountYearlyPct
	if input.IsActive != nil {
		plan.IsActive = *input.IsActive
	}
	plan.DisplayOrder = input.DisplayOrder
	plan.Recommended = input.Recommended

	if err := s.db.WithContext(ctx).Save(plan).Error; err != nil {
		return nil, err
	}
	return plan, nil
}

// Delete soft-deletes a plan. Users pointing at it keep the reference; the
// permission resolver simply finds no grant rows.
func (s *PlanService) Delete(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Delete(&models.Plan{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPlanNotFound
	}
	return nil
}

// ReplaceGrants swaps the plan's full grant set in one transaction: the old
// rows go, the new set lands, or neither.
func (s *PlanService) ReplaceGrants(ctx context.Context, planID uuid.UUID, featureIDs []uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var plan models.Plan
		if err := tx.First(&plan, planID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPlanNotFound
			}
			return err
		}

		if len(featureIDs) > 0 {
			var count int64
			if err := tx.Model(&models.Feature{}).
				Where("id IN ?", featureIDs).Count(&count).Error; err != nil {
				return err
			}
			if count != int64(len(featureIDs)) {
				return ErrFeatureNotFound
			}
		}

		if err := tx.Where("plan_id = ?", planID).
			Delete(&models.PlanPermission{}).Error; err != nil {
			return err
		}

		for _, featureID := range featureIDs {
			grant := models.PlanPermission{PlanID: planID, FeatureID: featureID}
			if err := tx.Create(&grant).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
