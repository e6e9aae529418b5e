package billing

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/veritum/veritum-pro/internal/database/models"
	"gorm.io/gorm"
)

var (
	ErrInvalidCycle         = errors.New("invalid billing cycle")
	ErrSubscriberNotFound   = errors.New("subscriber not found")
	ErrNoActiveSubscription = errors.New("no active subscription")
)

type SubscriptionService struct {
	db *gorm.DB
}

func NewSubscriptionService(db *gorm.DB) *SubscriptionService {
	return &SubscriptionService{db: db}
}

func cycleDuration(cycle models.BillingCycle) (time.Duration, error) {
	switch cycle {
	case models.CycleMonthly:
		return 30 * 24 * time.Hour, nil
	case models.CycleYearly:
		return 365 * 24 * time.Hour, nil
	default:
		return 0, ErrInvalidCycle
	}
}

// Subscribe puts the user on a plan: any previous active subscription is
// canceled, the new row is created, and user.PlanID is set — all in one
// transaction so entitlement and billing state never diverge.
func (s *SubscriptionService) Subscribe(ctx context.Context, userID, planID uuid.UUID, cycle models.BillingCycle) (*models.UserSubscription, error) {
	duration, err := cycleDuration(cycle)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	subscription := &models.UserSubscription{
		UserID:    userID,
		PlanID:    planID,
		Cycle:     cycle,
		Status:    models.SubscriptionActive,
		StartedAt: now.Unix(),
		ExpiresAt: now.Add(duration).Unix(),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSubscriberNotFound
			}
			return err
		}
		var plan models.Plan
		if err := tx.First(&plan, planID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPlanNotFound
			}
			return err
		}

		if err := tx.Model(&models.UserSubscription{}).
			Where("user_id = ? AND status = ?", userID, models.SubscriptionActive).
			Update("status", models.SubscriptionCanceled).Error; err != nil {
			return err
		}
		if err := tx.Create(subscription).Error; err != nil {
			return err
		}
		return tx.Model(&user).Update("plan_id", planID).Error
	})
	if err != nil {
		return nil, err
	}
	return subscription, nil
}

// Cancel marks the user's active subscription canceled and clears the plan.
func (s *SubscriptionService) Cancel(ctx context.Context, userID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.UserSubscription{}).
			Where("user_id = ? AND status = ?", userID, models.SubscriptionActive).
			Update("status", models.SubscriptionCanceled)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNoActiveSubscription
		}
		return tx.Model(&models.User{}).
			Where("id = ?", userID).
			Update("plan_id", nil).Error
	})
}

// Current returns the user's active subscription, if any.
func (s *SubscriptionService) Current(ctx context.Context, userID uuid.UUID) (*models.UserSubscription, error) {
	var subscription models.UserSubscription
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, models.SubscriptionActive).
		Order("created_at DESC").
		First(&subscription).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoActiveSubscription
	}
	if err != nil {
		return nil, err
	}
	return &subscription, nil
}

// SweepExpired marks every active subscription past its expiry as expired
// and clears the subscriber's plan. Returns the number of swept rows. Runs
// from the periodic billing task.
func (s *SubscriptionService) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	var swept int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var lapsed []models.UserSubscription
		if err := tx.Where("status = ? AND expires_at < ?",
			models.SubscriptionActive, now.Unix()).Find(&lapsed).Error; err != nil {
			return err
		}

		for _, subscription := range lapsed {
			if err := tx.Model(&subscription).
				Update("status", models.SubscriptionExpired).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.User{}).
				Where("id = ? AND plan_id = ?", subscription.UserID, subscription.PlanID).
				Update("plan_id", nil).Error; err != nil {
				return err
			}
		}
		swept = len(lapsed)
		return nil
	})
	return swept, err
}
