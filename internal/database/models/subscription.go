package models

import "github.com/google/uuid"

type BillingCycle string

const (
	CycleMonthly BillingCycle = "monthly"
	CycleYearly  BillingCycle = "yearly"
)

type SubscriptionStatus string

const (
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionExpired  SubscriptionStatus = "expired"
	SubscriptionCanceled SubscriptionStatus = "canceled"
)

type UserSubscription struct {
	Base
	UserID    uuid.UUID          `gorm:"type:uuid;index;not null" json:"user_id"`
	PlanID    uuid.UUID          `gorm:"type:uuid;index;not null" json:"plan_id"`
	Cycle     BillingCycle       `gorm:"not null" json:"cycle"`
	Status    SubscriptionStatus `gorm:"default:'active';index" json:"status"`
	StartedAt int64              `json:"started_at"`
	ExpiresAt int64              `json:"expires_at"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
	Plan *Plan `gorm:"foreignKey:PlanID" json:"-"`
}

func (UserSubscription) TableName() string {
	return "user_subscriptions"
}
