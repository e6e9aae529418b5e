package models

import "github.com/google/uuid"

type Plan struct {
	Base
	Name             string        `gorm:"uniqueIndex;not null" json:"name"`
	ShortDescription LocalizedText `gorm:"type:jsonb" json:"short_description"`
	LongDescription  LocalizedText `gorm:"type:jsonb" json:"long_description"`

	// Prices are monthly/yearly amounts with optional percentage discounts.
	PriceMonthly       float64 `gorm:"default:0" json:"price_monthly"`
	PriceYearly        float64 `gorm:"default:0" json:"price_yearly"`
	DiscountMonthlyPct float64 `gorm:"default:0" json:"discount_monthly_pct"`
	DiscountYearlyPct  float64 `gorm:"default:0" json:"discount_yearly_pct"`

	IsActive     bool `gorm:"default:true" json:"is_active"`
	DisplayOrder int  `gorm:"default:0" json:"display_order"`
	Recommended  bool `gorm:"default:false" json:"recommended"`

	// Relationships
	Permissions []PlanPermission `gorm:"foreignKey:PlanID" json:"-"`
	Users       []User           `gorm:"foreignKey:PlanID" json:"-"`
}

func (Plan) TableName() string {
	return "plans"
}

// PlanPermission grants one feature to one plan. A plan's effective
// capabilities are exactly the union of its PlanPermission rows.
type PlanPermission struct {
	PlanID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"plan_id"`
	FeatureID uuid.UUID `gorm:"type:uuid;primaryKey" json:"feature_id"`

	Plan    *Plan    `gorm:"foreignKey:PlanID" json:"-"`
	Feature *Feature `gorm:"foreignKey:FeatureID" json:"-"`
}

func (PlanPermission) TableName() string {
	return "plan_permissions"
}
