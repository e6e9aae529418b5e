package models

import "github.com/google/uuid"

// Suite is a product module descriptor. It drives the landing page and the
// sidebar; entitlement is always computed through plan permissions, never
// from the suite row itself.
type Suite struct {
	Base
	Key          string        `gorm:"uniqueIndex;not null" json:"key"`
	Name         LocalizedText `gorm:"type:jsonb" json:"name"`
	Description  LocalizedText `gorm:"type:jsonb" json:"description"`
	Icon         string        `json:"icon,omitempty"`
	IsActive     bool          `gorm:"default:true" json:"is_active"`
	DisplayOrder int           `gorm:"default:0" json:"display_order"`

	Features []Feature `gorm:"foreignKey:SuiteID" json:"features,omitempty"`
}

func (Suite) TableName() string {
	return "suites"
}

// Feature is a named capability within a suite.
type Feature struct {
	Base
	SuiteID uuid.UUID `gorm:"type:uuid;index;not null" json:"suite_id"`
	Key     string    `gorm:"index;not null" json:"key"`
	Name    string    `json:"name"`

	Suite *Suite `gorm:"foreignKey:SuiteID" json:"-"`
}

func (Feature) TableName() string {
	return "features"
}
