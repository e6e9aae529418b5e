package models

import "github.com/google/uuid"

type Role string

const (
	RoleOwner    Role = "owner"
	RoleAdmin    Role = "admin"
	RoleOperator Role = "operator"
)

// DefaultRole is applied when neither the stored profile nor the auth
// provider supplies one.
const DefaultRole = RoleOperator

func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleOperator:
		return true
	}
	return false
}

type User struct {
	Base
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	Name         string `json:"name"`
	Username     string `gorm:"uniqueIndex" json:"username"`
	Role         Role   `gorm:"default:'operator'" json:"role"`
	IsActive     bool   `gorm:"default:true" json:"is_active"`
	AvatarURL    string `json:"avatar_url,omitempty"`

	// ResetRequired forces the password-reset flow on next login.
	ResetRequired bool `gorm:"default:false" json:"reset_required"`

	// Operator accounts link to the parent account they inherit from and
	// never hold a plan of their own.
	ParentUserID *uuid.UUID `gorm:"type:uuid;index" json:"parent_user_id,omitempty"`
	PlanID       *uuid.UUID `gorm:"type:uuid;index" json:"plan_id,omitempty"`

	// Relationships
	Parent      *User            `gorm:"foreignKey:ParentUserID" json:"-"`
	Plan        *Plan            `gorm:"foreignKey:PlanID" json:"plan,omitempty"`
	Preferences *UserPreferences `gorm:"foreignKey:UserID" json:"preferences,omitempty"`
	Operators   []User           `gorm:"foreignKey:ParentUserID" json:"-"`
}

func (User) TableName() string {
	return "users"
}
