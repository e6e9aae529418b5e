package models

import "github.com/google/uuid"

type LawsuitStatus string

const (
	LawsuitProspect LawsuitStatus = "prospect"
	LawsuitActive   LawsuitStatus = "active"
	LawsuitWaiting  LawsuitStatus = "waiting"
	LawsuitDone     LawsuitStatus = "done"
	LawsuitArchived LawsuitStatus = "archived"
)

// LawsuitStatuses is the fixed board column order.
var LawsuitStatuses = []LawsuitStatus{
	LawsuitProspect,
	LawsuitActive,
	LawsuitWaiting,
	LawsuitDone,
	LawsuitArchived,
}

func (s LawsuitStatus) Valid() bool {
	for _, known := range LawsuitStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Lawsuit is a tenant-scoped case record. Cases are archived, never
// hard-deleted.
type Lawsuit struct {
	Base
	OwnerID    uuid.UUID     `gorm:"type:uuid;index;not null" json:"owner_id"`
	ClientName string        `gorm:"not null" json:"client_name"`
	CaseNumber string        `json:"case_number"`
	Status     LawsuitStatus `gorm:"default:'prospect';index" json:"status"`

	// Value persists as 0 when omitted, never null.
	Value float64 `gorm:"not null;default:0" json:"value"`

	Owner *User `gorm:"foreignKey:OwnerID" json:"-"`
}

func (Lawsuit) TableName() string {
	return "lawsuits"
}
