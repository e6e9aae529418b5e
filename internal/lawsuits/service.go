// Package lawsuits owns the case records behind the kanban board: creation,
// listing, the status column moves, and archival.
package lawsuits

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/veritum/veritum-pro/internal/database/models"
	"gorm.io/gorm"
)

var (
	ErrLawsuitNotFound = errors.New("lawsuit not found")
	ErrInvalidStatus   = errors.New("invalid lawsuit status")
	ErrMissingClient   = errors.New("client name is required")
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// CreateInput carries the writable fields. Value is a pointer so an omitted
// value is distinguishable from an explicit 0; both persist as 0.
type CreateInput struct {
	ClientName string   `json:"client_name"`
	CaseNumber string   `json:"case_number"`
	Status     string   `json:"status"`
	Value      *float64 `json:"value"`
}

func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, input CreateInput) (*models.Lawsuit, error) {
	if input.ClientName == "" {
		return nil, ErrMissingClient
	}

	status := models.LawsuitProspect
	if input.Status != "" {
		status = models.LawsuitStatus(input.Status)
		if !status.Valid() {
			return nil, ErrInvalidStatus
		}
	}

	var value float64
	if input.Value != nil {
		value = *input.Value
	}

	lawsuit := &models.Lawsuit{
		OwnerID:    ownerID,
		ClientName: input.ClientName,
		CaseNumber: input.CaseNumber,
		Status:     status,
		Value:      value,
	}
	if err := s.db.WithContext(ctx).Create(lawsuit).Error; err != nil {
		return nil, err
	}
	return lawsuit, nil
}

// List returns the owner's cases, optionally narrowed to one status column,
// newest first.
func (s *Service) List(ctx context.Context, ownerID uuid.UUID, status string) ([]models.Lawsuit, error) {
	query := s.db.WithContext(ctx).Where("owner_id = ?", ownerID)
	if status != "" {
		st := models.LawsuitStatus(status)
		if !st.Valid() {
			return nil, ErrInvalidStatus
		}
		query = query.Where("status = ?", st)
	}

	var lawsuits []models.Lawsuit
	if err := query.Order("created_at DESC").Find(&lawsuits).Error; err != nil {
		return nil, err
	}
	return lawsuits, nil
}

func (s *Service) Get(ctx context.Context, ownerID, id uuid.UUID) (*models.Lawsuit, error) {
	var lawsuit models.Lawsuit
	err := s.db.WithContext(ctx).Where("owner_id = ?", ownerID).First(&lawsuit, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrLawsuitNotFound
	}
	if err != nil {
		return nil, err
	}
	return &lawsuit, nil
}

// UpdateInput carries the editable case fields; nil means unchanged.
type UpdateInput struct {
	ClientName *string  `json:"client_name"`
	CaseNumber *string  `json:"case_number"`
	Value      *float64 `json:"value"`
}

func (s *Service) Update(ctx context.Context, ownerID, id uuid.UUID, input UpdateInput) (*models.Lawsuit, error) {
	lawsuit, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if input.ClientName != nil {
		if *input.ClientName == "" {
			return nil, ErrMissingClient
		}
		lawsuit.ClientName = *input.ClientName
	}
	if input.CaseNumber != nil {
		lawsuit.CaseNumber = *input.CaseNumber
	}
	if input.Value != nil {
		lawsuit.Value = *input.Value
	}

	if err := s.db.WithContext(ctx).Save(lawsuit).Error; err != nil {
		return nil, err
	}
	return lawsuit, nil
}

// UpdateStatus moves a case between board columns and returns the previous
// status so a client that applied the move optimistically can revert it on
// failure.
func (s *Service) UpdateStatus(ctx context.Context, ownerID, id uuid.UUID, status string) (*models.Lawsuit, models.LawsuitStatus, error) {
	next := models.LawsuitStatus(status)
	if !next.Valid() {
		return nil, "", ErrInvalidStatus
	}

	lawsuit, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, "", err
	}

	previous := lawsuit.Status
	lawsuit.Status = next
	if err := s.db.WithContext(ctx).Model(lawsuit).Update("status", next).Error; err != nil {
		return nil, "", err
	}
	return lawsuit, previous, nil
}

// Archive moves a case to the archived column. Archiving is the terminal
// operation; records are never hard-deleted.
func (s *Service) Archive(ctx context.Context, ownerID, id uuid.UUID) (*models.Lawsuit, error) {
	lawsuit, _, err := s.UpdateStatus(ctx, ownerID, id, string(models.LawsuitArchived))
	return lawsuit, err
}
