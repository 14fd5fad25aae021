package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"booking-backend/models"
)

const maxPercentageAdjustment = 1000

type PeakSeasonRateInput struct {
	StartDate       time.Time
	EndDate         time.Time
	AdjustmentType  models.AdjustmentType
	AdjustmentValue float64
	Note            *string
	IsActive        *bool
}

// PeakSeasonRateUpdate holds the fields to change; nil means keep.
type PeakSeasonRateUpdate struct {
	StartDate       *time.Time
	EndDate         *time.Time
	AdjustmentType  *models.AdjustmentType
	AdjustmentValue *float64
	Note            *string
	IsActive        *bool
}

// ValidatePeakSeasonRate enforces the rate invariants shared by create and update.
func ValidatePeakSeasonRate(r models.PeakSeasonRate) error {
	if r.StartDate.IsZero() || r.EndDate.IsZero() {
		return validationError("startDate and endDate are required")
	}
	if r.EndDate.Before(r.StartDate) {
		return validationError("endDate must be on or after startDate")
	}
	switch r.AdjustmentType {
	case models.AdjustmentPercentage:
		if r.AdjustmentValue < 0 || r.AdjustmentValue > maxPercentageAdjustment {
			return validationError("percentage adjustment must be between 0 and %d", maxPercentageAdjustment)
		}
	case models.AdjustmentFixed:
		if r.AdjustmentValue < 0 {
			return validationError("fixed adjustment must not be negative")
		}
	default:
		return validationError("adjustmentType must be FIXED or PERCENTAGE")
	}
	if r.Note != nil && len(*r.Note) > 200 {
		return validationError("note must be at most 200 characters")
	}
	return nil
}

func (in PeakSeasonRateInput) toModel(roomID string) models.PeakSeasonRate {
	r := models.PeakSeasonRate{
		RoomID:          roomID,
		StartDate:       in.StartDate,
		EndDate:         in.EndDate,
		AdjustmentType:  models.AdjustmentType(strings.ToUpper(string(in.AdjustmentType))),
		AdjustmentValue: in.AdjustmentValue,
		Note:            in.Note,
		IsActive:        true,
	}
	if in.IsActive != nil {
		r.IsActive = *in.IsActive
	}
	return r
}

// ApplyTo merges the update into r and re-validates the merged rate.
func (u PeakSeasonRateUpdate) ApplyTo(r *models.PeakSeasonRate) error {
	merged := *r
	if u.StartDate != nil {
		merged.StartDate = *u.StartDate
	}
	if u.EndDate != nil {
		merged.EndDate = *u.EndDate
	}
	if u.AdjustmentType != nil {
		merged.AdjustmentType = models.AdjustmentType(strings.ToUpper(string(*u.AdjustmentType)))
	}
	if u.AdjustmentValue != nil {
		merged.AdjustmentValue = *u.AdjustmentValue
	}
	if u.Note != nil {
		merged.Note = u.Note
	}
	if u.IsActive != nil {
		merged.IsActive = *u.IsActive
	}
	if err := ValidatePeakSeasonRate(merged); err != nil {
		return err
	}
	*r = merged
	return nil
}

type PeakSeasonService struct {
	DB *gorm.DB
}

func NewPeakSeasonService(db *gorm.DB) *PeakSeasonService {
	return &PeakSeasonService{DB: db}
}

func (s *PeakSeasonService) List(ctx context.Context, roomID string, includeInactive bool) ([]models.PeakSeasonRate, error) {
	if err := s.requireRoom(ctx, s.DB, roomID); err != nil {
		return nil, err
	}
	q := s.DB.WithContext(ctx).Where("room_id = ?", roomID)
	if !includeInactive {
		q = q.Where("is_active = ?", true)
	}
	var rates []models.PeakSeasonRate
	if err := q.Order("start_date ASC").Find(&rates).Error; err != nil {
		return nil, fmt.Errorf("failed to list peak season rates: %w", err)
	}
	return rates, nil
}

func (s *PeakSeasonService) Get(ctx context.Context, id string) (*models.PeakSeasonRate, error) {
	var r models.PeakSeasonRate
	if err := s.DB.WithContext(ctx).First(&r, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "peak season rate")
	}
	return &r, nil
}

func (s *PeakSeasonService) Create(ctx context.Context, roomID string, in PeakSeasonRateInput) (*models.PeakSeasonRate, error) {
	rates, err := s.BulkCreate(ctx, roomID, []PeakSeasonRateInput{in})
	if err != nil {
		return nil, err
	}
	return &rates[0], nil
}

// BulkCreate validates every item before writing any of them.
func (s *PeakSeasonService) BulkCreate(ctx context.Context, roomID string, items []PeakSeasonRateInput) ([]models.PeakSeasonRate, error) {
	if len(items) == 0 {
		return nil, validationError("rates must contain at least one item")
	}
	rates := make([]models.PeakSeasonRate, 0, len(items))
	for i, in := range items {
		r := in.toModel(roomID)
		if err := ValidatePeakSeasonRate(r); err != nil {
			if len(items) > 1 {
				return nil, validationError("rates[%d]: %s", i, err.Error())
			}
			return nil, err
		}
		rates = append(rates, r)
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.requireRoom(ctx, tx, roomID); err != nil {
			return err
		}
		return tx.Create(&rates).Error
	})
	if err != nil {
		return nil, persistError(err, "peak season rate")
	}
	return rates, nil
}

func (s *PeakSeasonService) Update(ctx context.Context, id string, u PeakSeasonRateUpdate) (*models.PeakSeasonRate, error) {
	var r models.PeakSeasonRate
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&r, "id = ?", id).Error; err != nil {
			return notFoundOr(err, "peak season rate")
		}
		if err := u.ApplyTo(&r); err != nil {
			return err
		}
		return tx.Save(&r).Error
	})
	if err != nil {
		return nil, persistError(err, "peak season rate")
	}
	return &r, nil
}

func (s *PeakSeasonService) Delete(ctx context.Context, id string) error {
	res := s.DB.WithContext(ctx).Delete(&models.PeakSeasonRate{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete peak season rate: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound("peak season rate")
	}
	return nil
}

func (s *PeakSeasonService) requireRoom(ctx context.Context, db *gorm.DB, roomID string) error {
	var n int64
	if err := db.WithContext(ctx).Model(&models.Room{}).Where("id = ?", roomID).Count(&n).Error; err != nil {
		return fmt.Errorf("failed to load room: %w", err)
	}
	if n == 0 {
		return notFound("room")
	}
	return nil
}
