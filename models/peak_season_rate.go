package models

import "time"

type AdjustmentType string

const (
	AdjustmentFixed      AdjustmentType = "FIXED"
	AdjustmentPercentage AdjustmentType = "PERCENTAGE"
)

// PeakSeasonRate overrides a room's nightly price for every date in
// [StartDate, EndDate], both ends inclusive.
type PeakSeasonRate struct {
	Model

	RoomID          string         `gorm:"type:varchar(36);index;not null" json:"roomId"`
	StartDate       time.Time      `gorm:"type:date;not null" json:"startDate"`
	EndDate         time.Time      `gorm:"type:date;not null" json:"endDate"`
	AdjustmentType  AdjustmentType `gorm:"type:varchar(16);not null" json:"adjustmentType"`
	AdjustmentValue float64        `gorm:"type:decimal(12,2);not null" json:"adjustmentValue"`
	Note            *string        `gorm:"size:200" json:"note,omitempty"`
	IsActive        bool           `gorm:"not null" json:"isActive"`
}

// Covers reports whether day falls inside the rate's inclusive range.
func (r PeakSeasonRate) Covers(day time.Time) bool {
	return !day.Before(r.StartDate) && !day.After(r.EndDate)
}
