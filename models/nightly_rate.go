package models

import "time"

// NightlyRate is the price locked for one night of a booking at creation time.
type NightlyRate struct {
	Model

	BookingID string    `gorm:"type:varchar(36);index;not null" json:"bookingId"`
	Date      time.Time `gorm:"type:date;not null" json:"date"`
	PriceIdr  int64     `gorm:"not null" json:"priceIdr"`
}
