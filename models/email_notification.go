package models

import (
	"time"

	"gorm.io/datatypes"
)

const NotificationBookingConfirmed = "BOOKING_CONFIRMED"

type NotificationStatus string

const (
	NotificationPending NotificationStatus = "PENDING"
	NotificationSent    NotificationStatus = "SENT"
	NotificationFailed  NotificationStatus = "FAILED"
)

// EmailNotification records an outgoing transactional email and its delivery outcome.
type EmailNotification struct {
	Model

	BookingID string             `gorm:"type:varchar(36);index;not null" json:"bookingId"`
	UserID    string             `gorm:"type:varchar(36);index;not null" json:"userId"`
	Type      string             `gorm:"size:64;not null" json:"type"`
	ToEmail   string             `gorm:"size:191;not null" json:"toEmail"`
	Payload   datatypes.JSON     `json:"payload"`
	Status    NotificationStatus `gorm:"type:varchar(16);not null" json:"status"`
	Error     *string            `gorm:"type:text" json:"error,omitempty"`
	SentAt    *time.Time         `json:"sentAt,omitempty"`
}
