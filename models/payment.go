package models

import (
	"time"

	"gorm.io/datatypes"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentSuccess PaymentStatus = "SUCCESS"
	PaymentFailed  PaymentStatus = "FAILED"
)

type Payment struct {
	Model

	BookingID     string        `gorm:"type:varchar(36);index;not null" json:"bookingId"`
	UserID        string        `gorm:"type:varchar(36);index;not null" json:"userId"`
	AmountIdr     int64         `gorm:"not null" json:"amountIdr"`
	PaymentStatus PaymentStatus `gorm:"type:varchar(16);index;not null" json:"paymentStatus"`
	PaymentMethod string        `gorm:"size:64;not null" json:"paymentMethod"`
	PaymentType   *string       `gorm:"size:64" json:"paymentType,omitempty"`
	// ProviderTxID is the gateway transaction id used to correlate notifications.
	ProviderTxID    *string        `gorm:"size:100;uniqueIndex" json:"providerTxId,omitempty"`
	RequestedAt     time.Time      `gorm:"index;not null" json:"requestedAt"`
	PaidAt          *time.Time     `json:"paidAt,omitempty"`
	FailedAt        *time.Time     `json:"failedAt,omitempty"`
	RawNotification datatypes.JSON `json:"-"`
}
