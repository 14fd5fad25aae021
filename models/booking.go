package models

import (
	"time"
)

type BookingStatus string

const (
	BookingWaitingPayment      BookingStatus = "WAITING_PAYMENT"
	BookingWaitingConfirmation BookingStatus = "WAITING_CONFIRMATION"
	BookingConfirmed           BookingStatus = "CONFIRMED"
	BookingCanceled            BookingStatus = "CANCELED"
	BookingExpired             BookingStatus = "EXPIRED"
	BookingCheckedIn           BookingStatus = "CHECKED_IN"
	BookingCheckedOut          BookingStatus = "CHECKED_OUT"
)

// ReleasedStatuses no longer hold the room.
var ReleasedStatuses = []BookingStatus{BookingCanceled, BookingExpired}

// ActiveStatuses block catalog deletion of the booked room.
var ActiveStatuses = []BookingStatus{BookingWaitingPayment, BookingWaitingConfirmation, BookingConfirmed}

// HoldsRoom is true for every status except CANCELED and EXPIRED.
func (s BookingStatus) HoldsRoom() bool {
	return s != BookingCanceled && s != BookingExpired
}

// Cancelable reports whether a user may still cancel a booking in this status.
func (s BookingStatus) Cancelable() bool {
	switch s {
	case BookingCanceled, BookingCheckedIn, BookingCheckedOut:
		return false
	}
	return true
}

// Settled bookings are not moved by pending or failed payment notifications.
func (s BookingStatus) Settled() bool {
	switch s {
	case BookingCanceled, BookingExpired, BookingCheckedIn, BookingCheckedOut:
		return true
	}
	return false
}

func (s BookingStatus) AwaitingPayment() bool {
	return s == BookingWaitingPayment || s == BookingWaitingConfirmation
}

type PaymentMethod string

const (
	PaymentMethodGateway      PaymentMethod = "PAYMENT_GATEWAY"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentMethodGateway || m == PaymentMethodBankTransfer
}

// InitialStatus is the status a freshly created booking starts in.
func (m PaymentMethod) InitialStatus() BookingStatus {
	if m == PaymentMethodGateway {
		return BookingWaitingPayment
	}
	return BookingWaitingConfirmation
}

type Booking struct {
	Model

	UserID       string    `gorm:"type:varchar(36);index;not null" json:"userId"`
	PropertyID   string    `gorm:"type:varchar(36);index;not null" json:"propertyId"`
	RoomID       *string   `gorm:"type:varchar(36);index" json:"roomId"`
	CheckInDate  time.Time `gorm:"type:date;index;not null" json:"checkInDate"`
	CheckOutDate time.Time `gorm:"type:date;index;not null" json:"checkOutDate"`
	Nights       int       `gorm:"not null" json:"nights"`
	GuestsCount  int       `gorm:"not null" json:"guestsCount"`

	Status        BookingStatus `gorm:"type:varchar(32);index;not null" json:"status"`
	PaymentMethod PaymentMethod `gorm:"type:varchar(32);not null" json:"paymentMethod"`

	NightlySubtotalIdr int64 `gorm:"not null" json:"nightlySubtotalIdr"`
	CleaningFeeIdr     int64 `gorm:"not null" json:"cleaningFeeIdr"`
	ServiceFeeIdr      int64 `gorm:"not null" json:"serviceFeeIdr"`
	DiscountIdr        int64 `gorm:"not null" json:"discountIdr"`
	TotalPriceIdr      int64 `gorm:"not null" json:"totalPriceIdr"`

	PaymentDueAt *time.Time `json:"paymentDueAt"`
	CancelledAt  *time.Time `json:"cancelledAt"`
	CancelReason *string    `gorm:"size:255" json:"cancelReason"`

	User         *User         `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Property     *Property     `gorm:"foreignKey:PropertyID" json:"property,omitempty"`
	Room         *Room         `gorm:"foreignKey:RoomID;constraint:OnDelete:SET NULL" json:"room,omitempty"`
	NightlyRates []NightlyRate `gorm:"foreignKey:BookingID;constraint:OnDelete:CASCADE" json:"nightlyRates,omitempty"`
	Payments     []Payment     `gorm:"foreignKey:BookingID" json:"payments,omitempty"`
}

// RangesOverlap compares two half-open date ranges [aStart, aEnd) and [bStart, bEnd).
// Back-to-back ranges (aEnd == bStart) do not overlap.
func RangesOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// Occupies reports whether the booking holds its room for any night of [checkIn, checkOut).
func (b Booking) Occupies(checkIn, checkOut time.Time) bool {
	return b.Status.HoldsRoom() && RangesOverlap(b.CheckInDate, b.CheckOutDate, checkIn, checkOut)
}
