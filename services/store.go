package services

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"booking-backend/models"
)

var validate = validator.New()

// OverlapQuery selects bookings that hold RoomID on any night of [CheckIn, CheckOut).
type OverlapQuery struct {
	RoomID           string
	CheckIn          time.Time
	CheckOut         time.Time
	ExcludeBookingID string
}

// BookingStore is the persistence the booking core runs on. Lookups return
// gorm.ErrRecordNotFound for missing or soft-deleted rows.
type BookingStore interface {
	// Transaction runs fn against a store bound to a single database transaction.
	Transaction(ctx context.Context, fn func(tx BookingStore) error) error

	FindUser(ctx context.Context, id string) (*models.User, error)
	FindProperty(ctx context.Context, id string) (*models.Property, error)
	FindRoom(ctx context.Context, id string) (*models.Room, error)
	// LockRoom loads the room with a row lock held until the transaction ends.
	LockRoom(ctx context.Context, id string) (*models.Room, error)
	ListPropertyRooms(ctx context.Context, propertyID string, minGuests int) ([]models.Room, error)
	// ActivePeakRates returns active rates of the room intersecting [from, to], oldest first.
	ActivePeakRates(ctx context.Context, roomID string, from, to time.Time) ([]models.PeakSeasonRate, error)
	HasOverlappingBooking(ctx context.Context, q OverlapQuery) (bool, error)
	OccupiedRoomIDs(ctx context.Context, roomIDs []string, checkIn, checkOut time.Time) (map[string]bool, error)

	CreateBooking(ctx context.Context, b *models.Booking) error
	// FindBooking loads the booking with user, property location, room, nightly rates and payments (newest first).
	FindBooking(ctx context.Context, id string) (*models.Booking, error)
	LockBooking(ctx context.Context, id string) (*models.Booking, error)
	ListUserBookings(ctx context.Context, userID string) ([]models.Booking, error)
	SaveBooking(ctx context.Context, b *models.Booking) error
	// LockOverdueBookings returns bookings still awaiting payment whose due time is before now.
	LockOverdueBookings(ctx context.Context, now time.Time) ([]models.Booking, error)

	FindPaymentByProviderTxID(ctx context.Context, txID string) (*models.Payment, error)
	LatestPayment(ctx context.Context, bookingID string) (*models.Payment, error)
	CreatePayment(ctx context.Context, p *models.Payment) error
	SavePayment(ctx context.Context, p *models.Payment) error
	HasSuccessfulPayment(ctx context.Context, bookingID, exceptPaymentID string) (bool, error)
	FailPendingPayments(ctx context.Context, bookingID string, at time.Time) error

	CreateNotification(ctx context.Context, n *models.EmailNotification) error
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID string
	Role   models.Role
}

func (a Actor) IsAdmin() bool { return a.Role == models.RoleAdmin }
