package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"booking-backend/gateway"
	"booking-backend/models"
	"booking-backend/utils"
)

const defaultCancelReason = "Canceled by user"

// CheckoutGateway opens hosted-checkout sessions and reports transaction status.
type CheckoutGateway interface {
	CreateCheckout(ctx context.Context, req gateway.CheckoutRequest) (*gateway.CheckoutSession, error)
	TransactionStatus(ctx context.Context, orderID string) (*gateway.Notification, error)
}

type BookingOptions struct {
	PaymentDueWindow time.Duration
	PercentageMode   PercentageMode
}

type BookingService struct {
	store     BookingStore
	gateway   CheckoutGateway
	notifier  Notifier
	logger    *slog.Logger
	dueWindow time.Duration
	mode      PercentageMode
	now       func() time.Time
}

func NewBookingService(store BookingStore, gw CheckoutGateway, notifier Notifier, logger *slog.Logger, opts BookingOptions) *BookingService {
	if opts.PaymentDueWindow <= 0 {
		opts.PaymentDueWindow = 24 * time.Hour
	}
	if !opts.PercentageMode.Valid() {
		opts.PercentageMode = PercentageSubstitute
	}
	return &BookingService{
		store:     store,
		gateway:   gw,
		notifier:  notifier,
		logger:    logger,
		dueWindow: opts.PaymentDueWindow,
		mode:      opts.PercentageMode,
		now:       time.Now,
	}
}

type CreateBookingInput struct {
	UserID        string               `validate:"required"`
	PropertyID    string               `validate:"required"`
	RoomID        string               `validate:"required"`
	CheckIn       time.Time            `validate:"required"`
	CheckOut      time.Time            `validate:"required"`
	Nights        int                  `validate:"gte=0"`
	GuestsCount   int                  `validate:"gte=1"`
	PaymentMethod models.PaymentMethod `validate:"required"`
}

// BookingResult carries the created booking plus the outcome of the optional checkout call.
type BookingResult struct {
	Booking       *models.Booking          `json:"booking"`
	Checkout      *gateway.CheckoutSession `json:"checkout,omitempty"`
	CheckoutError string                   `json:"checkoutError,omitempty"`
}

// Create validates and persists a booking with its nightly rates and a PENDING
// payment in one transaction. The room row stays locked from the availability
// check until the insert commits.
func (s *BookingService) Create(ctx context.Context, in CreateBookingInput) (*BookingResult, error) {
	if err := validate.Struct(in); err != nil {
		return nil, validationError("invalid booking request: %v", err)
	}
	if !in.PaymentMethod.Valid() {
		return nil, validationError("paymentMethod must be PAYMENT_GATEWAY or BANK_TRANSFER")
	}
	now := s.now()
	if err := checkStayDates(in.CheckIn, in.CheckOut, now); err != nil {
		return nil, err
	}
	nights := in.Nights
	if nights == 0 {
		nights = utils.NightsBetween(in.CheckIn, in.CheckOut)
	}

	var created *models.Booking
	var customer *models.User
	err := s.store.Transaction(ctx, func(tx BookingStore) error {
		user, err := tx.FindUser(ctx, in.UserID)
		if err != nil {
			return notFoundOr(err, "user")
		}
		if _, err := tx.FindProperty(ctx, in.PropertyID); err != nil {
			return notFoundOr(err, "property")
		}
		room, err := tx.LockRoom(ctx, in.RoomID)
		if err != nil {
			return notFoundOr(err, "room")
		}
		if room.PropertyID != in.PropertyID {
			return notFound("room in this property")
		}
		if in.GuestsCount > room.MaxGuests {
			return validationError("guestsCount %d exceeds room capacity of %d", in.GuestsCount, room.MaxGuests)
		}

		ok, err := roomAvailable(ctx, tx, OverlapQuery{RoomID: room.ID, CheckIn: in.CheckIn, CheckOut: in.CheckOut})
		if err != nil {
			return err
		}
		if !ok {
			return conflict("room is not available for the selected dates")
		}

		price, err := quote(ctx, tx, room, in.CheckIn, in.CheckOut, nights, s.mode)
		if err != nil {
			return err
		}

		dueAt := now.Add(s.dueWindow)
		roomID := room.ID
		b := &models.Booking{
			UserID:             user.ID,
			PropertyID:         in.PropertyID,
			RoomID:             &roomID,
			CheckInDate:        in.CheckIn,
			CheckOutDate:       in.CheckOut,
			Nights:             nights,
			GuestsCount:        in.GuestsCount,
			Status:             in.PaymentMethod.InitialStatus(),
			PaymentMethod:      in.PaymentMethod,
			NightlySubtotalIdr: price.NightlySubtotalIdr,
			CleaningFeeIdr:     price.CleaningFeeIdr,
			ServiceFeeIdr:      price.ServiceFeeIdr,
			DiscountIdr:        price.DiscountIdr,
			TotalPriceIdr:      price.TotalPriceIdr,
			PaymentDueAt:       &dueAt,
			Payments: []models.Payment{{
				UserID:        user.ID,
				AmountIdr:     price.TotalPriceIdr,
				PaymentStatus: models.PaymentPending,
				PaymentMethod: string(in.PaymentMethod),
				RequestedAt:   now,
			}},
		}
		for _, n := range price.NightlyRates {
			b.NightlyRates = append(b.NightlyRates, models.NightlyRate{Date: n.Date, PriceIdr: n.PriceIdr})
		}
		if err := tx.CreateBooking(ctx, b); err != nil {
			return fmt.Errorf("failed to create booking: %w", err)
		}
		created, customer = b, user
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &BookingResult{}
	if in.PaymentMethod == models.PaymentMethodGateway {
		sess, err := s.openCheckout(ctx, created, customer)
		if err != nil {
			s.logger.Warn("checkout session not created; booking kept", "booking_id", created.ID, "error", err)
			result.CheckoutError = err.Error()
		}
		result.Checkout = sess
	}

	detail, err := s.store.FindBooking(ctx, created.ID)
	if err != nil {
		return nil, notFoundOr(err, "booking")
	}
	result.Booking = detail
	return result, nil
}

func (s *BookingService) openCheckout(ctx context.Context, b *models.Booking, user *models.User) (*gateway.CheckoutSession, error) {
	if s.gateway == nil {
		return nil, upstream(nil, "payment gateway is not configured")
	}
	item := fmt.Sprintf("Stay %s, %d nights", b.CheckInDate.Format(utils.DateLayout), b.Nights)
	sess, err := s.gateway.CreateCheckout(ctx, gateway.CheckoutRequest{
		OrderID:       b.ID,
		AmountIdr:     b.TotalPriceIdr,
		CustomerName:  user.FullName,
		CustomerEmail: user.Email,
		ItemName:      item,
		ExpiryMinutes: int(s.dueWindow / time.Minute),
	})
	if err != nil {
		return nil, upstream(err, "failed to create checkout session")
	}
	return sess, nil
}

// Get returns the booking detail to its owner or an admin.
func (s *BookingService) Get(ctx context.Context, actor Actor, id string) (*models.Booking, error) {
	b, err := s.store.FindBooking(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "booking")
	}
	if b.UserID != actor.UserID && !actor.IsAdmin() {
		return nil, forbidden("you are not allowed to view this booking")
	}
	return b, nil
}

// ListForUser returns the user's bookings, newest first, each with its latest payment only.
func (s *BookingService) ListForUser(ctx context.Context, userID string) ([]models.Booking, error) {
	bookings, err := s.store.ListUserBookings(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

// Cancel lets the owner cancel any booking that is not canceled and whose stay has not started.
func (s *BookingService) Cancel(ctx context.Context, actor Actor, id, reason string) (*models.Booking, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = defaultCancelReason
	}
	if len(reason) > 255 {
		return nil, validationError("reason must be at most 255 characters")
	}

	err := s.store.Transaction(ctx, func(tx BookingStore) error {
		b, err := tx.LockBooking(ctx, id)
		if err != nil {
			return notFoundOr(err, "booking")
		}
		if b.UserID != actor.UserID {
			return forbidden("only the guest who made this booking can cancel it")
		}
		switch {
		case b.Status == models.BookingCanceled:
			return conflict("booking is already canceled")
		case !b.Status.Cancelable():
			return conflict("booking cannot be canceled once the stay has started")
		}

		now := s.now()
		b.Status = models.BookingCanceled
		b.CancelledAt = &now
		b.CancelReason = &reason
		return tx.SaveBooking(ctx, b)
	})
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, id)
}

// CreateCheckoutSession retries the hosted checkout for an unpaid gateway booking.
func (s *BookingService) CreateCheckoutSession(ctx context.Context, actor Actor, id string) (*gateway.CheckoutSession, error) {
	b, err := s.store.FindBooking(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "booking")
	}
	if b.UserID != actor.UserID {
		return nil, forbidden("you are not allowed to pay for this booking")
	}
	if b.PaymentMethod != models.PaymentMethodGateway {
		return nil, conflict("booking is paid by bank transfer")
	}
	if b.Status != models.BookingWaitingPayment {
		return nil, conflict("booking is %s and cannot be paid", b.Status)
	}
	user := b.User
	if user == nil {
		if user, err = s.store.FindUser(ctx, b.UserID); err != nil {
			return nil, notFoundOr(err, "user")
		}
	}
	return s.openCheckout(ctx, b, user)
}

// ExpireOverdue moves unpaid bookings past their payment deadline to EXPIRED.
func (s *BookingService) ExpireOverdue(ctx context.Context) (int, error) {
	now := s.now()
	expired := 0
	err := s.store.Transaction(ctx, func(tx BookingStore) error {
		overdue, err := tx.LockOverdueBookings(ctx, now)
		if err != nil {
			return fmt.Errorf("failed to load overdue bookings: %w", err)
		}
		for i := range overdue {
			b := &overdue[i]
			paid, err := tx.HasSuccessfulPayment(ctx, b.ID, "")
			if err != nil {
				return err
			}
			if paid {
				continue
			}
			b.Status = models.BookingExpired
			if err := tx.SaveBooking(ctx, b); err != nil {
				return err
			}
			if err := tx.FailPendingPayments(ctx, b.ID, now); err != nil {
				return err
			}
			expired++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if expired > 0 {
		s.logger.Info("expired overdue bookings", "count", expired)
	}
	return expired, nil
}

func (s *BookingService) detail(ctx context.Context, id string) (*models.Booking, error) {
	b, err := s.store.FindBooking(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "booking")
	}
	return b, nil
}

// confirm marks the payment SUCCESS and the booking CONFIRMED, and queues the
// invoice record inside tx. The returned message is sent after commit.
func confirm(ctx context.Context, tx BookingStore, b *models.Booking, p *models.Payment, now time.Time) (*InvoiceMessage, error) {
	p.PaymentStatus = models.PaymentSuccess
	if p.PaidAt == nil {
		p.PaidAt = &now
	}
	p.FailedAt = nil
	if err := tx.SavePayment(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to update payment: %w", err)
	}

	b.Status = models.BookingConfirmed
	if err := tx.SaveBooking(ctx, b); err != nil {
		return nil, fmt.Errorf("failed to update booking: %w", err)
	}

	full, err := tx.FindBooking(ctx, b.ID)
	if err != nil {
		return nil, notFoundOr(err, "booking")
	}
	if full.User == nil {
		return nil, errors.New("booking has no user to notify")
	}

	inv := invoiceFor(full, p)
	payload, err := json.Marshal(inv)
	if err != nil {
		return nil, err
	}
	rec := &models.EmailNotification{
		BookingID: b.ID,
		UserID:    full.UserID,
		Type:      models.NotificationBookingConfirmed,
		ToEmail:   full.User.Email,
		Payload:   datatypes.JSON(payload),
		Status:    models.NotificationPending,
	}
	if err := tx.CreateNotification(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to record notification: %w", err)
	}
	return &InvoiceMessage{NotificationID: rec.ID, BookingID: b.ID, To: rec.ToEmail, Invoice: inv}, nil
}

func invoiceFor(b *models.Booking, p *models.Payment) utils.InvoiceEmail {
	inv := utils.InvoiceEmail{
		BookingID:      b.ID,
		CheckIn:        b.CheckInDate,
		CheckOut:       b.CheckOutDate,
		Nights:         b.Nights,
		GuestsCount:    b.GuestsCount,
		SubtotalIdr:    b.NightlySubtotalIdr,
		CleaningFeeIdr: b.CleaningFeeIdr,
		ServiceFeeIdr:  b.ServiceFeeIdr,
		DiscountIdr:    b.DiscountIdr,
		TotalIdr:       b.TotalPriceIdr,
		PaymentMethod:  p.PaymentMethod,
		PaidAt:         p.PaidAt,
	}
	if p.PaymentType != nil && *p.PaymentType != "" {
		inv.PaymentMethod = *p.PaymentType
	}
	if b.User != nil {
		inv.CustomerName = b.User.FullName
	}
	if b.Property != nil {
		inv.PropertyName = b.Property.Title
		if loc := b.Property.Location; loc != nil {
			inv.PropertyLocation = strings.TrimPrefix(strings.Join([]string{loc.Address, loc.City, loc.Country}, ", "), ", ")
		}
	}
	if b.Room != nil {
		inv.RoomName = b.Room.Name
	}
	return inv
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
