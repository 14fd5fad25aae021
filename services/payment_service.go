package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/datatypes"

	"booking-backend/gateway"
	"booking-backend/models"
)

type PaymentService struct {
	store        BookingStore
	gateway      CheckoutGateway
	notifier     Notifier
	logger       *slog.Logger
	verifyStatus bool
	now          func() time.Time
}

// NewPaymentService builds the webhook and settlement handler. With verifyStatus
// every notification is re-read from the gateway status API before it is applied.
func NewPaymentService(store BookingStore, gw CheckoutGateway, notifier Notifier, logger *slog.Logger, verifyStatus bool) *PaymentService {
	return &PaymentService{
		store:        store,
		gateway:      gw,
		notifier:     notifier,
		logger:       logger,
		verifyStatus: verifyStatus,
		now:          time.Now,
	}
}

type NotificationResult struct {
	BookingID     string               `json:"bookingId"`
	PaymentID     string               `json:"paymentId"`
	Outcome       gateway.Outcome      `json:"outcome"`
	BookingStatus models.BookingStatus `json:"bookingStatus"`
	PaymentStatus models.PaymentStatus `json:"paymentStatus"`
	// Changed is false when the notification was already applied or is ignored.
	Changed bool `json:"changed"`
}

// HandleNotification applies one gateway notification. Deliveries may repeat or
// arrive out of order; applying the same notification twice changes nothing.
func (s *PaymentService) HandleNotification(ctx context.Context, n gateway.Notification) (*NotificationResult, error) {
	if s.verifyStatus {
		if s.gateway == nil {
			return nil, upstream(nil, "payment gateway is not configured")
		}
		fresh, err := s.gateway.TransactionStatus(ctx, n.OrderID)
		if err != nil {
			return nil, upstream(err, "failed to verify transaction for order %s", n.OrderID)
		}
		n = *fresh
	}
	return s.applyNotification(ctx, n)
}

func (s *PaymentService) applyNotification(ctx context.Context, n gateway.Notification) (*NotificationResult, error) {
	if n.OrderID == "" {
		return nil, validationError("notification is missing order_id")
	}
	amount, err := n.Amount()
	if err != nil {
		return nil, validationError("%v", err)
	}

	outcome := n.Outcome()
	result := &NotificationResult{Outcome: outcome}
	var invoice *InvoiceMessage

	err = s.store.Transaction(ctx, func(tx BookingStore) error {
		b, p, err := s.correlate(ctx, tx, n)
		if err != nil {
			return err
		}

		expected := b.TotalPriceIdr
		if p != nil {
			expected = p.AmountIdr
		}
		if amount != float64(expected) {
			s.logger.Error("gateway amount does not match payment",
				"booking_id", b.ID,
				"order_id", n.OrderID,
				"transaction_id", n.TransactionID,
				"gateway_amount", n.GrossAmount,
				"expected_amount", expected,
			)
			return &Error{
				Kind:    KindPaymentMismatch,
				Message: fmt.Sprintf("gateway amount %s does not match expected amount %d for booking %s", n.GrossAmount, expected, b.ID),
			}
		}

		result.BookingID = b.ID
		if outcome == gateway.OutcomeIgnored {
			s.logger.Info("gateway notification ignored", "booking_id", b.ID, "transaction_status", n.TransactionStatus)
			if p != nil {
				result.PaymentID, result.PaymentStatus = p.ID, p.PaymentStatus
			}
			result.BookingStatus = b.Status
			return nil
		}

		if p == nil {
			p = &models.Payment{
				BookingID:     b.ID,
				UserID:        b.UserID,
				AmountIdr:     b.TotalPriceIdr,
				PaymentStatus: models.PaymentPending,
				PaymentMethod: string(models.PaymentMethodGateway),
				RequestedAt:   s.now(),
			}
			if err := tx.CreatePayment(ctx, p); err != nil {
				return fmt.Errorf("failed to create payment: %w", err)
			}
			result.Changed = true
		}

		changed, msg, err := s.apply(ctx, tx, b, p, n, outcome)
		if err != nil {
			return err
		}
		result.Changed = result.Changed || changed
		result.PaymentID, result.PaymentStatus = p.ID, p.PaymentStatus
		result.BookingStatus = b.Status
		invoice = msg
		return nil
	})
	if err != nil {
		return nil, err
	}

	if invoice != nil {
		s.notifier.NotifyInvoice(*invoice)
	}
	return result, nil
}

// correlate finds the booking (locked) and payment a notification refers to.
// A nil payment means the booking has no payment this transaction can attach to.
func (s *PaymentService) correlate(ctx context.Context, tx BookingStore, n gateway.Notification) (*models.Booking, *models.Payment, error) {
	bookingID := n.OrderID
	if n.TransactionID != "" {
		p, err := tx.FindPaymentByProviderTxID(ctx, n.TransactionID)
		switch {
		case err == nil:
			bookingID = p.BookingID
		case !isNotFound(err):
			return nil, nil, fmt.Errorf("failed to load payment: %w", err)
		}
	}

	b, err := tx.LockBooking(ctx, bookingID)
	if err != nil {
		return nil, nil, notFoundOr(err, "booking")
	}

	if n.TransactionID != "" {
		p, err := tx.FindPaymentByProviderTxID(ctx, n.TransactionID)
		if err == nil {
			return b, p, nil
		}
		if !isNotFound(err) {
			return nil, nil, fmt.Errorf("failed to load payment: %w", err)
		}
	}

	p, err := tx.LatestPayment(ctx, b.ID)
	if err != nil {
		if isNotFound(err) {
			return b, nil, nil
		}
		return nil, nil, fmt.Errorf("failed to load payment: %w", err)
	}
	// the latest attempt belongs to another gateway transaction
	if p.ProviderTxID != nil && *p.ProviderTxID != "" && *p.ProviderTxID != n.TransactionID {
		return b, nil, nil
	}
	return b, p, nil
}

func (s *PaymentService) apply(ctx context.Context, tx BookingStore, b *models.Booking, p *models.Payment, n gateway.Notification, outcome gateway.Outcome) (bool, *InvoiceMessage, error) {
	now := s.now()
	changed := stampGatewayFields(p, n)

	if p.PaymentStatus == models.PaymentSuccess && outcome != gateway.OutcomeSuccess {
		s.logger.Warn("late gateway notification ignored for settled payment",
			"booking_id", b.ID, "payment_id", p.ID, "transaction_status", n.TransactionStatus)
		return changed, nil, s.savePaymentIf(ctx, tx, p, changed)
	}

	switch outcome {
	case gateway.OutcomeSuccess:
		if p.PaymentStatus == models.PaymentSuccess && b.Status != models.BookingWaitingPayment && b.Status != models.BookingWaitingConfirmation {
			return changed, nil, s.savePaymentIf(ctx, tx, p, changed)
		}
		paid := b.Status == models.BookingConfirmed
		if !paid {
			var err error
			if paid, err = tx.HasSuccessfulPayment(ctx, b.ID, p.ID); err != nil {
				return false, nil, err
			}
		}
		if paid {
			// a second transaction for a paid booking never counts as the payment
			s.logger.Error("duplicate gateway payment for paid booking; manual refund needed",
				"booking_id", b.ID, "payment_id", p.ID, "transaction_id", n.TransactionID)
			if p.PaymentStatus != models.PaymentFailed {
				p.PaymentStatus = models.PaymentFailed
				p.FailedAt = &now
				changed = true
			}
			return changed, nil, s.savePaymentIf(ctx, tx, p, changed)
		}
		if b.Status.Settled() {
			// money arrived for a booking that no longer holds the room
			s.logger.Warn("payment settled for inactive booking; manual refund needed",
				"booking_id", b.ID, "booking_status", b.Status, "payment_id", p.ID)
			p.PaymentStatus = models.PaymentSuccess
			if p.PaidAt == nil {
				p.PaidAt = &now
			}
			return true, nil, tx.SavePayment(ctx, p)
		}
		msg, err := confirm(ctx, tx, b, p, now)
		return true, msg, err

	case gateway.OutcomePending:
		if p.PaymentStatus == models.PaymentFailed {
			return changed, nil, s.savePaymentIf(ctx, tx, p, changed)
		}
		if err := s.savePaymentIf(ctx, tx, p, changed); err != nil {
			return false, nil, err
		}
		if b.Status.AwaitingPayment() && b.Status != models.BookingWaitingPayment {
			b.Status = models.BookingWaitingPayment
			return true, nil, tx.SaveBooking(ctx, b)
		}
		return changed, nil, nil

	case gateway.OutcomeRejected, gateway.OutcomeCanceled, gateway.OutcomeExpired:
		if p.PaymentStatus != models.PaymentFailed {
			p.PaymentStatus = models.PaymentFailed
			p.FailedAt = &now
			changed = true
		}
		if err := s.savePaymentIf(ctx, tx, p, changed); err != nil {
			return false, nil, err
		}
		if b.Status.Settled() || b.Status == models.BookingConfirmed {
			return changed, nil, nil
		}
		paid, err := tx.HasSuccessfulPayment(ctx, b.ID, p.ID)
		if err != nil {
			return false, nil, err
		}
		if paid {
			return changed, nil, nil
		}

		next := failedBookingStatus(outcome)
		if b.Status == next {
			return changed, nil, nil
		}
		b.Status = next
		if next == models.BookingCanceled {
			reason := "Payment " + n.TransactionStatus + " by gateway"
			b.CancelledAt = &now
			b.CancelReason = &reason
		}
		return true, nil, tx.SaveBooking(ctx, b)
	}
	return changed, nil, nil
}

func failedBookingStatus(o gateway.Outcome) models.BookingStatus {
	switch o {
	case gateway.OutcomeCanceled:
		return models.BookingCanceled
	case gateway.OutcomeExpired:
		return models.BookingExpired
	}
	return models.BookingWaitingPayment
}

// stampGatewayFields copies the transaction id, channel and raw payload onto the payment.
func stampGatewayFields(p *models.Payment, n gateway.Notification) bool {
	changed := false
	if n.TransactionID != "" && (p.ProviderTxID == nil || *p.ProviderTxID != n.TransactionID) {
		id := n.TransactionID
		p.ProviderTxID = &id
		changed = true
	}
	if n.PaymentType != "" && (p.PaymentType == nil || *p.PaymentType != n.PaymentType) {
		pt := n.PaymentType
		p.PaymentType = &pt
		changed = true
	}
	if len(n.Raw) > 0 && string(p.RawNotification) != string(n.Raw) {
		p.RawNotification = datatypes.JSON(n.Raw)
		changed = true
	}
	return changed
}

func (s *PaymentService) savePaymentIf(ctx context.Context, tx BookingStore, p *models.Payment, changed bool) error {
	if !changed {
		return nil
	}
	if err := tx.SavePayment(ctx, p); err != nil {
		return fmt.Errorf("failed to update payment: %w", err)
	}
	return nil
}

// SyncStatus polls the gateway for the booking's order and applies the answer
// through the notification path.
func (s *PaymentService) SyncStatus(ctx context.Context, actor Actor, bookingID string) (*NotificationResult, error) {
	b, err := s.store.FindBooking(ctx, bookingID)
	if err != nil {
		return nil, notFoundOr(err, "booking")
	}
	if b.UserID != actor.UserID && !actor.IsAdmin() {
		return nil, forbidden("you are not allowed to view this booking")
	}
	if b.PaymentMethod != models.PaymentMethodGateway {
		return nil, conflict("booking is paid by bank transfer")
	}
	if s.gateway == nil {
		return nil, upstream(nil, "payment gateway is not configured")
	}
	n, err := s.gateway.TransactionStatus(ctx, b.ID)
	if err != nil {
		return nil, upstream(err, "failed to fetch payment status")
	}
	if n.OrderID == "" {
		n.OrderID = b.ID
	}
	return s.applyNotification(ctx, *n)
}

// CompleteManual confirms a booking paid outside the gateway, typically by bank transfer.
func (s *PaymentService) CompleteManual(ctx context.Context, bookingID string) (*models.Booking, error) {
	var invoice *InvoiceMessage
	err := s.store.Transaction(ctx, func(tx BookingStore) error {
		b, err := tx.LockBooking(ctx, bookingID)
		if err != nil {
			return notFoundOr(err, "booking")
		}
		if b.Status == models.BookingConfirmed {
			return nil
		}
		if !b.Status.AwaitingPayment() {
			return conflict("booking is %s and cannot be marked as paid", b.Status)
		}

		now := s.now()
		p, err := tx.LatestPayment(ctx, b.ID)
		if err != nil {
			if !isNotFound(err) {
				return fmt.Errorf("failed to load payment: %w", err)
			}
			p = &models.Payment{
				BookingID:     b.ID,
				UserID:        b.UserID,
				AmountIdr:     b.TotalPriceIdr,
				PaymentStatus: models.PaymentPending,
				PaymentMethod: string(b.PaymentMethod),
				RequestedAt:   now,
			}
			if err := tx.CreatePayment(ctx, p); err != nil {
				return fmt.Errorf("failed to create payment: %w", err)
			}
		}

		invoice, err = confirm(ctx, tx, b, p, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	if invoice != nil {
		s.notifier.NotifyInvoice(*invoice)
	}

	b, err := s.store.FindBooking(ctx, bookingID)
	if err != nil {
		return nil, notFoundOr(err, "booking")
	}
	return b, nil
}
