package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"booking-backend/models"
	"booking-backend/utils"
)

// InvoiceMessage is one queued invoice email, tied to its EmailNotification row.
type InvoiceMessage struct {
	NotificationID string
	BookingID      string
	To             string
	Invoice        utils.InvoiceEmail
}

// Notifier accepts invoices for delivery without blocking the caller.
type Notifier interface {
	NotifyInvoice(msg InvoiceMessage)
}

type InvoiceSender interface {
	SendInvoice(ctx context.Context, to string, inv utils.InvoiceEmail) error
}

// NotificationRecorder stores the delivery outcome of an EmailNotification.
type NotificationRecorder interface {
	MarkNotification(ctx context.Context, id string, status models.NotificationStatus, sendErr error, at time.Time) error
}

var errQueueFull = errors.New("notification queue is full")

// AsyncNotifier delivers invoices from a bounded queue on a single worker.
type AsyncNotifier struct {
	sender      InvoiceSender
	recorder    NotificationRecorder
	logger      *slog.Logger
	sendTimeout time.Duration

	mu     sync.RWMutex
	closed bool
	queue  chan InvoiceMessage
	done   chan struct{}
}

func NewAsyncNotifier(sender InvoiceSender, recorder NotificationRecorder, logger *slog.Logger, queueSize int) *AsyncNotifier {
	if queueSize <= 0 {
		queueSize = 100
	}
	n := &AsyncNotifier{
		sender:      sender,
		recorder:    recorder,
		logger:      logger,
		sendTimeout: 30 * time.Second,
		queue:       make(chan InvoiceMessage, queueSize),
		done:        make(chan struct{}),
	}
	go n.run()
	return n
}

func (n *AsyncNotifier) NotifyInvoice(msg InvoiceMessage) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	if n.closed {
		n.fail(msg, errors.New("notifier is closed"))
		return
	}
	select {
	case n.queue <- msg:
	default:
		n.fail(msg, errQueueFull)
	}
}

// Close stops accepting messages and waits for queued ones to be delivered.
func (n *AsyncNotifier) Close(ctx context.Context) error {
	n.mu.Lock()
	if !n.closed {
		n.closed = true
		close(n.queue)
	}
	n.mu.Unlock()

	select {
	case <-n.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (n *AsyncNotifier) run() {
	defer close(n.done)
	for msg := range n.queue {
		n.deliver(msg)
	}
}

func (n *AsyncNotifier) deliver(msg InvoiceMessage) {
	ctx, cancel := context.WithTimeout(context.Background(), n.sendTimeout)
	defer cancel()

	if err := n.sender.SendInvoice(ctx, msg.To, msg.Invoice); err != nil {
		n.fail(msg, &Error{Kind: KindNotification, Message: "invoice delivery failed", Err: err})
		return
	}
	if err := n.recorder.MarkNotification(ctx, msg.NotificationID, models.NotificationSent, nil, time.Now()); err != nil {
		n.logger.Error("failed to record notification status", "notification_id", msg.NotificationID, "error", err)
	}
}

func (n *AsyncNotifier) fail(msg InvoiceMessage, err error) {
	n.logger.Warn("invoice notification not delivered",
		"booking_id", msg.BookingID,
		"notification_id", msg.NotificationID,
		"error", err,
	)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if rerr := n.recorder.MarkNotification(ctx, msg.NotificationID, models.NotificationFailed, err, time.Now()); rerr != nil {
		n.logger.Error("failed to record notification status", "notification_id", msg.NotificationID, "error", rerr)
	}
}
