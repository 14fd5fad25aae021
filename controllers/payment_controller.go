package controllers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"booking-backend/gateway"
	"booking-backend/models"
	"booking-backend/services"
	"booking-backend/utils"
)

const maxNotificationBytes = 1 << 20

type PaymentProcessor interface {
	HandleNotification(ctx context.Context, n gateway.Notification) (*services.NotificationResult, error)
	SyncStatus(ctx context.Context, actor services.Actor, bookingID string) (*services.NotificationResult, error)
	CompleteManual(ctx context.Context, bookingID string) (*models.Booking, error)
}

// NotificationParser decodes a webhook body and checks its signature.
type NotificationParser interface {
	ParseNotification(raw []byte) (*gateway.Notification, error)
}

type PaymentController struct {
	Payments PaymentProcessor
	Parser   NotificationParser
}

func NewPaymentController(payments PaymentProcessor, parser NotificationParser) *PaymentController {
	return &PaymentController{Payments: payments, Parser: parser}
}

// POST /api/payments/webhook
func (pc *PaymentController) Webhook(c *gin.Context) {
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxNotificationBytes))
	if err != nil {
		badRequest(c, "failed to read notification body")
		return
	}

	n, err := pc.Parser.ParseNotification(raw)
	switch {
	case errors.Is(err, gateway.ErrNotConfigured):
		utils.JSONError(c, http.StatusServiceUnavailable, "error.upstream", "payment gateway is not configured")
		return
	case err != nil:
		badRequest(c, err.Error())
		return
	}

	res, err := pc.Payments.HandleNotification(c.Request.Context(), *n)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, res)
}

// GET /api/payments/:bookingId/status
func (pc *PaymentController) Status(c *gin.Context) {
	res, err := pc.Payments.SyncStatus(c.Request.Context(), actor(c), c.Param("bookingId"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, res)
}

// POST /api/payments/:bookingId/complete
func (pc *PaymentController) Complete(c *gin.Context) {
	b, err := pc.Payments.CompleteManual(c.Request.Context(), c.Param("bookingId"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONMessage(c, http.StatusOK, "Payment completed", b)
}
