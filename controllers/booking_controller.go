package controllers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"booking-backend/gateway"
	"booking-backend/middleware"
	"booking-backend/models"
	"booking-backend/services"
	"booking-backend/utils"
)

// ---------------------------
// Dependencies
// ---------------------------

type BookingManager interface {
	Create(ctx context.Context, in services.CreateBookingInput) (*services.BookingResult, error)
	Get(ctx context.Context, actor services.Actor, id string) (*models.Booking, error)
	ListForUser(ctx context.Context, userID string) ([]models.Booking, error)
	Cancel(ctx context.Context, actor services.Actor, id, reason string) (*models.Booking, error)
	CreateCheckoutSession(ctx context.Context, actor services.Actor, id string) (*gateway.CheckoutSession, error)
	ExpireOverdue(ctx context.Context) (int, error)
}

type RoomFinder interface {
	ListAvailableRooms(ctx context.Context, q services.AvailabilityQuery) ([]services.RoomAvailability, error)
}

type PriceCalculator interface {
	CalculatePrice(ctx context.Context, roomID string, checkIn, checkOut time.Time) (*services.PriceBreakdown, error)
}

// ---------------------------
// Payload / DTOs
// ---------------------------

type calculatePriceRequest struct {
	RoomID   string `json:"roomId" binding:"required"`
	CheckIn  string `json:"checkIn" binding:"required"`
	CheckOut string `json:"checkOut" binding:"required"`
}

type createBookingRequest struct {
	PropertyID    string               `json:"propertyId" binding:"required"`
	RoomID        string               `json:"roomId" binding:"required"`
	CheckIn       string               `json:"checkIn" binding:"required"`
	CheckOut      string               `json:"checkOut" binding:"required"`
	Nights        int                  `json:"nights" binding:"gte=0"`
	GuestsCount   int                  `json:"guestsCount" binding:"required,gte=1"`
	PaymentMethod models.PaymentMethod `json:"paymentMethod" binding:"required"`
}

type cancelBookingRequest struct {
	Reason string `json:"reason" binding:"max=255"`
}

// ---------------------------
// Controller
// ---------------------------

type BookingController struct {
	Bookings     BookingManager
	Availability RoomFinder
	Pricing      PriceCalculator
}

func NewBookingController(bookings BookingManager, availability RoomFinder, pricing PriceCalculator) *BookingController {
	return &BookingController{Bookings: bookings, Availability: availability, Pricing: pricing}
}

// GET /api/bookings/available-rooms?propertyId&checkIn&checkOut&guestsCount
func (bc *BookingController) AvailableRooms(c *gin.Context) {
	in, out, ok := parseStay(c, c.Query("checkIn"), c.Query("checkOut"))
	if !ok {
		return
	}
	guests := 0
	if raw := c.Query("guestsCount"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(c, "guestsCount must be a number")
			return
		}
		guests = n
	}

	rooms, err := bc.Availability.ListAvailableRooms(c.Request.Context(), services.AvailabilityQuery{
		PropertyID:  c.Query("propertyId"),
		CheckIn:     in,
		CheckOut:    out,
		GuestsCount: guests,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, rooms)
}

// POST /api/bookings/calculate-price
func (bc *BookingController) CalculatePrice(c *gin.Context) {
	var req calculatePriceRequest
	if !bindJSON(c, &req) {
		return
	}
	in, out, ok := parseStay(c, req.CheckIn, req.CheckOut)
	if !ok {
		return
	}
	price, err := bc.Pricing.CalculatePrice(c.Request.Context(), req.RoomID, in, out)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, price)
}

// POST /api/bookings
func (bc *BookingController) Create(c *gin.Context) {
	var req createBookingRequest
	if !bindJSON(c, &req) {
		return
	}
	in, out, ok := parseStay(c, req.CheckIn, req.CheckOut)
	if !ok {
		return
	}

	res, err := bc.Bookings.Create(c.Request.Context(), services.CreateBookingInput{
		UserID:        middleware.UserID(c),
		PropertyID:    req.PropertyID,
		RoomID:        req.RoomID,
		CheckIn:       in,
		CheckOut:      out,
		Nights:        req.Nights,
		GuestsCount:   req.GuestsCount,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONMessage(c, http.StatusCreated, "Booking created", res)
}

// GET /api/bookings/user/me
func (bc *BookingController) MyBookings(c *gin.Context) {
	bookings, err := bc.Bookings.ListForUser(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, bookings)
}

// GET /api/bookings/:id
func (bc *BookingController) Get(c *gin.Context) {
	b, err := bc.Bookings.Get(c.Request.Context(), actor(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, b)
}

// POST /api/bookings/:id/cancel
func (bc *BookingController) Cancel(c *gin.Context) {
	var req cancelBookingRequest
	// the body is optional
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}
	b, err := bc.Bookings.Cancel(c.Request.Context(), actor(c), c.Param("id"), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONMessage(c, http.StatusOK, "Booking canceled", b)
}

// POST /api/bookings/:id/checkout-session
func (bc *BookingController) CheckoutSession(c *gin.Context) {
	sess, err := bc.Bookings.CreateCheckoutSession(c.Request.Context(), actor(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, sess)
}

// POST /api/admin/bookings/expire-overdue
func (bc *BookingController) ExpireOverdue(c *gin.Context) {
	n, err := bc.Bookings.ExpireOverdue(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"expired": n})
}
