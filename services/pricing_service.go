package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"booking-backend/models"
	"booking-backend/utils"
)

// PercentageMode decides how a PERCENTAGE peak-season rate prices a night.
type PercentageMode string

const (
	// PercentageSubstitute uses the rate value as the night's price, same as FIXED.
	PercentageSubstitute PercentageMode = "substitute"
	// PercentageMultiply prices the night at base * (1 + value/100).
	PercentageMultiply PercentageMode = "multiply"
)

func (m PercentageMode) Valid() bool {
	return m == PercentageSubstitute || m == PercentageMultiply
}

const (
	cleaningFeePercent = 5
	serviceFeePercent  = 3
)

type NightPrice struct {
	Date     time.Time `json:"date"`
	PriceIdr int64     `json:"priceIdr"`
	// PeakSeasonRateID is set when a peak-season rate priced this night.
	PeakSeasonRateID *string `json:"peakSeasonRateId,omitempty"`
}

type PriceBreakdown struct {
	RoomID             string       `json:"roomId"`
	CheckIn            time.Time    `json:"checkIn"`
	CheckOut           time.Time    `json:"checkOut"`
	Nights             int          `json:"nights"`
	NightlyRates       []NightPrice `json:"nightlyRates"`
	NightlySubtotalIdr int64        `json:"nightlySubtotalIdr"`
	CleaningFeeIdr     int64        `json:"cleaningFeeIdr"`
	ServiceFeeIdr      int64        `json:"serviceFeeIdr"`
	DiscountIdr        int64        `json:"discountIdr"`
	TotalPriceIdr      int64        `json:"totalPriceIdr"`
}

type PricingService struct {
	store BookingStore
	mode  PercentageMode
}

func NewPricingService(store BookingStore, mode PercentageMode) *PricingService {
	if !mode.Valid() {
		mode = PercentageSubstitute
	}
	return &PricingService{store: store, mode: mode}
}

// PriceBooking prices `nights` consecutive nights starting at checkIn.
func (s *PricingService) PriceBooking(ctx context.Context, roomID string, checkIn, checkOut time.Time, nights int) (*PriceBreakdown, error) {
	if nights < 1 {
		return nil, validationError("nights must be at least 1")
	}
	room, err := s.store.FindRoom(ctx, roomID)
	if err != nil {
		return nil, notFoundOr(err, "room")
	}
	return quote(ctx, s.store, room, checkIn, checkOut, nights, s.mode)
}

// CalculatePrice derives the night count from the dates, rounding partial days up.
func (s *PricingService) CalculatePrice(ctx context.Context, roomID string, checkIn, checkOut time.Time) (*PriceBreakdown, error) {
	if roomID == "" {
		return nil, validationError("roomId is required")
	}
	if !checkIn.Before(checkOut) {
		return nil, validationError("checkIn must be before checkOut")
	}
	return s.PriceBooking(ctx, roomID, checkIn, checkOut, utils.NightsBetween(checkIn, checkOut))
}

func quote(ctx context.Context, store BookingStore, room *models.Room, checkIn, checkOut time.Time, nights int, mode PercentageMode) (*PriceBreakdown, error) {
	lastNight := checkIn.AddDate(0, 0, nights-1)
	rates, err := store.ActivePeakRates(ctx, room.ID, checkIn, lastNight)
	if err != nil {
		return nil, fmt.Errorf("failed to load peak season rates: %w", err)
	}
	b := ComposePrice(room.BasePricePerNightIdr, checkIn, nights, rates, mode)
	b.RoomID = room.ID
	b.CheckOut = checkOut
	return &b, nil
}

// ComposePrice builds the nightly schedule and totals. The first rate in
// rates covering a night wins.
func ComposePrice(basePrice int64, checkIn time.Time, nights int, rates []models.PeakSeasonRate, mode PercentageMode) PriceBreakdown {
	b := PriceBreakdown{
		CheckIn:      checkIn,
		CheckOut:     checkIn.AddDate(0, 0, nights),
		Nights:       nights,
		NightlyRates: make([]NightPrice, 0, nights),
	}

	for i := 0; i < nights; i++ {
		day := checkIn.AddDate(0, 0, i)
		night := NightPrice{Date: day, PriceIdr: basePrice}
		for _, r := range rates {
			if !r.IsActive || !r.Covers(day) {
				continue
			}
			night.PriceIdr = adjustedPrice(basePrice, r, mode)
			id := r.ID
			night.PeakSeasonRateID = &id
			break
		}
		b.NightlyRates = append(b.NightlyRates, night)
		b.NightlySubtotalIdr += night.PriceIdr
	}

	b.CleaningFeeIdr = percentOf(b.NightlySubtotalIdr, cleaningFeePercent)
	b.ServiceFeeIdr = percentOf(b.NightlySubtotalIdr, serviceFeePercent)
	b.TotalPriceIdr = b.NightlySubtotalIdr + b.CleaningFeeIdr + b.ServiceFeeIdr - b.DiscountIdr
	return b
}

func adjustedPrice(base int64, r models.PeakSeasonRate, mode PercentageMode) int64 {
	if r.AdjustmentType == models.AdjustmentPercentage && mode == PercentageMultiply {
		return int64(math.Round(float64(base) * (100 + r.AdjustmentValue) / 100))
	}
	return int64(math.Round(r.AdjustmentValue))
}

// percentOf rounds half up; amounts are never negative.
func percentOf(amount, percent int64) int64 {
	return (amount*percent + 50) / 100
}
