package services

import (
	"context"
	"fmt"
	"time"

	"booking-backend/models"
	"booking-backend/utils"
)

type AvailabilityService struct {
	store BookingStore
	now   func() time.Time
}

func NewAvailabilityService(store BookingStore) *AvailabilityService {
	return &AvailabilityService{store: store, now: time.Now}
}

type AvailabilityQuery struct {
	PropertyID  string
	CheckIn     time.Time
	CheckOut    time.Time
	GuestsCount int
}

type FacilitySummary struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Icon *string `json:"icon,omitempty"`
}

type RoomAvailability struct {
	ID                   string            `json:"id"`
	Name                 string            `json:"name"`
	Description          string            `json:"description"`
	MaxGuests            int               `json:"maxGuests"`
	Beds                 int               `json:"beds"`
	Bathrooms            int               `json:"bathrooms"`
	BasePricePerNightIdr int64             `json:"basePricePerNightIdr"`
	Facilities           []FacilitySummary `json:"facilities"`
	IsAvailable          bool              `json:"isAvailable"`
}

// IsRoomAvailable is false when any booking still holding the room overlaps [checkIn, checkOut).
func (s *AvailabilityService) IsRoomAvailable(ctx context.Context, roomID string, checkIn, checkOut time.Time, excludeBookingID string) (bool, error) {
	if !checkIn.Before(checkOut) {
		return false, validationError("checkIn must be before checkOut")
	}
	return roomAvailable(ctx, s.store, OverlapQuery{
		RoomID:           roomID,
		CheckIn:          checkIn,
		CheckOut:         checkOut,
		ExcludeBookingID: excludeBookingID,
	})
}

func roomAvailable(ctx context.Context, store BookingStore, q OverlapQuery) (bool, error) {
	taken, err := store.HasOverlappingBooking(ctx, q)
	if err != nil {
		return false, fmt.Errorf("failed to check room availability: %w", err)
	}
	return !taken, nil
}

// ListAvailableRooms annotates every room of the property with its availability for the stay.
func (s *AvailabilityService) ListAvailableRooms(ctx context.Context, q AvailabilityQuery) ([]RoomAvailability, error) {
	if q.PropertyID == "" {
		return nil, validationError("propertyId is required")
	}
	if err := checkStayDates(q.CheckIn, q.CheckOut, s.now()); err != nil {
		return nil, err
	}
	if q.GuestsCount < 0 {
		return nil, validationError("guestsCount must not be negative")
	}

	if _, err := s.store.FindProperty(ctx, q.PropertyID); err != nil {
		return nil, notFoundOr(err, "property")
	}

	rooms, err := s.store.ListPropertyRooms(ctx, q.PropertyID, q.GuestsCount)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	if len(rooms) == 0 {
		return []RoomAvailability{}, nil
	}

	ids := make([]string, 0, len(rooms))
	for _, r := range rooms {
		ids = append(ids, r.ID)
	}
	occupied, err := s.store.OccupiedRoomIDs(ctx, ids, q.CheckIn, q.CheckOut)
	if err != nil {
		return nil, fmt.Errorf("failed to check room availability: %w", err)
	}

	out := make([]RoomAvailability, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, RoomAvailability{
			ID:                   r.ID,
			Name:                 r.Name,
			Description:          r.Description,
			MaxGuests:            r.MaxGuests,
			Beds:                 r.Beds,
			Bathrooms:            r.Bathrooms,
			BasePricePerNightIdr: r.BasePricePerNightIdr,
			Facilities:           facilitySummaries(r.Facilities),
			IsAvailable:          !occupied[r.ID],
		})
	}
	return out, nil
}

// checkStayDates requires checkIn < checkOut and checkIn not before today's date.
func checkStayDates(checkIn, checkOut, now time.Time) error {
	if checkIn.IsZero() || checkOut.IsZero() {
		return validationError("checkIn and checkOut are required")
	}
	if !checkIn.Before(checkOut) {
		return validationError("checkIn must be before checkOut")
	}
	if utils.DateOf(checkIn).Before(utils.DateOf(now.UTC())) {
		return validationError("checkIn cannot be in the past")
	}
	return nil
}

func facilitySummaries(fs []models.Facility) []FacilitySummary {
	out := make([]FacilitySummary, 0, len(fs))
	for _, f := range fs {
		out = append(out, FacilitySummary{ID: f.ID, Name: f.Name, Icon: f.Icon})
	}
	return out
}
