package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"booking-backend/models"
)

func newAvailability(f fixture) *AvailabilityService {
	s := NewAvailabilityService(f.store)
	s.now = func() time.Time { return fixedNow }
	return s
}

func TestIsRoomAvailableHalfOpenRanges(t *testing.T) {
	f := newFixture()
	f.addBooking("b-1", f.roomID, date("2025-06-10"), date("2025-06-13"), models.BookingConfirmed)
	svc := newAvailability(f)
	ctx := context.Background()

	cases := []struct {
		name     string
		in, out  string
		expected bool
	}{
		{"ends on existing check-in", "2025-06-07", "2025-06-10", true},
		{"starts on existing check-out", "2025-06-13", "2025-06-15", true},
		{"overlaps first night", "2025-06-08", "2025-06-11", false},
		{"overlaps last night", "2025-06-12", "2025-06-14", false},
		{"inside", "2025-06-11", "2025-06-12", false},
		{"contains", "2025-06-09", "2025-06-14", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ok, err := svc.IsRoomAvailable(ctx, f.roomID, date(tc.in), date(tc.out), "")
			require.NoError(t, err)
			assert.Equal(t, tc.expected, ok)
		})
	}
}

func TestIsRoomAvailableIgnoresReleasedAndExcludedBookings(t *testing.T) {
	f := newFixture()
	f.addBooking("canceled", f.roomID, date("2025-06-10"), date("2025-06-13"), models.BookingCanceled)
	f.addBooking("expired", f.roomID, date("2025-06-10"), date("2025-06-13"), models.BookingExpired)
	f.addBooking("mine", f.roomID, date("2025-06-10"), date("2025-06-13"), models.BookingWaitingPayment)
	svc := newAvailability(f)
	ctx := context.Background()

	ok, err := svc.IsRoomAvailable(ctx, f.roomID, date("2025-06-10"), date("2025-06-13"), "mine")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.IsRoomAvailable(ctx, f.roomID, date("2025-06-10"), date("2025-06-13"), "")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIsRoomAvailableRejectsEmptyRange(t *testing.T) {
	svc := newAvailability(newFixture())
	_, err := svc.IsRoomAvailable(context.Background(), "room-1", date("2025-06-10"), date("2025-06-10"), "")
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestListAvailableRooms(t *testing.T) {
	f := newFixture()
	f.addBooking("b-1", f.familyID, date("2025-06-10"), date("2025-06-12"), models.BookingWaitingConfirmation)
	svc := newAvailability(f)

	rooms, err := svc.ListAvailableRooms(context.Background(), AvailabilityQuery{
		PropertyID: f.propertyID,
		CheckIn:    date("2025-06-11"),
		CheckOut:   date("2025-06-14"),
	})
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	assert.Equal(t, f.roomID, rooms[0].ID)
	assert.True(t, rooms[0].IsAvailable)
	assert.Equal(t, f.familyID, rooms[1].ID)
	assert.False(t, rooms[1].IsAvailable)
	require.Len(t, rooms[1].Facilities, 1)
	assert.Equal(t, "Free WiFi", rooms[1].Facilities[0].Name)
}

func TestListAvailableRoomsFiltersByGuests(t *testing.T) {
	f := newFixture()
	svc := newAvailability(f)

	rooms, err := svc.ListAvailableRooms(context.Background(), AvailabilityQuery{
		PropertyID:  f.propertyID,
		CheckIn:     date("2025-06-11"),
		CheckOut:    date("2025-06-14"),
		GuestsCount: 3,
	})
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, f.familyID, rooms[0].ID)
}

func TestListAvailableRoomsValidation(t *testing.T) {
	f := newFixture()
	svc := newAvailability(f)
	ctx := context.Background()

	_, err := svc.ListAvailableRooms(ctx, AvailabilityQuery{PropertyID: f.propertyID, CheckIn: date("2025-05-19"), CheckOut: date("2025-05-22")})
	assert.Equal(t, KindValidation, KindOf(err), "check-in in the past")

	_, err = svc.ListAvailableRooms(ctx, AvailabilityQuery{PropertyID: f.propertyID, CheckIn: date("2025-06-05"), CheckOut: date("2025-06-01")})
	assert.Equal(t, KindValidation, KindOf(err), "reversed dates")

	_, err = svc.ListAvailableRooms(ctx, AvailabilityQuery{CheckIn: date("2025-06-01"), CheckOut: date("2025-06-05")})
	assert.Equal(t, KindValidation, KindOf(err), "missing property")

	_, err = svc.ListAvailableRooms(ctx, AvailabilityQuery{PropertyID: "nope", CheckIn: date("2025-06-01"), CheckOut: date("2025-06-05")})
	assert.Equal(t, KindNotFound, KindOf(err))

	rooms, err := svc.ListAvailableRooms(ctx, AvailabilityQuery{PropertyID: f.propertyID, CheckIn: date("2025-05-20"), CheckOut: date("2025-05-21")})
	require.NoError(t, err, "today is bookable")
	assert.Len(t, rooms, 2)
}
