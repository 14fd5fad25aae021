package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"booking-backend/gateway"
	"booking-backend/models"
)

// memStore is an in-memory BookingStore. Rows are stored by value so callers
// never alias stored state, and Transaction restores a snapshot on error.
type memStore struct {
	mu sync.Mutex

	users         map[string]models.User
	properties    map[string]models.Property
	rooms         map[string]models.Room
	rates         []models.PeakSeasonRate
	bookings      map[string]models.Booking
	nightly       []models.NightlyRate
	payments      []models.Payment
	notifications []models.EmailNotification

	seq         int
	lockedRooms []string
	failOverlap error
	inTx        bool
}

func newMemStore() *memStore {
	return &memStore{
		users:      map[string]models.User{},
		properties: map[string]models.Property{},
		rooms:      map[string]models.Room{},
		bookings:   map[string]models.Booking{},
	}
}

func (s *memStore) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

type memSnapshot struct {
	bookings      map[string]models.Booking
	nightly       []models.NightlyRate
	payments      []models.Payment
	notifications []models.EmailNotification
}

func (s *memStore) snapshot() memSnapshot {
	b := make(map[string]models.Booking, len(s.bookings))
	for k, v := range s.bookings {
		b[k] = v
	}
	return memSnapshot{
		bookings:      b,
		nightly:       append([]models.NightlyRate(nil), s.nightly...),
		payments:      append([]models.Payment(nil), s.payments...),
		notifications: append([]models.EmailNotification(nil), s.notifications...),
	}
}

func (s *memStore) Transaction(ctx context.Context, fn func(tx BookingStore) error) error {
	s.mu.Lock()
	snap := s.snapshot()
	s.inTx = true
	s.mu.Unlock()

	err := fn(s)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inTx = false
	if err != nil {
		s.bookings, s.nightly, s.payments, s.notifications = snap.bookings, snap.nightly, snap.payments, snap.notifications
	}
	return err
}

func (s *memStore) FindUser(_ context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func (s *memStore) FindProperty(_ context.Context, id string) (*models.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.properties[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (s *memStore) FindRoom(_ context.Context, id string) (*models.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &r, nil
}

func (s *memStore) LockRoom(ctx context.Context, id string) (*models.Room, error) {
	r, err := s.FindRoom(ctx, id)
	if err == nil {
		s.mu.Lock()
		s.lockedRooms = append(s.lockedRooms, id)
		s.mu.Unlock()
	}
	return r, err
}

func (s *memStore) ListPropertyRooms(_ context.Context, propertyID string, minGuests int) ([]models.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Room
	for _, r := range s.rooms {
		if r.PropertyID == propertyID && r.MaxGuests >= minGuests {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStore) ActivePeakRates(_ context.Context, roomID string, from, to time.Time) ([]models.PeakSeasonRate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.PeakSeasonRate
	for _, r := range s.rates {
		if r.RoomID == roomID && r.IsActive && !r.StartDate.After(to) && !r.EndDate.Before(from) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *memStore) HasOverlappingBooking(_ context.Context, q OverlapQuery) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failOverlap != nil {
		return false, s.failOverlap
	}
	for _, b := range s.bookings {
		if b.RoomID == nil || *b.RoomID != q.RoomID || b.ID == q.ExcludeBookingID {
			continue
		}
		if b.Occupies(q.CheckIn, q.CheckOut) {
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) OccupiedRoomIDs(_ context.Context, roomIDs []string, checkIn, checkOut time.Time) (map[string]bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	want := map[string]bool{}
	for _, id := range roomIDs {
		want[id] = true
	}
	out := map[string]bool{}
	for _, b := range s.bookings {
		if b.RoomID != nil && want[*b.RoomID] && b.Occupies(checkIn, checkOut) {
			out[*b.RoomID] = true
		}
	}
	return out, nil
}

func (s *memStore) CreateBooking(_ context.Context, b *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.ID == "" {
		b.ID = s.nextID("booking")
	}
	b.CreatedAt = time.Now()
	for i := range b.NightlyRates {
		b.NightlyRates[i].ID = s.nextID("night")
		b.NightlyRates[i].BookingID = b.ID
		s.nightly = append(s.nightly, b.NightlyRates[i])
	}
	for i := range b.Payments {
		b.Payments[i].ID = s.nextID("payment")
		b.Payments[i].BookingID = b.ID
		s.payments = append(s.payments, b.Payments[i])
	}
	row := *b
	row.NightlyRates, row.Payments = nil, nil
	s.bookings[b.ID] = row
	return nil
}

func (s *memStore) FindBooking(_ context.Context, id string) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if u, ok := s.users[b.UserID]; ok {
		b.User = &u
	}
	if p, ok := s.properties[b.PropertyID]; ok {
		b.Property = &p
	}
	if b.RoomID != nil {
		if r, ok := s.rooms[*b.RoomID]; ok {
			b.Room = &r
		}
	}
	for _, n := range s.nightly {
		if n.BookingID == id {
			b.NightlyRates = append(b.NightlyRates, n)
		}
	}
	b.Payments = s.paymentsOf(id)
	return &b, nil
}

// paymentsOf returns the booking's payments, newest request first.
func (s *memStore) paymentsOf(bookingID string) []models.Payment {
	var out []models.Payment
	for i := len(s.payments) - 1; i >= 0; i-- {
		if s.payments[i].BookingID == bookingID {
			out = append(out, s.payments[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].RequestedAt.After(out[j].RequestedAt) })
	return out
}

func (s *memStore) LockBooking(_ context.Context, id string) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &b, nil
}

func (s *memStore) ListUserBookings(_ context.Context, userID string) ([]models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Booking
	for _, b := range s.bookings {
		if b.UserID == userID {
			if ps := s.paymentsOf(b.ID); len(ps) > 0 {
				b.Payments = ps[:1]
			}
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *memStore) SaveBooking(_ context.Context, b *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row := *b
	row.User, row.Property, row.Room, row.NightlyRates, row.Payments = nil, nil, nil, nil, nil
	s.bookings[b.ID] = row
	return nil
}

func (s *memStore) LockOverdueBookings(_ context.Context, now time.Time) ([]models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Booking
	for _, b := range s.bookings {
		if b.Status.AwaitingPayment() && b.PaymentDueAt != nil && b.PaymentDueAt.Before(now) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *memStore) FindPaymentByProviderTxID(_ context.Context, txID string) (*models.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.payments {
		if p.ProviderTxID != nil && *p.ProviderTxID == txID {
			return &p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *memStore) LatestPayment(_ context.Context, bookingID string) (*models.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ps := s.paymentsOf(bookingID)
	if len(ps) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &ps[0], nil
}

func (s *memStore) CreatePayment(_ context.Context, p *models.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.nextID("payment")
	s.payments = append(s.payments, *p)
	return nil
}

func (s *memStore) SavePayment(_ context.Context, p *models.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.payments {
		if s.payments[i].ID == p.ID {
			s.payments[i] = *p
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (s *memStore) HasSuccessfulPayment(_ context.Context, bookingID, exceptPaymentID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.payments {
		if p.BookingID == bookingID && p.ID != exceptPaymentID && p.PaymentStatus == models.PaymentSuccess {
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) FailPendingPayments(_ context.Context, bookingID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.payments {
		if s.payments[i].BookingID == bookingID && s.payments[i].PaymentStatus == models.PaymentPending {
			s.payments[i].PaymentStatus = models.PaymentFailed
			s.payments[i].FailedAt = &at
		}
	}
	return nil
}

func (s *memStore) CreateNotification(_ context.Context, n *models.EmailNotification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n.ID = s.nextID("notification")
	s.notifications = append(s.notifications, *n)
	return nil
}

func (s *memStore) paymentCount(bookingID string, status models.PaymentStatus) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, p := range s.payments {
		if p.BookingID == bookingID && p.PaymentStatus == status {
			n++
		}
	}
	return n
}

func (s *memStore) booking(id string) models.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bookings[id]
}

// fixture seeds one user, one property with a 750000 room (2 guests) and a 950000 room (4 guests).
type fixture struct {
	store      *memStore
	userID     string
	otherID    string
	propertyID string
	roomID     string
	familyID   string
}

func newFixture() fixture {
	s := newMemStore()
	s.users["user-1"] = models.User{Model: models.Model{ID: "user-1"}, FullName: "Sari Wulandari", Email: "sari@example.com", Role: models.RoleUser}
	s.users["user-2"] = models.User{Model: models.Model{ID: "user-2"}, FullName: "Budi", Email: "budi@example.com", Role: models.RoleUser}
	s.properties["prop-1"] = models.Property{
		Model:    models.Model{ID: "prop-1"},
		Title:    "Villa Kemang",
		Location: &models.Location{City: "Jakarta", Country: "Indonesia", Address: "Jl. Kemang Raya 1"},
	}
	s.rooms["room-1"] = models.Room{Model: models.Model{ID: "room-1"}, PropertyID: "prop-1", Name: "Standard Room", MaxGuests: 2, BasePricePerNightIdr: 750000}
	s.rooms["room-2"] = models.Room{Model: models.Model{ID: "room-2"}, PropertyID: "prop-1", Name: "Family Room", MaxGuests: 4, BasePricePerNightIdr: 950000,
		Facilities: []models.Facility{{Model: models.Model{ID: "fac-1"}, Name: "Free WiFi"}}}
	return fixture{store: s, userID: "user-1", otherID: "user-2", propertyID: "prop-1", roomID: "room-1", familyID: "room-2"}
}

// addBooking stores a booking directly, bypassing validation.
func (f fixture) addBooking(id, roomID string, in, out time.Time, status models.BookingStatus) {
	r := roomID
	f.store.bookings[id] = models.Booking{
		Model:        models.Model{ID: id, CreatedAt: time.Now()},
		UserID:       f.userID,
		PropertyID:   f.propertyID,
		RoomID:       &r,
		CheckInDate:  in,
		CheckOutDate: out,
		Status:       status,
	}
}

type fakeGateway struct {
	mu        sync.Mutex
	requests  []gateway.CheckoutRequest
	err       error
	status    *gateway.Notification
	statusErr error
}

func (g *fakeGateway) CreateCheckout(_ context.Context, req gateway.CheckoutRequest) (*gateway.CheckoutSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests = append(g.requests, req)
	if g.err != nil {
		return nil, g.err
	}
	return &gateway.CheckoutSession{Token: "snap-" + req.OrderID, RedirectURL: "https://pay.example.com/" + req.OrderID}, nil
}

func (g *fakeGateway) TransactionStatus(_ context.Context, orderID string) (*gateway.Notification, error) {
	if g.statusErr != nil {
		return nil, g.statusErr
	}
	n := *g.status
	return &n, nil
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []InvoiceMessage
}

func (n *fakeNotifier) NotifyInvoice(msg InvoiceMessage) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

// fixedNow is the clock every service test runs at.
var fixedNow = time.Date(2025, 5, 20, 10, 0, 0, 0, time.UTC)
