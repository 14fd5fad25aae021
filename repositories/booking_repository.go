package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"booking-backend/models"
	"booking-backend/services"
)

// BookingRepository is the gorm-backed services.BookingStore.
type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

var _ services.BookingStore = (*BookingRepository)(nil)

func (r *BookingRepository) Transaction(ctx context.Context, fn func(tx services.BookingStore) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&BookingRepository{db: tx})
	})
}

func (r *BookingRepository) conn(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx)
}

func (r *BookingRepository) FindUser(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := r.conn(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *BookingRepository) FindProperty(ctx context.Context, id string) (*models.Property, error) {
	var p models.Property
	if err := r.conn(ctx).Preload("Location").First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *BookingRepository) FindRoom(ctx context.Context, id string) (*models.Room, error) {
	var room models.Room
	if err := r.conn(ctx).First(&room, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *BookingRepository) LockRoom(ctx context.Context, id string) (*models.Room, error) {
	var room models.Room
	err := r.conn(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&room, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *BookingRepository) ListPropertyRooms(ctx context.Context, propertyID string, minGuests int) ([]models.Room, error) {
	q := r.conn(ctx).Preload("Facilities").Where("property_id = ?", propertyID)
	if minGuests > 0 {
		q = q.Where("max_guests >= ?", minGuests)
	}
	var rooms []models.Room
	if err := q.Order("base_price_per_night_idr ASC, created_at ASC").Find(&rooms).Error; err != nil {
		return nil, err
	}
	return rooms, nil
}

func (r *BookingRepository) ActivePeakRates(ctx context.Context, roomID string, from, to time.Time) ([]models.PeakSeasonRate, error) {
	var rates []models.PeakSeasonRate
	err := r.conn(ctx).
		Where("room_id = ? AND is_active = ?", roomID, true).
		Where("start_date <= ? AND end_date >= ?", to, from).
		Order("created_at ASC, id ASC").
		Find(&rates).Error
	return rates, err
}

// overlapping selects bookings holding the room on some night of [checkIn, checkOut).
func overlapping(db *gorm.DB, checkIn, checkOut time.Time) *gorm.DB {
	return db.Model(&models.Booking{}).
		Where("status NOT IN ?", models.ReleasedStatuses).
		Where("check_in_date < ? AND check_out_date > ?", checkOut, checkIn)
}

func (r *BookingRepository) HasOverlappingBooking(ctx context.Context, q services.OverlapQuery) (bool, error) {
	tx := overlapping(r.conn(ctx), q.CheckIn, q.CheckOut).Where("room_id = ?", q.RoomID)
	if q.ExcludeBookingID != "" {
		tx = tx.Where("id <> ?", q.ExcludeBookingID)
	}
	var n int64
	if err := tx.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *BookingRepository) OccupiedRoomIDs(ctx context.Context, roomIDs []string, checkIn, checkOut time.Time) (map[string]bool, error) {
	var ids []string
	err := overlapping(r.conn(ctx), checkIn, checkOut).
		Where("room_id IN ?", roomIDs).
		Distinct().
		Pluck("room_id", &ids).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

func (r *BookingRepository) CreateBooking(ctx context.Context, b *models.Booking) error {
	return r.conn(ctx).Omit("User", "Property", "Room").Create(b).Error
}

func (r *BookingRepository) FindBooking(ctx context.Context, id string) (*models.Booking, error) {
	var b models.Booking
	err := r.conn(ctx).
		Preload("User").
		Preload("Property").
		Preload("Property.Location").
		Preload("Room").
		Preload("NightlyRates", func(db *gorm.DB) *gorm.DB { return db.Order("date ASC") }).
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("requested_at DESC") }).
		First(&b, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookingRepository) LockBooking(ctx context.Context, id string) (*models.Booking, error) {
	var b models.Booking
	err := r.conn(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&b, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookingRepository) ListUserBookings(ctx context.Context, userID string) ([]models.Booking, error) {
	var bookings []models.Booking
	err := r.conn(ctx).
		Preload("Property").
		Preload("Property.Location").
		Preload("Room").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&bookings).Error
	if err != nil || len(bookings) == 0 {
		return bookings, err
	}

	// attach only the latest payment of each booking
	ids := make([]string, len(bookings))
	for i, b := range bookings {
		ids[i] = b.ID
	}
	var payments []models.Payment
	if err := r.conn(ctx).Where("booking_id IN ?", ids).Order("requested_at DESC").Find(&payments).Error; err != nil {
		return nil, err
	}
	latest := make(map[string]models.Payment, len(ids))
	for _, p := range payments {
		if _, seen := latest[p.BookingID]; !seen {
			latest[p.BookingID] = p
		}
	}
	for i := range bookings {
		if p, ok := latest[bookings[i].ID]; ok {
			bookings[i].Payments = []models.Payment{p}
		}
	}
	return bookings, nil
}

func (r *BookingRepository) SaveBooking(ctx context.Context, b *models.Booking) error {
	return r.conn(ctx).Omit(clause.Associations).Save(b).Error
}

func (r *BookingRepository) LockOverdueBookings(ctx context.Context, now time.Time) ([]models.Booking, error) {
	var bookings []models.Booking
	err := r.conn(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("status IN ?", []models.BookingStatus{models.BookingWaitingPayment, models.BookingWaitingConfirmation}).
		Where("payment_due_at IS NOT NULL AND payment_due_at < ?", now).
		Find(&bookings).Error
	return bookings, err
}

func (r *BookingRepository) FindPaymentByProviderTxID(ctx context.Context, txID string) (*models.Payment, error) {
	var p models.Payment
	if err := r.conn(ctx).First(&p, "provider_tx_id = ?", txID).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *BookingRepository) LatestPayment(ctx context.Context, bookingID string) (*models.Payment, error) {
	var p models.Payment
	err := r.conn(ctx).
		Where("booking_id = ?", bookingID).
		Order("requested_at DESC").
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *BookingRepository) CreatePayment(ctx context.Context, p *models.Payment) error {
	return r.conn(ctx).Create(p).Error
}

func (r *BookingRepository) SavePayment(ctx context.Context, p *models.Payment) error {
	return r.conn(ctx).Save(p).Error
}

func (r *BookingRepository) HasSuccessfulPayment(ctx context.Context, bookingID, exceptPaymentID string) (bool, error) {
	q := r.conn(ctx).Model(&models.Payment{}).
		Where("booking_id = ? AND payment_status = ?", bookingID, models.PaymentSuccess)
	if exceptPaymentID != "" {
		q = q.Where("id <> ?", exceptPaymentID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *BookingRepository) FailPendingPayments(ctx context.Context, bookingID string, at time.Time) error {
	return r.conn(ctx).Model(&models.Payment{}).
		Where("booking_id = ? AND payment_status = ?", bookingID, models.PaymentPending).
		Updates(map[string]interface{}{"payment_status": models.PaymentFailed, "failed_at": at}).Error
}

func (r *BookingRepository) CreateNotification(ctx context.Context, n *models.EmailNotification) error {
	return r.conn(ctx).Create(n).Error
}
