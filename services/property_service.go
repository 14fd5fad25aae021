package services

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"booking-backend/models"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// PropertyFilter narrows a property listing. Nil fields do not filter.
type PropertyFilter struct {
	Status      *models.PropertyStatus
	LocationID  *string
	TypeID      *string
	AdminUserID *string
	MinPrice    *int64
	MaxPrice    *int64
	MinGuests   *int
	Page        int
	Limit       int
}

func (f PropertyFilter) apply(q *gorm.DB) *gorm.DB {
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	if f.LocationID != nil {
		q = q.Where("location_id = ?", *f.LocationID)
	}
	if f.TypeID != nil {
		q = q.Where("type_id = ?", *f.TypeID)
	}
	if f.AdminUserID != nil {
		q = q.Where("admin_user_id = ?", *f.AdminUserID)
	}
	if f.MinPrice != nil {
		q = q.Where("base_price_per_night_idr >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("base_price_per_night_idr <= ?", *f.MaxPrice)
	}
	if f.MinGuests != nil {
		q = q.Where("max_guests >= ?", *f.MinGuests)
	}
	return q
}

// Normalize clamps paging to sane values.
func (f PropertyFilter) Normalize() PropertyFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = defaultPageSize
	}
	if f.Limit > maxPageSize {
		f.Limit = maxPageSize
	}
	return f
}

type PropertyInput struct {
	AdminUserID          string `validate:"required"`
	Title                string `validate:"required,max=200"`
	Description          string
	TypeID               string `validate:"required"`
	LocationID           string `validate:"required"`
	MaxGuests            int    `validate:"gte=1"`
	Bedrooms             int    `validate:"gte=0"`
	Beds                 int    `validate:"gte=0"`
	Bathrooms            int    `validate:"gte=0"`
	MinNights            int    `validate:"gte=1"`
	MaxNights            *int   `validate:"omitempty,gte=1"`
	BasePricePerNightIdr int64  `validate:"gte=0"`
	Status               models.PropertyStatus
	FacilityIDs          []string
}

func (in *PropertyInput) check() error {
	in.Title = strings.TrimSpace(in.Title)
	if in.Status == "" {
		in.Status = models.PropertyDraft
	}
	if err := validate.Struct(in); err != nil {
		return validationError("invalid property: %v", err)
	}
	if !in.Status.Valid() {
		return validationError("status must be DRAFT, ACTIVE or INACTIVE")
	}
	if in.MaxNights != nil && *in.MaxNights < in.MinNights {
		return validationError("maxNights must not be less than minNights")
	}
	return nil
}

type PropertyService struct {
	DB *gorm.DB
}

func NewPropertyService(db *gorm.DB) *PropertyService {
	return &PropertyService{DB: db}
}

func (s *PropertyService) List(ctx context.Context, f PropertyFilter) ([]models.Property, int64, error) {
	f = f.Normalize()
	base := f.apply(s.DB.WithContext(ctx).Model(&models.Property{}))

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count properties: %w", err)
	}

	var out []models.Property
	err := base.Session(&gorm.Session{}).
		Preload("Type").Preload("Location").Preload("Facilities").
		Order("created_at DESC").
		Offset((f.Page - 1) * f.Limit).Limit(f.Limit).
		Find(&out).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list properties: %w", err)
	}
	return out, total, nil
}

func (s *PropertyService) Get(ctx context.Context, id string) (*models.Property, error) {
	var p models.Property
	err := s.DB.WithContext(ctx).
		Preload("Type").Preload("Location").Preload("Facilities").
		Preload("Rooms").Preload("Rooms.Facilities").
		First(&p, "id = ?", id).Error
	if err != nil {
		return nil, notFoundOr(err, "property")
	}
	return &p, nil
}

func (s *PropertyService) Create(ctx context.Context, in PropertyInput) (*models.Property, error) {
	if err := in.check(); err != nil {
		return nil, err
	}
	p := models.Property{AdminUserID: in.AdminUserID}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.checkRefs(ctx, tx, in); err != nil {
			return err
		}
		facilities, err := loadFacilities(ctx, tx, in.FacilityIDs)
		if err != nil {
			return err
		}
		fillProperty(&p, in)
		p.Facilities = facilities
		return tx.Create(&p).Error
	})
	if err != nil {
		return nil, persistError(err, "property")
	}
	return s.Get(ctx, p.ID)
}

// Update replaces every editable field and the facility list. The owning admin never changes.
func (s *PropertyService) Update(ctx context.Context, id string, in PropertyInput) (*models.Property, error) {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.Property
		if err := tx.First(&p, "id = ?", id).Error; err != nil {
			return notFoundOr(err, "property")
		}
		in.AdminUserID = p.AdminUserID
		if err := in.check(); err != nil {
			return err
		}
		if err := s.checkRefs(ctx, tx, in); err != nil {
			return err
		}
		facilities, err := loadFacilities(ctx, tx, in.FacilityIDs)
		if err != nil {
			return err
		}
		fillProperty(&p, in)
		if err := tx.Omit(clause.Associations).Save(&p).Error; err != nil {
			return err
		}
		return tx.Model(&p).Association("Facilities").Replace(facilities)
	})
	if err != nil {
		return nil, persistError(err, "property")
	}
	return s.Get(ctx, id)
}

// Delete soft-deletes the property and its rooms unless a room still has an active booking.
func (s *PropertyService) Delete(ctx context.Context, id string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.Property
		if err := tx.First(&p, "id = ?", id).Error; err != nil {
			return notFoundOr(err, "property")
		}
		var active int64
		if err := tx.Model(&models.Booking{}).
			Where("property_id = ? AND status IN ?", id, models.ActiveStatuses).
			Count(&active).Error; err != nil {
			return fmt.Errorf("failed to check bookings: %w", err)
		}
		if active > 0 {
			return conflict("property has %d active bookings", active)
		}
		if err := tx.Where("property_id = ?", id).Delete(&models.Room{}).Error; err != nil {
			return fmt.Errorf("failed to delete rooms: %w", err)
		}
		return tx.Delete(&p).Error
	})
}

func (s *PropertyService) checkRefs(ctx context.Context, tx *gorm.DB, in PropertyInput) error {
	checks := []struct {
		model any
		id    string
		what  string
	}{
		{&models.User{}, in.AdminUserID, "admin user"},
		{&models.PropertyType{}, in.TypeID, "property type"},
		{&models.Location{}, in.LocationID, "location"},
	}
	for _, c := range checks {
		var n int64
		if err := tx.WithContext(ctx).Model(c.model).Where("id = ?", c.id).Count(&n).Error; err != nil {
			return fmt.Errorf("failed to load %s: %w", c.what, err)
		}
		if n == 0 {
			return notFound(c.what)
		}
	}
	return nil
}

func fillProperty(p *models.Property, in PropertyInput) {
	p.Title = in.Title
	p.Description = in.Description
	p.TypeID = in.TypeID
	p.LocationID = in.LocationID
	p.MaxGuests = in.MaxGuests
	p.Bedrooms = in.Bedrooms
	p.Beds = in.Beds
	p.Bathrooms = in.Bathrooms
	p.MinNights = in.MinNights
	p.MaxNights = in.MaxNights
	p.BasePricePerNightIdr = in.BasePricePerNightIdr
	p.Status = in.Status
}
