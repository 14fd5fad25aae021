package services

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"booking-backend/models"
)

type RoomInput struct {
	PropertyID           string `validate:"required"`
	Name                 string `validate:"required,max=150"`
	Description          string
	MaxGuests            int   `validate:"gte=1"`
	Beds                 int   `validate:"gte=0"`
	Bathrooms            int   `validate:"gte=0"`
	BasePricePerNightIdr int64 `validate:"gte=0"`
	FacilityIDs          []string
}

type RoomService struct {
	DB *gorm.DB
}

func NewRoomService(db *gorm.DB) *RoomService {
	return &RoomService{DB: db}
}

func (s *RoomService) List(ctx context.Context, propertyID string) ([]models.Room, error) {
	q := s.DB.WithContext(ctx).Preload("Facilities").Order("created_at ASC")
	if propertyID != "" {
		q = q.Where("property_id = ?", propertyID)
	}
	var rooms []models.Room
	if err := q.Find(&rooms).Error; err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	return rooms, nil
}

func (s *RoomService) Get(ctx context.Context, id string) (*models.Room, error) {
	var room models.Room
	if err := s.DB.WithContext(ctx).Preload("Facilities").First(&room, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "room")
	}
	return &room, nil
}

func (s *RoomService) Create(ctx context.Context, in RoomInput) (*models.Room, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validate.Struct(in); err != nil {
		return nil, validationError("invalid room: %v", err)
	}
	var room models.Room
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireProperty(ctx, tx, in.PropertyID); err != nil {
			return err
		}
		facilities, err := loadFacilities(ctx, tx, in.FacilityIDs)
		if err != nil {
			return err
		}
		fillRoom(&room, in)
		room.Facilities = facilities
		return tx.Create(&room).Error
	})
	if err != nil {
		return nil, persistError(err, "room")
	}
	return s.Get(ctx, room.ID)
}

// Update rewrites the room and swaps its facility links in one transaction.
func (s *RoomService) Update(ctx context.Context, id string, in RoomInput) (*models.Room, error) {
	in.Name = strings.TrimSpace(in.Name)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var room models.Room
		if err := tx.First(&room, "id = ?", id).Error; err != nil {
			return notFoundOr(err, "room")
		}
		if in.PropertyID == "" {
			in.PropertyID = room.PropertyID
		}
		if err := validate.Struct(in); err != nil {
			return validationError("invalid room: %v", err)
		}
		if in.PropertyID != room.PropertyID {
			if err := requireProperty(ctx, tx, in.PropertyID); err != nil {
				return err
			}
		}
		facilities, err := loadFacilities(ctx, tx, in.FacilityIDs)
		if err != nil {
			return err
		}
		fillRoom(&room, in)
		if err := tx.Omit(clause.Associations).Save(&room).Error; err != nil {
			return err
		}
		return tx.Model(&room).Association("Facilities").Replace(facilities)
	})
	if err != nil {
		return nil, persistError(err, "room")
	}
	return s.Get(ctx, id)
}

// Delete soft-deletes the room unless it has bookings awaiting payment or confirmed.
func (s *RoomService) Delete(ctx context.Context, id string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var room models.Room
		if err := tx.First(&room, "id = ?", id).Error; err != nil {
			return notFoundOr(err, "room")
		}
		var active int64
		if err := tx.Model(&models.Booking{}).
			Where("room_id = ? AND status IN ?", id, models.ActiveStatuses).
			Count(&active).Error; err != nil {
			return fmt.Errorf("failed to check bookings: %w", err)
		}
		if active > 0 {
			return conflict("room has %d active bookings", active)
		}
		return tx.Delete(&room).Error
	})
}

func requireProperty(ctx context.Context, tx *gorm.DB, id string) error {
	var n int64
	if err := tx.WithContext(ctx).Model(&models.Property{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return fmt.Errorf("failed to load property: %w", err)
	}
	if n == 0 {
		return notFound("property")
	}
	return nil
}

func fillRoom(r *models.Room, in RoomInput) {
	r.PropertyID = in.PropertyID
	r.Name = in.Name
	r.Description = in.Description
	r.MaxGuests = in.MaxGuests
	r.Beds = in.Beds
	r.Bathrooms = in.Bathrooms
	r.BasePricePerNightIdr = in.BasePricePerNightIdr
}
