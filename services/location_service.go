package services

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"booking-backend/models"
)

type LocationInput struct {
	Country string `validate:"required,max=100"`
	City    string `validate:"required,max=100"`
	Address string `validate:"max=255"`
}

type LocationService struct {
	DB *gorm.DB
}

func NewLocationService(db *gorm.DB) *LocationService {
	return &LocationService{DB: db}
}

func (s *LocationService) List(ctx context.Context, city string) ([]models.Location, error) {
	q := s.DB.WithContext(ctx).Order("country ASC, city ASC")
	if city = strings.TrimSpace(city); city != "" {
		q = q.Where("LOWER(city) = ?", strings.ToLower(city))
	}
	var out []models.Location
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	return out, nil
}

func (s *LocationService) Create(ctx context.Context, in LocationInput) (*models.Location, error) {
	in = trimLocation(in)
	if err := validate.Struct(in); err != nil {
		return nil, validationError("invalid location: %v", err)
	}
	loc := models.Location{Country: in.Country, City: in.City, Address: in.Address}
	if err := s.DB.WithContext(ctx).Create(&loc).Error; err != nil {
		return nil, persistError(err, "location")
	}
	return &loc, nil
}

func (s *LocationService) Update(ctx context.Context, id string, in LocationInput) (*models.Location, error) {
	in = trimLocation(in)
	if err := validate.Struct(in); err != nil {
		return nil, validationError("invalid location: %v", err)
	}
	var loc models.Location
	if err := s.DB.WithContext(ctx).First(&loc, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "location")
	}
	loc.Country, loc.City, loc.Address = in.Country, in.City, in.Address
	if err := s.DB.WithContext(ctx).Save(&loc).Error; err != nil {
		return nil, persistError(err, "location")
	}
	return &loc, nil
}

func (s *LocationService) Delete(ctx context.Context, id string) error {
	var n int64
	if err := s.DB.WithContext(ctx).Model(&models.Property{}).Where("location_id = ?", id).Count(&n).Error; err != nil {
		return fmt.Errorf("failed to check location usage: %w", err)
	}
	if n > 0 {
		return conflict("location is used by %d properties", n)
	}
	res := s.DB.WithContext(ctx).Delete(&models.Location{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete location: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound("location")
	}
	return nil
}

func trimLocation(in LocationInput) LocationInput {
	in.Country = strings.TrimSpace(in.Country)
	in.City = strings.TrimSpace(in.City)
	in.Address = strings.TrimSpace(in.Address)
	return in
}
