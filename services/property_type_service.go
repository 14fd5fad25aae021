package services

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"booking-backend/models"
)

type PropertyTypeService struct {
	DB *gorm.DB
}

func NewPropertyTypeService(db *gorm.DB) *PropertyTypeService {
	return &PropertyTypeService{DB: db}
}

func (s *PropertyTypeService) List(ctx context.Context) ([]models.PropertyType, error) {
	var types []models.PropertyType
	if err := s.DB.WithContext(ctx).Order("name ASC").Find(&types).Error; err != nil {
		return nil, fmt.Errorf("failed to list property types: %w", err)
	}
	return types, nil
}

func (s *PropertyTypeService) Create(ctx context.Context, name string) (*models.PropertyType, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 100 {
		return nil, validationError("name is required and must be at most 100 characters")
	}
	if err := uniqueName(ctx, s.DB, &models.PropertyType{}, name, "", "property type"); err != nil {
		return nil, err
	}
	pt := models.PropertyType{Name: name}
	if err := s.DB.WithContext(ctx).Create(&pt).Error; err != nil {
		return nil, persistError(err, "property type")
	}
	return &pt, nil
}

func (s *PropertyTypeService) Update(ctx context.Context, id, name string) (*models.PropertyType, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 100 {
		return nil, validationError("name is required and must be at most 100 characters")
	}
	var pt models.PropertyType
	if err := s.DB.WithContext(ctx).First(&pt, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "property type")
	}
	if err := uniqueName(ctx, s.DB, &models.PropertyType{}, name, id, "property type"); err != nil {
		return nil, err
	}
	pt.Name = name
	if err := s.DB.WithContext(ctx).Save(&pt).Error; err != nil {
		return nil, persistError(err, "property type")
	}
	return &pt, nil
}

func (s *PropertyTypeService) Delete(ctx context.Context, id string) error {
	var n int64
	if err := s.DB.WithContext(ctx).Model(&models.Property{}).Where("type_id = ?", id).Count(&n).Error; err != nil {
		return fmt.Errorf("failed to check property type usage: %w", err)
	}
	if n > 0 {
		return conflict("property type is used by %d properties", n)
	}
	res := s.DB.WithContext(ctx).Delete(&models.PropertyType{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete property type: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound("property type")
	}
	return nil
}
