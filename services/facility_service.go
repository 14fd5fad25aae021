package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"

	"booking-backend/models"
)

type FacilityInput struct {
	Name string  `validate:"required,max=100"`
	Icon *string `validate:"omitempty,max=100"`
}

type FacilityService struct {
	DB *gorm.DB
}

func NewFacilityService(db *gorm.DB) *FacilityService {
	return &FacilityService{DB: db}
}

func (s *FacilityService) List(ctx context.Context) ([]models.Facility, error) {
	var out []models.Facility
	if err := s.DB.WithContext(ctx).Order("name ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list facilities: %w", err)
	}
	return out, nil
}

func (s *FacilityService) Create(ctx context.Context, in FacilityInput) (*models.Facility, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validate.Struct(in); err != nil {
		return nil, validationError("invalid facility: %v", err)
	}
	if err := uniqueName(ctx, s.DB, &models.Facility{}, in.Name, "", "facility"); err != nil {
		return nil, err
	}
	f := models.Facility{Name: in.Name, Icon: in.Icon}
	if err := s.DB.WithContext(ctx).Create(&f).Error; err != nil {
		return nil, persistError(err, "facility")
	}
	return &f, nil
}

func (s *FacilityService) Update(ctx context.Context, id string, in FacilityInput) (*models.Facility, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validate.Struct(in); err != nil {
		return nil, validationError("invalid facility: %v", err)
	}
	var f models.Facility
	if err := s.DB.WithContext(ctx).First(&f, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "facility")
	}
	if err := uniqueName(ctx, s.DB, &models.Facility{}, in.Name, id, "facility"); err != nil {
		return nil, err
	}
	f.Name, f.Icon = in.Name, in.Icon
	if err := s.DB.WithContext(ctx).Save(&f).Error; err != nil {
		return nil, persistError(err, "facility")
	}
	return &f, nil
}

// Delete refuses while any room or property still lists the facility.
func (s *FacilityService) Delete(ctx context.Context, id string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var f models.Facility
		if err := tx.First(&f, "id = ?", id).Error; err != nil {
			return notFoundOr(err, "facility")
		}
		for _, table := range []string{"room_facilities", "property_facilities"} {
			var n int64
			if err := tx.Table(table).Where("facility_id = ?", id).Count(&n).Error; err != nil {
				return fmt.Errorf("failed to check facility usage: %w", err)
			}
			if n > 0 {
				return conflict("facility %q is still in use", f.Name)
			}
		}
		return tx.Delete(&f).Error
	})
}

// loadFacilities resolves ids to facilities and fails if any id is unknown.
func loadFacilities(ctx context.Context, db *gorm.DB, ids []string) ([]models.Facility, error) {
	if len(ids) == 0 {
		return []models.Facility{}, nil
	}
	var found []models.Facility
	if err := db.WithContext(ctx).Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, fmt.Errorf("failed to load facilities: %w", err)
	}
	if len(found) == len(ids) {
		return found, nil
	}
	known := make(map[string]bool, len(found))
	for _, f := range found {
		known[f.ID] = true
	}
	var missing []string
	for _, id := range ids {
		if !known[id] {
			missing = append(missing, id)
		}
	}
	sort.Strings(missing)
	return nil, validationError("unknown facility ids: %s", strings.Join(missing, ", "))
}

// uniqueName fails with CONFLICT when another live row of model already uses name.
func uniqueName(ctx context.Context, db *gorm.DB, model any, name, exceptID, what string) error {
	q := db.WithContext(ctx).Model(model).Where("LOWER(name) = ?", strings.ToLower(name))
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return fmt.Errorf("failed to check %s name: %w", what, err)
	}
	if n > 0 {
		return conflict("%s %q already exists", what, name)
	}
	return nil
}
