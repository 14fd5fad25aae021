package config

import (
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"booking-backend/models"
)

func ConnectDatabase(cfg *Config, logger *slog.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case DriverPostgres:
		dialector = postgres.Open(cfg.DSN)
	default:
		dialector = mysql.Open(cfg.DSN)
	}

	level := gormlogger.Info
	if cfg.IsProduction() {
		level = gormlogger.Warn
	}
	newLogger := gormlogger.New(
		slog.NewLogLogger(logger.Handler(), slog.LevelDebug),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:  newLogger,
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if cfg.AutoMigrate {
		if err := Migrate(db); err != nil {
			return nil, fmt.Errorf("auto migrate: %w", err)
		}
	}
	if cfg.Seed {
		if err := SeedDatabase(db, logger); err != nil {
			return nil, fmt.Errorf("seed: %w", err)
		}
	}
	return db, nil
}

// Migrate creates or updates every table, parents before children.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.PropertyType{},
		&models.Location{},
		&models.Facility{},
		&models.Property{},
		&models.Room{},
		&models.PeakSeasonRate{},
		&models.Booking{},
		&models.NightlyRate{},
		&models.Payment{},
		&models.EmailNotification{},
	)
}

// SeedDatabase inserts demo data. Each block is skipped when its table already has rows.
func SeedDatabase(db *gorm.DB, logger *slog.Logger) error {
	// ---------------- Users ----------------
	var userCount int64
	if err := db.Model(&models.User{}).Count(&userCount).Error; err != nil {
		return err
	}
	if userCount == 0 {
		users := []struct {
			name, email, password string
			role                  models.Role
		}{
			{"Admin User", "admin@example.com", "admin123", models.RoleAdmin},
			{"Demo Guest", "user@example.com", "user123", models.RoleUser},
		}
		for _, u := range users {
			hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
			if err != nil {
				return fmt.Errorf("hash password for %s: %w", u.email, err)
			}
			row := models.User{FullName: u.name, Email: u.email, PasswordHash: string(hash), Role: u.role}
			if err := db.Create(&row).Error; err != nil {
				return err
			}
		}
		logger.Info("users seeded")
	}

	// ---------------- PropertyTypes ----------------
	var typeCount int64
	if err := db.Model(&models.PropertyType{}).Count(&typeCount).Error; err != nil {
		return err
	}
	if typeCount == 0 {
		types := []models.PropertyType{{Name: "Apartment"}, {Name: "House"}, {Name: "Villa"}}
		if err := db.Create(&types).Error; err != nil {
			return err
		}
		logger.Info("property types seeded")
	}

	// ---------------- Facilities ----------------
	var facilityCount int64
	if err := db.Model(&models.Facility{}).Count(&facilityCount).Error; err != nil {
		return err
	}
	if facilityCount == 0 {
		names := []string{"Free WiFi", "Air Conditioning", "Parking", "Swimming Pool", "Kitchen"}
		facilities := make([]models.Facility, 0, len(names))
		for _, n := range names {
			facilities = append(facilities, models.Facility{Name: n})
		}
		if err := db.Create(&facilities).Error; err != nil {
			return err
		}
		logger.Info("facilities seeded")
	}

	// ---------------- Locations ----------------
	var locationCount int64
	if err := db.Model(&models.Location{}).Count(&locationCount).Error; err != nil {
		return err
	}
	if locationCount == 0 {
		loc := models.Location{Country: "Indonesia", City: "Jakarta", Address: "Jl. Kemang Raya No. 1"}
		if err := db.Create(&loc).Error; err != nil {
			return err
		}
		logger.Info("locations seeded")
	}

	// ---------------- Properties ----------------
	var propertyCount int64
	if err := db.Model(&models.Property{}).Count(&propertyCount).Error; err != nil {
		return err
	}
	if propertyCount > 0 {
		return nil
	}

	var admin models.User
	if err := db.Where("role = ?", models.RoleAdmin).Order("created_at ASC").First(&admin).Error; err != nil {
		return fmt.Errorf("no admin to own the demo property: %w", err)
	}
	var villa models.PropertyType
	if err := db.Where("name = ?", "Villa").First(&villa).Error; err != nil {
		return err
	}
	var jakarta models.Location
	if err := db.Where("city = ?", "Jakarta").First(&jakarta).Error; err != nil {
		return err
	}
	var facilities []models.Facility
	if err := db.Where("name IN ?", []string{"Free WiFi", "Air Conditioning", "Parking"}).Find(&facilities).Error; err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		property := models.Property{
			AdminUserID:          admin.ID,
			Title:                "Villa Kemang",
			Description:          "Quiet villa in South Jakarta with a private garden.",
			TypeID:               villa.ID,
			LocationID:           jakarta.ID,
			MaxGuests:            6,
			Bedrooms:             3,
			Beds:                 3,
			Bathrooms:            2,
			MinNights:            1,
			BasePricePerNightIdr: 750000,
			Status:               models.PropertyActive,
			Facilities:           facilities,
		}
		if err := tx.Create(&property).Error; err != nil {
			return err
		}

		rooms := []models.Room{
			{PropertyID: property.ID, Name: "Standard Room", Description: "Queen bed, garden view.", MaxGuests: 2, Beds: 1, Bathrooms: 1, BasePricePerNightIdr: 750000, Facilities: facilities[:min(2, len(facilities))]},
			{PropertyID: property.ID, Name: "Family Room", Description: "Two queen beds and a sofa.", MaxGuests: 4, Beds: 2, Bathrooms: 1, BasePricePerNightIdr: 950000, Facilities: facilities},
		}
		if err := tx.Create(&rooms).Error; err != nil {
			return err
		}
		logger.Info("demo property seeded", "property_id", property.ID)
		return nil
	})
}
