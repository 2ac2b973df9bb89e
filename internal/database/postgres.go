package database

import (
	"fmt"
	"path/filepath"
	"runtime"
	"time"

	"github.com/vladimiradmaev/bp-assistant/internal/config"
	"github.com/vladimiradmaev/bp-assistant/internal/database/migrations"
	"github.com/vladimiradmaev/bp-assistant/internal/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	TelegramID int64 `gorm:"uniqueIndex"`
	Username   string
	FirstName  string
	LastName   string
}

// Reading is a single blood pressure measurement extracted from a photo
// or entered after a low-confidence confirmation. Timestamp is the moment
// the analysis completed, not the moment the photo was taken.
type Reading struct {
	gorm.Model
	UserID    uint `gorm:"index"`
	User      User
	Systolic  int
	Diastolic int
	Pulse     int
	Timestamp time.Time `gorm:"index"`
	ImageURL  string
	Notes     string
}

// UserProfile holds per-user health details, at most one row per user.
type UserProfile struct {
	gorm.Model
	UserID                uint `gorm:"uniqueIndex"`
	User                  User
	DateOfBirth           *time.Time
	WeightKg              float64
	HeightCm              float64
	Gender                string   // male, female, other, prefer_not_to_say
	Conditions            []string `gorm:"serializer:json"`
	Medications           []string `gorm:"serializer:json"`
	EmergencyContactName  string
	EmergencyContactPhone string
}

// Reminder is a recurring measurement reminder delivered via chat message.
type Reminder struct {
	gorm.Model
	UserID  uint `gorm:"index"`
	User    User
	Kind    string // "daily" or "weekly"
	Hour    int
	Minute  int
	Weekday int // 0 = Sunday, weekly reminders only
	Enabled bool `gorm:"default:true"`
}

func NewPostgresDB(cfg config.DBConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Auto-migrate first so SQL migrations can alter existing tables
	if err := db.AutoMigrate(&User{}, &Reading{}, &UserProfile{}, &Reminder{}); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return nil, fmt.Errorf("failed to get current file path")
	}
	migrationsDir := filepath.Join(filepath.Dir(filename), "migrations")

	if err := migrations.LoadSQLMigrations(db, migrationsDir); err != nil {
		return nil, fmt.Errorf("failed to load migrations: %w", err)
	}

	if err := migrations.RunMigrations(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("Database connection established and migrations completed")
	return db, nil
}
