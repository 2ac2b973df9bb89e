package interfaces

import (
	"context"
	"time"

	"github.com/vladimiradmaev/bp-assistant/internal/database"
	"github.com/vladimiradmaev/bp-assistant/internal/services"
)

// UserServiceInterface defines the contract for user operations
type UserServiceInterface interface {
	RegisterUser(ctx context.Context, telegramID int64, username, firstName, lastName string) (*database.User, error)
	GetUserByTelegramID(ctx context.Context, telegramID int64) (*database.User, error)
}

// CaptureServiceInterface defines the contract for the capture pipeline
type CaptureServiceInterface interface {
	Capture(ctx context.Context, userID uint, imageData []byte) (*services.CaptureResult, error)
	Confirm(ctx context.Context, userID uint) (*database.Reading, error)
	Cancel(userID uint) bool
}

// ReadingServiceInterface defines the contract for reading operations
type ReadingServiceInterface interface {
	Create(ctx context.Context, userID uint, input services.ReadingInput) (*database.Reading, error)
	Get(ctx context.Context, userID uint, id uint) (*database.Reading, error)
	ListAll(ctx context.Context, userID uint) ([]database.Reading, error)
	ListByDateRange(ctx context.Context, userID uint, start, end time.Time) ([]database.Reading, error)
	Update(ctx context.Context, userID uint, id uint, patch services.ReadingPatch) (*database.Reading, error)
	Delete(ctx context.Context, userID uint, id uint) error
}

// ProfileServiceInterface defines the contract for profile operations
type ProfileServiceInterface interface {
	Upsert(ctx context.Context, userID uint, input services.ProfileInput) (*database.UserProfile, error)
	Get(ctx context.Context, userID uint) (*database.UserProfile, error)
}

// ReminderServiceInterface defines the contract for reminder operations
type ReminderServiceInterface interface {
	ScheduleDaily(ctx context.Context, userID uint, hour, minute int) (*database.Reminder, error)
	ScheduleWeekly(ctx context.Context, userID uint, weekday time.Weekday, hour, minute int) (*database.Reminder, error)
	Cancel(ctx context.Context, userID uint, id uint) error
	List(ctx context.Context, userID uint) ([]database.Reminder, error)
}
