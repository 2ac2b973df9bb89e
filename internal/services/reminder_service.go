package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/vladimiradmaev/bp-assistant/internal/database"
	apperrors "github.com/vladimiradmaev/bp-assistant/internal/errors"
	"github.com/vladimiradmaev/bp-assistant/internal/logger"
	"gorm.io/gorm"
)

const (
	ReminderKindDaily  = "daily"
	ReminderKindWeekly = "weekly"
)

// Notifier delivers a reminder message to a chat.
type Notifier interface {
	SendReminder(chatID int64, text string) error
}

// ReminderService stores recurring measurement reminders and drives their
// delivery through a cron scheduler. Jobs are reloaded from the database
// at startup.
type ReminderService struct {
	db   *gorm.DB
	cron *cron.Cron

	mu       sync.Mutex
	notifier Notifier
	entries  map[uint]cron.EntryID
}

func NewReminderService(db *gorm.DB) *ReminderService {
	return &ReminderService{
		db:      db,
		cron:    cron.New(),
		entries: make(map[uint]cron.EntryID),
	}
}

// Start loads every enabled reminder, schedules it and starts the cron
// loop. The notifier is supplied here because the bot surface is
// constructed after the services.
func (s *ReminderService) Start(ctx context.Context, notifier Notifier) error {
	s.mu.Lock()
	s.notifier = notifier
	s.mu.Unlock()

	var reminders []database.Reminder
	if err := s.db.WithContext(ctx).
		Preload("User").
		Where("enabled = ?", true).
		Find(&reminders).Error; err != nil {
		return apperrors.NewDatabaseError(err)
	}

	for i := range reminders {
		if err := s.schedule(&reminders[i]); err != nil {
			logger.Warn("Skipping unschedulable reminder", "reminder_id", reminders[i].ID, "error", err)
		}
	}

	s.cron.Start()
	logger.Infof("Reminder scheduler started with %d reminders", len(reminders))
	return nil
}

// Stop halts the scheduler; running jobs finish.
func (s *ReminderService) Stop() {
	s.cron.Stop()
}

// ScheduleDaily creates a reminder fired every day at hour:minute.
func (s *ReminderService) ScheduleDaily(ctx context.Context, userID uint, hour, minute int) (*database.Reminder, error) {
	return s.create(ctx, userID, database.Reminder{
		UserID:  userID,
		Kind:    ReminderKindDaily,
		Hour:    hour,
		Minute:  minute,
		Enabled: true,
	})
}

// ScheduleWeekly creates a reminder fired once a week.
func (s *ReminderService) ScheduleWeekly(ctx context.Context, userID uint, weekday time.Weekday, hour, minute int) (*database.Reminder, error) {
	return s.create(ctx, userID, database.Reminder{
		UserID:  userID,
		Kind:    ReminderKindWeekly,
		Hour:    hour,
		Minute:  minute,
		Weekday: int(weekday),
		Enabled: true,
	})
}

func (s *ReminderService) create(ctx context.Context, userID uint, reminder database.Reminder) (*database.Reminder, error) {
	if userID == 0 {
		return nil, apperrors.NewAuthError()
	}
	if reminder.Hour < 0 || reminder.Hour > 23 || reminder.Minute < 0 || reminder.Minute > 59 {
		return nil, apperrors.NewValidationError("reminder time out of range")
	}

	if err := s.db.WithContext(ctx).Create(&reminder).Error; err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}

	// Reload with the owning user so the job knows the chat to notify.
	if err := s.db.WithContext(ctx).Preload("User").First(&reminder, reminder.ID).Error; err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}

	if err := s.schedule(&reminder); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &reminder, nil
}

// Cancel deletes a reminder and removes its scheduled job.
func (s *ReminderService) Cancel(ctx context.Context, userID uint, id uint) error {
	if userID == 0 {
		return apperrors.NewAuthError()
	}

	result := s.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		Delete(&database.Reminder{})
	if result.Error != nil {
		return apperrors.NewDatabaseError(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFoundError("reminder")
	}

	s.mu.Lock()
	if entryID, ok := s.entries[id]; ok {
		s.cron.Remove(entryID)
		delete(s.entries, id)
	}
	s.mu.Unlock()
	return nil
}

// List returns the user's reminders.
func (s *ReminderService) List(ctx context.Context, userID uint) ([]database.Reminder, error) {
	if userID == 0 {
		return nil, apperrors.NewAuthError()
	}

	var reminders []database.Reminder
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&reminders).Error; err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return reminders, nil
}

func (s *ReminderService) schedule(reminder *database.Reminder) error {
	var spec string
	switch reminder.Kind {
	case ReminderKindDaily:
		spec = fmt.Sprintf("%d %d * * *", reminder.Minute, reminder.Hour)
	case ReminderKindWeekly:
		spec = fmt.Sprintf("%d %d * * %d", reminder.Minute, reminder.Hour, reminder.Weekday)
	default:
		return fmt.Errorf("unknown reminder kind %q", reminder.Kind)
	}

	chatID := reminder.User.TelegramID
	reminderID := reminder.ID

	entryID, err := s.cron.AddFunc(spec, func() {
		s.mu.Lock()
		notifier := s.notifier
		s.mu.Unlock()
		if notifier == nil {
			return
		}
		if err := notifier.SendReminder(chatID, "⏰ Time to measure your blood pressure!"); err != nil {
			logger.Error("Failed to deliver reminder", "reminder_id", reminderID, "error", err)
		}
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.entries[reminder.ID] = entryID
	s.mu.Unlock()
	return nil
}
