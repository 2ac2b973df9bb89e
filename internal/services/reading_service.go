package services

import (
	"context"
	"errors"
	"time"

	"github.com/vladimiradmaev/bp-assistant/internal/database"
	apperrors "github.com/vladimiradmaev/bp-assistant/internal/errors"
	"gorm.io/gorm"
)

// ReadingInput carries the fields the pipeline persists for a new reading.
// The owner is always the session user passed separately, never input.
type ReadingInput struct {
	Systolic  int
	Diastolic int
	Pulse     int
	Timestamp time.Time
	ImageURL  string
	Notes     string
}

// ReadingPatch updates selected fields of an existing reading. Nil fields
// are left untouched; id, owner and creation time never change.
type ReadingPatch struct {
	Systolic  *int
	Diastolic *int
	Pulse     *int
	Notes     *string
	Timestamp *time.Time
}

type ReadingService struct {
	db *gorm.DB
}

func NewReadingService(db *gorm.DB) *ReadingService {
	return &ReadingService{db: db}
}

// validateVitals mirrors the database CHECK constraints so impossible
// values fail with a validation error instead of a driver error.
func validateVitals(systolic, diastolic, pulse int) error {
	if systolic <= 0 || systolic >= 300 {
		return apperrors.NewValidationError("systolic out of range")
	}
	if diastolic <= 0 || diastolic >= 200 {
		return apperrors.NewValidationError("diastolic out of range")
	}
	if pulse <= 0 || pulse >= 300 {
		return apperrors.NewValidationError("pulse out of range")
	}
	return nil
}

// Create persists a new reading owned by the given user.
func (s *ReadingService) Create(ctx context.Context, userID uint, input ReadingInput) (*database.Reading, error) {
	if userID == 0 {
		return nil, apperrors.NewAuthError()
	}
	if err := validateVitals(input.Systolic, input.Diastolic, input.Pulse); err != nil {
		return nil, err
	}

	reading := &database.Reading{
		UserID:    userID,
		Systolic:  input.Systolic,
		Diastolic: input.Diastolic,
		Pulse:     input.Pulse,
		Timestamp: input.Timestamp,
		ImageURL:  input.ImageURL,
		Notes:     input.Notes,
	}

	if err := s.db.WithContext(ctx).Create(reading).Error; err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return reading, nil
}

// Get returns one reading by id, scoped to the owner.
func (s *ReadingService) Get(ctx context.Context, userID uint, id uint) (*database.Reading, error) {
	if userID == 0 {
		return nil, apperrors.NewAuthError()
	}

	var reading database.Reading
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		First(&reading).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("reading")
		}
		return nil, apperrors.NewDatabaseError(err)
	}
	return &reading, nil
}

// ListAll returns every reading of the user, most recent first. The
// history view wants newest-first browsing.
func (s *ReadingService) ListAll(ctx context.Context, userID uint) ([]database.Reading, error) {
	if userID == 0 {
		return nil, apperrors.NewAuthError()
	}

	var readings []database.Reading
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("timestamp DESC").
		Find(&readings).Error; err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return readings, nil
}

// ListByDateRange returns readings with start <= timestamp <= end in
// ascending order, the way the dashboard charts left to right.
func (s *ReadingService) ListByDateRange(ctx context.Context, userID uint, start, end time.Time) ([]database.Reading, error) {
	if userID == 0 {
		return nil, apperrors.NewAuthError()
	}

	var readings []database.Reading
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND timestamp >= ? AND timestamp <= ?", userID, start, end).
		Order("timestamp ASC").
		Find(&readings).Error; err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return readings, nil
}

// Update patches a reading and returns the stored row.
func (s *ReadingService) Update(ctx context.Context, userID uint, id uint, patch ReadingPatch) (*database.Reading, error) {
	if userID == 0 {
		return nil, apperrors.NewAuthError()
	}

	updates := map[string]interface{}{}
	if patch.Systolic != nil {
		if *patch.Systolic <= 0 || *patch.Systolic >= 300 {
			return nil, apperrors.NewValidationError("systolic out of range")
		}
		updates["systolic"] = *patch.Systolic
	}
	if patch.Diastolic != nil {
		if *patch.Diastolic <= 0 || *patch.Diastolic >= 200 {
			return nil, apperrors.NewValidationError("diastolic out of range")
		}
		updates["diastolic"] = *patch.Diastolic
	}
	if patch.Pulse != nil {
		if *patch.Pulse <= 0 || *patch.Pulse >= 300 {
			return nil, apperrors.NewValidationError("pulse out of range")
		}
		updates["pulse"] = *patch.Pulse
	}
	if patch.Notes != nil {
		updates["notes"] = *patch.Notes
	}
	if patch.Timestamp != nil {
		updates["timestamp"] = *patch.Timestamp
	}
	if len(updates) == 0 {
		return s.Get(ctx, userID, id)
	}

	// One transaction so a concurrent delete cannot slip between the
	// update and the reload.
	var reading database.Reading
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&database.Reading{}).
			Where("user_id = ? AND id = ?", userID, id).
			Updates(updates)
		if result.Error != nil {
			return apperrors.NewDatabaseError(result.Error)
		}
		if result.RowsAffected == 0 {
			return apperrors.NewNotFoundError("reading")
		}

		if err := tx.Where("user_id = ? AND id = ?", userID, id).First(&reading).Error; err != nil {
			return apperrors.NewDatabaseError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &reading, nil
}

// Delete removes a reading owned by the user.
func (s *ReadingService) Delete(ctx context.Context, userID uint, id uint) error {
	if userID == 0 {
		return apperrors.NewAuthError()
	}

	result := s.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		Delete(&database.Reading{})
	if result.Error != nil {
		return apperrors.NewDatabaseError(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFoundError("reading")
	}
	return nil
}
