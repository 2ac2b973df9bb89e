package services

import (
	"context"
	"errors"
	"time"

	"github.com/vladimiradmaev/bp-assistant/internal/database"
	apperrors "github.com/vladimiradmaev/bp-assistant/internal/errors"
	"gorm.io/gorm"
)

// ProfileInput carries every profile field; the upsert replaces the whole
// profile, so partial edits are resolved by the caller before saving.
type ProfileInput struct {
	DateOfBirth           *time.Time
	WeightKg              float64
	HeightCm              float64
	Gender                string
	Conditions            []string
	Medications           []string
	EmergencyContactName  string
	EmergencyContactPhone string
}

var validGenders = map[string]bool{
	"":                  true, // not yet provided
	"male":              true,
	"female":            true,
	"other":             true,
	"prefer_not_to_say": true,
}

type ProfileService struct {
	db *gorm.DB
}

func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{db: db}
}

// Upsert creates or replaces the user's profile. There is at most one
// profile per user, enforced by a unique index on user_id.
func (s *ProfileService) Upsert(ctx context.Context, userID uint, input ProfileInput) (*database.UserProfile, error) {
	if userID == 0 {
		return nil, apperrors.NewAuthError()
	}
	if !validGenders[input.Gender] {
		return nil, apperrors.NewValidationError("invalid gender value")
	}

	var profile database.UserProfile
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		profile = database.UserProfile{
			UserID:                userID,
			DateOfBirth:           input.DateOfBirth,
			WeightKg:              input.WeightKg,
			HeightCm:              input.HeightCm,
			Gender:                input.Gender,
			Conditions:            input.Conditions,
			Medications:           input.Medications,
			EmergencyContactName:  input.EmergencyContactName,
			EmergencyContactPhone: input.EmergencyContactPhone,
		}
		if err := s.db.WithContext(ctx).Create(&profile).Error; err != nil {
			return nil, apperrors.NewDatabaseError(err)
		}
		return &profile, nil
	case err != nil:
		return nil, apperrors.NewDatabaseError(err)
	}

	profile.DateOfBirth = input.DateOfBirth
	profile.WeightKg = input.WeightKg
	profile.HeightCm = input.HeightCm
	profile.Gender = input.Gender
	profile.Conditions = input.Conditions
	profile.Medications = input.Medications
	profile.EmergencyContactName = input.EmergencyContactName
	profile.EmergencyContactPhone = input.EmergencyContactPhone

	if err := s.db.WithContext(ctx).Save(&profile).Error; err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return &profile, nil
}

// Get returns the user's profile, or a not found error when it was never
// created. Profiles are never auto-created.
func (s *ProfileService) Get(ctx context.Context, userID uint) (*database.UserProfile, error) {
	if userID == 0 {
		return nil, apperrors.NewAuthError()
	}

	var profile database.UserProfile
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("profile")
		}
		return nil, apperrors.NewDatabaseError(err)
	}
	return &profile, nil
}
