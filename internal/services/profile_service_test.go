package services

import (
	"context"
	"testing"
	"time"

	apperrors "github.com/vladimiradmaev/bp-assistant/internal/errors"
)

func TestProfileUpsertCreatesThenReplaces(t *testing.T) {
	db := newTestDB(t)
	svc := NewProfileService(db)
	user := createTestUser(t, db, 100)

	dob := time.Date(1964, 3, 21, 0, 0, 0, 0, time.UTC)
	created, err := svc.Upsert(context.Background(), user.ID, ProfileInput{
		DateOfBirth: &dob,
		WeightKg:    82.5,
		HeightCm:    178,
		Gender:      "male",
		Conditions:  []string{"hypertension"},
		Medications: []string{"lisinopril"},
	})
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if created.WeightKg != 82.5 || created.Gender != "male" {
		t.Errorf("unexpected profile: weight %v gender %q", created.WeightKg, created.Gender)
	}

	updated, err := svc.Upsert(context.Background(), user.ID, ProfileInput{
		WeightKg:              79,
		Gender:                "male",
		Medications:           []string{"lisinopril", "amlodipine"},
		EmergencyContactName:  "Anna",
		EmergencyContactPhone: "+1 555 0100",
	})
	if err != nil {
		t.Fatalf("second Upsert failed: %v", err)
	}

	if updated.ID != created.ID {
		t.Error("upsert must replace the same row, not create a second profile")
	}
	if updated.WeightKg != 79 {
		t.Errorf("expected weight 79, got %v", updated.WeightKg)
	}
	// The upsert replaces the whole profile, omitted fields reset
	if updated.DateOfBirth != nil {
		t.Errorf("date of birth should be cleared, got %v", updated.DateOfBirth)
	}
	if len(updated.Medications) != 2 {
		t.Errorf("expected 2 medications, got %d", len(updated.Medications))
	}
	if updated.EmergencyContactName != "Anna" {
		t.Errorf("unexpected contact name %q", updated.EmergencyContactName)
	}
}

func TestProfileUpsertRejectsUnknownGender(t *testing.T) {
	db := newTestDB(t)
	svc := NewProfileService(db)
	user := createTestUser(t, db, 100)

	_, err := svc.Upsert(context.Background(), user.ID, ProfileInput{Gender: "robot"})
	if !apperrors.IsType(err, apperrors.ErrorTypeValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestProfileGetWithoutProfile(t *testing.T) {
	db := newTestDB(t)
	svc := NewProfileService(db)
	user := createTestUser(t, db, 100)

	_, err := svc.Get(context.Background(), user.ID)
	if !apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
		t.Errorf("expected not found for a missing profile, got %v", err)
	}
}

func TestProfileRoundTrip(t *testing.T) {
	db := newTestDB(t)
	svc := NewProfileService(db)
	user := createTestUser(t, db, 100)

	if _, err := svc.Upsert(context.Background(), user.ID, ProfileInput{
		Gender:     "female",
		Conditions: []string{"diabetes", "hypertension"},
	}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	got, err := svc.Get(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Gender != "female" {
		t.Errorf("unexpected gender %q", got.Gender)
	}
	if len(got.Conditions) != 2 || got.Conditions[0] != "diabetes" {
		t.Errorf("conditions did not survive storage: %v", got.Conditions)
	}
}

func TestProfileOperationsRequireUser(t *testing.T) {
	db := newTestDB(t)
	svc := NewProfileService(db)

	if _, err := svc.Upsert(context.Background(), 0, ProfileInput{}); !apperrors.IsType(err, apperrors.ErrorTypeAuth) {
		t.Errorf("Upsert: expected auth error, got %v", err)
	}
	if _, err := svc.Get(context.Background(), 0); !apperrors.IsType(err, apperrors.ErrorTypeAuth) {
		t.Errorf("Get: expected auth error, got %v", err)
	}
}
