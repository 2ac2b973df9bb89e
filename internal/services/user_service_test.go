package services

import (
	"context"
	"testing"

	apperrors "github.com/vladimiradmaev/bp-assistant/internal/errors"
)

func TestRegisterUserIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)

	first, err := svc.RegisterUser(context.Background(), 42, "alex", "Alex", "Smith")
	if err != nil {
		t.Fatalf("RegisterUser failed: %v", err)
	}
	second, err := svc.RegisterUser(context.Background(), 42, "alex", "Alex", "Smith")
	if err != nil {
		t.Fatalf("second RegisterUser failed: %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("expected the same row for the same telegram id, got %d and %d", first.ID, second.ID)
	}
}

func TestGetUserByTelegramID(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)

	if _, err := svc.RegisterUser(context.Background(), 42, "alex", "Alex", "Smith"); err != nil {
		t.Fatalf("RegisterUser failed: %v", err)
	}

	user, err := svc.GetUserByTelegramID(context.Background(), 42)
	if err != nil {
		t.Fatalf("GetUserByTelegramID failed: %v", err)
	}
	if user.Username != "alex" {
		t.Errorf("unexpected username %q", user.Username)
	}

	if _, err := svc.GetUserByTelegramID(context.Background(), 999); !apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
		t.Errorf("expected not found for an unknown telegram id, got %v", err)
	}
}
