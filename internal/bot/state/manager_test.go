package state

import "testing"

func TestManagerDefaultsToNone(t *testing.T) {
	m := NewManager()

	if got := m.GetUserState(1); got != None {
		t.Errorf("expected %q for an unknown user, got %q", None, got)
	}
}

func TestManagerStateRoundTrip(t *testing.T) {
	m := NewManager()

	m.SetUserState(1, Capturing)
	if got := m.GetUserState(1); got != Capturing {
		t.Errorf("expected %q, got %q", Capturing, got)
	}
	if got := m.GetUserState(2); got != None {
		t.Errorf("states must be per user, got %q for user 2", got)
	}
}

func TestManagerTempData(t *testing.T) {
	m := NewManager()

	if _, ok := m.GetTempData(1, "edit_reading_id"); ok {
		t.Error("expected no temp data for a fresh user")
	}

	m.SetTempData(1, "edit_reading_id", "7")
	value, ok := m.GetTempData(1, "edit_reading_id")
	if !ok || value != "7" {
		t.Errorf("expected stored value, got %v (ok=%t)", value, ok)
	}

	m.ClearTempData(1)
	if _, ok := m.GetTempData(1, "edit_reading_id"); ok {
		t.Error("expected temp data to be cleared")
	}
}
