package handlers

import (
	"reflect"
	"testing"
)

func TestParseReadingValues(t *testing.T) {
	tests := []struct {
		input     string
		systolic  int
		diastolic int
		pulse     int
		wantErr   bool
	}{
		{"130/85 72", 130, 85, 72, false},
		{"130/85", 130, 85, 0, false},
		{"130 /85", 0, 0, 0, true},
		{"118/76 69", 118, 76, 69, false},
		{"", 0, 0, 0, true},
		{"130", 0, 0, 0, true},
		{"130/85 72 extra", 0, 0, 0, true},
		{"abc/85", 0, 0, 0, true},
		{"130/0", 0, 0, 0, true},
		{"-130/85", 0, 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			systolic, diastolic, pulse, err := parseReadingValues(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error for %q: %v", tt.input, err)
			}
			if systolic != tt.systolic || diastolic != tt.diastolic || pulse != tt.pulse {
				t.Errorf("got %d/%d pulse %d, want %d/%d pulse %d",
					systolic, diastolic, pulse, tt.systolic, tt.diastolic, tt.pulse)
			}
		})
	}
}

func TestParseHHMM(t *testing.T) {
	tests := []struct {
		input   string
		hour    int
		minute  int
		wantErr bool
	}{
		{"08:30", 8, 30, false},
		{"0:00", 0, 0, false},
		{"23:59", 23, 59, false},
		{" 9:05 ", 9, 5, false},
		{"24:00", 0, 0, true},
		{"12:60", 0, 0, true},
		{"830", 0, 0, true},
		{"morning", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			hour, minute, err := parseHHMM(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error for %q: %v", tt.input, err)
			}
			if hour != tt.hour || minute != tt.minute {
				t.Errorf("got %02d:%02d, want %02d:%02d", hour, minute, tt.hour, tt.minute)
			}
		})
	}
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", nil},
		{"hypertension", []string{"hypertension"}},
		{"diabetes, hypertension", []string{"diabetes", "hypertension"}},
		{" a ,, b ", []string{"a", "b"}},
	}

	for _, tt := range tests {
		if got := splitList(tt.input); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("splitList(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
