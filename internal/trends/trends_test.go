package trends

import (
	"testing"

	"github.com/vladimiradmaev/bp-assistant/internal/database"
)

func TestAverageEmpty(t *testing.T) {
	avg := Average(nil)
	if avg.Systolic != 0 || avg.Diastolic != 0 || avg.Pulse != 0 {
		t.Fatalf("expected zero averages for empty input, got %+v", avg)
	}
}

func TestAverageSingleReading(t *testing.T) {
	avg := Average([]database.Reading{{Systolic: 118, Diastolic: 76, Pulse: 69}})
	if avg.Systolic != 118 || avg.Diastolic != 76 || avg.Pulse != 69 {
		t.Fatalf("single-reading average must equal the reading, got %+v", avg)
	}
}

func TestAverageRounding(t *testing.T) {
	readings := []database.Reading{
		{Systolic: 120, Diastolic: 80, Pulse: 60},
		{Systolic: 121, Diastolic: 81, Pulse: 61},
	}
	avg := Average(readings)
	// 120.5 rounds away from zero
	if avg.Systolic != 121 {
		t.Errorf("expected systolic 121, got %d", avg.Systolic)
	}
	if avg.Diastolic != 81 {
		t.Errorf("expected diastolic 81, got %d", avg.Diastolic)
	}
	if avg.Pulse != 61 {
		t.Errorf("expected pulse 61, got %d", avg.Pulse)
	}
}

func TestCategorize(t *testing.T) {
	tests := []struct {
		systolic  int
		diastolic int
		want      Severity
	}{
		{119, 79, SeverityNormal},
		{125, 79, SeverityElevated},
		{135, 85, SeverityStage1},
		{145, 95, SeverityStage2},
		{185, 125, SeverityCrisis},
		// boundary values fall into the higher band
		{120, 80, SeverityStage1},
		{120, 79, SeverityElevated},
		{130, 80, SeverityStage1},
		{140, 90, SeverityStage2},
		{180, 120, SeverityCrisis},
		// a high diastolic alone escalates
		{118, 95, SeverityStage2},
	}

	for _, tt := range tests {
		got := Categorize(tt.systolic, tt.diastolic)
		if got.Severity != tt.want {
			t.Errorf("Categorize(%d, %d) = %q (severity %d), want severity %d",
				tt.systolic, tt.diastolic, got.Label, got.Severity, tt.want)
		}
	}
}

func TestCategorizeLabels(t *testing.T) {
	if got := Categorize(119, 79).Label; got != "Normal" {
		t.Errorf("expected Normal, got %q", got)
	}
	if got := Categorize(185, 125).Label; got != "Hypertensive Crisis" {
		t.Errorf("expected Hypertensive Crisis, got %q", got)
	}
}

func TestTrendDelta(t *testing.T) {
	tests := []struct {
		name     string
		current  database.Reading
		previous database.Reading
		want     Direction
	}{
		{"systolic rise", database.Reading{Systolic: 135, Diastolic: 80}, database.Reading{Systolic: 125, Diastolic: 80}, DirectionUp},
		{"diastolic drop", database.Reading{Systolic: 120, Diastolic: 74}, database.Reading{Systolic: 120, Diastolic: 85}, DirectionDown},
		{"small change is flat", database.Reading{Systolic: 124, Diastolic: 82}, database.Reading{Systolic: 120, Diastolic: 80}, DirectionFlat},
		{"exactly +5 is flat", database.Reading{Systolic: 125, Diastolic: 80}, database.Reading{Systolic: 120, Diastolic: 80}, DirectionFlat},
		{"exactly -5 is flat", database.Reading{Systolic: 115, Diastolic: 80}, database.Reading{Systolic: 120, Diastolic: 80}, DirectionFlat},
		{"mixed movement prefers up", database.Reading{Systolic: 135, Diastolic: 70}, database.Reading{Systolic: 125, Diastolic: 85}, DirectionUp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TrendDelta(tt.current, tt.previous)
			if got.Direction != tt.want {
				t.Fatalf("direction = %q, want %q (delta %+v)", got.Direction, tt.want, got)
			}
		})
	}
}

func TestTrendDeltaValues(t *testing.T) {
	d := TrendDelta(database.Reading{Systolic: 130, Diastolic: 85}, database.Reading{Systolic: 120, Diastolic: 90})
	if d.Systolic != 10 || d.Diastolic != -5 {
		t.Fatalf("expected deltas +10/-5, got %+d/%+d", d.Systolic, d.Diastolic)
	}
}
