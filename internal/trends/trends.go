// Package trends derives dashboard statistics from stored readings.
// Everything here is pure computation, no I/O.
package trends

import (
	"math"

	"github.com/vladimiradmaev/bp-assistant/internal/database"
)

// Averages holds per-field arithmetic means rounded to the nearest integer.
type Averages struct {
	Systolic  int
	Diastolic int
	Pulse     int
}

// Average computes the mean systolic/diastolic/pulse over the given
// readings. An empty slice yields the zero value; callers must treat it as
// a sentinel and never divide by the reading count themselves.
func Average(readings []database.Reading) Averages {
	if len(readings) == 0 {
		return Averages{}
	}

	var sys, dia, pulse float64
	for _, r := range readings {
		sys += float64(r.Systolic)
		dia += float64(r.Diastolic)
		pulse += float64(r.Pulse)
	}

	n := float64(len(readings))
	return Averages{
		Systolic:  int(math.Round(sys / n)),
		Diastolic: int(math.Round(dia / n)),
		Pulse:     int(math.Round(pulse / n)),
	}
}

// Severity orders blood pressure categories from least to most serious.
type Severity int

const (
	SeverityNormal Severity = iota
	SeverityElevated
	SeverityStage1
	SeverityStage2
	SeverityCrisis
)

// Category is a clinical blood pressure classification.
type Category struct {
	Label    string
	Severity Severity
}

var categories = []Category{
	{Label: "Normal", Severity: SeverityNormal},
	{Label: "Elevated", Severity: SeverityElevated},
	{Label: "High (Stage 1)", Severity: SeverityStage1},
	{Label: "High (Stage 2)", Severity: SeverityStage2},
	{Label: "Hypertensive Crisis", Severity: SeverityCrisis},
}

// Categorize classifies a systolic/diastolic pair into a category. Bands
// are evaluated from lowest severity up and the first match wins; each
// band's upper edge is exclusive, so exact boundary values (120/80,
// 130/80, 140/90, 180/120) fall into the next severity tier.
func Categorize(systolic, diastolic int) Category {
	switch {
	case systolic < 120 && diastolic < 80:
		return categories[SeverityNormal]
	case systolic < 130 && diastolic < 80:
		return categories[SeverityElevated]
	case systolic < 140 && diastolic < 90:
		return categories[SeverityStage1]
	case systolic < 180 && diastolic < 120:
		return categories[SeverityStage2]
	default:
		return categories[SeverityCrisis]
	}
}

// Direction describes how a reading moved relative to the previous one.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
	DirectionFlat Direction = "flat"
)

// Delta is the change between two adjacent readings.
type Delta struct {
	Systolic  int
	Diastolic int
	Direction Direction
}

// TrendDelta compares the current reading against the previous one. The
// direction is up when either delta exceeds +5, down when either is below
// -5, otherwise flat; up is checked first when both conditions hold.
func TrendDelta(current, previous database.Reading) Delta {
	d := Delta{
		Systolic:  current.Systolic - previous.Systolic,
		Diastolic: current.Diastolic - previous.Diastolic,
	}

	switch {
	case d.Systolic > 5 || d.Diastolic > 5:
		d.Direction = DirectionUp
	case d.Systolic < -5 || d.Diastolic < -5:
		d.Direction = DirectionDown
	default:
		d.Direction = DirectionFlat
	}

	return d
}
