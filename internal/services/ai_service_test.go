package services

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "github.com/vladimiradmaev/bp-assistant/internal/errors"
)

type stubProvider struct {
	name     string
	response string
	err      error
}

func (p *stubProvider) Name() string { return p.name }

func (p *stubProvider) Analyze(ctx context.Context, imageData []byte) (string, error) {
	return p.response, p.err
}

func TestAnalyzeImagePlainJSON(t *testing.T) {
	svc := NewAIServiceWithProvider(&stubProvider{
		name:     "stub",
		response: `{"systolic": 122, "diastolic": 81, "pulse": 64, "confidence": 0.93, "notes": "clear display"}`,
	})

	before := time.Now()
	result, err := svc.AnalyzeImage(context.Background(), []byte("jpeg"))
	if err != nil {
		t.Fatalf("AnalyzeImage failed: %v", err)
	}

	if result.Systolic != 122 || result.Diastolic != 81 || result.Pulse != 64 {
		t.Errorf("unexpected vitals: %d/%d pulse %d", result.Systolic, result.Diastolic, result.Pulse)
	}
	if result.Confidence != 0.93 {
		t.Errorf("expected confidence 0.93, got %v", result.Confidence)
	}
	if result.Notes != "clear display" {
		t.Errorf("unexpected notes: %q", result.Notes)
	}
	if result.Timestamp.Before(before) || result.Timestamp.After(time.Now()) {
		t.Errorf("timestamp %v should be set to completion time", result.Timestamp)
	}
}

func TestAnalyzeImageFencedJSON(t *testing.T) {
	svc := NewAIServiceWithProvider(&stubProvider{
		name: "stub",
		response: "Here is the reading:\n```json\n" +
			`{"systolic": 135, "diastolic": 88, "pulse": 70, "confidence": 0.8, "notes": ""}` +
			"\n```\nLet me know if you need anything else.",
	})

	result, err := svc.AnalyzeImage(context.Background(), []byte("jpeg"))
	if err != nil {
		t.Fatalf("AnalyzeImage failed: %v", err)
	}
	if result.Systolic != 135 || result.Diastolic != 88 || result.Pulse != 70 {
		t.Errorf("unexpected vitals: %d/%d pulse %d", result.Systolic, result.Diastolic, result.Pulse)
	}
}

func TestAnalyzeImageProviderError(t *testing.T) {
	svc := NewAIServiceWithProvider(&stubProvider{
		name: "stub",
		err:  errors.New("rate limited"),
	})

	_, err := svc.AnalyzeImage(context.Background(), []byte("jpeg"))
	if err == nil {
		t.Fatal("expected error from failing provider")
	}
	if !apperrors.IsType(err, apperrors.ErrorTypeProvider) {
		t.Errorf("expected provider error, got %v", err)
	}
}

func TestParseAnalysisResponseLineComments(t *testing.T) {
	raw := `{
		"systolic": 128, // large upper number
		"diastolic": 84, // middle number
		"pulse": 67,
		"confidence": 0.9,
		"notes": "see https://example.com/manual"
	}`

	result, err := parseAnalysisResponse(raw)
	if err != nil {
		t.Fatalf("parseAnalysisResponse failed: %v", err)
	}
	if result.Systolic != 128 || result.Diastolic != 84 || result.Pulse != 67 {
		t.Errorf("unexpected vitals: %d/%d pulse %d", result.Systolic, result.Diastolic, result.Pulse)
	}
	// Slashes inside string values must survive comment stripping
	if result.Notes != "see https://example.com/manual" {
		t.Errorf("notes were mangled: %q", result.Notes)
	}
}

func TestParseAnalysisResponseConfidenceHandling(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want float64
	}{
		{
			name: "missing confidence drops to zero",
			raw:  `{"systolic": 120, "diastolic": 80, "pulse": 70, "notes": ""}`,
			want: 0,
		},
		{
			name: "confidence above one drops to zero",
			raw:  `{"systolic": 120, "diastolic": 80, "pulse": 70, "confidence": 1.4}`,
			want: 0,
		},
		{
			name: "negative confidence drops to zero",
			raw:  `{"systolic": 120, "diastolic": 80, "pulse": 70, "confidence": -0.2}`,
			want: 0,
		},
		{
			name: "zero confidence is accepted",
			raw:  `{"systolic": 120, "diastolic": 80, "pulse": 70, "confidence": 0}`,
			want: 0,
		},
		{
			name: "full confidence is accepted",
			raw:  `{"systolic": 120, "diastolic": 80, "pulse": 70, "confidence": 1}`,
			want: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parseAnalysisResponse(tt.raw)
			if err != nil {
				t.Fatalf("parseAnalysisResponse failed: %v", err)
			}
			if result.Confidence != tt.want {
				t.Errorf("expected confidence %v, got %v", tt.want, result.Confidence)
			}
		})
	}
}

func TestParseAnalysisResponseErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"no JSON at all", "I cannot read this display, sorry."},
		{"malformed JSON", `{"systolic": 120, "diastolic":`},
		{"zero systolic", `{"systolic": 0, "diastolic": 80, "pulse": 70, "confidence": 0.9}`},
		{"missing diastolic", `{"systolic": 120, "pulse": 70, "confidence": 0.9}`},
		{"negative pulse", `{"systolic": 120, "diastolic": 80, "pulse": -5, "confidence": 0.9}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseAnalysisResponse(tt.raw)
			if err == nil {
				t.Fatal("expected a parse error")
			}
			if !apperrors.IsType(err, apperrors.ErrorTypeParse) {
				t.Errorf("expected parse error, got %v", err)
			}
		})
	}
}

func TestNewAIServiceRequiresCredential(t *testing.T) {
	_, err := NewAIService("", "")
	if err == nil {
		t.Fatal("expected configuration error without credentials")
	}
	if !apperrors.IsType(err, apperrors.ErrorTypeConfiguration) {
		t.Errorf("expected configuration error, got %v", err)
	}
}
