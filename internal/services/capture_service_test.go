package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vladimiradmaev/bp-assistant/internal/database"
	apperrors "github.com/vladimiradmaev/bp-assistant/internal/errors"
)

type stubImageStore struct {
	uploads int
	lastURL string
	err     error
}

func (s *stubImageStore) Upload(ctx context.Context, data []byte, name string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.uploads++
	s.lastURL = "https://bucket.storage.googleapis.com/bp-images/" + name
	return s.lastURL, nil
}

type stubAnalyzer struct {
	result *AnalysisResult
	err    error
	calls  int
}

func (a *stubAnalyzer) AnalyzeImage(ctx context.Context, imageData []byte) (*AnalysisResult, error) {
	a.calls++
	if a.err != nil {
		return nil, a.err
	}
	return a.result, nil
}

type stubReadingStore struct {
	created []database.Reading
	nextID  uint
}

func (s *stubReadingStore) Create(ctx context.Context, userID uint, input ReadingInput) (*database.Reading, error) {
	s.nextID++
	reading := database.Reading{
		UserID:    userID,
		Systolic:  input.Systolic,
		Diastolic: input.Diastolic,
		Pulse:     input.Pulse,
		Timestamp: input.Timestamp,
		ImageURL:  input.ImageURL,
		Notes:     input.Notes,
	}
	reading.ID = s.nextID
	s.created = append(s.created, reading)
	return &reading, nil
}

func analysisWithConfidence(confidence float64) *AnalysisResult {
	return &AnalysisResult{
		Systolic:   118,
		Diastolic:  76,
		Pulse:      69,
		Confidence: confidence,
		Timestamp:  time.Now(),
	}
}

func TestCaptureHighConfidenceAutoSaves(t *testing.T) {
	store := &stubImageStore{}
	readings := &stubReadingStore{}
	svc := NewCaptureService(store, &stubAnalyzer{result: analysisWithConfidence(0.95)}, readings)

	result, err := svc.Capture(context.Background(), 1, []byte("jpeg"))
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}

	if result.Status != StatusSaved {
		t.Fatalf("expected status saved, got %s", result.Status)
	}
	if result.Reading == nil {
		t.Fatal("expected a stored reading")
	}
	if result.Reading.Systolic != 118 || result.Reading.Diastolic != 76 || result.Reading.Pulse != 69 {
		t.Errorf("unexpected vitals: %d/%d pulse %d",
			result.Reading.Systolic, result.Reading.Diastolic, result.Reading.Pulse)
	}
	if result.ImageURL == "" || result.Reading.ImageURL != store.lastURL {
		t.Errorf("reading should carry the uploaded image URL, got %q", result.Reading.ImageURL)
	}
	if len(readings.created) != 1 {
		t.Errorf("expected exactly one stored reading, got %d", len(readings.created))
	}
}

func TestCaptureThresholdIsInclusive(t *testing.T) {
	readings := &stubReadingStore{}
	svc := NewCaptureService(&stubImageStore{}, &stubAnalyzer{result: analysisWithConfidence(0.7)}, readings)

	result, err := svc.Capture(context.Background(), 1, []byte("jpeg"))
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	if result.Status != StatusSaved {
		t.Errorf("confidence exactly at the threshold should auto-save, got %s", result.Status)
	}
}

func TestCaptureLowConfidenceAwaitsConfirmation(t *testing.T) {
	readings := &stubReadingStore{}
	svc := NewCaptureService(&stubImageStore{}, &stubAnalyzer{result: analysisWithConfidence(0.69)}, readings)

	result, err := svc.Capture(context.Background(), 1, []byte("jpeg"))
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}

	if result.Status != StatusAwaitingConfirmation {
		t.Fatalf("expected awaiting confirmation, got %s", result.Status)
	}
	if result.Reading != nil {
		t.Error("no reading should exist before confirmation")
	}
	if len(readings.created) != 0 {
		t.Errorf("store should be untouched, got %d readings", len(readings.created))
	}
}

func TestConfirmSavesPendingCapture(t *testing.T) {
	store := &stubImageStore{}
	readings := &stubReadingStore{}
	svc := NewCaptureService(store, &stubAnalyzer{result: analysisWithConfidence(0.4)}, readings)

	if _, err := svc.Capture(context.Background(), 1, []byte("jpeg")); err != nil {
		t.Fatalf("Capture failed: %v", err)
	}

	reading, err := svc.Confirm(context.Background(), 1)
	if err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}
	if reading.ImageURL != store.lastURL {
		t.Errorf("confirmed reading should carry the parked image URL, got %q", reading.ImageURL)
	}
	if len(readings.created) != 1 {
		t.Errorf("expected one stored reading, got %d", len(readings.created))
	}

	// The pending capture is consumed; a second confirm has nothing left
	if _, err := svc.Confirm(context.Background(), 1); !apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
		t.Errorf("expected not found on double confirm, got %v", err)
	}
}

func TestConfirmWithoutPendingCapture(t *testing.T) {
	svc := NewCaptureService(&stubImageStore{}, &stubAnalyzer{result: analysisWithConfidence(0.9)}, &stubReadingStore{})

	_, err := svc.Confirm(context.Background(), 1)
	if !apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestCancelDiscardsPendingCapture(t *testing.T) {
	readings := &stubReadingStore{}
	svc := NewCaptureService(&stubImageStore{}, &stubAnalyzer{result: analysisWithConfidence(0.3)}, readings)

	if _, err := svc.Capture(context.Background(), 1, []byte("jpeg")); err != nil {
		t.Fatalf("Capture failed: %v", err)
	}

	if !svc.Cancel(1) {
		t.Error("Cancel should report a discarded pending capture")
	}
	if svc.Cancel(1) {
		t.Error("second Cancel should find nothing")
	}
	if len(readings.created) != 0 {
		t.Errorf("cancel must not create readings, got %d", len(readings.created))
	}
}

func TestCaptureUploadFailureStopsPipeline(t *testing.T) {
	analyzer := &stubAnalyzer{result: analysisWithConfidence(0.9)}
	svc := NewCaptureService(&stubImageStore{err: errors.New("bucket unavailable")}, analyzer, &stubReadingStore{})

	_, err := svc.Capture(context.Background(), 1, []byte("jpeg"))
	if err == nil {
		t.Fatal("expected upload failure to surface")
	}
	if analyzer.calls != 0 {
		t.Errorf("analysis must not run after a failed upload, ran %d times", analyzer.calls)
	}
}

func TestCaptureAnalysisFailureSavesNothing(t *testing.T) {
	readings := &stubReadingStore{}
	svc := NewCaptureService(&stubImageStore{}, &stubAnalyzer{err: errors.New("model timeout")}, readings)

	_, err := svc.Capture(context.Background(), 1, []byte("jpeg"))
	if err == nil {
		t.Fatal("expected analysis failure to surface")
	}
	if len(readings.created) != 0 {
		t.Errorf("no reading may exist after a failed analysis, got %d", len(readings.created))
	}
}

func TestCaptureRequiresUser(t *testing.T) {
	svc := NewCaptureService(&stubImageStore{}, &stubAnalyzer{result: analysisWithConfidence(0.9)}, &stubReadingStore{})

	if _, err := svc.Capture(context.Background(), 0, []byte("jpeg")); !apperrors.IsType(err, apperrors.ErrorTypeAuth) {
		t.Errorf("expected auth error for Capture, got %v", err)
	}
	if _, err := svc.Confirm(context.Background(), 0); !apperrors.IsType(err, apperrors.ErrorTypeAuth) {
		t.Errorf("expected auth error for Confirm, got %v", err)
	}
}

func TestCaptureReplacesEarlierPending(t *testing.T) {
	readings := &stubReadingStore{}
	first := analysisWithConfidence(0.5)
	second := analysisWithConfidence(0.6)
	second.Systolic = 142
	analyzer := &stubAnalyzer{result: first}
	svc := NewCaptureService(&stubImageStore{}, analyzer, readings)

	if _, err := svc.Capture(context.Background(), 1, []byte("one")); err != nil {
		t.Fatalf("first capture failed: %v", err)
	}
	analyzer.result = second
	if _, err := svc.Capture(context.Background(), 1, []byte("two")); err != nil {
		t.Fatalf("second capture failed: %v", err)
	}

	reading, err := svc.Confirm(context.Background(), 1)
	if err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}
	if reading.Systolic != 142 {
		t.Errorf("confirm should save the latest pending capture, got systolic %d", reading.Systolic)
	}
	if len(readings.created) != 1 {
		t.Errorf("only the confirmed capture may be saved, got %d", len(readings.created))
	}
}
