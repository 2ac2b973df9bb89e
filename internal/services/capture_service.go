package services

import (
	"context"
	"sync"

	"github.com/vladimiradmaev/bp-assistant/internal/database"
	apperrors "github.com/vladimiradmaev/bp-assistant/internal/errors"
	"github.com/vladimiradmaev/bp-assistant/internal/logger"
)

// ConfidenceThreshold separates auto-save from the confirmation path.
// Confidence at or above it never awaits confirmation; below it always
// does, regardless of how plausible the extracted numbers look.
const ConfidenceThreshold = 0.7

// CaptureStatus is the terminal state of a pipeline run as seen by the UI.
type CaptureStatus string

const (
	StatusSaved                CaptureStatus = "saved"
	StatusAwaitingConfirmation CaptureStatus = "awaiting_confirmation"
)

// CaptureResult is what one capture run hands back to the UI layer.
type CaptureResult struct {
	Status   CaptureStatus
	Reading  *database.Reading // set when Status == StatusSaved
	Analysis *AnalysisResult   // always set
	ImageURL string
}

// ImageStore uploads raw image bytes and returns a stable public URL.
type ImageStore interface {
	Upload(ctx context.Context, data []byte, name string) (string, error)
}

// Analyzer extracts vital signs from a monitor photo.
type Analyzer interface {
	AnalyzeImage(ctx context.Context, imageData []byte) (*AnalysisResult, error)
}

// ReadingStore persists confirmed readings.
type ReadingStore interface {
	Create(ctx context.Context, userID uint, input ReadingInput) (*database.Reading, error)
}

type pendingCapture struct {
	analysis *AnalysisResult
	imageURL string
}

// CaptureService orchestrates one capture run: upload, analysis,
// confidence gate, persistence. Upload and analysis run sequentially.
// Failures are terminal for the run; re-running repeats upload and
// analysis in full, and an already-uploaded image is never rolled back.
type CaptureService struct {
	store    ImageStore
	analyzer Analyzer
	readings ReadingStore

	mu      sync.Mutex
	pending map[uint]pendingCapture
}

func NewCaptureService(store ImageStore, analyzer Analyzer, readings ReadingStore) *CaptureService {
	return &CaptureService{
		store:    store,
		analyzer: analyzer,
		readings: readings,
		pending:  make(map[uint]pendingCapture),
	}
}

// Capture runs the pipeline for one photo. High-confidence analyses are
// saved immediately; low-confidence ones are parked until the user
// confirms or cancels. A new capture replaces any earlier pending one for
// the same user.
func (s *CaptureService) Capture(ctx context.Context, userID uint, imageData []byte) (*CaptureResult, error) {
	if userID == 0 {
		return nil, apperrors.NewAuthError()
	}

	name := GenerateFileName()
	imageURL, err := s.store.Upload(ctx, imageData, name)
	if err != nil {
		return nil, err
	}

	// The analyzer gets the original bytes, not the uploaded copy.
	analysis, err := s.analyzer.AnalyzeImage(ctx, imageData)
	if err != nil {
		return nil, err
	}

	if analysis.Confidence >= ConfidenceThreshold {
		reading, err := s.save(ctx, userID, analysis, imageURL)
		if err != nil {
			return nil, err
		}
		return &CaptureResult{
			Status:   StatusSaved,
			Reading:  reading,
			Analysis: analysis,
			ImageURL: imageURL,
		}, nil
	}

	s.mu.Lock()
	s.pending[userID] = pendingCapture{analysis: analysis, imageURL: imageURL}
	s.mu.Unlock()

	logger.Infof("Capture for user %d awaiting confirmation, confidence %.2f", userID, analysis.Confidence)
	return &CaptureResult{
		Status:   StatusAwaitingConfirmation,
		Analysis: analysis,
		ImageURL: imageURL,
	}, nil
}

// Confirm saves the pending low-confidence analysis for the user.
func (s *CaptureService) Confirm(ctx context.Context, userID uint) (*database.Reading, error) {
	if userID == 0 {
		return nil, apperrors.NewAuthError()
	}

	s.mu.Lock()
	p, ok := s.pending[userID]
	delete(s.pending, userID)
	s.mu.Unlock()
	if !ok {
		return nil, apperrors.NewNotFoundError("pending capture")
	}

	return s.save(ctx, userID, p.analysis, p.imageURL)
}

// Cancel discards the pending analysis. No record is created; the
// uploaded image stays in the bucket. Reports whether there was anything
// to cancel.
func (s *CaptureService) Cancel(userID uint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pending[userID]
	delete(s.pending, userID)
	return ok
}

func (s *CaptureService) save(ctx context.Context, userID uint, analysis *AnalysisResult, imageURL string) (*database.Reading, error) {
	return s.readings.Create(ctx, userID, ReadingInput{
		Systolic:  analysis.Systolic,
		Diastolic: analysis.Diastolic,
		Pulse:     analysis.Pulse,
		Timestamp: analysis.Timestamp,
		ImageURL:  imageURL,
		Notes:     analysis.Notes,
	})
}
