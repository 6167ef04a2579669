package services

import (
	"context"
	"errors"
	"fmt"

	"leadcaller/internal/models"
	"leadcaller/internal/store"

	"github.com/rs/zerolog"
)

// Progress report outcomes
const (
	ProgressInserted = "inserted"
	ProgressUpdated  = "updated"
)

// ProgressResult is the stored row after a report, with what happened to it
type ProgressResult struct {
	Status   string
	Progress *models.UserProgress
}

// ProgressService tracks in-call agent progress per call id
type ProgressService struct {
	store store.ProgressStore
	log   zerolog.Logger
}

// NewProgressService wires the progress tracker
func NewProgressService(st store.ProgressStore, log zerolog.Logger) *ProgressService {
	return &ProgressService{
		store: st,
		log:   log.With().Str("component", "progress").Logger(),
	}
}

// ReportProgress inserts the first report for a call id and merges every
// later one into the stored row.
func (s *ProgressService) ReportProgress(ctx context.Context, report models.ProgressReport) (*ProgressResult, error) {
	if err := missingFields([2]string{"call_id", report.CallID}); err != nil {
		return nil, err
	}

	existing, err := s.store.GetProgress(ctx, report.CallID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		result, err := s.insert(ctx, report)
		if !errors.Is(err, store.ErrDuplicate) {
			return result, err
		}
		// Another report for the same call won the insert.
		if existing, err = s.store.GetProgress(ctx, report.CallID); err != nil {
			return nil, fmt.Errorf("failed to load user progress: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to load user progress: %w", err)
	}

	return s.update(ctx, existing, report)
}

func (s *ProgressService) insert(ctx context.Context, report models.ProgressReport) (*ProgressResult, error) {
	progress := &models.UserProgress{
		CallID:      report.CallID,
		Email:       report.Email,
		Name:        report.Name,
		PathwayID:   report.PathwayID,
		CallIDVoice: report.CallIDVoice,
		CurrentStep: report.CurrentStep,
		Context:     report.Context,
	}
	if progress.Context == nil {
		progress.Context = models.Context{}
	}
	if err := s.store.CreateProgress(ctx, progress); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to insert user progress: %w", err)
	}

	s.log.Info().
		Str("call_id", progress.CallID).
		Str("current_step", progress.CurrentStep).
		Msg("progress inserted")
	return &ProgressResult{Status: ProgressInserted, Progress: progress}, nil
}

func (s *ProgressService) update(ctx context.Context, existing *models.UserProgress, report models.ProgressReport) (*ProgressResult, error) {
	merged := models.MergeContext(existing.Context, report.Context)
	variableName, _ := merged.VariableString("user_name")

	progress := *existing
	progress.Context = merged
	progress.CurrentStep = firstNonEmpty(report.CurrentStep, existing.CurrentStep)
	progress.Email = firstNonEmpty(report.Email, existing.Email)
	progress.Name = firstNonEmpty(report.Name, existing.Name, variableName)
	progress.PathwayID = firstNonEmpty(report.PathwayID, existing.PathwayID)
	progress.CallIDVoice = firstNonEmpty(report.CallIDVoice, existing.CallIDVoice)

	if err := s.store.SaveProgress(ctx, &progress); err != nil {
		return nil, fmt.Errorf("failed to update user progress: %w", err)
	}

	s.log.Info().
		Str("call_id", progress.CallID).
		Str("current_step", progress.CurrentStep).
		Msg("progress updated")
	return &ProgressResult{Status: ProgressUpdated, Progress: &progress}, nil
}

// PatchCallIDVoice sets the voice leg call id on an existing progress row
func (s *ProgressService) PatchCallIDVoice(ctx context.Context, callID, callIDVoice string) error {
	if err := missingFields([2]string{"call_id_voice", callIDVoice}); err != nil {
		return err
	}
	if err := s.store.UpdateCallIDVoice(ctx, callID, callIDVoice); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: user progress %q", ErrNotFound, callID)
		}
		return fmt.Errorf("failed to update call_id_voice: %w", err)
	}
	return nil
}
