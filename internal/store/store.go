// Package store persists meetings, user progress and call attempts.
package store

import (
	"context"
	"errors"

	"leadcaller/internal/models"
)

// ErrNotFound is returned when a lookup or update matches no row
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when an insert collides with an existing key
var ErrDuplicate = errors.New("duplicate record")

// MeetingStore persists meetings
type MeetingStore interface {
	CreateMeeting(ctx context.Context, m *models.Meeting) error
	// UpdateMeeting overwrites every mutable column of the meeting with m.ID and
	// clears its call id, so a rescheduled meeting is called again.
	UpdateMeeting(ctx context.Context, m *models.Meeting) error
	GetMeeting(ctx context.Context, id uint) (*models.Meeting, error)
	SetMeetingCallID(ctx context.Context, id uint, callID string) error
	ListMeetings(ctx context.Context) ([]models.Meeting, error)
	// DueMeetings returns meetings at exactly date and clock, skipping any
	// that already carry a call id.
	DueMeetings(ctx context.Context, date, clock string) ([]models.Meeting, error)
}

// ProgressStore persists user progress rows keyed by call id
type ProgressStore interface {
	GetProgress(ctx context.Context, callID string) (*models.UserProgress, error)
	CreateProgress(ctx context.Context, p *models.UserProgress) error
	SaveProgress(ctx context.Context, p *models.UserProgress) error
	UpdateCallIDVoice(ctx context.Context, callID, callIDVoice string) error
}

// CallAttemptStore records calls made to the calling provider
type CallAttemptStore interface {
	RecordCallAttempt(ctx context.Context, a *models.CallAttempt) error
	ListCallAttempts(ctx context.Context, meetingID uint) ([]models.CallAttempt, error)
}

// Store is everything the service layer persists
type Store interface {
	MeetingStore
	ProgressStore
	CallAttemptStore
}
