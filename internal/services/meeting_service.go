package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"leadcaller/internal/models"
	"leadcaller/internal/script"
	"leadcaller/internal/store"

	"github.com/rs/zerolog"
)

// Schedule outcomes
const (
	ScheduleCalled    = "called"
	ScheduleScheduled = "scheduled"
	ScheduleUpdated   = "updated"
)

// ScheduleResult describes what ScheduleMeeting did
type ScheduleResult struct {
	Status    string
	MeetingID uint
	CallID    string
}

// MeetingService creates and updates meetings and places calls for the ones
// due now.
type MeetingService struct {
	store      store.Store
	dispatcher CallDispatcher
	templates  script.Templates
	recorder   attemptRecorder
	loc        *time.Location
	now        func() time.Time
	log        zerolog.Logger
}

// NewMeetingService wires the meeting lifecycle. loc is the timezone meeting
// dates and times are written in.
func NewMeetingService(st store.Store, dispatcher CallDispatcher, loc *time.Location, log zerolog.Logger) *MeetingService {
	return &MeetingService{
		store:      st,
		dispatcher: dispatcher,
		templates:  script.Default(),
		recorder:   attemptRecorder{attempts: st, log: log},
		loc:        loc,
		now:        time.Now,
		log:        log.With().Str("component", "meetings").Logger(),
	}
}

// WithClock replaces the time source, for tests
func (s *MeetingService) WithClock(now func() time.Time) *MeetingService {
	s.now = now
	return s
}

// WithTemplates replaces the call script templates
func (s *MeetingService) WithTemplates(t script.Templates) *MeetingService {
	s.templates = t
	return s
}

// ScheduleMeeting stores a meeting and, when it has no date or time, calls
// the lead straight away. The meeting row exists before the call is placed so
// the returned call id can always be attached to it. On a failed call the
// result still carries the meeting id alongside the error.
func (s *MeetingService) ScheduleMeeting(ctx context.Context, req models.ScheduleMeetingRequest) (*ScheduleResult, error) {
	if err := missingFields(
		[2]string{"name", req.Name},
		[2]string{"phone", req.Phone},
		[2]string{"issue", req.Issue},
		[2]string{"goals", req.Goals},
	); err != nil {
		return nil, err
	}

	date, clock := strings.TrimSpace(req.Date), strings.TrimSpace(req.Time)
	callNow := date == "" || clock == ""
	if callNow {
		date, clock = DueSlot(s.now(), s.loc)
	} else {
		var err error
		if date, clock, err = normalizeSlot(date, clock); err != nil {
			return nil, err
		}
	}

	rendered, err := s.templates.Render(req.Name, req.Issue, req.Goals)
	if err != nil {
		return nil, fmt.Errorf("failed to render call script: %w", err)
	}

	meeting := &models.Meeting{
		Name:          req.Name,
		Email:         req.Email,
		Phone:         req.Phone,
		Issue:         req.Issue,
		Goals:         req.Goals,
		Date:          date,
		Time:          clock,
		Task:          rendered.Task,
		FirstSentence: rendered.FirstSentence,
	}

	status := ScheduleScheduled
	if req.ID != nil {
		meeting.ID = *req.ID
		if err := s.store.UpdateMeeting(ctx, meeting); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, fmt.Errorf("%w: meeting %d", ErrNotFound, meeting.ID)
			}
			return nil, fmt.Errorf("failed to update meeting: %w", err)
		}
		status = ScheduleUpdated
	} else if err := s.store.CreateMeeting(ctx, meeting); err != nil {
		return nil, fmt.Errorf("failed to create meeting: %w", err)
	}

	result := &ScheduleResult{Status: status, MeetingID: meeting.ID}
	if !callNow {
		s.log.Info().
			Uint("meeting_id", meeting.ID).
			Str("date", date).
			Str("time", clock).
			Str("status", status).
			Msg("meeting saved")
		return result, nil
	}

	callID, err := dispatchMeeting(ctx, s.dispatcher, s.recorder, meeting, models.OriginRequest)
	if err != nil {
		s.log.Error().Err(err).Uint("meeting_id", meeting.ID).Msg("immediate call failed")
		return result, err
	}
	if err := s.store.SetMeetingCallID(ctx, meeting.ID, callID); err != nil {
		return result, fmt.Errorf("call %s placed but not saved on meeting %d: %w", callID, meeting.ID, err)
	}

	result.Status = ScheduleCalled
	result.CallID = callID
	s.log.Info().
		Uint("meeting_id", meeting.ID).
		Str("call_id", callID).
		Msg("call placed for meeting")
	return result, nil
}

// AgentHandoff places a pathway call that hands the lead to a named voice
// agent. The lead's email comes from the progress row of the current call.
func (s *MeetingService) AgentHandoff(ctx context.Context, req models.AgentHandoffRequest) (string, error) {
	if err := missingFields([2]string{"phone", req.Phone}); err != nil {
		return "", err
	}
	if req.Agent == nil {
		return "", fmt.Errorf("%w: missing required fields: (agent)", ErrValidation)
	}

	progress, err := s.store.GetProgress(ctx, req.CallID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", fmt.Errorf("%w %q", ErrMissingProgress, req.CallID)
		}
		return "", fmt.Errorf("failed to load user progress: %w", err)
	}

	call := HandoffCall{
		Phone:     req.Phone,
		PathwayID: req.PathwayCallID,
		AgentName: req.Agent.Name,
		Voice:     req.Agent.Voice,
		UserName:  req.UserName,
		UserEmail: progress.Email,
	}
	callIDVoice, err := s.dispatcher.DispatchHandoff(ctx, call)
	s.recorder.record(ctx, models.CallAttempt{
		MeetingID: req.ID,
		Kind:      models.CallKindHandoff,
		Origin:    models.OriginRequest,
		Phone:     req.Phone,
	}, handoffAuditBody(s.dispatcher, call), callIDVoice, err)
	if err != nil {
		return "", err
	}

	s.log.Info().
		Str("call_id", req.CallID).
		Str("call_id_voice", callIDVoice).
		Str("agent", req.Agent.Name).
		Msg("agent handoff call placed")
	return callIDVoice, nil
}

// ListMeetings returns every stored meeting
func (s *MeetingService) ListMeetings(ctx context.Context) ([]models.Meeting, error) {
	return s.store.ListMeetings(ctx)
}

// ListCallAttempts returns the calls placed for a meeting
func (s *MeetingService) ListCallAttempts(ctx context.Context, meetingID uint) ([]models.CallAttempt, error) {
	if _, err := s.store.GetMeeting(ctx, meetingID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: meeting %d", ErrNotFound, meetingID)
		}
		return nil, err
	}
	return s.store.ListCallAttempts(ctx, meetingID)
}

// dispatchMeeting places a scripted call from a meeting's stored script
func dispatchMeeting(ctx context.Context, dispatcher CallDispatcher, recorder attemptRecorder, m *models.Meeting, origin string) (string, error) {
	call := ScriptedCall{
		Phone:         m.Phone,
		Task:          m.Task,
		FirstSentence: m.FirstSentence,
		UserName:      m.Name,
	}
	callID, err := dispatcher.DispatchScripted(ctx, call)

	meetingID := m.ID
	recorder.record(ctx, models.CallAttempt{
		MeetingID: &meetingID,
		Kind:      models.CallKindScripted,
		Origin:    origin,
		Phone:     m.Phone,
	}, scriptedAuditBody(dispatcher, call), callID, err)
	return callID, err
}

// DueSlot splits now, in loc and truncated to the minute, into the date and
// time strings meetings are stored with.
func DueSlot(now time.Time, loc *time.Location) (string, string) {
	local := now.In(loc).Truncate(time.Minute)
	return local.Format(models.DateLayout), local.Format(models.TimeLayout)
}

// normalizeSlot checks a requested date and time and rewrites them in the
// zero-padded form the trigger matches against (9:05 becomes 09:05).
func normalizeSlot(date, clock string) (string, string, error) {
	d, err := time.Parse(models.DateLayout, date)
	if err != nil {
		return "", "", fmt.Errorf("%w: date must be YYYY-MM-DD, got %q", ErrValidation, date)
	}
	t, err := time.Parse(models.TimeLayout, clock)
	if err != nil {
		return "", "", fmt.Errorf("%w: time must be HH:MM, got %q", ErrValidation, clock)
	}
	return d.Format(models.DateLayout), t.Format(models.TimeLayout), nil
}
