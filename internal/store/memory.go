package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"leadcaller/internal/models"
)

// Memory is an in-process Store. Nothing survives a restart.
type Memory struct {
	mu sync.Mutex

	nextMeetingID  uint
	nextProgressID uint
	nextAttemptID  uint

	meetings map[uint]models.Meeting
	progress map[string]models.UserProgress
	attempts []models.CallAttempt
}

// NewMemory returns an empty in-memory store
func NewMemory() *Memory {
	return &Memory{
		meetings: map[uint]models.Meeting{},
		progress: map[string]models.UserProgress{},
	}
}

func (s *Memory) CreateMeeting(ctx context.Context, m *models.Meeting) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextMeetingID++
	now := time.Now()
	m.ID = s.nextMeetingID
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now
	s.meetings[m.ID] = copyMeeting(*m)
	return nil
}

func (s *Memory) UpdateMeeting(ctx context.Context, m *models.Meeting) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.meetings[m.ID]
	if !ok {
		return ErrNotFound
	}
	stored.Name = m.Name
	stored.Email = m.Email
	stored.Phone = m.Phone
	stored.Issue = m.Issue
	stored.Goals = m.Goals
	stored.Date = m.Date
	stored.Time = m.Time
	stored.Task = m.Task
	stored.FirstSentence = m.FirstSentence
	stored.CallID = nil
	stored.UpdatedAt = time.Now()
	s.meetings[m.ID] = stored
	return nil
}

func (s *Memory) GetMeeting(ctx context.Context, id uint) (*models.Meeting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.meetings[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := copyMeeting(m)
	return &out, nil
}

func (s *Memory) SetMeetingCallID(ctx context.Context, id uint, callID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.meetings[id]
	if !ok {
		return ErrNotFound
	}
	m.CallID = &callID
	m.UpdatedAt = time.Now()
	s.meetings[id] = m
	return nil
}

func (s *Memory) ListMeetings(ctx context.Context) ([]models.Meeting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Meeting, 0, len(s.meetings))
	for _, m := range s.meetings {
		out = append(out, copyMeeting(m))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Memory) DueMeetings(ctx context.Context, date, clock string) ([]models.Meeting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Meeting
	for _, m := range s.meetings {
		if m.Date == date && m.Time == clock && !m.Dispatched() {
			out = append(out, copyMeeting(m))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Memory) GetProgress(ctx context.Context, callID string) (*models.UserProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.progress[callID]
	if !ok {
		return nil, ErrNotFound
	}
	out := copyProgress(p)
	return &out, nil
}

func (s *Memory) CreateProgress(ctx context.Context, p *models.UserProgress) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.progress[p.CallID]; exists {
		return ErrDuplicate
	}
	s.nextProgressID++
	now := time.Now()
	p.ID = s.nextProgressID
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.Context == nil {
		p.Context = models.Context{}
	}
	s.progress[p.CallID] = copyProgress(*p)
	return nil
}

func (s *Memory) SaveProgress(ctx context.Context, p *models.UserProgress) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.progress[p.CallID]
	if !ok {
		return ErrNotFound
	}
	p.ID = stored.ID
	p.CreatedAt = stored.CreatedAt
	p.UpdatedAt = time.Now()
	s.progress[p.CallID] = copyProgress(*p)
	return nil
}

func (s *Memory) UpdateCallIDVoice(ctx context.Context, callID, callIDVoice string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.progress[callID]
	if !ok {
		return ErrNotFound
	}
	p.CallIDVoice = callIDVoice
	p.UpdatedAt = time.Now()
	s.progress[callID] = p
	return nil
}

func (s *Memory) RecordCallAttempt(ctx context.Context, a *models.CallAttempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextAttemptID++
	a.ID = s.nextAttemptID
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	s.attempts = append(s.attempts, *a)
	return nil
}

func (s *Memory) ListCallAttempts(ctx context.Context, meetingID uint) ([]models.CallAttempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.CallAttempt{}
	for _, a := range s.attempts {
		if a.MeetingID != nil && *a.MeetingID == meetingID {
			out = append(out, a)
		}
	}
	return out, nil
}

func copyMeeting(m models.Meeting) models.Meeting {
	if m.CallID != nil {
		id := *m.CallID
		m.CallID = &id
	}
	return m
}

func copyProgress(p models.UserProgress) models.UserProgress {
	ctx := make(models.Context, len(p.Context))
	for k, v := range p.Context {
		ctx[k] = v
	}
	p.Context = ctx
	return p
}
