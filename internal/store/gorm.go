package store

import (
	"context"
	"errors"
	"time"

	"leadcaller/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DueMeetingsQueryPattern identifies the per-minute poll in SQL logs
const DueMeetingsQueryPattern = "call_id IS NULL OR call_id = ''"

// Gorm is the relational Store
type Gorm struct {
	db *gorm.DB
}

// NewGorm wraps an open gorm connection
func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

// Migrate creates or updates the tables this store uses
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Meeting{},
		&models.UserProgress{},
		&models.CallAttempt{},
	)
}

func (s *Gorm) CreateMeeting(ctx context.Context, m *models.Meeting) error {
	return s.db.WithContext(ctx).Create(m).Error
}

func (s *Gorm) UpdateMeeting(ctx context.Context, m *models.Meeting) error {
	result := s.db.WithContext(ctx).
		Model(&models.Meeting{}).
		Where("id = ?", m.ID).
		Select("name", "email", "phone", "issue", "goals", "date", "time", "task", "first_sentence", "call_id", "updated_at").
		Updates(map[string]interface{}{
			"name":           m.Name,
			"email":          m.Email,
			"phone":          m.Phone,
			"issue":          m.Issue,
			"goals":          m.Goals,
			"date":           m.Date,
			"time":           m.Time,
			"task":           m.Task,
			"first_sentence": m.FirstSentence,
			"call_id":        nil,
			"updated_at":     time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Gorm) GetMeeting(ctx context.Context, id uint) (*models.Meeting, error) {
	var m models.Meeting
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

func (s *Gorm) SetMeetingCallID(ctx context.Context, id uint, callID string) error {
	result := s.db.WithContext(ctx).
		Model(&models.Meeting{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"call_id": callID, "updated_at": time.Now()})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Gorm) ListMeetings(ctx context.Context) ([]models.Meeting, error) {
	meetings := []models.Meeting{}
	if err := s.db.WithContext(ctx).Order("id").Find(&meetings).Error; err != nil {
		return nil, err
	}
	return meetings, nil
}

func (s *Gorm) DueMeetings(ctx context.Context, date, clock string) ([]models.Meeting, error) {
	var meetings []models.Meeting
	err := s.db.WithContext(ctx).
		Where("date = ? AND time = ?", date, clock).
		Where("call_id IS NULL OR call_id = ''").
		Order("id").
		Find(&meetings).Error
	if err != nil {
		return nil, err
	}
	return meetings, nil
}

func (s *Gorm) GetProgress(ctx context.Context, callID string) (*models.UserProgress, error) {
	var p models.UserProgress
	if err := s.db.WithContext(ctx).Where("call_id = ?", callID).First(&p).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

// CreateProgress inserts p unless its call id already has a row, in which
// case it returns ErrDuplicate without failing the surrounding transaction.
func (s *Gorm) CreateProgress(ctx context.Context, p *models.UserProgress) error {
	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "call_id"}}, DoNothing: true}).
		Create(p)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrDuplicate
	}
	return nil
}

func (s *Gorm) SaveProgress(ctx context.Context, p *models.UserProgress) error {
	result := s.db.WithContext(ctx).
		Model(p).
		Where("call_id = ?", p.CallID).
		Select("email", "name", "pathway_id", "call_id_voice", "current_step", "context", "updated_at").
		Updates(p)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Gorm) UpdateCallIDVoice(ctx context.Context, callID, callIDVoice string) error {
	result := s.db.WithContext(ctx).
		Model(&models.UserProgress{}).
		Where("call_id = ?", callID).
		Updates(map[string]interface{}{"call_id_voice": callIDVoice, "updated_at": time.Now()})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Gorm) RecordCallAttempt(ctx context.Context, a *models.CallAttempt) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	return s.db.WithContext(ctx).Create(a).Error
}

func (s *Gorm) ListCallAttempts(ctx context.Context, meetingID uint) ([]models.CallAttempt, error) {
	attempts := []models.CallAttempt{}
	err := s.db.WithContext(ctx).
		Where("meeting_id = ?", meetingID).
		Order("created_at, id").
		Find(&attempts).Error
	if err != nil {
		return nil, err
	}
	return attempts, nil
}

// translate maps gorm sentinels onto store errors. Duplicate keys are only
// recognised when the connection was opened with TranslateError.
func translate(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	}
	return err
}
