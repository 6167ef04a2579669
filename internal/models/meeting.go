package models

import (
	"time"

	"gorm.io/gorm"
)

// Slot layouts for Meeting.Date and Meeting.Time
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Meeting is a lead who asked to be called, either now or at a date and time
// in the configured call timezone. Task and FirstSentence are the call script
// rendered when the meeting was last saved; dispatch uses them as stored.
type Meeting struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name          string    `gorm:"size:255;not null" json:"name"`
	Email         string    `gorm:"size:255" json:"email"`
	Phone         string    `gorm:"size:32;not null" json:"phone"`
	Issue         string    `gorm:"type:text" json:"issue"`
	Goals         string    `gorm:"type:text" json:"goals"`
	Date          string    `gorm:"size:10;index:idx_meetings_slot" json:"date"`
	Time          string    `gorm:"size:5;index:idx_meetings_slot" json:"time"`
	Task          string    `gorm:"type:text" json:"task"`
	FirstSentence string    `gorm:"type:text" json:"first_sentence"`
	CallID        *string   `gorm:"size:128;index" json:"call_id"`
	CreatedAt     time.Time `gorm:"not null;<-:create" json:"created_at"`
	UpdatedAt     time.Time `gorm:"not null" json:"updated_at"`
}

// BeforeCreate hook is called before inserting a meeting
func (m *Meeting) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	if m.UpdatedAt.IsZero() {
		m.UpdatedAt = now
	}
	return nil
}

// Dispatched reports whether a call has already been placed for this meeting
func (m *Meeting) Dispatched() bool {
	return m.CallID != nil && *m.CallID != ""
}

// TableName specifies the table name for the Meeting model
func (Meeting) TableName() string {
	return "meetings"
}

// ScheduleMeetingRequest is the body of POST /schedule-meeting
type ScheduleMeetingRequest struct {
	ID    *uint  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Issue string `json:"issue"`
	Goals string `json:"goals"`
	Date  string `json:"date"`
	Time  string `json:"time"`
}

// Agent describes the voice agent taking over a call
type Agent struct {
	Name  string `json:"name"`
	Voice string `json:"voice"`
}

// AgentHandoffRequest is the body of POST /meeting-agent
type AgentHandoffRequest struct {
	ID            *uint  `json:"id"`
	PathwayCallID string `json:"pathway_call_id"`
	Phone         string `json:"phone"`
	Agent         *Agent `json:"agent"`
	CallID        string `json:"call_id"`
	UserName      string `json:"user_name"`
}
