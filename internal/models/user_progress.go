package models

import (
	"time"

	"gorm.io/gorm"
)

// UserProgress tracks where an in-call voice agent is in its conversation.
// There is one row per call session, keyed by CallID.
type UserProgress struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CallID      string    `gorm:"size:128;not null;uniqueIndex" json:"call_id"`
	Email       string    `gorm:"size:255" json:"email"`
	Name        string    `gorm:"size:255" json:"name"`
	PathwayID   string    `gorm:"size:128" json:"pathway_id"`
	CallIDVoice string    `gorm:"size:128" json:"call_id_voice"`
	CurrentStep string    `gorm:"size:255" json:"current_step"`
	Context     Context   `gorm:"type:text" json:"context"`
	CreatedAt   time.Time `gorm:"not null;<-:create" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

// BeforeCreate hook is called before inserting a progress row
func (p *UserProgress) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.Context == nil {
		p.Context = Context{}
	}
	return nil
}

// BeforeSave hook refreshes the mutation timestamp
func (p *UserProgress) BeforeSave(tx *gorm.DB) error {
	p.UpdatedAt = time.Now()
	return nil
}

// TableName specifies the table name for the UserProgress model
func (UserProgress) TableName() string {
	return "user_progress"
}

// ProgressReport is the body of POST /user-progress
type ProgressReport struct {
	CallID      string  `json:"call_id"`
	CurrentStep string  `json:"current_step"`
	Context     Context `json:"context"`
	CallIDVoice string  `json:"call_id_voice"`
	PathwayID   string  `json:"pathway_id"`
	Email       string  `json:"email"`
	Name        string  `json:"name"`
}

// PatchCallIDVoiceRequest is the body of PATCH /user-progress/:call_id
type PatchCallIDVoiceRequest struct {
	CallIDVoice string `json:"call_id_voice"`
}
