package models

import (
	"time"

	"gorm.io/datatypes"
)

// Call kinds recorded on CallAttempt
const (
	CallKindScripted = "scripted"
	CallKindHandoff  = "handoff"
)

// Call attempt origins
const (
	OriginRequest = "request"
	OriginTrigger = "trigger"
)

// CallAttempt is an audit entry for one request to the calling provider
type CallAttempt struct {
	ID        uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	MeetingID *uint          `gorm:"index" json:"meeting_id,omitempty"`
	Kind      string         `gorm:"size:16;not null" json:"kind"`
	Origin    string         `gorm:"size:16;not null" json:"origin"`
	Phone     string         `gorm:"size:32;not null" json:"phone"`
	Payload   datatypes.JSON `gorm:"type:jsonb" json:"payload"`
	CallID    string         `gorm:"size:128" json:"call_id,omitempty"`
	Success   bool           `gorm:"not null" json:"success"`
	Error     string         `gorm:"type:text" json:"error,omitempty"`
	CreatedAt time.Time      `gorm:"not null;index" json:"created_at"`
}

// TableName specifies the table name for the CallAttempt model
func (CallAttempt) TableName() string {
	return "call_attempts"
}
