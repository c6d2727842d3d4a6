package models

import (
	"time"

	"gorm.io/datatypes"
)

// EventModel is the database model for events. Priority is nullable so
// the unspecified priority sorts after every numeric one.
type EventModel struct {
	ID        string  `gorm:"primarykey;size:128"`
	ProgramID string  `gorm:"not null;index:idx_event_program;size:128"`
	EventName *string `gorm:"size:128"`
	Priority  *int64
	Targets   datatypes.JSON
	Content   datatypes.JSON `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the table name for GORM
func (EventModel) TableName() string {
	return TableEvents
}
