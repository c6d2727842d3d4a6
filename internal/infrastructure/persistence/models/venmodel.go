package models

import (
	"time"

	"gorm.io/datatypes"
)

// VenModel is the database model for VENs.
type VenModel struct {
	ID        string `gorm:"primarykey;size:128"`
	ClientID  string `gorm:"uniqueIndex;not null;size:128"`
	VenName   string `gorm:"uniqueIndex;not null;size:128"`
	Targets   datatypes.JSON
	Content   datatypes.JSON `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the table name for GORM
func (VenModel) TableName() string {
	return TableVens
}
