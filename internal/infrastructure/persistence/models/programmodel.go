// Package models holds the GORM persistence models. Filterable fields
// are broken out into indexed columns; the remainder of each object is
// kept as its wire JSON in a content column.
package models

import (
	"time"

	"gorm.io/datatypes"
)

// ProgramModel is the database model for programs.
type ProgramModel struct {
	ID          string `gorm:"primarykey;size:128"`
	ProgramName string `gorm:"uniqueIndex;not null;size:128"`
	Targets     datatypes.JSON
	Content     datatypes.JSON `gorm:"not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName specifies the table name for GORM
func (ProgramModel) TableName() string {
	return TablePrograms
}
