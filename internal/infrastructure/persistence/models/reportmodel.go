package models

import (
	"time"

	"gorm.io/datatypes"
)

// ReportModel is the database model for reports. ClientID records the
// authenticated creator and gates later writes.
type ReportModel struct {
	ID         string  `gorm:"primarykey;size:128"`
	ProgramID  string  `gorm:"not null;index:idx_report_program;size:128"`
	EventID    string  `gorm:"not null;index:idx_report_event;size:128"`
	ClientID   string  `gorm:"not null;index:idx_report_client;size:128"`
	ClientName string  `gorm:"not null;size:128"`
	ReportName *string `gorm:"size:128"`
	Content    datatypes.JSON `gorm:"not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName specifies the table name for GORM
func (ReportModel) TableName() string {
	return TableReports
}
