package models

import (
	"time"

	"gorm.io/datatypes"
)

// ResourceModel is the database model for resources. Resource names are
// unique within their VEN.
type ResourceModel struct {
	ID           string `gorm:"primarykey;size:128"`
	VenID        string `gorm:"not null;uniqueIndex:idx_ven_resource_name,priority:1;size:128"`
	ResourceName string `gorm:"not null;uniqueIndex:idx_ven_resource_name,priority:2;size:128"`
	Targets      datatypes.JSON
	Content      datatypes.JSON `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName specifies the table name for GORM
func (ResourceModel) TableName() string {
	return TableResources
}
