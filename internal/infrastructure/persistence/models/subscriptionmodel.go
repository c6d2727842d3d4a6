package models

import (
	"time"

	"gorm.io/datatypes"
)

// SubscriptionModel is the database model for subscriptions.
type SubscriptionModel struct {
	ID         string         `gorm:"primarykey;size:128"`
	ClientID   string         `gorm:"not null;index:idx_subscription_client;size:128"`
	ClientName string         `gorm:"not null;size:128"`
	ProgramID  *string        `gorm:"index:idx_subscription_program;size:128"`
	Content    datatypes.JSON `gorm:"not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName specifies the table name for GORM
func (SubscriptionModel) TableName() string {
	return TableSubscriptions
}
