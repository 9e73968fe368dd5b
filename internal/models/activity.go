package models

import (
	"time"

	"gorm.io/datatypes"
)

// ActivityAction enumerates the recorded event kinds.
type ActivityAction string

const (
	ActivityCreate    ActivityAction = "create"
	ActivityUpdate    ActivityAction = "update"
	ActivityDelete    ActivityAction = "delete"
	ActivityFork      ActivityAction = "fork"
	ActivityDuplicate ActivityAction = "duplicate"
)

// Activity is an append-only audit log entry. Rows are write-only from the
// engine's perspective.
type Activity struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	WorkspaceID uint           `gorm:"index;not null" json:"workspace_id"`
	UserID      uint           `gorm:"index;not null" json:"user_id"`
	Action      ActivityAction `gorm:"not null" json:"action"`
	TargetType  string         `gorm:"not null" json:"target_type"`
	TargetID    uint           `gorm:"not null" json:"target_id"`
	Metadata    datatypes.JSON `json:"metadata"`
	CreatedAt   time.Time      `json:"created_at"`
}
