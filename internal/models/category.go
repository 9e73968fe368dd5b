package models

import "time"

// Category is a workspace-scoped, optionally hierarchical tag for prompts.
// The parent category, if set, must belong to the same workspace.
type Category struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	WorkspaceID uint      `gorm:"uniqueIndex:idx_category_ws_slug;not null" json:"workspace_id"`
	ParentID    *uint     `gorm:"index" json:"parent_id,omitempty"`
	Name        string    `gorm:"not null" json:"name"`
	Slug        string    `gorm:"uniqueIndex:idx_category_ws_slug;not null" json:"slug"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
