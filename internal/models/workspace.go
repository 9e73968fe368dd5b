package models

import "time"

// Workspace is the tenancy boundary. The owner is authoritative and is never
// duplicated as a membership row.
type Workspace struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Slug      string    `gorm:"uniqueIndex;not null" json:"slug"`
	OwnerID   uint      `gorm:"index;not null" json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WorkspaceMember joins a user to a workspace with a role. At most one row
// per (workspace, user) pair.
type WorkspaceMember struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	WorkspaceID uint      `gorm:"uniqueIndex:idx_workspace_user;not null" json:"workspace_id"`
	UserID      uint      `gorm:"uniqueIndex:idx_workspace_user;not null" json:"user_id"`
	Role        Role      `gorm:"not null;default:'member'" json:"role"`
	CreatedAt   time.Time `json:"created_at"`
}
