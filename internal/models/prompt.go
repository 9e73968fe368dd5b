package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/plugin/soft_delete"
)

// Prompt is the core content entity: a document composed of ordered blocks,
// scoped to one workspace. Slug is unique among live rows of a workspace;
// soft_delete keeps deleted_at at 0 for live rows so the composite unique
// index frees the slug on deletion.
type Prompt struct {
	ID             uint                  `gorm:"primarykey" json:"id"`
	WorkspaceID    uint                  `gorm:"uniqueIndex:idx_prompt_ws_slug;not null" json:"workspace_id"`
	CreatedBy      uint                  `gorm:"index;not null" json:"created_by"`
	CategoryID     *uint                 `gorm:"index" json:"category_id,omitempty"`
	ParentID       *uint                 `gorm:"index" json:"parent_id,omitempty"`
	Title          string                `gorm:"not null" json:"title"`
	Slug           string                `gorm:"uniqueIndex:idx_prompt_ws_slug;not null" json:"slug"`
	Description    string                `json:"description"`
	ModelConfig    datatypes.JSON        `json:"model_config"`
	Variables      datatypes.JSON        `json:"variables"`
	IsPublic       bool                  `gorm:"index;default:false" json:"is_public"`
	IsTemplate     bool                  `gorm:"index;default:false" json:"is_template"`
	IsPinned       bool                  `gorm:"default:false" json:"is_pinned"`
	CurrentVersion int                   `gorm:"default:0" json:"current_version"`
	ForkCount      int                   `gorm:"default:0" json:"fork_count"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
	DeletedAt      soft_delete.DeletedAt `gorm:"uniqueIndex:idx_prompt_ws_slug" json:"-"`
}
