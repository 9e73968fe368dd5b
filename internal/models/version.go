package models

import (
	"time"

	"gorm.io/datatypes"
)

// PromptVersion is an immutable, append-only snapshot of a prompt's content,
// numbered sequentially from 1. Rows are never updated or deleted.
type PromptVersion struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	PromptID    uint           `gorm:"uniqueIndex:idx_version_prompt_num;not null" json:"prompt_id"`
	Version     int            `gorm:"uniqueIndex:idx_version_prompt_num;not null" json:"version"`
	Title       string         `json:"title"`
	Content     datatypes.JSON `json:"content"`
	ModelConfig datatypes.JSON `json:"model_config"`
	Variables   datatypes.JSON `json:"variables"`
	CreatedBy   uint           `gorm:"index;not null" json:"created_by"`
	CreatedAt   time.Time      `json:"created_at"`
}
