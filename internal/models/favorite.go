package models

import "time"

// Favorite bookmarks a prompt for a user, unique per pair.
type Favorite struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex:idx_favorite_user_prompt;not null" json:"user_id"`
	PromptID  uint      `gorm:"uniqueIndex:idx_favorite_user_prompt;not null" json:"prompt_id"`
	CreatedAt time.Time `json:"created_at"`
}
