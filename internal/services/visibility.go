package services

import (
	"gorm.io/gorm"

	"promptvault-backend/internal/database"
	"promptvault-backend/internal/models"
)

// PromptVisibleTo is the single visibility predicate every prompt read path
// must go through, direct lookups and listings alike: the prompt is public,
// authored by the caller, or lives in a workspace the caller owns or belongs
// to. Soft-deleted rows are already excluded by the soft-delete clause on the
// model.
func PromptVisibleTo(userID uint) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if userID == 0 {
			return db.Where("prompts.is_public = ?", true)
		}
		memberWorkspaces := database.DB.Session(&gorm.Session{NewDB: true}).
			Model(&models.WorkspaceMember{}).
			Select("workspace_id").
			Where("user_id = ?", userID)
		ownedWorkspaces := database.DB.Session(&gorm.Session{NewDB: true}).
			Model(&models.Workspace{}).
			Select("id").
			Where("owner_id = ?", userID)
		return db.Where(
			"prompts.is_public = ? OR prompts.created_by = ? OR prompts.workspace_id IN (?) OR prompts.workspace_id IN (?)",
			true, userID, memberWorkspaces, ownedWorkspaces,
		)
	}
}
