package services

import (
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"promptvault-backend/internal/apperr"
	"promptvault-backend/internal/database"
	"promptvault-backend/internal/models"
)

// snapshotBlocks serializes a prompt's blocks, in position order, into the
// content payload of an immutable version row.
func snapshotBlocks(tx *gorm.DB, promptID uint) (datatypes.JSON, error) {
	var blocks []models.Block
	if err := tx.Where("prompt_id = ?", promptID).Order("position asc").Find(&blocks).Error; err != nil {
		return nil, err
	}
	data, err := json.Marshal(map[string]interface{}{"blocks": blocks})
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(data), nil
}

// createVersion appends the next PromptVersion for prompt and advances
// current_version, inside the caller's transaction. Version rows are never
// updated or deleted afterwards.
func createVersion(tx *gorm.DB, prompt *models.Prompt, userID uint, content datatypes.JSON) (*models.PromptVersion, error) {
	version := &models.PromptVersion{
		PromptID:    prompt.ID,
		Version:     prompt.CurrentVersion + 1,
		Title:       prompt.Title,
		Content:     content,
		ModelConfig: prompt.ModelConfig,
		Variables:   prompt.Variables,
		CreatedBy:   userID,
	}
	if err := tx.Create(version).Error; err != nil {
		return nil, err
	}
	if err := tx.Model(&models.Prompt{}).Where("id = ?", prompt.ID).
		UpdateColumn("current_version", version.Version).Error; err != nil {
		return nil, err
	}
	prompt.CurrentVersion = version.Version
	return version, nil
}

// SnapshotPrompt appends a new version capturing the prompt's current blocks,
// model configuration and variables.
func SnapshotPrompt(promptID, callerID uint) (*models.PromptVersion, error) {
	prompt, ws, err := getVisiblePrompt(promptID, callerID)
	if err != nil {
		return nil, err
	}
	if err := authorizePromptAction(callerID, ws, prompt, ActionEdit); err != nil {
		return nil, err
	}

	var version *models.PromptVersion
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		content, err := snapshotBlocks(tx, prompt.ID)
		if err != nil {
			return err
		}
		version, err = createVersion(tx, prompt, callerID, content)
		return err
	})
	if err != nil {
		return nil, apperr.Internal(err)
	}

	invalidatePromptCache(ws, prompt)
	return version, nil
}

// ListPromptVersions returns a visible prompt's versions, newest first.
func ListPromptVersions(promptID, callerID uint, page, limit int) ([]models.PromptVersion, int64, error) {
	prompt, ws, err := getVisiblePrompt(promptID, callerID)
	if err != nil {
		return nil, 0, err
	}
	if err := authorizePromptAction(callerID, ws, prompt, ActionRead); err != nil {
		return nil, 0, err
	}

	page, limit = normalizePage(page, limit)

	var versions []models.PromptVersion
	var total int64
	db := database.DB.Model(&models.PromptVersion{}).Where("prompt_id = ?", promptID)
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, apperr.Internal(err)
	}
	err = db.Order("version desc").Offset((page - 1) * limit).Limit(limit).Find(&versions).Error
	if err != nil {
		return nil, 0, apperr.Internal(err)
	}
	return versions, total, nil
}

// copyBlocks duplicates every block of one prompt into another, preserving
// relative order.
func copyBlocks(tx *gorm.DB, fromPromptID, toPromptID uint) error {
	var blocks []models.Block
	if err := tx.Where("prompt_id = ?", fromPromptID).Order("position asc").Find(&blocks).Error; err != nil {
		return err
	}
	for _, source := range blocks {
		block := models.Block{
			PromptID:    toPromptID,
			Type:        source.Type,
			Content:     source.Content,
			Position:    source.Position,
			IndentLevel: source.IndentLevel,
		}
		if err := tx.Create(&block).Error; err != nil {
			return err
		}
	}
	return nil
}

// DuplicatePrompt copies a visible document within its own workspace with no
// lineage pointer. Duplicates always start private and non-template,
// whatever the source's flags were.
func DuplicatePrompt(promptID, callerID uint) (*models.Prompt, error) {
	source, ws, err := getVisiblePrompt(promptID, callerID)
	if err != nil {
		return nil, err
	}
	if err := authorizePromptAction(callerID, ws, source, ActionRead); err != nil {
		return nil, err
	}
	decision, err := Authorize(callerID, ws, ActionCreateContent)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, DecisionError(decision)
	}

	var copy *models.Prompt
	err = withSlugRetry(func() error {
		return database.DB.Transaction(func(tx *gorm.DB) error {
			slug, err := AllocatePromptSlug(tx, ws.ID, source.Slug+"-copy")
			if err != nil {
				return err
			}
			copy = &models.Prompt{
				WorkspaceID: ws.ID,
				CreatedBy:   callerID,
				CategoryID:  source.CategoryID,
				Title:       source.Title,
				Slug:        slug,
				Description: source.Description,
				ModelConfig: source.ModelConfig,
				Variables:   source.Variables,
				IsPublic:    false,
				IsTemplate:  false,
			}
			if err := tx.Create(copy).Error; err != nil {
				return err
			}
			if err := copyBlocks(tx, source.ID, copy.ID); err != nil {
				return err
			}
			content, err := snapshotBlocks(tx, copy.ID)
			if err != nil {
				return err
			}
			if _, err := createVersion(tx, copy, callerID, content); err != nil {
				return err
			}
			return RecordActivity(tx, ws.ID, callerID, models.ActivityDuplicate, "prompt", copy.ID, map[string]interface{}{
				"source_prompt_id": source.ID,
				"new_prompt_id":    copy.ID,
			})
		})
	})
	if err != nil {
		if apperr.CodeOf(err) != apperr.CodeInternal {
			return nil, err
		}
		return nil, apperr.Internal(err)
	}
	return copy, nil
}

// ForkPrompt copies a visible document with a permanent lineage pointer. The
// target workspace defaults to the source's but may be any workspace where
// the caller holds EDITOR or higher; the read is checked against the source,
// the write against the target. The prompt row, block copies, fork-count
// increment, activity entry and initial version commit or roll back together.
func ForkPrompt(promptID, callerID uint, targetWorkspaceID *uint) (*models.Prompt, error) {
	source, sourceWs, err := getVisiblePrompt(promptID, callerID)
	if err != nil {
		return nil, err
	}
	if err := authorizePromptAction(callerID, sourceWs, source, ActionRead); err != nil {
		return nil, err
	}

	target := sourceWs
	if targetWorkspaceID != nil && *targetWorkspaceID != sourceWs.ID {
		target, err = getWorkspace(*targetWorkspaceID)
		if err != nil {
			return nil, err
		}
	}
	decision, err := Authorize(callerID, target, ActionFork)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, DecisionError(decision)
	}

	var fork *models.Prompt
	err = withSlugRetry(func() error {
		return database.DB.Transaction(func(tx *gorm.DB) error {
			slug, err := AllocatePromptSlug(tx, target.ID, source.Slug)
			if err != nil {
				return err
			}
			parentID := source.ID
			fork = &models.Prompt{
				WorkspaceID: target.ID,
				CreatedBy:   callerID,
				ParentID:    &parentID,
				Title:       source.Title,
				Slug:        slug,
				Description: source.Description,
				ModelConfig: source.ModelConfig,
				Variables:   source.Variables,
				IsPublic:    false,
				IsTemplate:  false,
			}
			if err := tx.Create(fork).Error; err != nil {
				return err
			}
			if err := copyBlocks(tx, source.ID, fork.ID); err != nil {
				return err
			}
			if err := tx.Model(&models.Prompt{}).Where("id = ?", source.ID).
				UpdateColumn("fork_count", gorm.Expr("fork_count + 1")).Error; err != nil {
				return err
			}
			err = RecordActivity(tx, sourceWs.ID, callerID, models.ActivityFork, "prompt", fork.ID, map[string]interface{}{
				"source_prompt_id":    source.ID,
				"fork_prompt_id":      fork.ID,
				"target_workspace_id": target.ID,
			})
			if err != nil {
				return err
			}

			content, err := forkSnapshot(tx, fork.ID, source)
			if err != nil {
				return err
			}
			_, err = createVersion(tx, fork, callerID, content)
			return err
		})
	})
	if err != nil {
		if apperr.CodeOf(err) != apperr.CodeInternal {
			return nil, err
		}
		return nil, apperr.Internal(err)
	}

	// The source's fork_count changed.
	invalidatePromptCache(sourceWs, source)
	return fork, nil
}

// forkSnapshot builds the fork's initial version content: the copied blocks
// plus a structured reference to the exact source version forked from.
func forkSnapshot(tx *gorm.DB, forkPromptID uint, source *models.Prompt) (datatypes.JSON, error) {
	var blocks []models.Block
	if err := tx.Where("prompt_id = ?", forkPromptID).Order("position asc").Find(&blocks).Error; err != nil {
		return nil, err
	}
	data, err := json.Marshal(map[string]interface{}{
		"blocks": blocks,
		"forked_from": map[string]interface{}{
			"prompt_id": source.ID,
			"version":   source.CurrentVersion,
		},
	})
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(data), nil
}
