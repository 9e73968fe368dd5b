package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"promptvault-backend/internal/apperr"
	"promptvault-backend/internal/database"
	"promptvault-backend/internal/models"
)

const (
	titleMaxLength = 200

	promptCacheDuration = 24 * time.Hour

	defaultPageLimit = 20
	maxPageLimit     = 100
)

func promptCacheKey(workspaceSlug, promptSlug string) string {
	return fmt.Sprintf("prompt:%s:%s", workspaceSlug, promptSlug)
}

// CreatePromptInput carries the creation fields for a document.
type CreatePromptInput struct {
	Title       string
	WorkspaceID uint
	CategoryID  *uint
	Description string
	IsTemplate  bool
	IsPublic    bool
}

// UpdatePromptInput carries a partial update; nil fields are left untouched.
// A non-nil Blocks replaces the document's whole block list and snapshots a
// new version.
type UpdatePromptInput struct {
	Title       *string
	Description *string
	CategoryID  *uint
	// ClearCategory detaches the document from its category. Mutually
	// exclusive with CategoryID.
	ClearCategory bool
	IsPublic      *bool
	IsTemplate    *bool
	IsPinned      *bool
	Blocks        *[]CreateBlockInput
}

// ListPromptsParams filters and pages a workspace listing.
type ListPromptsParams struct {
	Page       int
	Limit      int
	Search     string
	CategoryID *uint
	IsTemplate *bool
}

// Pagination describes one page of a listing result.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}

func validateTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return apperr.Validation("title is required")
	}
	if len(title) > titleMaxLength {
		return apperr.Validation(fmt.Sprintf("title must be at most %d characters", titleMaxLength))
	}
	return nil
}

func getWorkspace(workspaceID uint) (*models.Workspace, error) {
	var ws models.Workspace
	if err := database.DB.First(&ws, workspaceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound()
		}
		return nil, apperr.Internal(err)
	}
	return &ws, nil
}

// getVisiblePrompt loads a prompt through the visibility predicate, together
// with its workspace. Absent and hidden are indistinguishable to the caller.
func getVisiblePrompt(promptID, callerID uint) (*models.Prompt, *models.Workspace, error) {
	var prompt models.Prompt
	err := database.DB.Scopes(PromptVisibleTo(callerID)).First(&prompt, promptID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperr.NotFound()
		}
		return nil, nil, apperr.Internal(err)
	}
	ws, err := getWorkspace(prompt.WorkspaceID)
	if err != nil {
		return nil, nil, err
	}
	return &prompt, ws, nil
}

// authorizePromptAction resolves and enforces a prompt-level action,
// converting a denial to the caller-facing error.
func authorizePromptAction(callerID uint, ws *models.Workspace, prompt *models.Prompt, action Action) error {
	decision, err := AuthorizePrompt(callerID, ws, prompt, action)
	if err != nil {
		return err
	}
	if !decision.Allowed {
		return DecisionError(decision)
	}
	return nil
}

func checkCategory(categoryID *uint, workspaceID uint) error {
	if categoryID == nil {
		return nil
	}
	var category models.Category
	if err := database.DB.First(&category, *categoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.Validation("category does not exist")
		}
		return apperr.Internal(err)
	}
	if category.WorkspaceID != workspaceID {
		return apperr.Validation("category belongs to another workspace")
	}
	return nil
}

// CreatePrompt creates a document: slug allocated, prompt row and initial
// version snapshot written in one transaction, retried once on a slug race.
func CreatePrompt(callerID uint, in CreatePromptInput) (*models.Prompt, error) {
	if err := validateTitle(in.Title); err != nil {
		return nil, err
	}
	ws, err := getWorkspace(in.WorkspaceID)
	if err != nil {
		return nil, err
	}
	decision, err := Authorize(callerID, ws, ActionCreateContent)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, DecisionError(decision)
	}
	if err := checkCategory(in.CategoryID, ws.ID); err != nil {
		return nil, err
	}

	var prompt *models.Prompt
	err = withSlugRetry(func() error {
		return database.DB.Transaction(func(tx *gorm.DB) error {
			slug, err := AllocatePromptSlug(tx, ws.ID, in.Title)
			if err != nil {
				return err
			}
			prompt = &models.Prompt{
				WorkspaceID: ws.ID,
				CreatedBy:   callerID,
				CategoryID:  in.CategoryID,
				Title:       strings.TrimSpace(in.Title),
				Slug:        slug,
				Description: in.Description,
				IsTemplate:  in.IsTemplate,
				IsPublic:    in.IsPublic,
			}
			if err := tx.Create(prompt).Error; err != nil {
				return err
			}
			content, err := snapshotBlocks(tx, prompt.ID)
			if err != nil {
				return err
			}
			if _, err := createVersion(tx, prompt, callerID, content); err != nil {
				return err
			}
			return RecordActivity(tx, ws.ID, callerID, models.ActivityCreate, "prompt", prompt.ID, nil)
		})
	})
	if err != nil {
		if apperr.CodeOf(err) != apperr.CodeInternal {
			return nil, err
		}
		return nil, apperr.Internal(err)
	}
	return prompt, nil
}

// GetPrompt resolves a document by workspace and document slug. Public
// documents are served cache-first since their visibility does not depend on
// the caller.
func GetPrompt(workspaceSlug, promptSlug string, callerID uint) (*models.Prompt, error) {
	cacheKey := promptCacheKey(workspaceSlug, promptSlug)
	if database.RedisClient != nil {
		val, err := database.RedisClient.Get(database.Ctx, cacheKey).Result()
		if err == nil {
			var cached models.Prompt
			if err := json.Unmarshal([]byte(val), &cached); err == nil && cached.IsPublic {
				return &cached, nil
			}
		}
	}

	var ws models.Workspace
	if err := database.DB.Where("slug = ?", workspaceSlug).First(&ws).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound()
		}
		return nil, apperr.Internal(err)
	}

	var prompt models.Prompt
	err := database.DB.Scopes(PromptVisibleTo(callerID)).
		Where("workspace_id = ? AND slug = ?", ws.ID, promptSlug).
		First(&prompt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound()
		}
		return nil, apperr.Internal(err)
	}

	if prompt.IsPublic && database.RedisClient != nil {
		if data, err := json.Marshal(prompt); err == nil {
			database.RedisClient.Set(database.Ctx, cacheKey, data, promptCacheDuration)
		}
	}

	return &prompt, nil
}

func invalidatePromptCache(ws *models.Workspace, prompt *models.Prompt) {
	if database.RedisClient != nil {
		database.RedisClient.Del(database.Ctx, promptCacheKey(ws.Slug, prompt.Slug))
	}
}

// UpdatePrompt applies a partial update. Replacing the block list snapshots a
// new version in the same transaction.
func UpdatePrompt(promptID, callerID uint, in UpdatePromptInput) (*models.Prompt, error) {
	prompt, ws, err := getVisiblePrompt(promptID, callerID)
	if err != nil {
		return nil, err
	}
	if err := authorizePromptAction(callerID, ws, prompt, ActionEdit); err != nil {
		return nil, err
	}

	if in.Title != nil {
		if err := validateTitle(*in.Title); err != nil {
			return nil, err
		}
	}
	if in.ClearCategory && in.CategoryID != nil {
		return nil, apperr.Validation("category_id and clear_category are mutually exclusive")
	}
	if in.CategoryID != nil {
		if err := checkCategory(in.CategoryID, ws.ID); err != nil {
			return nil, err
		}
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{}
		if in.Title != nil {
			updates["title"] = strings.TrimSpace(*in.Title)
		}
		if in.Description != nil {
			updates["description"] = *in.Description
		}
		if in.CategoryID != nil {
			updates["category_id"] = *in.CategoryID
		}
		if in.ClearCategory {
			updates["category_id"] = nil
		}
		if in.IsPublic != nil {
			updates["is_public"] = *in.IsPublic
		}
		if in.IsTemplate != nil {
			updates["is_template"] = *in.IsTemplate
		}
		if in.IsPinned != nil {
			updates["is_pinned"] = *in.IsPinned
		}
		if len(updates) > 0 {
			if err := tx.Model(prompt).Updates(updates).Error; err != nil {
				return err
			}
		}

		if in.Blocks != nil {
			if err := replaceBlocks(tx, prompt.ID, *in.Blocks); err != nil {
				return err
			}
			content, err := snapshotBlocks(tx, prompt.ID)
			if err != nil {
				return err
			}
			if _, err := createVersion(tx, prompt, callerID, content); err != nil {
				return err
			}
		}

		return RecordActivity(tx, ws.ID, callerID, models.ActivityUpdate, "prompt", prompt.ID, nil)
	})
	if err != nil {
		if apperr.CodeOf(err) != apperr.CodeInternal {
			return nil, err
		}
		return nil, apperr.Internal(err)
	}

	invalidatePromptCache(ws, prompt)

	if err := database.DB.First(prompt, prompt.ID).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return prompt, nil
}

// DeletePrompt soft-deletes a document. The row is never hard-deleted; every
// read path excludes it from now on.
func DeletePrompt(promptID, callerID uint) error {
	prompt, ws, err := getVisiblePrompt(promptID, callerID)
	if err != nil {
		return err
	}
	if err := authorizePromptAction(callerID, ws, prompt, ActionDelete); err != nil {
		return err
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(prompt).Error; err != nil {
			return err
		}
		return RecordActivity(tx, ws.ID, callerID, models.ActivityDelete, "prompt", prompt.ID, nil)
	})
	if err != nil {
		return apperr.Internal(err)
	}

	invalidatePromptCache(ws, prompt)
	return nil
}

// ToggleFavorite flips the caller's bookmark on a visible document and
// returns the new state.
func ToggleFavorite(promptID, callerID uint) (bool, error) {
	prompt, ws, err := getVisiblePrompt(promptID, callerID)
	if err != nil {
		return false, err
	}
	if err := authorizePromptAction(callerID, ws, prompt, ActionRead); err != nil {
		return false, err
	}
	if callerID == 0 {
		return false, apperr.Permission("sign in to favorite")
	}

	var favorite models.Favorite
	err = database.DB.Where("user_id = ? AND prompt_id = ?", callerID, promptID).First(&favorite).Error
	if err == nil {
		if err := database.DB.Delete(&favorite).Error; err != nil {
			return false, apperr.Internal(err)
		}
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, apperr.Internal(err)
	}

	favorite = models.Favorite{UserID: callerID, PromptID: promptID}
	if err := database.DB.Create(&favorite).Error; err != nil {
		// A concurrent toggle won the insert; the bookmark exists either way.
		if isUniqueViolation(err) {
			return true, nil
		}
		return false, apperr.Internal(err)
	}
	return true, nil
}

// ListWorkspacePrompts lists a workspace's documents through the same
// visibility predicate as GetPrompt, so the two can never disagree.
func ListWorkspacePrompts(workspaceID, callerID uint, params ListPromptsParams) ([]models.Prompt, Pagination, error) {
	if _, err := getWorkspace(workspaceID); err != nil {
		return nil, Pagination{}, err
	}

	page, limit := normalizePage(params.Page, params.Limit)

	db := database.DB.Model(&models.Prompt{}).
		Scopes(PromptVisibleTo(callerID)).
		Where("workspace_id = ?", workspaceID)

	if params.Search != "" {
		like := "%" + params.Search + "%"
		db = db.Where("title LIKE ? OR description LIKE ?", like, like)
	}
	if params.CategoryID != nil {
		db = db.Where("category_id = ?", *params.CategoryID)
	}
	if params.IsTemplate != nil {
		db = db.Where("is_template = ?", *params.IsTemplate)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, Pagination{}, apperr.Internal(err)
	}

	var prompts []models.Prompt
	err := db.Order("is_pinned desc, updated_at desc").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&prompts).Error
	if err != nil {
		return nil, Pagination{}, apperr.Internal(err)
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return prompts, Pagination{Page: page, Limit: limit, Total: total, TotalPages: totalPages}, nil
}
