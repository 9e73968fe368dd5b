package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"promptvault-backend/internal/apperr"
	"promptvault-backend/internal/database"
	"promptvault-backend/internal/models"
)

func validateCategoryName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperr.Validation("category name is required")
	}
	if len(name) > 100 {
		return "", apperr.Validation("category name must be at most 100 characters")
	}
	return name, nil
}

// checkCategoryParent enforces that the parent, if set, belongs to the same
// workspace and does not create a cycle.
func checkCategoryParent(workspaceID uint, categoryID, parentID *uint) error {
	if parentID == nil {
		return nil
	}
	if categoryID != nil && *parentID == *categoryID {
		return apperr.Validation("category cannot be its own parent")
	}

	var parent models.Category
	if err := database.DB.First(&parent, *parentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.Validation("parent category does not exist")
		}
		return apperr.Internal(err)
	}
	if parent.WorkspaceID != workspaceID {
		return apperr.Validation("parent category belongs to another workspace")
	}

	if categoryID != nil {
		// Walk up the chain to reject cycles.
		current := parent
		for depth := 0; depth < 100 && current.ParentID != nil; depth++ {
			if *current.ParentID == *categoryID {
				return apperr.Validation("category hierarchy cannot contain cycles")
			}
			if err := database.DB.First(&current, *current.ParentID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					break
				}
				return apperr.Internal(err)
			}
		}
	}
	return nil
}

// CreateCategory creates a workspace-scoped category with a unique slug.
func CreateCategory(workspaceID, callerID uint, name string, parentID *uint) (*models.Category, error) {
	ws, err := getWorkspace(workspaceID)
	if err != nil {
		return nil, err
	}
	decision, err := Authorize(callerID, ws, ActionEdit)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, DecisionError(decision)
	}

	name, err = validateCategoryName(name)
	if err != nil {
		return nil, err
	}
	if err := checkCategoryParent(workspaceID, nil, parentID); err != nil {
		return nil, err
	}

	var category *models.Category
	err = withSlugRetry(func() error {
		return database.DB.Transaction(func(tx *gorm.DB) error {
			slug, err := AllocateCategorySlug(tx, workspaceID, name)
			if err != nil {
				return err
			}
			category = &models.Category{
				WorkspaceID: workspaceID,
				ParentID:    parentID,
				Name:        name,
				Slug:        slug,
			}
			return tx.Create(category).Error
		})
	})
	if err != nil {
		if apperr.CodeOf(err) != apperr.CodeInternal {
			return nil, err
		}
		return nil, apperr.Internal(err)
	}
	return category, nil
}

// ListCategories returns a workspace's categories for members.
func ListCategories(workspaceID, callerID uint) ([]models.Category, error) {
	ws, err := getWorkspace(workspaceID)
	if err != nil {
		return nil, err
	}
	role, err := ResolveRole(callerID, ws)
	if err != nil {
		return nil, err
	}
	if role == "" {
		return nil, apperr.NotFound()
	}

	var categories []models.Category
	err = database.DB.Where("workspace_id = ?", workspaceID).Order("name asc").Find(&categories).Error
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return categories, nil
}

// UpdateCategory renames or re-parents a category. A rename re-allocates the
// slug from the new name.
func UpdateCategory(categoryID, callerID uint, name *string, parentID *uint) (*models.Category, error) {
	var category models.Category
	if err := database.DB.First(&category, categoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound()
		}
		return nil, apperr.Internal(err)
	}

	ws, err := getWorkspace(category.WorkspaceID)
	if err != nil {
		return nil, err
	}
	decision, err := Authorize(callerID, ws, ActionEdit)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, DecisionError(decision)
	}

	if parentID != nil {
		if err := checkCategoryParent(category.WorkspaceID, &category.ID, parentID); err != nil {
			return nil, err
		}
		category.ParentID = parentID
	}

	if name != nil && strings.TrimSpace(*name) != category.Name {
		trimmed, err := validateCategoryName(*name)
		if err != nil {
			return nil, err
		}
		category.Name = trimmed
		err = withSlugRetry(func() error {
			return database.DB.Transaction(func(tx *gorm.DB) error {
				slug, err := AllocateCategorySlug(tx, category.WorkspaceID, trimmed)
				if err != nil {
					return err
				}
				category.Slug = slug
				return tx.Save(&category).Error
			})
		})
		if err != nil {
			if apperr.CodeOf(err) != apperr.CodeInternal {
				return nil, err
			}
			return nil, apperr.Internal(err)
		}
		return &category, nil
	}

	if err := database.DB.Save(&category).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return &category, nil
}

// DeleteCategory removes a category, detaching its prompts and promoting its
// children to the root, in one transaction. Prompts are never deleted with
// their category.
func DeleteCategory(categoryID, callerID uint) error {
	var category models.Category
	if err := database.DB.First(&category, categoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound()
		}
		return apperr.Internal(err)
	}

	ws, err := getWorkspace(category.WorkspaceID)
	if err != nil {
		return err
	}
	decision, err := Authorize(callerID, ws, ActionEdit)
	if err != nil {
		return err
	}
	if !decision.Allowed {
		return DecisionError(decision)
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Prompt{}).
			Where("category_id = ?", category.ID).
			Update("category_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Category{}).
			Where("parent_id = ?", category.ID).
			Update("parent_id", category.ParentID).Error; err != nil {
			return err
		}
		return tx.Delete(&category).Error
	})
	if err != nil {
		return apperr.Internal(err)
	}
	return nil
}
