package services

import (
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"promptvault-backend/internal/apperr"
	"promptvault-backend/internal/database"
	"promptvault-backend/internal/models"
)

// RecordActivity appends an audit entry. It takes the caller's transaction so
// the entry commits or rolls back with the operation it describes.
func RecordActivity(tx *gorm.DB, workspaceID, userID uint, action models.ActivityAction, targetType string, targetID uint, metadata map[string]interface{}) error {
	entry := &models.Activity{
		WorkspaceID: workspaceID,
		UserID:      userID,
		Action:      action,
		TargetType:  targetType,
		TargetID:    targetID,
	}
	if metadata != nil {
		data, err := json.Marshal(metadata)
		if err != nil {
			return apperr.Internal(err)
		}
		entry.Metadata = datatypes.JSON(data)
	}
	return tx.Create(entry).Error
}

// ListWorkspaceActivity returns the workspace's audit log, newest first.
// Only members may read it.
func ListWorkspaceActivity(workspaceID, callerID uint, page, limit int) ([]models.Activity, int64, error) {
	ws, err := getWorkspace(workspaceID)
	if err != nil {
		return nil, 0, err
	}
	role, err := ResolveRole(callerID, ws)
	if err != nil {
		return nil, 0, err
	}
	if role == "" {
		return nil, 0, apperr.NotFound()
	}

	page, limit = normalizePage(page, limit)

	var entries []models.Activity
	var total int64
	db := database.DB.Model(&models.Activity{}).Where("workspace_id = ?", workspaceID)
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, apperr.Internal(err)
	}
	err = db.Order("created_at desc").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, 0, apperr.Internal(err)
	}
	return entries, total, nil
}
