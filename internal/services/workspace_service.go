package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"promptvault-backend/internal/apperr"
	"promptvault-backend/internal/database"
	"promptvault-backend/internal/models"
)

// CreateWorkspace creates a workspace owned by the caller. The owner never
// gets a membership row; ownership is authoritative on the workspace itself.
func CreateWorkspace(callerID uint, name string) (*models.Workspace, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("workspace name is required")
	}
	if len(name) > 100 {
		return nil, apperr.Validation("workspace name must be at most 100 characters")
	}

	var ws *models.Workspace
	err := withSlugRetry(func() error {
		return database.DB.Transaction(func(tx *gorm.DB) error {
			slug, err := AllocateWorkspaceSlug(tx, name)
			if err != nil {
				return err
			}
			ws = &models.Workspace{Name: name, Slug: slug, OwnerID: callerID}
			return tx.Create(ws).Error
		})
	})
	if err != nil {
		if apperr.CodeOf(err) != apperr.CodeInternal {
			return nil, err
		}
		return nil, apperr.Internal(err)
	}
	return ws, nil
}

// WorkspaceSlugByID returns a workspace's slug, or empty when unknown. Used
// to build {slug, workspaceSlug} references in responses.
func WorkspaceSlugByID(workspaceID uint) string {
	var ws models.Workspace
	if err := database.DB.Select("slug").First(&ws, workspaceID).Error; err != nil {
		return ""
	}
	return ws.Slug
}

// GetWorkspaceBySlug resolves a workspace for a member or its owner. Hidden
// and absent are the same answer.
func GetWorkspaceBySlug(slug string, callerID uint) (*models.Workspace, error) {
	var ws models.Workspace
	if err := database.DB.Where("slug = ?", slug).First(&ws).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound()
		}
		return nil, apperr.Internal(err)
	}
	role, err := ResolveRole(callerID, &ws)
	if err != nil {
		return nil, err
	}
	if role == "" {
		return nil, apperr.NotFound()
	}
	return &ws, nil
}

// ListUserWorkspaces returns the workspaces the caller owns or belongs to.
func ListUserWorkspaces(callerID uint) ([]models.Workspace, error) {
	memberWorkspaces := database.DB.Model(&models.WorkspaceMember{}).
		Select("workspace_id").
		Where("user_id = ?", callerID)

	var workspaces []models.Workspace
	err := database.DB.
		Where("owner_id = ? OR id IN (?)", callerID, memberWorkspaces).
		Order("created_at asc").
		Find(&workspaces).Error
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return workspaces, nil
}

// ListWorkspaceMembers returns the membership rows of a workspace the caller
// can see.
func ListWorkspaceMembers(workspaceID, callerID uint) ([]models.WorkspaceMember, error) {
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

	var members []models.WorkspaceMember
	err = database.DB.Where("workspace_id = ?", workspaceID).Order("created_at asc").Find(&members).Error
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return members, nil
}

func validateMemberRole(role models.Role) error {
	if !role.Valid() {
		return apperr.Validation("unknown role")
	}
	if role == models.RoleOwner {
		return apperr.Validation("ownership is transferred explicitly, never granted as a membership role")
	}
	return nil
}

// AddWorkspaceMember adds a user to a workspace. Requires manage_members
// (ADMIN or above).
func AddWorkspaceMember(workspaceID, callerID, userID uint, role models.Role) (*models.WorkspaceMember, error) {
	ws, err := getWorkspace(workspaceID)
	if err != nil {
		return nil, err
	}
	decision, err := Authorize(callerID, ws, ActionManageMembers)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, DecisionError(decision)
	}
	if err := validateMemberRole(role); err != nil {
		return nil, err
	}
	if userID == ws.OwnerID {
		return nil, apperr.Validation("the owner is not represented as a member")
	}
	if _, err := FindUserByID(userID); err != nil {
		return nil, err
	}

	member := &models.WorkspaceMember{WorkspaceID: workspaceID, UserID: userID, Role: role}
	if err := database.DB.Create(member).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, apperr.Conflict("user is already a member")
		}
		return nil, apperr.Internal(err)
	}
	return member, nil
}

// getMembership loads the membership row for (workspace, user).
func getMembership(workspaceID, userID uint) (*models.WorkspaceMember, error) {
	var member models.WorkspaceMember
	err := database.DB.Where("workspace_id = ? AND user_id = ?", workspaceID, userID).First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound()
		}
		return nil, apperr.Internal(err)
	}
	return &member, nil
}

// UpdateMemberRole re-roles a member, subject to the admin role-ceiling.
func UpdateMemberRole(workspaceID, callerID, memberUserID uint, role models.Role) (*models.WorkspaceMember, error) {
	ws, err := getWorkspace(workspaceID)
	if err != nil {
		return nil, err
	}
	decision, err := Authorize(callerID, ws, ActionManageMembers)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, DecisionError(decision)
	}
	if err := validateMemberRole(role); err != nil {
		return nil, err
	}

	member, err := getMembership(workspaceID, memberUserID)
	if err != nil {
		return nil, err
	}
	if ceiling := CanManageMember(decision.EffectiveRole, member.Role); !ceiling.Allowed {
		return nil, DecisionError(ceiling)
	}

	if err := database.DB.Model(member).Update("role", role).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	member.Role = role
	return member, nil
}

// RemoveWorkspaceMember removes a member. A member may always leave on their
// own; removing someone else requires manage_members and respects the
// role-ceiling.
func RemoveWorkspaceMember(workspaceID, callerID, memberUserID uint) error {
	ws, err := getWorkspace(workspaceID)
	if err != nil {
		return err
	}
	member, err := getMembership(workspaceID, memberUserID)
	if err != nil {
		return err
	}

	if callerID != memberUserID {
		decision, err := Authorize(callerID, ws, ActionManageMembers)
		if err != nil {
			return err
		}
		if !decision.Allowed {
			return DecisionError(decision)
		}
		if ceiling := CanManageMember(decision.EffectiveRole, member.Role); !ceiling.Allowed {
			return DecisionError(ceiling)
		}
	}

	if err := database.DB.Delete(member).Error; err != nil {
		return apperr.Internal(err)
	}
	return nil
}
