package workspace

import "promptvault-backend/internal/models"

type CreateWorkspaceRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

type AddMemberRequest struct {
	UserID uint        `json:"user_id" binding:"required"`
	Role   models.Role `json:"role" binding:"required"`
}

type UpdateMemberRequest struct {
	Role models.Role `json:"role" binding:"required"`
}
