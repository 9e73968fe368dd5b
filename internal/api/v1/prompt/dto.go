package prompt

import (
	"encoding/json"

	"promptvault-backend/internal/models"
	"promptvault-backend/internal/services"
)

type CreatePromptRequest struct {
	Title       string `json:"title" binding:"required,min=1,max=200"`
	WorkspaceID uint   `json:"workspace_id" binding:"required"`
	CategoryID  *uint  `json:"category_id"`
	Description string `json:"description"`
	IsTemplate  bool   `json:"is_template"`
	IsPublic    bool   `json:"is_public"`
}

type BlockPayload struct {
	Type        models.BlockType `json:"type" binding:"required,blocktype"`
	Content     json.RawMessage  `json:"content"`
	IndentLevel int              `json:"indent_level"`
	ParentID    *uint            `json:"parent_id"`
}

type UpdatePromptRequest struct {
	Title         *string         `json:"title"`
	Description   *string         `json:"description"`
	CategoryID    *uint           `json:"category_id"`
	ClearCategory bool            `json:"clear_category"`
	IsPublic      *bool           `json:"is_public"`
	IsTemplate    *bool           `json:"is_template"`
	IsPinned      *bool           `json:"is_pinned"`
	Blocks        *[]BlockPayload `json:"blocks"`
}

type ForkPromptRequest struct {
	TargetWorkspaceID *uint `json:"target_workspace_id"`
}

type PromptRefResponse struct {
	ID            uint   `json:"id"`
	Slug          string `json:"slug"`
	WorkspaceSlug string `json:"workspace_slug"`
}

type FavoriteResponse struct {
	IsFavorited bool `json:"is_favorited"`
}

type ListPromptsResponse struct {
	Items      []models.Prompt     `json:"items"`
	Pagination services.Pagination `json:"pagination"`
}
