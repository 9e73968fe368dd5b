package block

import (
	"encoding/json"

	"promptvault-backend/internal/models"
)

type CreateBlockRequest struct {
	Type        models.BlockType `json:"type" binding:"required,blocktype"`
	Content     json.RawMessage  `json:"content"`
	Position    *int             `json:"position"`
	IndentLevel int              `json:"indent_level"`
	ParentID    *uint            `json:"parent_id"`
}

type UpdateBlockRequest struct {
	Type        *models.BlockType `json:"type"`
	Content     json.RawMessage   `json:"content"`
	Position    *int              `json:"position"`
	IndentLevel *int              `json:"indent_level"`
}

type ReorderItemPayload struct {
	BlockID  uint `json:"block_id" binding:"required"`
	Position int  `json:"position"`
}

type ReorderRequest struct {
	Items []ReorderItemPayload `json:"items" binding:"required,min=1,dive"`
}
