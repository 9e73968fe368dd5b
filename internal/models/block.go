package models

import (
	"time"

	"gorm.io/datatypes"
)

// BlockType enumerates the content kinds a block can hold.
type BlockType string

const (
	BlockTypeText     BlockType = "text"
	BlockTypeHeading  BlockType = "heading"
	BlockTypeCode     BlockType = "code"
	BlockTypeVariable BlockType = "variable"
	BlockTypeList     BlockType = "list"
	BlockTypeDivider  BlockType = "divider"
)

// MaxIndentLevel bounds block nesting depth.
const MaxIndentLevel = 10

// Block is an ordered child of exactly one prompt. Positions within a prompt
// are dense: contiguous and unique from 0 after every mutation.
type Block struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	PromptID    uint           `gorm:"index;not null" json:"prompt_id"`
	ParentID    *uint          `gorm:"index" json:"parent_id,omitempty"`
	Type        BlockType      `gorm:"not null;default:'text'" json:"type"`
	Content     datatypes.JSON `json:"content"`
	Position    int            `gorm:"not null" json:"position"`
	IndentLevel int            `gorm:"not null;default:0" json:"indent_level"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// ValidBlockType reports whether t is a known block type.
func ValidBlockType(t BlockType) bool {
	switch t {
	case BlockTypeText, BlockTypeHeading, BlockTypeCode, BlockTypeVariable, BlockTypeList, BlockTypeDivider:
		return true
	}
	return false
}
