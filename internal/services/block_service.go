package services

import (
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"promptvault-backend/internal/apperr"
	"promptvault-backend/internal/database"
	"promptvault-backend/internal/models"
)

// CreateBlockInput carries the creation fields for a block. A nil Position
// appends the block after the current last one.
type CreateBlockInput struct {
	Type        models.BlockType
	Content     datatypes.JSON
	Position    *int
	IndentLevel int
	ParentID    *uint
}

// UpdateBlockInput carries a partial block update; nil fields stay untouched.
type UpdateBlockInput struct {
	Type        *models.BlockType
	Content     datatypes.JSON
	Position    *int
	IndentLevel *int
}

// ReorderItem assigns one block a new position within its prompt.
type ReorderItem struct {
	BlockID  uint
	Position int
}

func validateIndentLevel(level int) error {
	if level < 0 || level > models.MaxIndentLevel {
		return apperr.Validation(fmt.Sprintf("indent level must be between 0 and %d", models.MaxIndentLevel))
	}
	return nil
}

func validateBlockType(t models.BlockType) error {
	if !models.ValidBlockType(t) {
		return apperr.Validation(fmt.Sprintf("unknown block type %q", t))
	}
	return nil
}

// ListBlocks returns a visible prompt's blocks in position order.
func ListBlocks(promptID, callerID uint) ([]models.Block, error) {
	prompt, ws, err := getVisiblePrompt(promptID, callerID)
	if err != nil {
		return nil, err
	}
	if err := authorizePromptAction(callerID, ws, prompt, ActionRead); err != nil {
		return nil, err
	}

	var blocks []models.Block
	err = database.DB.Where("prompt_id = ?", promptID).Order("position asc").Find(&blocks).Error
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return blocks, nil
}

// CreateBlock inserts a block. Without an explicit position it appends at
// max(position)+1; with one, later siblings shift right in the same
// transaction so positions stay dense.
func CreateBlock(promptID, callerID uint, in CreateBlockInput) (*models.Block, error) {
	prompt, ws, err := getVisiblePrompt(promptID, callerID)
	if err != nil {
		return nil, err
	}
	if err := authorizePromptAction(callerID, ws, prompt, ActionEdit); err != nil {
		return nil, err
	}
	if err := validateBlockType(in.Type); err != nil {
		return nil, err
	}
	if err := validateIndentLevel(in.IndentLevel); err != nil {
		return nil, err
	}
	if in.Position != nil && *in.Position < 0 {
		return nil, apperr.Validation("position must not be negative")
	}

	var block *models.Block
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Block{}).Where("prompt_id = ?", promptID).Count(&count).Error; err != nil {
			return err
		}

		position := int(count)
		if in.Position != nil && *in.Position < position {
			position = *in.Position
			err := tx.Model(&models.Block{}).
				Where("prompt_id = ? AND position >= ?", promptID, position).
				Update("position", gorm.Expr("position + 1")).Error
			if err != nil {
				return err
			}
		}

		block = &models.Block{
			PromptID:    promptID,
			ParentID:    in.ParentID,
			Type:        in.Type,
			Content:     in.Content,
			Position:    position,
			IndentLevel: in.IndentLevel,
		}
		return tx.Create(block).Error
	})
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return block, nil
}

// UpdateBlock applies a partial update, re-validating bounds the same way as
// CreateBlock. A position change moves the block and shifts the siblings in
// between, all in one transaction.
func UpdateBlock(blockID, callerID uint, in UpdateBlockInput) (*models.Block, error) {
	var block models.Block
	if err := database.DB.First(&block, blockID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound()
		}
		return nil, apperr.Internal(err)
	}

	prompt, ws, err := getVisiblePrompt(block.PromptID, callerID)
	if err != nil {
		return nil, err
	}
	if err := authorizePromptAction(callerID, ws, prompt, ActionEdit); err != nil {
		return nil, err
	}

	if in.Type != nil {
		if err := validateBlockType(*in.Type); err != nil {
			return nil, err
		}
	}
	if in.IndentLevel != nil {
		if err := validateIndentLevel(*in.IndentLevel); err != nil {
			return nil, err
		}
	}
	if in.Position != nil && *in.Position < 0 {
		return nil, apperr.Validation("position must not be negative")
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if in.Type != nil {
			block.Type = *in.Type
		}
		if in.Content != nil {
			block.Content = in.Content
		}
		if in.IndentLevel != nil {
			block.IndentLevel = *in.IndentLevel
		}

		if in.Position != nil && *in.Position != block.Position {
			var count int64
			if err := tx.Model(&models.Block{}).Where("prompt_id = ?", block.PromptID).Count(&count).Error; err != nil {
				return err
			}
			newPos := *in.Position
			if newPos > int(count)-1 {
				newPos = int(count) - 1
			}
			if newPos > block.Position {
				err := tx.Model(&models.Block{}).
					Where("prompt_id = ? AND position > ? AND position <= ?", block.PromptID, block.Position, newPos).
					Update("position", gorm.Expr("position - 1")).Error
				if err != nil {
					return err
				}
			} else {
				err := tx.Model(&models.Block{}).
					Where("prompt_id = ? AND position >= ? AND position < ?", block.PromptID, newPos, block.Position).
					Update("position", gorm.Expr("position + 1")).Error
				if err != nil {
					return err
				}
			}
			block.Position = newPos
		}

		return tx.Save(&block).Error
	})
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &block, nil
}

// DeleteBlock removes a block and re-packs the positions of the later
// siblings in the same transaction, preserving density.
func DeleteBlock(blockID, callerID uint) error {
	var block models.Block
	if err := database.DB.First(&block, blockID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound()
		}
		return apperr.Internal(err)
	}

	prompt, ws, err := getVisiblePrompt(block.PromptID, callerID)
	if err != nil {
		return err
	}
	if err := authorizePromptAction(callerID, ws, prompt, ActionEdit); err != nil {
		return err
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&block).Error; err != nil {
			return err
		}
		return tx.Model(&models.Block{}).
			Where("prompt_id = ? AND position > ?", block.PromptID, block.Position).
			Update("position", gorm.Expr("position - 1")).Error
	})
	if err != nil {
		return apperr.Internal(err)
	}
	return nil
}

// ReorderBlocks applies a full or partial batch of position assignments
// atomically; no partial reorder is ever observable. The requested positions
// must be pairwise distinct and non-negative or the whole batch is rejected.
// After the requested moves the list is re-packed to 0..n-1.
func ReorderBlocks(promptID, callerID uint, items []ReorderItem) ([]models.Block, error) {
	prompt, ws, err := getVisiblePrompt(promptID, callerID)
	if err != nil {
		return nil, err
	}
	if err := authorizePromptAction(callerID, ws, prompt, ActionEdit); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, apperr.Validation("no positions given")
	}

	requested := make(map[uint]int, len(items))
	seen := make(map[int]bool, len(items))
	for _, item := range items {
		if item.Position < 0 {
			return nil, apperr.Validation("position must not be negative")
		}
		if seen[item.Position] {
			return nil, apperr.Validation("positions must be pairwise distinct")
		}
		if _, dup := requested[item.BlockID]; dup {
			return nil, apperr.Validation("duplicate block in reorder batch")
		}
		seen[item.Position] = true
		requested[item.BlockID] = item.Position
	}

	var blocks []models.Block
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("prompt_id = ?", promptID).Order("position asc").Find(&blocks).Error; err != nil {
			return err
		}

		byID := make(map[uint]*models.Block, len(blocks))
		for i := range blocks {
			byID[blocks[i].ID] = &blocks[i]
		}
		for id := range requested {
			if _, ok := byID[id]; !ok {
				return apperr.Validation("block does not belong to this prompt")
			}
		}

		// Sort by requested position where given, current position otherwise;
		// a requested block wins ties against a displaced sibling.
		type keyed struct {
			block     *models.Block
			key       int
			requested bool
		}
		ordered := make([]keyed, 0, len(blocks))
		for i := range blocks {
			k := keyed{block: &blocks[i], key: blocks[i].Position}
			if pos, ok := requested[blocks[i].ID]; ok {
				k.key = pos
				k.requested = true
			}
			ordered = append(ordered, k)
		}
		for i := 1; i < len(ordered); i++ {
			for j := i; j > 0; j-- {
				a, b := ordered[j-1], ordered[j]
				if b.key < a.key || (b.key == a.key && b.requested && !a.requested) {
					ordered[j-1], ordered[j] = b, a
				} else {
					break
				}
			}
		}

		for i, k := range ordered {
			if k.block.Position != i {
				err := tx.Model(&models.Block{}).
					Where("id = ?", k.block.ID).
					Update("position", i).Error
				if err != nil {
					return err
				}
				k.block.Position = i
			}
		}
		return nil
	})
	if err != nil {
		if apperr.CodeOf(err) == apperr.CodeValidation {
			return nil, err
		}
		return nil, apperr.Internal(err)
	}

	var result []models.Block
	if err := database.DB.Where("prompt_id = ?", promptID).Order("position asc").Find(&result).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return result, nil
}

// replaceBlocks swaps a prompt's whole block list inside the caller's
// transaction, assigning dense positions from the input order.
func replaceBlocks(tx *gorm.DB, promptID uint, inputs []CreateBlockInput) error {
	for _, in := range inputs {
		if err := validateBlockType(in.Type); err != nil {
			return err
		}
		if err := validateIndentLevel(in.IndentLevel); err != nil {
			return err
		}
	}

	if err := tx.Where("prompt_id = ?", promptID).Delete(&models.Block{}).Error; err != nil {
		return err
	}
	for i, in := range inputs {
		block := models.Block{
			PromptID:    promptID,
			ParentID:    in.ParentID,
			Type:        in.Type,
			Content:     in.Content,
			Position:    i,
			IndentLevel: in.IndentLevel,
		}
		if err := tx.Create(&block).Error; err != nil {
			return err
		}
	}
	return nil
}
