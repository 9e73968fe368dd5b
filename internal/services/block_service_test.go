package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"

	"promptvault-backend/internal/apperr"
	"promptvault-backend/internal/database"
	"promptvault-backend/internal/models"
)

func textBlock(body string) CreateBlockInput {
	return CreateBlockInput{
		Type:    models.BlockTypeText,
		Content: datatypes.JSON([]byte(`{"text":"` + body + `"}`)),
	}
}

func assertDensePositions(t *testing.T, promptID uint) []models.Block {
	t.Helper()
	var blocks []models.Block
	err := database.DB.Where("prompt_id = ?", promptID).Order("position asc").Find(&blocks).Error
	assert.NoError(t, err)
	for i, b := range blocks {
		assert.Equal(t, i, b.Position, "positions must form a contiguous 0..k-1 sequence")
	}
	return blocks
}

func TestCreateBlockAppends(t *testing.T) {
	setupTestDB()

	owner := seedUser("owner")
	ws := seedWorkspace(owner, "Team", "team")
	prompt := seedPrompt(ws, owner, "Doc", "doc", false)

	for i := 0; i < 3; i++ {
		block, err := CreateBlock(prompt.ID, owner.ID, textBlock("b"))
		assert.NoError(t, err)
		assert.Equal(t, i, block.Position)
	}
	assertDensePositions(t, prompt.ID)
}

func TestCreateBlockExplicitPositionShiftsSiblings(t *testing.T) {
	setupTestDB()

	owner := seedUser("owner")
	ws := seedWorkspace(owner, "Team", "team")
	prompt := seedPrompt(ws, owner, "Doc", "doc", false)

	first, _ := CreateBlock(prompt.ID, owner.ID, textBlock("first"))
	second, _ := CreateBlock(prompt.ID, owner.ID, textBlock("second"))

	position := 1
	in := textBlock("inserted")
	in.Position = &position
	inserted, err := CreateBlock(prompt.ID, owner.ID, in)
	assert.NoError(t, err)
	assert.Equal(t, 1, inserted.Position)

	blocks := assertDensePositions(t, prompt.ID)
	assert.Equal(t, first.ID, blocks[0].ID)
	assert.Equal(t, inserted.ID, blocks[1].ID)
	assert.Equal(t, second.ID, blocks[2].ID)
}

func TestCreateBlockValidatesBounds(t *testing.T) {
	setupTestDB()

	owner := seedUser("owner")
	ws := seedWorkspace(owner, "Team", "team")
	prompt := seedPrompt(ws, owner, "Doc", "doc", false)

	in := textBlock("deep")
	in.IndentLevel = models.MaxIndentLevel + 1
	_, err := CreateBlock(prompt.ID, owner.ID, in)
	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))

	negative := -1
	in = textBlock("neg")
	in.Position = &negative
	_, err = CreateBlock(prompt.ID, owner.ID, in)
	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))

	in = CreateBlockInput{Type: "bogus"}
	_, err = CreateBlock(prompt.ID, owner.ID, in)
	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))
}

func TestDeleteBlockRepacksPositions(t *testing.T) {
	setupTestDB()

	owner := seedUser("owner")
	ws := seedWorkspace(owner, "Team", "team")
	prompt := seedPrompt(ws, owner, "Doc", "doc", false)

	var ids []uint
	for i := 0; i < 4; i++ {
		block, _ := CreateBlock(prompt.ID, owner.ID, textBlock("b"))
		ids = append(ids, block.ID)
	}

	assert.NoError(t, DeleteBlock(ids[1], owner.ID))

	blocks := assertDensePositions(t, prompt.ID)
	assert.Len(t, blocks, 3)
	assert.Equal(t, ids[0], blocks[0].ID)
	assert.Equal(t, ids[2], blocks[1].ID)
	assert.Equal(t, ids[3], blocks[2].ID)
}

func TestReorderBlocksRejectsBadBatches(t *testing.T) {
	setupTestDB()

	owner := seedUser("owner")
	ws := seedWorkspace(owner, "Team", "team")
	prompt := seedPrompt(ws, owner, "Doc", "doc", false)

	a, _ := CreateBlock(prompt.ID, owner.ID, textBlock("a"))
	b, _ := CreateBlock(prompt.ID, owner.ID, textBlock("b"))

	_, err := ReorderBlocks(prompt.ID, owner.ID, []ReorderItem{
		{BlockID: a.ID, Position: 0},
		{BlockID: b.ID, Position: 0},
	})
	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))

	_, err = ReorderBlocks(prompt.ID, owner.ID, []ReorderItem{
		{BlockID: a.ID, Position: -1},
	})
	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))

	_, err = ReorderBlocks(prompt.ID, owner.ID, nil)
	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))

	// A rejected batch changes nothing.
	blocks := assertDensePositions(t, prompt.ID)
	assert.Equal(t, a.ID, blocks[0].ID)
	assert.Equal(t, b.ID, blocks[1].ID)
}

func TestReorderBlocksFullBatch(t *testing.T) {
	setupTestDB()

	owner := seedUser("owner")
	ws := seedWorkspace(owner, "Team", "team")
	prompt := seedPrompt(ws, owner, "Doc", "doc", false)

	a, _ := CreateBlock(prompt.ID, owner.ID, textBlock("a"))
	b, _ := CreateBlock(prompt.ID, owner.ID, textBlock("b"))
	c, _ := CreateBlock(prompt.ID, owner.ID, textBlock("c"))

	result, err := ReorderBlocks(prompt.ID, owner.ID, []ReorderItem{
		{BlockID: a.ID, Position: 2},
		{BlockID: b.ID, Position: 0},
		{BlockID: c.ID, Position: 1},
	})
	assert.NoError(t, err)
	assert.Equal(t, b.ID, result[0].ID)
	assert.Equal(t, c.ID, result[1].ID)
	assert.Equal(t, a.ID, result[2].ID)
	assertDensePositions(t, prompt.ID)
}

func TestPositionDensityAfterMixedOperations(t *testing.T) {
	setupTestDB()

	owner := seedUser("owner")
	ws := seedWorkspace(owner, "Team", "team")
	prompt := seedPrompt(ws, owner, "Doc", "doc", false)

	var ids []uint
	for i := 0; i < 5; i++ {
		block, err := CreateBlock(prompt.ID, owner.ID, textBlock("b"))
		assert.NoError(t, err)
		ids = append(ids, block.ID)
	}

	assert.NoError(t, DeleteBlock(ids[2], owner.ID))

	_, err := ReorderBlocks(prompt.ID, owner.ID, []ReorderItem{
		{BlockID: ids[4], Position: 0},
	})
	assert.NoError(t, err)

	assert.NoError(t, DeleteBlock(ids[0], owner.ID))

	blocks := assertDensePositions(t, prompt.ID)
	assert.Len(t, blocks, 3)
}

func TestBlockEditsRequireEditorOrAuthor(t *testing.T) {
	setupTestDB()

	owner := seedUser("owner")
	viewer := seedUser("viewer")
	member := seedUser("member")
	ws := seedWorkspace(owner, "Team", "team")
	seedMember(ws, viewer, models.RoleViewer)
	seedMember(ws, member, models.RoleMember)

	ownersDoc := seedPrompt(ws, owner, "Doc", "doc", false)
	membersDoc := seedPrompt(ws, member, "Notes", "notes", false)

	_, err := CreateBlock(ownersDoc.ID, viewer.ID, textBlock("nope"))
	assert.Equal(t, apperr.CodePermission, apperr.CodeOf(err))

	_, err = CreateBlock(ownersDoc.ID, member.ID, textBlock("nope"))
	assert.Equal(t, apperr.CodePermission, apperr.CodeOf(err))

	// The author exception lets a MEMBER edit its own document's blocks.
	_, err = CreateBlock(membersDoc.ID, member.ID, textBlock("mine"))
	assert.NoError(t, err)
}
