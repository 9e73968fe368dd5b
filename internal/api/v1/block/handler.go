package block

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"promptvault-backend/internal/middleware"
	"promptvault-backend/internal/services"
	"promptvault-backend/internal/utils"
)

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "invalid "+name))
		return 0, false
	}
	return uint(id), true
}

// ListBlocks godoc
// @Summary List a document's blocks in position order
// @Tags blocks
// @Router /prompts/{promptID}/blocks [get]
func ListBlocks(c *gin.Context) {
	promptID, ok := parseIDParam(c, "promptID")
	if !ok {
		return
	}
	blocks, err := services.ListBlocks(promptID, middleware.CurrentUserID(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.NewSuccessResponse("OK", blocks))
}

// CreateBlock godoc
// @Summary Add a block to a document
// @Tags blocks
// @Router /prompts/{promptID}/blocks [post]
func CreateBlock(c *gin.Context) {
	promptID, ok := parseIDParam(c, "promptID")
	if !ok {
		return
	}
	var req CreateBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, err.Error()))
		return
	}

	created, err := services.CreateBlock(promptID, middleware.CurrentUserID(c), services.CreateBlockInput{
		Type:        req.Type,
		Content:     datatypes.JSON(req.Content),
		Position:    req.Position,
		IndentLevel: req.IndentLevel,
		ParentID:    req.ParentID,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.NewSuccessResponse("Block created successfully", created))
}

// UpdateBlock godoc
// @Summary Partially update a block
// @Tags blocks
// @Router /blocks/{blockID} [patch]
func UpdateBlock(c *gin.Context) {
	blockID, ok := parseIDParam(c, "blockID")
	if !ok {
		return
	}
	var req UpdateBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, err.Error()))
		return
	}

	updated, err := services.UpdateBlock(blockID, middleware.CurrentUserID(c), services.UpdateBlockInput{
		Type:        req.Type,
		Content:     datatypes.JSON(req.Content),
		Position:    req.Position,
		IndentLevel: req.IndentLevel,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.NewSuccessResponse("Block updated successfully", updated))
}

// DeleteBlock godoc
// @Summary Delete a block and re-pack sibling positions
// @Tags blocks
// @Router /blocks/{blockID} [delete]
func DeleteBlock(c *gin.Context) {
	blockID, ok := parseIDParam(c, "blockID")
	if !ok {
		return
	}
	if err := services.DeleteBlock(blockID, middleware.CurrentUserID(c)); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.NewSuccessResponse("Block deleted successfully", nil))
}

// ReorderBlocks godoc
// @Summary Atomically reassign block positions
// @Tags blocks
// @Router /prompts/{promptID}/blocks/reorder [put]
func ReorderBlocks(c *gin.Context) {
	promptID, ok := parseIDParam(c, "promptID")
	if !ok {
		return
	}
	var req ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, err.Error()))
		return
	}

	items := make([]services.ReorderItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, services.ReorderItem{BlockID: item.BlockID, Position: item.Position})
	}

	blocks, err := services.ReorderBlocks(promptID, middleware.CurrentUserID(c), items)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.NewSuccessResponse("Blocks reordered successfully", blocks))
}
