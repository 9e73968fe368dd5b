package prompt

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"promptvault-backend/internal/middleware"
	"promptvault-backend/internal/models"
	"promptvault-backend/internal/services"
	"promptvault-backend/internal/utils"
)

func parsePromptID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("promptID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "invalid prompt id"))
		return 0, false
	}
	return uint(id), true
}

func blockInputs(payloads []BlockPayload) []services.CreateBlockInput {
	inputs := make([]services.CreateBlockInput, 0, len(payloads))
	for _, p := range payloads {
		inputs = append(inputs, services.CreateBlockInput{
			Type:        p.Type,
			Content:     datatypes.JSON(p.Content),
			IndentLevel: p.IndentLevel,
			ParentID:    p.ParentID,
		})
	}
	return inputs
}

func refResponse(p *models.Prompt, workspaceSlug string) PromptRefResponse {
	return PromptRefResponse{ID: p.ID, Slug: p.Slug, WorkspaceSlug: workspaceSlug}
}

// CreatePrompt godoc
// @Summary Create a document
// @Tags prompts
// @Router /prompts [post]
func CreatePrompt(c *gin.Context) {
	var req CreatePromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, err.Error()))
		return
	}

	callerID := middleware.CurrentUserID(c)
	created, err := services.CreatePrompt(callerID, services.CreatePromptInput{
		Title:       req.Title,
		WorkspaceID: req.WorkspaceID,
		CategoryID:  req.CategoryID,
		Description: req.Description,
		IsTemplate:  req.IsTemplate,
		IsPublic:    req.IsPublic,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Prompt created successfully", refResponse(created, services.WorkspaceSlugByID(created.WorkspaceID))))
}

// GetPrompt godoc
// @Summary Get a document by workspace and document slug
// @Tags prompts
// @Router /w/{workspaceSlug}/{promptSlug} [get]
func GetPrompt(c *gin.Context) {
	workspaceSlug := c.Param("workspaceSlug")
	promptSlug := c.Param("promptSlug")

	found, err := services.GetPrompt(workspaceSlug, promptSlug, middleware.CurrentUserID(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.NewSuccessResponse("OK", found))
}

// UpdatePrompt godoc
// @Summary Partially update a document
// @Tags prompts
// @Router /prompts/{promptID} [patch]
func UpdatePrompt(c *gin.Context) {
	id, ok := parsePromptID(c)
	if !ok {
		return
	}
	var req UpdatePromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, err.Error()))
		return
	}

	in := services.UpdatePromptInput{
		Title:         req.Title,
		Description:   req.Description,
		CategoryID:    req.CategoryID,
		ClearCategory: req.ClearCategory,
		IsPublic:      req.IsPublic,
		IsTemplate:    req.IsTemplate,
		IsPinned:      req.IsPinned,
	}
	if req.Blocks != nil {
		inputs := blockInputs(*req.Blocks)
		in.Blocks = &inputs
	}

	updated, err := services.UpdatePrompt(id, middleware.CurrentUserID(c), in)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.NewSuccessResponse("Prompt updated successfully", updated))
}

// DeletePrompt godoc
// @Summary Soft-delete a document
// @Tags prompts
// @Router /prompts/{promptID} [delete]
func DeletePrompt(c *gin.Context) {
	id, ok := parsePromptID(c)
	if !ok {
		return
	}
	if err := services.DeletePrompt(id, middleware.CurrentUserID(c)); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.NewSuccessResponse("Prompt deleted successfully", nil))
}

// DuplicatePrompt godoc
// @Summary Copy a document within its workspace, without lineage
// @Tags prompts
// @Router /prompts/{promptID}/duplicate [post]
func DuplicatePrompt(c *gin.Context) {
	id, ok := parsePromptID(c)
	if !ok {
		return
	}
	copy, err := services.DuplicatePrompt(id, middleware.CurrentUserID(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.NewSuccessResponse("Prompt duplicated successfully", refResponse(copy, services.WorkspaceSlugByID(copy.WorkspaceID))))
}

// ForkPrompt godoc
// @Summary Copy a document with permanent lineage
// @Tags prompts
// @Router /prompts/{promptID}/fork [post]
func ForkPrompt(c *gin.Context) {
	id, ok := parsePromptID(c)
	if !ok {
		return
	}
	var req ForkPromptRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, err.Error()))
			return
		}
	}

	fork, err := services.ForkPrompt(id, middleware.CurrentUserID(c), req.TargetWorkspaceID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.NewSuccessResponse("Prompt forked successfully", refResponse(fork, services.WorkspaceSlugByID(fork.WorkspaceID))))
}

// ToggleFavorite godoc
// @Summary Toggle the caller's bookmark on a document
// @Tags prompts
// @Router /prompts/{promptID}/favorite [post]
func ToggleFavorite(c *gin.Context) {
	id, ok := parsePromptID(c)
	if !ok {
		return
	}
	favorited, err := services.ToggleFavorite(id, middleware.CurrentUserID(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.NewSuccessResponse("OK", FavoriteResponse{IsFavorited: favorited}))
}

// ListPrompts godoc
// @Summary List a workspace's documents
// @Tags prompts
// @Router /workspaces/{workspaceID}/prompts [get]
func ListPrompts(c *gin.Context) {
	workspaceID, err := strconv.ParseUint(c.Param("workspaceID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "invalid workspace id"))
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	params := services.ListPromptsParams{
		Page:   page,
		Limit:  limit,
		Search: c.Query("search"),
	}
	if raw := c.Query("category_id"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
			categoryID := uint(id)
			params.CategoryID = &categoryID
		}
	}
	if raw := c.Query("is_template"); raw != "" {
		isTemplate := raw == "true"
		params.IsTemplate = &isTemplate
	}

	items, pagination, err := services.ListWorkspacePrompts(uint(workspaceID), middleware.CurrentUserID(c), params)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.NewSuccessResponse("OK", ListPromptsResponse{Items: items, Pagination: pagination}))
}

// SnapshotPrompt godoc
// @Summary Append an immutable version snapshot
// @Tags prompts
// @Router /prompts/{promptID}/versions [post]
func SnapshotPrompt(c *gin.Context) {
	id, ok := parsePromptID(c)
	if !ok {
		return
	}
	version, err := services.SnapshotPrompt(id, middleware.CurrentUserID(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.NewSuccessResponse("Version created successfully", version))
}

// ListVersions godoc
// @Summary List a document's version history
// @Tags prompts
// @Router /prompts/{promptID}/versions [get]
func ListVersions(c *gin.Context) {
	id, ok := parsePromptID(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	versions, total, err := services.ListPromptVersions(id, middleware.CurrentUserID(c), page, limit)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.NewSuccessResponse("OK", gin.H{"items": versions, "total": total}))
}
