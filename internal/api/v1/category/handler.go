package category

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

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

// CreateCategory godoc
// @Summary Create a workspace-scoped category
// @Tags categories
// @Router /workspaces/{workspaceID}/categories [post]
func CreateCategory(c *gin.Context) {
	workspaceID, ok := parseIDParam(c, "workspaceID")
	if !ok {
		return
	}
	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, err.Error()))
		return
	}

	created, err := services.CreateCategory(workspaceID, middleware.CurrentUserID(c), req.Name, req.ParentID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.NewSuccessResponse("Category created successfully", created))
}

// ListCategories godoc
// @Summary List a workspace's categories
// @Tags categories
// @Router /workspaces/{workspaceID}/categories [get]
func ListCategories(c *gin.Context) {
	workspaceID, ok := parseIDParam(c, "workspaceID")
	if !ok {
		return
	}
	categories, err := services.ListCategories(workspaceID, middleware.CurrentUserID(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.NewSuccessResponse("OK", categories))
}

// UpdateCategory godoc
// @Summary Rename or re-parent a category
// @Tags categories
// @Router /categories/{categoryID} [patch]
func UpdateCategory(c *gin.Context) {
	categoryID, ok := parseIDParam(c, "categoryID")
	if !ok {
		return
	}
	var req UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, err.Error()))
		return
	}

	updated, err := services.UpdateCategory(categoryID, middleware.CurrentUserID(c), req.Name, req.ParentID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.NewSuccessResponse("Category updated successfully", updated))
}

// DeleteCategory godoc
// @Summary Delete a category, detaching its prompts
// @Tags categories
// @Router /categories/{categoryID} [delete]
func DeleteCategory(c *gin.Context) {
	categoryID, ok := parseIDParam(c, "categoryID")
	if !ok {
		return
	}
	if err := services.DeleteCategory(categoryID, middleware.CurrentUserID(c)); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.NewSuccessResponse("Category deleted successfully", nil))
}
