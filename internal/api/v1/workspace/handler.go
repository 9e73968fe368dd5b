package workspace

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

// CreateWorkspace godoc
// @Summary Create a workspace owned by the caller
// @Tags workspaces
// @Router /workspaces [post]
func CreateWorkspace(c *gin.Context) {
	var req CreateWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, err.Error()))
		return
	}

	ws, err := services.CreateWorkspace(middleware.CurrentUserID(c), req.Name)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.NewSuccessResponse("Workspace created successfully", ws))
}

// ListWorkspaces godoc
// @Summary List the caller's workspaces
// @Tags workspaces
// @Router /workspaces [get]
func ListWorkspaces(c *gin.Context) {
	workspaces, err := services.ListUserWorkspaces(middleware.CurrentUserID(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.NewSuccessResponse("OK", workspaces))
}

// GetWorkspace godoc
// @Summary Resolve a workspace by slug, for members and its owner
// @Tags workspaces
// @Router /w/{workspaceSlug} [get]
func GetWorkspace(c *gin.Context) {
	ws, err := services.GetWorkspaceBySlug(c.Param("workspaceSlug"), middleware.CurrentUserID(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.NewSuccessResponse("OK", ws))
}

// ListMembers godoc
// @Summary List a workspace's members
// @Tags workspaces
// @Router /workspaces/{workspaceID}/members [get]
func ListMembers(c *gin.Context) {
	workspaceID, ok := parseIDParam(c, "workspaceID")
	if !ok {
		return
	}
	members, err := services.ListWorkspaceMembers(workspaceID, middleware.CurrentUserID(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.NewSuccessResponse("OK", members))
}

// AddMember godoc
// @Summary Add a user to a workspace
// @Tags workspaces
// @Router /workspaces/{workspaceID}/members [post]
func AddMember(c *gin.Context) {
	workspaceID, ok := parseIDParam(c, "workspaceID")
	if !ok {
		return
	}
	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, err.Error()))
		return
	}

	member, err := services.AddWorkspaceMember(workspaceID, middleware.CurrentUserID(c), req.UserID, req.Role)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.NewSuccessResponse("Member added successfully", member))
}

// UpdateMember godoc
// @Summary Change a member's role
// @Tags workspaces
// @Router /workspaces/{workspaceID}/members/{userID} [patch]
func UpdateMember(c *gin.Context) {
	workspaceID, ok := parseIDParam(c, "workspaceID")
	if !ok {
		return
	}
	userID, ok := parseIDParam(c, "userID")
	if !ok {
		return
	}
	var req UpdateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, err.Error()))
		return
	}

	member, err := services.UpdateMemberRole(workspaceID, middleware.CurrentUserID(c), userID, req.Role)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.NewSuccessResponse("Member updated successfully", member))
}

// RemoveMember godoc
// @Summary Remove a member from a workspace
// @Tags workspaces
// @Router /workspaces/{workspaceID}/members/{userID} [delete]
func RemoveMember(c *gin.Context) {
	workspaceID, ok := parseIDParam(c, "workspaceID")
	if !ok {
		return
	}
	userID, ok := parseIDParam(c, "userID")
	if !ok {
		return
	}

	if err := services.RemoveWorkspaceMember(workspaceID, middleware.CurrentUserID(c), userID); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.NewSuccessResponse("Member removed successfully", nil))
}

// ListActivity godoc
// @Summary List a workspace's audit log, newest first
// @Tags workspaces
// @Router /workspaces/{workspaceID}/activity [get]
func ListActivity(c *gin.Context) {
	workspaceID, ok := parseIDParam(c, "workspaceID")
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	entries, total, err := services.ListWorkspaceActivity(workspaceID, middleware.CurrentUserID(c), page, limit)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.NewSuccessResponse("OK", gin.H{"items": entries, "total": total}))
}
