package workspace

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/workspaces", CreateWorkspace)
	router.GET("/workspaces", ListWorkspaces)
	router.GET("/w/:workspaceSlug", GetWorkspace)

	wsGroup := router.Group("/workspaces/:workspaceID")
	{
		wsGroup.GET("/members", ListMembers)
		wsGroup.POST("/members", AddMember)
		wsGroup.PATCH("/members/:userID", UpdateMember)
		wsGroup.DELETE("/members/:userID", RemoveMember)
		wsGroup.GET("/activity", ListActivity)
	}
}
