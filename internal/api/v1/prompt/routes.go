package prompt

import "github.com/gin-gonic/gin"

// RegisterRoutes wires the authenticated document endpoints.
func RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/prompts", CreatePrompt)
	promptGroup := router.Group("/prompts/:promptID")
	{
		promptGroup.PATCH("", UpdatePrompt)
		promptGroup.DELETE("", DeletePrompt)
		promptGroup.POST("/duplicate", DuplicatePrompt)
		promptGroup.POST("/fork", ForkPrompt)
		promptGroup.POST("/favorite", ToggleFavorite)
		promptGroup.POST("/versions", SnapshotPrompt)
		promptGroup.GET("/versions", ListVersions)
	}
}

// RegisterPublicRoutes wires the read endpoints that admit anonymous callers;
// the visibility filter decides what they actually see.
func RegisterPublicRoutes(router *gin.RouterGroup) {
	router.GET("/w/:workspaceSlug/:promptSlug", GetPrompt)
	router.GET("/workspaces/:workspaceID/prompts", ListPrompts)
}
