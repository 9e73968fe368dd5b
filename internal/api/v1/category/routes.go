package category

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/workspaces/:workspaceID/categories", ListCategories)
	router.POST("/workspaces/:workspaceID/categories", CreateCategory)
	router.PATCH("/categories/:categoryID", UpdateCategory)
	router.DELETE("/categories/:categoryID", DeleteCategory)
}
