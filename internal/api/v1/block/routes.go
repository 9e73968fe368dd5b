package block

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/prompts/:promptID/blocks", ListBlocks)
	router.POST("/prompts/:promptID/blocks", CreateBlock)
	router.PUT("/prompts/:promptID/blocks/reorder", ReorderBlocks)
	router.PATCH("/blocks/:blockID", UpdateBlock)
	router.DELETE("/blocks/:blockID", DeleteBlock)
}
