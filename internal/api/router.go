package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"promptvault-backend/config"
	"promptvault-backend/internal/api/v1/block"
	"promptvault-backend/internal/api/v1/category"
	"promptvault-backend/internal/api/v1/prompt"
	"promptvault-backend/internal/api/v1/workspace"
	"promptvault-backend/internal/database"
	"promptvault-backend/internal/middleware"
	"promptvault-backend/pkg/logger"
)

func NewRouter() (*gin.Engine, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	db, err := database.Connect(cfg.DSN(), cfg.SQLitePath)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}

	// The cache is an optimization; the engine runs without it.
	if err := database.ConnectRedis(cfg); err != nil {
		database.RedisClient = nil
		if logger.Log != nil {
			logger.Log.Warn("redis unavailable, running without cache")
		}
	}

	registerValidators()

	router := gin.New()
	router.Use(middleware.Logger(), gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://localhost:8080"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	v1 := router.Group("/api/v1")
	{
		public := v1.Group("/")
		public.Use(middleware.OptionalAuthMiddleware())
		{
			prompt.RegisterPublicRoutes(public)
		}

		authorized := v1.Group("/")
		authorized.Use(middleware.AuthMiddleware())
		{
			workspace.RegisterRoutes(authorized)
			prompt.RegisterRoutes(authorized)
			block.RegisterRoutes(authorized)
			category.RegisterRoutes(authorized)
		}
	}

	return router, nil
}
