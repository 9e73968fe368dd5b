package services

import (
	"fmt"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"promptvault-backend/internal/database"
	"promptvault-backend/internal/models"
)

func setupTestDB() {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		panic(fmt.Sprintf("failed to connect database: %v", err))
	}

	tables := []interface{}{
		&models.User{},
		&models.Workspace{},
		&models.WorkspaceMember{},
		&models.Category{},
		&models.Prompt{},
		&models.Block{},
		&models.PromptVersion{},
		&models.Favorite{},
		&models.Activity{},
	}
	db.Migrator().DropTable(tables...)
	if err := db.AutoMigrate(tables...); err != nil {
		panic(fmt.Sprintf("failed to migrate database: %v", err))
	}

	database.DB = db
	database.RedisClient = nil
}

func setupTestRedis() *miniredis.Miniredis {
	mr, err := miniredis.Run()
	if err != nil {
		panic(err)
	}

	database.RedisClient = redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	return mr
}

func seedUser(subject string) models.User {
	user := models.User{Subject: subject, Email: subject + "@example.com", DisplayName: subject}
	if err := database.DB.Create(&user).Error; err != nil {
		panic(err)
	}
	return user
}

func seedWorkspace(owner models.User, name, slug string) models.Workspace {
	ws := models.Workspace{Name: name, Slug: slug, OwnerID: owner.ID}
	if err := database.DB.Create(&ws).Error; err != nil {
		panic(err)
	}
	return ws
}

func seedMember(ws models.Workspace, user models.User, role models.Role) {
	member := models.WorkspaceMember{WorkspaceID: ws.ID, UserID: user.ID, Role: role}
	if err := database.DB.Create(&member).Error; err != nil {
		panic(err)
	}
}

func seedPrompt(ws models.Workspace, creator models.User, title, slug string, public bool) models.Prompt {
	prompt := models.Prompt{
		WorkspaceID: ws.ID,
		CreatedBy:   creator.ID,
		Title:       title,
		Slug:        slug,
		IsPublic:    public,
	}
	if err := database.DB.Create(&prompt).Error; err != nil {
		panic(err)
	}
	return prompt
}
