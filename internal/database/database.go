package database

import (
	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"promptvault-backend/internal/models"
)

var DB *gorm.DB

// Connect opens the backing store. A non-empty sqlitePath selects the
// embedded database for local runs; otherwise dsn is treated as Postgres.
func Connect(dsn, sqlitePath string) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)
	if sqlitePath != "" {
		db, err = gorm.Open(sqlite.Open(sqlitePath), &gorm.Config{})
	} else {
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	}
	if err != nil {
		return nil, err
	}

	DB = db
	return db, nil
}

// Migrate applies the schema for every engine entity.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Workspace{},
		&models.WorkspaceMember{},
		&models.Category{},
		&models.Prompt{},
		&models.Block{},
		&models.PromptVersion{},
		&models.Favorite{},
		&models.Activity{},
	)
}
