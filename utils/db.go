package utils

import (
	"os"

	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/devplatform/social-backend/model"
)

// GetDBConnection opens a gorm connection against the Postgres instance
// configured via DB_DSN.
func GetDBConnection() (*gorm.DB, error) {
	dsn := os.Getenv("DB_DSN")
	if len(dsn) == 0 {
		return nil, errors.New("DB_DSN is not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}
	return db, nil
}

// DatabaseSetupAndMigration migrates all durable collections. Call once
// at server startup before serving traffic.
func DatabaseSetupAndMigration(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Post{},
		&model.PostImage{},
		&model.Comment{},
		&model.Image{},
		&model.PostLike{},
		&model.SavedPost{},
		&model.UserFollow{},
	)
}
