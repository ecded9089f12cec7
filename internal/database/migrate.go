package database

import (
	"fmt"

	newsRepo "github.com/cryptocast/cryptocast/internal/repository/news"
	userRepo "github.com/cryptocast/cryptocast/internal/repository/user"
	"gorm.io/gorm"
)

// MigrateDB applies schema migrations for every persisted entity.
func MigrateDB(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&userRepo.UserEntity{},
		&newsRepo.NewsEntity{},
	); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}
