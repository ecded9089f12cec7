package user

import (
	"errors"
	"fmt"

	"github.com/cryptocast/cryptocast/internal/domains/user"
	"gorm.io/gorm"
)

type GormUserRepo struct {
	db *gorm.DB
}

// Create implements user.UserRepository
func (g *GormUserRepo) Create(u *user.User) error {
	entity := NewUserEntityFromDomain(u)
	if err := g.db.Create(entity).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	*u = *entity.ToDomain()
	return nil
}

// GetByID implements user.UserRepository
func (g *GormUserRepo) GetByID(id string) (*user.User, error) {
	var entity UserEntity
	if err := g.db.Where("id = ?", id).First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}
	return entity.ToDomain(), nil
}

// GetByEmail implements user.UserRepository
func (g *GormUserRepo) GetByEmail(email string) (*user.User, error) {
	var entity UserEntity
	if err := g.db.Where("email = ?", email).First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return entity.ToDomain(), nil
}

// List implements user.UserRepository
func (g *GormUserRepo) List(offset, limit int) ([]user.User, int64, error) {
	var entities []UserEntity
	var total int64

	if err := g.db.Model(&UserEntity{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}
	if err := g.db.Offset(offset).Limit(limit).Find(&entities).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]user.User, len(entities))
	for i, entity := range entities {
		users[i] = *entity.ToDomain()
	}
	return users, total, nil
}

// EmailExists implements user.UserRepository
func (g *GormUserRepo) EmailExists(email string) (bool, error) {
	var count int64
	if err := g.db.Model(&UserEntity{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check email existence: %w", err)
	}
	return count > 0, nil
}

// NewGormUserRepo creates a new GORM-based user repository
func NewGormUserRepo(db *gorm.DB) user.UserRepository {
	return &GormUserRepo{db: db}
}
