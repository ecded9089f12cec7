package news

import (
	"context"
	"fmt"

	"github.com/cryptocast/cryptocast/internal/domains/broadcast"
	"gorm.io/gorm"
)

type GormNewsRepo struct {
	db *gorm.DB
}

// FetchQueue implements broadcast.NewsSource: newest articles first, which
// is the order the show reads them in.
func (g *GormNewsRepo) FetchQueue(ctx context.Context, limit int) ([]broadcast.NewsItem, error) {
	if limit <= 0 {
		limit = 20
	}
	var entities []NewsEntity
	if err := g.db.WithContext(ctx).
		Order("published_at DESC").
		Limit(limit).
		Find(&entities).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch news queue: %w", err)
	}

	items := make([]broadcast.NewsItem, len(entities))
	for i, e := range entities {
		items[i] = e.ToDomain()
	}
	return items, nil
}

// Create implements broadcast.NewsRepository
func (g *GormNewsRepo) Create(ctx context.Context, item *broadcast.NewsItem) error {
	var entity NewsEntity
	entity.FromDomain(*item)
	if err := g.db.WithContext(ctx).Create(&entity).Error; err != nil {
		return fmt.Errorf("failed to create news item: %w", err)
	}
	*item = entity.ToDomain()
	return nil
}

// List implements broadcast.NewsRepository
func (g *GormNewsRepo) List(ctx context.Context, offset, limit int) ([]broadcast.NewsItem, int64, error) {
	var entities []NewsEntity
	var total int64

	if err := g.db.WithContext(ctx).Model(&NewsEntity{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count news items: %w", err)
	}
	if err := g.db.WithContext(ctx).
		Order("published_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&entities).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list news items: %w", err)
	}

	items := make([]broadcast.NewsItem, len(entities))
	for i, e := range entities {
		items[i] = e.ToDomain()
	}
	return items, total, nil
}

// NewGormNewsRepo creates a new GORM-based news repository
func NewGormNewsRepo(db *gorm.DB) broadcast.NewsRepository {
	return &GormNewsRepo{db: db}
}
