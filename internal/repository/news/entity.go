package news

import (
	"time"

	"github.com/cryptocast/cryptocast/internal/domains/broadcast"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NewsEntity represents the database entity for a news article with GORM tags
type NewsEntity struct {
	ID          string         `gorm:"primaryKey;type:char(36);not null"`
	Title       string         `gorm:"type:varchar(512);not null"`
	Description string         `gorm:"type:text"`
	Source      string         `gorm:"type:varchar(255)"`
	Content     string         `gorm:"type:longtext"`
	Provider    string         `gorm:"type:varchar(64)"`
	PublishedAt time.Time      `gorm:"column:published_at;index"`
	Category    string         `gorm:"type:varchar(64);index"`
	Ticker      string         `gorm:"type:varchar(16)"`
	Slug        string         `gorm:"uniqueIndex;type:varchar(191)"`
	CreatedAt   time.Time      `gorm:"autoCreateTime(3)"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime(3)"`
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

// TableName returns the table name for GORM
func (NewsEntity) TableName() string {
	return "news_items"
}

// BeforeCreate is a GORM hook to ensure UUID is set
func (n *NewsEntity) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	return nil
}

// ToDomain converts NewsEntity to a domain NewsItem
func (n *NewsEntity) ToDomain() broadcast.NewsItem {
	return broadcast.NewsItem{
		ID:          n.ID,
		Title:       n.Title,
		Description: n.Description,
		Source:      n.Source,
		Content:     n.Content,
		Provider:    n.Provider,
		PublishedAt: n.PublishedAt,
		Category:    n.Category,
		Ticker:      n.Ticker,
		Slug:        n.Slug,
	}
}

// FromDomain converts a domain NewsItem to NewsEntity
func (n *NewsEntity) FromDomain(item broadcast.NewsItem) {
	n.ID = item.ID
	n.Title = item.Title
	n.Description = item.Description
	n.Source = item.Source
	n.Content = item.Content
	n.Provider = item.Provider
	n.PublishedAt = item.PublishedAt
	n.Category = item.Category
	n.Ticker = item.Ticker
	n.Slug = item.Slug
}
