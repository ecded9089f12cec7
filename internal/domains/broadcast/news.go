package broadcast

import (
	"context"
	"time"
)

// NewsItem is a read-only reference to an article in the news store. Items
// are immutable once fetched; the broadcast loop never writes them back.
type NewsItem struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Source      string    `json:"source"`
	Content     string    `json:"content"`
	Provider    string    `json:"provider"`
	PublishedAt time.Time `json:"publishedAt"`
	Category    string    `json:"category"`
	Ticker      string    `json:"ticker"`
	Slug        string    `json:"slug"`
}

// NewsSource supplies the broadcast queue, newest first.
type NewsSource interface {
	FetchQueue(ctx context.Context, limit int) ([]NewsItem, error)
}

// NewsRepository is the news desk's full surface: the broadcast read side
// plus the ingest and listing operations used by the editorial API.
type NewsRepository interface {
	NewsSource
	Create(ctx context.Context, item *NewsItem) error
	List(ctx context.Context, offset, limit int) ([]NewsItem, int64, error)
}
