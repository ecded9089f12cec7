package chat

import (
	"context"
	"errors"
	"time"
)

// Message is one viewer chat message. ID is the upstream identifier and is
// stable across polls; the poller dedupes on it.
type Message struct {
	ID          string    `json:"id"`
	Author      string    `json:"author"`
	Text        string    `json:"text"`
	PublishedAt time.Time `json:"publishedAt"`
}

// ErrRateLimited is returned by a Source when the upstream throttles us.
var ErrRateLimited = errors.New("chat source rate limited")

// Source fetches the recent messages visible upstream. Implementations return
// ErrRateLimited (possibly wrapped) on throttling signals.
type Source interface {
	Fetch(ctx context.Context) ([]Message, error)
}
