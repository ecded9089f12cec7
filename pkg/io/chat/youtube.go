package chat

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cryptocast/cryptocast/pkg/Logger"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// YouTubeSource polls a YouTube live chat. It keeps the page token between
// fetches so each call only returns messages newer than the previous page.
type YouTubeSource struct {
	svc        *youtube.Service
	liveChatID string
	pageToken  string
	logger     *Logger.Logger
}

func NewYouTubeSource(ctx context.Context, apiKey, liveChatID string, logger *Logger.Logger) (*YouTubeSource, error) {
	if liveChatID == "" {
		return nil, fmt.Errorf("live chat id required")
	}
	svc, err := youtube.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create youtube service: %w", err)
	}
	return &YouTubeSource{
		svc:        svc,
		liveChatID: liveChatID,
		logger:     logger,
	}, nil
}

func (y *YouTubeSource) Fetch(ctx context.Context) ([]Message, error) {
	call := y.svc.LiveChatMessages.List(y.liveChatID, []string{"snippet", "authorDetails"})
	if y.pageToken != "" {
		call = call.PageToken(y.pageToken)
	}

	resp, err := call.Context(ctx).Do()
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && (gerr.Code == http.StatusTooManyRequests || gerr.Code == http.StatusForbidden) {
			return nil, fmt.Errorf("%w: youtube returned %d", ErrRateLimited, gerr.Code)
		}
		return nil, fmt.Errorf("youtube live chat fetch failed: %w", err)
	}

	y.pageToken = resp.NextPageToken

	msgs := make([]Message, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Snippet == nil || item.Snippet.DisplayMessage == "" {
			continue
		}
		author := ""
		if item.AuthorDetails != nil {
			author = item.AuthorDetails.DisplayName
		}
		publishedAt, perr := time.Parse(time.RFC3339, item.Snippet.PublishedAt)
		if perr != nil {
			y.logger.Debugf("unparseable chat timestamp %q: %v", item.Snippet.PublishedAt, perr)
			publishedAt = time.Now()
		}
		msgs = append(msgs, Message{
			ID:          item.Id,
			Author:      author,
			Text:        item.Snippet.DisplayMessage,
			PublishedAt: publishedAt,
		})
	}
	return msgs, nil
}
