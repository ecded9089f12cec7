package chat

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cryptocast/cryptocast/pkg/Logger"
)

// Poller reads unread messages from a Source. Messages it has handed out
// before are filtered, and returned ones are marked consumed so the next
// poll starts fresh.
type Poller struct {
	src        Source
	logger     *Logger.Logger
	maxRetries int
	baseDelay  time.Duration

	mu   sync.Mutex
	seen map[string]struct{}
}

func NewPoller(src Source, maxRetries int, baseDelay time.Duration, logger *Logger.Logger) *Poller {
	if maxRetries <= 0 {
		maxRetries = 3
	}
	if baseDelay <= 0 {
		baseDelay = time.Second
	}
	return &Poller{
		src:        src,
		logger:     logger,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		seen:       make(map[string]struct{}),
	}
}

// Poll returns the unread messages collected this cycle. Rate limiting from
// the source is retried with growing delays up to the retry ceiling; on
// giving up, whatever was collected so far is returned rather than failing
// the whole cycle.
func (p *Poller) Poll(ctx context.Context) ([]Message, error) {
	var collected []Message
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		batch, err := p.src.Fetch(ctx)
		collected = append(collected, p.markUnread(batch)...)
		if err == nil {
			return collected, nil
		}
		if !errors.Is(err, ErrRateLimited) {
			if len(collected) > 0 {
				p.logger.Warnf("chat fetch failed, returning %d collected messages: %v", len(collected), err)
				return collected, nil
			}
			return nil, err
		}
		if attempt == p.maxRetries {
			p.logger.Warnf("chat source still rate limited after %d retries, giving up this cycle", p.maxRetries)
			break
		}
		delay := p.baseDelay * time.Duration(attempt+1)
		p.logger.Debugf("chat source rate limited, backing off %s", delay)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return collected, ctx.Err()
		}
	}
	return collected, nil
}

// markUnread filters already-seen messages and marks the rest consumed.
func (p *Poller) markUnread(batch []Message) []Message {
	if len(batch) == 0 {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	var unread []Message
	for _, m := range batch {
		if m.ID == "" {
			continue
		}
		if _, ok := p.seen[m.ID]; ok {
			continue
		}
		p.seen[m.ID] = struct{}{}
		unread = append(unread, m)
	}
	return unread
}
