package chat

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/cryptocast/cryptocast/pkg/Logger"
)

type fakeSource struct {
	batches []fetchResult
	calls   int
}

type fetchResult struct {
	msgs []Message
	err  error
}

func (f *fakeSource) Fetch(ctx context.Context) ([]Message, error) {
	if f.calls >= len(f.batches) {
		return nil, nil
	}
	r := f.batches[f.calls]
	f.calls++
	return r.msgs, r.err
}

func msg(id, text string) Message {
	return Message{ID: id, Author: "viewer", Text: text, PublishedAt: time.Now()}
}

func TestPollDedupesAcrossCycles(t *testing.T) {
	src := &fakeSource{batches: []fetchResult{
		{msgs: []Message{msg("a", "wen moon"), msg("b", "gm")}},
		{msgs: []Message{msg("b", "gm"), msg("c", "ser")}},
	}}
	p := NewPoller(src, 3, time.Millisecond, Logger.New(true))

	first, err := p.Poll(context.Background())
	if err != nil {
		t.Fatalf("first poll failed: %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("expected 2 unread messages, got %d", len(first))
	}

	second, err := p.Poll(context.Background())
	if err != nil {
		t.Fatalf("second poll failed: %v", err)
	}
	if len(second) != 1 || second[0].ID != "c" {
		t.Errorf("expected only message c on second poll, got %+v", second)
	}
}

func TestPollRetriesRateLimitThenReturns(t *testing.T) {
	src := &fakeSource{batches: []fetchResult{
		{err: ErrRateLimited},
		{msgs: []Message{msg("a", "hi")}},
	}}
	p := NewPoller(src, 3, time.Millisecond, Logger.New(true))

	got, err := p.Poll(context.Background())
	if err != nil {
		t.Fatalf("poll failed: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("expected 1 message after retry, got %d", len(got))
	}
	if src.calls != 2 {
		t.Errorf("expected 2 fetches, got %d", src.calls)
	}
}

func TestPollGivesUpAfterRetryCeiling(t *testing.T) {
	src := &fakeSource{batches: []fetchResult{
		{msgs: []Message{msg("a", "partial")}, err: fmt.Errorf("throttled: %w", ErrRateLimited)},
		{err: ErrRateLimited},
		{err: ErrRateLimited},
	}}
	p := NewPoller(src, 2, time.Millisecond, Logger.New(true))

	got, err := p.Poll(context.Background())
	if err != nil {
		t.Fatalf("partial-success poll should not error, got %v", err)
	}
	if len(got) != 1 || got[0].ID != "a" {
		t.Errorf("expected the partially collected message, got %+v", got)
	}
	if src.calls != 3 {
		t.Errorf("expected 3 fetches (initial + 2 retries), got %d", src.calls)
	}
}

func TestPollSkipsMessagesWithoutIDs(t *testing.T) {
	src := &fakeSource{batches: []fetchResult{
		{msgs: []Message{{Text: "no id"}, msg("a", "ok")}},
	}}
	p := NewPoller(src, 1, time.Millisecond, Logger.New(true))

	got, err := p.Poll(context.Background())
	if err != nil {
		t.Fatalf("poll failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != "a" {
		t.Errorf("expected only the identified message, got %+v", got)
	}
}
