package broadcast

import (
	"fmt"
	"testing"

	"github.com/cryptocast/cryptocast/internal/config"
	"github.com/cryptocast/cryptocast/pkg/io/chat"
)

func testQueue(n int) []NewsItem {
	items := make([]NewsItem, n)
	for i := range items {
		items[i] = NewsItem{
			ID:    fmt.Sprintf("item-%d", i),
			Title: fmt.Sprintf("Headline %d", i),
		}
	}
	return items
}

func testBroadcastConfig() config.BroadcastConfig {
	return config.BroadcastConfig{
		ShowName: "CryptoCast",
		Anchor:   "NOVA",
		CoAnchor: "BYTE",
	}
}

func TestSelectNext_FirstSegmentIsIntroNews(t *testing.T) {
	d := SelectNext(testQueue(3), NewStreamState(), nil)
	seg, ok := d.Segment.(NewsSegment)
	if !ok {
		t.Fatalf("expected NewsSegment, got %T", d.Segment)
	}
	if !seg.First {
		t.Errorf("first segment should carry introduction framing")
	}
	if seg.Item.ID != "item-0" {
		t.Errorf("first segment covers %q, want item-0", seg.Item.ID)
	}
	if d.NextIndex != 1 || d.NextType != SegmentNews {
		t.Errorf("decision cursor = (%d, %s), want (1, news)", d.NextIndex, d.NextType)
	}
}

func TestSelectNext_ChatNeverPreemptsOpener(t *testing.T) {
	unread := []chat.Message{{ID: "m1", Author: "viewer", Text: "gm"}}
	d := SelectNext(testQueue(3), NewStreamState(), unread)
	if d.NextType != SegmentNews {
		t.Errorf("unread chat before anything aired picked %s, want news opener", d.NextType)
	}
}

func TestSelectNext_ChatTakesPriorityWithoutConsumingSlot(t *testing.T) {
	st := StreamState{SegmentIndex: 2, LastType: SegmentNews, Live: true, Started: true}
	unread := []chat.Message{{ID: "m1", Text: "what about ETH?"}}

	d := SelectNext(testQueue(10), st, unread)
	seg, ok := d.Segment.(ChatResponseSegment)
	if !ok {
		t.Fatalf("expected ChatResponseSegment, got %T", d.Segment)
	}
	if len(seg.Messages) != 1 {
		t.Errorf("chat segment carries %d messages, want 1", len(seg.Messages))
	}
	if d.NextIndex != 2 {
		t.Errorf("chat response advanced the queue cursor to %d", d.NextIndex)
	}
}

func TestSelectNext_NoBackToBackChat(t *testing.T) {
	st := StreamState{SegmentIndex: 2, LastType: SegmentChatResponse, Live: true, Started: true}
	unread := []chat.Message{{ID: "m2", Text: "still here"}}

	d := SelectNext(testQueue(10), st, unread)
	if d.NextType == SegmentChatResponse {
		t.Fatalf("two chat responses in a row")
	}
	if d.NextType != SegmentNews {
		t.Errorf("after chat got %s, want news continuation", d.NextType)
	}
}

func TestSelectNext_JokeBreakCadence(t *testing.T) {
	queue := testQueue(12)
	st := StreamState{SegmentIndex: -1, Live: true, Started: true}

	var types []SegmentType
	for i := 0; i < 14; i++ {
		d := SelectNext(queue, st, nil)
		types = append(types, d.NextType)
		st.SegmentIndex = d.NextIndex
		st.LastType = d.NextType
	}

	// queue positions 5 and 10 are joke slots, position 12 exhausts the
	// 12-item queue, and dispatch 13 reopens the loop with news
	for i, ty := range types {
		switch i {
		case 5, 10:
			if ty != SegmentJokeBreak {
				t.Errorf("dispatch %d = %s, want joke_break", i, ty)
			}
		case 12:
			if ty != SegmentConclusion {
				t.Errorf("dispatch %d = %s, want conclusion", i, ty)
			}
		default:
			if ty != SegmentNews {
				t.Errorf("dispatch %d = %s, want news", i, ty)
			}
		}
	}
}

func TestSelectNext_IndexZeroNeverJokes(t *testing.T) {
	d := SelectNext(testQueue(3), StreamState{SegmentIndex: 0, Live: true, Started: true}, nil)
	if d.NextType == SegmentJokeBreak {
		t.Fatalf("joke break at queue position zero")
	}
}

func TestSelectNext_ExhaustedQueueConcludesAndLoops(t *testing.T) {
	queue := testQueue(3)
	st := StreamState{SegmentIndex: 3, LastType: SegmentNews, Live: true, Started: true}

	d := SelectNext(queue, st, nil)
	if _, ok := d.Segment.(ConclusionSegment); !ok {
		t.Fatalf("expected ConclusionSegment, got %T", d.Segment)
	}
	if d.NextIndex != 0 {
		t.Errorf("conclusion should loop the cursor back to 0, got %d", d.NextIndex)
	}

	// the loop restarts with full introduction framing
	st.SegmentIndex = d.NextIndex
	st.LastType = d.NextType
	d = SelectNext(queue, st, nil)
	seg, ok := d.Segment.(NewsSegment)
	if !ok || !seg.First {
		t.Errorf("post-conclusion dispatch = %T first=%v, want intro news", d.Segment, ok && seg.First)
	}
}

func TestSelectNext_EmptyQueueConcludesImmediately(t *testing.T) {
	d := SelectNext(nil, NewStreamState(), nil)
	if d.NextType != SegmentConclusion {
		t.Errorf("empty queue dispatched %s, want conclusion", d.NextType)
	}
}

func TestSelectNext_Idempotent(t *testing.T) {
	queue := testQueue(8)
	st := StreamState{SegmentIndex: 4, LastType: SegmentNews, Live: true, Started: true}
	unread := []chat.Message{{ID: "m3", Text: "when moon"}}

	first := SelectNext(queue, st, unread)
	second := SelectNext(queue, st, unread)
	if first.NextIndex != second.NextIndex || first.NextType != second.NextType {
		t.Errorf("same inputs produced different decisions: %+v vs %+v", first, second)
	}
}

func TestSelectNext_OneConclusionPerCycle(t *testing.T) {
	queue := testQueue(4)
	st := StreamState{SegmentIndex: -1, Live: true, Started: true}

	conclusions := 0
	for i := 0; i < 6; i++ {
		d := SelectNext(queue, st, nil)
		if d.NextType == SegmentConclusion {
			conclusions++
			break
		}
		st.SegmentIndex = d.NextIndex
		st.LastType = d.NextType
	}
	if conclusions != 1 {
		t.Errorf("saw %d conclusions in one pass over a 4-item queue, want 1", conclusions)
	}
	if st.SegmentIndex != 4 {
		t.Errorf("cursor at conclusion time = %d, want 4", st.SegmentIndex)
	}
}

func TestBuildPrompt_VariantsMentionCastAndFormat(t *testing.T) {
	cfg := testBroadcastConfig()
	item := NewsItem{Title: "ETF inflows surge", Description: "Spot funds saw record volume."}

	segments := []Segment{
		NewsSegment{Item: item, First: true},
		NewsSegment{Item: item},
		JokeBreakSegment{},
		ChatResponseSegment{Messages: []chat.Message{{Author: "sat0shi", Text: "wen lambo"}}},
		ConclusionSegment{},
	}
	for _, seg := range segments {
		p := seg.BuildPrompt(cfg)
		if p == "" {
			t.Errorf("%s prompt is empty", seg.Type())
		}
	}

	intro := NewsSegment{Item: item, First: true}.BuildPrompt(cfg)
	cont := NewsSegment{Item: item}.BuildPrompt(cfg)
	if intro == cont {
		t.Errorf("intro and continuation news prompts should differ")
	}
}
