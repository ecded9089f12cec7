package broadcast

import (
	"github.com/cryptocast/cryptocast/internal/config"
	"github.com/cryptocast/cryptocast/pkg/io/chat"
)

type SegmentType string

const (
	SegmentNews         SegmentType = "news"
	SegmentJokeBreak    SegmentType = "joke_break"
	SegmentChatResponse SegmentType = "chat_response"
	SegmentConclusion   SegmentType = "conclusion"
)

// Segment is one unit of broadcast content. Each variant maps to exactly one
// prompt builder; BuildPrompt is pure.
type Segment interface {
	Type() SegmentType
	BuildPrompt(cfg config.BroadcastConfig) string
}

// NewsSegment covers one news item, framed as the show opener or as a
// continuation with transition language.
type NewsSegment struct {
	Item  NewsItem
	First bool
}

func (s NewsSegment) Type() SegmentType { return SegmentNews }

// JokeBreakSegment is the light interlude slotted between news runs.
type JokeBreakSegment struct{}

func (s JokeBreakSegment) Type() SegmentType { return SegmentJokeBreak }

// ChatResponseSegment answers a batch of viewer chat messages.
type ChatResponseSegment struct {
	Messages []chat.Message
}

func (s ChatResponseSegment) Type() SegmentType { return SegmentChatResponse }

// ConclusionSegment wraps up the current run-through of the queue.
type ConclusionSegment struct{}

func (s ConclusionSegment) Type() SegmentType { return SegmentConclusion }

// StreamState is the selector's cursor over the broadcast. SegmentIndex -1
// means the stream has not dispatched anything yet. The session owns the
// state; the selector only reads it.
type StreamState struct {
	SegmentIndex int         `json:"segmentIndex"`
	LastType     SegmentType `json:"lastType"`
	Live         bool        `json:"live"`
	Started      bool        `json:"started"`
}

func NewStreamState() StreamState {
	return StreamState{SegmentIndex: -1}
}

// Decision is the selector's output: the segment to dispatch plus the state
// the caller should carry into the next selection.
type Decision struct {
	Segment   Segment
	NextIndex int
	NextType  SegmentType
}

// Joke breaks are slotted at every fifth position in the queue.
const jokeBreakInterval = 5

// SelectNext picks the next segment. It is a pure function of its inputs:
// calling it twice with the same arguments returns the same decision, and
// dispatching the segment plus updating StreamState is the caller's job.
//
// Rule order is policy, not accident:
//  1. unread chat, unless the previous segment already answered chat or
//     nothing has aired yet, is answered first without consuming a news slot
//  2. an exhausted queue concludes the run and loops back to the top
//  3. index 0 opens the show with full introduction framing
//  4. non-zero multiples of five take a joke break
//  5. everything else is a continuation news segment
func SelectNext(queue []NewsItem, st StreamState, unread []chat.Message) Decision {
	idx := st.SegmentIndex
	if idx < 0 {
		idx = 0
	}

	if len(unread) > 0 && st.LastType != SegmentChatResponse && st.LastType != "" {
		return Decision{
			Segment:   ChatResponseSegment{Messages: unread},
			NextIndex: idx,
			NextType:  SegmentChatResponse,
		}
	}

	if idx >= len(queue) {
		return Decision{
			Segment:   ConclusionSegment{},
			NextIndex: 0,
			NextType:  SegmentConclusion,
		}
	}

	if idx == 0 {
		return Decision{
			Segment:   NewsSegment{Item: queue[0], First: true},
			NextIndex: 1,
			NextType:  SegmentNews,
		}
	}

	if idx%jokeBreakInterval == 0 {
		return Decision{
			Segment:   JokeBreakSegment{},
			NextIndex: idx + 1,
			NextType:  SegmentJokeBreak,
		}
	}

	return Decision{
		Segment:   NewsSegment{Item: queue[idx], First: false},
		NextIndex: idx + 1,
		NextType:  SegmentNews,
	}
}
