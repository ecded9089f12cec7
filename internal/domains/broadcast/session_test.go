package broadcast

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cryptocast/cryptocast/internal/config"
	"github.com/cryptocast/cryptocast/pkg/Logger"
	"github.com/cryptocast/cryptocast/pkg/io/chat"
	"github.com/cryptocast/cryptocast/pkg/scriptgen"
)

type fakeNews struct {
	items []NewsItem
	err   error
}

func (f *fakeNews) FetchQueue(ctx context.Context, limit int) ([]NewsItem, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.items, nil
}

type fakeGenerator struct {
	mu         sync.Mutex
	transcript string
	failures   int
	calls      int
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failures > 0 {
		f.failures--
		return "", errors.New("generation backend down")
	}
	return f.transcript, nil
}

func (f *fakeGenerator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeChatPoller struct {
	mu      sync.Mutex
	pending []chat.Message
}

func (f *fakeChatPoller) Poll(ctx context.Context) ([]chat.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.pending
	f.pending = nil
	return out, nil
}

func (f *fakeChatPoller) push(msgs ...chat.Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending = append(f.pending, msgs...)
}

// blockingGenerator hangs its first call until the context is cancelled,
// standing in for a slow backend that is still working when a skip lands.
type blockingGenerator struct {
	mu         sync.Mutex
	transcript string
	calls      int
}

func (g *blockingGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.mu.Lock()
	n := g.calls
	g.calls++
	g.mu.Unlock()
	if n == 0 {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return g.transcript, nil
}

func (g *blockingGenerator) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

func sessionConfig() config.BroadcastConfig {
	return config.BroadcastConfig{
		ShowName:  "CryptoCast Live",
		Anchor:    "NOVA",
		CoAnchor:  "BYTE",
		QueueSize: 20,
	}
}

// awaitEvent drains the output channel until an event of the wanted type
// arrives.
func awaitEvent(t *testing.T, events <-chan SessionEvent, want SessionEventType) SessionEvent {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				t.Fatalf("event channel closed while waiting for %s", want)
			}
			if ev.Type == want {
				return ev
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s", want)
		}
	}
}

func startTestSession(t *testing.T, gen scriptgen.Generator, news *fakeNews, chatp ChatPoller) (*Session, context.CancelFunc) {
	t.Helper()
	sess := NewSession(
		sessionConfig(),
		5*time.Second,
		gen,
		newFakeSynth(),
		testVoices(),
		news,
		chatp,
		Logger.New(true),
	)
	ctx, cancel := context.WithCancel(context.Background())
	go sess.Run(ctx)
	return sess, cancel
}

func TestSession_StartDispatchesOpenerAndPlaysLines(t *testing.T) {
	gen := &fakeGenerator{transcript: "NOVA< Welcome to the show.\nBYTE< Markets are moving."}
	sess, cancel := startTestSession(t, gen, &fakeNews{items: testQueue(3)}, nil)
	defer cancel()

	sess.Post(SessionEvent{Type: EventStartStream})
	awaitEvent(t, sess.Events(), EventStreamStarted)

	seg := awaitEvent(t, sess.Events(), EventSegmentStarted)
	data, ok := seg.Payload.(SegmentStartedData)
	if !ok {
		t.Fatalf("segment payload is %T", seg.Payload)
	}
	if data.SegmentType != SegmentNews || data.SegmentIndex != 1 {
		t.Errorf("opener dispatch = %+v, want news at next index 1", data)
	}

	line := awaitEvent(t, sess.Events(), EventLine)
	ls, ok := line.Payload.(LineState)
	if !ok {
		t.Fatalf("line payload is %T", line.Payload)
	}
	if ls.Index != 0 || ls.Speaker != SpeakerNova {
		t.Errorf("first line = %+v", ls)
	}

	// only the external playback signal moves the cursor
	sess.Post(SessionEvent{Type: EventPlaybackEnded})
	line = awaitEvent(t, sess.Events(), EventLine)
	if got := line.Payload.(LineState).Index; got != 1 {
		t.Errorf("second line index = %d, want 1", got)
	}
}

func TestSession_ScriptExhaustionDispatchesNextSegment(t *testing.T) {
	gen := &fakeGenerator{transcript: "NOVA< One line only."}
	sess, cancel := startTestSession(t, gen, &fakeNews{items: testQueue(3)}, nil)
	defer cancel()

	sess.Post(SessionEvent{Type: EventStartStream})
	awaitEvent(t, sess.Events(), EventSegmentStarted)
	awaitEvent(t, sess.Events(), EventLine)

	// finishing the single line hands control back to the selector
	sess.Post(SessionEvent{Type: EventPlaybackEnded})
	seg := awaitEvent(t, sess.Events(), EventSegmentStarted)
	data := seg.Payload.(SegmentStartedData)
	if data.SegmentType != SegmentNews || data.SegmentIndex != 2 {
		t.Errorf("second dispatch = %+v, want news continuation at index 2", data)
	}
}

func TestSession_ChatAnsweredAfterFirstSegment(t *testing.T) {
	gen := &fakeGenerator{transcript: "NOVA< Hello."}
	chatp := &fakeChatPoller{}
	sess, cancel := startTestSession(t, gen, &fakeNews{items: testQueue(5)}, chatp)
	defer cancel()

	sess.Post(SessionEvent{Type: EventStartStream})
	first := awaitEvent(t, sess.Events(), EventSegmentStarted)
	if first.Payload.(SegmentStartedData).SegmentType != SegmentNews {
		t.Fatalf("opener is not news")
	}
	awaitEvent(t, sess.Events(), EventLine)

	chatp.push(chat.Message{ID: "m1", Author: "viewer", Text: "what about BTC?"})
	sess.Post(SessionEvent{Type: EventPlaybackEnded})

	second := awaitEvent(t, sess.Events(), EventSegmentStarted)
	data := second.Payload.(SegmentStartedData)
	if data.SegmentType != SegmentChatResponse {
		t.Errorf("second dispatch = %s, want chat_response", data.SegmentType)
	}
	if data.SegmentIndex != 1 {
		t.Errorf("chat response advanced the cursor to %d", data.SegmentIndex)
	}
}

func TestSession_SkipCutsOverToNextSegment(t *testing.T) {
	gen := &fakeGenerator{transcript: "NOVA< A.\nBYTE< B.\nNOVA< C."}
	sess, cancel := startTestSession(t, gen, &fakeNews{items: testQueue(5)}, nil)
	defer cancel()

	sess.Post(SessionEvent{Type: EventStartStream})
	awaitEvent(t, sess.Events(), EventSegmentStarted)
	awaitEvent(t, sess.Events(), EventLine)

	sess.Post(SessionEvent{Type: EventSkipSegment})
	seg := awaitEvent(t, sess.Events(), EventSegmentStarted)
	data := seg.Payload.(SegmentStartedData)
	if data.SegmentIndex != 2 {
		t.Errorf("skip dispatched index %d, want 2", data.SegmentIndex)
	}
	// the skipped script's remaining lines never air
	awaitEvent(t, sess.Events(), EventLine)
}

func TestSession_SkipDuringGenerationDispatchesExactlyOnce(t *testing.T) {
	gen := &blockingGenerator{transcript: "NOVA< Fresh take."}
	sess, cancel := startTestSession(t, gen, &fakeNews{items: testQueue(5)}, nil)
	defer cancel()

	sess.Post(SessionEvent{Type: EventStartStream})
	awaitEvent(t, sess.Events(), EventSegmentStarted)

	// the opener's generation is still hanging when the skip lands
	sess.Post(SessionEvent{Type: EventSkipSegment})
	seg := awaitEvent(t, sess.Events(), EventSegmentStarted)
	if got := seg.Payload.(SegmentStartedData).SegmentIndex; got != 2 {
		t.Errorf("skip dispatched index %d, want 2", got)
	}
	awaitEvent(t, sess.Events(), EventLine)

	// the cancelled generation's result must not surface errors or fire
	// another dispatch, even once the retry delay has elapsed
	segments, errs := 0, 0
	quiet := time.After(generationRetryDelay + 500*time.Millisecond)
	for {
		select {
		case ev := <-sess.Events():
			switch ev.Type {
			case EventSegmentStarted:
				segments++
			case EventStreamError:
				errs++
			}
		case <-quiet:
			if segments != 0 {
				t.Errorf("%d extra dispatches after skip, want 0", segments)
			}
			if errs != 0 {
				t.Errorf("%d stream errors after skip, want 0", errs)
			}
			if n := gen.callCount(); n != 2 {
				t.Errorf("generator called %d times, want 2", n)
			}
			return
		}
	}
}

func TestSession_UnparseableTranscriptRetriesAfterDelay(t *testing.T) {
	gen := &fakeGenerator{transcript: "static with no speaker tags"}
	sess, cancel := startTestSession(t, gen, &fakeNews{items: testQueue(3)}, nil)
	defer cancel()

	sess.Post(SessionEvent{Type: EventStartStream})
	awaitEvent(t, sess.Events(), EventSegmentStarted)

	// an unusable transcript waits out the retry delay instead of hammering
	// the generation backend
	time.Sleep(generationRetryDelay / 2)
	if n := gen.callCount(); n != 1 {
		t.Errorf("generator called %d times inside the retry window, want 1", n)
	}

	seg := awaitEvent(t, sess.Events(), EventSegmentStarted)
	if got := seg.Payload.(SegmentStartedData).SegmentIndex; got != 2 {
		t.Errorf("delayed redispatch moved to index %d, want 2", got)
	}
}

func TestSession_StopResetsState(t *testing.T) {
	gen := &fakeGenerator{transcript: "NOVA< Hello."}
	sess, cancel := startTestSession(t, gen, &fakeNews{items: testQueue(3)}, nil)
	defer cancel()

	sess.Post(SessionEvent{Type: EventStartStream})
	awaitEvent(t, sess.Events(), EventLine)

	sess.Post(SessionEvent{Type: EventStopStream})
	awaitEvent(t, sess.Events(), EventStreamStopped)

	st := sess.State()
	if st.Live || st.Started || st.SegmentIndex != -1 {
		t.Errorf("state after stop = %+v, want pristine", st)
	}
	if sess.CurrentLine().Index != IdleLineIndex {
		t.Errorf("line cursor after stop = %d", sess.CurrentLine().Index)
	}
}

func TestSession_GenerationFailureEmitsErrorWithoutRetryInClient(t *testing.T) {
	gen := &fakeGenerator{transcript: "NOVA< Eventually.", failures: 1}
	sess, cancel := startTestSession(t, gen, &fakeNews{items: testQueue(3)}, nil)
	defer cancel()

	sess.Post(SessionEvent{Type: EventStartStream})
	awaitEvent(t, sess.Events(), EventSegmentStarted)
	awaitEvent(t, sess.Events(), EventStreamError)

	// exactly one call so far: the failure is not retried inside the client
	if n := gen.callCount(); n != 1 {
		t.Errorf("generator called %d times before redispatch, want 1", n)
	}

	// the delayed redispatch recovers the stream
	awaitEvent(t, sess.Events(), EventLine)
}

func TestSession_EmptyNewsQueueConcludes(t *testing.T) {
	gen := &fakeGenerator{transcript: "NOVA< That is all for now."}
	sess, cancel := startTestSession(t, gen, &fakeNews{items: nil}, nil)
	defer cancel()

	sess.Post(SessionEvent{Type: EventStartStream})
	seg := awaitEvent(t, sess.Events(), EventSegmentStarted)
	if got := seg.Payload.(SegmentStartedData).SegmentType; got != SegmentConclusion {
		t.Errorf("empty queue dispatched %s, want conclusion", got)
	}
}
