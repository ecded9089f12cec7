package broadcast

import (
	"context"
	"sync"
	"time"

	"github.com/cryptocast/cryptocast/internal/config"
	"github.com/cryptocast/cryptocast/pkg/Logger"
	"github.com/cryptocast/cryptocast/pkg/io/chat"
	"github.com/cryptocast/cryptocast/pkg/scriptgen"
	"github.com/google/uuid"
)

// Event types for session communication
type SessionEventType string

const (
	// Input events (commands to the session)
	EventStartStream   SessionEventType = "START_STREAM"
	EventStopStream    SessionEventType = "STOP_STREAM"
	EventSkipSegment   SessionEventType = "SKIP_SEGMENT"
	EventPlaybackEnded SessionEventType = "PLAYBACK_ENDED"

	// Internal events (posted by the session to itself)
	eventGenerationDone SessionEventType = "generation_done"
	eventScriptDone     SessionEventType = "script_done"
	eventRedispatch     SessionEventType = "redispatch"

	// Output events
	EventStreamStarted  SessionEventType = "STREAM_STARTED"
	EventStreamStopped  SessionEventType = "STREAM_STOPPED"
	EventSegmentStarted SessionEventType = "SEGMENT_STARTED"
	EventLine           SessionEventType = "LINE"
	EventStreamError    SessionEventType = "STREAM_ERROR"
)

// SessionEvent carries one command to, or notification from, a session.
type SessionEvent struct {
	Type      SessionEventType `json:"type"`
	Payload   any              `json:"payload,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

// SegmentStartedData announces a dispatched segment.
type SegmentStartedData struct {
	SegmentType  SegmentType `json:"segmentType"`
	SegmentIndex int         `json:"segmentIndex"`
}

type generationResult struct {
	transcript  string
	segmentType SegmentType
	epoch       uint64
	err         error
}

// ChatPoller yields unread viewer messages. chat.Poller satisfies it.
type ChatPoller interface {
	Poll(ctx context.Context) ([]chat.Message, error)
}

// retry delay after a failed generation before re-invoking the selector
const generationRetryDelay = 2 * time.Second

// Session is one live broadcast: a single cooperative control loop that
// walks the selector -> generation -> parser -> sequencer cycle. Exactly one
// segment is in flight at a time, enforced by the loop itself. All commands
// arrive on the input channel; viewers consume the output channel.
type Session struct {
	ID         uuid.UUID
	cfg        config.BroadcastConfig
	genTimeout time.Duration
	logger     *Logger.Logger

	gen   scriptgen.Generator
	seq   *Sequencer
	news  NewsSource
	chatp ChatPoller

	mu    sync.RWMutex
	state StreamState
	queue []NewsItem

	inCh  chan SessionEvent
	outCh chan SessionEvent

	genCancel context.CancelFunc

	// epoch numbers the dispatches. Cutover bumps it, so results and
	// redispatch timers raised by a cancelled generation no longer match
	// and get dropped instead of racing the segment that replaced them.
	epoch uint64
}

func NewSession(
	cfg config.BroadcastConfig,
	genTimeout time.Duration,
	gen scriptgen.Generator,
	synth Synthesizer,
	voices CastVoices,
	news NewsSource,
	chatp ChatPoller,
	logger *Logger.Logger,
) *Session {
	s := &Session{
		ID:         uuid.New(),
		cfg:        cfg,
		genTimeout: genTimeout,
		logger:     logger,
		gen:        gen,
		news:       news,
		chatp:      chatp,
		state:      NewStreamState(),
		inCh:       make(chan SessionEvent, 64),
		outCh:      make(chan SessionEvent, 256),
	}
	s.seq = NewSequencer(synth, voices, s, logger)
	return s
}

// Post queues a command for the session loop. Drops with a warning when the
// loop is badly backed up rather than blocking the caller.
func (s *Session) Post(ev SessionEvent) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	select {
	case s.inCh <- ev:
	default:
		s.logger.Warnf("session %s input channel full, dropping %s", s.ID, ev.Type)
	}
}

// Events returns the output channel for viewers and adapters.
func (s *Session) Events() <-chan SessionEvent {
	return s.outCh
}

// State returns a snapshot of the stream cursor.
func (s *Session) State() StreamState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// CurrentLine returns the playback cursor.
func (s *Session) CurrentLine() LineState {
	return s.seq.CurrentLine()
}

// Run drives the session until ctx is cancelled.
func (s *Session) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			live := s.State().Live
			s.cutover()
			if live {
				s.mu.Lock()
				s.state = NewStreamState()
				s.mu.Unlock()
				s.emit(EventStreamStopped, nil)
			}
			close(s.outCh)
			return
		case ev := <-s.inCh:
			s.handleEvent(ctx, ev)
		}
	}
}

func (s *Session) handleEvent(ctx context.Context, ev SessionEvent) {
	switch ev.Type {
	case EventStartStream:
		s.handleStart(ctx)
	case EventStopStream:
		s.handleStop()
	case EventSkipSegment:
		s.handleSkip(ctx)
	case EventPlaybackEnded:
		s.seq.OnPlaybackEnded()
	case eventScriptDone:
		if s.State().Live {
			s.dispatchNext(ctx)
		}
	case eventRedispatch:
		if epoch, ok := ev.Payload.(uint64); ok && epoch == s.epoch && s.State().Live {
			s.dispatchNext(ctx)
		}
	case eventGenerationDone:
		s.handleGenerationDone(ctx, ev)
	default:
		s.logger.Warnf("unknown session event type %s", ev.Type)
	}
}

func (s *Session) handleStart(ctx context.Context) {
	if s.State().Live {
		s.logger.Warnf("session %s already live, ignoring start", s.ID)
		return
	}
	queue, err := s.news.FetchQueue(ctx, s.cfg.QueueSize)
	if err != nil {
		s.logger.Errorf("failed to load news queue: %v", err)
		s.emit(EventStreamError, map[string]any{"error": "could not load news queue"})
		return
	}

	s.mu.Lock()
	s.queue = queue
	s.state = StreamState{SegmentIndex: -1, Live: true, Started: true}
	s.mu.Unlock()

	s.logger.Infof("session %s going live with %d queued items", s.ID, len(queue))
	s.emit(EventStreamStarted, map[string]any{"queueLength": len(queue)})
	s.dispatchNext(ctx)
}

func (s *Session) handleStop() {
	s.cutover()
	s.mu.Lock()
	s.state = NewStreamState()
	s.mu.Unlock()
	s.logger.Infof("session %s stopped", s.ID)
	s.emit(EventStreamStopped, nil)
}

func (s *Session) handleSkip(ctx context.Context) {
	if !s.State().Live {
		return
	}
	s.logger.Infof("session %s skipping current segment", s.ID)
	s.cutover()
	s.dispatchNext(ctx)
}

// cutover aborts the in-flight generation and synthesis and discards the
// audio cache. Hard stop, no drain.
func (s *Session) cutover() {
	s.epoch++
	if s.genCancel != nil {
		s.genCancel()
		s.genCancel = nil
	}
	s.seq.Stop()
}

// dispatchNext runs one selector decision and fires the generation request.
// Generation runs in its own goroutine so the loop stays responsive to stop
// and skip; the result comes back as an input event.
func (s *Session) dispatchNext(ctx context.Context) {
	s.mu.Lock()
	// looping back to the top of the queue picks up freshly ingested items
	if s.state.SegmentIndex == 0 && s.state.LastType == SegmentConclusion {
		if queue, err := s.news.FetchQueue(ctx, s.cfg.QueueSize); err == nil {
			s.queue = queue
		} else {
			s.logger.Warnf("queue refresh failed, reusing previous queue: %v", err)
		}
	}
	queue := s.queue
	state := s.state
	s.mu.Unlock()

	var unread []chat.Message
	if s.chatp != nil {
		got, err := s.chatp.Poll(ctx)
		if err != nil {
			s.logger.Warnf("chat poll failed: %v", err)
		} else {
			unread = got
		}
	}

	decision := SelectNext(queue, state, unread)
	prompt := decision.Segment.BuildPrompt(s.cfg)

	s.mu.Lock()
	s.state.SegmentIndex = decision.NextIndex
	s.state.LastType = decision.NextType
	s.mu.Unlock()

	s.logger.Infof("session %s dispatching %s segment (next index %d)",
		s.ID, decision.NextType, decision.NextIndex)
	s.emit(EventSegmentStarted, SegmentStartedData{
		SegmentType:  decision.NextType,
		SegmentIndex: decision.NextIndex,
	})

	gctx, cancel := context.WithTimeout(ctx, s.genTimeout)
	s.epoch++
	epoch := s.epoch
	s.genCancel = cancel
	go func() {
		transcript, err := s.gen.Generate(gctx, prompt)
		s.Post(SessionEvent{
			Type: eventGenerationDone,
			Payload: generationResult{
				transcript:  transcript,
				segmentType: decision.NextType,
				epoch:       epoch,
				err:         err,
			},
		})
	}()
}

func (s *Session) handleGenerationDone(ctx context.Context, ev SessionEvent) {
	res, ok := ev.Payload.(generationResult)
	if !ok {
		s.logger.Errorf("unexpected generation payload %T", ev.Payload)
		return
	}
	if res.epoch != s.epoch {
		// result of a generation that was cut over; a newer dispatch owns
		// the loop now
		return
	}
	if s.genCancel != nil {
		s.genCancel()
		s.genCancel = nil
	}
	if !s.State().Live {
		return
	}
	if res.err != nil {
		if ctx.Err() != nil {
			return
		}
		s.logger.Errorf("generation for %s segment failed: %v", res.segmentType, res.err)
		s.emit(EventStreamError, map[string]any{"error": "generation failed"})
		s.scheduleRedispatch()
		return
	}

	script := ParseScript(res.transcript)
	if len(script) == 0 {
		s.logger.Warnf("generated transcript parsed to zero lines, retrying after delay")
		s.scheduleRedispatch()
		return
	}
	if err := s.seq.Start(ctx, script); err != nil {
		s.logger.Errorf("failed to start playback: %v", err)
		s.scheduleRedispatch()
	}
}

// scheduleRedispatch re-runs the selector after the retry delay. The timer
// carries the epoch it was armed under so a stop or skip in the meantime
// invalidates it.
func (s *Session) scheduleRedispatch() {
	epoch := s.epoch
	time.AfterFunc(generationRetryDelay, func() {
		s.Post(SessionEvent{Type: eventRedispatch, Payload: epoch})
	})
}

// OnLine implements LineSink: each line going on air is published to viewers.
func (s *Session) OnLine(line LineState) {
	s.emit(EventLine, line)
}

// OnScriptDone implements LineSink: script exhaustion hands control back to
// the selector via the loop.
func (s *Session) OnScriptDone() {
	s.Post(SessionEvent{Type: eventScriptDone})
}

func (s *Session) emit(t SessionEventType, payload any) {
	ev := SessionEvent{Type: t, Payload: payload, Timestamp: time.Now()}
	select {
	case s.outCh <- ev:
	default:
		s.logger.Warnf("session %s output channel full, dropping %s", s.ID, t)
	}
}
