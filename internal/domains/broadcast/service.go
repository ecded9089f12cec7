package broadcast

import (
	"context"
	"errors"
	"sync"

	"github.com/cryptocast/cryptocast/internal/config"
	"github.com/cryptocast/cryptocast/pkg/Logger"
	"github.com/cryptocast/cryptocast/pkg/io"
	"github.com/google/uuid"
)

// Common errors
var (
	ErrNoActiveStream = errors.New("no active stream")
	ErrAlreadyLive    = errors.New("a stream is already live")
)

// StreamStatus is the control-surface view of the running broadcast.
type StreamStatus struct {
	SessionID    uuid.UUID   `json:"sessionId"`
	Live         bool        `json:"live"`
	SegmentIndex int         `json:"segmentIndex"`
	SegmentType  SegmentType `json:"segmentType,omitempty"`
	LineIndex    int         `json:"lineIndex"`
	Speaker      Speaker     `json:"speaker,omitempty"`
}

// BroadcastService defines the control surface over the single live stream.
type BroadcastService interface {
	StartStream(ctx context.Context) (uuid.UUID, error)
	StopStream(ctx context.Context) error
	SkipSegment(ctx context.Context) error
	PlaybackEnded(sessionID uuid.UUID) error
	Status(ctx context.Context) (*StreamStatus, error)
	// Deliver forwards a viewer-originated command to the live session.
	Deliver(sessionID uuid.UUID, ev SessionEvent) error
	Shutdown()
}

// ChatPollerFactory builds a fresh poller per stream so dedupe state does
// not bleed across sessions.
type ChatPollerFactory func() ChatPoller

type broadcastService struct {
	cfg     config.BroadcastConfig
	genTO   config.GenerationConfig
	gen     boundGenerator
	synth   Synthesizer
	voices  CastVoices
	news    NewsSource
	chatFct ChatPollerFactory
	pub     *io.Publisher
	logger  *Logger.Logger

	mu      sync.Mutex
	session *Session
	cancel  context.CancelFunc
	done    chan struct{}
}

// boundGenerator narrows the scriptgen dependency for wiring.
type boundGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

func NewBroadcastService(
	cfg config.BroadcastConfig,
	genCfg config.GenerationConfig,
	gen boundGenerator,
	synth Synthesizer,
	voices CastVoices,
	news NewsSource,
	chatFct ChatPollerFactory,
	pub *io.Publisher,
	logger *Logger.Logger,
) BroadcastService {
	return &broadcastService{
		cfg:     cfg,
		genTO:   genCfg,
		gen:     gen,
		synth:   synth,
		voices:  voices,
		news:    news,
		chatFct: chatFct,
		pub:     pub,
		logger:  logger,
	}
}

func (b *broadcastService) StartStream(ctx context.Context) (uuid.UUID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.session != nil {
		return uuid.Nil, ErrAlreadyLive
	}

	var chatp ChatPoller
	if b.chatFct != nil {
		chatp = b.chatFct()
	}
	sess := NewSession(
		b.cfg, b.genTO.Timeout(), b.gen, b.synth, b.voices, b.news, chatp, b.logger,
	)

	runCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	b.session = sess
	b.cancel = cancel
	b.done = done

	go sess.Run(runCtx)
	go b.pump(sess, done)

	sess.Post(SessionEvent{Type: EventStartStream})
	b.logger.Infof("broadcast session %s launched", sess.ID)
	return sess.ID, nil
}

func (b *broadcastService) StopStream(ctx context.Context) error {
	b.mu.Lock()
	sess := b.session
	cancel := b.cancel
	done := b.done
	b.session = nil
	b.cancel = nil
	b.done = nil
	b.mu.Unlock()

	if sess == nil {
		return ErrNoActiveStream
	}
	// cancelling the run context aborts in-flight generation and synthesis;
	// the session announces the stop on its way out
	cancel()
	<-done
	b.logger.Infof("broadcast session %s torn down", sess.ID)
	return nil
}

func (b *broadcastService) SkipSegment(ctx context.Context) error {
	sess := b.current()
	if sess == nil {
		return ErrNoActiveStream
	}
	sess.Post(SessionEvent{Type: EventSkipSegment})
	return nil
}

func (b *broadcastService) PlaybackEnded(sessionID uuid.UUID) error {
	return b.Deliver(sessionID, SessionEvent{Type: EventPlaybackEnded})
}

func (b *broadcastService) Status(ctx context.Context) (*StreamStatus, error) {
	sess := b.current()
	if sess == nil {
		return nil, ErrNoActiveStream
	}
	st := sess.State()
	line := sess.CurrentLine()
	return &StreamStatus{
		SessionID:    sess.ID,
		Live:         st.Live,
		SegmentIndex: st.SegmentIndex,
		SegmentType:  st.LastType,
		LineIndex:    line.Index,
		Speaker:      line.Speaker,
	}, nil
}

func (b *broadcastService) Deliver(sessionID uuid.UUID, ev SessionEvent) error {
	sess := b.current()
	if sess == nil {
		return ErrNoActiveStream
	}
	if sessionID != uuid.Nil && sessionID != sess.ID {
		return ErrNoActiveStream
	}
	sess.Post(ev)
	return nil
}

func (b *broadcastService) Shutdown() {
	if err := b.StopStream(context.Background()); err != nil && !errors.Is(err, ErrNoActiveStream) {
		b.logger.Warnf("shutdown: %v", err)
	}
}

func (b *broadcastService) current() *Session {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.session
}

// pump drains the session's output channel and fans each event out to the
// attached viewer endpoints. It exits when the session closes its channel.
func (b *broadcastService) pump(sess *Session, done chan struct{}) {
	defer close(done)
	ctx := context.Background()
	for ev := range sess.Events() {
		switch ev.Type {
		case EventLine:
			line, ok := ev.Payload.(LineState)
			if !ok {
				continue
			}
			if err := b.pub.SendLine(ctx, sess.ID, line.Index, line); err != nil {
				b.logger.Debugf("line delivery: %v", err)
			}
			if len(line.Audio) > 0 {
				if err := b.pub.SendAudioFrame(ctx, sess.ID, line.Index, line.Audio); err != nil {
					b.logger.Debugf("audio delivery: %v", err)
				}
			}
		default:
			if err := b.pub.SendEvent(ctx, sess.ID, string(ev.Type), ev.Payload); err != nil {
				b.logger.Debugf("event delivery: %v", err)
			}
		}
	}
}
