package broadcast

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cryptocast/cryptocast/pkg/Logger"
	"github.com/cryptocast/cryptocast/pkg/io/tts/viseme"
	"github.com/looplab/fsm"
)

// IdleLineIndex is the sentinel cursor value when no line is playing.
const IdleLineIndex = -1

// ErrNoVoice marks a speaker with no configured synthesis voice. The
// sequencer treats it like a synthesis failure: skip the line, keep going.
var ErrNoVoice = errors.New("no voice mapped for speaker")

// Synthesizer is the speech synthesis dependency. viseme.Client satisfies it.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voiceID string) ([]byte, []viseme.Event, error)
}

// AudioCacheEntry holds one line's synthesized audio and viseme track.
// Entries are written once and never mutated; the cache lives for one script.
type AudioCacheEntry struct {
	Audio   []byte
	Visemes []viseme.Event
}

// LineState is the playback cursor: the line on air plus its payloads.
type LineState struct {
	Index   int            `json:"index"`
	Speaker Speaker        `json:"speaker"`
	Text    string         `json:"text"`
	Audio   []byte         `json:"audio,omitempty"`
	Visemes []viseme.Event `json:"visemes,omitempty"`
}

func idleLineState() LineState {
	return LineState{Index: IdleLineIndex}
}

// LineSink receives sequencer output: each line as it goes on air, and a
// single notification when the script is exhausted.
type LineSink interface {
	OnLine(LineState)
	OnScriptDone()
}

const (
	stateIdle    = "idle"
	statePlaying = "playing"
)

// Sequencer drives line-by-line playback of one script. It only ever moves
// forward: entering a line blocks on that line's audio (cache hit or a fresh
// synthesis call) while the following line is prefetched concurrently, and
// advancing happens solely on an external playback-ended signal. A line whose
// synthesis fails after retries is skipped, not fatal.
type Sequencer struct {
	synth   Synthesizer
	voices  CastVoices
	sink    LineSink
	logger  *Logger.Logger
	machine *fsm.FSM

	mu           sync.Mutex
	script       []ScriptLine
	cache        map[int]AudioCacheEntry
	prefetching  map[int]chan struct{}
	cur          LineState
	scriptCtx    context.Context
	scriptCancel context.CancelFunc
	curCancel    context.CancelFunc
}

func NewSequencer(synth Synthesizer, voices CastVoices, sink LineSink, logger *Logger.Logger) *Sequencer {
	s := &Sequencer{
		synth:       synth,
		voices:      voices,
		sink:        sink,
		logger:      logger,
		cache:       make(map[int]AudioCacheEntry),
		prefetching: make(map[int]chan struct{}),
		cur:         idleLineState(),
	}
	s.machine = fsm.NewFSM(
		stateIdle,
		fsm.Events{
			{Name: "start", Src: []string{stateIdle}, Dst: statePlaying},
			{Name: "finish", Src: []string{statePlaying}, Dst: stateIdle},
			{Name: "stop", Src: []string{stateIdle, statePlaying}, Dst: stateIdle},
		},
		fsm.Callbacks{},
	)
	return s
}

// State reports the machine state, "idle" or "playing".
func (s *Sequencer) State() string {
	return s.machine.Current()
}

// CurrentLine returns the line on air, or the idle sentinel.
func (s *Sequencer) CurrentLine() LineState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur
}

// Start resets the sequencer for a new script and begins playback at line 0.
// Any previous script's cache and in-flight synthesis are discarded first.
func (s *Sequencer) Start(ctx context.Context, script []ScriptLine) error {
	s.Stop()
	if len(script) == 0 {
		return fmt.Errorf("empty script")
	}

	sctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.script = script
	s.cache = make(map[int]AudioCacheEntry)
	s.prefetching = make(map[int]chan struct{})
	s.scriptCtx = sctx
	s.scriptCancel = cancel
	s.mu.Unlock()

	if err := s.machine.Event(ctx, "start"); err != nil {
		return fmt.Errorf("cannot start playback: %w", err)
	}
	s.playFrom(0)
	return nil
}

// OnPlaybackEnded advances past the current line. This is the only way a
// line leaves the air: the signal comes from the playback side once audio
// has fully played, never from a timer.
func (s *Sequencer) OnPlaybackEnded() {
	if s.machine.Current() != statePlaying {
		return
	}
	s.mu.Lock()
	next := s.cur.Index + 1
	s.mu.Unlock()
	s.playFrom(next)
}

// Stop is a hard cutover: cancels in-flight synthesis, discards the cache,
// and resets to idle. Safe to call in any state.
func (s *Sequencer) Stop() {
	s.mu.Lock()
	if s.scriptCancel != nil {
		s.scriptCancel()
	}
	if s.curCancel != nil {
		s.curCancel()
		s.curCancel = nil
	}
	s.scriptCtx = nil
	s.scriptCancel = nil
	s.script = nil
	s.cache = make(map[int]AudioCacheEntry)
	s.prefetching = make(map[int]chan struct{})
	s.cur = idleLineState()
	s.mu.Unlock()

	if s.machine.Current() != stateIdle {
		if err := s.machine.Event(context.Background(), "stop"); err != nil {
			s.logger.Debugf("stop transition: %v", err)
		}
	}
}

// playFrom resolves audio for line i and puts it on air, skipping forward
// over lines that cannot be synthesized.
func (s *Sequencer) playFrom(i int) {
	for {
		s.mu.Lock()
		script := s.script
		sctx := s.scriptCtx
		s.mu.Unlock()

		if sctx == nil || sctx.Err() != nil {
			return
		}
		if i >= len(script) {
			s.finish()
			return
		}

		entry, ok := s.cachedEntry(i)
		if !ok {
			// a prefetch may already be resolving this line
			if ch := s.pendingPrefetch(i); ch != nil {
				select {
				case <-ch:
				case <-sctx.Done():
					return
				}
				entry, ok = s.cachedEntry(i)
			}
		}
		if !ok {
			var err error
			entry, err = s.synthesizeLine(sctx, script[i])
			if err != nil {
				if sctx.Err() != nil {
					return
				}
				s.logger.Warnf("skipping line %d (%s) after synthesis failure: %v", i, script[i].Speaker, err)
				i++
				continue
			}
			s.storeEntry(sctx, i, entry)
		}

		s.mu.Lock()
		s.cur = LineState{
			Index:   i,
			Speaker: script[i].Speaker,
			Text:    script[i].Text,
			Audio:   entry.Audio,
			Visemes: entry.Visemes,
		}
		cur := s.cur
		s.mu.Unlock()

		s.prefetch(i + 1)
		s.sink.OnLine(cur)
		return
	}
}

func (s *Sequencer) finish() {
	s.mu.Lock()
	s.cur = idleLineState()
	s.mu.Unlock()
	if err := s.machine.Event(context.Background(), "finish"); err != nil {
		s.logger.Debugf("finish transition: %v", err)
	}
	s.sink.OnScriptDone()
}

// synthesizeLine blocks on synthesis for the current line slot. A previous
// in-flight current-line request is cancelled first; there is at most one.
func (s *Sequencer) synthesizeLine(sctx context.Context, line ScriptLine) (AudioCacheEntry, error) {
	voice, ok := s.voices.Resolve(line.Speaker)
	if !ok {
		return AudioCacheEntry{}, fmt.Errorf("%w: %s", ErrNoVoice, line.Speaker)
	}

	lctx, cancel := context.WithCancel(sctx)
	s.mu.Lock()
	if s.curCancel != nil {
		s.curCancel()
	}
	s.curCancel = cancel
	s.mu.Unlock()
	defer cancel()

	audio, events, err := s.synth.Synthesize(lctx, line.Text, voice)
	if err != nil {
		return AudioCacheEntry{}, err
	}
	return AudioCacheEntry{Audio: audio, Visemes: events}, nil
}

// prefetch kicks off non-blocking synthesis for line i. It runs under the
// script context, so it survives current-line completion but not Stop.
func (s *Sequencer) prefetch(i int) {
	s.mu.Lock()
	sctx := s.scriptCtx
	if sctx == nil || i >= len(s.script) {
		s.mu.Unlock()
		return
	}
	if _, ok := s.cache[i]; ok {
		s.mu.Unlock()
		return
	}
	if _, busy := s.prefetching[i]; busy {
		s.mu.Unlock()
		return
	}
	done := make(chan struct{})
	s.prefetching[i] = done
	line := s.script[i]
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.prefetching, i)
			s.mu.Unlock()
			close(done)
		}()

		voice, ok := s.voices.Resolve(line.Speaker)
		if !ok {
			return
		}
		audio, events, err := s.synth.Synthesize(sctx, line.Text, voice)
		if err != nil {
			if sctx.Err() == nil {
				s.logger.Debugf("prefetch for line %d failed: %v", i, err)
			}
			return
		}
		s.storeEntry(sctx, i, AudioCacheEntry{Audio: audio, Visemes: events})
	}()
}

func (s *Sequencer) cachedEntry(i int) (AudioCacheEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.cache[i]
	return e, ok
}

func (s *Sequencer) pendingPrefetch(i int) chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prefetching[i]
}

// storeEntry writes to the cache only if the script the entry was produced
// for is still the active one, so a stale prefetch cannot leak into a new
// script's cache.
func (s *Sequencer) storeEntry(sctx context.Context, i int, e AudioCacheEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.scriptCtx == sctx {
		s.cache[i] = e
	}
}
