package events

import (
	"context"
	"sync"

	"ytpulse/internal/comments"
)

type streamState struct {
	ctx      context.Context
	out      Emitter
	mu       sync.Mutex
	terminal bool
	writeErr error
}

// Stream is the typed, cancellation-aware front of an Emitter. Once the
// context is done, a terminal event has been sent, or the sink failed, every
// further event is dropped.
type Stream struct {
	state    *streamState
	from, to float64
}

// NewStream wraps out. Progress percentages pass through unchanged.
func NewStream(ctx context.Context, out Emitter) *Stream {
	if out == nil {
		out = Discard
	}
	return &Stream{state: &streamState{ctx: ctx, out: out}, from: 0, to: 100}
}

// Within returns a view whose progress 0..100 maps onto [from, to] of s.
func (s *Stream) Within(from, to float64) *Stream {
	return &Stream{state: s.state, from: s.scale(from), to: s.scale(to)}
}

func (s *Stream) scale(pct float64) float64 {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	return s.from + (s.to-s.from)*pct/100
}

// Closed reports whether the stream accepts no more events.
func (s *Stream) Closed() bool {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	return s.closedLocked()
}

func (s *Stream) closedLocked() bool {
	return s.state.terminal || s.state.writeErr != nil || s.state.ctx.Err() != nil
}

// Err returns the first sink write failure, if any.
func (s *Stream) Err() error {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	return s.state.writeErr
}

func (s *Stream) emit(e Event) bool {
	st := s.state
	st.mu.Lock()
	defer st.mu.Unlock()
	if s.closedLocked() {
		return false
	}
	if e.Terminal() {
		st.terminal = true
	}
	if err := st.out.Emit(e); err != nil {
		st.writeErr = err
		return false
	}
	return true
}

// Progress reports pct (0..100 within this view) for stage.
func (s *Stream) Progress(stage string, pct float64, current, total int) {
	s.emit(Event{Type: TypeProgress, Data: Progress{
		Stage:      stage,
		Percentage: s.scale(pct),
		Current:    current,
		Total:      total,
	}})
}

// VideoInfo emits video metadata.
func (s *Stream) VideoInfo(info comments.VideoInfo) {
	s.emit(Event{Type: TypeVideoInfo, Data: info})
}

// Comments emits a page of filtered comments. Empty pages are skipped.
func (s *Stream) Comments(list []comments.Comment) {
	if len(list) == 0 {
		return
	}
	s.emit(Event{Type: TypeComments, Data: list})
}

// Translated emits one chunk of translations.
func (s *Stream) Translated(list []Translation) {
	if len(list) == 0 {
		return
	}
	s.emit(Event{Type: TypeTranslated, Data: list})
}

// Warn emits a non-fatal error event.
func (s *Stream) Warn(data ErrorData) {
	data.Fatal = false
	s.emit(Event{Type: TypeError, Data: data})
}

// Complete emits the terminal success event.
func (s *Stream) Complete(payload any) bool {
	return s.emit(Event{Type: TypeComplete, Data: payload})
}

// Fail emits the terminal error event for err.
func (s *Stream) Fail(err error) bool {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return s.emit(Event{Type: TypeError, Data: ErrorData{Message: msg, Fatal: true}})
}
