package events

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"slices"
	"sync"
)

// Emitter consumes stream events.
type Emitter interface {
	Emit(Event) error
}

// EmitterFunc adapts a function to Emitter.
type EmitterFunc func(Event) error

// Emit calls f.
func (f EmitterFunc) Emit(e Event) error { return f(e) }

// Discard drops every event.
var Discard Emitter = EmitterFunc(func(Event) error { return nil })

// NDJSONWriter frames each event as one JSON object per line.
type NDJSONWriter struct {
	mu      sync.Mutex
	enc     *json.Encoder
	flusher http.Flusher
}

// NewNDJSONWriter writes to w, flushing after every line when w supports it.
func NewNDJSONWriter(w io.Writer) *NDJSONWriter {
	writer := &NDJSONWriter{enc: json.NewEncoder(w)}
	writer.enc.SetEscapeHTML(false)
	if f, ok := w.(http.Flusher); ok {
		writer.flusher = f
	}
	return writer
}

// Emit encodes e followed by a newline.
func (w *NDJSONWriter) Emit(e Event) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.enc.Encode(e); err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	if w.flusher != nil {
		w.flusher.Flush()
	}
	return nil
}

// Recorder keeps every emitted event in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Emit appends e.
func (r *Recorder) Emit(e Event) error {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
	return nil
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.events)
}

// Types returns the recorded event types in order.
func (r *Recorder) Types() []Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Type, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

// OfType returns the recorded events with type t.
func (r *Recorder) OfType(t Type) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, e := range r.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}
