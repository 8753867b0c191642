package events

import "hdgold/core/types"

// Event represents a structured state change emitted by an engine.
type Event interface {
	EventType() string
	Event() *types.Event
}

// Emitter broadcasts events to downstream subscribers (e.g. RPC, indexers).
type Emitter interface {
	Emit(Event)
}

// Sink receives rendered events after an operation has committed. Sinks are
// strictly downstream consumers; the core never reads them back.
type Sink interface {
	Publish(evt *types.Event)
}

// NoopEmitter satisfies the Emitter interface while discarding all events. It
// is useful when a component wants to optionally expose events.
type NoopEmitter struct{}

// Emit implements the Emitter interface.
func (NoopEmitter) Emit(Event) {}

// Recorder buffers events emitted during a single invocation so the caller
// can publish them only once the invocation has committed, or drop them when
// the invocation fails.
type Recorder struct {
	buffered []*types.Event
}

// Emit implements the Emitter interface.
func (r *Recorder) Emit(evt Event) {
	if r == nil || evt == nil {
		return
	}
	rendered := evt.Event()
	if rendered == nil {
		return
	}
	r.buffered = append(r.buffered, rendered)
}

// Drain returns the buffered events and resets the recorder.
func (r *Recorder) Drain() []*types.Event {
	if r == nil {
		return nil
	}
	out := r.buffered
	r.buffered = nil
	return out
}

// Discard drops any buffered events.
func (r *Recorder) Discard() {
	if r == nil {
		return
	}
	r.buffered = nil
}
