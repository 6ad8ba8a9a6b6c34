// Package trace provides per-cycle structured trace hook points for the
// pipeline stages. Trace *internals* are out of scope; only the hook
// points the core calls into are provided here. The default Sink
// discards everything; the --debug flag wires it to log/slog.
package trace

import "log/slog"

// Event is one structured trace record. Fields is kept open-ended
// (map[string]any) because different hook points carry different
// payloads (a fetch event carries a PC, a jeclear event carries an
// action id, etc.) and forcing a single struct shape on all of them would
// not match the variety of events a pipeline emits.
type Event struct {
	Core   int
	Cycle  uint64
	Kind   string
	Fields map[string]any
}

// Sink receives trace events. The core keeps the Sink it is built with,
// but none of its pipeline stages calls Emit.
type Sink interface {
	Emit(e Event)
}

// Discard is the default Sink: it drops every event. Tracing has
// observable cost (allocating the Fields map) even when discarded, so
// callers should guard Emit calls with an Enabled() check when Fields
// construction is expensive; Discard always reports disabled.
type Discard struct{}

func (Discard) Emit(Event) {}

// Enabled reports whether a Sink wants events at all, letting callers skip
// building the Event payload when nothing is listening.
func Enabled(s Sink) bool {
	_, isDiscard := s.(Discard)
	return !isDiscard
}

// SlogSink forwards every event to log/slog at Debug level, used when the
// CLI's --debug flag is set.
type SlogSink struct{}

func (SlogSink) Emit(e Event) {
	args := make([]any, 0, 4+2*len(e.Fields))
	args = append(args, "core", e.Core, "cycle", e.Cycle)
	for k, v := range e.Fields {
		args = append(args, k, v)
	}
	slog.Debug(e.Kind, args...)
}
