package events

import (
	"context"
	"slices"
	"sync"

	domain "github.com/oshokin/aid-escrow/internal/domain/escrow"
	"github.com/oshokin/aid-escrow/internal/logger"
)

// Sink receives notifications.
type Sink interface {
	Emit(ctx context.Context, event domain.Event)
}

// Log writes every event to the logger carried by the context.
type Log struct{}

// Emit logs the event with its fields.
func (Log) Emit(ctx context.Context, event domain.Event) {
	logger.InfoKV(ctx, "Escrow event",
		"event_id", event.ID,
		"type", event.Type,
		"package_id", event.PackageID,
		"actor", event.Actor,
		"asset", event.Asset,
		"amount", event.Amount.String(),
		"ledger_time", event.Timestamp,
	)
}

// Recorder keeps every event in memory.
type Recorder struct {
	// events holds the recorded events in emission order.
	events []domain.Event
	// mu protects events.
	mu sync.Mutex
}

// Emit records the event.
func (r *Recorder) Emit(_ context.Context, event domain.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, event)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []domain.Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	return slices.Clone(r.events)
}

// Types returns the recorded event types in order.
func (r *Recorder) Types() []domain.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()

	types := make([]domain.EventType, 0, len(r.events))
	for _, event := range r.events {
		types = append(types, event.Type)
	}

	return types
}

// Multi fans every event out to all sinks in order.
type Multi []Sink

// Emit forwards the event to each sink.
func (m Multi) Emit(ctx context.Context, event domain.Event) {
	for _, sink := range m {
		sink.Emit(ctx, event)
	}
}

// Buffer holds events until Flush. It is not safe for concurrent use.
type Buffer struct {
	// pending holds buffered events in emission order.
	pending []domain.Event
}

// Emit buffers the event.
func (b *Buffer) Emit(_ context.Context, event domain.Event) {
	b.pending = append(b.pending, event)
}

// Flush delivers buffered events to sink and empties the buffer.
func (b *Buffer) Flush(ctx context.Context, sink Sink) {
	for _, event := range b.pending {
		sink.Emit(ctx, event)
	}

	b.pending = nil
}

// Discard drops buffered events.
func (b *Buffer) Discard() {
	b.pending = nil
}
