package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/itops-service/internal/domain"
)

// CommitHook is implemented by storage transactions. Hooks registered with
// AfterCommit run only after the underlying commit succeeded.
type CommitHook interface {
	AfterCommit(fn func(ctx context.Context))
}

// Buffer collects the events of one transaction in emission order.
// It is owned by that transaction and is not safe for concurrent use.
type Buffer struct {
	actorID   string
	now       func() time.Time
	seq       uint64
	events    []Event
	discarded bool
}

// NewBuffer creates an empty buffer for mutations performed by actorID.
func NewBuffer(actorID string) *Buffer {
	return &Buffer{actorID: actorID, now: time.Now}
}

// Emit stamps the next sequence number and appends the event.
func (b *Buffer) Emit(eventType EventType, kind domain.ResourceKind, entityID string, payload map[string]any) Event {
	if payload == nil {
		payload = map[string]any{}
	}
	b.seq++
	evt := Event{
		ID:         uuid.New(),
		Type:       eventType,
		Seq:        b.seq,
		ActorID:    b.actorID,
		EntityKind: kind,
		EntityID:   entityID,
		Payload:    payload,
		OccurredAt: b.now().UTC(),
	}
	if !b.discarded {
		b.events = append(b.events, evt)
	}
	return evt
}

// Events returns a copy of the buffered events.
func (b *Buffer) Events() []Event {
	out := make([]Event, len(b.events))
	copy(out, b.events)
	return out
}

// Len returns the number of buffered events.
func (b *Buffer) Len() int { return len(b.events) }

// Discard drops every buffered event. Later emits are ignored.
func (b *Buffer) Discard() {
	b.events = nil
	b.discarded = true
}

// FlushOnCommit delivers the buffer through d once tx commits. Events emitted
// between registration and commit are included.
func (b *Buffer) FlushOnCommit(tx CommitHook, d *Dispatcher) {
	tx.AfterCommit(func(ctx context.Context) {
		if b.discarded {
			return
		}
		d.Deliver(ctx, b.Events())
	})
}
