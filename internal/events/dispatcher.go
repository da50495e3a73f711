package events

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// Handler consumes a delivered event.
type Handler func(ctx context.Context, event Event) error

// Recorder counts delivery outcomes.
type Recorder interface {
	RecordEventDelivered(eventType string)
	RecordHandlerFailure(handler, eventType string)
}

// EventHandlerError describes a handler failure. It is logged and counted but
// never returned to the code that committed the mutation.
type EventHandlerError struct {
	Handler   string
	EventID   string
	EventType EventType
	Err       error
}

func (e *EventHandlerError) Error() string {
	return fmt.Sprintf("event handler %s failed on %s (%s): %v", e.Handler, e.EventType, e.EventID, e.Err)
}

func (e *EventHandlerError) Unwrap() error { return e.Err }

type subscription struct {
	name    string
	handler Handler
}

// Dispatcher delivers committed events to subscribed handlers synchronously.
type Dispatcher struct {
	mu        sync.RWMutex
	listeners map[EventType][]subscription
	wildcard  []subscription
	logger    *zap.Logger
	recorder  Recorder
}

// NewDispatcher creates a dispatcher. recorder may be nil.
func NewDispatcher(logger *zap.Logger, recorder Recorder) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		listeners: make(map[EventType][]subscription),
		logger:    logger,
		recorder:  recorder,
	}
}

// Subscribe registers a named handler for one event type.
func (d *Dispatcher) Subscribe(eventType EventType, name string, handler Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners[eventType] = append(d.listeners[eventType], subscription{name: name, handler: handler})
}

// SubscribeAll registers a named handler for every event type.
func (d *Dispatcher) SubscribeAll(name string, handler Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.wildcard = append(d.wildcard, subscription{name: name, handler: handler})
}

// Deliver hands events to handlers in Seq order. Failures are isolated per
// handler invocation and never abort the remaining deliveries.
func (d *Dispatcher) Deliver(ctx context.Context, evts []Event) {
	if len(evts) == 0 {
		return
	}
	// The mutation is already durable; handlers must not be cut short by the
	// caller's cancellation.
	ctx = context.WithoutCancel(ctx)

	ordered := make([]Event, len(evts))
	copy(ordered, evts)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Seq < ordered[j].Seq })

	for _, evt := range ordered {
		for _, sub := range d.handlersFor(evt.Type) {
			if err := d.invoke(ctx, sub, evt); err != nil {
				d.logger.Error("event handler failed",
					zap.String("handler", err.Handler),
					zap.String("event_id", err.EventID),
					zap.String("event_type", string(err.EventType)),
					zap.Error(err.Err),
				)
				if d.recorder != nil {
					d.recorder.RecordHandlerFailure(err.Handler, string(err.EventType))
				}
			}
		}
		if d.recorder != nil {
			d.recorder.RecordEventDelivered(string(evt.Type))
		}
	}
}

func (d *Dispatcher) handlersFor(eventType EventType) []subscription {
	d.mu.RLock()
	defer d.mu.RUnlock()
	subs := make([]subscription, 0, len(d.listeners[eventType])+len(d.wildcard))
	subs = append(subs, d.listeners[eventType]...)
	subs = append(subs, d.wildcard...)
	return subs
}

func (d *Dispatcher) invoke(ctx context.Context, sub subscription, evt Event) (herr *EventHandlerError) {
	defer func() {
		if r := recover(); r != nil {
			herr = &EventHandlerError{
				Handler:   sub.name,
				EventID:   evt.ID.String(),
				EventType: evt.Type,
				Err:       fmt.Errorf("panic: %v", r),
			}
		}
	}()
	if err := sub.handler(ctx, evt); err != nil {
		return &EventHandlerError{Handler: sub.name, EventID: evt.ID.String(), EventType: evt.Type, Err: err}
	}
	return nil
}
