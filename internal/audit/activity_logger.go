package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/spec-kit/itops-service/internal/domain"
	"github.com/spec-kit/itops-service/internal/events"
	"github.com/spec-kit/itops-service/internal/repository"
)

// ActivityLoggerName identifies the handler in logs and metrics.
const ActivityLoggerName = "activity_logger"

// ActivityLogger writes one activity entry per delivered event.
type ActivityLogger struct {
	repo repository.ActivityLogRepository
	now  func() time.Time
}

func NewActivityLogger(repo repository.ActivityLogRepository) *ActivityLogger {
	return &ActivityLogger{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

// Register subscribes the logger to every event type.
func (l *ActivityLogger) Register(d *events.Dispatcher) {
	d.SubscribeAll(ActivityLoggerName, l.Handle)
}

func (l *ActivityLogger) Handle(ctx context.Context, evt events.Event) error {
	entry := &domain.ActivityLogEntry{
		ID:                entryID(evt, ActivityLoggerName),
		EventID:           evt.ID.String(),
		ActorID:           evt.ActorID,
		Action:            string(evt.Type),
		EntityKind:        evt.EntityKind,
		EntityID:          evt.EntityID,
		EntityDisplayName: displayName(evt),
		Changes:           changeSet(evt),
		CreatedAt:         l.now(),
	}
	if err := l.repo.Append(ctx, entry); err != nil {
		return fmt.Errorf("activity logger: %w", err)
	}
	return nil
}

func displayName(evt events.Event) string {
	for _, key := range []string{events.KeyTitle, events.KeyName, events.KeyUsername} {
		if v := evt.PayloadString(key); v != "" {
			return v
		}
	}
	return string(evt.EntityKind) + " " + evt.EntityID
}

// changeSet prefers the explicit payload diff and synthesizes one for
// status, assignment and role events.
func changeSet(evt events.Event) map[string]domain.FieldChange {
	out := map[string]domain.FieldChange{}
	for field, c := range evt.Changes() {
		out[field] = domain.FieldChange{Before: FormatValue(c.Before), After: FormatValue(c.After)}
	}
	if len(out) > 0 {
		return out
	}

	switch {
	case evt.Type.IsStatusChange():
		out["status"] = domain.FieldChange{
			Before: FormatValue(evt.Payload[events.KeyFromStatus]),
			After:  FormatValue(evt.Payload[events.KeyToStatus]),
		}
	case evt.Type == events.ResourceAssigned:
		out["assignee"] = domain.FieldChange{
			Before: FormatValue(evt.Payload[events.KeyPreviousAssigneeID]),
			After:  FormatValue(evt.Payload[events.KeyAssigneeID]),
		}
	case evt.Type == events.ResourceUnassigned:
		out["assignee"] = domain.FieldChange{
			Before: FormatValue(evt.Payload[events.KeyPreviousAssigneeID]),
			After:  emptyValue,
		}
	case evt.Type == events.UserRoleChanged:
		out["role"] = domain.FieldChange{
			Before: FormatValue(evt.Payload[events.KeyFromRole]),
			After:  FormatValue(evt.Payload[events.KeyToRole]),
		}
	}
	return out
}
