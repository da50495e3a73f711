// Package notify tells the people affected by a committed change about it.
// Every notification is logged; when a webhook URL is configured it is also
// POSTed as JSON.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/itops-service/internal/config"
	"github.com/spec-kit/itops-service/internal/domain"
	"github.com/spec-kit/itops-service/internal/events"
)

// NotifierName identifies the handler in logs and metrics.
const NotifierName = "notifier"

// Notification is the webhook body.
type Notification struct {
	EventID    string              `json:"event_id"`
	EventType  events.EventType    `json:"event_type"`
	EntityKind domain.ResourceKind `json:"entity_kind"`
	EntityID   string              `json:"entity_id"`
	ActorID    string              `json:"actor_id"`
	Recipients []string            `json:"recipients"`
	Summary    string              `json:"summary"`
	OccurredAt time.Time           `json:"occurred_at"`
}

// Notifier handles assignment, status and role events.
type Notifier struct {
	logger     *zap.Logger
	webhookURL string
	timeout    time.Duration
}

func NewNotifier(cfg config.NotifyConfig, logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{logger: logger, webhookURL: cfg.WebhookURL, timeout: cfg.Timeout()}
}

// Register subscribes the notifier to the events people care about.
func (n *Notifier) Register(d *events.Dispatcher) {
	for _, t := range []events.EventType{
		events.ResourceAssigned,
		events.ResourceUnassigned,
		events.TicketStatusChanged,
		events.UserRoleChanged,
	} {
		d.Subscribe(t, NotifierName, n.Handle)
	}
}

func (n *Notifier) Handle(ctx context.Context, evt events.Event) error {
	note, ok := Build(evt)
	if !ok {
		return nil
	}
	n.logger.Info("notification",
		zap.String("event_id", note.EventID),
		zap.String("event_type", string(note.EventType)),
		zap.Strings("recipients", note.Recipients),
		zap.String("summary", note.Summary),
	)
	if n.webhookURL == "" {
		return nil
	}
	return n.post(ctx, note)
}

func (n *Notifier) post(ctx context.Context, note Notification) error {
	timeout := n.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = left
		}
	}
	agent := fiber.Post(n.webhookURL).JSON(note).Timeout(timeout)
	if err := agent.Parse(); err != nil {
		fiber.ReleaseAgent(agent)
		return fmt.Errorf("notify: parse webhook url: %w", err)
	}
	code, _, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("notify: post webhook: %w", errs[0])
	}
	if code < 200 || code >= 300 {
		return fmt.Errorf("notify: webhook responded %d", code)
	}
	return nil
}

// Build derives the recipients and a one-line summary. It reports false for
// events nobody needs to hear about, such as an actor assigning themself.
func Build(evt events.Event) (Notification, bool) {
	note := Notification{
		EventID:    evt.ID.String(),
		EventType:  evt.Type,
		EntityKind: evt.EntityKind,
		EntityID:   evt.EntityID,
		ActorID:    evt.ActorID,
		OccurredAt: evt.OccurredAt,
	}
	label := display(evt)

	switch evt.Type {
	case events.ResourceAssigned:
		note.Recipients = others(evt.ActorID,
			evt.PayloadString(events.KeyAssigneeID),
			evt.PayloadString(events.KeyPreviousAssigneeID))
		note.Summary = fmt.Sprintf("%s assigned to %s", label, evt.PayloadString(events.KeyAssigneeID))
	case events.ResourceUnassigned:
		note.Recipients = others(evt.ActorID, evt.PayloadString(events.KeyPreviousAssigneeID))
		note.Summary = fmt.Sprintf("%s unassigned", label)
	case events.TicketStatusChanged:
		note.Recipients = others(evt.ActorID, evt.PayloadString(events.KeyOwnerID), evt.PayloadString(events.KeyAssigneeID))
		note.Summary = fmt.Sprintf("%s moved from %s to %s", label,
			evt.PayloadString(events.KeyFromStatus), evt.PayloadString(events.KeyToStatus))
	case events.UserRoleChanged:
		note.Recipients = others(evt.ActorID, evt.EntityID)
		note.Summary = fmt.Sprintf("role changed from %s to %s",
			evt.PayloadString(events.KeyFromRole), evt.PayloadString(events.KeyToRole))
	default:
		return Notification{}, false
	}
	return note, len(note.Recipients) > 0
}

func display(evt events.Event) string {
	for _, key := range []string{events.KeyTitle, events.KeyName, events.KeyUsername} {
		if v := evt.PayloadString(key); v != "" {
			return fmt.Sprintf("%s %q", evt.EntityKind, v)
		}
	}
	return fmt.Sprintf("%s %s", evt.EntityKind, evt.EntityID)
}

// others returns the distinct non-empty ids, excluding the actor.
func others(actorID string, ids ...string) []string {
	seen := map[string]bool{actorID: true, "": true}
	var out []string
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
