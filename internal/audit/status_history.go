package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/spec-kit/itops-service/internal/domain"
	"github.com/spec-kit/itops-service/internal/events"
	"github.com/spec-kit/itops-service/internal/repository"
)

// StatusHistoryWriterName identifies the handler in logs and metrics.
const StatusHistoryWriterName = "status_history_writer"

// StatusHistoryWriter records one entry per "<kind>.status_changed" event.
type StatusHistoryWriter struct {
	repo repository.StatusHistoryRepository
	now  func() time.Time
}

func NewStatusHistoryWriter(repo repository.StatusHistoryRepository) *StatusHistoryWriter {
	return &StatusHistoryWriter{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

// Register subscribes the writer to the status change event of every family.
func (w *StatusHistoryWriter) Register(d *events.Dispatcher) {
	for _, kind := range []domain.ResourceKind{domain.KindTicket, domain.KindAsset, domain.KindProject, domain.KindUser} {
		d.Subscribe(events.TypeFor(kind, events.VerbStatusChanged), StatusHistoryWriterName, w.Handle)
	}
}

func (w *StatusHistoryWriter) Handle(ctx context.Context, evt events.Event) error {
	if !evt.Type.IsStatusChange() {
		return nil
	}
	entry := &domain.StatusHistoryEntry{
		ID:         entryID(evt, StatusHistoryWriterName),
		EventID:    evt.ID.String(),
		EntityKind: evt.EntityKind,
		EntityID:   evt.EntityID,
		FromStatus: evt.PayloadString(events.KeyFromStatus),
		ToStatus:   evt.PayloadString(events.KeyToStatus),
		ActorID:    evt.ActorID,
		CreatedAt:  w.now(),
	}
	if err := w.repo.Append(ctx, entry); err != nil {
		return fmt.Errorf("status history: %w", err)
	}
	return nil
}
