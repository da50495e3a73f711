package memory

import (
	"context"

	"github.com/spec-kit/itops-service/internal/domain"
	"github.com/spec-kit/itops-service/internal/repository"
)

type activityLog struct{ s *Store }

func (r activityLog) Append(_ context.Context, entry *domain.ActivityLogEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failAudit != nil {
		return r.s.failAudit
	}
	if _, dup := r.s.activityIDs[entry.ID]; dup {
		return nil
	}
	e := *entry
	if e.CreatedAt.IsZero() {
		e.CreatedAt = r.s.now()
	}
	r.s.activityIDs[e.ID] = struct{}{}
	r.s.activity = append(r.s.activity, e)
	return nil
}

func (r activityLog) List(_ context.Context, filter repository.ActivityFilter) ([]domain.ActivityLogEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	limit, offset := repository.Normalize(filter.Limit, filter.Offset)
	out := []domain.ActivityLogEntry{}
	skipped := 0
	for _, e := range r.s.activity {
		if filter.EntityKind != "" && e.EntityKind != filter.EntityKind {
			continue
		}
		if filter.EntityID != "" && e.EntityID != filter.EntityID {
			continue
		}
		if filter.ActorID != "" && e.ActorID != filter.ActorID {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		out = append(out, e)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

type statusHistory struct{ s *Store }

func (r statusHistory) Append(_ context.Context, entry *domain.StatusHistoryEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failAudit != nil {
		return r.s.failAudit
	}
	if _, dup := r.s.historyIDs[entry.ID]; dup {
		return nil
	}
	e := *entry
	if e.CreatedAt.IsZero() {
		e.CreatedAt = r.s.now()
	}
	r.s.historyIDs[e.ID] = struct{}{}
	r.s.history = append(r.s.history, e)
	return nil
}

func (r statusHistory) ListByEntity(_ context.Context, kind domain.ResourceKind, entityID string) ([]domain.StatusHistoryEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []domain.StatusHistoryEntry{}
	for _, e := range r.s.history {
		if e.EntityKind == kind && e.EntityID == entityID {
			out = append(out, e)
		}
	}
	return out, nil
}
