package repository

import (
	"context"

	"github.com/spec-kit/itops-service/internal/domain"
)

type statusHistoryRepository struct {
	q Querier
}

// NewStatusHistoryRepository builds repository.
func NewStatusHistoryRepository(q Querier) StatusHistoryRepository {
	return &statusHistoryRepository{q: q}
}

func (r *statusHistoryRepository) Append(ctx context.Context, entry *domain.StatusHistoryEntry) error {
	const query = `
        INSERT INTO status_history (id, event_id, entity_kind, entity_id, from_status, to_status, actor_id, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        ON CONFLICT (id) DO NOTHING`
	_, err := r.q.Exec(ctx, query,
		entry.ID,
		entry.EventID,
		entry.EntityKind,
		entry.EntityID,
		entry.FromStatus,
		entry.ToStatus,
		entry.ActorID,
		entry.CreatedAt,
	)
	return translate("statusHistory.Append", err)
}

func (r *statusHistoryRepository) ListByEntity(ctx context.Context, kind domain.ResourceKind, entityID string) ([]domain.StatusHistoryEntry, error) {
	const query = `
        SELECT id, event_id, entity_kind, entity_id, from_status, to_status, actor_id, created_at
        FROM status_history WHERE entity_kind=$1 AND entity_id=$2 ORDER BY position ASC`
	rows, err := r.q.Query(ctx, query, kind, entityID)
	if err != nil {
		return nil, translate("statusHistory.ListByEntity", err)
	}
	defer rows.Close()

	var result []domain.StatusHistoryEntry
	for rows.Next() {
		var entry domain.StatusHistoryEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.EventID,
			&entry.EntityKind,
			&entry.EntityID,
			&entry.FromStatus,
			&entry.ToStatus,
			&entry.ActorID,
			&entry.CreatedAt,
		); err != nil {
			return nil, translate("statusHistory.ListByEntity", err)
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
