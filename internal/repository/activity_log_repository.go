package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/spec-kit/itops-service/internal/domain"
)

type activityLogRepository struct {
	q Querier
}

// NewActivityLogRepository builds an append-only activity log.
func NewActivityLogRepository(q Querier) ActivityLogRepository {
	return &activityLogRepository{q: q}
}

func (r *activityLogRepository) Append(ctx context.Context, entry *domain.ActivityLogEntry) error {
	const query = `
        INSERT INTO activity_log (id, event_id, actor_id, action, entity_kind, entity_id, entity_display_name, changes, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        ON CONFLICT (id) DO NOTHING`
	changes := entry.Changes
	if changes == nil {
		changes = map[string]domain.FieldChange{}
	}
	_, err := r.q.Exec(ctx, query,
		entry.ID,
		entry.EventID,
		entry.ActorID,
		entry.Action,
		entry.EntityKind,
		entry.EntityID,
		entry.EntityDisplayName,
		changes,
		entry.CreatedAt,
	)
	return translate("activity.Append", err)
}

func (r *activityLogRepository) List(ctx context.Context, filter ActivityFilter) ([]domain.ActivityLogEntry, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if filter.EntityKind != "" {
		args = append(args, filter.EntityKind)
		clauses = append(clauses, fmt.Sprintf("entity_kind=$%d", len(args)))
	}
	if filter.EntityID != "" {
		args = append(args, filter.EntityID)
		clauses = append(clauses, fmt.Sprintf("entity_id=$%d", len(args)))
	}
	if filter.ActorID != "" {
		args = append(args, filter.ActorID)
		clauses = append(clauses, fmt.Sprintf("actor_id=$%d", len(args)))
	}
	limit, offset := Normalize(filter.Limit, filter.Offset)
	query := fmt.Sprintf(`
        SELECT id, event_id, actor_id, action, entity_kind, entity_id, entity_display_name, changes, created_at
        FROM activity_log WHERE %s ORDER BY position ASC LIMIT %d OFFSET %d`,
		strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, translate("activity.List", err)
	}
	defer rows.Close()

	var result []domain.ActivityLogEntry
	for rows.Next() {
		var entry domain.ActivityLogEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.EventID,
			&entry.ActorID,
			&entry.Action,
			&entry.EntityKind,
			&entry.EntityID,
			&entry.EntityDisplayName,
			&entry.Changes,
			&entry.CreatedAt,
		); err != nil {
			return nil, translate("activity.List", err)
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
