package dto

import (
	"time"

	"github.com/spec-kit/itops-service/internal/domain"
)

// ActivityResponse is one audit trail line.
type ActivityResponse struct {
	ID                string                        `json:"id"`
	EventID           string                        `json:"event_id"`
	ActorID           string                        `json:"actor_id"`
	Action            string                        `json:"action"`
	EntityKind        domain.ResourceKind           `json:"entity_kind"`
	EntityID          string                        `json:"entity_id"`
	EntityDisplayName string                        `json:"entity_display_name"`
	Changes           map[string]domain.FieldChange `json:"changes"`
	CreatedAt         time.Time                     `json:"created_at"`
}

// StatusHistoryResponse is one recorded transition.
type StatusHistoryResponse struct {
	ID         string    `json:"id"`
	FromStatus string    `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	ActorID    string    `json:"actor_id"`
	CreatedAt  time.Time `json:"created_at"`
}
