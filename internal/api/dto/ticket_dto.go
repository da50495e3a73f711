package dto

import (
	"time"

	"github.com/spec-kit/itops-service/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Priority    domain.TicketPriority `json:"priority"`
	AssigneeID  *string               `json:"assignee_id"`
}

// UpdateTicketRequest payload. Omitted fields are left unchanged.
type UpdateTicketRequest struct {
	Title          *string                `json:"title"`
	Description    *string                `json:"description"`
	Priority       *domain.TicketPriority `json:"priority"`
	Status         *domain.TicketStatus   `json:"status"`
	ResolutionNote *string                `json:"resolution_note"`
}

// ResolveTicketRequest payload.
type ResolveTicketRequest struct {
	ResolutionNote string `json:"resolution_note"`
}

// TicketResponse representation.
type TicketResponse struct {
	ID             string                `json:"id"`
	OwnerID        string                `json:"owner_id"`
	AssigneeID     *string               `json:"assignee_id"`
	Title          string                `json:"title"`
	Description    string                `json:"description"`
	Status         domain.TicketStatus   `json:"status"`
	Priority       domain.TicketPriority `json:"priority"`
	ResolutionNote string                `json:"resolution_note,omitempty"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
	ClosedAt       *time.Time            `json:"closed_at"`
}
