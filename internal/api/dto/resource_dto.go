package dto

import (
	"time"

	"github.com/spec-kit/itops-service/internal/domain"
)

// AssignRequest payload for assign endpoints.
type AssignRequest struct {
	AssigneeID string `json:"assignee_id"`
}

// CreateAssetRequest payload.
type CreateAssetRequest struct {
	Name         string             `json:"name"`
	AssetTag     string             `json:"asset_tag"`
	SerialNumber string             `json:"serial_number"`
	Location     string             `json:"location"`
	Status       domain.AssetStatus `json:"status"`
	AssigneeID   *string            `json:"assignee_id"`
}

// UpdateAssetRequest payload.
type UpdateAssetRequest struct {
	Name         *string             `json:"name"`
	SerialNumber *string             `json:"serial_number"`
	Location     *string             `json:"location"`
	Status       *domain.AssetStatus `json:"status"`
}

// AssetResponse representation.
type AssetResponse struct {
	ID           string             `json:"id"`
	OwnerID      string             `json:"owner_id"`
	AssigneeID   *string            `json:"assignee_id"`
	Name         string             `json:"name"`
	AssetTag     string             `json:"asset_tag"`
	SerialNumber string             `json:"serial_number"`
	Location     string             `json:"location"`
	Status       domain.AssetStatus `json:"status"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// CreateProjectRequest payload.
type CreateProjectRequest struct {
	Name        string                `json:"name"`
	Description string                `json:"description"`
	Priority    domain.TicketPriority `json:"priority"`
	Status      domain.ProjectStatus  `json:"status"`
	AssigneeID  *string               `json:"assignee_id"`
}

// UpdateProjectRequest payload.
type UpdateProjectRequest struct {
	Name        *string                `json:"name"`
	Description *string                `json:"description"`
	Priority    *domain.TicketPriority `json:"priority"`
	Status      *domain.ProjectStatus  `json:"status"`
}

// ProjectResponse representation.
type ProjectResponse struct {
	ID          string                `json:"id"`
	OwnerID     string                `json:"owner_id"`
	AssigneeID  *string               `json:"assignee_id"`
	Name        string                `json:"name"`
	Description string                `json:"description"`
	Priority    domain.TicketPriority `json:"priority"`
	Status      domain.ProjectStatus  `json:"status"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}
