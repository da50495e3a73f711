package domain

import "time"

// ProjectStatus enumerates project lifecycle states.
type ProjectStatus string

const (
	ProjectStatusPlanning  ProjectStatus = "PLANNING"
	ProjectStatusActive    ProjectStatus = "ACTIVE"
	ProjectStatusOnHold    ProjectStatus = "ON_HOLD"
	ProjectStatusCompleted ProjectStatus = "COMPLETED"
	ProjectStatusCancelled ProjectStatus = "CANCELLED"
)

// Valid reports whether the status is known.
func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectStatusPlanning, ProjectStatusActive, ProjectStatusOnHold, ProjectStatusCompleted, ProjectStatusCancelled:
		return true
	}
	return false
}

// Project groups work under a lead.
type Project struct {
	ID          string
	OwnerID     string
	AssigneeID  *string
	Name        string
	Description string
	Priority    TicketPriority
	Status      ProjectStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Resource returns the authorization view given the owner's current role.
func (p *Project) Resource(ownerRole Role) Resource {
	return Resource{
		Kind:       KindProject,
		ID:         p.ID,
		Owner:      Actor{ID: p.OwnerID, Role: ownerRole},
		AssigneeID: p.AssigneeID,
		Status:     string(p.Status),
	}
}
