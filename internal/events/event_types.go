package events

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/itops-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	TicketCreated       EventType = "ticket.created"
	TicketUpdated       EventType = "ticket.updated"
	TicketDeleted       EventType = "ticket.deleted"
	TicketStatusChanged EventType = "ticket.status_changed"
	TicketResolved      EventType = "ticket.resolved"
	TicketReopened      EventType = "ticket.reopened"
	TicketClosed        EventType = "ticket.closed"

	AssetCreated       EventType = "asset.created"
	AssetUpdated       EventType = "asset.updated"
	AssetDeleted       EventType = "asset.deleted"
	AssetStatusChanged EventType = "asset.status_changed"

	ProjectCreated       EventType = "project.created"
	ProjectUpdated       EventType = "project.updated"
	ProjectDeleted       EventType = "project.deleted"
	ProjectStatusChanged EventType = "project.status_changed"

	UserCreated       EventType = "user.created"
	UserUpdated       EventType = "user.updated"
	UserDeleted       EventType = "user.deleted"
	UserStatusChanged EventType = "user.status_changed"
	UserRoleChanged   EventType = "user.role_changed"

	ResourceAssigned   EventType = "resource.assigned"
	ResourceUnassigned EventType = "resource.unassigned"
)

const statusChangedSuffix = ".status_changed"

// Lifecycle verbs shared by every family.
const (
	VerbCreated       = "created"
	VerbUpdated       = "updated"
	VerbDeleted       = "deleted"
	VerbStatusChanged = "status_changed"
)

// TypeFor builds the per-family event type, e.g. TypeFor(KindAsset, VerbCreated) == "asset.created".
func TypeFor(kind domain.ResourceKind, verb string) EventType {
	return EventType(string(kind) + "." + verb)
}

// IsStatusChange reports whether the type is a "<kind>.status_changed" event.
func (t EventType) IsStatusChange() bool {
	return strings.HasSuffix(string(t), statusChangedSuffix)
}

// Payload keys shared by emitters and handlers.
const (
	KeyChanges            = "changes"
	KeyTitle              = "title"
	KeyName               = "name"
	KeyUsername           = "username"
	KeyActorID            = "actor_id"
	KeyFromStatus         = "from_status"
	KeyToStatus           = "to_status"
	KeyResourceType       = "resource_type"
	KeyResourceID         = "resource_id"
	KeyAssigneeID         = "assignee_id"
	KeyPreviousAssigneeID = "previous_assignee_id"
	KeyFromRole           = "from_role"
	KeyToRole             = "to_role"
	KeyResolutionNote     = "resolution_note"
	KeyOwnerID            = "owner_id"
)

// Change is one field's raw before/after values.
type Change struct {
	Before any `json:"before"`
	After  any `json:"after"`
}

// Changes maps field names to their change.
type Changes map[string]Change

// Event is an immutable record of a committed mutation. Seq orders events
// within the transaction that emitted them.
type Event struct {
	ID         uuid.UUID           `json:"id"`
	Type       EventType           `json:"type"`
	Seq        uint64              `json:"seq"`
	ActorID    string              `json:"actor_id"`
	EntityKind domain.ResourceKind `json:"entity_kind"`
	EntityID   string              `json:"entity_id"`
	Payload    map[string]any      `json:"payload"`
	OccurredAt time.Time           `json:"occurred_at"`
}

// PayloadString returns the payload value for key when it is a string.
func (e Event) PayloadString(key string) string {
	switch v := e.Payload[key].(type) {
	case string:
		return v
	case *string:
		if v != nil {
			return *v
		}
	case domain.Role:
		return string(v)
	}
	return ""
}

// Changes returns the change set carried in the payload, if any.
func (e Event) Changes() Changes {
	switch v := e.Payload[KeyChanges].(type) {
	case Changes:
		return v
	case map[string]Change:
		return v
	}
	return nil
}
