package domain

import "time"

// FieldChange is a before/after pair rendered for humans.
type FieldChange struct {
	Before string `json:"before"`
	After  string `json:"after"`
}

// ActivityLogEntry is an immutable audit trail record.
type ActivityLogEntry struct {
	ID                string
	EventID           string
	ActorID           string
	Action            string
	EntityKind        ResourceKind
	EntityID          string
	EntityDisplayName string
	Changes           map[string]FieldChange
	CreatedAt         time.Time
}

// StatusHistoryEntry records one status transition.
type StatusHistoryEntry struct {
	ID         string
	EventID    string
	EntityKind ResourceKind
	EntityID   string
	FromStatus string
	ToStatus   string
	ActorID    string
	CreatedAt  time.Time
}
