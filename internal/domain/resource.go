package domain

// ResourceKind identifies a resource family.
type ResourceKind string

const (
	KindTicket  ResourceKind = "ticket"
	KindAsset   ResourceKind = "asset"
	KindProject ResourceKind = "project"
	KindUser    ResourceKind = "user"
)

// Valid reports whether the kind is one of the managed families.
func (k ResourceKind) Valid() bool {
	switch k {
	case KindTicket, KindAsset, KindProject, KindUser:
		return true
	}
	return false
}

// Actor is the identity attempting an operation.
type Actor struct {
	ID   string
	Role Role
}

// Resource is the authorization view of any managed entity.
// Owner carries the owner's current role; AssigneeID is who currently works it.
type Resource struct {
	Kind       ResourceKind
	ID         string
	Owner      Actor
	AssigneeID *string
	Status     string
}

// AssignedTo reports whether the resource is assigned to the given user.
func (r Resource) AssignedTo(userID string) bool {
	return r.AssigneeID != nil && *r.AssigneeID == userID
}

// Unassigned reports whether nobody is assigned.
func (r Resource) Unassigned() bool {
	return r.AssigneeID == nil
}
