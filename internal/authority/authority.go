// Package authority decides whether an actor may perform an action on a
// resource. Can* functions are advisory predicates; Assert* functions are the
// enforcement path and the only ones the command layer may call for gating.
package authority

import (
	"github.com/spec-kit/itops-service/internal/domain"
	apperrors "github.com/spec-kit/itops-service/pkg/util"
)

// Action names reported in permission errors.
const (
	ActionCreate     = "create"
	ActionRead       = "read"
	ActionUpdate     = "update"
	ActionDelete     = "delete"
	ActionAssign     = "assign"
	ActionUnassign   = "unassign"
	ActionResolve    = "resolve"
	ActionClose      = "close"
	ActionReopen     = "reopen"
	ActionChangeRole = "change_role"
)

// Module is the authority for one resource family.
type Module interface {
	Kind() domain.ResourceKind
	CanCreate(actor domain.Actor) bool
	CanRead(actor domain.Actor, res domain.Resource) bool
	CanUpdate(actor domain.Actor, res domain.Resource) bool
	CanDelete(actor domain.Actor, res domain.Resource) bool
	CanAssign(actor domain.Actor, res domain.Resource, assigneeID string) bool
	CanUnassign(actor domain.Actor, res domain.Resource) bool
}

var (
	Tickets  = TicketAuthority{}
	Assets   = AssetAuthority{}
	Projects = ProjectAuthority{}
	Users    = UserAuthority{}
)

// For returns the module for a resource kind, or nil for unknown kinds.
func For(kind domain.ResourceKind) Module {
	switch kind {
	case domain.KindTicket:
		return Tickets
	case domain.KindAsset:
		return Assets
	case domain.KindProject:
		return Projects
	case domain.KindUser:
		return Users
	}
	return nil
}

// AssertCreate fails with PermissionDenied unless the actor may create in the family.
func AssertCreate(m Module, actor domain.Actor) error {
	return check(m.CanCreate(actor), ActionCreate, actor, m.Kind(), "")
}

// AssertRead fails with PermissionDenied unless the actor may read the resource.
func AssertRead(m Module, actor domain.Actor, res domain.Resource) error {
	return check(m.CanRead(actor, res), ActionRead, actor, res.Kind, res.ID)
}

// AssertUpdate fails with PermissionDenied unless the actor may update the resource.
func AssertUpdate(m Module, actor domain.Actor, res domain.Resource) error {
	return check(m.CanUpdate(actor, res), ActionUpdate, actor, res.Kind, res.ID)
}

// AssertDelete fails with PermissionDenied unless the actor may delete the resource.
func AssertDelete(m Module, actor domain.Actor, res domain.Resource) error {
	return check(m.CanDelete(actor, res), ActionDelete, actor, res.Kind, res.ID)
}

// AssertAssign fails with PermissionDenied unless the actor may assign the resource to assigneeID.
func AssertAssign(m Module, actor domain.Actor, res domain.Resource, assigneeID string) error {
	return check(m.CanAssign(actor, res, assigneeID), ActionAssign, actor, res.Kind, res.ID)
}

// AssertUnassign fails with PermissionDenied unless the actor may unassign the resource.
func AssertUnassign(m Module, actor domain.Actor, res domain.Resource) error {
	return check(m.CanUnassign(actor, res), ActionUnassign, actor, res.Kind, res.ID)
}

func check(allowed bool, action string, actor domain.Actor, kind domain.ResourceKind, resourceID string) error {
	if allowed {
		return nil
	}
	return apperrors.NewPermissionDenied(action, actor, kind, resourceID)
}

// canModify is the update rule shared by every family: admin override,
// IT_ADMIN over lower-ranked owners, TECHNICIAN by assignment only.
func canModify(actor domain.Actor, res domain.Resource) bool {
	switch {
	case domain.IsAdminOverride(actor.Role):
		return true
	case actor.Role == domain.RoleITAdmin:
		return domain.HasStrictlyHigher(domain.RoleITAdmin, res.Owner.Role)
	case actor.Role == domain.RoleTechnician:
		return res.AssignedTo(actor.ID)
	default:
		return false
	}
}

// canAssign lets admin ranks assign freely and technicians only take
// unassigned work for themselves.
func canAssign(actor domain.Actor, res domain.Resource, assigneeID string) bool {
	if domain.IsAdminRank(actor.Role) {
		return true
	}
	if actor.Role == domain.RoleTechnician {
		return assigneeID == actor.ID && res.Unassigned()
	}
	return false
}

func canUnassign(actor domain.Actor, res domain.Resource) bool {
	if domain.IsAdminRank(actor.Role) {
		return true
	}
	if actor.Role == domain.RoleTechnician {
		return res.AssignedTo(actor.ID)
	}
	return false
}

func aboveViewer(actor domain.Actor) bool {
	return domain.HasStrictlyHigher(actor.Role, domain.RoleViewer)
}
