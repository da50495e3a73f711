package authority

import (
	"github.com/spec-kit/itops-service/internal/domain"
)

// UserAuthority holds account management rules. A user resource is owned by itself.
type UserAuthority struct{}

func (UserAuthority) Kind() domain.ResourceKind { return domain.KindUser }

// CanCreate is limited to admin ranks.
func (UserAuthority) CanCreate(actor domain.Actor) bool {
	return domain.IsAdminRank(actor.Role)
}

func (UserAuthority) CanRead(domain.Actor, domain.Resource) bool { return true }

// CanUpdate covers profile fields only; role changes go through CanChangeRole.
func (UserAuthority) CanUpdate(actor domain.Actor, res domain.Resource) bool {
	if actor.ID == res.ID {
		return true
	}
	return canModify(actor, res)
}

// CanDelete is SUPERADMIN only, and never on the actor's own account.
func (UserAuthority) CanDelete(actor domain.Actor, res domain.Resource) bool {
	return actor.ID != res.ID && actor.Role == domain.RoleSuperAdmin
}

func (UserAuthority) CanAssign(domain.Actor, domain.Resource, string) bool { return false }

func (UserAuthority) CanUnassign(domain.Actor, domain.Resource) bool { return false }

// CanGrantRole reports whether the actor may hand out the role at all,
// independent of who receives it. Nobody grants a role at or above their
// own rank, and only SUPERADMIN grants MANAGER-rank roles.
func (UserAuthority) CanGrantRole(actor domain.Actor, role domain.Role) bool {
	if !role.Valid() || !domain.IsAdminRank(actor.Role) {
		return false
	}
	if domain.HasHigherOrEqual(role, actor.Role) {
		return false
	}
	if domain.HasHigherOrEqual(role, domain.RoleManager) {
		return actor.Role == domain.RoleSuperAdmin
	}
	return true
}

// CanChangeRole reports whether actor may move target to newRole.
func (a UserAuthority) CanChangeRole(actor domain.Actor, target domain.Resource, newRole domain.Role) bool {
	if actor.ID == target.ID {
		return false
	}
	if actor.Role != domain.RoleSuperAdmin && !domain.HasStrictlyHigher(actor.Role, target.Owner.Role) {
		return false
	}
	return a.CanGrantRole(actor, newRole)
}

func (a UserAuthority) AssertGrantRole(actor domain.Actor, role domain.Role) error {
	return check(a.CanGrantRole(actor, role), ActionCreate, actor, domain.KindUser, "")
}

func (a UserAuthority) AssertChangeRole(actor domain.Actor, target domain.Resource, newRole domain.Role) error {
	return check(a.CanChangeRole(actor, target, newRole), ActionChangeRole, actor, target.Kind, target.ID)
}

// CanChangeStatus gates activation and deactivation. Self-service never applies.
func (a UserAuthority) CanChangeStatus(actor domain.Actor, target domain.Resource) bool {
	return actor.ID != target.ID && canModify(actor, target)
}

func (a UserAuthority) AssertChangeStatus(actor domain.Actor, target domain.Resource) error {
	return check(a.CanChangeStatus(actor, target), ActionUpdate, actor, target.Kind, target.ID)
}
