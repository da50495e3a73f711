package authority

import (
	"github.com/spec-kit/itops-service/internal/domain"
)

// ProjectAuthority holds project rules.
type ProjectAuthority struct{}

func (ProjectAuthority) Kind() domain.ResourceKind { return domain.KindProject }

// CanCreate requires MANAGER rank, which IT_ADMIN shares.
func (ProjectAuthority) CanCreate(actor domain.Actor) bool {
	return domain.HasHigherOrEqual(actor.Role, domain.RoleManager)
}

func (ProjectAuthority) CanRead(domain.Actor, domain.Resource) bool { return true }

func (ProjectAuthority) CanUpdate(actor domain.Actor, res domain.Resource) bool {
	return canModify(actor, res)
}

func (ProjectAuthority) CanDelete(actor domain.Actor, res domain.Resource) bool {
	return canModify(actor, res)
}

func (ProjectAuthority) CanAssign(actor domain.Actor, res domain.Resource, assigneeID string) bool {
	return canAssign(actor, res, assigneeID)
}

func (ProjectAuthority) CanUnassign(actor domain.Actor, res domain.Resource) bool {
	return canUnassign(actor, res)
}
