package authority

import (
	"github.com/spec-kit/itops-service/internal/domain"
)

// Permissions is a display projection of the Can* predicates. It is never an
// enforcement path: callers still go through Assert*.
type Permissions struct {
	CanView       bool `json:"can_view"`
	CanUpdate     bool `json:"can_update"`
	CanDelete     bool `json:"can_delete"`
	CanAssign     bool `json:"can_assign"`
	CanUnassign   bool `json:"can_unassign"`
	CanSelfAssign bool `json:"can_self_assign"`
	AssignedToMe  bool `json:"assigned_to_me"`

	CanResolve    bool `json:"can_resolve,omitempty"`
	CanClose      bool `json:"can_close,omitempty"`
	CanReopen     bool `json:"can_reopen,omitempty"`
	CanChangeRole bool `json:"can_change_role,omitempty"`
}

// GetPermissions derives every flag from the same predicates the Assert* path uses.
// CanAssign means "may assign to someone other than themself".
func GetPermissions(m Module, actor domain.Actor, res domain.Resource) Permissions {
	perms := Permissions{
		CanView:       m.CanRead(actor, res),
		CanUpdate:     m.CanUpdate(actor, res),
		CanDelete:     m.CanDelete(actor, res),
		CanAssign:     m.CanAssign(actor, res, ""),
		CanUnassign:   m.CanUnassign(actor, res),
		CanSelfAssign: m.CanAssign(actor, res, actor.ID),
		AssignedToMe:  res.AssignedTo(actor.ID),
	}
	switch mod := m.(type) {
	case TicketAuthority:
		perms.CanResolve = mod.CanResolve(actor, res)
		perms.CanClose = mod.CanClose(actor, res)
		perms.CanReopen = mod.CanReopen(actor, res)
	case UserAuthority:
		for _, role := range domain.Roles() {
			if role != res.Owner.Role && mod.CanChangeRole(actor, res, role) {
				perms.CanChangeRole = true
				break
			}
		}
	}
	return perms
}
