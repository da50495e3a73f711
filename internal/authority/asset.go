package authority

import (
	"github.com/spec-kit/itops-service/internal/domain"
)

// AssetAuthority holds asset rules.
type AssetAuthority struct{}

func (AssetAuthority) Kind() domain.ResourceKind { return domain.KindAsset }

func (AssetAuthority) CanCreate(actor domain.Actor) bool { return aboveViewer(actor) }

func (AssetAuthority) CanRead(domain.Actor, domain.Resource) bool { return true }

func (AssetAuthority) CanUpdate(actor domain.Actor, res domain.Resource) bool {
	return canModify(actor, res)
}

// CanDelete ignores assignment: the actor must outrank the owner or hold an admin override.
func (AssetAuthority) CanDelete(actor domain.Actor, res domain.Resource) bool {
	if domain.IsAdminOverride(actor.Role) {
		return true
	}
	return aboveViewer(actor) && domain.HasStrictlyHigher(actor.Role, res.Owner.Role)
}

func (AssetAuthority) CanAssign(actor domain.Actor, res domain.Resource, assigneeID string) bool {
	return canAssign(actor, res, assigneeID)
}

func (AssetAuthority) CanUnassign(actor domain.Actor, res domain.Resource) bool {
	return canUnassign(actor, res)
}
