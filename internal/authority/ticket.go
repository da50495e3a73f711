package authority

import (
	"github.com/spec-kit/itops-service/internal/domain"
)

// TicketAuthority holds ticket rules. Technicians own tickets by assignment, not creation.
type TicketAuthority struct{}

func (TicketAuthority) Kind() domain.ResourceKind { return domain.KindTicket }

func (TicketAuthority) CanCreate(actor domain.Actor) bool { return aboveViewer(actor) }

func (TicketAuthority) CanRead(domain.Actor, domain.Resource) bool { return true }

func (TicketAuthority) CanUpdate(actor domain.Actor, res domain.Resource) bool {
	return canModify(actor, res)
}

func (TicketAuthority) CanDelete(actor domain.Actor, res domain.Resource) bool {
	return canModify(actor, res)
}

func (TicketAuthority) CanAssign(actor domain.Actor, res domain.Resource, assigneeID string) bool {
	return canAssign(actor, res, assigneeID)
}

func (TicketAuthority) CanUnassign(actor domain.Actor, res domain.Resource) bool {
	return canUnassign(actor, res)
}

// CanResolve requires update rights on a ticket that is still being worked.
func (a TicketAuthority) CanResolve(actor domain.Actor, res domain.Resource) bool {
	return domain.TicketStatus(res.Status).IsActive() && a.CanUpdate(actor, res)
}

// CanClose requires update rights on a resolved ticket.
func (a TicketAuthority) CanClose(actor domain.Actor, res domain.Resource) bool {
	return domain.TicketStatus(res.Status) == domain.TicketStatusResolved && a.CanUpdate(actor, res)
}

// CanReopen is reserved to admin ranks and only for resolved or closed tickets.
func (TicketAuthority) CanReopen(actor domain.Actor, res domain.Resource) bool {
	return domain.TicketStatus(res.Status).IsFinished() && domain.IsAdminRank(actor.Role)
}

func (a TicketAuthority) AssertResolve(actor domain.Actor, res domain.Resource) error {
	return check(a.CanResolve(actor, res), ActionResolve, actor, res.Kind, res.ID)
}

func (a TicketAuthority) AssertClose(actor domain.Actor, res domain.Resource) error {
	return check(a.CanClose(actor, res), ActionClose, actor, res.Kind, res.ID)
}

func (a TicketAuthority) AssertReopen(actor domain.Actor, res domain.Resource) error {
	return check(a.CanReopen(actor, res), ActionReopen, actor, res.Kind, res.ID)
}
