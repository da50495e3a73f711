package command

import (
	"context"

	"github.com/spec-kit/itops-service/internal/authority"
	"github.com/spec-kit/itops-service/internal/domain"
	"github.com/spec-kit/itops-service/internal/events"
	apperrors "github.com/spec-kit/itops-service/pkg/util"
)

type CreateTicket struct {
	Title       string
	Description string
	Priority    domain.TicketPriority
	AssigneeID  *string
}

func (CreateTicket) CommandName() string { return "CreateTicket" }

func (c CreateTicket) Validate() error {
	f := fieldErrors{}
	f.required("title", c.Title, maxTitle)
	f.maxLen("description", c.Description, maxText)
	f.check(c.Priority == "" || c.Priority.Valid(), "priority", "must be one of LOW, MEDIUM, HIGH, CRITICAL")
	f.optionalID("assignee_id", c.AssigneeID)
	return f.err("ticket")
}

// UpdateTicket patches a ticket. Nil fields are left unchanged.
type UpdateTicket struct {
	ID             string
	Title          *string
	Description    *string
	Priority       *domain.TicketPriority
	Status         *domain.TicketStatus
	ResolutionNote *string
}

func (UpdateTicket) CommandName() string { return "UpdateTicket" }

func (c UpdateTicket) Validate() error {
	f := fieldErrors{}
	f.id("id", c.ID)
	f.optional("title", c.Title, maxTitle, true)
	f.optional("description", c.Description, maxText, false)
	f.optional("resolution_note", c.ResolutionNote, maxText, false)
	if c.Priority != nil {
		f.check(c.Priority.Valid(), "priority", "must be one of LOW, MEDIUM, HIGH, CRITICAL")
	}
	if c.Status != nil {
		f.check(c.Status.Valid(), "status", "must be one of OPEN, IN_PROGRESS, RESOLVED, CLOSED")
	}
	return f.err("ticket update")
}

type DeleteTicket struct{ ID string }

func (DeleteTicket) CommandName() string { return "DeleteTicket" }

func (c DeleteTicket) Validate() error {
	f := fieldErrors{}
	f.id("id", c.ID)
	return f.err("ticket delete")
}

type AssignTicket struct {
	ID         string
	AssigneeID string
}

func (AssignTicket) CommandName() string { return "AssignTicket" }

func (c AssignTicket) Validate() error {
	f := fieldErrors{}
	f.id("id", c.ID)
	f.id("assignee_id", c.AssigneeID)
	return f.err("ticket assignment")
}

type UnassignTicket struct{ ID string }

func (UnassignTicket) CommandName() string { return "UnassignTicket" }

func (c UnassignTicket) Validate() error {
	f := fieldErrors{}
	f.id("id", c.ID)
	return f.err("ticket unassignment")
}

type ResolveTicket struct {
	ID             string
	ResolutionNote string
}

func (ResolveTicket) CommandName() string { return "ResolveTicket" }

func (c ResolveTicket) Validate() error {
	f := fieldErrors{}
	f.id("id", c.ID)
	f.required("resolution_note", c.ResolutionNote, maxText)
	return f.err("ticket resolution")
}

type ReopenTicket struct{ ID string }

func (ReopenTicket) CommandName() string { return "ReopenTicket" }

func (c ReopenTicket) Validate() error {
	f := fieldErrors{}
	f.id("id", c.ID)
	return f.err("ticket reopen")
}

type CloseTicket struct{ ID string }

func (CloseTicket) CommandName() string { return "CloseTicket" }

func (c CloseTicket) Validate() error {
	f := fieldErrors{}
	f.id("id", c.ID)
	return f.err("ticket close")
}

var tickets = authority.Tickets

func ticketPayload(t *domain.Ticket) map[string]any {
	return map[string]any{"ticket_id": t.ID, events.KeyTitle: t.Title}
}

func (s *session) loadTicket(ctx context.Context, id string) (*domain.Ticket, domain.Resource, error) {
	t, err := s.tx.Tickets().GetByID(ctx, id)
	if err != nil {
		return nil, domain.Resource{}, notFound(domain.KindTicket, id, err)
	}
	role, err := s.ownerRole(ctx, t.OwnerID)
	if err != nil {
		return nil, domain.Resource{}, err
	}
	return t, t.Resource(role), nil
}

func (e *Executor) createTicket(ctx context.Context, s *session, c CreateTicket) (Result, error) {
	if err := authority.AssertCreate(tickets, s.actor); err != nil {
		return Result{}, err
	}
	priority := c.Priority
	if priority == "" {
		priority = domain.TicketPriorityMedium
	}
	t := &domain.Ticket{
		ID:          s.newID(),
		OwnerID:     s.actor.ID,
		Title:       trimmedValue(c.Title),
		Description: c.Description,
		Status:      domain.TicketStatusOpen,
		Priority:    priority,
		CreatedAt:   s.now,
		UpdatedAt:   s.now,
	}
	if c.AssigneeID != nil {
		if err := authority.AssertAssign(tickets, s.actor, t.Resource(s.actor.Role), *c.AssigneeID); err != nil {
			return Result{}, err
		}
		if err := s.requireAssignee(ctx, *c.AssigneeID); err != nil {
			return Result{}, err
		}
		id := *c.AssigneeID
		t.AssigneeID = &id
	}
	if err := s.tx.Tickets().Create(ctx, t); err != nil {
		return Result{}, err
	}
	payload := ticketPayload(t)
	payload["priority"] = string(t.Priority)
	s.emit(events.TicketCreated, domain.KindTicket, t.ID, payload)
	return Result{Kind: domain.KindTicket, Ticket: t}, nil
}

func (e *Executor) updateTicket(ctx context.Context, s *session, c UpdateTicket) (Result, error) {
	t, res, err := s.loadTicket(ctx, c.ID)
	if err != nil {
		return Result{}, err
	}
	from := t.Status
	moving := c.Status != nil && *c.Status != from
	if moving && !from.CanTransitionTo(*c.Status) {
		return Result{}, apperrors.NewInvalidTransition(domain.KindTicket, string(from), string(*c.Status))
	}
	if err := authority.AssertUpdate(tickets, s.actor, res); err != nil {
		return Result{}, err
	}
	var lifecycle events.EventType
	if moving {
		switch to := *c.Status; {
		case to == domain.TicketStatusResolved:
			lifecycle, err = events.TicketResolved, tickets.AssertResolve(s.actor, res)
		case to == domain.TicketStatusClosed:
			lifecycle, err = events.TicketClosed, tickets.AssertClose(s.actor, res)
		case from.IsFinished():
			lifecycle, err = events.TicketReopened, tickets.AssertReopen(s.actor, res)
		}
		if err != nil {
			return Result{}, err
		}
	}

	changes := events.Changes{}
	track(changes, "title", &t.Title, trimmed(c.Title))
	track(changes, "description", &t.Description, c.Description)
	track(changes, "priority", &t.Priority, c.Priority)
	track(changes, "resolution_note", &t.ResolutionNote, c.ResolutionNote)
	track(changes, "status", &t.Status, c.Status)
	if len(changes) == 0 {
		return Result{Kind: domain.KindTicket, Ticket: t}, nil
	}
	if moving {
		applyTicketStatus(t, s)
	}
	t.UpdatedAt = s.now
	if err := s.tx.Tickets().Update(ctx, t); err != nil {
		return Result{}, err
	}

	payload := ticketPayload(t)
	payload[events.KeyChanges] = changes
	s.emit(events.TicketUpdated, domain.KindTicket, t.ID, payload)
	if moving {
		s.emitTicketStatus(t, from)
		if lifecycle != "" {
			s.emit(lifecycle, domain.KindTicket, t.ID, ticketPayload(t))
		}
	}
	return Result{Kind: domain.KindTicket, Ticket: t}, nil
}

// applyTicketStatus keeps ClosedAt consistent with the new status.
func applyTicketStatus(t *domain.Ticket, s *session) {
	if t.Status == domain.TicketStatusClosed {
		now := s.now
		t.ClosedAt = &now
		return
	}
	t.ClosedAt = nil
}

func (s *session) emitTicketStatus(t *domain.Ticket, from domain.TicketStatus) {
	payload := ticketPayload(t)
	payload[events.KeyFromStatus] = string(from)
	payload[events.KeyToStatus] = string(t.Status)
	payload[events.KeyOwnerID] = t.OwnerID
	if t.AssigneeID != nil {
		payload[events.KeyAssigneeID] = *t.AssigneeID
	}
	s.emit(events.TicketStatusChanged, domain.KindTicket, t.ID, payload)
}

func (e *Executor) deleteTicket(ctx context.Context, s *session, c DeleteTicket) (Result, error) {
	t, res, err := s.loadTicket(ctx, c.ID)
	if err != nil {
		return Result{}, err
	}
	if err := authority.AssertDelete(tickets, s.actor, res); err != nil {
		return Result{}, err
	}
	if err := s.tx.Tickets().Delete(ctx, t.ID); err != nil {
		return Result{}, err
	}
	s.emit(events.TicketDeleted, domain.KindTicket, t.ID, ticketPayload(t))
	return Result{Kind: domain.KindTicket}, nil
}

func (s *session) ticketAssignment(t *domain.Ticket, res domain.Resource) assignment {
	return assignment{
		module: tickets,
		res:    res,
		slot:   &t.AssigneeID,
		save: func(ctx context.Context) error {
			t.UpdatedAt = s.now
			return s.tx.Tickets().Update(ctx, t)
		},
		display: map[string]any{events.KeyTitle: t.Title},
	}
}

func (e *Executor) assignTicket(ctx context.Context, s *session, c AssignTicket) (Result, error) {
	t, res, err := s.loadTicket(ctx, c.ID)
	if err != nil {
		return Result{}, err
	}
	if err := s.assign(ctx, s.ticketAssignment(t, res), c.AssigneeID); err != nil {
		return Result{}, err
	}
	return Result{Kind: domain.KindTicket, Ticket: t}, nil
}

func (e *Executor) unassignTicket(ctx context.Context, s *session, c UnassignTicket) (Result, error) {
	t, res, err := s.loadTicket(ctx, c.ID)
	if err != nil {
		return Result{}, err
	}
	if err := s.unassign(ctx, s.ticketAssignment(t, res)); err != nil {
		return Result{}, err
	}
	return Result{Kind: domain.KindTicket, Ticket: t}, nil
}

func (e *Executor) resolveTicket(ctx context.Context, s *session, c ResolveTicket) (Result, error) {
	t, res, err := s.loadTicket(ctx, c.ID)
	if err != nil {
		return Result{}, err
	}
	if !t.Status.IsActive() {
		return Result{}, apperrors.NewInvalidTransition(domain.KindTicket, string(t.Status), string(domain.TicketStatusResolved))
	}
	if err := tickets.AssertResolve(s.actor, res); err != nil {
		return Result{}, err
	}
	from := t.Status
	t.Status = domain.TicketStatusResolved
	t.ResolutionNote = trimmedValue(c.ResolutionNote)
	t.UpdatedAt = s.now
	if err := s.tx.Tickets().Update(ctx, t); err != nil {
		return Result{}, err
	}
	s.emitTicketStatus(t, from)
	payload := ticketPayload(t)
	payload[events.KeyResolutionNote] = t.ResolutionNote
	s.emit(events.TicketResolved, domain.KindTicket, t.ID, payload)
	return Result{Kind: domain.KindTicket, Ticket: t}, nil
}

func (e *Executor) reopenTicket(ctx context.Context, s *session, c ReopenTicket) (Result, error) {
	t, res, err := s.loadTicket(ctx, c.ID)
	if err != nil {
		return Result{}, err
	}
	if !t.Status.IsFinished() {
		return Result{}, apperrors.NewInvalidTransition(domain.KindTicket, string(t.Status), string(domain.TicketStatusInProgress))
	}
	if err := tickets.AssertReopen(s.actor, res); err != nil {
		return Result{}, err
	}
	from := t.Status
	t.Status = domain.TicketStatusInProgress
	t.ClosedAt = nil
	t.UpdatedAt = s.now
	if err := s.tx.Tickets().Update(ctx, t); err != nil {
		return Result{}, err
	}
	s.emitTicketStatus(t, from)
	s.emit(events.TicketReopened, domain.KindTicket, t.ID, ticketPayload(t))
	return Result{Kind: domain.KindTicket, Ticket: t}, nil
}

func (e *Executor) closeTicket(ctx context.Context, s *session, c CloseTicket) (Result, error) {
	t, res, err := s.loadTicket(ctx, c.ID)
	if err != nil {
		return Result{}, err
	}
	if t.Status != domain.TicketStatusResolved {
		return Result{}, apperrors.NewInvalidTransition(domain.KindTicket, string(t.Status), string(domain.TicketStatusClosed))
	}
	if err := tickets.AssertClose(s.actor, res); err != nil {
		return Result{}, err
	}
	from := t.Status
	t.Status = domain.TicketStatusClosed
	closedAt := s.now
	t.ClosedAt = &closedAt
	t.UpdatedAt = s.now
	if err := s.tx.Tickets().Update(ctx, t); err != nil {
		return Result{}, err
	}
	s.emitTicketStatus(t, from)
	s.emit(events.TicketClosed, domain.KindTicket, t.ID, ticketPayload(t))
	return Result{Kind: domain.KindTicket, Ticket: t}, nil
}
