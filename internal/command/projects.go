package command

import (
	"context"

	"github.com/spec-kit/itops-service/internal/authority"
	"github.com/spec-kit/itops-service/internal/domain"
	"github.com/spec-kit/itops-service/internal/events"
)

const projectStatusMessage = "must be one of PLANNING, ACTIVE, ON_HOLD, COMPLETED, CANCELLED"

type CreateProject struct {
	Name        string
	Description string
	Priority    domain.TicketPriority
	Status      domain.ProjectStatus
	AssigneeID  *string
}

func (CreateProject) CommandName() string { return "CreateProject" }

func (c CreateProject) Validate() error {
	f := fieldErrors{}
	f.required("name", c.Name, maxName)
	f.maxLen("description", c.Description, maxText)
	f.check(c.Priority == "" || c.Priority.Valid(), "priority", "must be one of LOW, MEDIUM, HIGH, CRITICAL")
	f.check(c.Status == "" || c.Status.Valid(), "status", projectStatusMessage)
	f.optionalID("assignee_id", c.AssigneeID)
	return f.err("project")
}

type UpdateProject struct {
	ID          string
	Name        *string
	Description *string
	Priority    *domain.TicketPriority
	Status      *domain.ProjectStatus
}

func (UpdateProject) CommandName() string { return "UpdateProject" }

func (c UpdateProject) Validate() error {
	f := fieldErrors{}
	f.id("id", c.ID)
	f.optional("name", c.Name, maxName, true)
	f.optional("description", c.Description, maxText, false)
	if c.Priority != nil {
		f.check(c.Priority.Valid(), "priority", "must be one of LOW, MEDIUM, HIGH, CRITICAL")
	}
	if c.Status != nil {
		f.check(c.Status.Valid(), "status", projectStatusMessage)
	}
	return f.err("project update")
}

type DeleteProject struct{ ID string }

func (DeleteProject) CommandName() string { return "DeleteProject" }

func (c DeleteProject) Validate() error {
	f := fieldErrors{}
	f.id("id", c.ID)
	return f.err("project delete")
}

type AssignProject struct {
	ID         string
	AssigneeID string
}

func (AssignProject) CommandName() string { return "AssignProject" }

func (c AssignProject) Validate() error {
	f := fieldErrors{}
	f.id("id", c.ID)
	f.id("assignee_id", c.AssigneeID)
	return f.err("project assignment")
}

type UnassignProject struct{ ID string }

func (UnassignProject) CommandName() string { return "UnassignProject" }

func (c UnassignProject) Validate() error {
	f := fieldErrors{}
	f.id("id", c.ID)
	return f.err("project unassignment")
}

var projects = authority.Projects

func projectPayload(p *domain.Project) map[string]any {
	return map[string]any{"project_id": p.ID, events.KeyName: p.Name}
}

func (s *session) loadProject(ctx context.Context, id string) (*domain.Project, domain.Resource, error) {
	p, err := s.tx.Projects().GetByID(ctx, id)
	if err != nil {
		return nil, domain.Resource{}, notFound(domain.KindProject, id, err)
	}
	role, err := s.ownerRole(ctx, p.OwnerID)
	if err != nil {
		return nil, domain.Resource{}, err
	}
	return p, p.Resource(role), nil
}

func (e *Executor) createProject(ctx context.Context, s *session, c CreateProject) (Result, error) {
	if err := authority.AssertCreate(projects, s.actor); err != nil {
		return Result{}, err
	}
	p := &domain.Project{
		ID:          s.newID(),
		OwnerID:     s.actor.ID,
		Name:        trimmedValue(c.Name),
		Description: c.Description,
		Priority:    c.Priority,
		Status:      c.Status,
		CreatedAt:   s.now,
		UpdatedAt:   s.now,
	}
	if p.Priority == "" {
		p.Priority = domain.TicketPriorityMedium
	}
	if p.Status == "" {
		p.Status = domain.ProjectStatusPlanning
	}
	if c.AssigneeID != nil {
		if err := authority.AssertAssign(projects, s.actor, p.Resource(s.actor.Role), *c.AssigneeID); err != nil {
			return Result{}, err
		}
		if err := s.requireAssignee(ctx, *c.AssigneeID); err != nil {
			return Result{}, err
		}
		id := *c.AssigneeID
		p.AssigneeID = &id
	}
	if err := s.tx.Projects().Create(ctx, p); err != nil {
		return Result{}, err
	}
	s.emit(events.ProjectCreated, domain.KindProject, p.ID, projectPayload(p))
	return Result{Kind: domain.KindProject, Project: p}, nil
}

func (e *Executor) updateProject(ctx context.Context, s *session, c UpdateProject) (Result, error) {
	p, res, err := s.loadProject(ctx, c.ID)
	if err != nil {
		return Result{}, err
	}
	if err := authority.AssertUpdate(projects, s.actor, res); err != nil {
		return Result{}, err
	}
	from := p.Status
	changes := events.Changes{}
	track(changes, "name", &p.Name, trimmed(c.Name))
	track(changes, "description", &p.Description, c.Description)
	track(changes, "priority", &p.Priority, c.Priority)
	track(changes, "status", &p.Status, c.Status)
	if len(changes) == 0 {
		return Result{Kind: domain.KindProject, Project: p}, nil
	}
	p.UpdatedAt = s.now
	if err := s.tx.Projects().Update(ctx, p); err != nil {
		return Result{}, err
	}
	payload := projectPayload(p)
	payload[events.KeyChanges] = changes
	s.emit(events.ProjectUpdated, domain.KindProject, p.ID, payload)
	if p.Status != from {
		status := projectPayload(p)
		status[events.KeyFromStatus] = string(from)
		status[events.KeyToStatus] = string(p.Status)
		s.emit(events.ProjectStatusChanged, domain.KindProject, p.ID, status)
	}
	return Result{Kind: domain.KindProject, Project: p}, nil
}

func (e *Executor) deleteProject(ctx context.Context, s *session, c DeleteProject) (Result, error) {
	p, res, err := s.loadProject(ctx, c.ID)
	if err != nil {
		return Result{}, err
	}
	if err := authority.AssertDelete(projects, s.actor, res); err != nil {
		return Result{}, err
	}
	if err := s.tx.Projects().Delete(ctx, p.ID); err != nil {
		return Result{}, err
	}
	s.emit(events.ProjectDeleted, domain.KindProject, p.ID, projectPayload(p))
	return Result{Kind: domain.KindProject}, nil
}

func (s *session) projectAssignment(p *domain.Project, res domain.Resource) assignment {
	return assignment{
		module: projects,
		res:    res,
		slot:   &p.AssigneeID,
		save: func(ctx context.Context) error {
			p.UpdatedAt = s.now
			return s.tx.Projects().Update(ctx, p)
		},
		display: map[string]any{events.KeyName: p.Name},
	}
}

func (e *Executor) assignProject(ctx context.Context, s *session, c AssignProject) (Result, error) {
	p, res, err := s.loadProject(ctx, c.ID)
	if err != nil {
		return Result{}, err
	}
	if err := s.assign(ctx, s.projectAssignment(p, res), c.AssigneeID); err != nil {
		return Result{}, err
	}
	return Result{Kind: domain.KindProject, Project: p}, nil
}

func (e *Executor) unassignProject(ctx context.Context, s *session, c UnassignProject) (Result, error) {
	p, res, err := s.loadProject(ctx, c.ID)
	if err != nil {
		return Result{}, err
	}
	if err := s.unassign(ctx, s.projectAssignment(p, res)); err != nil {
		return Result{}, err
	}
	return Result{Kind: domain.KindProject, Project: p}, nil
}
