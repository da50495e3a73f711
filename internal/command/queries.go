package command

import (
	"context"

	"github.com/spec-kit/itops-service/internal/authority"
	"github.com/spec-kit/itops-service/internal/domain"
	"github.com/spec-kit/itops-service/internal/repository"
	apperrors "github.com/spec-kit/itops-service/pkg/util"
)

// Get loads one resource of the given kind after checking read access.
func (e *Executor) Get(ctx context.Context, actor domain.Actor, kind domain.ResourceKind, id string) (Result, error) {
	var out Result
	err := e.read(ctx, actor, func(s *session) error {
		res, result, err := s.load(ctx, kind, id)
		if err != nil {
			return err
		}
		if err := authority.AssertRead(authority.For(kind), actor, res); err != nil {
			return err
		}
		out = result
		return nil
	})
	return out, err
}

// Permissions projects what actor may do with the resource.
func (e *Executor) Permissions(ctx context.Context, actor domain.Actor, kind domain.ResourceKind, id string) (authority.Permissions, error) {
	var perms authority.Permissions
	err := e.read(ctx, actor, func(s *session) error {
		res, _, err := s.load(ctx, kind, id)
		if err != nil {
			return err
		}
		perms = authority.GetPermissions(authority.For(kind), actor, res)
		return nil
	})
	return perms, err
}

func (s *session) load(ctx context.Context, kind domain.ResourceKind, id string) (domain.Resource, Result, error) {
	switch kind {
	case domain.KindTicket:
		t, res, err := s.loadTicket(ctx, id)
		return res, Result{Kind: kind, Ticket: t}, err
	case domain.KindAsset:
		a, res, err := s.loadAsset(ctx, id)
		return res, Result{Kind: kind, Asset: a}, err
	case domain.KindProject:
		p, res, err := s.loadProject(ctx, id)
		return res, Result{Kind: kind, Project: p}, err
	case domain.KindUser:
		u, err := s.loadUser(ctx, id)
		if err != nil {
			return domain.Resource{}, Result{}, err
		}
		return u.Resource(), Result{Kind: kind, User: u}, nil
	default:
		return domain.Resource{}, Result{}, apperrors.NewValidationError("unknown resource kind", map[string]any{"kind": string(kind)})
	}
}

func (e *Executor) ListTickets(ctx context.Context, actor domain.Actor, filter repository.ListFilter) ([]domain.Ticket, error) {
	var out []domain.Ticket
	err := e.read(ctx, actor, func(s *session) error {
		items, err := s.tx.Tickets().List(ctx, filter)
		out = items
		return err
	})
	return out, err
}

func (e *Executor) ListAssets(ctx context.Context, actor domain.Actor, filter repository.ListFilter) ([]domain.Asset, error) {
	var out []domain.Asset
	err := e.read(ctx, actor, func(s *session) error {
		items, err := s.tx.Assets().List(ctx, filter)
		out = items
		return err
	})
	return out, err
}

func (e *Executor) ListProjects(ctx context.Context, actor domain.Actor, filter repository.ListFilter) ([]domain.Project, error) {
	var out []domain.Project
	err := e.read(ctx, actor, func(s *session) error {
		items, err := s.tx.Projects().List(ctx, filter)
		out = items
		return err
	})
	return out, err
}

func (e *Executor) ListUsers(ctx context.Context, actor domain.Actor, filter repository.ListFilter) ([]domain.User, error) {
	var out []domain.User
	err := e.read(ctx, actor, func(s *session) error {
		items, err := s.tx.Users().List(ctx, filter)
		out = items
		return err
	})
	return out, err
}

// Activity lists audit entries outside any transaction.
func (e *Executor) Activity(ctx context.Context, filter repository.ActivityFilter) ([]domain.ActivityLogEntry, error) {
	entries, err := e.store.ActivityLog().List(ctx, filter)
	return entries, mapError(err)
}

// StatusHistory lists transitions for one resource in the order they happened.
func (e *Executor) StatusHistory(ctx context.Context, kind domain.ResourceKind, id string) ([]domain.StatusHistoryEntry, error) {
	if !kind.Valid() {
		return nil, apperrors.NewValidationError("unknown resource kind", map[string]any{"kind": string(kind)})
	}
	entries, err := e.store.StatusHistory().ListByEntity(ctx, kind, id)
	return entries, mapError(err)
}
