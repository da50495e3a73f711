package command

import (
	"context"
	"errors"

	"github.com/spec-kit/itops-service/internal/authority"
	"github.com/spec-kit/itops-service/internal/domain"
	"github.com/spec-kit/itops-service/internal/events"
	"github.com/spec-kit/itops-service/internal/repository"
	apperrors "github.com/spec-kit/itops-service/pkg/util"
)

const assetStatusMessage = "must be one of ACTIVE, IN_REPAIR, RETIRED"

type CreateAsset struct {
	Name         string
	AssetTag     string
	SerialNumber string
	Location     string
	Status       domain.AssetStatus
	AssigneeID   *string
}

func (CreateAsset) CommandName() string { return "CreateAsset" }

func (c CreateAsset) Validate() error {
	f := fieldErrors{}
	f.required("name", c.Name, maxName)
	f.required("asset_tag", c.AssetTag, maxShort)
	f.maxLen("serial_number", c.SerialNumber, maxShort)
	f.maxLen("location", c.Location, maxName)
	f.check(c.Status == "" || c.Status.Valid(), "status", assetStatusMessage)
	f.optionalID("assignee_id", c.AssigneeID)
	return f.err("asset")
}

type UpdateAsset struct {
	ID           string
	Name         *string
	SerialNumber *string
	Location     *string
	Status       *domain.AssetStatus
}

func (UpdateAsset) CommandName() string { return "UpdateAsset" }

func (c UpdateAsset) Validate() error {
	f := fieldErrors{}
	f.id("id", c.ID)
	f.optional("name", c.Name, maxName, true)
	f.optional("serial_number", c.SerialNumber, maxShort, false)
	f.optional("location", c.Location, maxName, false)
	if c.Status != nil {
		f.check(c.Status.Valid(), "status", assetStatusMessage)
	}
	return f.err("asset update")
}

type DeleteAsset struct{ ID string }

func (DeleteAsset) CommandName() string { return "DeleteAsset" }

func (c DeleteAsset) Validate() error {
	f := fieldErrors{}
	f.id("id", c.ID)
	return f.err("asset delete")
}

type AssignAsset struct {
	ID         string
	AssigneeID string
}

func (AssignAsset) CommandName() string { return "AssignAsset" }

func (c AssignAsset) Validate() error {
	f := fieldErrors{}
	f.id("id", c.ID)
	f.id("assignee_id", c.AssigneeID)
	return f.err("asset assignment")
}

type UnassignAsset struct{ ID string }

func (UnassignAsset) CommandName() string { return "UnassignAsset" }

func (c UnassignAsset) Validate() error {
	f := fieldErrors{}
	f.id("id", c.ID)
	return f.err("asset unassignment")
}

var assets = authority.Assets

func assetPayload(a *domain.Asset) map[string]any {
	return map[string]any{"asset_id": a.ID, events.KeyName: a.Name, "asset_tag": a.AssetTag}
}

func (s *session) loadAsset(ctx context.Context, id string) (*domain.Asset, domain.Resource, error) {
	a, err := s.tx.Assets().GetByID(ctx, id)
	if err != nil {
		return nil, domain.Resource{}, notFound(domain.KindAsset, id, err)
	}
	role, err := s.ownerRole(ctx, a.OwnerID)
	if err != nil {
		return nil, domain.Resource{}, err
	}
	return a, a.Resource(role), nil
}

func (e *Executor) createAsset(ctx context.Context, s *session, c CreateAsset) (Result, error) {
	if err := authority.AssertCreate(assets, s.actor); err != nil {
		return Result{}, err
	}
	status := c.Status
	if status == "" {
		status = domain.AssetStatusActive
	}
	a := &domain.Asset{
		ID:           s.newID(),
		OwnerID:      s.actor.ID,
		Name:         trimmedValue(c.Name),
		AssetTag:     trimmedValue(c.AssetTag),
		SerialNumber: c.SerialNumber,
		Location:     c.Location,
		Status:       status,
		CreatedAt:    s.now,
		UpdatedAt:    s.now,
	}
	if c.AssigneeID != nil {
		if err := authority.AssertAssign(assets, s.actor, a.Resource(s.actor.Role), *c.AssigneeID); err != nil {
			return Result{}, err
		}
		if err := s.requireAssignee(ctx, *c.AssigneeID); err != nil {
			return Result{}, err
		}
		id := *c.AssigneeID
		a.AssigneeID = &id
	}
	if err := s.tx.Assets().Create(ctx, a); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return Result{}, apperrors.NewConflict("asset tag already in use", map[string]any{"asset_tag": a.AssetTag})
		}
		return Result{}, err
	}
	s.emit(events.AssetCreated, domain.KindAsset, a.ID, assetPayload(a))
	return Result{Kind: domain.KindAsset, Asset: a}, nil
}

func (e *Executor) updateAsset(ctx context.Context, s *session, c UpdateAsset) (Result, error) {
	a, res, err := s.loadAsset(ctx, c.ID)
	if err != nil {
		return Result{}, err
	}
	if err := authority.AssertUpdate(assets, s.actor, res); err != nil {
		return Result{}, err
	}
	from := a.Status
	changes := events.Changes{}
	track(changes, "name", &a.Name, trimmed(c.Name))
	track(changes, "serial_number", &a.SerialNumber, c.SerialNumber)
	track(changes, "location", &a.Location, c.Location)
	track(changes, "status", &a.Status, c.Status)
	if len(changes) == 0 {
		return Result{Kind: domain.KindAsset, Asset: a}, nil
	}
	a.UpdatedAt = s.now
	if err := s.tx.Assets().Update(ctx, a); err != nil {
		return Result{}, err
	}
	payload := assetPayload(a)
	payload[events.KeyChanges] = changes
	s.emit(events.AssetUpdated, domain.KindAsset, a.ID, payload)
	if a.Status != from {
		status := assetPayload(a)
		status[events.KeyFromStatus] = string(from)
		status[events.KeyToStatus] = string(a.Status)
		s.emit(events.AssetStatusChanged, domain.KindAsset, a.ID, status)
	}
	return Result{Kind: domain.KindAsset, Asset: a}, nil
}

func (e *Executor) deleteAsset(ctx context.Context, s *session, c DeleteAsset) (Result, error) {
	a, res, err := s.loadAsset(ctx, c.ID)
	if err != nil {
		return Result{}, err
	}
	if err := authority.AssertDelete(assets, s.actor, res); err != nil {
		return Result{}, err
	}
	if err := s.tx.Assets().Delete(ctx, a.ID); err != nil {
		return Result{}, err
	}
	s.emit(events.AssetDeleted, domain.KindAsset, a.ID, assetPayload(a))
	return Result{Kind: domain.KindAsset}, nil
}

func (s *session) assetAssignment(a *domain.Asset, res domain.Resource) assignment {
	return assignment{
		module: assets,
		res:    res,
		slot:   &a.AssigneeID,
		save: func(ctx context.Context) error {
			a.UpdatedAt = s.now
			return s.tx.Assets().Update(ctx, a)
		},
		display: map[string]any{events.KeyName: a.Name},
	}
}

func (e *Executor) assignAsset(ctx context.Context, s *session, c AssignAsset) (Result, error) {
	a, res, err := s.loadAsset(ctx, c.ID)
	if err != nil {
		return Result{}, err
	}
	if err := s.assign(ctx, s.assetAssignment(a, res), c.AssigneeID); err != nil {
		return Result{}, err
	}
	return Result{Kind: domain.KindAsset, Asset: a}, nil
}

func (e *Executor) unassignAsset(ctx context.Context, s *session, c UnassignAsset) (Result, error) {
	a, res, err := s.loadAsset(ctx, c.ID)
	if err != nil {
		return Result{}, err
	}
	if err := s.unassign(ctx, s.assetAssignment(a, res)); err != nil {
		return Result{}, err
	}
	return Result{Kind: domain.KindAsset, Asset: a}, nil
}
