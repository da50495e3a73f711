package command

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spec-kit/itops-service/internal/authority"
	"github.com/spec-kit/itops-service/internal/domain"
	"github.com/spec-kit/itops-service/internal/events"
	"github.com/spec-kit/itops-service/internal/repository"
	apperrors "github.com/spec-kit/itops-service/pkg/util"
)

const roleMessage = "must be one of VIEWER, TECHNICIAN, IT_ADMIN, MANAGER, SUPERADMIN"

type CreateUser struct {
	Username string
	Email    string
	FullName string
	Password string
	Role     domain.Role
}

func (CreateUser) CommandName() string { return "CreateUser" }

func (c CreateUser) Validate() error {
	f := fieldErrors{}
	f.required("username", c.Username, maxShort)
	f.required("full_name", c.FullName, maxName)
	f.email("email", c.Email)
	switch n := len(c.Password); {
	case n < minPassword:
		f["password"] = fmt.Sprintf("must be at least %d characters", minPassword)
	case n > maxPasswordLen:
		f["password"] = fmt.Sprintf("must be at most %d bytes", maxPasswordLen)
	}
	f.check(c.Role == "" || c.Role.Valid(), "role", roleMessage)
	return f.err("user")
}

// UpdateUser patches profile fields. Active toggles the account status.
type UpdateUser struct {
	ID       string
	Email    *string
	FullName *string
	Active   *bool
}

func (UpdateUser) CommandName() string { return "UpdateUser" }

func (c UpdateUser) Validate() error {
	f := fieldErrors{}
	f.id("id", c.ID)
	if c.Email != nil {
		f.email("email", *c.Email)
	}
	f.optional("full_name", c.FullName, maxName, true)
	return f.err("user update")
}

type DeleteUser struct{ ID string }

func (DeleteUser) CommandName() string { return "DeleteUser" }

func (c DeleteUser) Validate() error {
	f := fieldErrors{}
	f.id("id", c.ID)
	return f.err("user delete")
}

type ChangeUserRole struct {
	ID   string
	Role domain.Role
}

func (ChangeUserRole) CommandName() string { return "ChangeUserRole" }

func (c ChangeUserRole) Validate() error {
	f := fieldErrors{}
	f.id("id", c.ID)
	f.check(c.Role.Valid(), "role", roleMessage)
	return f.err("role change")
}

var users = authority.Users

func userPayload(u *domain.User) map[string]any {
	return map[string]any{"user_id": u.ID, events.KeyUsername: u.Username}
}

func (s *session) loadUser(ctx context.Context, id string) (*domain.User, error) {
	u, err := s.tx.Users().GetByID(ctx, id)
	if err != nil {
		return nil, notFound(domain.KindUser, id, err)
	}
	return u, nil
}

func (e *Executor) createUser(ctx context.Context, s *session, c CreateUser) (Result, error) {
	role := c.Role
	if role == "" {
		role = domain.RoleViewer
	}
	if err := authority.AssertCreate(users, s.actor); err != nil {
		return Result{}, err
	}
	if err := users.AssertGrantRole(s.actor, role); err != nil {
		return Result{}, err
	}
	return e.insertUser(ctx, s, c, role)
}

// insertUser stores a new active account and emits user.created.
func (e *Executor) insertUser(ctx context.Context, s *session, c CreateUser, role domain.Role) (Result, error) {
	username := strings.ToLower(trimmedValue(c.Username))
	if _, err := s.tx.Users().GetByUsername(ctx, username); err == nil {
		return Result{}, apperrors.NewConflict("username already taken", map[string]any{"username": username})
	} else if !errors.Is(err, repository.ErrNotFound) {
		return Result{}, err
	}
	hash, err := e.hasher.Hash(c.Password)
	if err != nil {
		return Result{}, apperrors.NewInternalError(fmt.Errorf("hash password: %w", err))
	}
	u := &domain.User{
		ID:           s.newID(),
		Username:     username,
		Email:        strings.ToLower(trimmedValue(c.Email)),
		FullName:     trimmedValue(c.FullName),
		Role:         role,
		Status:       domain.UserStatusActive,
		PasswordHash: hash,
		CreatedAt:    s.now,
		UpdatedAt:    s.now,
	}
	if err := s.tx.Users().Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return Result{}, apperrors.NewConflict("username or email already in use", map[string]any{"username": u.Username, "email": u.Email})
		}
		return Result{}, err
	}
	payload := userPayload(u)
	payload["role"] = string(u.Role)
	s.emit(events.UserCreated, domain.KindUser, u.ID, payload)
	return Result{Kind: domain.KindUser, User: u}, nil
}

func (e *Executor) updateUser(ctx context.Context, s *session, c UpdateUser) (Result, error) {
	u, err := s.loadUser(ctx, c.ID)
	if err != nil {
		return Result{}, err
	}
	res := u.Resource()
	if err := authority.AssertUpdate(users, s.actor, res); err != nil {
		return Result{}, err
	}
	var status *domain.UserStatus
	if c.Active != nil {
		next := domain.UserStatusInactive
		if *c.Active {
			next = domain.UserStatusActive
		}
		if next != u.Status {
			if err := users.AssertChangeStatus(s.actor, res); err != nil {
				return Result{}, err
			}
			status = &next
		}
	}
	var email *string
	if c.Email != nil {
		v := strings.ToLower(trimmedValue(*c.Email))
		email = &v
	}

	from := u.Status
	changes := events.Changes{}
	track(changes, "email", &u.Email, email)
	track(changes, "full_name", &u.FullName, trimmed(c.FullName))
	track(changes, "status", &u.Status, status)
	if len(changes) == 0 {
		return Result{Kind: domain.KindUser, User: u}, nil
	}
	u.UpdatedAt = s.now
	if err := s.tx.Users().Update(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return Result{}, apperrors.NewConflict("email already in use", map[string]any{"email": u.Email})
		}
		return Result{}, err
	}
	payload := userPayload(u)
	payload[events.KeyChanges] = changes
	s.emit(events.UserUpdated, domain.KindUser, u.ID, payload)
	if u.Status != from {
		sp := userPayload(u)
		sp[events.KeyFromStatus] = string(from)
		sp[events.KeyToStatus] = string(u.Status)
		s.emit(events.UserStatusChanged, domain.KindUser, u.ID, sp)
	}
	return Result{Kind: domain.KindUser, User: u}, nil
}

func (e *Executor) deleteUser(ctx context.Context, s *session, c DeleteUser) (Result, error) {
	u, err := s.loadUser(ctx, c.ID)
	if err != nil {
		return Result{}, err
	}
	if err := authority.AssertDelete(users, s.actor, u.Resource()); err != nil {
		return Result{}, err
	}
	if err := s.releaseAssignments(ctx, u.ID); err != nil {
		return Result{}, err
	}
	if err := s.tx.Users().Delete(ctx, u.ID); err != nil {
		return Result{}, err
	}
	s.emit(events.UserDeleted, domain.KindUser, u.ID, userPayload(u))
	return Result{Kind: domain.KindUser}, nil
}

// cascadePage is the page size used when walking a departing user's assignments.
const cascadePage = 200

// releaseAssignments unassigns every ticket, asset and project held by
// userID, in that order, so no assignee points at a deleted account.
func (s *session) releaseAssignments(ctx context.Context, userID string) error {
	heldTickets, err := collect(func(f repository.ListFilter) ([]domain.Ticket, error) {
		return s.tx.Tickets().List(ctx, f)
	}, userID)
	if err != nil {
		return err
	}
	for i := range heldTickets {
		t := &heldTickets[i]
		if err := s.release(ctx, s.ticketAssignment(t, t.Resource(""))); err != nil {
			return err
		}
	}

	heldAssets, err := collect(func(f repository.ListFilter) ([]domain.Asset, error) {
		return s.tx.Assets().List(ctx, f)
	}, userID)
	if err != nil {
		return err
	}
	for i := range heldAssets {
		a := &heldAssets[i]
		if err := s.release(ctx, s.assetAssignment(a, a.Resource(""))); err != nil {
			return err
		}
	}

	heldProjects, err := collect(func(f repository.ListFilter) ([]domain.Project, error) {
		return s.tx.Projects().List(ctx, f)
	}, userID)
	if err != nil {
		return err
	}
	for i := range heldProjects {
		p := &heldProjects[i]
		if err := s.release(ctx, s.projectAssignment(p, p.Resource(""))); err != nil {
			return err
		}
	}
	return nil
}

// collect reads every page assigned to assigneeID before anything is changed.
func collect[T any](list func(repository.ListFilter) ([]T, error), assigneeID string) ([]T, error) {
	var out []T
	for {
		page, err := list(repository.ListFilter{AssigneeID: &assigneeID, Limit: cascadePage, Offset: len(out)})
		if err != nil {
			return nil, err
		}
		out = append(out, page...)
		if len(page) < cascadePage {
			return out, nil
		}
	}
}

func (e *Executor) changeUserRole(ctx context.Context, s *session, c ChangeUserRole) (Result, error) {
	u, err := s.loadUser(ctx, c.ID)
	if err != nil {
		return Result{}, err
	}
	if err := users.AssertChangeRole(s.actor, u.Resource(), c.Role); err != nil {
		return Result{}, err
	}
	if u.Role == c.Role {
		return Result{Kind: domain.KindUser, User: u}, nil
	}
	from := u.Role
	u.Role = c.Role
	u.UpdatedAt = s.now
	if err := s.tx.Users().Update(ctx, u); err != nil {
		return Result{}, err
	}
	payload := userPayload(u)
	payload[events.KeyFromRole] = string(from)
	payload[events.KeyToRole] = string(u.Role)
	s.emit(events.UserRoleChanged, domain.KindUser, u.ID, payload)
	return Result{Kind: domain.KindUser, User: u}, nil
}
