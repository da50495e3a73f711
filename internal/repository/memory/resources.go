package memory

import (
	"context"
	"fmt"

	"github.com/spec-kit/itops-service/internal/domain"
	"github.com/spec-kit/itops-service/internal/repository"
)

type ticketRepo struct{ tx *tx }

func cloneTicket(t domain.Ticket) domain.Ticket {
	t.AssigneeID = cloneString(t.AssigneeID)
	t.ClosedAt = cloneTime(t.ClosedAt)
	return t
}

func (r ticketRepo) Create(ctx context.Context, ticket *domain.Ticket) error {
	if err := r.tx.check(ctx); err != nil {
		return err
	}
	if _, exists := r.tx.tickets.get(ticket.ID); exists {
		return fmt.Errorf("tickets.Create: %w", repository.ErrDuplicate)
	}
	ticket.CreatedAt = r.tx.store.now()
	ticket.UpdatedAt = ticket.CreatedAt
	r.tx.tickets.put(ticket.ID, cloneTicket(*ticket))
	return nil
}

func (r ticketRepo) Update(ctx context.Context, ticket *domain.Ticket) error {
	if err := r.tx.check(ctx); err != nil {
		return err
	}
	if _, exists := r.tx.tickets.get(ticket.ID); !exists {
		return fmt.Errorf("tickets.Update: %w", repository.ErrNotFound)
	}
	ticket.UpdatedAt = r.tx.store.now()
	r.tx.tickets.put(ticket.ID, cloneTicket(*ticket))
	return nil
}

func (r ticketRepo) Delete(ctx context.Context, id string) error {
	if err := r.tx.check(ctx); err != nil {
		return err
	}
	if _, exists := r.tx.tickets.get(id); !exists {
		return fmt.Errorf("tickets.Delete: %w", repository.ErrNotFound)
	}
	r.tx.tickets.remove(id)
	return nil
}

func (r ticketRepo) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	if err := r.tx.check(ctx); err != nil {
		return nil, err
	}
	ticket, ok := r.tx.tickets.get(id)
	if !ok {
		return nil, fmt.Errorf("tickets.GetByID: %w", repository.ErrNotFound)
	}
	ticket = cloneTicket(ticket)
	return &ticket, nil
}

func (r ticketRepo) List(ctx context.Context, filter repository.ListFilter) ([]domain.Ticket, error) {
	if err := r.tx.check(ctx); err != nil {
		return nil, err
	}
	var items []domain.Ticket
	for _, t := range r.tx.tickets.all() {
		if matches(filter, t.OwnerID, t.AssigneeID, string(t.Status), t.Title, t.Description) {
			items = append(items, cloneTicket(t))
		}
	}
	return page(items, filter.Limit, filter.Offset, func(a, b domain.Ticket) bool {
		return a.UpdatedAt.After(b.UpdatedAt)
	}), nil
}

type assetRepo struct{ tx *tx }

func cloneAsset(a domain.Asset) domain.Asset {
	a.AssigneeID = cloneString(a.AssigneeID)
	return a
}

func (r assetRepo) tagTaken(asset *domain.Asset) bool {
	for _, existing := range r.tx.assets.all() {
		if existing.ID != asset.ID && existing.AssetTag == asset.AssetTag {
			return true
		}
	}
	return false
}

func (r assetRepo) Create(ctx context.Context, asset *domain.Asset) error {
	if err := r.tx.check(ctx); err != nil {
		return err
	}
	if _, exists := r.tx.assets.get(asset.ID); exists || r.tagTaken(asset) {
		return fmt.Errorf("assets.Create: %w", repository.ErrDuplicate)
	}
	asset.CreatedAt = r.tx.store.now()
	asset.UpdatedAt = asset.CreatedAt
	r.tx.assets.put(asset.ID, cloneAsset(*asset))
	return nil
}

func (r assetRepo) Update(ctx context.Context, asset *domain.Asset) error {
	if err := r.tx.check(ctx); err != nil {
		return err
	}
	if _, exists := r.tx.assets.get(asset.ID); !exists {
		return fmt.Errorf("assets.Update: %w", repository.ErrNotFound)
	}
	if r.tagTaken(asset) {
		return fmt.Errorf("assets.Update: %w", repository.ErrDuplicate)
	}
	asset.UpdatedAt = r.tx.store.now()
	r.tx.assets.put(asset.ID, cloneAsset(*asset))
	return nil
}

func (r assetRepo) Delete(ctx context.Context, id string) error {
	if err := r.tx.check(ctx); err != nil {
		return err
	}
	if _, exists := r.tx.assets.get(id); !exists {
		return fmt.Errorf("assets.Delete: %w", repository.ErrNotFound)
	}
	r.tx.assets.remove(id)
	return nil
}

func (r assetRepo) GetByID(ctx context.Context, id string) (*domain.Asset, error) {
	if err := r.tx.check(ctx); err != nil {
		return nil, err
	}
	asset, ok := r.tx.assets.get(id)
	if !ok {
		return nil, fmt.Errorf("assets.GetByID: %w", repository.ErrNotFound)
	}
	asset = cloneAsset(asset)
	return &asset, nil
}

func (r assetRepo) List(ctx context.Context, filter repository.ListFilter) ([]domain.Asset, error) {
	if err := r.tx.check(ctx); err != nil {
		return nil, err
	}
	var items []domain.Asset
	for _, a := range r.tx.assets.all() {
		if matches(filter, a.OwnerID, a.AssigneeID, string(a.Status), a.Name, a.AssetTag, a.SerialNumber, a.Location) {
			items = append(items, cloneAsset(a))
		}
	}
	return page(items, filter.Limit, filter.Offset, func(a, b domain.Asset) bool {
		return a.Name < b.Name
	}), nil
}

type projectRepo struct{ tx *tx }

func cloneProject(p domain.Project) domain.Project {
	p.AssigneeID = cloneString(p.AssigneeID)
	return p
}

func (r projectRepo) Create(ctx context.Context, project *domain.Project) error {
	if err := r.tx.check(ctx); err != nil {
		return err
	}
	if _, exists := r.tx.projects.get(project.ID); exists {
		return fmt.Errorf("projects.Create: %w", repository.ErrDuplicate)
	}
	project.CreatedAt = r.tx.store.now()
	project.UpdatedAt = project.CreatedAt
	r.tx.projects.put(project.ID, cloneProject(*project))
	return nil
}

func (r projectRepo) Update(ctx context.Context, project *domain.Project) error {
	if err := r.tx.check(ctx); err != nil {
		return err
	}
	if _, exists := r.tx.projects.get(project.ID); !exists {
		return fmt.Errorf("projects.Update: %w", repository.ErrNotFound)
	}
	project.UpdatedAt = r.tx.store.now()
	r.tx.projects.put(project.ID, cloneProject(*project))
	return nil
}

func (r projectRepo) Delete(ctx context.Context, id string) error {
	if err := r.tx.check(ctx); err != nil {
		return err
	}
	if _, exists := r.tx.projects.get(id); !exists {
		return fmt.Errorf("projects.Delete: %w", repository.ErrNotFound)
	}
	r.tx.projects.remove(id)
	return nil
}

func (r projectRepo) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	if err := r.tx.check(ctx); err != nil {
		return nil, err
	}
	project, ok := r.tx.projects.get(id)
	if !ok {
		return nil, fmt.Errorf("projects.GetByID: %w", repository.ErrNotFound)
	}
	project = cloneProject(project)
	return &project, nil
}

func (r projectRepo) List(ctx context.Context, filter repository.ListFilter) ([]domain.Project, error) {
	if err := r.tx.check(ctx); err != nil {
		return nil, err
	}
	var items []domain.Project
	for _, p := range r.tx.projects.all() {
		if matches(filter, p.OwnerID, p.AssigneeID, string(p.Status), p.Name, p.Description) {
			items = append(items, cloneProject(p))
		}
	}
	return page(items, filter.Limit, filter.Offset, func(a, b domain.Project) bool {
		return a.UpdatedAt.After(b.UpdatedAt)
	}), nil
}

type userRepo struct{ tx *tx }

func (r userRepo) conflicts(user *domain.User) bool {
	for _, existing := range r.tx.users.all() {
		if existing.ID == user.ID {
			continue
		}
		if existing.Username == user.Username || existing.Email == user.Email {
			return true
		}
	}
	return false
}

func (r userRepo) Create(ctx context.Context, user *domain.User) error {
	if err := r.tx.check(ctx); err != nil {
		return err
	}
	if _, exists := r.tx.users.get(user.ID); exists || r.conflicts(user) {
		return fmt.Errorf("users.Create: %w", repository.ErrDuplicate)
	}
	user.CreatedAt = r.tx.store.now()
	user.UpdatedAt = user.CreatedAt
	r.tx.users.put(user.ID, *user)
	return nil
}

func (r userRepo) Update(ctx context.Context, user *domain.User) error {
	if err := r.tx.check(ctx); err != nil {
		return err
	}
	if _, exists := r.tx.users.get(user.ID); !exists {
		return fmt.Errorf("users.Update: %w", repository.ErrNotFound)
	}
	if r.conflicts(user) {
		return fmt.Errorf("users.Update: %w", repository.ErrDuplicate)
	}
	user.UpdatedAt = r.tx.store.now()
	r.tx.users.put(user.ID, *user)
	return nil
}

func (r userRepo) Delete(ctx context.Context, id string) error {
	if err := r.tx.check(ctx); err != nil {
		return err
	}
	if _, exists := r.tx.users.get(id); !exists {
		return fmt.Errorf("users.Delete: %w", repository.ErrNotFound)
	}
	r.tx.users.remove(id)
	return nil
}

func (r userRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if err := r.tx.check(ctx); err != nil {
		return nil, err
	}
	user, ok := r.tx.users.get(id)
	if !ok {
		return nil, fmt.Errorf("users.GetByID: %w", repository.ErrNotFound)
	}
	return &user, nil
}

func (r userRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if err := r.tx.check(ctx); err != nil {
		return nil, err
	}
	for _, u := range r.tx.users.all() {
		if u.Username == username {
			user := u
			return &user, nil
		}
	}
	return nil, fmt.Errorf("users.GetByUsername: %w", repository.ErrNotFound)
}

func (r userRepo) List(ctx context.Context, filter repository.ListFilter) ([]domain.User, error) {
	if err := r.tx.check(ctx); err != nil {
		return nil, err
	}
	var items []domain.User
	for _, u := range r.tx.users.all() {
		if matches(filter, u.ID, nil, string(u.Status), u.Username, u.Email, u.FullName) {
			items = append(items, u)
		}
	}
	return page(items, filter.Limit, filter.Offset, func(a, b domain.User) bool {
		return a.Username < b.Username
	}), nil
}
