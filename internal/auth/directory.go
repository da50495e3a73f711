package auth

import (
	"context"

	"github.com/spec-kit/itops-service/internal/domain"
	"github.com/spec-kit/itops-service/internal/repository"
)

// Directory resolves the account behind a verified token.
type Directory interface {
	UserByID(ctx context.Context, id string) (*domain.User, error)
}

// StoreDirectory reads accounts through short read-only transactions.
type StoreDirectory struct {
	store repository.Store
}

func NewStoreDirectory(store repository.Store) *StoreDirectory {
	return &StoreDirectory{store: store}
}

func (d *StoreDirectory) UserByID(ctx context.Context, id string) (*domain.User, error) {
	return d.read(ctx, func(users repository.UserRepository) (*domain.User, error) {
		return users.GetByID(ctx, id)
	})
}

func (d *StoreDirectory) read(ctx context.Context, fn func(repository.UserRepository) (*domain.User, error)) (*domain.User, error) {
	tx, err := d.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()
	return fn(tx.Users())
}
