package repository

import (
	"context"
	"errors"

	"github.com/spec-kit/itops-service/internal/domain"
)

// ErrNotFound is returned when a keyed lookup matches nothing.
var ErrNotFound = domain.ErrNotFound

// ErrDuplicate is returned when a unique attribute (username, email, asset tag) is taken.
var ErrDuplicate = errors.New("repository: duplicate")

// ListFilter narrows resource listings. Zero values mean "no constraint".
type ListFilter struct {
	OwnerID    *string
	AssigneeID *string
	Statuses   []string
	SearchTerm *string
	Limit      int
	Offset     int
}

// ActivityFilter narrows activity log listings.
type ActivityFilter struct {
	EntityKind domain.ResourceKind
	EntityID   string
	ActorID    string
	Limit      int
	Offset     int
}

// Normalize applies the default page size and clamps negative offsets.
func Normalize(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 200 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	List(ctx context.Context, filter ListFilter) ([]domain.Ticket, error)
}

// AssetRepository encapsulates asset persistence.
type AssetRepository interface {
	Create(ctx context.Context, asset *domain.Asset) error
	Update(ctx context.Context, asset *domain.Asset) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Asset, error)
	List(ctx context.Context, filter ListFilter) ([]domain.Asset, error)
}

// ProjectRepository encapsulates project persistence.
type ProjectRepository interface {
	Create(ctx context.Context, project *domain.Project) error
	Update(ctx context.Context, project *domain.Project) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	List(ctx context.Context, filter ListFilter) ([]domain.Project, error)
}

// UserRepository encapsulates account persistence.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	List(ctx context.Context, filter ListFilter) ([]domain.User, error)
}

// ActivityLogRepository is append-only.
type ActivityLogRepository interface {
	// Append stores the entry. An entry whose ID already exists is ignored.
	Append(ctx context.Context, entry *domain.ActivityLogEntry) error
	List(ctx context.Context, filter ActivityFilter) ([]domain.ActivityLogEntry, error)
}

// StatusHistoryRepository is append-only.
type StatusHistoryRepository interface {
	// Append stores the entry. An entry whose ID already exists is ignored.
	Append(ctx context.Context, entry *domain.StatusHistoryEntry) error
	ListByEntity(ctx context.Context, kind domain.ResourceKind, entityID string) ([]domain.StatusHistoryEntry, error)
}

// Tx scopes resource repositories to one storage transaction.
type Tx interface {
	Tickets() TicketRepository
	Assets() AssetRepository
	Projects() ProjectRepository
	Users() UserRepository

	// AfterCommit registers fn to run once the underlying commit succeeded.
	// Hooks are dropped on rollback or failed commit.
	AfterCommit(fn func(ctx context.Context))
	Commit(ctx context.Context) error
	// Rollback is a no-op after Commit.
	Rollback(ctx context.Context) error
}

// Store opens transactions and exposes the audit repositories, which are
// written after commit and therefore outside any resource transaction.
type Store interface {
	Begin(ctx context.Context) (Tx, error)
	ActivityLog() ActivityLogRepository
	StatusHistory() StatusHistoryRepository
	Ping(ctx context.Context) error
}
