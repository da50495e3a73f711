// Package memory is a transactional in-process Store. Writes are staged per
// transaction and applied atomically on Commit; AfterCommit hooks run after
// the apply and outside the store lock.
package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/spec-kit/itops-service/internal/domain"
	"github.com/spec-kit/itops-service/internal/repository"
)

var errTxDone = errors.New("memory: transaction already finished")

type Store struct {
	mu sync.RWMutex

	tickets  map[string]domain.Ticket
	assets   map[string]domain.Asset
	projects map[string]domain.Project
	users    map[string]domain.User

	activity    []domain.ActivityLogEntry
	activityIDs map[string]struct{}
	history     []domain.StatusHistoryEntry
	historyIDs  map[string]struct{}

	failCommit error
	failAudit  error
	now        func() time.Time
}

func NewStore() *Store {
	return &Store{
		tickets:     make(map[string]domain.Ticket),
		assets:      make(map[string]domain.Asset),
		projects:    make(map[string]domain.Project),
		users:       make(map[string]domain.User),
		activityIDs: make(map[string]struct{}),
		historyIDs:  make(map[string]struct{}),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// SeedUsers inserts accounts directly, bypassing transactions.
func (s *Store) SeedUsers(users ...domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range users {
		if u.Status == "" {
			u.Status = domain.UserStatusActive
		}
		if u.CreatedAt.IsZero() {
			u.CreatedAt = s.now()
			u.UpdatedAt = u.CreatedAt
		}
		s.users[u.ID] = u
	}
}

// FailNextCommit makes the next Commit return err without applying anything.
func (s *Store) FailNextCommit(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failCommit = err
}

// FailAuditWrites makes every audit Append return err until called with nil.
func (s *Store) FailAuditWrites(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failAudit = err
}

func (s *Store) Begin(ctx context.Context) (repository.Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t := &tx{store: s}
	t.tickets = newTable(s, func(s *Store) map[string]domain.Ticket { return s.tickets })
	t.assets = newTable(s, func(s *Store) map[string]domain.Asset { return s.assets })
	t.projects = newTable(s, func(s *Store) map[string]domain.Project { return s.projects })
	t.users = newTable(s, func(s *Store) map[string]domain.User { return s.users })
	return t, nil
}

func (s *Store) ActivityLog() repository.ActivityLogRepository {
	return activityLog{s: s}
}

func (s *Store) StatusHistory() repository.StatusHistoryRepository {
	return statusHistory{s: s}
}

func (s *Store) Ping(context.Context) error { return nil }

type tx struct {
	store    *Store
	tickets  *table[domain.Ticket]
	assets   *table[domain.Asset]
	projects *table[domain.Project]
	users    *table[domain.User]
	hooks    []func(context.Context)
	done     bool
}

func (t *tx) Tickets() repository.TicketRepository   { return ticketRepo{tx: t} }
func (t *tx) Assets() repository.AssetRepository     { return assetRepo{tx: t} }
func (t *tx) Projects() repository.ProjectRepository { return projectRepo{tx: t} }
func (t *tx) Users() repository.UserRepository       { return userRepo{tx: t} }

func (t *tx) AfterCommit(fn func(context.Context)) {
	t.hooks = append(t.hooks, fn)
}

func (t *tx) Commit(ctx context.Context) error {
	if t.done {
		return errTxDone
	}
	t.done = true
	if err := ctx.Err(); err != nil {
		t.hooks = nil
		return err
	}

	s := t.store
	s.mu.Lock()
	if err := s.failCommit; err != nil {
		s.failCommit = nil
		s.mu.Unlock()
		t.hooks = nil
		return err
	}
	t.tickets.apply()
	t.assets.apply()
	t.projects.apply()
	t.users.apply()
	s.mu.Unlock()

	hooks := t.hooks
	t.hooks = nil
	for _, fn := range hooks {
		fn(ctx)
	}
	return nil
}

func (t *tx) Rollback(context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	t.hooks = nil
	return nil
}

func (t *tx) check(ctx context.Context) error {
	if t.done {
		return errTxDone
	}
	return ctx.Err()
}

// table overlays one transaction's writes on a committed map.
type table[T any] struct {
	store   *Store
	base    func(*Store) map[string]T
	writes  map[string]T
	deleted map[string]bool
}

func newTable[T any](s *Store, base func(*Store) map[string]T) *table[T] {
	return &table[T]{store: s, base: base, writes: map[string]T{}, deleted: map[string]bool{}}
}

func (t *table[T]) get(id string) (T, bool) {
	var zero T
	if t.deleted[id] {
		return zero, false
	}
	if v, ok := t.writes[id]; ok {
		return v, true
	}
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()
	v, ok := t.base(t.store)[id]
	return v, ok
}

func (t *table[T]) put(id string, v T) {
	delete(t.deleted, id)
	t.writes[id] = v
}

func (t *table[T]) remove(id string) {
	delete(t.writes, id)
	t.deleted[id] = true
}

// all returns the merged view of committed and staged rows.
func (t *table[T]) all() []T {
	t.store.mu.RLock()
	merged := make(map[string]T, len(t.base(t.store))+len(t.writes))
	for id, v := range t.base(t.store) {
		merged[id] = v
	}
	t.store.mu.RUnlock()
	for id, v := range t.writes {
		merged[id] = v
	}
	for id := range t.deleted {
		delete(merged, id)
	}
	out := make([]T, 0, len(merged))
	for _, v := range merged {
		out = append(out, v)
	}
	return out
}

// apply must be called with the store lock held.
func (t *table[T]) apply() {
	base := t.base(t.store)
	for id := range t.deleted {
		delete(base, id)
	}
	for id, v := range t.writes {
		base[id] = v
	}
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneTime(p *time.Time) *time.Time {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func matches(filter repository.ListFilter, ownerID string, assigneeID *string, status string, texts ...string) bool {
	if filter.OwnerID != nil && *filter.OwnerID != ownerID {
		return false
	}
	if filter.AssigneeID != nil && (assigneeID == nil || *assigneeID != *filter.AssigneeID) {
		return false
	}
	if len(filter.Statuses) > 0 {
		found := false
		for _, s := range filter.Statuses {
			if s == status {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if filter.SearchTerm != nil {
		term := strings.ToLower(strings.TrimSpace(*filter.SearchTerm))
		if term == "" {
			return true
		}
		for _, text := range texts {
			if strings.Contains(strings.ToLower(text), term) {
				return true
			}
		}
		return false
	}
	return true
}

func page[T any](items []T, limit, offset int, less func(a, b T) bool) []T {
	limit, offset = repository.Normalize(limit, offset)
	sort.SliceStable(items, func(i, j int) bool { return less(items[i], items[j]) })
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return append([]T(nil), items[offset:end]...)
}
