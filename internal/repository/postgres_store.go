package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgUniqueViolation = "23505"

// Querier is satisfied by *pgxpool.Pool and pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type postgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore builds a Store over a pgx pool.
func NewPostgresStore(pool *pgxpool.Pool) Store {
	return &postgresStore{pool: pool}
}

func (s *postgresStore) Begin(ctx context.Context) (Tx, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return nil, fmt.Errorf("store.Begin: %w", err)
	}
	return &postgresTx{tx: tx}, nil
}

func (s *postgresStore) ActivityLog() ActivityLogRepository {
	return NewActivityLogRepository(s.pool)
}

func (s *postgresStore) StatusHistory() StatusHistoryRepository {
	return NewStatusHistoryRepository(s.pool)
}

func (s *postgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

type postgresTx struct {
	tx    pgx.Tx
	hooks []func(context.Context)
	done  bool
}

func (t *postgresTx) Tickets() TicketRepository   { return NewTicketRepository(t.tx) }
func (t *postgresTx) Assets() AssetRepository     { return NewAssetRepository(t.tx) }
func (t *postgresTx) Projects() ProjectRepository { return NewProjectRepository(t.tx) }
func (t *postgresTx) Users() UserRepository       { return NewUserRepository(t.tx) }

func (t *postgresTx) AfterCommit(fn func(context.Context)) {
	t.hooks = append(t.hooks, fn)
}

func (t *postgresTx) Commit(ctx context.Context) error {
	if t.done {
		return errors.New("tx already finished")
	}
	t.done = true
	if err := t.tx.Commit(ctx); err != nil {
		t.hooks = nil
		return fmt.Errorf("tx.Commit: %w", err)
	}
	hooks := t.hooks
	t.hooks = nil
	for _, fn := range hooks {
		fn(ctx)
	}
	return nil
}

func (t *postgresTx) Rollback(ctx context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	t.hooks = nil
	if err := t.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("tx.Rollback: %w", err)
	}
	return nil
}

// translate maps driver errors onto repository sentinels.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return fmt.Errorf("%s: %s: %w", op, pgErr.ConstraintName, ErrDuplicate)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func execOne(ctx context.Context, q Querier, op, query string, args ...any) error {
	tag, err := q.Exec(ctx, query, args...)
	if err != nil {
		return translate(op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// listQuery appends filter clauses to base, numbering placeholders as it goes.
func listQuery(base string, filter ListFilter, searchCols []string, orderBy string) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.OwnerID != nil {
		args = append(args, *filter.OwnerID)
		clauses = append(clauses, fmt.Sprintf("owner_id=$%d", len(args)))
	}
	if filter.AssigneeID != nil {
		args = append(args, *filter.AssigneeID)
		clauses = append(clauses, fmt.Sprintf("assignee_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" && len(searchCols) > 0 {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		ors := make([]string, len(searchCols))
		for i, col := range searchCols {
			ors[i] = fmt.Sprintf("LOWER(%s) LIKE %s", col, placeholder)
		}
		clauses = append(clauses, "("+strings.Join(ors, " OR ")+")")
	}

	limit, offset := Normalize(filter.Limit, filter.Offset)
	query := fmt.Sprintf(`%s WHERE %s ORDER BY %s LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), orderBy, limit, offset)
	return query, args
}
