package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/itops-service/internal/domain"
)

const userColumns = `id, username, email, full_name, role, status, password_hash, created_at, updated_at`

type userRepository struct {
	q Querier
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(q Querier) UserRepository {
	return &userRepository{q: q}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (id, username, email, full_name, role, status, password_hash)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING created_at, updated_at`

	err := r.q.QueryRow(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.FullName,
		user.Role,
		user.Status,
		user.PasswordHash,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	return translate("users.Create", err)
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	const query = `
        UPDATE users SET username=$1, email=$2, full_name=$3, role=$4, status=$5, password_hash=$6, updated_at=NOW()
        WHERE id=$7
        RETURNING updated_at`

	err := r.q.QueryRow(ctx, query,
		user.Username,
		user.Email,
		user.FullName,
		user.Role,
		user.Status,
		user.PasswordHash,
		user.ID,
	).Scan(&user.UpdatedAt)
	return translate("users.Update", err)
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	return execOne(ctx, r.q, "users.Delete", `DELETE FROM users WHERE id=$1`, id)
}

// GetByID takes no row lock: owner-role lookups read users from every
// resource transaction.
func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := scanUser(r.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id))
	if err != nil {
		return nil, translate("users.GetByID", err)
	}
	return user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	user, err := scanUser(r.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username=$1`, username))
	if err != nil {
		return nil, translate("users.GetByUsername", err)
	}
	return user, nil
}

func (r *userRepository) List(ctx context.Context, filter ListFilter) ([]domain.User, error) {
	query, args := listQuery(`SELECT `+userColumns+` FROM users`, filter,
		[]string{"username", "email", "full_name"}, "username ASC")
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, translate("users.List", err)
	}
	defer rows.Close()

	var result []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, translate("users.List", err)
		}
		result = append(result, *user)
	}
	return result, rows.Err()
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.FullName,
		&user.Role,
		&user.Status,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}
