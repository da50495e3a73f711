package repository

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestListQuery(t *testing.T) {
	t.Parallel()

	owner := "u-1"
	search := "  Printer "
	query, args := listQuery("SELECT * FROM tickets", ListFilter{
		OwnerID:    &owner,
		Statuses:   []string{"OPEN", "IN_PROGRESS"},
		SearchTerm: &search,
		Limit:      500,
		Offset:     -3,
	}, []string{"title", "description"}, "updated_at DESC")

	assert.Equal(t,
		"SELECT * FROM tickets WHERE 1=1 AND owner_id=$1 AND status IN ($2,$3) AND "+
			"(LOWER(title) LIKE $4 OR LOWER(description) LIKE $4) ORDER BY updated_at DESC LIMIT 200 OFFSET 0",
		query)
	assert.Equal(t, []any{"u-1", "OPEN", "IN_PROGRESS", "%printer%"}, args)
}

func TestListQuery_Defaults(t *testing.T) {
	t.Parallel()

	query, args := listQuery("SELECT * FROM assets", ListFilter{}, nil, "name ASC")
	assert.Equal(t, "SELECT * FROM assets WHERE 1=1 ORDER BY name ASC LIMIT 20 OFFSET 0", query)
	assert.Empty(t, args)
}

func TestTranslate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, translate("op", nil))
	assert.ErrorIs(t, translate("op", pgx.ErrNoRows), ErrNotFound)

	dup := translate("users.Create", &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "users_username_key"})
	assert.ErrorIs(t, dup, ErrDuplicate)
	assert.Contains(t, dup.Error(), "users_username_key")

	other := errors.New("connection reset")
	wrapped := translate("tickets.List", other)
	assert.ErrorIs(t, wrapped, other)
	assert.Contains(t, wrapped.Error(), "tickets.List")
}
