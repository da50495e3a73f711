package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/itops-service/internal/domain"
)

const ticketColumns = `id, owner_id, assignee_id, title, description, status, priority,
               resolution_note, created_at, updated_at, closed_at`

type ticketRepository struct {
	q Querier
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(q Querier) TicketRepository {
	return &ticketRepository{q: q}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (id, owner_id, assignee_id, title, description, status, priority, resolution_note, closed_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING created_at, updated_at`
	err := r.q.QueryRow(ctx, query,
		ticket.ID,
		ticket.OwnerID,
		ticket.AssigneeID,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.ResolutionNote,
		ticket.ClosedAt,
	).Scan(&ticket.CreatedAt, &ticket.UpdatedAt)
	return translate("tickets.Create", err)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET assignee_id=$1, title=$2, description=$3, status=$4, priority=$5,
            resolution_note=$6, closed_at=$7, updated_at=NOW()
        WHERE id=$8
        RETURNING updated_at`
	err := r.q.QueryRow(ctx, query,
		ticket.AssigneeID,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.ResolutionNote,
		ticket.ClosedAt,
		ticket.ID,
	).Scan(&ticket.UpdatedAt)
	return translate("tickets.Update", err)
}

func (r *ticketRepository) Delete(ctx context.Context, id string) error {
	return execOne(ctx, r.q, "tickets.Delete", `DELETE FROM tickets WHERE id=$1`, id)
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1 FOR UPDATE`
	ticket, err := scanTicket(r.q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, translate("tickets.GetByID", err)
	}
	return ticket, nil
}

func (r *ticketRepository) List(ctx context.Context, filter ListFilter) ([]domain.Ticket, error) {
	query, args := listQuery(`SELECT `+ticketColumns+` FROM tickets`, filter,
		[]string{"title", "description"}, "updated_at DESC")
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, translate("tickets.List", err)
	}
	defer rows.Close()

	var result []domain.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, translate("tickets.List", err)
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := row.Scan(
		&ticket.ID,
		&ticket.OwnerID,
		&ticket.AssigneeID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Status,
		&ticket.Priority,
		&ticket.ResolutionNote,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&ticket.ClosedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}
