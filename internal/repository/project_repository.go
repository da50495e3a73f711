package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/itops-service/internal/domain"
)

const projectColumns = `id, owner_id, assignee_id, name, description, priority, status, created_at, updated_at`

type projectRepository struct {
	q Querier
}

// NewProjectRepository instantiates repository.
func NewProjectRepository(q Querier) ProjectRepository {
	return &projectRepository{q: q}
}

func (r *projectRepository) Create(ctx context.Context, project *domain.Project) error {
	const query = `
        INSERT INTO projects (id, owner_id, assignee_id, name, description, priority, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING created_at, updated_at`
	err := r.q.QueryRow(ctx, query,
		project.ID,
		project.OwnerID,
		project.AssigneeID,
		project.Name,
		project.Description,
		project.Priority,
		project.Status,
	).Scan(&project.CreatedAt, &project.UpdatedAt)
	return translate("projects.Create", err)
}

func (r *projectRepository) Update(ctx context.Context, project *domain.Project) error {
	const query = `
        UPDATE projects SET assignee_id=$1, name=$2, description=$3, priority=$4, status=$5, updated_at=NOW()
        WHERE id=$6
        RETURNING updated_at`
	err := r.q.QueryRow(ctx, query,
		project.AssigneeID,
		project.Name,
		project.Description,
		project.Priority,
		project.Status,
		project.ID,
	).Scan(&project.UpdatedAt)
	return translate("projects.Update", err)
}

func (r *projectRepository) Delete(ctx context.Context, id string) error {
	return execOne(ctx, r.q, "projects.Delete", `DELETE FROM projects WHERE id=$1`, id)
}

func (r *projectRepository) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id=$1 FOR UPDATE`
	project, err := scanProject(r.q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, translate("projects.GetByID", err)
	}
	return project, nil
}

func (r *projectRepository) List(ctx context.Context, filter ListFilter) ([]domain.Project, error) {
	query, args := listQuery(`SELECT `+projectColumns+` FROM projects`, filter,
		[]string{"name", "description"}, "updated_at DESC")
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, translate("projects.List", err)
	}
	defer rows.Close()

	var result []domain.Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, translate("projects.List", err)
		}
		result = append(result, *project)
	}
	return result, rows.Err()
}

func scanProject(row pgx.Row) (*domain.Project, error) {
	var project domain.Project
	if err := row.Scan(
		&project.ID,
		&project.OwnerID,
		&project.AssigneeID,
		&project.Name,
		&project.Description,
		&project.Priority,
		&project.Status,
		&project.CreatedAt,
		&project.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &project, nil
}
