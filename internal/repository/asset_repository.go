package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/itops-service/internal/domain"
)

const assetColumns = `id, owner_id, assignee_id, name, asset_tag, serial_number, location, status, created_at, updated_at`

type assetRepository struct {
	q Querier
}

// NewAssetRepository instantiates repository.
func NewAssetRepository(q Querier) AssetRepository {
	return &assetRepository{q: q}
}

func (r *assetRepository) Create(ctx context.Context, asset *domain.Asset) error {
	const query = `
        INSERT INTO assets (id, owner_id, assignee_id, name, asset_tag, serial_number, location, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING created_at, updated_at`
	err := r.q.QueryRow(ctx, query,
		asset.ID,
		asset.OwnerID,
		asset.AssigneeID,
		asset.Name,
		asset.AssetTag,
		asset.SerialNumber,
		asset.Location,
		asset.Status,
	).Scan(&asset.CreatedAt, &asset.UpdatedAt)
	return translate("assets.Create", err)
}

func (r *assetRepository) Update(ctx context.Context, asset *domain.Asset) error {
	const query = `
        UPDATE assets SET assignee_id=$1, name=$2, asset_tag=$3, serial_number=$4, location=$5,
            status=$6, updated_at=NOW()
        WHERE id=$7
        RETURNING updated_at`
	err := r.q.QueryRow(ctx, query,
		asset.AssigneeID,
		asset.Name,
		asset.AssetTag,
		asset.SerialNumber,
		asset.Location,
		asset.Status,
		asset.ID,
	).Scan(&asset.UpdatedAt)
	return translate("assets.Update", err)
}

func (r *assetRepository) Delete(ctx context.Context, id string) error {
	return execOne(ctx, r.q, "assets.Delete", `DELETE FROM assets WHERE id=$1`, id)
}

func (r *assetRepository) GetByID(ctx context.Context, id string) (*domain.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM assets WHERE id=$1 FOR UPDATE`
	asset, err := scanAsset(r.q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, translate("assets.GetByID", err)
	}
	return asset, nil
}

func (r *assetRepository) List(ctx context.Context, filter ListFilter) ([]domain.Asset, error) {
	query, args := listQuery(`SELECT `+assetColumns+` FROM assets`, filter,
		[]string{"name", "asset_tag", "serial_number", "location"}, "name ASC")
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, translate("assets.List", err)
	}
	defer rows.Close()

	var result []domain.Asset
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, translate("assets.List", err)
		}
		result = append(result, *asset)
	}
	return result, rows.Err()
}

func scanAsset(row pgx.Row) (*domain.Asset, error) {
	var asset domain.Asset
	if err := row.Scan(
		&asset.ID,
		&asset.OwnerID,
		&asset.AssigneeID,
		&asset.Name,
		&asset.AssetTag,
		&asset.SerialNumber,
		&asset.Location,
		&asset.Status,
		&asset.CreatedAt,
		&asset.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &asset, nil
}
