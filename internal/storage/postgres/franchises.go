package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	apperrors "franchise-inventory/internal/common/errors"
	"franchise-inventory/internal/inventory"
	"franchise-inventory/internal/models"
)

type FranchiseRepository struct{ s *Store }

var _ inventory.FranchiseRepository = (*FranchiseRepository)(nil)

func (r *FranchiseRepository) Save(ctx context.Context, f models.Franchise) (models.Franchise, error) {
	defer observe("saveFranchise", time.Now())

	_, err := r.s.db.ExecContext(ctx, `
		INSERT INTO franchises (id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, updated_at = EXCLUDED.updated_at`,
		f.ID, f.Name, f.CreatedAt, f.UpdatedAt,
	)
	if err != nil {
		return models.Franchise{}, apperrors.NewStorageFailureError("saveFranchise", err)
	}
	return f, nil
}

func (r *FranchiseRepository) FindByID(ctx context.Context, id string) (models.Franchise, error) {
	defer observe("findFranchise", time.Now())

	var f models.Franchise
	err := r.s.db.QueryRowContext(ctx, `
		SELECT id, name, created_at, updated_at FROM franchises WHERE id = $1`, id,
	).Scan(&f.ID, &f.Name, &f.CreatedAt, &f.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Franchise{}, apperrors.NewNotFoundError("franchise", id)
	}
	if err != nil {
		return models.Franchise{}, apperrors.NewStorageFailureError("findFranchise", err)
	}
	return f, nil
}

func (r *FranchiseRepository) FindAll(ctx context.Context) ([]models.Franchise, error) {
	defer observe("findAllFranchises", time.Now())

	rows, err := r.s.db.QueryContext(ctx, `
		SELECT id, name, created_at, updated_at FROM franchises ORDER BY created_at, id`)
	if err != nil {
		return nil, apperrors.NewStorageFailureError("findAllFranchises", err)
	}
	defer rows.Close()

	var out []models.Franchise
	for rows.Next() {
		var f models.Franchise
		if err := rows.Scan(&f.ID, &f.Name, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, apperrors.NewStorageFailureError("findAllFranchises", err)
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageFailureError("findAllFranchises", err)
	}
	return out, nil
}

func (r *FranchiseRepository) DeleteByID(ctx context.Context, id string) error {
	defer observe("deleteFranchise", time.Now())

	if _, err := r.s.db.ExecContext(ctx, `DELETE FROM franchises WHERE id = $1`, id); err != nil {
		return apperrors.NewStorageFailureError("deleteFranchise", err)
	}
	return nil
}
