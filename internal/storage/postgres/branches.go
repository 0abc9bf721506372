package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	apperrors "franchise-inventory/internal/common/errors"
	"franchise-inventory/internal/inventory"
	"franchise-inventory/internal/models"
)

const branchColumns = `id, franchise_id, name, storage_strategy, embedded_products, created_at, updated_at`

type BranchRepository struct{ s *Store }

var _ inventory.BranchRepository = (*BranchRepository)(nil)

func scanBranch(row rowScanner) (models.Branch, error) {
	var (
		b        models.Branch
		strategy string
		raw      []byte
	)
	if err := row.Scan(&b.ID, &b.FranchiseID, &b.Name, &strategy, &raw, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return models.Branch{}, err
	}
	b.StorageStrategy = models.StorageStrategy(strategy)
	products, err := decodeEmbedded(raw)
	if err != nil {
		return models.Branch{}, err
	}
	b.Products = products
	return b, nil
}

func (r *BranchRepository) Save(ctx context.Context, b models.Branch) (models.Branch, error) {
	defer observe("saveBranch", time.Now())

	if b.StorageStrategy == models.StrategySeparated {
		b.Products = nil
	}
	raw, err := encodeEmbedded(b.Products)
	if err != nil {
		return models.Branch{}, apperrors.NewInternalError(err)
	}

	_, err = r.s.db.ExecContext(ctx, `
		INSERT INTO branches (`+branchColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			storage_strategy = EXCLUDED.storage_strategy,
			embedded_products = EXCLUDED.embedded_products,
			updated_at = EXCLUDED.updated_at`,
		b.ID, b.FranchiseID, b.Name, string(b.StorageStrategy), raw, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return models.Branch{}, apperrors.NewStorageFailureError("saveBranch", err)
	}
	return b, nil
}

func (r *BranchRepository) FindByID(ctx context.Context, id string) (models.Branch, error) {
	defer observe("findBranch", time.Now())

	b, err := scanBranch(r.s.db.QueryRowContext(ctx,
		`SELECT `+branchColumns+` FROM branches WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Branch{}, apperrors.NewNotFoundError("branch", id)
	}
	if err != nil {
		return models.Branch{}, apperrors.NewStorageFailureError("findBranch", err)
	}
	return b, nil
}

func (r *BranchRepository) FindByFranchiseID(ctx context.Context, franchiseID string) ([]models.Branch, error) {
	defer observe("findBranchesByFranchise", time.Now())

	rows, err := r.s.db.QueryContext(ctx,
		`SELECT `+branchColumns+` FROM branches WHERE franchise_id = $1 ORDER BY created_at, id`, franchiseID)
	if err != nil {
		return nil, apperrors.NewStorageFailureError("findBranchesByFranchise", err)
	}
	defer rows.Close()

	var out []models.Branch
	for rows.Next() {
		b, err := scanBranch(rows)
		if err != nil {
			return nil, apperrors.NewStorageFailureError("findBranchesByFranchise", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageFailureError("findBranchesByFranchise", err)
	}
	return out, nil
}

func (r *BranchRepository) DeleteByID(ctx context.Context, id string) error {
	defer observe("deleteBranch", time.Now())

	if _, err := r.s.db.ExecContext(ctx, `DELETE FROM branches WHERE id = $1`, id); err != nil {
		return apperrors.NewStorageFailureError("deleteBranch", err)
	}
	return nil
}

// AppendEmbeddedProduct appends in a single UPDATE guarded by the array
// length, so concurrent appends never push the list past limit.
func (r *BranchRepository) AppendEmbeddedProduct(ctx context.Context, branchID string, p models.Product, limit int) (models.Branch, error) {
	defer observe("appendEmbeddedProduct", time.Now())

	raw, err := encodeEmbedded([]models.Product{p})
	if err != nil {
		return models.Branch{}, apperrors.NewInternalError(err)
	}

	b, err := scanBranch(r.s.db.QueryRowContext(ctx, `
		UPDATE branches
		SET embedded_products = embedded_products || $2::jsonb
		WHERE id = $1
			AND storage_strategy <> 'SEPARATED'
			AND jsonb_array_length(embedded_products) < $3
		RETURNING `+branchColumns,
		branchID, raw, limit,
	))
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.Branch{}, apperrors.NewStorageFailureError("appendEmbeddedProduct", err)
	}

	var exists bool
	if err := r.s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM branches WHERE id = $1)`, branchID,
	).Scan(&exists); err != nil {
		return models.Branch{}, apperrors.NewStorageFailureError("appendEmbeddedProduct", err)
	}
	if !exists {
		return models.Branch{}, apperrors.NewNotFoundError("branch", branchID)
	}
	return models.Branch{}, inventory.ErrEmbeddedListFull
}

// FindBranchIDByProductID uses JSONB containment on the embedded list.
func (r *BranchRepository) FindBranchIDByProductID(ctx context.Context, productID string) (string, error) {
	defer observe("findBranchIdByProductId", time.Now())

	probe, err := json.Marshal([]map[string]string{{"id": productID}})
	if err != nil {
		return "", apperrors.NewInternalError(err)
	}

	var id string
	err = r.s.db.QueryRowContext(ctx,
		`SELECT id FROM branches WHERE embedded_products @> $1::jsonb LIMIT 1`, probe,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", apperrors.NewNotFoundError("product", productID)
	}
	if err != nil {
		return "", apperrors.NewStorageFailureError("findBranchIdByProductId", err)
	}
	return id, nil
}
