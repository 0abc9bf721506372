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

const productColumns = `id, franchise_id, branch_id, name, stock, created_at, updated_at`

// ProductRepository stores separated products.
type ProductRepository struct{ s *Store }

var _ inventory.ProductRepository = (*ProductRepository)(nil)

func scanProduct(row rowScanner) (models.Product, error) {
	var p models.Product
	err := row.Scan(&p.ID, &p.FranchiseID, &p.BranchID, &p.Name, &p.Stock, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *ProductRepository) Save(ctx context.Context, p models.Product) (models.Product, error) {
	defer observe("saveProduct", time.Now())

	_, err := r.s.db.ExecContext(ctx, `
		INSERT INTO products (`+productColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			stock = EXCLUDED.stock,
			updated_at = EXCLUDED.updated_at`,
		p.ID, p.FranchiseID, p.BranchID, p.Name, p.Stock, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return models.Product{}, apperrors.NewStorageFailureError("saveProduct", err)
	}
	return p, nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id string) (models.Product, error) {
	defer observe("findProduct", time.Now())

	p, err := scanProduct(r.s.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Product{}, apperrors.NewNotFoundError("product", id)
	}
	if err != nil {
		return models.Product{}, apperrors.NewStorageFailureError("findProduct", err)
	}
	return p, nil
}

func (r *ProductRepository) FindByBranchID(ctx context.Context, branchID string) ([]models.Product, error) {
	defer observe("findProductsByBranch", time.Now())
	return r.list(ctx, "findProductsByBranch",
		`SELECT `+productColumns+` FROM products WHERE branch_id = $1 ORDER BY created_at, id`, branchID)
}

func (r *ProductRepository) FindByFranchiseID(ctx context.Context, franchiseID string) ([]models.Product, error) {
	defer observe("findProductsByFranchise", time.Now())
	return r.list(ctx, "findProductsByFranchise",
		`SELECT `+productColumns+` FROM products WHERE franchise_id = $1 ORDER BY created_at, id`, franchiseID)
}

func (r *ProductRepository) FindTopStockByFranchise(ctx context.Context, franchiseID string, limit int) ([]models.Product, error) {
	defer observe("findTopStockByFranchise", time.Now())
	return r.list(ctx, "findTopStockByFranchise", `
		SELECT `+productColumns+` FROM products
		WHERE franchise_id = $1
		ORDER BY stock DESC, created_at, id
		LIMIT $2`, franchiseID, limit)
}

func (r *ProductRepository) list(ctx context.Context, op, query string, args ...interface{}) ([]models.Product, error) {
	rows, err := r.s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewStorageFailureError(op, err)
	}
	defer rows.Close()

	var out []models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, apperrors.NewStorageFailureError(op, err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageFailureError(op, err)
	}
	return out, nil
}

func (r *ProductRepository) DeleteByID(ctx context.Context, id string) (models.Product, error) {
	defer observe("deleteProduct", time.Now())

	p, err := scanProduct(r.s.db.QueryRowContext(ctx,
		`DELETE FROM products WHERE id = $1 RETURNING `+productColumns, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Product{}, apperrors.NewNotFoundError("product", id)
	}
	if err != nil {
		return models.Product{}, apperrors.NewStorageFailureError("deleteProduct", err)
	}
	return p, nil
}
