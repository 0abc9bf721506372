// Package postgres implements the repository gateways on PostgreSQL.
//
// Embedded products live in the branches.embedded_products JSONB array.
// The GIN index on that column serves the reverse lookup of an embedded
// product's branch.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"franchise-inventory/internal/common/logger"
	"franchise-inventory/internal/common/metrics"
	"franchise-inventory/internal/models"
)

const Schema = `
CREATE TABLE IF NOT EXISTS franchises (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS branches (
	id                TEXT PRIMARY KEY,
	franchise_id      TEXT NOT NULL,
	name              TEXT NOT NULL,
	storage_strategy  TEXT NOT NULL,
	embedded_products JSONB NOT NULL DEFAULT '[]'::jsonb,
	created_at        TIMESTAMPTZ NOT NULL,
	updated_at        TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS branches_franchise_idx ON branches (franchise_id);
CREATE INDEX IF NOT EXISTS branches_embedded_products_idx ON branches USING GIN (embedded_products jsonb_path_ops);

CREATE TABLE IF NOT EXISTS products (
	id           TEXT PRIMARY KEY,
	franchise_id TEXT NOT NULL,
	branch_id    TEXT NOT NULL,
	name         TEXT NOT NULL,
	stock        INTEGER NOT NULL CHECK (stock >= 0),
	created_at   TIMESTAMPTZ NOT NULL,
	updated_at   TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS products_branch_idx ON products (branch_id);
CREATE INDEX IF NOT EXISTS products_franchise_stock_idx ON products (franchise_id, stock DESC);
`

// Store groups the three gateways over one connection pool.
type Store struct {
	db     *sql.DB
	logger logger.Logger
}

func New(db *sql.DB, log logger.Logger) *Store {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Store{db: db, logger: log}
}

// Migrate creates the tables and indexes when they are missing.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	s.logger.Info("Postgres schema ready", nil)
	return nil
}

func (s *Store) Franchises() *FranchiseRepository { return &FranchiseRepository{s: s} }
func (s *Store) Branches() *BranchRepository { return &BranchRepository{s: s} }
func (s *Store) Products() *ProductRepository { return &ProductRepository{s: s} }

func observe(operation string, started time.Time) {
	metrics.StorageOperationDuration.WithLabelValues("postgres", operation).Observe(time.Since(started).Seconds())
}

// embeddedProduct is one element of branches.embedded_products.
type embeddedProduct struct {
	ID          string    `json:"id"`
	FranchiseID string    `json:"franchiseId,omitempty"`
	Name        string    `json:"name"`
	Stock       int       `json:"stock"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func encodeEmbedded(products []models.Product) ([]byte, error) {
	out := make([]embeddedProduct, len(products))
	for i, p := range products {
		out[i] = embeddedProduct{
			ID:          p.ID,
			FranchiseID: p.FranchiseID,
			Name:        p.Name,
			Stock:       p.Stock,
			CreatedAt:   p.CreatedAt,
			UpdatedAt:   p.UpdatedAt,
		}
	}
	return json.Marshal(out)
}

func decodeEmbedded(raw []byte) ([]models.Product, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var items []embeddedProduct
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode embedded products: %w", err)
	}
	if len(items) == 0 {
		return nil, nil
	}
	out := make([]models.Product, len(items))
	for i, e := range items {
		out[i] = models.Product{
			ID:          e.ID,
			FranchiseID: e.FranchiseID,
			Name:        e.Name,
			Stock:       e.Stock,
			CreatedAt:   e.CreatedAt,
			UpdatedAt:   e.UpdatedAt,
		}
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}
