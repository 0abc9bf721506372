// Package memory keeps franchises, branches and separated products in
// process memory. It backs the "memory" storage backend and the core tests.
package memory

import (
	"context"
	"slices"
	"sync"

	apperrors "franchise-inventory/internal/common/errors"
	"franchise-inventory/internal/inventory"
	"franchise-inventory/internal/models"
)

type record[T any] struct {
	seq   int
	value T
}

// Store is safe for concurrent use. Every value handed in or out is copied.
type Store struct {
	mu         sync.RWMutex
	seq        int
	franchises map[string]record[models.Franchise]
	branches   map[string]record[models.Branch]
	products   map[string]record[models.Product]
}

func New() *Store {
	return &Store{
		franchises: make(map[string]record[models.Franchise]),
		branches:   make(map[string]record[models.Branch]),
		products:   make(map[string]record[models.Product]),
	}
}

func (s *Store) Franchises() *FranchiseRepository { return &FranchiseRepository{s: s} }
func (s *Store) Branches() *BranchRepository { return &BranchRepository{s: s} }
func (s *Store) Products() *ProductRepository { return &ProductRepository{s: s} }

func (s *Store) nextSeq(existing int, ok bool) int {
	if ok {
		return existing
	}
	s.seq++
	return s.seq
}

func sorted[T any](m map[string]record[T], keep func(T) bool) []T {
	recs := make([]record[T], 0, len(m))
	for _, r := range m {
		if keep(r.value) {
			recs = append(recs, r)
		}
	}
	slices.SortFunc(recs, func(a, b record[T]) int { return a.seq - b.seq })
	out := make([]T, len(recs))
	for i, r := range recs {
		out[i] = r.value
	}
	return out
}

func cloneBranch(b models.Branch) models.Branch {
	if b.StorageStrategy == models.StrategySeparated || len(b.Products) == 0 {
		b.Products = nil
		return b
	}
	b.Products = slices.Clone(b.Products)
	return b
}

// ==========================
// Franchises
// ==========================

type FranchiseRepository struct{ s *Store }

var _ inventory.FranchiseRepository = (*FranchiseRepository)(nil)

func (r *FranchiseRepository) Save(ctx context.Context, f models.Franchise) (models.Franchise, error) {
	if err := ctx.Err(); err != nil {
		return models.Franchise{}, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	prev, ok := r.s.franchises[f.ID]
	r.s.franchises[f.ID] = record[models.Franchise]{seq: r.s.nextSeq(prev.seq, ok), value: f}
	return f, nil
}

func (r *FranchiseRepository) FindByID(ctx context.Context, id string) (models.Franchise, error) {
	if err := ctx.Err(); err != nil {
		return models.Franchise{}, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rec, ok := r.s.franchises[id]
	if !ok {
		return models.Franchise{}, apperrors.NewNotFoundError("franchise", id)
	}
	return rec.value, nil
}

func (r *FranchiseRepository) FindAll(ctx context.Context) ([]models.Franchise, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return sorted(r.s.franchises, func(models.Franchise) bool { return true }), nil
}

func (r *FranchiseRepository) DeleteByID(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.franchises, id)
	return nil
}

// ==========================
// Branches
// ==========================

type BranchRepository struct{ s *Store }

var _ inventory.BranchRepository = (*BranchRepository)(nil)

func (r *BranchRepository) Save(ctx context.Context, b models.Branch) (models.Branch, error) {
	if err := ctx.Err(); err != nil {
		return models.Branch{}, err
	}
	b = cloneBranch(b)
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	prev, ok := r.s.branches[b.ID]
	r.s.branches[b.ID] = record[models.Branch]{seq: r.s.nextSeq(prev.seq, ok), value: b}
	return cloneBranch(b), nil
}

func (r *BranchRepository) FindByID(ctx context.Context, id string) (models.Branch, error) {
	if err := ctx.Err(); err != nil {
		return models.Branch{}, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rec, ok := r.s.branches[id]
	if !ok {
		return models.Branch{}, apperrors.NewNotFoundError("branch", id)
	}
	return cloneBranch(rec.value), nil
}

func (r *BranchRepository) FindByFranchiseID(ctx context.Context, franchiseID string) ([]models.Branch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := sorted(r.s.branches, func(b models.Branch) bool { return b.FranchiseID == franchiseID })
	for i := range out {
		out[i] = cloneBranch(out[i])
	}
	return out, nil
}

func (r *BranchRepository) DeleteByID(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.branches, id)
	return nil
}

// AppendEmbeddedProduct checks the size condition and appends under the
// store lock.
func (r *BranchRepository) AppendEmbeddedProduct(ctx context.Context, branchID string, p models.Product, limit int) (models.Branch, error) {
	if err := ctx.Err(); err != nil {
		return models.Branch{}, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.branches[branchID]
	if !ok {
		return models.Branch{}, apperrors.NewNotFoundError("branch", branchID)
	}
	b := rec.value
	if b.StorageStrategy == models.StrategySeparated || len(b.Products) >= limit {
		return models.Branch{}, inventory.ErrEmbeddedListFull
	}

	products := make([]models.Product, len(b.Products), len(b.Products)+1)
	copy(products, b.Products)
	b.Products = append(products, p)
	rec.value = b
	r.s.branches[branchID] = rec
	return cloneBranch(b), nil
}

// FindBranchIDByProductID scans every branch; the store has no secondary index.
func (r *BranchRepository) FindBranchIDByProductID(ctx context.Context, productID string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for id, rec := range r.s.branches {
		if _, ok := rec.value.FindEmbedded(productID); ok {
			return id, nil
		}
	}
	return "", apperrors.NewNotFoundError("product", productID)
}

// ==========================
// Separated products
// ==========================

type ProductRepository struct{ s *Store }

var _ inventory.ProductRepository = (*ProductRepository)(nil)

func (r *ProductRepository) Save(ctx context.Context, p models.Product) (models.Product, error) {
	if err := ctx.Err(); err != nil {
		return models.Product{}, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	prev, ok := r.s.products[p.ID]
	r.s.products[p.ID] = record[models.Product]{seq: r.s.nextSeq(prev.seq, ok), value: p}
	return p, nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id string) (models.Product, error) {
	if err := ctx.Err(); err != nil {
		return models.Product{}, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rec, ok := r.s.products[id]
	if !ok {
		return models.Product{}, apperrors.NewNotFoundError("product", id)
	}
	return rec.value, nil
}

func (r *ProductRepository) FindByBranchID(ctx context.Context, branchID string) ([]models.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return sorted(r.s.products, func(p models.Product) bool { return p.BranchID == branchID }), nil
}

func (r *ProductRepository) FindByFranchiseID(ctx context.Context, franchiseID string) ([]models.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return sorted(r.s.products, func(p models.Product) bool { return p.FranchiseID == franchiseID }), nil
}

func (r *ProductRepository) FindTopStockByFranchise(ctx context.Context, franchiseID string, limit int) ([]models.Product, error) {
	all, err := r.FindByFranchiseID(ctx, franchiseID)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(all, func(a, b models.Product) int { return b.Stock - a.Stock })
	if limit >= 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r *ProductRepository) DeleteByID(ctx context.Context, id string) (models.Product, error) {
	if err := ctx.Err(); err != nil {
		return models.Product{}, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.products[id]
	if !ok {
		return models.Product{}, apperrors.NewNotFoundError("product", id)
	}
	delete(r.s.products, id)
	return rec.value, nil
}
