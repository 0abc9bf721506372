package inventory

import (
	"context"
	"fmt"
	"slices"

	"golang.org/x/sync/errgroup"

	apperrors "franchise-inventory/internal/common/errors"
	"franchise-inventory/internal/models"
)

// BranchNotFoundLabel replaces the branch name when a top product points at
// a branch that no longer resolves.
const BranchNotFoundLabel = "branch not found"

// BranchTopProduct is a per-branch top product joined with its branch name.
type BranchTopProduct struct {
	models.Product
	BranchName string `json:"branchName"`
}

// ProductsByBranch returns the separated products of the branch followed by
// its embedded products. A missing branch yields an empty result.
func (s *Service) ProductsByBranch(ctx context.Context, branchID string) ([]models.Product, error) {
	if err := requireID("branch id", branchID); err != nil {
		return nil, err
	}

	separated, err := s.products.FindByBranchID(ctx, branchID)
	if err != nil {
		return nil, storageErr("findProductsByBranch", err)
	}

	branch, err := s.branches.FindByID(ctx, branchID)
	if err != nil && !apperrors.IsNotFound(err) {
		return nil, storageErr("findBranch", err)
	}

	embedded := branch.EmbeddedProducts()
	out := make([]models.Product, 0, len(separated)+len(embedded))
	out = append(out, separated...)
	out = append(out, embedded...)
	return out, nil
}

// TopStockProductPerBranch returns the highest-stock product of every branch
// of the franchise, in branch order. Branches without products are skipped.
func (s *Service) TopStockProductPerBranch(ctx context.Context, franchiseID string) ([]models.Product, error) {
	if err := requireID("franchise id", franchiseID); err != nil {
		return nil, err
	}

	branches, err := s.branches.FindByFranchiseID(ctx, franchiseID)
	if err != nil {
		return nil, storageErr("findBranchesByFranchise", err)
	}
	return s.topPerBranch(ctx, branches)
}

// TopStockProductPerBranchWithName is TopStockProductPerBranch joined with
// each product's branch name.
func (s *Service) TopStockProductPerBranchWithName(ctx context.Context, franchiseID string) ([]BranchTopProduct, error) {
	if err := requireID("franchise id", franchiseID); err != nil {
		return nil, err
	}

	branches, err := s.branches.FindByFranchiseID(ctx, franchiseID)
	if err != nil {
		return nil, storageErr("findBranchesByFranchise", err)
	}
	tops, err := s.topPerBranch(ctx, branches)
	if err != nil {
		return nil, err
	}

	names := make(map[string]string, len(branches))
	for _, b := range branches {
		names[b.ID] = b.Name
	}

	out := make([]BranchTopProduct, 0, len(tops))
	for _, p := range tops {
		name, ok := names[p.BranchID]
		if !ok {
			name, err = s.branchName(ctx, p.BranchID)
			if err != nil {
				return nil, err
			}
		}
		out = append(out, BranchTopProduct{Product: p, BranchName: name})
	}
	return out, nil
}

func (s *Service) branchName(ctx context.Context, branchID string) (string, error) {
	if branchID == "" {
		return BranchNotFoundLabel, nil
	}
	b, err := s.branches.FindByID(ctx, branchID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return BranchNotFoundLabel, nil
		}
		return "", storageErr("findBranch", err)
	}
	return b.Name, nil
}

func (s *Service) topPerBranch(ctx context.Context, branches []models.Branch) ([]models.Product, error) {
	found := make([]*models.Product, len(branches))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.fanout)
	for i, b := range branches {
		g.Go(func() error {
			p, ok, err := s.topOfBranch(gctx, b)
			if err != nil {
				return err
			}
			if ok {
				found[i] = &p
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]models.Product, 0, len(branches))
	for _, p := range found {
		if p != nil {
			out = append(out, *p)
		}
	}
	return out, nil
}

// topOfBranch reads the embedded list when the branch is tagged EMBEDDED and
// holds products, and the separated store otherwise. Products a full branch
// has in the separated store are not consulted while its embedded list is
// non-empty.
func (s *Service) topOfBranch(ctx context.Context, b models.Branch) (models.Product, bool, error) {
	if b.StorageStrategy == models.StrategyEmbedded && b.HasEmbedded() {
		p, ok := maxStock(b.EmbeddedProducts())
		return p, ok, nil
	}

	if err := ctx.Err(); err != nil {
		return models.Product{}, false, err
	}
	products, err := s.products.FindByBranchID(ctx, b.ID)
	if err != nil {
		return models.Product{}, false, storageErr("findProductsByBranch", err)
	}
	p, ok := maxStock(products)
	return p, ok, nil
}

// maxStock keeps the first product seen on equal stock.
func maxStock(products []models.Product) (models.Product, bool) {
	if len(products) == 0 {
		return models.Product{}, false
	}
	best := products[0]
	for _, p := range products[1:] {
		if p.Stock > best.Stock {
			best = p
		}
	}
	return best, true
}

// MaxTopStockLimit bounds the n accepted by TopStockProductsGlobal.
const MaxTopStockLimit = 1000

// TopStockProductsGlobal merges the separated top-stock candidates with every
// embedded product of the franchise and returns the n highest by stock. n <= 0
// uses the configured default.
func (s *Service) TopStockProductsGlobal(ctx context.Context, franchiseID string, n int) ([]models.Product, error) {
	if err := requireID("franchise id", franchiseID); err != nil {
		return nil, err
	}
	if n > MaxTopStockLimit {
		return nil, apperrors.NewInvalidInputError(fmt.Sprintf("limit must not exceed %d", MaxTopStockLimit))
	}
	if n <= 0 {
		n = s.topStockLimit
	}
	candidateLimit := max(s.candidateLimit, n)

	var (
		candidates []models.Product
		branches   []models.Branch
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		candidates, err = s.products.FindTopStockByFranchise(gctx, franchiseID, candidateLimit)
		if err != nil {
			return storageErr("findTopStockByFranchise", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		branches, err = s.branches.FindByFranchiseID(gctx, franchiseID)
		if err != nil {
			return storageErr("findBranchesByFranchise", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := make([]models.Product, 0, len(candidates))
	merged = append(merged, candidates...)
	for _, b := range branches {
		for _, p := range b.EmbeddedProducts() {
			if p.FranchiseID == "" {
				p.FranchiseID = b.FranchiseID
			}
			merged = append(merged, p)
		}
	}

	slices.SortStableFunc(merged, func(a, b models.Product) int {
		return b.Stock - a.Stock
	})
	if len(merged) > n {
		merged = merged[:n]
	}
	return merged, nil
}
