package inventory

import (
	"context"

	apperrors "franchise-inventory/internal/common/errors"
	"franchise-inventory/internal/common/metrics"
	"franchise-inventory/internal/models"
)

// The resolver handles products known only by id. It tries the separated
// store first and, only when that reports not found, resolves the owning
// branch through the reverse lookup and rewrites a copy of its embedded list.
// Other separated-store failures are returned without falling back.

// locateEmbedded returns the branch embedding productID and the product with
// its branch id back-filled.
func (s *Service) locateEmbedded(ctx context.Context, productID string) (models.Branch, models.Product, error) {
	branchID, err := s.branches.FindBranchIDByProductID(ctx, productID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return models.Branch{}, models.Product{}, apperrors.NewNotFoundError("product", productID)
		}
		return models.Branch{}, models.Product{}, storageErr("findBranchIdByProductId", err)
	}

	branch, err := s.branches.FindByID(ctx, branchID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			// stale reverse reference
			return models.Branch{}, models.Product{}, apperrors.NewNotFoundError("product", productID)
		}
		return models.Branch{}, models.Product{}, storageErr("findBranch", err)
	}

	p, ok := branch.FindEmbedded(productID)
	if !ok {
		return models.Branch{}, models.Product{}, apperrors.NewNotFoundError("product", productID)
	}
	return branch, p, nil
}

// mutate applies fn to the product wherever it is stored and persists it.
func (s *Service) mutate(ctx context.Context, op, productID string, fn func(models.Product) models.Product) (models.Product, models.ProductLocation, error) {
	p, err := s.products.FindByID(ctx, productID)
	switch {
	case err == nil:
		saved, err := s.products.Save(ctx, fn(p))
		if err != nil {
			return models.Product{}, models.ProductLocation{}, storageErr("saveProduct", err)
		}
		return saved, models.Separated(saved.BranchID), nil
	case !apperrors.IsNotFound(err):
		return models.Product{}, models.ProductLocation{}, storageErr("findProduct", err)
	}

	branch, _, err := s.locateEmbedded(ctx, productID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			metrics.EmbeddedFallbacks.WithLabelValues(op, "miss").Inc()
		}
		return models.Product{}, models.ProductLocation{}, err
	}
	metrics.EmbeddedFallbacks.WithLabelValues(op, "hit").Inc()

	list := make([]models.Product, len(branch.Products))
	copy(list, branch.Products)

	var updated models.Product
	for i := range list {
		if list[i].ID == productID {
			list[i] = fn(list[i])
			updated = list[i].InBranch(branch.ID)
			break
		}
	}

	if _, err := s.branches.Save(ctx, branch.WithProducts(list, s.now())); err != nil {
		return models.Product{}, models.ProductLocation{}, storageErr("saveBranch", err)
	}

	s.logger.Debug("Embedded product mutated", map[string]interface{}{
		"operation": op,
		"productId": productID,
		"branchId":  branch.ID,
	})
	return updated, models.EmbeddedIn(branch.ID), nil
}

// remove deletes the product from whichever representation holds it. A
// product found nowhere yields a zero Product and no error.
func (s *Service) remove(ctx context.Context, productID string) (models.ProductLocation, models.Product, error) {
	removed, err := s.products.DeleteByID(ctx, productID)
	if err == nil {
		return models.Separated(removed.BranchID), removed, nil
	}
	if !apperrors.IsNotFound(err) {
		return models.ProductLocation{}, models.Product{}, storageErr("deleteProduct", err)
	}

	branch, p, err := s.locateEmbedded(ctx, productID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			metrics.EmbeddedFallbacks.WithLabelValues("delete", "miss").Inc()
			return models.ProductLocation{}, models.Product{}, nil
		}
		return models.ProductLocation{}, models.Product{}, err
	}
	metrics.EmbeddedFallbacks.WithLabelValues("delete", "hit").Inc()

	remaining := make([]models.Product, 0, len(branch.Products))
	for _, existing := range branch.Products {
		if existing.ID != productID {
			remaining = append(remaining, existing)
		}
	}

	if _, err := s.branches.Save(ctx, branch.WithProducts(remaining, s.now())); err != nil {
		return models.ProductLocation{}, models.Product{}, storageErr("saveBranch", err)
	}
	if f, ok := s.branches.(LocationForgetter); ok {
		f.Forget(ctx, productID)
	}
	return models.EmbeddedIn(branch.ID), p, nil
}
