// Package inventory holds the franchise/branch/product use cases, the
// aggregation engine that merges embedded and separated products, and the
// mutation resolver that finds a product whose location is not known.
package inventory

import (
	"context"
	"errors"

	"franchise-inventory/internal/models"
)

// ErrEmbeddedListFull is returned by BranchRepository.AppendEmbeddedProduct
// when the branch already holds limit embedded products.
var ErrEmbeddedListFull = errors.New("inventory: embedded product list is full")

// Lookups that miss must return an error matching apperrors.ErrNotFound.
// Any other error is treated as a storage failure.

type FranchiseRepository interface {
	Save(ctx context.Context, franchise models.Franchise) (models.Franchise, error)
	FindByID(ctx context.Context, id string) (models.Franchise, error)
	FindAll(ctx context.Context) ([]models.Franchise, error)
	DeleteByID(ctx context.Context, id string) error
}

type BranchRepository interface {
	Save(ctx context.Context, branch models.Branch) (models.Branch, error)
	FindByID(ctx context.Context, id string) (models.Branch, error)
	FindByFranchiseID(ctx context.Context, franchiseID string) ([]models.Branch, error)
	DeleteByID(ctx context.Context, id string) error

	// AppendEmbeddedProduct atomically appends product to the embedded list
	// of the branch, only while the list holds fewer than limit entries.
	// Returns ErrEmbeddedListFull when the condition fails.
	AppendEmbeddedProduct(ctx context.Context, branchID string, product models.Product, limit int) (models.Branch, error)

	// FindBranchIDByProductID resolves the branch whose embedded list holds productID.
	FindBranchIDByProductID(ctx context.Context, productID string) (string, error)
}

// ProductRepository stores separated product records.
type ProductRepository interface {
	Save(ctx context.Context, product models.Product) (models.Product, error)
	FindByID(ctx context.Context, id string) (models.Product, error)
	FindByBranchID(ctx context.Context, branchID string) ([]models.Product, error)
	FindByFranchiseID(ctx context.Context, franchiseID string) ([]models.Product, error)
	// FindTopStockByFranchise returns at most limit products ordered by stock descending.
	FindTopStockByFranchise(ctx context.Context, franchiseID string, limit int) ([]models.Product, error)
	// DeleteByID removes the separated record and returns it as it was stored.
	// Returns a not-found error when no separated record exists.
	DeleteByID(ctx context.Context, id string) (models.Product, error)
}

// LocationForgetter is implemented by branch repositories that keep a
// separate product-to-branch index which should drop deleted products.
type LocationForgetter interface {
	Forget(ctx context.Context, productID string)
}
