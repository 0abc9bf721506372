// internal/models/branch.go
package models

import "time"

// StorageStrategy tags where newly created products of a branch are stored.
type StorageStrategy string

const (
	StrategyEmbedded  StorageStrategy = "EMBEDDED"
	StrategySeparated StorageStrategy = "SEPARATED"
)

func (s StorageStrategy) Valid() bool {
	return s == StrategyEmbedded || s == StrategySeparated
}

// Branch belongs to a franchise. Products is only populated while the
// branch stores products embedded; it is never shared with the caller's
// copy, every mutation goes through a fresh slice.
type Branch struct {
	ID              string          `json:"id"`
	FranchiseID     string          `json:"franchiseId"`
	Name            string          `json:"name"`
	StorageStrategy StorageStrategy `json:"storageStrategy"`
	Products        []Product       `json:"products,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

func NewBranch(id, franchiseID, name string, strategy StorageStrategy, now time.Time) Branch {
	return Branch{
		ID:              id,
		FranchiseID:     franchiseID,
		Name:            name,
		StorageStrategy: strategy,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func (b Branch) Rename(name string, now time.Time) Branch {
	b.Name = name
	b.UpdatedAt = now
	return b
}

// EmbeddedCount is the number of products currently stored inside the branch record.
func (b Branch) EmbeddedCount() int {
	return len(b.Products)
}

// HasEmbedded reports whether the branch currently holds embedded products.
func (b Branch) HasEmbedded() bool {
	return len(b.Products) > 0
}

// EmbeddedProducts returns a copy of the embedded list with BranchID
// back-filled on every element.
func (b Branch) EmbeddedProducts() []Product {
	if len(b.Products) == 0 {
		return nil
	}
	out := make([]Product, len(b.Products))
	for i, p := range b.Products {
		out[i] = p.InBranch(b.ID)
	}
	return out
}

// FindEmbedded returns the embedded product with the given id, back-filled.
func (b Branch) FindEmbedded(productID string) (Product, bool) {
	for _, p := range b.Products {
		if p.ID == productID {
			return p.InBranch(b.ID), true
		}
	}
	return Product{}, false
}

// WithProducts returns a copy of b holding products as its embedded list.
func (b Branch) WithProducts(products []Product, now time.Time) Branch {
	b.Products = products
	b.UpdatedAt = now
	return b
}
