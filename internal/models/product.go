// internal/models/product.go
package models

import "time"

// Product is the same entity whether it lives embedded in a branch record or
// as a separated record. Embedded products are persisted without BranchID;
// readers back-fill it from the owning branch.
type Product struct {
	ID          string    `json:"id"`
	FranchiseID string    `json:"franchiseId"`
	BranchID    string    `json:"branchId"`
	Name        string    `json:"name"`
	Stock       int       `json:"stock"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func NewProduct(id, franchiseID, branchID, name string, stock int, now time.Time) Product {
	return Product{
		ID:          id,
		FranchiseID: franchiseID,
		BranchID:    branchID,
		Name:        name,
		Stock:       stock,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func (p Product) Rename(name string, now time.Time) Product {
	p.Name = name
	p.UpdatedAt = now
	return p
}

func (p Product) WithStock(stock int, now time.Time) Product {
	p.Stock = stock
	p.UpdatedAt = now
	return p
}

// InBranch returns a copy of p attributed to branchID.
func (p Product) InBranch(branchID string) Product {
	p.BranchID = branchID
	return p
}
