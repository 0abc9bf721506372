// internal/workers/product/update-product/models.go
package updateproduct

// Input carries at least one of Name and Stock. When both are set the name
// is applied first.
type Input struct {
	ProductID string  `json:"productId"`
	Name      *string `json:"name,omitempty"`
	Stock     *int    `json:"stock,omitempty"`
}

type Output struct {
	ProductID string `json:"productId"`
	BranchID  string `json:"branchId"`
	Name      string `json:"name"`
	Stock     int    `json:"stock"`
	UpdatedAt string `json:"updatedAt"`
}
