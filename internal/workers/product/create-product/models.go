// internal/workers/product/create-product/models.go
package createproduct

type Input struct {
	FranchiseID string `json:"franchiseId"`
	BranchID    string `json:"branchId"`
	Name        string `json:"name"`
	Stock       int    `json:"stock"`
}

type Output struct {
	ProductID string `json:"productId"`
	BranchID  string `json:"branchId"`
	Name      string `json:"name"`
	Stock     int    `json:"stock"`
	Storage   string `json:"storage"` // EMBEDDED or SEPARATED
	CreatedAt string `json:"createdAt"`
}
