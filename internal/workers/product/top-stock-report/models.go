// internal/workers/product/top-stock-report/models.go
package topstockreport

type Input struct {
	FranchiseID string `json:"franchiseId"`
	Limit       int    `json:"limit,omitempty"`
}

type Entry struct {
	ProductID  string `json:"productId"`
	Name       string `json:"name"`
	Stock      int    `json:"stock"`
	BranchID   string `json:"branchId"`
	BranchName string `json:"branchName,omitempty"`
}

type Output struct {
	FranchiseID string  `json:"franchiseId"`
	PerBranch   []Entry `json:"perBranch"`
	Global      []Entry `json:"global"`
	GeneratedAt string  `json:"generatedAt"`
}
