// internal/workers/product/delete-product/models.go
package deleteproduct

type Input struct {
	ProductID string `json:"productId"`
}

type Output struct {
	ProductID string `json:"productId"`
	Deleted   bool   `json:"deleted"`
}
