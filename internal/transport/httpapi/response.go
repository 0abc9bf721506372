package httpapi

import (
	"github.com/gin-gonic/gin"

	apperrors "franchise-inventory/internal/common/errors"
	"franchise-inventory/internal/inventory"
	"franchise-inventory/internal/models"
)

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func respondError(c *gin.Context, err error) {
	stdErr := apperrors.Normalize(err)
	c.AbortWithStatusJSON(apperrors.HTTPStatus(stdErr.Code), ErrorEnvelope{
		Error: APIError{Code: string(stdErr.Code), Message: stdErr.Message},
	})
}

type franchiseResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func toFranchiseResponse(f models.Franchise) franchiseResponse {
	return franchiseResponse{ID: f.ID, Name: f.Name}
}

type branchResponse struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	FranchiseID     string `json:"franchiseId"`
	StorageStrategy string `json:"storageStrategy"`
}

func toBranchResponse(b models.Branch) branchResponse {
	return branchResponse{ID: b.ID, Name: b.Name, FranchiseID: b.FranchiseID, StorageStrategy: string(b.StorageStrategy)}
}

type productResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Stock    int    `json:"stock"`
	BranchID string `json:"branchId"`
	Storage  string `json:"storage,omitempty"`
}

func toProductResponse(p models.Product) productResponse {
	return productResponse{ID: p.ID, Name: p.Name, Stock: p.Stock, BranchID: p.BranchID}
}

func toLocatedProductResponse(p models.Product, loc models.ProductLocation) productResponse {
	resp := toProductResponse(p)
	if loc.Known() {
		resp.Storage = string(loc.Strategy())
	}
	return resp
}

func toProductResponses(products []models.Product) []productResponse {
	out := make([]productResponse, len(products))
	for i, p := range products {
		out[i] = toProductResponse(p)
	}
	return out
}

type productWithBranchResponse struct {
	productResponse
	BranchName string `json:"branchName"`
}

func toProductWithBranchResponses(tops []inventory.BranchTopProduct) []productWithBranchResponse {
	out := make([]productWithBranchResponse, len(tops))
	for i, t := range tops {
		out[i] = productWithBranchResponse{productResponse: toProductResponse(t.Product), BranchName: t.BranchName}
	}
	return out
}
