package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "franchise-inventory/internal/common/errors"
	"franchise-inventory/internal/common/logger"
)

type handler struct {
	svc    Inventory
	logger logger.Logger
}

type nameRequest struct {
	Name string `json:"name"`
}

type stockRequest struct {
	Stock *int `json:"stock"`
}

type createProductRequest struct {
	Name  string `json:"name"`
	Stock *int   `json:"stock"`
}

func bind(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, apperrors.NewInvalidInputError("malformed request body: "+err.Error()))
		return false
	}
	return true
}

func requireStock(stock *int) (int, error) {
	if stock == nil {
		return 0, apperrors.NewInvalidInputError("stock is required")
	}
	return *stock, nil
}

// ==========================
// Franchises
// ==========================

func (h *handler) createFranchise(c *gin.Context) {
	var req nameRequest
	if !bind(c, &req) {
		return
	}
	f, err := h.svc.CreateFranchise(c.Request.Context(), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toFranchiseResponse(f))
}

func (h *handler) listFranchises(c *gin.Context) {
	franchises, err := h.svc.ListFranchises(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]franchiseResponse, len(franchises))
	for i, f := range franchises {
		out[i] = toFranchiseResponse(f)
	}
	c.JSON(http.StatusOK, out)
}

func (h *handler) updateFranchiseName(c *gin.Context) {
	var req nameRequest
	if !bind(c, &req) {
		return
	}
	f, err := h.svc.UpdateFranchiseName(c.Request.Context(), c.Param("franchiseId"), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toFranchiseResponse(f))
}

// ==========================
// Branches
// ==========================

func (h *handler) createBranch(c *gin.Context) {
	var req nameRequest
	if !bind(c, &req) {
		return
	}
	b, err := h.svc.CreateBranch(c.Request.Context(), c.Param("franchiseId"), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBranchResponse(b))
}

func (h *handler) updateBranchName(c *gin.Context) {
	var req nameRequest
	if !bind(c, &req) {
		return
	}
	b, err := h.svc.UpdateBranchName(c.Request.Context(), c.Param("branchId"), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBranchResponse(b))
}

// ==========================
// Products
// ==========================

func (h *handler) createProduct(c *gin.Context) {
	var req createProductRequest
	if !bind(c, &req) {
		return
	}
	stock, err := requireStock(req.Stock)
	if err != nil {
		respondError(c, err)
		return
	}

	p, loc, err := h.svc.CreateProduct(c.Request.Context(), c.Param("franchiseId"), c.Param("branchId"), req.Name, stock)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toLocatedProductResponse(p, loc))
}

func (h *handler) productsByBranch(c *gin.Context) {
	products, err := h.svc.ProductsByBranch(c.Request.Context(), c.Param("branchId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductResponses(products))
}

func (h *handler) getProduct(c *gin.Context) {
	p, loc, err := h.svc.GetProduct(c.Request.Context(), c.Param("productId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toLocatedProductResponse(p, loc))
}

func (h *handler) deleteProduct(c *gin.Context) {
	if err := h.svc.DeleteProduct(c.Request.Context(), c.Param("productId")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) updateProductName(c *gin.Context) {
	var req nameRequest
	if !bind(c, &req) {
		return
	}
	p, err := h.svc.UpdateProductName(c.Request.Context(), c.Param("productId"), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductResponse(p))
}

func (h *handler) updateProductStock(c *gin.Context) {
	var req stockRequest
	if !bind(c, &req) {
		return
	}
	stock, err := requireStock(req.Stock)
	if err != nil {
		respondError(c, err)
		return
	}

	p, err := h.svc.UpdateProductStock(c.Request.Context(), c.Param("productId"), stock)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductResponse(p))
}

// ==========================
// Reports
// ==========================

// topStockGlobal accepts an optional ?limit=N; zero or absent uses the default.
func (h *handler) topStockGlobal(c *gin.Context) {
	n := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			respondError(c, apperrors.NewInvalidInputError("limit must be a non-negative integer"))
			return
		}
		n = parsed
	}

	products, err := h.svc.TopStockProductsGlobal(c.Request.Context(), c.Param("franchiseId"), n)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductResponses(products))
}

func (h *handler) topStockPerBranch(c *gin.Context) {
	tops, err := h.svc.TopStockProductPerBranchWithName(c.Request.Context(), c.Param("franchiseId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductWithBranchResponses(tops))
}
