// Package httpapi exposes the inventory use cases over HTTP with gin.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"franchise-inventory/internal/common/logger"
	"franchise-inventory/internal/common/observability"
	"franchise-inventory/internal/inventory"
	"franchise-inventory/internal/models"
)

// Inventory is the subset of *inventory.Service served over HTTP.
type Inventory interface {
	CreateFranchise(ctx context.Context, name string) (models.Franchise, error)
	UpdateFranchiseName(ctx context.Context, id, name string) (models.Franchise, error)
	ListFranchises(ctx context.Context) ([]models.Franchise, error)
	CreateBranch(ctx context.Context, franchiseID, name string) (models.Branch, error)
	UpdateBranchName(ctx context.Context, id, name string) (models.Branch, error)
	CreateProduct(ctx context.Context, franchiseID, branchID, name string, stock int) (models.Product, models.ProductLocation, error)
	GetProduct(ctx context.Context, id string) (models.Product, models.ProductLocation, error)
	ProductsByBranch(ctx context.Context, branchID string) ([]models.Product, error)
	UpdateProductName(ctx context.Context, id, name string) (models.Product, error)
	UpdateProductStock(ctx context.Context, id string, stock int) (models.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	TopStockProductsGlobal(ctx context.Context, franchiseID string, n int) ([]models.Product, error)
	TopStockProductPerBranchWithName(ctx context.Context, franchiseID string) ([]inventory.BranchTopProduct, error)
}

var _ Inventory = (*inventory.Service)(nil)

type RouterConfig struct {
	Inventory Inventory
	Logger    logger.Logger
	Obs       *observability.Observability
	// Ready reports whether the storage backend is reachable.
	Ready func(ctx context.Context) error
	Mode  string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}
	log := cfg.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	r := gin.New()
	r.Use(gin.Recovery(), RequestLog(log), Metrics(cfg.Obs))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", readiness(cfg.Ready))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	h := &handler{svc: cfg.Inventory, logger: log.WithFields(map[string]interface{}{"component": "http"})}

	api := r.Group("/api")
	{
		api.POST("/franchises", h.createFranchise)
		api.GET("/franchises", h.listFranchises)
		api.PUT("/franchises/:franchiseId/name", h.updateFranchiseName)

		api.POST("/franchises/:franchiseId/branches", h.createBranch)
		api.PUT("/branches/:branchId/name", h.updateBranchName)

		api.POST("/franchises/:franchiseId/branches/:branchId/products", h.createProduct)
		api.GET("/branches/:branchId/products", h.productsByBranch)
		api.GET("/products/:productId", h.getProduct)
		api.DELETE("/products/:productId", h.deleteProduct)
		api.PUT("/products/:productId/name", h.updateProductName)
		api.PUT("/products/:productId/stock", h.updateProductStock)

		api.GET("/franchises/:franchiseId/products/top-stock", h.topStockGlobal)
		api.GET("/franchises/:franchiseId/branches/top-stock-product", h.topStockPerBranch)
	}
	return r
}

func readiness(ready func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ready != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := ready(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	}
}
