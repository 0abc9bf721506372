// Package locationindex caches the branch of every embedded product in a
// Redis hash, in front of a backend's own reverse lookup.
package locationindex

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"franchise-inventory/internal/common/logger"
	"franchise-inventory/internal/common/metrics"
	"franchise-inventory/internal/inventory"
	"franchise-inventory/internal/models"
)

const writeTimeout = 2 * time.Second

// Index decorates a BranchRepository. Entries are hints: the resolver always
// re-reads the branch before trusting one, so a stale entry costs a miss.
type Index struct {
	inventory.BranchRepository
	rdb    *redis.Client
	key    string
	logger logger.Logger
}

var (
	_ inventory.BranchRepository  = (*Index)(nil)
	_ inventory.LocationForgetter = (*Index)(nil)
)

func New(inner inventory.BranchRepository, rdb *redis.Client, key string, log logger.Logger) *Index {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Index{
		BranchRepository: inner,
		rdb:              rdb,
		key:              key,
		logger:           log.WithFields(map[string]interface{}{"component": "location-index"}),
	}
}

func (i *Index) Save(ctx context.Context, b models.Branch) (models.Branch, error) {
	saved, err := i.BranchRepository.Save(ctx, b)
	if err != nil {
		return saved, err
	}
	if len(saved.Products) > 0 {
		fields := make(map[string]interface{}, len(saved.Products))
		for _, p := range saved.Products {
			fields[p.ID] = saved.ID
		}
		i.remember(ctx, fields)
	}
	return saved, nil
}

func (i *Index) AppendEmbeddedProduct(ctx context.Context, branchID string, p models.Product, limit int) (models.Branch, error) {
	b, err := i.BranchRepository.AppendEmbeddedProduct(ctx, branchID, p, limit)
	if err != nil {
		return b, err
	}
	i.remember(ctx, map[string]interface{}{p.ID: branchID})
	return b, nil
}

func (i *Index) FindBranchIDByProductID(ctx context.Context, productID string) (string, error) {
	branchID, err := i.rdb.HGet(ctx, i.key, productID).Result()
	switch {
	case err == nil:
		metrics.LocationIndexLookups.WithLabelValues("hit").Inc()
		return branchID, nil
	case errors.Is(err, redis.Nil):
		metrics.LocationIndexLookups.WithLabelValues("miss").Inc()
	default:
		metrics.LocationIndexLookups.WithLabelValues("error").Inc()
		i.logger.Warn("Location index read failed, using backend lookup", map[string]interface{}{
			"productId": productID,
			"error":     err.Error(),
		})
	}

	branchID, err = i.BranchRepository.FindBranchIDByProductID(ctx, productID)
	if err != nil {
		return "", err
	}
	i.remember(ctx, map[string]interface{}{productID: branchID})
	return branchID, nil
}

// Forget drops productID from the index and from the backend's own
// reverse index when it keeps one.
func (i *Index) Forget(ctx context.Context, productID string) {
	if f, ok := i.BranchRepository.(inventory.LocationForgetter); ok {
		f.Forget(ctx, productID)
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
	defer cancel()
	if err := i.rdb.HDel(ctx, i.key, productID).Err(); err != nil {
		i.logger.Warn("Location index delete failed", map[string]interface{}{
			"productId": productID,
			"error":     err.Error(),
		})
	}
}

// remember is best effort; the branch write already succeeded.
func (i *Index) remember(ctx context.Context, fields map[string]interface{}) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
	defer cancel()
	if err := i.rdb.HSet(ctx, i.key, fields).Err(); err != nil {
		i.logger.Warn("Location index write failed", map[string]interface{}{
			"entries": len(fields),
			"error":   err.Error(),
		})
	}
}
