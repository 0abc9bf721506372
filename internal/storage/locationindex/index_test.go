package locationindex

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "franchise-inventory/internal/common/errors"
	"franchise-inventory/internal/inventory"
	"franchise-inventory/internal/models"
	"franchise-inventory/internal/storage/memory"
)

const key = "inventory:product-location"

var now = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// countingBranches counts backend reverse lookups.
type countingBranches struct {
	inventory.BranchRepository
	lookups int
}

func (c *countingBranches) FindBranchIDByProductID(ctx context.Context, productID string) (string, error) {
	c.lookups++
	return c.BranchRepository.FindBranchIDByProductID(ctx, productID)
}

func setup(t *testing.T) (*Index, *countingBranches, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	inner := &countingBranches{BranchRepository: memory.New().Branches()}
	_, err = inner.Save(context.Background(), models.NewBranch("b1", "f1", "Main", models.StrategyEmbedded, now))
	require.NoError(t, err)
	return New(inner, rdb, key, nil), inner, mr
}

func TestAppendEmbeddedProduct_RecordsLocation(t *testing.T) {
	idx, inner, mr := setup(t)
	ctx := context.Background()

	_, err := idx.AppendEmbeddedProduct(ctx, "b1", models.Product{ID: "p1", Name: "Latte"}, 100)
	require.NoError(t, err)
	assert.Equal(t, "b1", mr.HGet(key, "p1"))

	id, err := idx.FindBranchIDByProductID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "b1", id)
	assert.Zero(t, inner.lookups)
}

func TestAppendEmbeddedProduct_FullListIsNotIndexed(t *testing.T) {
	idx, _, mr := setup(t)

	_, err := idx.AppendEmbeddedProduct(context.Background(), "b1", models.Product{ID: "p1"}, 0)
	assert.ErrorIs(t, err, inventory.ErrEmbeddedListFull)
	assert.False(t, mr.Exists(key))
}

func TestFindBranchIDByProductID_MissFallsBackAndBackfills(t *testing.T) {
	idx, inner, mr := setup(t)
	ctx := context.Background()

	b := models.NewBranch("b2", "f1", "Second", models.StrategyEmbedded, now)
	b.Products = []models.Product{{ID: "p9"}}
	_, err := inner.BranchRepository.Save(ctx, b)
	require.NoError(t, err)

	id, err := idx.FindBranchIDByProductID(ctx, "p9")
	require.NoError(t, err)
	assert.Equal(t, "b2", id)
	assert.Equal(t, 1, inner.lookups)
	assert.Equal(t, "b2", mr.HGet(key, "p9"))

	_, err = idx.FindBranchIDByProductID(ctx, "p9")
	require.NoError(t, err)
	assert.Equal(t, 1, inner.lookups)

	_, err = idx.FindBranchIDByProductID(ctx, "ghost")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestFindBranchIDByProductID_RedisDownUsesBackend(t *testing.T) {
	idx, inner, mr := setup(t)
	ctx := context.Background()
	_, err := idx.AppendEmbeddedProduct(ctx, "b1", models.Product{ID: "p1"}, 100)
	require.NoError(t, err)

	mr.Close()

	id, err := idx.FindBranchIDByProductID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "b1", id)
	assert.Equal(t, 1, inner.lookups)
}

func TestSaveAndForget(t *testing.T) {
	idx, _, mr := setup(t)
	ctx := context.Background()

	b := models.NewBranch("b1", "f1", "Main", models.StrategyEmbedded, now)
	b.Products = []models.Product{{ID: "p1"}, {ID: "p2"}}
	_, err := idx.Save(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, "b1", mr.HGet(key, "p2"))

	idx.Forget(ctx, "p2")
	assert.Empty(t, mr.HGet(key, "p2"))
	assert.Equal(t, "b1", mr.HGet(key, "p1"))
}

// forgettingBranches records Forget calls reaching the backend.
type forgettingBranches struct {
	inventory.BranchRepository
	forgotten []string
}

func (f *forgettingBranches) Forget(_ context.Context, productID string) {
	f.forgotten = append(f.forgotten, productID)
}

func TestForget_ReachesBackendIndex(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	inner := &forgettingBranches{BranchRepository: memory.New().Branches()}
	idx := New(inner, rdb, key, nil)
	mr.HSet(key, "p1", "b1")

	idx.Forget(context.Background(), "p1")

	assert.Equal(t, []string{"p1"}, inner.forgotten)
	assert.Empty(t, mr.HGet(key, "p1"))
}

func TestServiceDeleteDropsIndexEntry(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	store := memory.New()
	idx := New(store.Branches(), rdb, key, nil)
	svc := inventory.NewService(store.Franchises(), idx, store.Products())
	ctx := context.Background()

	f, err := svc.CreateFranchise(ctx, "Cafe")
	require.NoError(t, err)
	b, err := svc.CreateBranch(ctx, f.ID, "Main")
	require.NoError(t, err)
	p, loc, err := svc.CreateProduct(ctx, f.ID, b.ID, "Latte", 4)
	require.NoError(t, err)
	require.True(t, loc.IsEmbedded())
	assert.Equal(t, b.ID, mr.HGet(key, p.ID))

	require.NoError(t, svc.DeleteProduct(ctx, p.ID))
	assert.Empty(t, mr.HGet(key, p.ID))
}
