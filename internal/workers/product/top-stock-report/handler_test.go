// internal/workers/product/top-stock-report/handler_test.go
package topstockreport

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "franchise-inventory/internal/common/errors"
	"franchise-inventory/internal/common/logger"
	"franchise-inventory/internal/inventory"
	"franchise-inventory/internal/models"
	"franchise-inventory/internal/storage/memory"
)

var now = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func setup(t *testing.T) *Handler {
	t.Helper()
	store := memory.New()
	ctx := context.Background()

	b1 := models.NewBranch("B1", "F", "North", models.StrategyEmbedded, now)
	b1.Products = []models.Product{
		models.NewProduct("p1", "F", "", "Latte", 10, now),
		models.NewProduct("p2", "F", "", "Mocha", 50, now),
	}
	_, err := store.Branches().Save(ctx, b1)
	require.NoError(t, err)
	_, err = store.Branches().Save(ctx, models.NewBranch("B2", "F", "South", models.StrategySeparated, now))
	require.NoError(t, err)
	_, err = store.Products().Save(ctx, models.NewProduct("p3", "F", "B2", "Chai", 30, now))
	require.NoError(t, err)

	svc := inventory.NewService(store.Franchises(), store.Branches(), store.Products())
	h := NewHandler(nil, svc, nil, logger.NewTestLogger(t))
	h.now = func() time.Time { return now }
	return h
}

func TestHandler_Execute_Report(t *testing.T) {
	h := setup(t)

	out, err := h.execute(context.Background(), &Input{FranchiseID: "F", Limit: 2})
	require.NoError(t, err)

	assert.Equal(t, []Entry{
		{ProductID: "p2", Name: "Mocha", Stock: 50, BranchID: "B1", BranchName: "North"},
		{ProductID: "p3", Name: "Chai", Stock: 30, BranchID: "B2", BranchName: "South"},
	}, out.PerBranch)
	assert.Equal(t, []Entry{
		{ProductID: "p2", Name: "Mocha", Stock: 50, BranchID: "B1"},
		{ProductID: "p3", Name: "Chai", Stock: 30, BranchID: "B2"},
	}, out.Global)
	assert.Equal(t, "2026-01-01T00:00:00Z", out.GeneratedAt)
}

func TestHandler_Execute_UnknownFranchiseIsEmpty(t *testing.T) {
	h := setup(t)

	out, err := h.execute(context.Background(), &Input{FranchiseID: "nobody"})
	require.NoError(t, err)
	assert.NotNil(t, out.PerBranch)
	assert.Empty(t, out.PerBranch)
	assert.Empty(t, out.Global)
}

type failingService struct{ err error }

func (f failingService) TopStockProductPerBranchWithName(context.Context, string) ([]inventory.BranchTopProduct, error) {
	return nil, f.err
}

func (f failingService) TopStockProductsGlobal(context.Context, string, int) ([]models.Product, error) {
	return nil, nil
}

func TestHandler_Execute_Errors(t *testing.T) {
	h := setup(t)
	_, err := h.execute(context.Background(), &Input{FranchiseID: "F", Limit: -1})
	assert.True(t, apperrors.IsInvalidInput(err))

	_, err = h.execute(context.Background(), &Input{FranchiseID: "F", Limit: 3_000_000_000})
	assert.True(t, apperrors.IsInvalidInput(err))

	_, err = h.execute(context.Background(), &Input{FranchiseID: " "})
	assert.True(t, apperrors.IsInvalidInput(err))

	h = NewHandler(nil, failingService{err: apperrors.NewStorageFailureError("scan", errors.New("throttled"))}, nil, logger.NewNoOpLogger())
	_, err = h.execute(context.Background(), &Input{FranchiseID: "F"})
	assert.ErrorIs(t, err, apperrors.ErrStorage)
}
