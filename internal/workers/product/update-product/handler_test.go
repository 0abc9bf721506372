// internal/workers/product/update-product/handler_test.go
package updateproduct

import (
	"context"
	"testing"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "franchise-inventory/internal/common/errors"
	"franchise-inventory/internal/common/logger"
	"franchise-inventory/internal/inventory"
	"franchise-inventory/internal/models"
	"franchise-inventory/internal/storage/memory"
)

var now = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func setup(t *testing.T) (*Handler, *memory.Store) {
	t.Helper()
	store := memory.New()
	ctx := context.Background()
	b := models.NewBranch("b1", "f1", "Main", models.StrategyEmbedded, now)
	b.Products = []models.Product{models.NewProduct("e1", "f1", "", "Latte", 4, now)}
	_, err := store.Branches().Save(ctx, b)
	require.NoError(t, err)
	_, err = store.Products().Save(ctx, models.NewProduct("s1", "f1", "b1", "Mocha", 8, now))
	require.NoError(t, err)

	svc := inventory.NewService(store.Franchises(), store.Branches(), store.Products(),
		inventory.WithClock(func() time.Time { return now.Add(time.Hour) }))
	return NewHandler(nil, svc, nil, logger.NewTestLogger(t)), store
}

func ptr[T any](v T) *T { return &v }

func TestHandler_Execute_UpdatesEitherRepresentation(t *testing.T) {
	h, store := setup(t)
	ctx := context.Background()

	out, err := h.execute(ctx, &Input{ProductID: "e1", Name: ptr("Flat White"), Stock: ptr(12)})
	require.NoError(t, err)
	assert.Equal(t, &Output{
		ProductID: "e1",
		BranchID:  "b1",
		Name:      "Flat White",
		Stock:     12,
		UpdatedAt: "2026-01-01T01:00:00Z",
	}, out)

	branch, err := store.Branches().FindByID(ctx, "b1")
	require.NoError(t, err)
	p, ok := branch.FindEmbedded("e1")
	require.True(t, ok)
	assert.Equal(t, 12, p.Stock)

	out, err = h.execute(ctx, &Input{ProductID: "s1", Stock: ptr(0)})
	require.NoError(t, err)
	assert.Equal(t, "Mocha", out.Name)
	assert.Equal(t, 0, out.Stock)
}

func TestHandler_Execute_Errors(t *testing.T) {
	h, _ := setup(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		input Input
		check func(error) bool
	}{
		{"nothing to update", Input{ProductID: "e1"}, apperrors.IsInvalidInput},
		{"negative stock", Input{ProductID: "e1", Stock: ptr(-1)}, apperrors.IsInvalidInput},
		{"short name", Input{ProductID: "e1", Name: ptr("x")}, apperrors.IsInvalidInput},
		{"unknown product", Input{ProductID: "ghost", Stock: ptr(1)}, apperrors.IsNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := tt.input
			_, err := h.execute(ctx, &input)
			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error %v", err)
		})
	}
}

func TestHandler_ParseInput_OptionalFields(t *testing.T) {
	h, _ := setup(t)

	input, err := h.parseInput(entities.Job{ActivatedJob: &pb.ActivatedJob{Variables: `{"productId":"e1","stock":0}`}})
	require.NoError(t, err)
	assert.Nil(t, input.Name)
	require.NotNil(t, input.Stock)
	assert.Equal(t, 0, *input.Stock)
}
