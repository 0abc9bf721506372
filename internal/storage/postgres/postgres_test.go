package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "franchise-inventory/internal/common/errors"
	"franchise-inventory/internal/inventory"
	"franchise-inventory/internal/models"
)

var now = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

var branchCols = []string{"id", "franchise_id", "name", "storage_strategy", "embedded_products", "created_at", "updated_at"}

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return New(db, nil), mock
}

func TestAppendEmbeddedProduct_Appends(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`UPDATE branches`).
		WithArgs("b1", sqlmock.AnyArg(), 100).
		WillReturnRows(sqlmock.NewRows(branchCols).AddRow(
			"b1", "f1", "Main", "EMBEDDED",
			[]byte(`[{"id":"p1","franchiseId":"f1","name":"Latte","stock":3,"createdAt":"2026-01-01T00:00:00Z","updatedAt":"2026-01-01T00:00:00Z"}]`),
			now, now,
		))

	b, err := store.Branches().AppendEmbeddedProduct(context.Background(), "b1",
		models.NewProduct("p1", "f1", "", "Latte", 3, now), 100)
	require.NoError(t, err)
	require.Len(t, b.Products, 1)
	assert.Equal(t, "Latte", b.Products[0].Name)
	assert.Empty(t, b.Products[0].BranchID)
	assert.Equal(t, models.StrategyEmbedded, b.StorageStrategy)
}

func TestAppendEmbeddedProduct_NoRowUpdated(t *testing.T) {
	tests := []struct {
		name   string
		exists bool
		check  func(t *testing.T, err error)
	}{
		{"branch is full", true, func(t *testing.T, err error) { assert.ErrorIs(t, err, inventory.ErrEmbeddedListFull) }},
		{"branch is missing", false, func(t *testing.T, err error) { assert.True(t, apperrors.IsNotFound(err)) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, mock := newMockStore(t)
			mock.ExpectQuery(`UPDATE branches`).
				WithArgs("b1", sqlmock.AnyArg(), 100).
				WillReturnError(sql.ErrNoRows)
			mock.ExpectQuery(`SELECT EXISTS`).
				WithArgs("b1").
				WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(tt.exists))

			_, err := store.Branches().AppendEmbeddedProduct(context.Background(), "b1", models.Product{ID: "p1"}, 100)
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestAppendEmbeddedProduct_DatabaseError(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(`UPDATE branches`).WillReturnError(errors.New("connection reset"))

	_, err := store.Branches().AppendEmbeddedProduct(context.Background(), "b1", models.Product{ID: "p1"}, 100)
	assert.ErrorIs(t, err, apperrors.ErrStorage)
}

func TestBranchSave_SeparatedWritesEmptyList(t *testing.T) {
	store, mock := newMockStore(t)
	b := models.NewBranch("b1", "f1", "Main", models.StrategySeparated, now)
	b.Products = []models.Product{{ID: "p1"}}

	mock.ExpectExec(`INSERT INTO branches`).
		WithArgs("b1", "f1", "Main", "SEPARATED", []byte(`[]`), now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	saved, err := store.Branches().Save(context.Background(), b)
	require.NoError(t, err)
	assert.Empty(t, saved.Products)
}

func TestFindBranchIDByProductID_Containment(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`embedded_products @>`).
		WithArgs([]byte(`[{"id":"p9"}]`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("b2"))
	mock.ExpectQuery(`embedded_products @>`).
		WithArgs([]byte(`[{"id":"ghost"}]`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	id, err := store.Branches().FindBranchIDByProductID(context.Background(), "p9")
	require.NoError(t, err)
	assert.Equal(t, "b2", id)

	_, err = store.Branches().FindBranchIDByProductID(context.Background(), "ghost")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestFindTopStockByFranchise(t *testing.T) {
	store, mock := newMockStore(t)
	cols := []string{"id", "franchise_id", "branch_id", "name", "stock", "created_at", "updated_at"}

	mock.ExpectQuery(`ORDER BY stock DESC`).
		WithArgs("f1", 2).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("p2", "f1", "b1", "Mocha", 50, now, now).
			AddRow("p3", "f1", "b2", "Tea", 30, now, now))

	top, err := store.Products().FindTopStockByFranchise(context.Background(), "f1", 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "p2", top[0].ID)
	assert.Equal(t, 30, top[1].Stock)
}

func TestProductDeleteByID(t *testing.T) {
	store, mock := newMockStore(t)

	cols := []string{"id", "franchise_id", "branch_id", "name", "stock", "created_at", "updated_at"}

	mock.ExpectQuery(`DELETE FROM products WHERE id = \$1 RETURNING`).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("p1", "f1", "b1", "Mocha", 50, now, now))
	mock.ExpectQuery(`DELETE FROM products`).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows(cols))

	removed, err := store.Products().DeleteByID(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "b1", removed.BranchID)
	assert.Equal(t, "f1", removed.FranchiseID)
	assert.Equal(t, 50, removed.Stock)

	_, err = store.Products().DeleteByID(context.Background(), "p1")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestFranchiseFindByID_NotFound(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(`SELECT id, name, created_at, updated_at FROM franchises`).
		WithArgs("f1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "created_at", "updated_at"}))

	_, err := store.Franchises().FindByID(context.Background(), "f1")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestMigrate(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS franchises`).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.Migrate(context.Background()))
}
