package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"franchise-inventory/internal/inventory"
	"franchise-inventory/internal/storage/memory"
)

func newTestRouter(t *testing.T, opts ...inventory.Option) *gin.Engine {
	t.Helper()
	store := memory.New()
	svc := inventory.NewService(store.Franchises(), store.Branches(), store.Products(), opts...)
	return NewRouter(RouterConfig{Inventory: svc, Mode: gin.TestMode})
}

func do(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestProductLifecycle(t *testing.T) {
	r := newTestRouter(t, inventory.WithEmbeddedLimit(1))

	rec := do(t, r, http.MethodPost, "/api/franchises", `{"name":"Cafe"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	franchise := decode[franchiseResponse](t, rec)

	rec = do(t, r, http.MethodPost, "/api/franchises/"+franchise.ID+"/branches", `{"name":"Main"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	branch := decode[branchResponse](t, rec)
	assert.Equal(t, "EMBEDDED", branch.StorageStrategy)

	productsURL := "/api/franchises/" + franchise.ID + "/branches/" + branch.ID + "/products"
	rec = do(t, r, http.MethodPost, productsURL, `{"name":"Latte","stock":10}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	latte := decode[productResponse](t, rec)
	assert.Equal(t, "EMBEDDED", latte.Storage)
	assert.Equal(t, branch.ID, latte.BranchID)

	rec = do(t, r, http.MethodPost, productsURL, `{"name":"Mocha","stock":50}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	mocha := decode[productResponse](t, rec)
	assert.Equal(t, "SEPARATED", mocha.Storage)

	rec = do(t, r, http.MethodPut, "/api/products/"+latte.ID+"/stock", `{"stock":70}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 70, decode[productResponse](t, rec).Stock)

	rec = do(t, r, http.MethodGet, "/api/branches/"+branch.ID+"/products", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]productResponse](t, rec), 2)

	rec = do(t, r, http.MethodGet, "/api/franchises/"+franchise.ID+"/products/top-stock?limit=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	top := decode[[]productResponse](t, rec)
	require.Len(t, top, 1)
	assert.Equal(t, latte.ID, top[0].ID)

	rec = do(t, r, http.MethodGet, "/api/franchises/"+franchise.ID+"/branches/top-stock-product", "")
	require.Equal(t, http.StatusOK, rec.Code)
	perBranch := decode[[]productWithBranchResponse](t, rec)
	require.Len(t, perBranch, 1)
	assert.Equal(t, "Main", perBranch[0].BranchName)
	assert.Equal(t, latte.ID, perBranch[0].ID)

	rec = do(t, r, http.MethodDelete, "/api/products/"+latte.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, r, http.MethodDelete, "/api/products/"+latte.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, r, http.MethodGet, "/api/products/"+latte.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestErrorEnvelope(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		code   string
	}{
		{"blank franchise name", http.MethodPost, "/api/franchises", `{"name":"  "}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"malformed body", http.MethodPost, "/api/franchises", `{"name":`, http.StatusBadRequest, "INVALID_INPUT"},
		{"unknown franchise", http.MethodPut, "/api/franchises/ghost/name", `{"name":"Cafe"}`, http.StatusNotFound, "RESOURCE_NOT_FOUND"},
		{"branch of unknown franchise", http.MethodPost, "/api/franchises/ghost/branches", `{"name":"Main"}`, http.StatusNotFound, "RESOURCE_NOT_FOUND"},
		{"missing stock", http.MethodPut, "/api/products/p1/stock", `{}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"negative stock", http.MethodPut, "/api/products/p1/stock", `{"stock":-1}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"unknown product", http.MethodPut, "/api/products/p1/name", `{"name":"Latte"}`, http.StatusNotFound, "RESOURCE_NOT_FOUND"},
		{"bad limit", http.MethodGet, "/api/franchises/f1/products/top-stock?limit=x", "", http.StatusBadRequest, "INVALID_INPUT"},
		{"limit above int32", http.MethodGet, "/api/franchises/f1/products/top-stock?limit=3000000000", "", http.StatusBadRequest, "INVALID_INPUT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, r, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			env := decode[ErrorEnvelope](t, rec)
			assert.Equal(t, tt.code, env.Error.Code)
			assert.NotEmpty(t, env.Error.Message)
		})
	}
}

func TestListFranchises_EmptyIsArray(t *testing.T) {
	rec := do(t, newTestRouter(t), http.MethodGet, "/api/franchises", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestHealthAndReadiness(t *testing.T) {
	healthy := NewRouter(RouterConfig{Mode: gin.TestMode, Ready: func(context.Context) error { return nil }})
	assert.Equal(t, http.StatusOK, do(t, healthy, http.MethodGet, "/health", "").Code)
	assert.Equal(t, http.StatusOK, do(t, healthy, http.MethodGet, "/ready", "").Code)

	down := NewRouter(RouterConfig{Mode: gin.TestMode, Ready: func(context.Context) error { return errors.New("dial tcp: refused") }})
	assert.Equal(t, http.StatusServiceUnavailable, do(t, down, http.MethodGet, "/ready", "").Code)

	rec := do(t, healthy, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "inventory_http_requests_total")
}
