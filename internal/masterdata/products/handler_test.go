package products

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func denyAll(http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
}

func passThrough(next http.Handler) http.Handler { return next }

func newTestRouter(admin func(http.Handler) http.Handler) (http.Handler, *memoryProductRepo) {
	repo := newMemoryProductRepo()
	h := NewHandler(nil, NewService(repo))
	r := chi.NewRouter()
	r.Route("/products", func(r chi.Router) { h.MountRoutes(r, admin) })
	return r, repo
}

func TestHandlerCreateAndFetch(t *testing.T) {
	router, _ := newTestRouter(passThrough)

	body := `{"name":"Tea","price":250,"stocks":12,"unit":"packet","gst_percent":5,"barcode":"TEA-1"}`
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(body)))
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Contains(t, rr.Body.String(), `"name":"Tea"`)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/products/1", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/products/barcode/TEA-1", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/products/2", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "Product not found")

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/products/search?q=", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true,"data":[]}`, rr.Body.String())
}

func TestHandlerRejectsInvalidBody(t *testing.T) {
	router, _ := newTestRouter(passThrough)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(`{"name":"Tea","price":1,"stocks":1,"unit":"box"}`)))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "unit must be one of")
}

func TestHandlerWritesRequireAdmin(t *testing.T) {
	router, _ := newTestRouter(denyAll)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/products/1", nil))
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/products", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}
