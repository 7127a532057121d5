// Package apitest provides an in-memory stand-in for the ordering backend's
// admin API, for tests of the client and everything built on it.
package apitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"zakazadmin/internal/models"
	"zakazadmin/internal/requestid"
)

// DeletePolicy decides what happens to sub-categories when a category is deleted.
type DeletePolicy int

const (
	// Cascade deletes the whole subtree.
	Cascade DeletePolicy = iota
	// Restrict refuses to delete a category that has children.
	Restrict
	// Orphan deletes only the category; its children keep a dangling parentId.
	Orphan
)

// Backend is a fake ordering backend. The zero value is not usable; call New.
type Backend struct {
	mu sync.Mutex

	policy      DeletePolicy
	nextID      int64
	nextCode    int
	stores      []models.Store
	categories  []models.Category
	products    []models.Product
	inventories []models.Inventory
	orders      []models.Order
	users       []models.User

	failures  map[string]failure
	requests  []string
	requestID string
}

type failure struct {
	status  int
	message string
}

// New returns an empty backend with the given category delete policy.
func New(policy DeletePolicy) *Backend {
	return &Backend{
		policy:   policy,
		nextID:   1,
		nextCode: 1,
		failures: make(map[string]failure),
	}
}

// Start serves b on a test server that is closed when t ends, and returns
// the base URL to configure an api.Client with.
func Start(t testing.TB, b *Backend) string {
	t.Helper()
	srv := httptest.NewServer(b.Handler())
	t.Cleanup(srv.Close)
	return srv.URL
}

// Fail makes the next request matching method and path (with query)
// answer status with {"error": message}.
func (b *Backend) Fail(method, path string, status int, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[method+" "+path] = failure{status: status, message: message}
}

// Requests returns "METHOD /path" for every request received so far.
func (b *Backend) Requests() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.requests)
}

// LastRequestID returns the X-Request-ID of the most recent request.
func (b *Backend) LastRequestID() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.requestID
}

// Handler returns the chi router serving the admin API.
func (b *Backend) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(b.record)

	r.Route("/admin", func(r chi.Router) {
		r.Get("/stores", b.listStores)
		r.Post("/stores", b.createStore)
		r.Get("/stores/{id}", b.getStore)
		r.Put("/stores/{id}", b.updateStore)
		r.Delete("/stores/{id}", b.deleteStore)

		r.Get("/categories", b.listCategories)
		r.Post("/categories", b.createCategory)
		r.Get("/categories/{id}", b.getCategory)
		r.Put("/categories/{id}", b.updateCategory)
		r.Delete("/categories/{id}", b.deleteCategory)

		r.Get("/products", b.listProducts)
		r.Post("/products", b.createProduct)
		r.Get("/products/next-code", b.nextProductCode)
		r.Get("/products/{id}", b.getProduct)
		r.Put("/products/{id}", b.updateProduct)
		r.Delete("/products/{id}", b.deleteProduct)

		r.Post("/inventories", b.createInventory)
		r.Put("/inventories/{id}", b.updateInventory)
		r.Delete("/inventories/{id}", b.deleteInventory)

		r.Get("/orders", b.listOrders)
		r.Get("/orders/{id}", b.getOrder)
		r.Put("/orders/{id}/status", b.updateOrderStatus)

		r.Get("/users", b.listUsers)
		r.Post("/users", b.createUser)
		r.Get("/users/{id}", b.getUser)
		r.Put("/users/{id}", b.updateUser)
		r.Delete("/users/{id}", b.deleteUser)
	})
	return r
}

func (b *Backend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.RequestURI()

		b.mu.Lock()
		b.requests = append(b.requests, key)
		b.requestID = r.Header.Get(requestid.Header)
		f, fail := b.failures[key]
		delete(b.failures, key)
		b.mu.Unlock()

		if fail {
			writeError(w, f.status, f.message)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func (b *Backend) newID() int64 {
	id := b.nextID
	b.nextID++
	return id
}

func (b *Backend) bump(id int64) {
	if id >= b.nextID {
		b.nextID = id + 1
	}
}

func notFound(w http.ResponseWriter, what string) {
	writeError(w, http.StatusNotFound, fmt.Sprintf("%s not found", what))
}

func index[T any](items []T, id int64, idOf func(T) int64) int {
	return slices.IndexFunc(items, func(it T) bool { return idOf(it) == id })
}
