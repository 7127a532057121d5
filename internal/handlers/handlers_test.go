package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"zakazadmin/internal/api"
	"zakazadmin/internal/api/apitest"
	"zakazadmin/internal/catalog"
	"zakazadmin/internal/models"
	"zakazadmin/internal/render"
	"zakazadmin/internal/session"
	"zakazadmin/internal/staff"
	"zakazadmin/internal/store"
	"zakazadmin/internal/tree"
)

func ptr(v int64) *int64 { return &v }

type journal struct {
	mu      sync.Mutex
	entries []string
}

func (j *journal) Mutated(_ context.Context, entity, action string, _ int64) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, entity+" "+action)
}

func (j *journal) has(entry string) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return slices.Contains(j.entries, entry)
}

type fakeAudit struct{ entries []store.AuditEntry }

func (f fakeAudit) Recent(context.Context, int) ([]store.AuditEntry, error) {
	return f.entries, nil
}

func (f fakeAudit) ForEntity(_ context.Context, entity string, id int64) ([]store.AuditEntry, error) {
	var out []store.AuditEntry
	for _, e := range f.entries {
		if e.Entity == entity && e.EntityID == id {
			out = append(out, e)
		}
	}
	return out, nil
}

// harness serves the admin handlers against an in-memory backend, with one
// operator session shared by every request.
type harness struct {
	t       *testing.T
	backend *apitest.Backend
	journal *journal
	sess    *session.Session
	mux     chi.Router
}

func newHarness(t *testing.T, policy apitest.DeletePolicy, mode catalog.CascadeMode) *harness {
	t.Helper()

	b := apitest.New(policy)
	client := api.New(api.Config{BaseURL: apitest.Start(t, b), Timeout: 2 * time.Second}, nil)
	rn, err := render.New(language.English)
	require.NoError(t, err)

	j := &journal{}
	a := NewAdmin(rn, client,
		catalog.NewCategoryService(client, mode, j),
		catalog.NewProductService(client, j),
		staff.New(client, j),
		j, nil,
	)

	h := &harness{t: t, backend: b, journal: j, sess: new(session.Session)}
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(session.NewContext(req.Context(), h.sess)))
		})
	})
	r.Get("/admin", a.Dashboard)
	r.Get("/admin/stores", a.StoresList)
	r.Get("/admin/stores/new", a.StoreNew)
	r.Post("/admin/stores", a.StoreCreate)
	r.Get("/admin/stores/{id}/edit", a.StoreEdit)
	r.Post("/admin/stores/{id}", a.StoreUpdate)
	r.Get("/admin/stores/{id}/delete", a.StoreDeleteConfirm)
	r.Post("/admin/stores/{id}/delete", a.StoreDelete)
	r.Get("/admin/categories", a.CategoriesList)
	r.Get("/admin/categories/new", a.CategoryNew)
	r.Post("/admin/categories", a.CategoryCreate)
	r.Post("/admin/categories/{id}/toggle", a.CategoryToggle)
	r.Get("/admin/categories/{id}/edit", a.CategoryEdit)
	r.Post("/admin/categories/{id}", a.CategoryUpdate)
	r.Get("/admin/categories/{id}/delete", a.CategoryDeleteConfirm)
	r.Post("/admin/categories/{id}/delete", a.CategoryDelete)
	r.Get("/admin/products", a.ProductsList)
	r.Get("/admin/products/new", a.ProductNew)
	r.Post("/admin/products", a.ProductCreate)
	r.Post("/admin/products/categories", a.ProductCategoryCreate)
	r.Get("/admin/products/{id}/edit", a.ProductEdit)
	r.Post("/admin/products/{id}", a.ProductUpdate)
	r.Get("/admin/products/{id}/delete", a.ProductDeleteConfirm)
	r.Post("/admin/products/{id}/delete", a.ProductDelete)
	r.Get("/admin/orders", a.OrdersList)
	r.Post("/admin/orders/{id}/status", a.OrderStatus)
	r.Get("/admin/employees", a.EmployeesList)
	r.Post("/admin/employees", a.EmployeeCreate)
	r.Get("/admin/employees/{id}/edit", a.EmployeeEdit)
	r.Post("/admin/employees/{id}", a.EmployeeUpdate)
	r.Get("/admin/customers", a.CustomersList)
	r.Get("/admin/customers/{id}/delete", a.CustomerDeleteConfirm)
	r.Post("/admin/customers/{id}/delete", a.CustomerDelete)
	h.mux = r
	return h
}

func (h *harness) get(target string) *httptest.ResponseRecorder {
	return h.serve(httptest.NewRequest(http.MethodGet, target, nil))
}

func (h *harness) post(target string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return h.serve(req)
}

func (h *harness) serve(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.mux.ServeHTTP(rr, req)
	return rr
}

func (h *harness) flashes() []string {
	var out []string
	for _, f := range h.sess.Flashes() {
		out = append(out, f.Message)
	}
	return out
}

func (h *harness) requested(prefix string) bool {
	return slices.ContainsFunc(h.backend.Requests(), func(s string) bool {
		return strings.HasPrefix(s, prefix)
	})
}

func seedFood(b *apitest.Backend) {
	b.SeedCategories(
		models.Category{ID: 1, Name: "Food"},
		models.Category{ID: 2, Name: "Drinks", ParentID: ptr(1)},
		models.Category{ID: 3, Name: "Snacks", ParentID: ptr(1)},
		models.Category{ID: 4, Name: "Soda", ParentID: ptr(2)},
		models.Category{ID: 5, Name: "Household"},
	)
}

func categoryIDs(b *apitest.Backend) []int64 {
	var ids []int64
	for _, c := range b.Categories() {
		ids = append(ids, c.ID)
	}
	slices.Sort(ids)
	return ids
}

func TestCategoriesListAndToggle(t *testing.T) {
	h := newHarness(t, apitest.Cascade, catalog.CascadeServer)
	seedFood(h.backend)

	rr := h.get("/admin/categories")
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "Food")
	assert.Contains(t, body, "Household")
	assert.NotContains(t, body, "Drinks", "children of a collapsed category are hidden")

	req := httptest.NewRequest(http.MethodPost, "/admin/categories/1/toggle", nil)
	req.Header.Set("HX-Request", "true")
	rr = h.serve(req)
	require.Equal(t, http.StatusOK, rr.Code)
	body = strings.TrimSpace(rr.Body.String())
	assert.True(t, strings.HasPrefix(body, `<div id="category-tree"`), "got %q", body)
	assert.Contains(t, body, "Drinks")
	assert.Contains(t, body, "Snacks")
	assert.NotContains(t, body, "Soda")
	assert.True(t, h.sess.Expanded().Has(1))

	rr = h.post("/admin/categories/1/toggle", nil)
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/admin/categories", rr.Header().Get("Location"))
	assert.False(t, h.sess.Expanded().Has(1))
}

func TestCategoriesListWarnsAndPrunes(t *testing.T) {
	h := newHarness(t, apitest.Cascade, catalog.CascadeServer)
	h.backend.SeedCategories(
		models.Category{ID: 1, Name: "Food"},
		models.Category{ID: 7, Name: "Lost", ParentID: ptr(99)},
	)
	h.sess.SetExpanded(tree.NewExpanded(1, 42))

	rr := h.get("/admin/categories")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Lost")
	assert.Contains(t, rr.Body.String(), "references missing parent 99")
	assert.Equal(t, []int64{1}, h.sess.Expanded().IDs())
}

func TestCategoriesListBackendDown(t *testing.T) {
	h := newHarness(t, apitest.Cascade, catalog.CascadeServer)
	h.backend.Fail(http.MethodGet, "/admin/categories", http.StatusServiceUnavailable, "maintenance")

	rr := h.get("/admin/categories")
	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.Contains(t, rr.Body.String(), "maintenance")
}

func TestCategoryCreate(t *testing.T) {
	h := newHarness(t, apitest.Cascade, catalog.CascadeServer)
	seedFood(h.backend)

	rr := h.post("/admin/categories", url.Values{"name": {"  Juice "}, "parent_id": {"2"}})
	require.Equal(t, http.StatusSeeOther, rr.Code)

	cats := h.backend.Categories()
	juice := cats[len(cats)-1]
	assert.Equal(t, "Juice", juice.Name)
	require.NotNil(t, juice.ParentID)
	assert.Equal(t, int64(2), *juice.ParentID)
	assert.True(t, h.sess.Expanded().Has(2), "the new category's parent is opened")
	assert.Equal(t, []string{`Category "Juice" created.`}, h.flashes())
	assert.True(t, h.journal.has("category create"))
}

func TestCategoryCreateRejected(t *testing.T) {
	tests := []struct {
		name string
		form url.Values
		want string
	}{
		{"blank name", url.Values{"name": {"  "}}, "Name is required."},
		{"unknown parent", url.Values{"name": {"X"}, "parent_id": {"99"}}, "The selected parent category does not exist."},
		{"malformed parent", url.Values{"name": {"X"}, "parent_id": {"abc"}}, "Choose a parent category from the list."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, apitest.Cascade, catalog.CascadeServer)
			seedFood(h.backend)

			rr := h.post("/admin/categories", tt.form)
			assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.want)
			assert.False(t, h.requested("POST /admin/categories"))
			assert.Len(t, h.backend.Categories(), 5)
		})
	}
}

func TestCategoryEditExcludesSubtree(t *testing.T) {
	h := newHarness(t, apitest.Cascade, catalog.CascadeServer)
	seedFood(h.backend)

	rr := h.get("/admin/categories/2/edit")
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `value="Drinks"`)
	assert.Contains(t, body, `<option value="1" selected>`)
	assert.Contains(t, body, "Snacks (ID: 3)")
	assert.Contains(t, body, "Household (ID: 5)")
	assert.NotContains(t, body, "Drinks (ID: 2)")
	assert.NotContains(t, body, "Soda (ID: 4)")
	assert.Contains(t, body, "/ Food / Drinks")
	assert.NotContains(t, body, "History")

	rr = h.get("/admin/categories/77/edit")
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, []string{"Category 77 no longer exists."}, h.flashes())
}

func TestCategoryUpdateRejectsCycle(t *testing.T) {
	h := newHarness(t, apitest.Cascade, catalog.CascadeServer)
	seedFood(h.backend)

	rr := h.post("/admin/categories/1", url.Values{"name": {"Food"}, "parent_id": {"4"}})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Body.String(), "The selected parent is a sub-category of this category.")

	rr = h.post("/admin/categories/1", url.Values{"name": {"Food"}, "parent_id": {"1"}})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Body.String(), "A category cannot be its own parent.")

	assert.False(t, h.requested("PUT /admin/categories"))
}

func TestCategoryUpdateMovesSubtree(t *testing.T) {
	h := newHarness(t, apitest.Cascade, catalog.CascadeServer)
	seedFood(h.backend)

	rr := h.post("/admin/categories/2", url.Values{"name": {"Beverages"}, "parent_id": {"5"}})
	require.Equal(t, http.StatusSeeOther, rr.Code)

	for _, c := range h.backend.Categories() {
		if c.ID == 2 {
			assert.Equal(t, "Beverages", c.Name)
			require.NotNil(t, c.ParentID)
			assert.Equal(t, int64(5), *c.ParentID)
		}
	}
	assert.Equal(t, []string{`Category "Beverages" saved.`}, h.flashes())
}

func TestCategoryDelete(t *testing.T) {
	tests := []struct {
		name   string
		policy apitest.DeletePolicy
		mode   catalog.CascadeMode
	}{
		{"server cascade", apitest.Cascade, catalog.CascadeServer},
		{"client cascade", apitest.Restrict, catalog.CascadeClient},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, tt.policy, tt.mode)
			seedFood(h.backend)

			rr := h.get("/admin/categories/2/delete")
			require.Equal(t, http.StatusOK, rr.Code)
			assert.Contains(t, rr.Body.String(), "Soda (ID: 4)")
			assert.Contains(t, rr.Body.String(), "Delete 2 categories")
			assert.Equal(t, tt.mode == catalog.CascadeClient, strings.Contains(rr.Body.String(), "deepest first"))

			rr = h.post("/admin/categories/2/delete", nil)
			assert.Equal(t, http.StatusSeeOther, rr.Code)
			assert.Equal(t, "/admin/categories/2/delete", rr.Header().Get("Location"))
			assert.False(t, h.requested("DELETE"), "nothing is deleted without confirmation")

			rr = h.post("/admin/categories/2/delete", url.Values{"confirm": {"yes"}})
			assert.Equal(t, http.StatusSeeOther, rr.Code)
			assert.Equal(t, []int64{1, 3, 5}, categoryIDs(h.backend))
			assert.Equal(t, []string{"Deleted 2 categories."}, h.flashes())
		})
	}
}

func TestCategoryDeletePartialFailure(t *testing.T) {
	h := newHarness(t, apitest.Restrict, catalog.CascadeClient)
	seedFood(h.backend)
	h.backend.Fail(http.MethodDelete, "/admin/categories/2", http.StatusConflict, "Category is used by products")

	rr := h.post("/admin/categories/2/delete", url.Values{"confirm": {"yes"}})
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, []int64{1, 2, 3, 5}, categoryIDs(h.backend))
	assert.Equal(t,
		[]string{"Deleted 1 category before the backend failed: Category is used by products"},
		h.flashes())
}

func TestStores(t *testing.T) {
	h := newHarness(t, apitest.Cascade, catalog.CascadeServer)
	h.backend.SeedStores(models.Store{ID: 1, Name: "Chilonzor", Address: "Bunyodkor 1"})

	rr := h.get("/admin/stores")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Chilonzor")

	rr = h.post("/admin/stores", url.Values{"name": {"Yunusobod"}})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Body.String(), "Address is required.")
	assert.Contains(t, rr.Body.String(), `value="Yunusobod"`, "typed values are kept")

	rr = h.post("/admin/stores", url.Values{"name": {"Yunusobod"}, "address": {"Amir Temur 5"}})
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Len(t, h.backend.Stores(), 2)
	assert.True(t, h.journal.has("store create"))

	rr = h.post("/admin/stores/1", url.Values{"name": {"Chilonzor 2"}, "address": {"Bunyodkor 1"}})
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "Chilonzor 2", h.backend.Stores()[0].Name)

	rr = h.get("/admin/stores/1/delete")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Chilonzor 2")

	h.flashes()
	rr = h.post("/admin/stores/1/delete", url.Values{"confirm": {"yes"}})
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Len(t, h.backend.Stores(), 1)
	assert.Equal(t, []string{"Store deleted."}, h.flashes())

	rr = h.get("/admin/stores/1/edit")
	assert.Equal(t, http.StatusSeeOther, rr.Code, "a deleted store sends the operator back to the list")
	assert.Len(t, h.flashes(), 1)
}

func TestProducts(t *testing.T) {
	h := newHarness(t, apitest.Cascade, catalog.CascadeServer)
	seedFood(h.backend)
	h.backend.SeedStores(
		models.Store{ID: 10, Name: "Chilonzor", Address: "Bunyodkor 1"},
		models.Store{ID: 11, Name: "Yunusobod", Address: "Amir Temur 5"},
	)

	rr := h.get("/admin/products/new")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "price_10")
	assert.Contains(t, rr.Body.String(), "price_11")

	rr = h.post("/admin/products", url.Values{
		"name": {"Cola"}, "category_id": {"4"},
		"price_10": {"-1"}, "currency_10": {"SUM"}, "stock_10": {"5"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Body.String(), "Price must be 0 or more.")
	assert.Empty(t, h.backend.Products())

	rr = h.post("/admin/products", url.Values{
		"name": {"Cola"}, "category_id": {"4"},
		"price_10": {"12000"}, "currency_10": {"SUM"}, "stock_10": {"5"},
		"price_11": {""}, "currency_11": {"SUM"}, "stock_11": {""},
	})
	require.Equal(t, http.StatusSeeOther, rr.Code)
	products := h.backend.Products()
	require.Len(t, products, 1)
	cola := products[0]
	assert.Equal(t, "Cola", cola.Name)
	require.Len(t, cola.Inventories, 1)
	assert.Equal(t, int64(10), cola.Inventories[0].StoreID)
	assert.True(t, decimal.NewFromInt(12000).Equal(cola.Inventories[0].Price))

	rr = h.get("/admin/products")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Soda", "category name is shown")

	target := "/admin/products/" + strconv.FormatInt(cola.ID, 10)
	rr = h.post(target, url.Values{
		"name": {"Cola Zero"}, "code": {cola.Code}, "category_id": {"4"},
		"price_10": {"13000"}, "currency_10": {"SUM"}, "stock_10": {"4"},
		"price_11": {"1.5"}, "currency_11": {"USD"}, "stock_11": {"2"},
	})
	require.Equal(t, http.StatusSeeOther, rr.Code)

	updated := h.backend.Products()[0]
	assert.Equal(t, "Cola Zero", updated.Name)
	require.Len(t, updated.Inventories, 2)
	byStore := map[int64]models.Inventory{}
	for _, inv := range updated.Inventories {
		byStore[inv.StoreID] = inv
	}
	assert.True(t, decimal.NewFromInt(13000).Equal(byStore[10].Price))
	assert.Equal(t, 4, byStore[10].StockCount)
	assert.Equal(t, models.CurrencyUSD, byStore[11].Currency)
	assert.True(t, h.journal.has("inventory update"))
	assert.True(t, h.journal.has("inventory create"))

	rr = h.post(target+"/delete", url.Values{"confirm": {"yes"}})
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Empty(t, h.backend.Products())
}

func TestProductCategoryCreate(t *testing.T) {
	h := newHarness(t, apitest.Cascade, catalog.CascadeServer)
	seedFood(h.backend)

	rr := h.post("/admin/products/categories", url.Values{"name": {"Tea"}, "parent_id": {"2"}})
	require.Equal(t, http.StatusOK, rr.Code)
	body := strings.TrimSpace(rr.Body.String())
	assert.True(t, strings.HasPrefix(body, `<div id="category-select"`), "got %q", body)
	assert.Contains(t, body, "Tea (ID: 6)")
	assert.Contains(t, body, `<option value="6" selected>`)

	rr = h.post("/admin/products/categories", url.Values{"name": {""}})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Name is required.")
}

func TestOrders(t *testing.T) {
	h := newHarness(t, apitest.Cascade, catalog.CascadeServer)
	h.backend.SeedOrders(
		models.Order{ID: 1, Status: models.OrderPending, User: &models.OrderUser{Name: "Aziz"}},
		models.Order{ID: 2, Status: models.OrderCompleted, User: &models.OrderUser{Name: "Bobur"}},
	)

	rr := h.get("/admin/orders?status=PENDING")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Aziz")
	assert.NotContains(t, rr.Body.String(), "Bobur")

	rr = h.get("/admin/orders?status=LOST")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Bobur", "an unknown filter shows every order")

	rr = h.post("/admin/orders/1/status", url.Values{"status": {"ACCEPTED"}, "filter": {"PENDING"}})
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/admin/orders?status=PENDING", rr.Header().Get("Location"))
	assert.Equal(t, models.OrderAccepted, h.backend.Orders()[0].Status)
	assert.True(t, h.journal.has("order status"))
	assert.Equal(t, []string{"Order #1 is now Accepted."}, h.flashes())

	rr = h.post("/admin/orders/1/status", url.Values{"status": {"LOST"}})
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/admin/orders", rr.Header().Get("Location"))
	puts := 0
	for _, req := range h.backend.Requests() {
		if req == "PUT /admin/orders/1/status" {
			puts++
		}
	}
	assert.Equal(t, 1, puts, "an unknown status is never sent")
	assert.Len(t, h.flashes(), 1)
}

func TestEmployees(t *testing.T) {
	h := newHarness(t, apitest.Cascade, catalog.CascadeServer)
	h.backend.SeedUsers(
		models.User{ID: 1, Name: "Aziz", Phone: "+998901234567", TelegramID: "555", Role: models.RoleClient},
	)

	rr := h.post("/admin/employees", url.Values{"name": {"Aziz"}, "phone": {"abc"}, "role": {"COURIER"}})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Body.String(), "Phone must be in international format")

	rr = h.post("/admin/employees", url.Values{"name": {"Aziz"}, "phone": {"998 90 123 45 67"}, "role": {"COURIER"}})
	require.Equal(t, http.StatusSeeOther, rr.Code)
	users := h.backend.Users()
	require.Len(t, users, 1, "an existing user is promoted, not duplicated")
	assert.Equal(t, models.RoleCourier, users[0].Role)
	assert.Equal(t, []string{"Aziz already had an account; their role is now Courier."}, h.flashes())

	rr = h.post("/admin/employees", url.Values{"name": {"Dilnoza"}, "phone": {"+998907654321"}})
	require.Equal(t, http.StatusSeeOther, rr.Code)
	users = h.backend.Users()
	require.Len(t, users, 2)
	assert.Equal(t, models.RoleOrderReceiver, users[1].Role)
	assert.Equal(t, "phone_998907654321", users[1].TelegramID)

	rr = h.get("/admin/employees")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Dilnoza")

	rr = h.post("/admin/employees/2", url.Values{"name": {"Dilnoza"}, "phone": {"+998907654321"}, "role": {"CLIENT"}})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Body.String(), "Choose one of the employee roles.")
}

func TestCustomers(t *testing.T) {
	h := newHarness(t, apitest.Cascade, catalog.CascadeServer)
	h.backend.SeedUsers(
		models.User{ID: 1, Name: "Aziz", Phone: "+998901234567", Role: models.RoleClient},
		models.User{ID: 2, Name: "Bobur", Phone: "+998907777777", Role: models.RoleClient},
		models.User{ID: 3, Name: "Azamat", Phone: "+998905555555", Role: models.RoleCourier},
	)

	rr := h.get("/admin/customers?q=az")
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "Aziz")
	assert.NotContains(t, body, "Bobur")
	assert.NotContains(t, body, "Azamat", "employees are not customers")
	assert.Contains(t, body, "1 of 2")

	rr = h.post("/admin/customers/2/delete", url.Values{"confirm": {"yes"}})
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/admin/customers", rr.Header().Get("Location"))
	assert.Len(t, h.backend.Users(), 2)
	assert.Len(t, h.flashes(), 1)
}

func TestDashboard(t *testing.T) {
	h := newHarness(t, apitest.Cascade, catalog.CascadeServer)
	seedFood(h.backend)

	rr := h.get("/admin")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Dashboard")
}

func TestDashboardWithAudit(t *testing.T) {
	b := apitest.New(apitest.Cascade)
	client := api.New(api.Config{BaseURL: apitest.Start(t, b), Timeout: 2 * time.Second}, nil)
	rn, err := render.New(language.English)
	require.NoError(t, err)

	audit := fakeAudit{entries: []store.AuditEntry{
		{ID: 1, Entity: "category", EntityID: 42, Action: "delete", RecordedAt: time.Now()},
	}}
	a := NewAdmin(rn, client, catalog.NewCategoryService(client, catalog.CascadeServer, nil),
		catalog.NewProductService(client, nil), staff.New(client, nil), nil, audit)

	rr := httptest.NewRecorder()
	a.Dashboard(rr, httptest.NewRequest(http.MethodGet, "/admin", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Recent changes")
	assert.Contains(t, rr.Body.String(), "<td>42</td>")
}

func TestParseID(t *testing.T) {
	for _, raw := range []string{"abc", "0", "-3"} {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", raw)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

		rr := httptest.NewRecorder()
		_, ok := parseID(rr, req)
		assert.False(t, ok, raw)
		assert.Equal(t, http.StatusBadRequest, rr.Code, raw)
	}
}

func TestCategoryEditShowsHistory(t *testing.T) {
	b := apitest.New(apitest.Cascade)
	seedFood(b)
	client := api.New(api.Config{BaseURL: apitest.Start(t, b), Timeout: 2 * time.Second}, nil)
	rn, err := render.New(language.English)
	require.NoError(t, err)

	audit := fakeAudit{entries: []store.AuditEntry{
		{ID: 1, Entity: "category", EntityID: 2, Action: "update", RequestID: "req-2", RecordedAt: time.Now()},
		{ID: 2, Entity: "store", EntityID: 2, Action: "delete", RequestID: "req-store", RecordedAt: time.Now()},
	}}
	a := NewAdmin(rn, client, catalog.NewCategoryService(client, catalog.CascadeServer, nil),
		catalog.NewProductService(client, nil), staff.New(client, nil), nil, audit)

	r := chi.NewRouter()
	r.Get("/admin/categories/{id}/edit", a.CategoryEdit)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin/categories/2/edit", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "History")
	assert.Contains(t, body, "req-2")
	assert.NotContains(t, body, "req-store")
}
