// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zakazadmin/internal/api"
	"zakazadmin/internal/api/apitest"
	"zakazadmin/internal/models"
	"zakazadmin/internal/tree"
)

func ptr(v int64) *int64 { return &v }

type recorder struct {
	mu      sync.Mutex
	entries []string
}

func (r *recorder) Mutated(_ context.Context, entity, action string, id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entity+" "+action)
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := append([]string(nil), r.entries...)
	sort.Strings(out)
	return out
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

func setup(t *testing.T, policy apitest.DeletePolicy) (*apitest.Backend, *api.Client) {
	t.Helper()
	b := apitest.New(policy)
	c := api.New(api.Config{BaseURL: apitest.Start(t, b), Timeout: 2 * time.Second}, nil)
	return b, c
}

func categoryIDs(cats []models.Category) []int64 {
	var ids []int64
	for _, c := range cats {
		ids = append(ids, c.ID)
	}
	return ids
}

func TestParseCascadeMode(t *testing.T) {
	m, err := ParseCascadeMode(" Client ")
	require.NoError(t, err)
	assert.Equal(t, CascadeClient, m)

	_, err = ParseCascadeMode("both")
	assert.Error(t, err)
}

func TestDeleteCascadesInBothModes(t *testing.T) {
	tests := []struct {
		name   string
		mode   CascadeMode
		policy apitest.DeletePolicy
	}{
		{name: "server mode on cascading backend", mode: CascadeServer, policy: apitest.Cascade},
		{name: "client mode on restricting backend", mode: CascadeClient, policy: apitest.Restrict},
		{name: "client mode on orphaning backend", mode: CascadeClient, policy: apitest.Orphan},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, c := setup(t, tt.policy)
			seedFood(b)
			j := &recorder{}
			svc := NewCategoryService(c, tt.mode, j)

			deleted, err := svc.Delete(context.Background(), 1)
			require.NoError(t, err)
			assert.ElementsMatch(t, []int64{1, 2, 3, 4}, deleted)
			assert.Equal(t, []int64{5}, categoryIDs(b.Categories()))
			assert.NotEmpty(t, j.list())
		})
	}
}

func TestClientCascadeDeletesLeavesFirst(t *testing.T) {
	b, c := setup(t, apitest.Restrict)
	seedFood(b)
	svc := NewCategoryService(c, CascadeClient, nil)

	_, err := svc.Delete(context.Background(), 1)
	require.NoError(t, err)

	var deletes []string
	for _, r := range b.Requests() {
		if r[:6] == "DELETE" {
			deletes = append(deletes, r)
		}
	}
	assert.Equal(t, []string{
		"DELETE /admin/categories/4",
		"DELETE /admin/categories/2",
		"DELETE /admin/categories/3",
		"DELETE /admin/categories/1",
	}, deletes)
}

func TestClientCascadePartialFailure(t *testing.T) {
	b, c := setup(t, apitest.Restrict)
	seedFood(b)
	b.Fail("DELETE", "/admin/categories/3", http.StatusInternalServerError, "boom")
	svc := NewCategoryService(c, CascadeClient, nil)

	deleted, err := svc.Delete(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, []int64{4, 2}, deleted)
	assert.Equal(t, "boom", api.Message(err))
	assert.ElementsMatch(t, []int64{1, 3, 5}, categoryIDs(b.Categories()))
}

func TestServerModeSurfacesRestrictError(t *testing.T) {
	b, c := setup(t, apitest.Restrict)
	seedFood(b)
	svc := NewCategoryService(c, CascadeServer, nil)

	_, err := svc.Delete(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, api.Message(err), "sub-categories")
	assert.Len(t, b.Categories(), 5)
}

func TestDeleteUnknownCategory(t *testing.T) {
	_, c := setup(t, apitest.Cascade)
	svc := NewCategoryService(c, CascadeServer, nil)

	_, err := svc.Delete(context.Background(), 9)
	assert.ErrorIs(t, err, api.ErrNotFound)
}

func TestPlanDelete(t *testing.T) {
	b, c := setup(t, apitest.Cascade)
	seedFood(b)
	svc := NewCategoryService(c, CascadeServer, nil)

	plan, err := svc.PlanDelete(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "Drinks", plan.Target.Name)
	require.Len(t, plan.Descendants, 1)
	assert.Equal(t, "Soda", plan.Descendants[0].Name)
	assert.Equal(t, 2, plan.Count())
}

func TestUpdateRejectsCycles(t *testing.T) {
	b, c := setup(t, apitest.Cascade)
	seedFood(b)
	svc := NewCategoryService(c, CascadeServer, nil)
	ctx := context.Background()

	_, err := svc.Update(ctx, 2, models.CategoryInput{Name: "Drinks", ParentID: ptr(4)})
	assert.ErrorIs(t, err, tree.ErrCycle)

	_, err = svc.Update(ctx, 2, models.CategoryInput{Name: "Drinks", ParentID: ptr(2)})
	assert.ErrorIs(t, err, tree.ErrSelfParent)

	_, err = svc.Update(ctx, 2, models.CategoryInput{Name: "Drinks", ParentID: ptr(40)})
	assert.ErrorIs(t, err, tree.ErrUnknownParent)

	_, err = svc.Update(ctx, 2, models.CategoryInput{Name: "  ", ParentID: nil})
	assert.ErrorIs(t, err, ErrNameRequired)

	_, err = svc.Update(ctx, 77, models.CategoryInput{Name: "Ghost"})
	assert.ErrorIs(t, err, api.ErrNotFound)

	// None of the rejected updates reached the backend.
	for _, r := range b.Requests() {
		assert.NotContains(t, r, "PUT")
	}

	updated, err := svc.Update(ctx, 4, models.CategoryInput{Name: " Soda water ", ParentID: ptr(5)})
	require.NoError(t, err)
	assert.Equal(t, "Soda water", updated.Name)
	assert.Equal(t, int64(5), *updated.ParentID)
}

func TestCreateThenLoadReflectsServerState(t *testing.T) {
	b, c := setup(t, apitest.Cascade)
	seedFood(b)
	svc := NewCategoryService(c, CascadeServer, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, models.CategoryInput{Name: "Juice", ParentID: ptr(2)})
	require.NoError(t, err)

	tr, err := svc.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, tr.Node(created.ID))
	assert.Equal(t, int64(2), tr.Node(created.ID).Parent.ID)

	_, err = svc.Create(ctx, models.CategoryInput{Name: "Orphan", ParentID: ptr(99)})
	assert.ErrorIs(t, err, tree.ErrUnknownParent)
}

func TestLoadReportsDanglingParents(t *testing.T) {
	b, c := setup(t, apitest.Cascade)
	b.SeedCategories(models.Category{ID: 1, Name: "A", ParentID: ptr(99)})
	svc := NewCategoryService(c, CascadeServer, nil)

	tr, err := svc.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, tr.Problems, 1)
	assert.Equal(t, tree.DanglingParent, tr.Problems[0].Kind)
}

func TestProductUpdateUpsertsInventory(t *testing.T) {
	b, c := setup(t, apitest.Cascade)
	b.SeedStores(
		models.Store{ID: 1, Name: "Chilonzor", Address: "A"},
		models.Store{ID: 2, Name: "Yunusobod", Address: "B"},
	)
	b.SeedProducts(models.Product{
		ID: 10, Name: "Tea", Code: "0001",
		Inventories: []models.Inventory{{ID: 100, StoreID: 1, Price: decimal.NewFromInt(5000), Currency: models.CurrencySUM, StockCount: 1}},
	})
	j := &recorder{}
	svc := NewProductService(c, j)

	err := svc.Update(context.Background(), 10, models.ProductInput{
		Name: "Green tea",
		Code: "0001",
		Inventories: []models.InventoryInput{
			{StoreID: 1, Price: decimal.NewFromInt(5500), Currency: models.CurrencySUM, StockCount: 4},
			{StoreID: 2, Price: decimal.NewFromInt(2), Currency: models.CurrencyUSD, StockCount: 9},
		},
	})
	require.NoError(t, err)

	p := b.Products()[0]
	assert.Equal(t, "Green tea", p.Name)
	require.Len(t, p.Inventories, 2)
	existing := p.InventoryFor(1)
	require.NotNil(t, existing)
	assert.Equal(t, int64(100), existing.ID)
	assert.True(t, existing.Price.Equal(decimal.NewFromInt(5500)))
	added := p.InventoryFor(2)
	require.NotNil(t, added)
	assert.Equal(t, models.CurrencyUSD, added.Currency)

	assert.Equal(t, []string{"inventory create", "inventory update", "product update"}, j.list())
}

func TestProductFormIgnoresNextCodeFailure(t *testing.T) {
	b, c := setup(t, apitest.Cascade)
	b.Fail("GET", "/admin/products/next-code", http.StatusInternalServerError, "no codes")
	svc := NewProductService(c, nil)

	f, err := svc.Form(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, f.NextCode)
	assert.Nil(t, f.Product)
}

func TestProductListCategoryName(t *testing.T) {
	b, c := setup(t, apitest.Cascade)
	seedFood(b)
	b.SeedProducts(
		models.Product{ID: 20, Name: "Cola", CategoryID: ptr(4)},
		models.Product{ID: 21, Name: "Loose", CategoryID: ptr(404)},
	)
	svc := NewProductService(c, nil)

	l, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, l.Products, 2)
	assert.Equal(t, "Soda", l.CategoryName(l.Products[0]))
	assert.Equal(t, "", l.CategoryName(l.Products[1]))
}

func TestLoadSummary(t *testing.T) {
	b, c := setup(t, apitest.Cascade)
	seedFood(b)
	b.SeedStores(models.Store{ID: 1, Name: "S", Address: "A"})
	b.SeedOrders(
		models.Order{ID: 1, Status: models.OrderPending},
		models.Order{ID: 2, Status: models.OrderPending},
		models.Order{ID: 3, Status: models.OrderCompleted},
	)

	s, err := LoadSummary(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, Summary{Stores: 1, Categories: 5, Products: 0, Orders: 3, Pending: 2}, *s)
}

func TestLoadSummaryFailsAsAWhole(t *testing.T) {
	b, c := setup(t, apitest.Cascade)
	b.Fail("GET", "/admin/products", http.StatusBadGateway, "upstream")

	_, err := LoadSummary(context.Background(), c)
	require.Error(t, err)
	assert.Equal(t, "upstream", api.Message(err))
}
