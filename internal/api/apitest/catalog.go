package apitest

import (
	"fmt"
	"net/http"
	"slices"
	"strings"

	"zakazadmin/internal/models"
)

func storeID(s models.Store) int64         { return s.ID }
func categoryID(c models.Category) int64   { return c.ID }
func productID(p models.Product) int64     { return p.ID }
func inventoryID(i models.Inventory) int64 { return i.ID }

// SeedStores adds stores, keeping their ids.
func (b *Backend) SeedStores(stores ...models.Store) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, s := range stores {
		b.bump(s.ID)
		b.stores = append(b.stores, s)
	}
}

// Stores returns a snapshot of the stored stores.
func (b *Backend) Stores() []models.Store {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.stores)
}

// SeedCategories adds categories in order, keeping their ids. No
// validation is applied, so tests can seed dangling parents and loops.
func (b *Backend) SeedCategories(cats ...models.Category) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, c := range cats {
		b.bump(c.ID)
		b.categories = append(b.categories, c)
	}
}

// Categories returns a snapshot of the stored categories.
func (b *Backend) Categories() []models.Category {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.categories)
}

// SeedProducts adds products, keeping their ids. Inventories embedded in
// the products are stored as inventory rows.
func (b *Backend) SeedProducts(products ...models.Product) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, p := range products {
		b.bump(p.ID)
		for _, inv := range p.Inventories {
			inv.ProductID = p.ID
			if inv.ID == 0 {
				inv.ID = b.newID()
			}
			b.bump(inv.ID)
			b.inventories = append(b.inventories, inv)
		}
		p.Inventories = nil
		b.products = append(b.products, p)
	}
}

// Products returns a snapshot of the stored products with their inventories.
func (b *Backend) Products() []models.Product {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]models.Product, 0, len(b.products))
	for _, p := range b.products {
		out = append(out, b.withInventories(p))
	}
	return out
}

// Inventories returns a snapshot of the stored inventory rows.
func (b *Backend) Inventories() []models.Inventory {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.inventories)
}

func (b *Backend) withInventories(p models.Product) models.Product {
	p.Inventories = nil
	for _, inv := range b.inventories {
		if inv.ProductID == p.ID {
			p.Inventories = append(p.Inventories, inv)
		}
	}
	return p
}

func (b *Backend) listStores(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, b.Stores())
}

func (b *Backend) getStore(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	i := index(b.stores, id, storeID)
	if i < 0 {
		notFound(w, "Store")
		return
	}
	writeJSON(w, http.StatusOK, b.stores[i])
}

func validStore(in models.StoreInput) string {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Address) == "" {
		return "name and address are required"
	}
	return ""
}

func (b *Backend) createStore(w http.ResponseWriter, r *http.Request) {
	var in models.StoreInput
	if !decode(w, r, &in) {
		return
	}
	if msg := validStore(in); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	s := models.Store{ID: b.newID(), Name: in.Name, Address: in.Address}
	b.stores = append(b.stores, s)
	writeJSON(w, http.StatusCreated, s)
}

func (b *Backend) updateStore(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in models.StoreInput
	if !decode(w, r, &in) {
		return
	}
	if msg := validStore(in); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	i := index(b.stores, id, storeID)
	if i < 0 {
		notFound(w, "Store")
		return
	}
	b.stores[i].Name, b.stores[i].Address = in.Name, in.Address
	writeJSON(w, http.StatusOK, b.stores[i])
}

func (b *Backend) deleteStore(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	i := index(b.stores, id, storeID)
	if i < 0 {
		notFound(w, "Store")
		return
	}
	b.stores = slices.Delete(b.stores, i, i+1)
	b.inventories = slices.DeleteFunc(b.inventories, func(inv models.Inventory) bool { return inv.StoreID == id })
	w.WriteHeader(http.StatusNoContent)
}

func (b *Backend) listCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, b.Categories())
}

func (b *Backend) getCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	i := index(b.categories, id, categoryID)
	if i < 0 {
		notFound(w, "Category")
		return
	}
	writeJSON(w, http.StatusOK, b.categories[i])
}

// checkCategory must be called with b.mu held.
func (b *Backend) checkCategory(in models.CategoryInput) string {
	if strings.TrimSpace(in.Name) == "" {
		return "name is required"
	}
	if in.ParentID != nil && index(b.categories, *in.ParentID, categoryID) < 0 {
		return "parent category not found"
	}
	return ""
}

func (b *Backend) createCategory(w http.ResponseWriter, r *http.Request) {
	var in models.CategoryInput
	if !decode(w, r, &in) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if msg := b.checkCategory(in); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	c := models.Category{ID: b.newID(), Name: in.Name, ParentID: in.ParentID}
	b.categories = append(b.categories, c)
	writeJSON(w, http.StatusCreated, c)
}

func (b *Backend) updateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in models.CategoryInput
	if !decode(w, r, &in) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	i := index(b.categories, id, categoryID)
	if i < 0 {
		notFound(w, "Category")
		return
	}
	if msg := b.checkCategory(in); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	b.categories[i].Name, b.categories[i].ParentID = in.Name, in.ParentID
	writeJSON(w, http.StatusOK, b.categories[i])
}

func (b *Backend) deleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if index(b.categories, id, categoryID) < 0 {
		notFound(w, "Category")
		return
	}

	hasChildren := slices.ContainsFunc(b.categories, func(c models.Category) bool {
		return c.ParentID != nil && *c.ParentID == id
	})

	doomed := map[int64]bool{id: true}
	switch {
	case b.policy == Restrict && hasChildren:
		writeError(w, http.StatusConflict, "Cannot delete a category that has sub-categories")
		return
	case b.policy == Cascade:
		// Sweep until no remaining category hangs under a doomed one.
		for changed := true; changed; {
			changed = false
			for _, c := range b.categories {
				if c.ParentID != nil && doomed[*c.ParentID] && !doomed[c.ID] {
					doomed[c.ID] = true
					changed = true
				}
			}
		}
	}

	b.categories = slices.DeleteFunc(b.categories, func(c models.Category) bool { return doomed[c.ID] })
	for i := range b.products {
		if p := b.products[i].CategoryID; p != nil && doomed[*p] {
			b.products[i].CategoryID = nil
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (b *Backend) listProducts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, b.Products())
}

func (b *Backend) getProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	i := index(b.products, id, productID)
	if i < 0 {
		notFound(w, "Product")
		return
	}
	writeJSON(w, http.StatusOK, b.withInventories(b.products[i]))
}

func (b *Backend) nextProductCode(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	writeJSON(w, http.StatusOK, models.NextCode{Code: fmt.Sprintf("%04d", b.nextCode)})
}

func (b *Backend) createProduct(w http.ResponseWriter, r *http.Request) {
	var in models.ProductInput
	if !decode(w, r, &in) {
		return
	}
	if strings.TrimSpace(in.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	p := models.Product{ID: b.newID(), Name: in.Name, Code: in.Code, ImageURL: in.ImageURL, CategoryID: in.CategoryID}
	if p.Code == "" {
		p.Code = fmt.Sprintf("%04d", b.nextCode)
	}
	b.nextCode++
	b.products = append(b.products, p)
	for _, inv := range in.Inventories {
		b.inventories = append(b.inventories, models.Inventory{
			ID: b.newID(), ProductID: p.ID, StoreID: inv.StoreID,
			Price: inv.Price, Currency: inv.Currency, StockCount: inv.StockCount,
		})
	}
	writeJSON(w, http.StatusCreated, b.withInventories(p))
}

func (b *Backend) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in models.ProductInput
	if !decode(w, r, &in) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	i := index(b.products, id, productID)
	if i < 0 {
		notFound(w, "Product")
		return
	}
	p := &b.products[i]
	p.Name, p.Code, p.ImageURL, p.CategoryID = in.Name, in.Code, in.ImageURL, in.CategoryID
	writeJSON(w, http.StatusOK, b.withInventories(*p))
}

func (b *Backend) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	i := index(b.products, id, productID)
	if i < 0 {
		notFound(w, "Product")
		return
	}
	b.products = slices.Delete(b.products, i, i+1)
	b.inventories = slices.DeleteFunc(b.inventories, func(inv models.Inventory) bool { return inv.ProductID == id })
	w.WriteHeader(http.StatusNoContent)
}

func (b *Backend) createInventory(w http.ResponseWriter, r *http.Request) {
	var in models.InventoryInput
	if !decode(w, r, &in) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if index(b.products, in.ProductID, productID) < 0 || index(b.stores, in.StoreID, storeID) < 0 {
		writeError(w, http.StatusBadRequest, "product and store are required")
		return
	}
	inv := models.Inventory{
		ID: b.newID(), ProductID: in.ProductID, StoreID: in.StoreID,
		Price: in.Price, Currency: in.Currency, StockCount: in.StockCount,
	}
	b.inventories = append(b.inventories, inv)
	writeJSON(w, http.StatusCreated, inv)
}

func (b *Backend) updateInventory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in models.InventoryInput
	if !decode(w, r, &in) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	i := index(b.inventories, id, inventoryID)
	if i < 0 {
		notFound(w, "Inventory")
		return
	}
	inv := &b.inventories[i]
	inv.Price, inv.Currency, inv.StockCount = in.Price, in.Currency, in.StockCount
	writeJSON(w, http.StatusOK, *inv)
}

func (b *Backend) deleteInventory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	i := index(b.inventories, id, inventoryID)
	if i < 0 {
		notFound(w, "Inventory")
		return
	}
	b.inventories = slices.Delete(b.inventories, i, i+1)
	w.WriteHeader(http.StatusNoContent)
}
