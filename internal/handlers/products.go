// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"cmp"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"zakazadmin/internal/api"
	"zakazadmin/internal/catalog"
	"zakazadmin/internal/models"
	"zakazadmin/internal/render"
	"zakazadmin/internal/requestid"
	"zakazadmin/internal/session"
)

// productRow is one line of the products table. Stock is aligned with the
// store columns; a nil entry means the product is not sold in that store.
type productRow struct {
	Product  models.Product
	Category string
	Stock    []*models.Inventory
}

// stockRow is one store line of the product form.
type stockRow struct {
	Store      models.Store
	Price      string
	Currency   models.Currency
	StockCount int
}

// ProductsList lists products with their category and per-store prices.
func (a *Admin) ProductsList(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{}
	status := http.StatusOK

	list, err := a.products.List(r.Context())
	if err != nil {
		status = a.loadFailed(r, "list products failed", err, data)
	} else {
		rows := make([]productRow, 0, len(list.Products))
		for _, p := range list.Products {
			row := productRow{Product: p, Category: list.CategoryName(p)}
			for _, s := range list.Stores {
				row.Stock = append(row.Stock, row.Product.InventoryFor(s.ID))
			}
			rows = append(rows, row)
		}
		data["Rows"] = rows
		data["Stores"] = list.Stores
	}

	a.renderer.PageStatus(w, r, status, "products_list", &render.PageData{
		Title:   "Products",
		Section: "products",
		Data:    data,
	})
}

// ProductNew renders an empty product form with a suggested code.
func (a *Admin) ProductNew(w http.ResponseWriter, r *http.Request) {
	a.renderProductForm(w, r, http.StatusOK, 0, nil, nil, "")
}

// ProductCreate handles the new product form submission.
func (a *Admin) ProductCreate(w http.ResponseWriter, r *http.Request) {
	in, raw, errMsg := parseProductForm(r)
	if errMsg == "" {
		errMsg = validateInput(in)
	}
	if errMsg != "" {
		a.renderProductForm(w, r, http.StatusUnprocessableEntity, 0, &in, raw, errMsg)
		return
	}

	created, err := a.products.Create(r.Context(), in)
	if err != nil {
		slog.Error("create product failed", "error", err, "request_id", requestid.From(r.Context()))
		a.renderProductForm(w, r, formErrorStatus(err), 0, &in, raw, errorText(err))
		return
	}

	flash(r, session.FlashSuccess, fmt.Sprintf("Product %q created.", created.Name))
	render.Redirect(w, r, "/admin/products")
}

// ProductEdit renders the edit form of a product.
func (a *Admin) ProductEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	a.renderProductForm(w, r, http.StatusOK, id, nil, nil, "")
}

// ProductUpdate saves a product and upserts its stock in every store that
// has a price on the form.
func (a *Admin) ProductUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	in, raw, errMsg := parseProductForm(r)
	if errMsg == "" {
		errMsg = validateInput(in)
	}
	if errMsg != "" {
		a.renderProductForm(w, r, http.StatusUnprocessableEntity, id, &in, raw, errMsg)
		return
	}

	err := a.products.Update(r.Context(), id, in)
	switch {
	case errors.Is(err, api.ErrNotFound):
		a.failAndRedirect(w, r, "/admin/products", "update product failed", err)
		return
	case err != nil:
		slog.Error("update product failed", "id", id, "error", err, "request_id", requestid.From(r.Context()))
		a.renderProductForm(w, r, formErrorStatus(err), id, &in, raw, errorText(err))
		return
	}

	flash(r, session.FlashSuccess, fmt.Sprintf("Product %q saved.", in.Name))
	render.Redirect(w, r, "/admin/products")
}

// ProductDeleteConfirm asks the operator to confirm a product delete.
func (a *Admin) ProductDeleteConfirm(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	p, err := a.backend.GetProduct(r.Context(), id)
	if err != nil {
		a.failAndRedirect(w, r, "/admin/products", "load product failed", err)
		return
	}
	var details []string
	if p.Code != "" {
		details = append(details, "Code "+p.Code)
	}
	if n := len(p.Inventories); n > 0 {
		details = append(details, fmt.Sprintf("Sold in %d %s; its stock is removed too.", n, plural(n, "store", "stores")))
	}
	a.renderer.Page(w, r, "confirm_delete", &render.PageData{
		Title:   "Delete product",
		Section: "products",
		Data: map[string]any{
			"Entity":  "product",
			"Name":    p.Name,
			"ID":      p.ID,
			"Details": details,
			"Action":  fmt.Sprintf("/admin/products/%d/delete", p.ID),
			"Back":    "/admin/products",
		},
	})
}

// ProductDelete removes a product once confirmed.
func (a *Admin) ProductDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if !confirmed(r) {
		render.Redirect(w, r, fmt.Sprintf("/admin/products/%d/delete", id))
		return
	}
	if err := a.products.Delete(r.Context(), id); err != nil {
		a.failAndRedirect(w, r, "/admin/products", "delete product failed", err)
		return
	}
	flash(r, session.FlashSuccess, "Product deleted.")
	render.Redirect(w, r, "/admin/products")
}

// ProductCategoryCreate adds a category from the product form and returns
// the refreshed category select with the new category chosen.
func (a *Admin) ProductCategoryCreate(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{}

	in, errMsg := categoryInputFromForm(r)
	if errMsg == "" {
		errMsg = validateInput(in)
	}
	if errMsg == "" {
		created, err := a.categories.Create(r.Context(), in)
		if err != nil {
			slog.Error("create category failed", "error", err, "request_id", requestid.From(r.Context()))
			errMsg = errorText(err)
		} else {
			data["CategoryID"] = &created.ID
		}
	}
	if errMsg != "" {
		data["CategoryError"] = errMsg
	}

	t, err := a.categories.Load(r.Context())
	if err != nil {
		slog.Error("load categories failed", "error", err, "request_id", requestid.From(r.Context()))
		data["CategoryError"] = errorText(err)
	} else {
		data["Options"] = t.ParentOptions(0)
	}
	a.renderer.Fragment(w, r, "product_form", "category_select", &render.PageData{Data: data})
}

// --- helpers ---

// parseProductForm reads the product fields and one stock entry per store
// that has a price. raw keeps the typed values for re-rendering.
func parseProductForm(r *http.Request) (models.ProductInput, map[int64]stockRow, string) {
	in := models.ProductInput{
		Name: strings.TrimSpace(r.FormValue("name")),
		Code: strings.TrimSpace(r.FormValue("code")),
	}
	if u := strings.TrimSpace(r.FormValue("image_url")); u != "" {
		in.ImageURL = &u
	}
	categoryID, ok := optionalID(r.FormValue("category_id"))
	if !ok {
		return in, nil, "Choose a category from the list."
	}
	in.CategoryID = categoryID

	raw := make(map[int64]stockRow)
	var errMsg string
	for key := range r.PostForm {
		idStr, found := strings.CutPrefix(key, "price_")
		if !found {
			continue
		}
		storeID, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil || storeID <= 0 {
			continue
		}
		row := stockRow{
			Store:    models.Store{ID: storeID},
			Price:    strings.TrimSpace(r.PostFormValue(key)),
			Currency: models.Currency(r.PostFormValue(fmt.Sprintf("currency_%d", storeID))),
		}
		if row.Currency == "" {
			row.Currency = models.CurrencySUM
		}
		stock := strings.TrimSpace(r.PostFormValue(fmt.Sprintf("stock_%d", storeID)))
		if stock != "" {
			n, err := strconv.Atoi(stock)
			if err != nil && errMsg == "" {
				errMsg = "Stock must be a whole number."
			}
			row.StockCount = n
		}
		raw[storeID] = row
		if row.Price == "" {
			continue
		}

		price, err := decimal.NewFromString(strings.ReplaceAll(row.Price, ",", "."))
		switch {
		case err != nil:
			if errMsg == "" {
				errMsg = fmt.Sprintf("Price %q is not a number.", row.Price)
			}
			continue
		case price.IsNegative():
			if errMsg == "" {
				errMsg = "Price must be 0 or more."
			}
			continue
		}
		in.Inventories = append(in.Inventories, models.InventoryInput{
			StoreID:    storeID,
			Price:      price,
			Currency:   row.Currency,
			StockCount: row.StockCount,
		})
	}
	slices.SortFunc(in.Inventories, func(a, b models.InventoryInput) int {
		return cmp.Compare(a.StoreID, b.StoreID)
	})
	return in, raw, errMsg
}

// renderProductForm loads the stores and categories and renders the form.
// A nil in shows the stored product (or a new one with the suggested
// code); otherwise the submitted values in raw are shown again.
func (a *Admin) renderProductForm(w http.ResponseWriter, r *http.Request, status int, id int64, in *models.ProductInput, raw map[int64]stockRow, errMsg string) {
	ctx := r.Context()
	data := map[string]any{"IsNew": id == 0}
	if errMsg != "" {
		data["Error"] = errMsg
	}
	title := "Edit product"
	if id == 0 {
		title = "New product"
	}

	form, err := a.products.Form(ctx, id)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			a.failAndRedirect(w, r, "/admin/products", "load product failed", err)
			return
		}
		status = a.loadFailed(r, "load product form failed", err, data)
		form = &catalog.ProductForm{}
	}

	item := models.Product{ID: id, Code: form.NextCode}
	if form.Product != nil {
		item = *form.Product
	}
	if in != nil {
		item.Name, item.Code, item.ImageURL, item.CategoryID = in.Name, in.Code, in.ImageURL, in.CategoryID
	}

	stock := make([]stockRow, 0, len(form.Stores))
	for _, s := range form.Stores {
		row := stockRow{Store: s, Currency: models.CurrencySUM}
		if typed, ok := raw[s.ID]; in != nil && ok {
			row.Price, row.Currency, row.StockCount = typed.Price, typed.Currency, typed.StockCount
		} else if inv := item.InventoryFor(s.ID); inv != nil {
			row.Price, row.Currency, row.StockCount = inv.Price.String(), inv.Currency, inv.StockCount
		}
		stock = append(stock, row)
	}

	data["Item"] = item
	data["Stock"] = stock
	data["CategoryID"] = item.CategoryID
	if form.Categories != nil {
		data["Options"] = form.Categories.ParentOptions(0)
	}

	a.renderer.PageStatus(w, r, status, "product_form", &render.PageData{
		Title:   title,
		Section: "products",
		Data:    data,
	})
}
