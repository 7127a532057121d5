package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"zakazadmin/internal/api"
	"zakazadmin/internal/models"
	"zakazadmin/internal/render"
	"zakazadmin/internal/requestid"
	"zakazadmin/internal/session"
)

// StoresList lists all stores.
func (a *Admin) StoresList(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{}
	status := http.StatusOK

	stores, err := a.backend.ListStores(r.Context())
	if err != nil {
		status = a.loadFailed(r, "list stores failed", err, data)
	}
	data["Items"] = stores

	a.renderer.PageStatus(w, r, status, "stores_list", &render.PageData{
		Title:   "Stores",
		Section: "stores",
		Data:    data,
	})
}

// StoreNew renders an empty store form.
func (a *Admin) StoreNew(w http.ResponseWriter, r *http.Request) {
	a.renderStoreForm(w, r, http.StatusOK, models.Store{}, "")
}

// StoreCreate handles the new store form submission.
func (a *Admin) StoreCreate(w http.ResponseWriter, r *http.Request) {
	in := storeInputFromForm(r)
	if msg := validateInput(in); msg != "" {
		a.renderStoreForm(w, r, http.StatusUnprocessableEntity, models.Store{Name: in.Name, Address: in.Address}, msg)
		return
	}

	created, err := a.backend.CreateStore(r.Context(), in)
	if err != nil {
		slog.Error("create store failed", "error", err, "request_id", requestid.From(r.Context()))
		a.renderStoreForm(w, r, formErrorStatus(err), models.Store{Name: in.Name, Address: in.Address}, errorText(err))
		return
	}
	a.journal.Mutated(r.Context(), "store", "create", created.ID)

	flash(r, session.FlashSuccess, fmt.Sprintf("Store %q created.", created.Name))
	render.Redirect(w, r, "/admin/stores")
}

// StoreEdit renders the edit form for an existing store.
func (a *Admin) StoreEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	s, err := a.backend.GetStore(r.Context(), id)
	if err != nil {
		a.failAndRedirect(w, r, "/admin/stores", "load store failed", err)
		return
	}
	a.renderStoreForm(w, r, http.StatusOK, *s, "")
}

// StoreUpdate handles the edit form submission.
func (a *Admin) StoreUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	in := storeInputFromForm(r)
	item := models.Store{ID: id, Name: in.Name, Address: in.Address}
	if msg := validateInput(in); msg != "" {
		a.renderStoreForm(w, r, http.StatusUnprocessableEntity, item, msg)
		return
	}

	updated, err := a.backend.UpdateStore(r.Context(), id, in)
	switch {
	case errors.Is(err, api.ErrNotFound):
		a.failAndRedirect(w, r, "/admin/stores", "update store failed", err)
		return
	case err != nil:
		slog.Error("update store failed", "id", id, "error", err, "request_id", requestid.From(r.Context()))
		a.renderStoreForm(w, r, formErrorStatus(err), item, errorText(err))
		return
	}
	a.journal.Mutated(r.Context(), "store", "update", id)

	flash(r, session.FlashSuccess, fmt.Sprintf("Store %q saved.", updated.Name))
	render.Redirect(w, r, "/admin/stores")
}

// StoreDeleteConfirm asks the operator to confirm a store delete.
func (a *Admin) StoreDeleteConfirm(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	s, err := a.backend.GetStore(r.Context(), id)
	if err != nil {
		a.failAndRedirect(w, r, "/admin/stores", "load store failed", err)
		return
	}
	a.renderer.Page(w, r, "confirm_delete", &render.PageData{
		Title:   "Delete store",
		Section: "stores",
		Data: map[string]any{
			"Entity":  "store",
			"Name":    s.Name,
			"ID":      s.ID,
			"Details": []string{s.Address, "Stock held in this store is removed with it."},
			"Action":  fmt.Sprintf("/admin/stores/%d/delete", s.ID),
			"Back":    "/admin/stores",
		},
	})
}

// StoreDelete removes a store once confirmed.
func (a *Admin) StoreDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if !confirmed(r) {
		render.Redirect(w, r, fmt.Sprintf("/admin/stores/%d/delete", id))
		return
	}
	if err := a.backend.DeleteStore(r.Context(), id); err != nil {
		a.failAndRedirect(w, r, "/admin/stores", "delete store failed", err)
		return
	}
	a.journal.Mutated(r.Context(), "store", "delete", id)

	flash(r, session.FlashSuccess, "Store deleted.")
	render.Redirect(w, r, "/admin/stores")
}

func storeInputFromForm(r *http.Request) models.StoreInput {
	return models.StoreInput{
		Name:    strings.TrimSpace(r.FormValue("name")),
		Address: strings.TrimSpace(r.FormValue("address")),
	}
}

func (a *Admin) renderStoreForm(w http.ResponseWriter, r *http.Request, status int, item models.Store, errMsg string) {
	title := "Edit store"
	if item.ID == 0 {
		title = "New store"
	}
	data := map[string]any{
		"IsNew": item.ID == 0,
		"Item":  item,
	}
	if errMsg != "" {
		data["Error"] = errMsg
	}
	a.renderer.PageStatus(w, r, status, "store_form", &render.PageData{
		Title:   title,
		Section: "stores",
		Data:    data,
	})
}
