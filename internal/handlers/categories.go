// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"zakazadmin/internal/api"
	"zakazadmin/internal/catalog"
	"zakazadmin/internal/models"
	"zakazadmin/internal/render"
	"zakazadmin/internal/requestid"
	"zakazadmin/internal/session"
	"zakazadmin/internal/staff"
	"zakazadmin/internal/tree"
)

// CategoriesList renders the category tree with the operator's expansion
// state and a warning for every record that had to be promoted to the top
// level.
func (a *Admin) CategoriesList(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{}
	status := http.StatusOK

	t, err := a.categories.Load(r.Context())
	if err != nil {
		status = a.loadFailed(r, "load categories failed", err, data)
	} else {
		a.fillTree(r, t, data)
		for _, p := range t.Problems {
			slog.Warn("category promoted to root", "id", p.ID, "parent_id", p.ParentID, "kind", p.Kind.String())
		}
	}

	a.renderer.PageStatus(w, r, status, "categories", &render.PageData{
		Title:   "Categories",
		Section: "categories",
		Data:    data,
	})
}

// fillTree adds the visible rows of t to data. Expanded ids that no longer
// exist are dropped from the session.
func (a *Admin) fillTree(r *http.Request, t *tree.Tree, data map[string]any) {
	sess := session.FromContext(r.Context())
	expanded := sess.Expanded()
	if expanded.Prune(t) > 0 {
		sess.SetExpanded(expanded)
	}
	data["Rows"] = t.Rows(expanded)
	data["Problems"] = t.Problems
	data["Count"] = t.Len()
}

// CategoryToggle expands or collapses one category. HTMX requests get the
// re-rendered tree; plain form posts are redirected back to the list.
func (a *Admin) CategoryToggle(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	open := session.FromContext(r.Context()).Toggle(id)
	slog.Debug("category toggled", "id", id, "expanded", open)

	if !render.IsHTMX(r) {
		render.Redirect(w, r, "/admin/categories")
		return
	}

	t, err := a.categories.Load(r.Context())
	if err != nil {
		a.failAndRedirect(w, r, "/admin/categories", "load categories failed", err)
		return
	}
	data := map[string]any{}
	a.fillTree(r, t, data)
	a.renderer.Fragment(w, r, "categories", "category_tree", &render.PageData{Data: data})
}

// CategoryNew renders the new category form. ?parent= preselects a parent.
func (a *Admin) CategoryNew(w http.ResponseWriter, r *http.Request) {
	parentID, _ := optionalID(r.URL.Query().Get("parent"))
	a.renderCategoryForm(w, r, http.StatusOK, 0, models.CategoryInput{ParentID: parentID}, "")
}

// CategoryCreate handles the new category form submission.
func (a *Admin) CategoryCreate(w http.ResponseWriter, r *http.Request) {
	in, errMsg := categoryInputFromForm(r)
	if errMsg == "" {
		errMsg = validateInput(in)
	}
	if errMsg != "" {
		a.renderCategoryForm(w, r, http.StatusUnprocessableEntity, 0, in, errMsg)
		return
	}

	created, err := a.categories.Create(r.Context(), in)
	if err != nil {
		slog.Error("create category failed", "error", err, "request_id", requestid.From(r.Context()))
		a.renderCategoryForm(w, r, formErrorStatus(err), 0, in, errorText(err))
		return
	}

	if created.ParentID != nil {
		expandCategory(r, *created.ParentID)
	}
	flash(r, session.FlashSuccess, fmt.Sprintf("Category %q created.", created.Name))
	render.Redirect(w, r, "/admin/categories")
}

// CategoryEdit renders the edit form for a category.
func (a *Admin) CategoryEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	t, err := a.categories.Load(r.Context())
	if err != nil {
		a.failAndRedirect(w, r, "/admin/categories", "load categories failed", err)
		return
	}
	n := t.Node(id)
	if n == nil {
		flash(r, session.FlashError, fmt.Sprintf("Category %d no longer exists.", id))
		render.Redirect(w, r, "/admin/categories")
		return
	}
	a.renderCategoryFormWithTree(w, r, http.StatusOK, t, id, models.CategoryInput{Name: n.Name, ParentID: n.ParentID}, "")
}

// CategoryUpdate handles the edit form submission. A parent that would
// make the category its own ancestor is rejected before anything is sent.
func (a *Admin) CategoryUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	in, errMsg := categoryInputFromForm(r)
	if errMsg == "" {
		errMsg = validateInput(in)
	}
	if errMsg != "" {
		a.renderCategoryForm(w, r, http.StatusUnprocessableEntity, id, in, errMsg)
		return
	}

	updated, err := a.categories.Update(r.Context(), id, in)
	switch {
	case errors.Is(err, api.ErrNotFound):
		a.failAndRedirect(w, r, "/admin/categories", "update category failed", err)
		return
	case err != nil:
		slog.Error("update category failed", "id", id, "error", err, "request_id", requestid.From(r.Context()))
		a.renderCategoryForm(w, r, formErrorStatus(err), id, in, errorText(err))
		return
	}

	if updated.ParentID != nil {
		expandCategory(r, *updated.ParentID)
	}
	flash(r, session.FlashSuccess, fmt.Sprintf("Category %q saved.", updated.Name))
	render.Redirect(w, r, "/admin/categories")
}

// CategoryDeleteConfirm renders the confirmation page listing every
// sub-category the delete will remove.
func (a *Admin) CategoryDeleteConfirm(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	plan, err := a.categories.PlanDelete(r.Context(), id)
	if err != nil {
		a.failAndRedirect(w, r, "/admin/categories", "plan category delete failed", err)
		return
	}
	a.renderer.Page(w, r, "category_delete", &render.PageData{
		Title:   "Delete category",
		Section: "categories",
		Data: map[string]any{
			"Plan": plan,
			"Mode": string(a.categories.Mode()),
		},
	})
}

// CategoryDelete deletes a category and its whole subtree. Without
// confirm=yes the operator is sent to the confirmation page instead.
func (a *Admin) CategoryDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if !confirmed(r) {
		render.Redirect(w, r, fmt.Sprintf("/admin/categories/%d/delete", id))
		return
	}

	deleted, err := a.categories.Delete(r.Context(), id)
	if err != nil {
		slog.Error("delete category failed", "id", id, "deleted", len(deleted), "error", err, "request_id", requestid.From(r.Context()))
		msg := errorText(err)
		if len(deleted) > 0 {
			msg = fmt.Sprintf("Deleted %d %s before the backend failed: %s", len(deleted), plural(len(deleted), "category", "categories"), msg)
		}
		flash(r, session.FlashError, msg)
		render.Redirect(w, r, "/admin/categories")
		return
	}

	flash(r, session.FlashSuccess, fmt.Sprintf("Deleted %d %s.", len(deleted), plural(len(deleted), "category", "categories")))
	render.Redirect(w, r, "/admin/categories")
}

// --- helpers ---

// categoryInputFromForm reads the name and parent_id fields.
func categoryInputFromForm(r *http.Request) (models.CategoryInput, string) {
	in := models.CategoryInput{Name: strings.TrimSpace(r.FormValue("name"))}
	parentID, ok := optionalID(r.FormValue("parent_id"))
	if !ok {
		return in, "Choose a parent category from the list."
	}
	in.ParentID = parentID
	return in, ""
}

// renderCategoryForm loads the tree for the parent select and renders the
// form. When the tree cannot be loaded the form is still shown with the
// load error, keeping what the operator typed.
func (a *Admin) renderCategoryForm(w http.ResponseWriter, r *http.Request, status int, id int64, in models.CategoryInput, errMsg string) {
	t, err := a.categories.Load(r.Context())
	if err != nil {
		slog.Error("load categories failed", "error", err, "request_id", requestid.From(r.Context()))
		if errMsg == "" {
			errMsg = errorText(err)
			status = http.StatusBadGateway
		}
	}
	a.renderCategoryFormWithTree(w, r, status, t, id, in, errMsg)
}

func (a *Admin) renderCategoryFormWithTree(w http.ResponseWriter, r *http.Request, status int, t *tree.Tree, id int64, in models.CategoryInput, errMsg string) {
	title := "Edit category"
	if id == 0 {
		title = "New category"
	}
	data := map[string]any{
		"IsNew":    id == 0,
		"ID":       id,
		"Name":     in.Name,
		"ParentID": in.ParentID,
	}
	if t != nil {
		data["Options"] = t.ParentOptions(id)
		if id != 0 {
			data["Path"] = t.Path(id)
		}
	}
	if a.audit != nil && id != 0 {
		history, err := a.audit.ForEntity(r.Context(), "category", id)
		if err != nil {
			slog.Warn("load category history failed", "id", id, "error", err, "request_id", requestid.From(r.Context()))
		}
		data["History"] = history
	}
	if errMsg != "" {
		data["Error"] = errMsg
	}
	a.renderer.PageStatus(w, r, status, "category_form", &render.PageData{
		Title:   title,
		Section: "categories",
		Data:    data,
	})
}

// formErrorStatus is the status a form re-rendered after err is sent with.
func formErrorStatus(err error) int {
	var apiErr *api.Error
	switch {
	case errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500:
		return http.StatusUnprocessableEntity
	case errors.Is(err, catalog.ErrNameRequired),
		errors.Is(err, tree.ErrSelfParent),
		errors.Is(err, tree.ErrCycle),
		errors.Is(err, tree.ErrUnknownParent),
		errors.Is(err, staff.ErrInvalidRole):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadGateway
	}
}

// expandCategory marks id as expanded so a newly placed child is visible.
func expandCategory(r *http.Request, id int64) {
	sess := session.FromContext(r.Context())
	e := sess.Expanded()
	if e.Has(id) {
		return
	}
	e.Toggle(id)
	sess.SetExpanded(e)
}
