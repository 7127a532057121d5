// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers of the admin console.
// Handlers are grouped by screen and receive their dependencies through
// the Admin struct. Every business operation is forwarded to the ordering
// backend; failures are shown to the operator and nothing is changed
// optimistically.
package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"zakazadmin/internal/api"
	"zakazadmin/internal/catalog"
	"zakazadmin/internal/models"
	"zakazadmin/internal/render"
	"zakazadmin/internal/requestid"
	"zakazadmin/internal/session"
	"zakazadmin/internal/staff"
	"zakazadmin/internal/store"
	"zakazadmin/internal/tree"
)

// recentAuditEntries is how many audit entries the dashboard lists.
const recentAuditEntries = 10

// Backend is the part of the API client the handlers call directly.
type Backend interface {
	catalog.DashboardAPI
	GetStore(ctx context.Context, id int64) (*models.Store, error)
	CreateStore(ctx context.Context, in models.StoreInput) (*models.Store, error)
	UpdateStore(ctx context.Context, id int64, in models.StoreInput) (*models.Store, error)
	DeleteStore(ctx context.Context, id int64) error
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
	UpdateOrderStatus(ctx context.Context, id int64, status models.OrderStatus) (*models.Order, error)
}

// AuditLog lists recorded mutations for the dashboard and edit pages.
type AuditLog interface {
	Recent(ctx context.Context, limit int) ([]store.AuditEntry, error)
	ForEntity(ctx context.Context, entity string, id int64) ([]store.AuditEntry, error)
}

// Admin groups all admin panel HTTP handlers and their dependencies.
type Admin struct {
	renderer   *render.Renderer
	backend    Backend
	categories *catalog.CategoryService
	products   *catalog.ProductService
	people     *staff.Service
	journal    catalog.Journal
	audit      AuditLog
}

// NewAdmin creates a new Admin handler group with the given dependencies.
// journal receives store and order mutations, which have no service of
// their own. journal and audit may be nil.
func NewAdmin(renderer *render.Renderer, backend Backend, categories *catalog.CategoryService, products *catalog.ProductService, people *staff.Service, journal catalog.Journal, audit AuditLog) *Admin {
	return &Admin{
		renderer:   renderer,
		backend:    backend,
		categories: categories,
		products:   products,
		people:     people,
		journal:    catalog.Journals{journal},
		audit:      audit,
	}
}

// Dashboard renders the admin dashboard with live counts and, when the
// audit log is enabled, the latest recorded changes.
func (a *Admin) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	data := map[string]any{"AuditEnabled": a.audit != nil}
	status := http.StatusOK

	summary, err := catalog.LoadSummary(ctx, a.backend)
	if err != nil {
		status = a.loadFailed(r, "load dashboard failed", err, data)
	} else {
		data["Summary"] = summary
	}

	if a.audit != nil {
		entries, err := a.audit.Recent(ctx, recentAuditEntries)
		if err != nil {
			slog.Warn("load audit log failed", "error", err, "request_id", requestid.From(ctx))
		}
		data["Audit"] = entries
	}

	a.renderer.PageStatus(w, r, status, "dashboard", &render.PageData{
		Title:   "Dashboard",
		Section: "dashboard",
		Data:    data,
	})
}

// --- Shared helpers ---

// parseID reads the {id} URL parameter. It writes a 400 response and
// returns false when the parameter is not a positive integer.
func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// optionalID parses an optional id form value; empty means none.
func optionalID(s string) (*int64, bool) {
	if s == "" {
		return nil, true
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return nil, false
	}
	return &id, true
}

// loadFailed logs a failed read, puts the operator message into data and
// returns the status the page should be rendered with.
func (a *Admin) loadFailed(r *http.Request, msg string, err error, data map[string]any) int {
	slog.Error(msg, "error", err, "path", r.URL.Path, "request_id", requestid.From(r.Context()))
	data["Error"] = errorText(err)
	if errors.Is(err, api.ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusBadGateway
}

// failAndRedirect logs a failed operation, queues its message as an error
// flash and redirects to url.
func (a *Admin) failAndRedirect(w http.ResponseWriter, r *http.Request, url, msg string, err error) {
	slog.Error(msg, "error", err, "path", r.URL.Path, "request_id", requestid.From(r.Context()))
	flash(r, session.FlashError, errorText(err))
	render.Redirect(w, r, url)
}

// errorText returns the operator-facing text for err.
func errorText(err error) string {
	switch {
	case errors.Is(err, catalog.ErrNameRequired):
		return "Name is required."
	case errors.Is(err, tree.ErrSelfParent):
		return "A category cannot be its own parent."
	case errors.Is(err, tree.ErrCycle):
		return "The selected parent is a sub-category of this category."
	case errors.Is(err, tree.ErrUnknownParent):
		return "The selected parent category does not exist."
	case errors.Is(err, tree.ErrDuplicateID):
		return "The backend listed the same category twice, so the hierarchy cannot be shown."
	case errors.Is(err, staff.ErrInvalidRole):
		return "Choose one of the employee roles."
	}
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if errors.Is(err, api.ErrNotFound) {
		return "It no longer exists. The list has been refreshed."
	}
	return api.Message(err)
}

// flash queues a one-time notice in the operator's session.
func flash(r *http.Request, kind, message string) {
	session.FromContext(r.Context()).AddFlash(kind, message)
}

// confirmed reports whether a destructive request carries confirm=yes.
func confirmed(r *http.Request) bool {
	return r.FormValue("confirm") == "yes"
}

// plural returns one or many depending on n.
func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
