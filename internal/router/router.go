// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// admin console. Operational endpoints (health, metrics, static assets)
// sit outside the session and CSRF stack that guards /admin.
package router

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"

	"zakazadmin/internal/handlers"
	"zakazadmin/internal/metrics"
	"zakazadmin/internal/middleware"
	"zakazadmin/internal/session"
	"zakazadmin/web"
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up. secureCookies sets the Secure flag on the
// CSRF cookie.
func New(sessionStore *session.Store, admin *handlers.Admin, m *metrics.Collector, rl *middleware.RateLimiter, secureCookies bool) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(m))
	r.Use(middleware.SecureHeaders)

	r.Get("/health", healthHandler)
	r.Method(http.MethodGet, "/metrics", m.Handler())

	staticFS, err := fs.Sub(web.StaticFS, "static")
	if err != nil {
		panic("router: static assets missing: " + err.Error())
	}
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(staticFS)))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/admin", http.StatusFound)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.NewCSRF(secureCookies))
		r.Use(middleware.LoadSession(sessionStore))
		r.Use(rl.Middleware)
		r.Use(middleware.NoStore)

		// Dashboard
		r.Get("/", admin.Dashboard)
		r.Get("/dashboard", admin.Dashboard)

		// Stores
		r.Route("/stores", func(r chi.Router) {
			r.Get("/", admin.StoresList)
			r.Get("/new", admin.StoreNew)
			r.Post("/", admin.StoreCreate)
			r.Get("/{id}/edit", admin.StoreEdit)
			r.Put("/{id}", admin.StoreUpdate)
			r.Post("/{id}", admin.StoreUpdate)
			r.Get("/{id}/delete", admin.StoreDeleteConfirm)
			r.Post("/{id}/delete", admin.StoreDelete)
			r.Delete("/{id}", admin.StoreDelete)
		})

		// Categories
		r.Route("/categories", func(r chi.Router) {
			r.Get("/", admin.CategoriesList)
			r.Get("/new", admin.CategoryNew)
			r.Post("/", admin.CategoryCreate)
			r.Post("/{id}/toggle", admin.CategoryToggle)
			r.Get("/{id}/edit", admin.CategoryEdit)
			r.Put("/{id}", admin.CategoryUpdate)
			r.Post("/{id}", admin.CategoryUpdate)
			r.Get("/{id}/delete", admin.CategoryDeleteConfirm)
			r.Post("/{id}/delete", admin.CategoryDelete)
			r.Delete("/{id}", admin.CategoryDelete)
		})

		// Products
		r.Route("/products", func(r chi.Router) {
			r.Get("/", admin.ProductsList)
			r.Get("/new", admin.ProductNew)
			r.Post("/", admin.ProductCreate)
			r.Post("/categories", admin.ProductCategoryCreate)
			r.Get("/{id}/edit", admin.ProductEdit)
			r.Put("/{id}", admin.ProductUpdate)
			r.Post("/{id}", admin.ProductUpdate)
			r.Get("/{id}/delete", admin.ProductDeleteConfirm)
			r.Post("/{id}/delete", admin.ProductDelete)
			r.Delete("/{id}", admin.ProductDelete)
		})

		// Orders
		r.Get("/orders", admin.OrdersList)
		r.Post("/orders/{id}/status", admin.OrderStatus)

		// Employees
		r.Route("/employees", func(r chi.Router) {
			r.Get("/", admin.EmployeesList)
			r.Get("/new", admin.EmployeeNew)
			r.Post("/", admin.EmployeeCreate)
			r.Get("/{id}/edit", admin.EmployeeEdit)
			r.Put("/{id}", admin.EmployeeUpdate)
			r.Post("/{id}", admin.EmployeeUpdate)
			r.Get("/{id}/delete", admin.EmployeeDeleteConfirm)
			r.Post("/{id}/delete", admin.EmployeeDelete)
			r.Delete("/{id}", admin.EmployeeDelete)
		})

		// Customers
		r.Route("/customers", func(r chi.Router) {
			r.Get("/", admin.CustomersList)
			r.Get("/{id}/delete", admin.CustomerDeleteConfirm)
			r.Post("/{id}/delete", admin.CustomerDelete)
			r.Delete("/{id}", admin.CustomerDelete)
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
