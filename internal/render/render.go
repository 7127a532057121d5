// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render provides HTML template rendering for the admin interface.
// It supports full-page and HTMX partial rendering, automatically detecting
// the request type via the HX-Request header.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"zakazadmin/internal/middleware"
	"zakazadmin/internal/models"
	"zakazadmin/internal/requestid"
	"zakazadmin/internal/session"
)

//go:embed templates/admin/*.html
var adminFS embed.FS

// PageData holds all data passed to admin templates.
type PageData struct {
	Title     string          // Page title for <title> tag
	Section   string          // Active sidebar section (e.g., "dashboard", "categories")
	CSRFToken string          // CSRF token for forms and HTMX headers
	RequestID string          // Shown on error pages for support
	Data      map[string]any  // Page-specific data
	Flashes   []session.Flash // One-time notification messages
}

// Renderer handles template parsing and execution for admin pages.
type Renderer struct {
	templates map[string]*template.Template
	funcMap   template.FuncMap
}

// New creates a Renderer by parsing all admin templates from the embedded
// filesystem. Each page template is paired with the base layout. Prices
// are formatted for locale.
func New(locale language.Tag) (*Renderer, error) {
	printer := message.NewPrinter(locale)
	r := &Renderer{
		templates: make(map[string]*template.Template),
		funcMap: template.FuncMap{
			"activeClass": func(current, target string) string {
				if current == target {
					return "active"
				}
				return ""
			},
			// deref safely dereferences a string pointer for use in templates.
			"deref": func(s *string) string {
				if s == nil {
					return ""
				}
				return *s
			},
			// idEq reports whether an optional id points at val.
			"idEq": func(ptr *int64, val int64) bool {
				return ptr != nil && *ptr == val
			},
			// indent returns the left padding of a tree row or select option.
			"indent": func(depth int) string {
				return fmt.Sprintf("%.1frem", float64(depth)*1.5)
			},
			// catIndent returns a category label with non-breaking space
			// indentation for hierarchical <select> dropdowns.
			"catIndent": func(depth int, label string) string {
				if depth == 0 {
					return label
				}
				return strings.Repeat("\u00A0\u00A0\u00A0\u00A0", depth) + label
			},
			"money": func(d decimal.Decimal, c models.Currency) string {
				return formatMoney(printer, d, c)
			},
			"datetime": func(t time.Time) string {
				if t.IsZero() {
					return ""
				}
				return t.Local().Format("02.01.2006 15:04")
			},
			"orderStatuses": func() []models.OrderStatus { return models.OrderStatuses },
			"staffRoles":    func() []models.Role { return models.StaffRoles },
			"currencies":    func() []models.Currency { return models.Currencies },
		},
	}

	pages, err := fs.Glob(adminFS, "templates/admin/*.html")
	if err != nil {
		return nil, fmt.Errorf("glob templates: %w", err)
	}

	for _, page := range pages {
		name := page[strings.LastIndex(page, "/")+1:]
		if name == "base.html" {
			continue
		}
		tmplName := strings.TrimSuffix(name, ".html")

		tmpl, err := template.New("base.html").Funcs(r.funcMap).ParseFS(
			adminFS, "templates/admin/base.html", page,
		)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.templates[tmplName] = tmpl
	}

	return r, nil
}

// Page renders a full admin page with status 200. See PageStatus.
func (rn *Renderer) Page(w http.ResponseWriter, r *http.Request, name string, data *PageData) {
	rn.PageStatus(w, r, http.StatusOK, name, data)
}

// PageStatus renders a full admin page or an HTMX partial, depending on
// the request headers. For HTMX requests, only the "content" block is
// sent. For full page loads, the entire base layout is rendered. Pending
// flashes are taken from the session.
func (rn *Renderer) PageStatus(w http.ResponseWriter, r *http.Request, status int, name string, data *PageData) {
	execName := "base.html"
	if IsHTMX(r) {
		execName = "content"
	}
	rn.execute(w, r, status, name, execName, data)
}

// Fragment renders a single named block of a page template, used to swap
// part of a page in response to an HTMX request.
func (rn *Renderer) Fragment(w http.ResponseWriter, r *http.Request, name, block string, data *PageData) {
	rn.execute(w, r, http.StatusOK, name, block, data)
}

func (rn *Renderer) execute(w http.ResponseWriter, r *http.Request, status int, name, execName string, data *PageData) {
	tmpl, ok := rn.templates[name]
	if !ok {
		http.Error(w, fmt.Sprintf("template %q not found", name), http.StatusInternalServerError)
		return
	}

	ctx := r.Context()
	data.CSRFToken = middleware.CSRFTokenFromCtx(ctx)
	data.RequestID = requestid.From(ctx)
	if data.Data == nil {
		data.Data = map[string]any{}
	}
	data.Flashes = append(data.Flashes, session.FromContext(ctx).Flashes()...)

	// Render to a buffer so a template error never leaves half a page.
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, execName, data); err != nil {
		slog.Error("template execution failed", "template", name, "block", execName, "error", err, "request_id", data.RequestID)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// Has reports whether a page template named name was parsed.
func (rn *Renderer) Has(name string) bool {
	_, ok := rn.templates[name]
	return ok
}

// formatMoney formats a price with the locale's grouping. SUM has no minor
// unit in practice; other currencies show two decimals.
func formatMoney(p *message.Printer, d decimal.Decimal, c models.Currency) string {
	scale := 2
	if c == models.CurrencySUM || c == "" {
		scale = 0
	}
	s := p.Sprint(number.Decimal(d.Round(int32(scale)).InexactFloat64(), number.Scale(scale)))
	if c == "" {
		return s
	}
	return s + " " + string(c)
}

// IsHTMX returns true if the request was made by HTMX (has HX-Request header).
func IsHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// Redirect sends the browser to url: an HX-Redirect header for HTMX
// requests, a 303 otherwise.
func Redirect(w http.ResponseWriter, r *http.Request, url string) {
	if IsHTMX(r) {
		w.Header().Set("HX-Redirect", url)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}
