package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"zakazadmin/internal/models"
	"zakazadmin/internal/render"
	"zakazadmin/internal/requestid"
	"zakazadmin/internal/session"
)

// OrdersList lists orders, optionally filtered by ?status=.
func (a *Admin) OrdersList(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{}
	status := http.StatusOK

	filter := models.OrderStatus(r.URL.Query().Get("status"))
	if filter != "" && !filter.Valid() {
		data["Error"] = fmt.Sprintf("Unknown order status %q; showing all orders.", filter)
		filter = ""
	}
	data["Status"] = filter

	orders, err := a.backend.ListOrders(r.Context(), filter)
	if err != nil {
		status = a.loadFailed(r, "list orders failed", err, data)
	}
	data["Orders"] = orders
	data["Total"] = len(orders)

	a.renderer.PageStatus(w, r, status, "orders_list", &render.PageData{
		Title:   "Orders",
		Section: "orders",
		Data:    data,
	})
}

// OrderStatus moves an order to the submitted status and returns to the
// list with the same filter.
func (a *Admin) OrderStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	back := "/admin/orders"
	if f := models.OrderStatus(r.FormValue("filter")); f.Valid() {
		back += "?" + url.Values{"status": {string(f)}}.Encode()
	}

	next := models.OrderStatus(r.FormValue("status"))
	if !next.Valid() {
		flash(r, session.FlashError, fmt.Sprintf("Unknown order status %q.", next))
		render.Redirect(w, r, back)
		return
	}

	order, err := a.backend.UpdateOrderStatus(r.Context(), id, next)
	if err != nil {
		a.failAndRedirect(w, r, back, "update order status failed", err)
		return
	}
	a.journal.Mutated(r.Context(), "order", "status", id)
	slog.Info("order status changed", "id", id, "status", next, "request_id", requestid.From(r.Context()))

	flash(r, session.FlashSuccess, fmt.Sprintf("Order #%d is now %s.", order.ID, order.Status.Label()))
	render.Redirect(w, r, back)
}
