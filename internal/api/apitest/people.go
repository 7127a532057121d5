package apitest

import (
	"net/http"
	"slices"
	"strings"
	"time"

	"zakazadmin/internal/models"
)

func orderID(o models.Order) int64 { return o.ID }
func userID(u models.User) int64   { return u.ID }

// SeedOrders adds orders, keeping their ids.
func (b *Backend) SeedOrders(orders ...models.Order) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, o := range orders {
		b.bump(o.ID)
		b.orders = append(b.orders, o)
	}
}

// Orders returns a snapshot of the stored orders.
func (b *Backend) Orders() []models.Order {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.orders)
}

// SeedUsers adds users, keeping their ids.
func (b *Backend) SeedUsers(users ...models.User) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, u := range users {
		b.bump(u.ID)
		b.users = append(b.users, u)
	}
}

// Users returns a snapshot of the stored users.
func (b *Backend) Users() []models.User {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.users)
}

func (b *Backend) listOrders(w http.ResponseWriter, r *http.Request) {
	status := models.OrderStatus(r.URL.Query().Get("status"))
	out := []models.Order{}
	for _, o := range b.Orders() {
		if status == "" || o.Status == status {
			out = append(out, o)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) getOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	i := index(b.orders, id, orderID)
	if i < 0 {
		notFound(w, "Order")
		return
	}
	writeJSON(w, http.StatusOK, b.orders[i])
}

func (b *Backend) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in struct {
		Status models.OrderStatus `json:"status"`
	}
	if !decode(w, r, &in) {
		return
	}
	if !in.Status.Valid() {
		writeError(w, http.StatusBadRequest, "invalid status")
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	i := index(b.orders, id, orderID)
	if i < 0 {
		notFound(w, "Order")
		return
	}
	b.orders[i].Status = in.Status
	writeJSON(w, http.StatusOK, b.orders[i])
}

func (b *Backend) listUsers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, b.Users())
}

func (b *Backend) getUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	i := index(b.users, id, userID)
	if i < 0 {
		notFound(w, "User")
		return
	}
	writeJSON(w, http.StatusOK, b.users[i])
}

func (b *Backend) createUser(w http.ResponseWriter, r *http.Request) {
	var in models.UserInput
	if !decode(w, r, &in) {
		return
	}
	if strings.TrimSpace(in.Name) == "" || in.Phone == "" {
		writeError(w, http.StatusBadRequest, "name and phone are required")
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if slices.ContainsFunc(b.users, func(u models.User) bool { return u.Phone == in.Phone }) {
		writeError(w, http.StatusConflict, "A user with this phone already exists")
		return
	}
	role := in.Role
	if role == "" {
		role = models.RoleClient
	}
	u := models.User{
		ID: b.newID(), Name: in.Name, Phone: in.Phone, TelegramID: in.TelegramID,
		Role: role, CreatedAt: time.Now().UTC(),
	}
	b.users = append(b.users, u)
	writeJSON(w, http.StatusCreated, u)
}

func (b *Backend) updateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in models.UserInput
	if !decode(w, r, &in) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	i := index(b.users, id, userID)
	if i < 0 {
		notFound(w, "User")
		return
	}
	u := &b.users[i]
	if in.Name != "" {
		u.Name = in.Name
	}
	if in.Phone != "" {
		u.Phone = in.Phone
	}
	if in.TelegramID != "" {
		u.TelegramID = in.TelegramID
	}
	if in.Role != "" {
		u.Role = in.Role
	}
	writeJSON(w, http.StatusOK, *u)
}

func (b *Backend) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	i := index(b.users, id, userID)
	if i < 0 {
		notFound(w, "User")
		return
	}
	b.users = slices.Delete(b.users, i, i+1)
	writeJSON(w, http.StatusOK, map[string]string{"message": "User deleted successfully"})
}
