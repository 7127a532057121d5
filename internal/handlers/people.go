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
	"zakazadmin/internal/models"
	"zakazadmin/internal/render"
	"zakazadmin/internal/requestid"
	"zakazadmin/internal/session"
)

// EmployeesList lists every user with a staff role.
func (a *Admin) EmployeesList(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{}
	status := http.StatusOK

	users, err := a.people.Employees(r.Context())
	if err != nil {
		status = a.loadFailed(r, "list employees failed", err, data)
	}
	data["Items"] = users

	a.renderer.PageStatus(w, r, status, "employees_list", &render.PageData{
		Title:   "Employees",
		Section: "employees",
		Data:    data,
	})
}

// EmployeeNew renders an empty employee form.
func (a *Admin) EmployeeNew(w http.ResponseWriter, r *http.Request) {
	a.renderEmployeeForm(w, r, http.StatusOK, 0, models.UserInput{Role: models.RoleOrderReceiver}, "")
}

// EmployeeCreate adds an employee, or promotes the existing user with the
// same phone number.
func (a *Admin) EmployeeCreate(w http.ResponseWriter, r *http.Request) {
	in := userInputFromForm(r)
	if msg := validateInput(in); msg != "" {
		a.renderEmployeeForm(w, r, http.StatusUnprocessableEntity, 0, in, msg)
		return
	}

	res, err := a.people.SaveEmployee(r.Context(), in)
	if err != nil {
		slog.Error("save employee failed", "error", err, "request_id", requestid.From(r.Context()))
		a.renderEmployeeForm(w, r, formErrorStatus(err), 0, in, errorText(err))
		return
	}

	if res.Existing {
		flash(r, session.FlashSuccess, fmt.Sprintf("%s already had an account; their role is now %s.", res.User.Name, res.User.Role.Label()))
	} else {
		flash(r, session.FlashSuccess, fmt.Sprintf("Employee %q created.", res.User.Name))
	}
	render.Redirect(w, r, "/admin/employees")
}

// EmployeeEdit renders the edit form of an employee.
func (a *Admin) EmployeeEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	u, err := a.people.Get(r.Context(), id)
	if err != nil {
		a.failAndRedirect(w, r, "/admin/employees", "load employee failed", err)
		return
	}
	a.renderEmployeeForm(w, r, http.StatusOK, id, models.UserInput{
		Name:       u.Name,
		Phone:      u.Phone,
		TelegramID: u.TelegramID,
		Role:       u.Role,
	}, "")
}

// EmployeeUpdate handles the edit form submission.
func (a *Admin) EmployeeUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	in := userInputFromForm(r)
	if msg := validateInput(in); msg != "" {
		a.renderEmployeeForm(w, r, http.StatusUnprocessableEntity, id, in, msg)
		return
	}

	u, err := a.people.UpdateEmployee(r.Context(), id, in)
	switch {
	case errors.Is(err, api.ErrNotFound):
		a.failAndRedirect(w, r, "/admin/employees", "update employee failed", err)
		return
	case err != nil:
		slog.Error("update employee failed", "id", id, "error", err, "request_id", requestid.From(r.Context()))
		a.renderEmployeeForm(w, r, formErrorStatus(err), id, in, errorText(err))
		return
	}

	flash(r, session.FlashSuccess, fmt.Sprintf("Employee %q saved.", u.Name))
	render.Redirect(w, r, "/admin/employees")
}

// userDeleteConfirm asks the operator to confirm deleting an employee or a
// customer. back is the list to return to.
func (a *Admin) userDeleteConfirm(w http.ResponseWriter, r *http.Request, entity, back string) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	u, err := a.people.Get(r.Context(), id)
	if err != nil {
		a.failAndRedirect(w, r, back, "load user failed", err)
		return
	}
	details := []string{u.Phone}
	if n := u.OrderCount(); n > 0 {
		details = append(details, fmt.Sprintf("Has %d %s.", n, plural(n, "order", "orders")))
	}
	a.renderer.Page(w, r, "confirm_delete", &render.PageData{
		Title:   "Delete " + entity,
		Section: strings.TrimPrefix(back, "/admin/"),
		Data: map[string]any{
			"Entity":  entity,
			"Name":    u.Name,
			"ID":      u.ID,
			"Details": details,
			"Action":  fmt.Sprintf("%s/%d/delete", back, u.ID),
			"Back":    back,
		},
	})
}

// userDelete removes a user once confirmed and shows the backend's message.
func (a *Admin) userDelete(w http.ResponseWriter, r *http.Request, fallback, back string) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if !confirmed(r) {
		render.Redirect(w, r, fmt.Sprintf("%s/%d/delete", back, id))
		return
	}
	msg, err := a.people.Delete(r.Context(), id)
	if err != nil {
		a.failAndRedirect(w, r, back, "delete user failed", err)
		return
	}
	if msg == "" {
		msg = fallback
	}
	flash(r, session.FlashSuccess, msg)
	render.Redirect(w, r, back)
}

// EmployeeDeleteConfirm asks for confirmation before deleting an employee.
func (a *Admin) EmployeeDeleteConfirm(w http.ResponseWriter, r *http.Request) {
	a.userDeleteConfirm(w, r, "employee", "/admin/employees")
}

// EmployeeDelete deletes an employee.
func (a *Admin) EmployeeDelete(w http.ResponseWriter, r *http.Request) {
	a.userDelete(w, r, "Employee deleted.", "/admin/employees")
}

// CustomersList lists customers matching ?q=.
func (a *Admin) CustomersList(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	data := map[string]any{"Query": query}
	status := http.StatusOK

	users, total, err := a.people.Customers(r.Context(), query)
	if err != nil {
		status = a.loadFailed(r, "list customers failed", err, data)
	}
	data["Items"] = users
	data["Total"] = total

	a.renderer.PageStatus(w, r, status, "customers_list", &render.PageData{
		Title:   "Customers",
		Section: "customers",
		Data:    data,
	})
}

// CustomerDeleteConfirm asks for confirmation before deleting a customer.
func (a *Admin) CustomerDeleteConfirm(w http.ResponseWriter, r *http.Request) {
	a.userDeleteConfirm(w, r, "customer", "/admin/customers")
}

// CustomerDelete deletes a customer.
func (a *Admin) CustomerDelete(w http.ResponseWriter, r *http.Request) {
	a.userDelete(w, r, "Customer deleted.", "/admin/customers")
}

// userInputFromForm reads the employee form. The phone is normalized
// before validation so spaces and a missing + are accepted.
func userInputFromForm(r *http.Request) models.UserInput {
	in := models.UserInput{
		Name:       strings.TrimSpace(r.FormValue("name")),
		Phone:      strings.TrimSpace(r.FormValue("phone")),
		TelegramID: strings.TrimSpace(r.FormValue("telegram_id")),
		Role:       models.Role(r.FormValue("role")),
	}
	if in.Phone != "" {
		in.Phone = models.NormalizePhone(in.Phone)
	}
	if in.Role == "" {
		in.Role = models.RoleOrderReceiver
	}
	return in
}

func (a *Admin) renderEmployeeForm(w http.ResponseWriter, r *http.Request, status int, id int64, in models.UserInput, errMsg string) {
	title := "Edit employee"
	if id == 0 {
		title = "New employee"
	}
	data := map[string]any{
		"IsNew": id == 0,
		"ID":    id,
		"Input": in,
	}
	if errMsg != "" {
		data["Error"] = errMsg
	}
	a.renderer.PageStatus(w, r, status, "employee_form", &render.PageData{
		Title:   title,
		Section: "employees",
		Data:    data,
	})
}
