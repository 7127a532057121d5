// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package api

import (
	"context"
	"net/url"

	"zakazadmin/internal/models"
)

const (
	ordersPath = "/admin/orders"
	usersPath  = "/admin/users"
)

// ListOrders returns orders, optionally only those with the given status.
// An empty status returns all of them.
func (c *Client) ListOrders(ctx context.Context, status models.OrderStatus) ([]models.Order, error) {
	path := ordersPath
	if status != "" {
		path += "?" + url.Values{"status": {string(status)}}.Encode()
	}
	var out []models.Order
	if err := c.do(ctx, "GET", path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	var out models.Order
	if err := c.do(ctx, "GET", idPath(ordersPath, id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateOrderStatus moves an order to status.
func (c *Client) UpdateOrderStatus(ctx context.Context, id int64, status models.OrderStatus) (*models.Order, error) {
	body := struct {
		Status models.OrderStatus `json:"status"`
	}{status}
	var out models.Order
	if err := c.do(ctx, "PUT", idPath(ordersPath, id)+"/status", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListUsers returns every user, staff and customers alike.
func (c *Client) ListUsers(ctx context.Context) ([]models.User, error) {
	var out []models.User
	if err := c.do(ctx, "GET", usersPath, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetUser(ctx context.Context, id int64) (*models.User, error) {
	var out models.User
	if err := c.do(ctx, "GET", idPath(usersPath, id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateUser(ctx context.Context, in models.UserInput) (*models.User, error) {
	var out models.User
	if err := c.do(ctx, "POST", usersPath, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateUser(ctx context.Context, id int64, in models.UserInput) (*models.User, error) {
	var out models.User
	if err := c.do(ctx, "PUT", idPath(usersPath, id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteUser deletes a user and returns the backend's confirmation message,
// which may be empty.
func (c *Client) DeleteUser(ctx context.Context, id int64) (string, error) {
	var out struct {
		Message string `json:"message"`
	}
	if err := c.do(ctx, "DELETE", idPath(usersPath, id), nil, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}
