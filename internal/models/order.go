// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderPending          OrderStatus = "PENDING"
	OrderAccepted         OrderStatus = "ACCEPTED"
	OrderPreparing        OrderStatus = "PREPARING"
	OrderReadyForDelivery OrderStatus = "READY_FOR_DELIVERY"
	OrderShipping         OrderStatus = "SHIPPING"
	OrderCompleted        OrderStatus = "COMPLETED"
	OrderCancelled        OrderStatus = "CANCELLED"
)

// OrderStatuses lists every status in workflow order.
var OrderStatuses = []OrderStatus{
	OrderPending,
	OrderAccepted,
	OrderPreparing,
	OrderReadyForDelivery,
	OrderShipping,
	OrderCompleted,
	OrderCancelled,
}

var orderStatusLabels = map[OrderStatus]string{
	OrderPending:          "Pending",
	OrderAccepted:         "Accepted",
	OrderPreparing:        "Preparing",
	OrderReadyForDelivery: "Ready for delivery",
	OrderShipping:         "Shipping",
	OrderCompleted:        "Completed",
	OrderCancelled:        "Cancelled",
}

// Label returns the human-readable status name. Unknown statuses are
// shown as sent by the backend.
func (s OrderStatus) Label() string {
	if l, ok := orderStatusLabels[s]; ok {
		return l
	}
	return string(s)
}

// Valid reports whether s is one of the known statuses.
func (s OrderStatus) Valid() bool {
	_, ok := orderStatusLabels[s]
	return ok
}

// OrderUser is the customer summary embedded in an order.
type OrderUser struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// OrderStore is the store summary embedded in an order.
type OrderStore struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// OrderItem is one line of an order.
type OrderItem struct {
	ProductID int64           `json:"productId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Currency  Currency        `json:"currency"`
}

// Order is a customer order placed in a store.
type Order struct {
	ID         int64           `json:"id"`
	User       *OrderUser      `json:"user"`
	Store      *OrderStore     `json:"store"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	Status     OrderStatus     `json:"status"`
	Items      []OrderItem     `json:"items"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// Currency returns the currency of the first item, which the backend uses
// for the whole order. Empty when the order has no items.
func (o Order) Currency() Currency {
	if len(o.Items) == 0 {
		return ""
	}
	return o.Items[0].Currency
}

// CountByStatus returns how many orders have the given status.
func CountByStatus(orders []Order, status OrderStatus) int {
	n := 0
	for _, o := range orders {
		if o.Status == status {
			n++
		}
	}
	return n
}
