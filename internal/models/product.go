// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "github.com/shopspring/decimal"

func init() {
	// The backend parses prices as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Currency is the currency an inventory price is quoted in.
type Currency string

const (
	CurrencySUM Currency = "SUM"
	CurrencyUSD Currency = "USD"
)

// Currencies lists the currencies selectable in the product form.
var Currencies = []Currency{CurrencySUM, CurrencyUSD}

// Valid reports whether c is a known currency.
func (c Currency) Valid() bool {
	return c == CurrencySUM || c == CurrencyUSD
}

// Inventory is the price and stock of one product in one store.
type Inventory struct {
	ID         int64           `json:"id,omitempty"`
	ProductID  int64           `json:"productId,omitempty"`
	StoreID    int64           `json:"storeId"`
	Price      decimal.Decimal `json:"price"`
	Currency   Currency        `json:"currency"`
	StockCount int             `json:"stockCount"`
}

// InventoryInput is the payload for creating or updating an inventory row.
// ProductID and StoreID are only sent on create.
type InventoryInput struct {
	ProductID  int64           `json:"productId,omitempty"`
	StoreID    int64           `json:"storeId,omitempty"`
	Price      decimal.Decimal `json:"price"`
	Currency   Currency        `json:"currency" validate:"required,oneof=SUM USD"`
	StockCount int             `json:"stockCount" validate:"gte=0"`
}

// Product is a sellable item with optional per-store inventory.
type Product struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	Code        string      `json:"code"`
	ImageURL    *string     `json:"imageUrl"`
	CategoryID  *int64      `json:"categoryId"`
	Inventories []Inventory `json:"inventories,omitempty"`
}

// InventoryFor returns the inventory row for storeID, or nil when the
// product is not stocked there.
func (p *Product) InventoryFor(storeID int64) *Inventory {
	for i := range p.Inventories {
		if p.Inventories[i].StoreID == storeID {
			return &p.Inventories[i]
		}
	}
	return nil
}

// ProductInput is the payload for creating or updating a product.
// Inventories are only accepted by the create endpoint; updates go
// through the inventories resource.
type ProductInput struct {
	Name        string           `json:"name" validate:"required,max=300"`
	Code        string           `json:"code" validate:"max=64"`
	ImageURL    *string          `json:"imageUrl" validate:"omitempty,url"`
	CategoryID  *int64           `json:"categoryId"`
	Inventories []InventoryInput `json:"inventories,omitempty" validate:"dive"`
}

// NextCode is the backend's suggestion for the next product code.
type NextCode struct {
	Code string `json:"code"`
}
