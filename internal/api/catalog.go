// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package api

import (
	"context"

	"zakazadmin/internal/models"
)

const (
	storesPath      = "/admin/stores"
	categoriesPath  = "/admin/categories"
	productsPath    = "/admin/products"
	inventoriesPath = "/admin/inventories"
)

// ListStores returns all stores.
func (c *Client) ListStores(ctx context.Context) ([]models.Store, error) {
	var out []models.Store
	if err := c.do(ctx, "GET", storesPath, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetStore returns one store.
func (c *Client) GetStore(ctx context.Context, id int64) (*models.Store, error) {
	var out models.Store
	if err := c.do(ctx, "GET", idPath(storesPath, id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateStore(ctx context.Context, in models.StoreInput) (*models.Store, error) {
	var out models.Store
	if err := c.do(ctx, "POST", storesPath, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateStore(ctx context.Context, id int64, in models.StoreInput) (*models.Store, error) {
	var out models.Store
	if err := c.do(ctx, "PUT", idPath(storesPath, id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteStore(ctx context.Context, id int64) error {
	return c.do(ctx, "DELETE", idPath(storesPath, id), nil, nil)
}

// ListCategories returns every category as a flat list, in backend order.
func (c *Client) ListCategories(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	if err := c.do(ctx, "GET", categoriesPath, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetCategory(ctx context.Context, id int64) (*models.Category, error) {
	var out models.Category
	if err := c.do(ctx, "GET", idPath(categoriesPath, id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateCategory(ctx context.Context, in models.CategoryInput) (*models.Category, error) {
	var out models.Category
	if err := c.do(ctx, "POST", categoriesPath, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateCategory(ctx context.Context, id int64, in models.CategoryInput) (*models.Category, error) {
	var out models.Category
	if err := c.do(ctx, "PUT", idPath(categoriesPath, id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteCategory deletes one category. Whether its descendants go with it
// depends on the backend; see catalog.CategoryService.
func (c *Client) DeleteCategory(ctx context.Context, id int64) error {
	return c.do(ctx, "DELETE", idPath(categoriesPath, id), nil, nil)
}

// ListProducts returns all products with their inventories.
func (c *Client) ListProducts(ctx context.Context) ([]models.Product, error) {
	var out []models.Product
	if err := c.do(ctx, "GET", productsPath, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	var out models.Product
	if err := c.do(ctx, "GET", idPath(productsPath, id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// NextProductCode asks the backend for the next free product code.
func (c *Client) NextProductCode(ctx context.Context) (string, error) {
	var out models.NextCode
	if err := c.do(ctx, "GET", productsPath+"/next-code", nil, &out); err != nil {
		return "", err
	}
	return out.Code, nil
}

func (c *Client) CreateProduct(ctx context.Context, in models.ProductInput) (*models.Product, error) {
	var out models.Product
	if err := c.do(ctx, "POST", productsPath, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateProduct(ctx context.Context, id int64, in models.ProductInput) (*models.Product, error) {
	var out models.Product
	if err := c.do(ctx, "PUT", idPath(productsPath, id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	return c.do(ctx, "DELETE", idPath(productsPath, id), nil, nil)
}

// CreateInventory stocks a product in a store. ProductID and StoreID must be set.
func (c *Client) CreateInventory(ctx context.Context, in models.InventoryInput) (*models.Inventory, error) {
	var out models.Inventory
	if err := c.do(ctx, "POST", inventoriesPath, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateInventory changes price, currency and stock of an inventory row.
func (c *Client) UpdateInventory(ctx context.Context, id int64, in models.InventoryInput) (*models.Inventory, error) {
	in.ProductID, in.StoreID = 0, 0
	var out models.Inventory
	if err := c.do(ctx, "PUT", idPath(inventoriesPath, id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteInventory(ctx context.Context, id int64) error {
	return c.do(ctx, "DELETE", idPath(inventoriesPath, id), nil, nil)
}
