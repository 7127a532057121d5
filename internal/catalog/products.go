// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"zakazadmin/internal/models"
	"zakazadmin/internal/tree"
)

// ProductAPI is the part of the backend client the product service uses.
type ProductAPI interface {
	ListStores(ctx context.Context) ([]models.Store, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	ListProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
	NextProductCode(ctx context.Context) (string, error)
	CreateProduct(ctx context.Context, in models.ProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, id int64, in models.ProductInput) (*models.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	CreateInventory(ctx context.Context, in models.InventoryInput) (*models.Inventory, error)
	UpdateInventory(ctx context.Context, id int64, in models.InventoryInput) (*models.Inventory, error)
}

// ProductService saves products together with their per-store inventory.
type ProductService struct {
	api     ProductAPI
	journal Journal
}

// NewProductService creates a ProductService. journal may be nil.
func NewProductService(c ProductAPI, journal Journal) *ProductService {
	return &ProductService{api: c, journal: orNop(journal)}
}

// ProductList is everything the products page shows.
type ProductList struct {
	Products   []models.Product
	Stores     []models.Store
	Categories *tree.Tree
}

// CategoryName returns the name of the product's category, or "" when it
// has none or the category no longer exists.
func (l *ProductList) CategoryName(p models.Product) string {
	if p.CategoryID == nil || l.Categories == nil {
		return ""
	}
	if n := l.Categories.Node(*p.CategoryID); n != nil {
		return n.Name
	}
	return ""
}

// List fetches products, stores and categories concurrently.
func (s *ProductService) List(ctx context.Context) (*ProductList, error) {
	var (
		l    ProductList
		cats []models.Category
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		l.Products, err = s.api.ListProducts(gctx)
		return err
	})
	g.Go(func() (err error) {
		l.Stores, err = s.api.ListStores(gctx)
		return err
	})
	g.Go(func() (err error) {
		cats, err = s.api.ListCategories(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}

	t, err := tree.Build(cats)
	if err != nil {
		return nil, err
	}
	l.Categories = t
	return &l, nil
}

// ProductForm is the data behind the product create and edit form.
type ProductForm struct {
	Product    *models.Product
	Stores     []models.Store
	Categories *tree.Tree
	// NextCode is the suggested code for a new product; empty when the
	// backend could not suggest one.
	NextCode string
}

// Form loads the form data. id 0 prepares a new product.
func (s *ProductService) Form(ctx context.Context, id int64) (*ProductForm, error) {
	var (
		f    ProductForm
		cats []models.Category
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		f.Stores, err = s.api.ListStores(gctx)
		return err
	})
	g.Go(func() (err error) {
		cats, err = s.api.ListCategories(gctx)
		return err
	})
	if id != 0 {
		g.Go(func() (err error) {
			f.Product, err = s.api.GetProduct(gctx, id)
			return err
		})
	} else {
		g.Go(func() error {
			code, err := s.api.NextProductCode(gctx)
			if err != nil {
				slog.Warn("next product code unavailable", "error", err)
				return nil
			}
			f.NextCode = code
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load product form: %w", err)
	}

	t, err := tree.Build(cats)
	if err != nil {
		return nil, err
	}
	f.Categories = t
	return &f, nil
}

// Create creates a product stocked in the stores listed in in.Inventories.
func (s *ProductService) Create(ctx context.Context, in models.ProductInput) (*models.Product, error) {
	p, err := s.api.CreateProduct(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	s.journal.Mutated(ctx, "product", "create", p.ID)
	return p, nil
}

// Update saves the product fields and then upserts one inventory row per
// entry of in.Inventories: rows the product already has in that store are
// updated, the others created.
func (s *ProductService) Update(ctx context.Context, id int64, in models.ProductInput) error {
	current, err := s.api.GetProduct(ctx, id)
	if err != nil {
		return fmt.Errorf("load product %d: %w", id, err)
	}

	stock := in.Inventories
	in.Inventories = nil
	if _, err := s.api.UpdateProduct(ctx, id, in); err != nil {
		return fmt.Errorf("update product %d: %w", id, err)
	}
	s.journal.Mutated(ctx, "product", "update", id)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, inv := range stock {
		inv.ProductID = id
		existing := current.InventoryFor(inv.StoreID)
		g.Go(func() error {
			if existing != nil {
				if _, err := s.api.UpdateInventory(gctx, existing.ID, inv); err != nil {
					return fmt.Errorf("update stock in store %d: %w", inv.StoreID, err)
				}
				s.journal.Mutated(gctx, "inventory", "update", existing.ID)
				return nil
			}
			created, err := s.api.CreateInventory(gctx, inv)
			if err != nil {
				return fmt.Errorf("add stock in store %d: %w", inv.StoreID, err)
			}
			s.journal.Mutated(gctx, "inventory", "create", created.ID)
			return nil
		})
	}
	return g.Wait()
}

// Delete removes a product.
func (s *ProductService) Delete(ctx context.Context, id int64) error {
	if err := s.api.DeleteProduct(ctx, id); err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	s.journal.Mutated(ctx, "product", "delete", id)
	return nil
}
