package catalog

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"zakazadmin/internal/models"
)

// DashboardAPI is the part of the backend client the dashboard uses.
type DashboardAPI interface {
	ListStores(ctx context.Context) ([]models.Store, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	ListProducts(ctx context.Context) ([]models.Product, error)
	ListOrders(ctx context.Context, status models.OrderStatus) ([]models.Order, error)
}

// Summary holds the dashboard counters.
type Summary struct {
	Stores     int
	Categories int
	Products   int
	Orders     int
	Pending    int
}

// LoadSummary fetches the four collections concurrently and counts them.
// The first failure cancels the other calls.
func LoadSummary(ctx context.Context, c DashboardAPI) (*Summary, error) {
	var (
		stores     []models.Store
		categories []models.Category
		products   []models.Product
		orders     []models.Order
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stores, err = c.ListStores(gctx)
		return err
	})
	g.Go(func() (err error) {
		categories, err = c.ListCategories(gctx)
		return err
	})
	g.Go(func() (err error) {
		products, err = c.ListProducts(gctx)
		return err
	})
	g.Go(func() (err error) {
		orders, err = c.ListOrders(gctx, "")
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load dashboard: %w", err)
	}

	return &Summary{
		Stores:     len(stores),
		Categories: len(categories),
		Products:   len(products),
		Orders:     len(orders),
		Pending:    models.CountByStatus(orders, models.OrderPending),
	}, nil
}
