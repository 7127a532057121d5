// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package catalog orchestrates the console's catalog operations on top of
// the backend client: category mutations that keep the hierarchy sound,
// product saves with their per-store inventory, and the dashboard summary.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"zakazadmin/internal/api"
	"zakazadmin/internal/models"
	"zakazadmin/internal/tree"
)

// CascadeMode selects who removes the descendants of a deleted category.
type CascadeMode string

const (
	// CascadeServer sends one DELETE and relies on the backend to cascade.
	CascadeServer CascadeMode = "server"
	// CascadeClient deletes the subtree from the console, leaves first.
	CascadeClient CascadeMode = "client"
)

// ParseCascadeMode validates a configured cascade mode.
func ParseCascadeMode(s string) (CascadeMode, error) {
	switch m := CascadeMode(strings.ToLower(strings.TrimSpace(s))); m {
	case CascadeServer, CascadeClient:
		return m, nil
	default:
		return "", fmt.Errorf("invalid category cascade mode %q (want server or client)", s)
	}
}

// ErrNameRequired is returned when a category name is blank.
var ErrNameRequired = errors.New("category name is required")

// CategoryAPI is the part of the backend client the category service uses.
type CategoryAPI interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	CreateCategory(ctx context.Context, in models.CategoryInput) (*models.Category, error)
	UpdateCategory(ctx context.Context, id int64, in models.CategoryInput) (*models.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
}

// CategoryService reads categories as a tree and sends mutations that keep
// the hierarchy acyclic. It never caches: every call starts from a fresh
// list.
type CategoryService struct {
	api     CategoryAPI
	mode    CascadeMode
	journal Journal
}

// NewCategoryService creates a CategoryService. journal may be nil.
func NewCategoryService(c CategoryAPI, mode CascadeMode, journal Journal) *CategoryService {
	if mode == "" {
		mode = CascadeServer
	}
	return &CategoryService{api: c, mode: mode, journal: orNop(journal)}
}

// Mode returns the configured cascade mode.
func (s *CategoryService) Mode() CascadeMode {
	return s.mode
}

// Load fetches the categories and builds the tree.
func (s *CategoryService) Load(ctx context.Context) (*tree.Tree, error) {
	cats, err := s.api.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	t, err := tree.Build(cats)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Create adds a category after checking that its parent exists.
func (s *CategoryService) Create(ctx context.Context, in models.CategoryInput) (*models.Category, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, ErrNameRequired
	}
	if in.ParentID != nil {
		t, err := s.Load(ctx)
		if err != nil {
			return nil, err
		}
		if err := t.ValidateParent(0, in.ParentID); err != nil {
			return nil, err
		}
	}

	c, err := s.api.CreateCategory(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	s.journal.Mutated(ctx, "category", "create", c.ID)
	return c, nil
}

// Update renames and re-parents a category. A parent that is the category
// itself, one of its descendants or unknown is rejected before anything is
// sent.
func (s *CategoryService) Update(ctx context.Context, id int64, in models.CategoryInput) (*models.Category, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, ErrNameRequired
	}
	t, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	if t.Node(id) == nil {
		return nil, fmt.Errorf("category %d: %w", id, api.ErrNotFound)
	}
	if err := t.ValidateParent(id, in.ParentID); err != nil {
		return nil, err
	}

	c, err := s.api.UpdateCategory(ctx, id, in)
	if err != nil {
		return nil, fmt.Errorf("update category %d: %w", id, err)
	}
	s.journal.Mutated(ctx, "category", "update", id)
	return c, nil
}

// DeletePlan describes what deleting a category will remove.
type DeletePlan struct {
	Target      *tree.Node
	Descendants []*tree.Node
	// Order lists every id to delete, children before parents, target last.
	Order []int64
}

// Count returns the number of categories the delete removes.
func (p *DeletePlan) Count() int {
	return len(p.Order)
}

// PlanDelete loads the tree and returns the subtree a delete of id removes.
func (s *CategoryService) PlanDelete(ctx context.Context, id int64) (*DeletePlan, error) {
	t, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	return planDelete(t, id)
}

func planDelete(t *tree.Tree, id int64) (*DeletePlan, error) {
	n := t.Node(id)
	if n == nil {
		return nil, fmt.Errorf("category %d: %w", id, api.ErrNotFound)
	}
	return &DeletePlan{
		Target:      n,
		Descendants: t.Descendants(id),
		Order:       t.DeletionOrder(id),
	}, nil
}

// Delete removes id and all its descendants and returns the ids it
// removed. In client mode a partial failure returns the ids deleted so far
// together with the error; the remaining categories are left intact.
func (s *CategoryService) Delete(ctx context.Context, id int64) ([]int64, error) {
	plan, err := s.PlanDelete(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.mode == CascadeServer {
		if err := s.api.DeleteCategory(ctx, id); err != nil {
			return nil, fmt.Errorf("delete category %d: %w", id, err)
		}
		s.journal.Mutated(ctx, "category", "delete", id)
		return plan.Order, nil
	}

	deleted := make([]int64, 0, len(plan.Order))
	for _, cid := range plan.Order {
		err := s.api.DeleteCategory(ctx, cid)
		if err != nil && !errors.Is(err, api.ErrNotFound) {
			return deleted, fmt.Errorf("delete category %d (%d of %d removed): %w", cid, len(deleted), len(plan.Order), err)
		}
		deleted = append(deleted, cid)
		s.journal.Mutated(ctx, "category", "delete", cid)
	}
	return deleted, nil
}
