// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

// Category is a product category as returned by the backend.
// A nil ParentID marks a root category.
type Category struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	ParentID *int64 `json:"parentId"`
}

// CategoryInput is the payload for creating or updating a category.
type CategoryInput struct {
	Name     string `json:"name" validate:"required,max=200"`
	ParentID *int64 `json:"parentId"`
}

// IsRoot reports whether the category has no parent.
func (c Category) IsRoot() bool {
	return c.ParentID == nil
}
