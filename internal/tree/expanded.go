// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package tree

import "slices"

// Expanded is the set of category ids whose children are shown. It lives
// in the operator's session, outside the tree, because the tree is rebuilt
// on every request.
type Expanded map[int64]struct{}

// NewExpanded returns a set holding ids.
func NewExpanded(ids ...int64) Expanded {
	e := make(Expanded, len(ids))
	for _, id := range ids {
		e[id] = struct{}{}
	}
	return e
}

// Has reports whether id is expanded. A nil set has nothing expanded.
func (e Expanded) Has(id int64) bool {
	_, ok := e[id]
	return ok
}

// Toggle flips the state of id and reports whether it is now expanded.
func (e Expanded) Toggle(id int64) bool {
	if _, ok := e[id]; ok {
		delete(e, id)
		return false
	}
	e[id] = struct{}{}
	return true
}

// IDs returns the expanded ids in ascending order.
func (e Expanded) IDs() []int64 {
	ids := make([]int64, 0, len(e))
	for id := range e {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Prune drops ids that are no longer in t and reports how many were removed.
func (e Expanded) Prune(t *Tree) int {
	n := 0
	for id := range e {
		if t.Node(id) == nil {
			delete(e, id)
			n++
		}
	}
	return n
}
