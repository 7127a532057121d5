// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package tree turns the flat category list returned by the backend into a
// navigable hierarchy. A Tree is a derived view: it is rebuilt from the
// fetched list on every read and never mutated in place.
package tree

import (
	"errors"
	"fmt"
	"iter"

	"zakazadmin/internal/models"
)

var (
	// ErrDuplicateID is returned by Build when two records share an id.
	ErrDuplicateID = errors.New("duplicate category id")

	// ErrSelfParent is returned when a category is given itself as parent.
	ErrSelfParent = errors.New("a category cannot be its own parent")

	// ErrCycle is returned when the proposed parent is a descendant of the
	// category being edited.
	ErrCycle = errors.New("the selected parent is a sub-category of this category")

	// ErrUnknownParent is returned when the proposed parent does not exist.
	ErrUnknownParent = errors.New("the selected parent category does not exist")
)

// ProblemKind classifies a structural defect found while building a tree.
type ProblemKind int

const (
	// DanglingParent means the record points at a parent that is not in the list.
	DanglingParent ProblemKind = iota + 1
	// ParentCycle means following parents from the record leads back to it.
	ParentCycle
)

func (k ProblemKind) String() string {
	switch k {
	case DanglingParent:
		return "dangling parent"
	case ParentCycle:
		return "parent cycle"
	default:
		return fmt.Sprintf("ProblemKind(%d)", int(k))
	}
}

// Problem records a category that was promoted to root because its declared
// parent could not be used.
type Problem struct {
	ID       int64
	Name     string
	ParentID int64
	Kind     ProblemKind
}

func (p Problem) String() string {
	switch p.Kind {
	case DanglingParent:
		return fmt.Sprintf("%q (ID: %d) references missing parent %d and is shown at the top level", p.Name, p.ID, p.ParentID)
	case ParentCycle:
		return fmt.Sprintf("%q (ID: %d) closes a parent cycle through %d and is shown at the top level", p.Name, p.ID, p.ParentID)
	default:
		return fmt.Sprintf("%q (ID: %d): %s", p.Name, p.ID, p.Kind)
	}
}

// Node is a category placed in the tree. Parent is nil for roots, including
// records promoted to root; the declared ParentID is kept unchanged.
type Node struct {
	models.Category
	Parent   *Node
	Children []*Node
}

// HasChildren reports whether the node has at least one child.
func (n *Node) HasChildren() bool {
	return len(n.Children) > 0
}

// Tree is an acyclic category hierarchy. Siblings keep the order in which
// they appeared in the input.
type Tree struct {
	Roots    []*Node
	Problems []Problem

	nodes map[int64]*Node
}

// Build constructs a tree from a flat category list in three passes over an
// id-indexed arena. A record whose parent is missing, or whose parent chain
// leads back to itself, becomes a root and is listed in Problems. The only
// error is a duplicate id.
func Build(cats []models.Category) (*Tree, error) {
	t := &Tree{nodes: make(map[int64]*Node, len(cats))}

	for _, c := range cats {
		if _, ok := t.nodes[c.ID]; ok {
			return nil, fmt.Errorf("build category tree: %w: %d", ErrDuplicateID, c.ID)
		}
		t.nodes[c.ID] = &Node{Category: c}
	}

	// Parents are decided in input order. A record whose parent chain
	// reaches back to it is cut loose, so the decided links stay acyclic.
	decided := make(map[int64]bool, len(cats))
	for _, c := range cats {
		n := t.nodes[c.ID]
		switch {
		case c.ParentID == nil:
		case t.nodes[*c.ParentID] == nil:
			t.Problems = append(t.Problems, Problem{ID: c.ID, Name: c.Name, ParentID: *c.ParentID, Kind: DanglingParent})
		case t.closesCycle(c.ID, *c.ParentID, decided):
			t.Problems = append(t.Problems, Problem{ID: c.ID, Name: c.Name, ParentID: *c.ParentID, Kind: ParentCycle})
		default:
			n.Parent = t.nodes[*c.ParentID]
		}
		decided[c.ID] = true
	}

	for _, c := range cats {
		n := t.nodes[c.ID]
		if n.Parent == nil {
			t.Roots = append(t.Roots, n)
			continue
		}
		n.Parent.Children = append(n.Parent.Children, n)
	}

	return t, nil
}

// closesCycle reports whether attaching id under parent would make id its
// own ancestor. Decided nodes are followed through their effective parent,
// undecided ones through their declared parent.
func (t *Tree) closesCycle(id, parent int64, decided map[int64]bool) bool {
	seen := make(map[int64]bool)
	cur := parent
	for {
		if cur == id {
			return true
		}
		if seen[cur] {
			return false
		}
		seen[cur] = true

		n := t.nodes[cur]
		if n == nil {
			return false
		}
		if decided[cur] {
			if n.Parent == nil {
				return false
			}
			cur = n.Parent.ID
			continue
		}
		if n.ParentID == nil {
			return false
		}
		cur = *n.ParentID
	}
}

// Len returns the number of categories in the tree.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Node returns the node with the given id, or nil.
func (t *Tree) Node(id int64) *Node {
	return t.nodes[id]
}

// Depth returns the number of ancestors of n.
func (n *Node) Depth() int {
	d := 0
	for p := n.Parent; p != nil; p = p.Parent {
		d++
	}
	return d
}

// Flatten returns every node in pre-order.
func (t *Tree) Flatten() []*Node {
	result := make([]*Node, 0, len(t.nodes))
	flattenTree(t.Roots, &result)
	return result
}

// flattenTree walks a node list depth-first, appending to result.
func flattenTree(nodes []*Node, result *[]*Node) {
	for _, n := range nodes {
		*result = append(*result, n)
		if len(n.Children) > 0 {
			flattenTree(n.Children, result)
		}
	}
}

// Descendants returns the nodes below id in pre-order, excluding id itself.
// It returns nil when id is unknown or a leaf.
func (t *Tree) Descendants(id int64) []*Node {
	n := t.nodes[id]
	if n == nil || len(n.Children) == 0 {
		return nil
	}
	var result []*Node
	flattenTree(n.Children, &result)
	return result
}

// DeletionOrder returns id and all its descendants ordered so that every
// child comes before its parent. The last element is id. It returns nil
// when id is unknown.
func (t *Tree) DeletionOrder(id int64) []int64 {
	n := t.nodes[id]
	if n == nil {
		return nil
	}
	var ids []int64
	var walk func(*Node)
	walk = func(n *Node) {
		for _, c := range n.Children {
			walk(c)
		}
		ids = append(ids, n.ID)
	}
	walk(n)
	return ids
}

// Path returns the chain of nodes from the root down to id, inclusive.
func (t *Tree) Path(id int64) []*Node {
	n := t.nodes[id]
	if n == nil {
		return nil
	}
	var path []*Node
	for ; n != nil; n = n.Parent {
		path = append(path, n)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// Option is one entry of a parent category select.
type Option struct {
	ID    int64
	Label string
	Depth int
}

// ParentOptions returns the categories that may be chosen as parent of
// editingID, in pre-order. The edited category and all of its descendants
// are excluded. An editingID of 0 (a new category) excludes nothing.
func (t *Tree) ParentOptions(editingID int64) []Option {
	skip := make(map[int64]bool)
	if editingID != 0 {
		skip[editingID] = true
		for _, d := range t.Descendants(editingID) {
			skip[d.ID] = true
		}
	}

	var opts []Option
	for n, depth := range t.All() {
		if skip[n.ID] {
			continue
		}
		opts = append(opts, Option{
			ID:    n.ID,
			Label: fmt.Sprintf("%s (ID: %d)", n.Name, n.ID),
			Depth: depth,
		})
	}
	return opts
}

// ValidateParent checks that giving id the parent parentID keeps the
// hierarchy acyclic. It walks from the proposed parent up to its root and
// fails if id is met on the way. A nil parent is always valid; an id of 0
// stands for a category that does not exist yet.
func (t *Tree) ValidateParent(id int64, parentID *int64) error {
	if parentID == nil {
		return nil
	}
	if id != 0 && *parentID == id {
		return ErrSelfParent
	}
	p := t.nodes[*parentID]
	if p == nil {
		return ErrUnknownParent
	}
	if id == 0 {
		return nil
	}
	for a := p; a != nil; a = a.Parent {
		if a.ID == id {
			return ErrCycle
		}
	}
	return nil
}

// Row is one line of the rendered category tree.
type Row struct {
	Node        *Node
	Depth       int
	HasChildren bool
	Expanded    bool
}

// All yields every node with its depth in pre-order.
func (t *Tree) All() iter.Seq2[*Node, int] {
	return t.walk(func(*Node) bool { return true })
}

// Visible yields the nodes a reader sees with the given expansion state, in
// pre-order with their depth. Children are yielded only when their parent
// is in expanded.
func (t *Tree) Visible(expanded Expanded) iter.Seq2[*Node, int] {
	return t.walk(func(n *Node) bool { return expanded.Has(n.ID) })
}

func (t *Tree) walk(descend func(*Node) bool) iter.Seq2[*Node, int] {
	return func(yield func(*Node, int) bool) {
		var visit func(nodes []*Node, depth int) bool
		visit = func(nodes []*Node, depth int) bool {
			for _, n := range nodes {
				if !yield(n, depth) {
					return false
				}
				if len(n.Children) > 0 && descend(n) {
					if !visit(n.Children, depth+1) {
						return false
					}
				}
			}
			return true
		}
		visit(t.Roots, 0)
	}
}

// Rows collects Visible into renderable rows.
func (t *Tree) Rows(expanded Expanded) []Row {
	var rows []Row
	for n, depth := range t.Visible(expanded) {
		rows = append(rows, Row{
			Node:        n,
			Depth:       depth,
			HasChildren: n.HasChildren(),
			Expanded:    n.HasChildren() && expanded.Has(n.ID),
		})
	}
	return rows
}
