// Package permissions manages the hierarchical permission catalog: the
// typed menu/button/api capability tree, its structural queries and its
// CRUD guards.
package permissions

import (
	"sort"
	"strings"

	"github.com/haocai-admin/haocai-admin/internal/rbac"
)

// TreeNode is a permission with its children nested, as served to clients.
type TreeNode struct {
	rbac.Permission
	// Invalid marks a node whose parentId points at a missing or deleted
	// parent; it is shown as a root so it stays reachable for repair.
	Invalid  bool        `json:"invalid,omitempty"`
	Children []*TreeNode `json:"children,omitempty"`
}

// Forest is an arena-style index over a flat permission list: nodes keyed by
// id, children derived from the index. It is cheap to rebuild whenever the
// catalog changes.
type Forest struct {
	nodes    map[int64]rbac.Permission
	children map[int64][]int64
	roots    []int64
	invalid  map[int64]bool
}

// NewForest indexes the given permissions. Nodes whose parent is absent are
// treated as roots and flagged invalid (unless parentId is zero).
func NewForest(perms []rbac.Permission) *Forest {
	f := &Forest{
		nodes:    make(map[int64]rbac.Permission, len(perms)),
		children: make(map[int64][]int64),
		invalid:  make(map[int64]bool),
	}
	for _, p := range perms {
		f.nodes[p.ID] = p
	}
	for _, p := range perms {
		switch {
		case p.ParentID == 0:
			f.roots = append(f.roots, p.ID)
		case f.nodes[p.ParentID].ID == 0:
			f.roots = append(f.roots, p.ID)
			f.invalid[p.ID] = true
		default:
			f.children[p.ParentID] = append(f.children[p.ParentID], p.ID)
		}
	}
	f.sortIDs(f.roots)
	for _, ids := range f.children {
		f.sortIDs(ids)
	}
	return f
}

// sortIDs orders ids by sortOrder ascending, then by id for stability.
func (f *Forest) sortIDs(ids []int64) {
	sort.SliceStable(ids, func(i, j int) bool {
		a, b := f.nodes[ids[i]], f.nodes[ids[j]]
		if a.SortOrder != b.SortOrder {
			return a.SortOrder < b.SortOrder
		}
		return a.ID < b.ID
	})
}

// FindByCode returns the permission with the given code.
func (f *Forest) FindByCode(code string) (rbac.Permission, bool) {
	for _, p := range f.nodes {
		if p.Code == code {
			return p, true
		}
	}
	return rbac.Permission{}, false
}

// Get returns the permission with the given id.
func (f *Forest) Get(id int64) (rbac.Permission, bool) {
	p, ok := f.nodes[id]
	return p, ok
}

// ChildrenOf returns the ordered direct children of a node.
func (f *Forest) ChildrenOf(id int64) []rbac.Permission {
	ids := f.children[id]
	out := make([]rbac.Permission, len(ids))
	for i, cid := range ids {
		out[i] = f.nodes[cid]
	}
	return out
}

// IsDescendant reports whether candidateID lies strictly below ancestorID.
// A node is never its own descendant.
func (f *Forest) IsDescendant(candidateID, ancestorID int64) bool {
	if candidateID == ancestorID {
		return false
	}
	current, ok := f.nodes[candidateID]
	if !ok {
		return false
	}
	seen := make(map[int64]bool)
	for current.ParentID != 0 {
		if seen[current.ID] {
			// A cycle would loop forever; treat the walk as exhausted.
			return false
		}
		seen[current.ID] = true
		if current.ParentID == ancestorID {
			return true
		}
		parent, ok := f.nodes[current.ParentID]
		if !ok {
			return false
		}
		current = parent
	}
	return false
}

// Tree materialises the nested node structure for the whole forest.
func (f *Forest) Tree() []*TreeNode {
	out := make([]*TreeNode, 0, len(f.roots))
	for _, id := range f.roots {
		out = append(out, f.subtree(id))
	}
	return out
}

func (f *Forest) subtree(id int64) *TreeNode {
	node := &TreeNode{Permission: f.nodes[id], Invalid: f.invalid[id]}
	for _, cid := range f.children[id] {
		node.Children = append(node.Children, f.subtree(cid))
	}
	return node
}

// FilterByName returns the subtrees matching the name filter. A node whose
// name contains the query keeps its full ancestor chain visible, so the
// filtered tree never orphans a visible node.
func (f *Forest) FilterByName(query string) []*TreeNode {
	query = strings.TrimSpace(query)
	if query == "" {
		return f.Tree()
	}
	keep := make(map[int64]bool)
	for id, p := range f.nodes {
		if strings.Contains(p.Name, query) {
			for cur := id; cur != 0 && !keep[cur]; {
				keep[cur] = true
				cur = f.nodes[cur].ParentID
			}
		}
	}
	var out []*TreeNode
	for _, id := range f.roots {
		if node := f.filteredSubtree(id, keep); node != nil {
			out = append(out, node)
		}
	}
	return out
}

func (f *Forest) filteredSubtree(id int64, keep map[int64]bool) *TreeNode {
	if !keep[id] {
		return nil
	}
	node := &TreeNode{Permission: f.nodes[id], Invalid: f.invalid[id]}
	for _, cid := range f.children[id] {
		if child := f.filteredSubtree(cid, keep); child != nil {
			node.Children = append(node.Children, child)
		}
	}
	return node
}
