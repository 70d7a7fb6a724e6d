package console

import (
	"context"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Catalog is the client-side permission tree. It loads the tree from
// the backend once, indexes it in an arena keyed by node ID, and serves
// lookups until invalidated. Concurrent loads collapse into a single
// request.
type Catalog struct {
	client *Client
	group  singleflight.Group

	mu      sync.RWMutex
	loaded  bool
	nodes   map[int64]Permission
	childs  map[int64][]int64
	roots   []int64
	invalid map[int64]bool
	byCode  map[string]int64
}

// NewCatalog builds a Catalog over the client.
func NewCatalog(client *Client) *Catalog {
	return &Catalog{client: client}
}

// LoadTree fetches and indexes the permission tree. Subsequent calls
// return the cached tree until Invalidate.
func (c *Catalog) LoadTree(ctx context.Context) ([]Permission, error) {
	c.mu.RLock()
	if c.loaded {
		tree := c.treeLocked()
		c.mu.RUnlock()
		return tree, nil
	}
	c.mu.RUnlock()

	_, err, _ := c.group.Do("tree", func() (any, error) {
		c.mu.RLock()
		loaded := c.loaded
		c.mu.RUnlock()
		if loaded {
			return nil, nil
		}
		var tree []Permission
		if err := c.client.Get(ctx, "/permission/tree", &tree); err != nil {
			return nil, err
		}
		c.index(tree)
		return nil, nil
	})
	if err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.treeLocked(), nil
}

// Invalidate drops the cached tree; the next LoadTree refetches.
func (c *Catalog) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loaded = false
	c.nodes = nil
	c.childs = nil
	c.roots = nil
	c.invalid = nil
	c.byCode = nil
}

// FindByCode returns the node carrying the code.
func (c *Catalog) FindByCode(code string) (Permission, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.byCode[code]
	if !ok {
		return Permission{}, false
	}
	node := c.nodes[id]
	node.Children = nil
	return node, true
}

// Get returns the node with the given ID.
func (c *Catalog) Get(id int64) (Permission, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	node, ok := c.nodes[id]
	node.Children = nil
	return node, ok
}

// ChildrenOf returns the direct children of a node ordered by sort
// order, ties by ID. Zero returns the top level.
func (c *Catalog) ChildrenOf(id int64) []Permission {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := c.childs[id]
	if id == 0 {
		ids = c.roots
	}
	out := make([]Permission, 0, len(ids))
	for _, childID := range ids {
		node := c.nodes[childID]
		node.Children = nil
		out = append(out, node)
	}
	return out
}

// IsDescendant reports whether candidate sits strictly below ancestor.
// A node is never its own descendant, and a broken parent chain stops
// the walk rather than looping.
func (c *Catalog) IsDescendant(ancestorID, candidateID int64) bool {
	if ancestorID == candidateID {
		return false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	seen := make(map[int64]bool)
	node, ok := c.nodes[candidateID]
	if !ok {
		return false
	}
	for node.ParentID != 0 && !seen[node.ID] {
		seen[node.ID] = true
		if node.ParentID == ancestorID {
			return true
		}
		node, ok = c.nodes[node.ParentID]
		if !ok {
			return false
		}
	}
	return false
}

// Invalid reports whether the node arrived with a parent reference the
// tree could not satisfy.
func (c *Catalog) Invalid(id int64) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.invalid[id]
}

// FilterByName returns the subtrees whose nodes match the name
// substring. A matching node keeps its full ancestor chain so the
// result renders as a tree.
func (c *Catalog) FilterByName(name string) []Permission {
	name = strings.TrimSpace(name)
	c.mu.RLock()
	defer c.mu.RUnlock()
	if name == "" {
		return c.treeLocked()
	}

	keep := make(map[int64]bool)
	for id, node := range c.nodes {
		if !strings.Contains(node.Name, name) {
			continue
		}
		// Mark the node and its ancestor chain.
		seen := make(map[int64]bool)
		for cur := id; cur != 0 && !seen[cur]; {
			seen[cur] = true
			keep[cur] = true
			parent, ok := c.nodes[cur]
			if !ok {
				break
			}
			cur = parent.ParentID
		}
	}

	var build func(ids []int64) []Permission
	build = func(ids []int64) []Permission {
		var out []Permission
		for _, id := range ids {
			if !keep[id] {
				continue
			}
			node := c.nodes[id]
			node.Children = build(c.childs[id])
			out = append(out, node)
		}
		return out
	}
	return build(c.roots)
}

// Tree returns the cached nested tree.
func (c *Catalog) Tree() []Permission {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.treeLocked()
}

func (c *Catalog) treeLocked() []Permission {
	var build func(ids []int64) []Permission
	build = func(ids []int64) []Permission {
		out := make([]Permission, 0, len(ids))
		for _, id := range ids {
			node := c.nodes[id]
			node.Children = build(c.childs[id])
			out = append(out, node)
		}
		return out
	}
	return build(c.roots)
}

// index flattens the fetched tree into the arena. The backend already
// nests children, so anything sitting at the top level with a non-zero
// parent reference is an orphan: kept addressable, flagged invalid.
func (c *Catalog) index(tree []Permission) {
	nodes := make(map[int64]Permission)
	childs := make(map[int64][]int64)
	invalid := make(map[int64]bool)
	byCode := make(map[string]int64)
	var roots []int64

	var walk func(list []Permission, parentID int64, top bool)
	walk = func(list []Permission, parentID int64, top bool) {
		for _, node := range list {
			children := node.Children
			node.Children = nil
			if top && node.ParentID != 0 {
				invalid[node.ID] = true
			}
			nodes[node.ID] = node
			byCode[node.Code] = node.ID
			if top {
				roots = append(roots, node.ID)
			} else {
				childs[parentID] = append(childs[parentID], node.ID)
			}
			walk(children, node.ID, false)
		}
	}
	walk(tree, 0, true)

	sortIDs := func(ids []int64) {
		sort.Slice(ids, func(i, j int) bool {
			a, b := nodes[ids[i]], nodes[ids[j]]
			if a.SortOrder != b.SortOrder {
				return a.SortOrder < b.SortOrder
			}
			return a.ID < b.ID
		})
	}
	sortIDs(roots)
	for _, ids := range childs {
		sortIDs(ids)
	}

	c.mu.Lock()
	c.loaded = true
	c.nodes = nodes
	c.childs = childs
	c.roots = roots
	c.invalid = invalid
	c.byCode = byCode
	c.mu.Unlock()
}
