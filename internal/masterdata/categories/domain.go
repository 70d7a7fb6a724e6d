// Package categories manages the material category tree.
package categories

import (
	"sort"
	"time"
)

// Category is a node in the material classification tree. ParentID zero
// marks a top level category.
type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	ParentID  int64     `json:"parentId,omitempty"`
	SortOrder int       `json:"sortOrder"`
	Status    int       `json:"status"`
	Remark    string    `json:"remark,omitempty"`
	CreatedAt time.Time `json:"createTime,omitzero"`
	UpdatedAt time.Time `json:"updateTime,omitzero"`

	Children []Category `json:"children,omitempty"`
}

// BuildTree nests a flat category list by parent ID, promoting orphans
// to the top level. Siblings order by sort order, ties by ID.
func BuildTree(flat []Category) []Category {
	byID := make(map[int64]Category, len(flat))
	for _, c := range flat {
		c.Children = nil
		byID[c.ID] = c
	}

	childIDs := make(map[int64][]int64)
	var rootIDs []int64
	for _, c := range flat {
		if c.ParentID != 0 {
			if _, ok := byID[c.ParentID]; ok {
				childIDs[c.ParentID] = append(childIDs[c.ParentID], c.ID)
				continue
			}
		}
		rootIDs = append(rootIDs, c.ID)
	}

	var build func(ids []int64) []Category
	build = func(ids []int64) []Category {
		sort.Slice(ids, func(i, j int) bool {
			a, b := byID[ids[i]], byID[ids[j]]
			if a.SortOrder != b.SortOrder {
				return a.SortOrder < b.SortOrder
			}
			return a.ID < b.ID
		})
		out := make([]Category, 0, len(ids))
		for _, id := range ids {
			node := byID[id]
			node.Children = build(childIDs[id])
			out = append(out, node)
		}
		return out
	}
	return build(rootIDs)
}
