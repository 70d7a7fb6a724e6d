package departments

import "sort"

// BuildTree nests a flat department list by parent ID. Departments whose
// parent is missing are promoted to the top level so a bad row never
// hides a subtree. Siblings are ordered by sort order, ties by ID.
func BuildTree(flat []Department) []Department {
	byID := make(map[int64]Department, len(flat))
	for _, d := range flat {
		d.Children = nil
		byID[d.ID] = d
	}

	childIDs := make(map[int64][]int64)
	var rootIDs []int64
	for _, d := range flat {
		if d.ParentID != 0 {
			if _, ok := byID[d.ParentID]; ok {
				childIDs[d.ParentID] = append(childIDs[d.ParentID], d.ID)
				continue
			}
		}
		rootIDs = append(rootIDs, d.ID)
	}

	var build func(ids []int64) []Department
	build = func(ids []int64) []Department {
		sort.Slice(ids, func(i, j int) bool {
			a, b := byID[ids[i]], byID[ids[j]]
			if a.SortOrder != b.SortOrder {
				return a.SortOrder < b.SortOrder
			}
			return a.ID < b.ID
		})
		out := make([]Department, 0, len(ids))
		for _, id := range ids {
			node := byID[id]
			node.Children = build(childIDs[id])
			out = append(out, node)
		}
		return out
	}
	return build(rootIDs)
}

// IsDescendant reports whether candidate sits under ancestor in the flat
// list. A node is not its own descendant.
func IsDescendant(flat []Department, ancestorID, candidateID int64) bool {
	parents := make(map[int64]int64, len(flat))
	for _, d := range flat {
		parents[d.ID] = d.ParentID
	}
	seen := make(map[int64]bool)
	for id := parents[candidateID]; id != 0 && !seen[id]; id = parents[id] {
		if id == ancestorID {
			return true
		}
		seen[id] = true
	}
	return false
}
