// Package departments manages the organisational department tree.
package departments

import "time"

// Department is a node in the organisation tree. ParentID zero marks a
// top level department.
type Department struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	ParentID  int64     `json:"parentId,omitempty"`
	Leader    string    `json:"leader,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	SortOrder int       `json:"sortOrder"`
	Status    int       `json:"status"`
	CreatedAt time.Time `json:"createTime,omitzero"`
	UpdatedAt time.Time `json:"updateTime,omitzero"`

	Children []Department `json:"children,omitempty"`
}
