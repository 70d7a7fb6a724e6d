// Package rbac implements role-based access control: the role and
// permission model, the pure role-to-permission resolver, and the HTTP
// authorization middleware.
package rbac

import "time"

// PermissionType distinguishes navigable menus, in-page action buttons and
// backend API markers.
type PermissionType string

const (
	PermissionMenu   PermissionType = "menu"
	PermissionButton PermissionType = "button"
	PermissionAPI    PermissionType = "api"
)

// Valid reports whether t is one of the three known types.
func (t PermissionType) Valid() bool {
	switch t {
	case PermissionMenu, PermissionButton, PermissionAPI:
		return true
	}
	return false
}

// Permission is a node in the hierarchical capability tree.
type Permission struct {
	ID        int64          `json:"id"`
	Name      string         `json:"name"`
	Code      string         `json:"code"`
	Type      PermissionType `json:"type"`
	ParentID  int64          `json:"parentId"`
	Path      string         `json:"path,omitempty"`
	Component string         `json:"component,omitempty"`
	Icon      string         `json:"icon,omitempty"`
	SortOrder int            `json:"sortOrder"`
	Status    int            `json:"status"`
	CreatedAt time.Time      `json:"createTime,omitzero"`
	UpdatedAt time.Time      `json:"updateTime,omitzero"`
}

// Role is a named bundle of permissions.
type Role struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name"`
	Code        string       `json:"code"`
	Description string       `json:"description,omitempty"`
	Status      int          `json:"status"`
	Permissions []Permission `json:"permissions,omitempty"`
	CreatedAt   time.Time    `json:"createTime,omitzero"`
	UpdatedAt   time.Time    `json:"updateTime,omitzero"`
}

// Enabled reports whether the role grants its permissions.
func (r Role) Enabled() bool { return r.Status == 1 }

// Enabled reports whether the permission participates in effective sets.
func (p Permission) Enabled() bool { return p.Status == 1 }
