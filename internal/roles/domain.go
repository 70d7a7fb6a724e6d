// Package roles manages role CRUD and role-permission assignment.
package roles

import "github.com/haocai-admin/haocai-admin/internal/rbac"

// Role aliases the shared RBAC role model.
type Role = rbac.Role

// ListFilters narrows role listings.
type ListFilters struct {
	Name    string
	Code    string
	Status  *int
	Current int
	Size    int
}
