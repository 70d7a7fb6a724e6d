// Package users manages user accounts and their role assignments.
package users

import "github.com/haocai-admin/haocai-admin/internal/auth"

// User aliases the account model owned by the auth module.
type User = auth.User

// ListFilters narrows user listings.
type ListFilters struct {
	Username     string
	Name         string
	Status       *int
	DepartmentID int64
	Current      int
	Size         int
}
