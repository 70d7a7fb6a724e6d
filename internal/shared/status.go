package shared

// Status values for roles, permissions, departments and materials.
// The user table uses its own convention, see internal/users.
const (
	StatusEnabled  = 1
	StatusDisabled = 0
)
