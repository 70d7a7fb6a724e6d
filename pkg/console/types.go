package console

// Permission types as delivered by the backend catalog.
const (
	PermissionMenu   = "menu"
	PermissionButton = "button"
	PermissionAPI    = "api"
)

// Status value meaning enabled for roles and permissions.
const statusEnabled = 1

// Permission is one catalog node.
type Permission struct {
	ID        int64        `json:"id"`
	Name      string       `json:"name"`
	Code      string       `json:"code"`
	Type      string       `json:"type"`
	ParentID  int64        `json:"parentId,omitempty"`
	Path      string       `json:"path,omitempty"`
	Component string       `json:"component,omitempty"`
	Icon      string       `json:"icon,omitempty"`
	SortOrder int          `json:"sortOrder"`
	Status    int          `json:"status"`
	Children  []Permission `json:"children,omitempty"`
}

// Enabled reports whether the permission participates in grants.
func (p Permission) Enabled() bool { return p.Status == statusEnabled }

// Role as attached to the authenticated user.
type Role struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name"`
	Code        string       `json:"code"`
	Status      int          `json:"status"`
	Permissions []Permission `json:"permissions,omitempty"`
}

// Enabled reports whether the role participates in grants.
func (r Role) Enabled() bool { return r.Status == statusEnabled }

// User is the authenticated account.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Roles    []Role `json:"roles,omitempty"`
}
