package console

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func perm(code string, status int) Permission {
	return Permission{Code: code, Status: status}
}

func TestResolveUnionsEnabledRoles(t *testing.T) {
	roles := []Role{
		{ID: 1, Code: "admin", Status: 1, Permissions: []Permission{perm("user:view", 1), perm("user:create", 1)}},
		{ID: 2, Code: "stock", Status: 1, Permissions: []Permission{perm("user:view", 1), perm("inventory:in", 1)}},
	}

	granted := Resolve(roles)
	require.Len(t, granted, 3)
	require.Contains(t, granted, "user:view")
	require.Contains(t, granted, "user:create")
	require.Contains(t, granted, "inventory:in")
}

func TestResolveSkipsDisabledRole(t *testing.T) {
	roles := []Role{
		{ID: 1, Code: "admin", Status: 0, Permissions: []Permission{perm("user:create", 1)}},
		{ID: 2, Code: "viewer", Status: 1, Permissions: []Permission{perm("user:view", 1)}},
	}

	granted := Resolve(roles)
	require.NotContains(t, granted, "user:create")
	require.Contains(t, granted, "user:view")
}

func TestResolveSkipsDisabledPermission(t *testing.T) {
	roles := []Role{
		{ID: 1, Code: "admin", Status: 1, Permissions: []Permission{perm("user:view", 1), perm("user:delete", 0)}},
	}

	granted := Resolve(roles)
	require.Contains(t, granted, "user:view")
	require.NotContains(t, granted, "user:delete")
}

func TestResolveIsMonotonicAndIdempotent(t *testing.T) {
	base := []Role{
		{ID: 1, Code: "viewer", Status: 1, Permissions: []Permission{perm("user:view", 1)}},
	}
	extended := append([]Role{
		{ID: 2, Code: "editor", Status: 1, Permissions: []Permission{perm("user:update", 1)}},
	}, base...)

	small := Resolve(base)
	large := Resolve(extended)
	// Adding a role never removes a grant.
	for code := range small {
		require.Contains(t, large, code)
	}
	// Same input, same output.
	require.Equal(t, small, Resolve(base))
}

func TestResolveEmptyInput(t *testing.T) {
	require.Empty(t, Resolve(nil))
	require.Empty(t, Resolve([]Role{{ID: 1, Status: 1}}))
}
