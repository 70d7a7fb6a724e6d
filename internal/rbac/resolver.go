package rbac

import "sort"

// Resolve flattens a set of roles into the effective permission codes.
//
// Disabled roles contribute nothing regardless of their permission sets, and
// disabled permissions never appear in the result. Grants are purely
// additive: there is no deny override, so the result is monotonic in the
// role set. The function is pure; callers recompute it whenever roles or the
// permission catalog change.
func Resolve(roles []Role) []string {
	seen := make(map[string]struct{})
	for _, role := range roles {
		if !role.Enabled() {
			continue
		}
		for _, perm := range role.Permissions {
			if !perm.Enabled() || perm.Code == "" {
				continue
			}
			seen[perm.Code] = struct{}{}
		}
	}
	codes := make([]string, 0, len(seen))
	for code := range seen {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Granted reports whether code is present in the resolved set.
func Granted(codes []string, code string) bool {
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}
