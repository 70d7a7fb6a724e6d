package console

// Resolve flattens the user's roles into the set of granted permission
// codes. Pure and grant-only: disabled roles contribute nothing,
// disabled permissions are dropped, and no role can take away a code
// another role grants. Resolving twice yields the same set.
func Resolve(roles []Role) map[string]struct{} {
	granted := make(map[string]struct{})
	for _, role := range roles {
		if !role.Enabled() {
			continue
		}
		for _, perm := range role.Permissions {
			if !perm.Enabled() || perm.Code == "" {
				continue
			}
			granted[perm.Code] = struct{}{}
		}
	}
	return granted
}
