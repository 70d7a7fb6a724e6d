package console

// DecisionKind classifies a navigation decision.
type DecisionKind int

const (
	DecisionAllow DecisionKind = iota
	DecisionRedirectLogin
	DecisionShowForbidden
)

// Decision is the guard's verdict on a navigation attempt.
type Decision struct {
	Kind DecisionKind
	// LoginPath and ReturnTo are set for RedirectLogin.
	LoginPath string
	ReturnTo  string
}

// Route is one entry in the console's route table.
type Route struct {
	Path string
	// Permission required to enter the route. Empty means any
	// authenticated user.
	Permission string
	// Public routes need no session at all.
	Public bool
}

// LoginRoute is the default login path.
const LoginRoute = "/login"

// Guard makes access decisions from the current session state only.
// Permission grants are computed from the roles captured at login;
// role changes made on the backend become visible on the next login,
// never mid-session.
type Guard struct {
	session *SessionManager
	routes  map[string]Route
}

// NewGuard builds a Guard over the session manager and route table.
func NewGuard(session *SessionManager, routes []Route) *Guard {
	table := make(map[string]Route, len(routes)+1)
	table[LoginRoute] = Route{Path: LoginRoute, Public: true}
	for _, route := range routes {
		table[route.Path] = route
	}
	return &Guard{session: session, routes: table}
}

// Can reports whether the current user holds the permission code.
// Without a live session the answer is always false.
func (g *Guard) Can(code string) bool {
	session, ok := g.session.Current()
	if !ok {
		return false
	}
	if code == "" {
		return true
	}
	granted := Resolve(session.User.Roles)
	_, ok = granted[code]
	return ok
}

// CanNavigate decides whether the current user may enter the route.
func (g *Guard) CanNavigate(path string) Decision {
	route, known := g.routes[path]
	if known && route.Public {
		return Decision{Kind: DecisionAllow}
	}

	session, ok := g.session.Current()
	if !ok {
		// A lapsed session is cleared on the way out so storage and
		// guard agree.
		if g.session.IsExpired() {
			g.session.clear(path)
		}
		return Decision{Kind: DecisionRedirectLogin, LoginPath: LoginRoute, ReturnTo: path}
	}

	if !known || route.Permission == "" {
		return Decision{Kind: DecisionAllow}
	}
	granted := Resolve(session.User.Roles)
	if _, ok := granted[route.Permission]; !ok {
		return Decision{Kind: DecisionShowForbidden}
	}
	return Decision{Kind: DecisionAllow}
}

// FilterActions returns only the actions the current user may perform.
// Suppressed actions are absent from the result, not disabled.
func (g *Guard) FilterActions(actions []string) []string {
	session, ok := g.session.Current()
	if !ok {
		return nil
	}
	granted := Resolve(session.User.Roles)
	var out []string
	for _, code := range actions {
		if _, ok := granted[code]; ok {
			out = append(out, code)
		}
	}
	return out
}
