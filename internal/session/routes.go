package session

import "strings"

// Paths of every screen in the application.
const (
	PathRoot           = "/"
	PathLogin          = "/login"
	PathCustomer       = "/customer"
	PathCustomerUpload = "/customer/upload"
	PathCustomerClaims = "/customer/claims"
	PathAdjuster       = "/adjuster"
	PathAdjusterHITL   = "/adjuster/hitl"
	PathAdjusterCAG    = "/adjuster/cag"
	PathAdmin          = "/admin"
	PathAdminUsers     = "/admin/users"
	PathAdminAnalytics = "/admin/analytics"
	PathAdminSettings  = "/admin/settings"
	PathNotFound       = "/404"
	claimPathPrefix    = "/claim/"
)

// Route declares who may open a path. A nil Allowed list admits any
// authenticated role.
type Route struct {
	Path    string
	Public  bool
	Allowed []Role
}

var routes = []Route{
	{Path: PathLogin, Public: true},
	{Path: PathCustomer, Allowed: []Role{RoleCustomer}},
	{Path: PathCustomerUpload, Allowed: []Role{RoleCustomer}},
	{Path: PathCustomerClaims, Allowed: []Role{RoleCustomer}},
	{Path: PathAdjuster, Allowed: []Role{RoleAdjuster}},
	{Path: PathAdjusterHITL, Allowed: []Role{RoleAdjuster}},
	{Path: PathAdjusterCAG, Allowed: []Role{RoleAdjuster}},
	{Path: PathAdmin, Allowed: []Role{RoleAdmin}},
	{Path: PathAdminUsers, Allowed: []Role{RoleAdmin}},
	{Path: PathAdminAnalytics, Allowed: []Role{RoleAdmin}},
	{Path: PathAdminSettings, Allowed: []Role{RoleAdmin}},
}

// DashboardPath returns the landing path for a role.
func DashboardPath(role Role) string {
	switch role {
	case RoleCustomer:
		return PathCustomer
	case RoleAdjuster:
		return PathAdjuster
	case RoleAdmin:
		return PathAdmin
	default:
		return PathLogin
	}
}

// ClaimPath returns the review path for a claim.
func ClaimPath(id string) string {
	return claimPathPrefix + id
}

// Resolution is the outcome of routing a path for a session snapshot.
type Resolution struct {
	// Path is where the user ends up after guards ran.
	Path string
	// Requested is the path that was asked for.
	Requested string
	// ClaimID is set when Path is a claim review path.
	ClaimID    string
	Redirected bool
	NotFound   bool
}

// Resolve applies the route guards: unauthenticated users go to the login
// screen and users opening another role's screen go to their own dashboard.
func Resolve(path string, snap Snapshot) Resolution {
	requested := normalizePath(path)
	res := Resolution{Path: requested, Requested: requested}

	if requested == PathRoot {
		res.Path = DashboardPath(snap.User.Role)
		res.Redirected = true
		return res
	}

	if id, ok := strings.CutPrefix(requested, claimPathPrefix); ok && id != "" && !strings.Contains(id, "/") {
		if !snap.Authenticated() {
			return redirect(res, PathLogin)
		}
		res.ClaimID = id
		return res
	}

	route, ok := lookup(requested)
	if !ok {
		res.Path = PathNotFound
		res.NotFound = true
		return res
	}
	if route.Public {
		return res
	}
	if !snap.Authenticated() {
		return redirect(res, PathLogin)
	}
	if route.Allowed != nil && !roleIn(snap.User.Role, route.Allowed) {
		return redirect(res, DashboardPath(snap.User.Role))
	}
	return res
}

func redirect(res Resolution, to string) Resolution {
	res.Path = to
	res.Redirected = true
	return res
}

func lookup(path string) (Route, bool) {
	for _, route := range routes {
		if route.Path == path {
			return route, true
		}
	}
	return Route{}, false
}

func roleIn(role Role, allowed []Role) bool {
	for _, candidate := range allowed {
		if candidate == role {
			return true
		}
	}
	return false
}

func normalizePath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return PathRoot
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = PathRoot
		}
	}
	return path
}
