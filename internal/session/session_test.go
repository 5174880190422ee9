package session

import (
	"errors"
	"testing"
	"time"
)

func TestLoginRoutesToRoleDashboard(t *testing.T) {
	tests := []struct {
		role Role
		want string
	}{
		{RoleCustomer, "/customer"},
		{RoleAdjuster, "/adjuster"},
		{RoleAdmin, "/admin"},
	}
	for _, tt := range tests {
		t.Run(tt.role.String(), func(t *testing.T) {
			s := New()
			snap, err := s.Login(tt.role)
			if err != nil {
				t.Fatalf("login: %v", err)
			}
			if snap.User.Role != tt.role {
				t.Fatalf("logged in as %s, want %s", snap.User.Role, tt.role)
			}
			res := Resolve(PathRoot, snap)
			if res.Path != tt.want {
				t.Fatalf("root resolved to %s, want %s", res.Path, tt.want)
			}
			if got := DashboardPath(tt.role); got != tt.want {
				t.Fatalf("DashboardPath(%s) = %s, want %s", tt.role, got, tt.want)
			}
		})
	}
}

func TestLoginRejectsInvalidRole(t *testing.T) {
	s := New()
	if _, err := s.Login(RoleNone); err == nil {
		t.Fatalf("expected error for RoleNone")
	}
	if s.Snapshot().Authenticated() {
		t.Fatalf("failed login must not authenticate")
	}
}

func TestLogoutResetsSession(t *testing.T) {
	fixed := time.Date(2024, 1, 16, 9, 0, 0, 0, time.UTC)
	s := New(WithClock(func() time.Time { return fixed }))
	snap, err := s.Login(RoleAdmin)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if !snap.LoggedInAt.Equal(fixed) {
		t.Fatalf("login stamp = %v, want %v", snap.LoggedInAt, fixed)
	}
	s.Logout()
	if _, err := s.Require(); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated after logout, got %v", err)
	}
	if !snap.Authenticated() || snap.User.Name != "Mike Admin" {
		t.Fatalf("earlier snapshot must stay intact after logout: %+v", snap)
	}
}

func TestCapabilities(t *testing.T) {
	tests := []struct {
		role Role
		cap  Capability
		want bool
	}{
		{RoleCustomer, CapUploadClaims, true},
		{RoleCustomer, CapReviewClaims, false},
		{RoleAdjuster, CapReviewClaims, true},
		{RoleAdjuster, CapUploadClaims, false},
		{RoleAdjuster, CapViewAnalytics, false},
		{RoleAdmin, CapReviewClaims, true},
		{RoleAdmin, CapViewAnalytics, true},
		{RoleNone, CapViewClaim, false},
	}
	for _, tt := range tests {
		if got := Can(tt.role, tt.cap); got != tt.want {
			t.Errorf("Can(%s, %s) = %v, want %v", tt.role.Label(), tt.cap, got, tt.want)
		}
	}
}

func TestResolveGuards(t *testing.T) {
	guest := Snapshot{}
	s := New()
	customer, _ := s.Login(RoleCustomer)
	adjuster, _ := s.Login(RoleAdjuster)

	tests := []struct {
		name       string
		path       string
		snap       Snapshot
		want       string
		redirected bool
		claimID    string
		notFound   bool
	}{
		{name: "guest to dashboard", path: "/customer", snap: guest, want: PathLogin, redirected: true},
		{name: "guest to root", path: "/", snap: guest, want: PathLogin, redirected: true},
		{name: "guest to login", path: "/login", snap: guest, want: PathLogin},
		{name: "guest to claim", path: "/claim/0001", snap: guest, want: PathLogin, redirected: true},
		{name: "customer on admin", path: "/admin/analytics", snap: customer, want: PathCustomer, redirected: true},
		{name: "adjuster on upload", path: "/customer/upload", snap: adjuster, want: PathAdjuster, redirected: true},
		{name: "adjuster on hitl", path: "/adjuster/hitl/", snap: adjuster, want: PathAdjusterHITL},
		{name: "customer on claim", path: "/claim/0002", snap: customer, want: "/claim/0002", claimID: "0002"},
		{name: "unknown path", path: "/nowhere", snap: customer, want: PathNotFound, notFound: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Resolve(tt.path, tt.snap)
			if res.Path != tt.want {
				t.Fatalf("Resolve(%s) = %s, want %s", tt.path, res.Path, tt.want)
			}
			if res.Redirected != tt.redirected {
				t.Fatalf("Redirected = %v, want %v", res.Redirected, tt.redirected)
			}
			if res.ClaimID != tt.claimID {
				t.Fatalf("ClaimID = %q, want %q", res.ClaimID, tt.claimID)
			}
			if res.NotFound != tt.notFound {
				t.Fatalf("NotFound = %v, want %v", res.NotFound, tt.notFound)
			}
		})
	}
}

func TestParseRoleRoundTrip(t *testing.T) {
	for _, role := range Roles {
		parsed, err := ParseRole(role.String())
		if err != nil || parsed != role {
			t.Fatalf("ParseRole(%s) = %v, %v", role, parsed, err)
		}
	}
	if _, err := ParseRole("superuser"); err == nil {
		t.Fatalf("expected error for unknown role")
	}
}
