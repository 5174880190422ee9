package session

import (
	"errors"
	"fmt"
	"time"
)

// ErrNotAuthenticated is returned when an operation needs a logged-in user.
var ErrNotAuthenticated = errors.New("session: not authenticated")

// User is the authenticated principal.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// Snapshot is an immutable view of the session at a point in time.
type Snapshot struct {
	User       User
	LoggedInAt time.Time
}

// Authenticated reports whether the snapshot carries a user.
func (s Snapshot) Authenticated() bool {
	return s.User.Role.Valid()
}

// Can applies the capability check to the snapshot's role.
func (s Snapshot) Can(capability Capability) bool {
	return s.Authenticated() && Can(s.User.Role, capability)
}

// Directory resolves the mock user that signs in for a role.
type Directory map[Role]User

// DefaultDirectory returns the built-in demo users.
func DefaultDirectory() Directory {
	return Directory{
		RoleCustomer: {ID: "1", Name: "John Customer", Email: "customer@example.com", Role: RoleCustomer},
		RoleAdjuster: {ID: "2", Name: "Sarah Adjuster", Email: "adjuster@example.com", Role: RoleAdjuster},
		RoleAdmin:    {ID: "3", Name: "Mike Admin", Email: "admin@example.com", Role: RoleAdmin},
	}
}

// Option customizes session construction.
type Option func(*Session)

// WithClock overrides the time source used for login stamps.
func WithClock(clock func() time.Time) Option {
	return func(s *Session) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithDirectory replaces the mock user directory.
func WithDirectory(dir Directory) Option {
	return func(s *Session) {
		if len(dir) > 0 {
			s.directory = dir
		}
	}
}

// Session owns the current user for one terminal. It is passed explicitly to
// every view instead of living in a global.
type Session struct {
	directory Directory
	clock     func() time.Time
	current   Snapshot
}

// New returns a logged-out session.
func New(opts ...Option) *Session {
	s := &Session{
		directory: DefaultDirectory(),
		clock:     time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Login signs in as the mock user for role. Credentials are not checked.
func (s *Session) Login(role Role) (Snapshot, error) {
	if !role.Valid() {
		return Snapshot{}, fmt.Errorf("session: cannot log in with role %d", int(role))
	}
	user, ok := s.directory[role]
	if !ok {
		return Snapshot{}, fmt.Errorf("session: no user configured for role %s", role)
	}
	user.Role = role
	s.current = Snapshot{User: user, LoggedInAt: s.clock()}
	return s.current, nil
}

// Logout clears the current user.
func (s *Session) Logout() {
	s.current = Snapshot{}
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() Snapshot {
	return s.current
}

// Require returns the current snapshot or ErrNotAuthenticated.
func (s *Session) Require() (Snapshot, error) {
	if !s.current.Authenticated() {
		return Snapshot{}, ErrNotAuthenticated
	}
	return s.current, nil
}
