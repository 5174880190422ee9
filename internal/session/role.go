// internal/session/role.go
//
// Roles are a closed set. Every permission question in the application goes
// through Can so views never compare role strings themselves.

package session

import (
	"fmt"
	"strings"
)

// Role identifies which dashboard and actions a user gets.
type Role int

const (
	RoleNone Role = iota
	RoleCustomer
	RoleAdjuster
	RoleAdmin
)

// Roles lists the selectable roles in login order.
var Roles = []Role{RoleCustomer, RoleAdjuster, RoleAdmin}

// String returns the wire name of the role.
func (r Role) String() string {
	switch r {
	case RoleCustomer:
		return "customer"
	case RoleAdjuster:
		return "adjuster"
	case RoleAdmin:
		return "admin"
	default:
		return ""
	}
}

// Label returns the capitalized role name.
func (r Role) Label() string {
	switch r {
	case RoleCustomer:
		return "Customer"
	case RoleAdjuster:
		return "Adjuster"
	case RoleAdmin:
		return "Admin"
	default:
		return "Guest"
	}
}

// Description is the one-line summary shown on the login screen.
func (r Role) Description() string {
	switch r {
	case RoleCustomer:
		return "Submit and track claims"
	case RoleAdjuster:
		return "Review AI outputs"
	case RoleAdmin:
		return "Manage system & analytics"
	default:
		return ""
	}
}

// Valid reports whether r is one of the selectable roles.
func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleAdjuster || r == RoleAdmin
}

// MarshalText encodes the role by name.
func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("session: invalid role %d", int(r))
	}
	return []byte(r.String()), nil
}

// UnmarshalText decodes a role name.
func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// ParseRole converts a role name into a Role.
func ParseRole(value string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "customer":
		return RoleCustomer, nil
	case "adjuster":
		return RoleAdjuster, nil
	case "admin":
		return RoleAdmin, nil
	default:
		return RoleNone, fmt.Errorf("session: unknown role %q", value)
	}
}

// Capability is an action a role may be allowed to perform.
type Capability int

const (
	CapViewClaim Capability = iota
	CapUploadClaims
	CapTrackOwnClaims
	CapReviewQueue
	CapReviewClaims
	CapViewAnalytics
	CapManageSystem
)

var capabilityNames = map[Capability]string{
	CapViewClaim:      "view-claim",
	CapUploadClaims:   "upload-claims",
	CapTrackOwnClaims: "track-own-claims",
	CapReviewQueue:    "review-queue",
	CapReviewClaims:   "review-claims",
	CapViewAnalytics:  "view-analytics",
	CapManageSystem:   "manage-system",
}

func (c Capability) String() string {
	if name, ok := capabilityNames[c]; ok {
		return name
	}
	return fmt.Sprintf("capability(%d)", int(c))
}

var grants = map[Role][]Capability{
	RoleCustomer: {CapViewClaim, CapUploadClaims, CapTrackOwnClaims},
	RoleAdjuster: {CapViewClaim, CapReviewQueue, CapReviewClaims},
	RoleAdmin:    {CapViewClaim, CapReviewClaims, CapViewAnalytics, CapManageSystem},
}

// Can reports whether role holds capability.
func Can(role Role, capability Capability) bool {
	for _, granted := range grants[role] {
		if granted == capability {
			return true
		}
	}
	return false
}
