package authn

import "strings"

// Role is the role held by a storefront User.
type Role string

const (
	// RoleUser is the role held by ordinary shoppers.
	RoleUser Role = "User"
	// RoleAdmin is the role held by users permitted to manage the catalog.
	RoleAdmin Role = "Admin"
)

// ParseRole returns the Role with the given name, matched case-insensitively.
func ParseRole(name string) (Role, bool) {
	switch {
	case strings.EqualFold(name, string(RoleUser)):
		return RoleUser, true
	case strings.EqualFold(name, string(RoleAdmin)):
		return RoleAdmin, true
	}
	return "", false
}

// User represents the identity associated with a storefront session.
type User struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// IsAdmin returns true if the User holds the Admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Credentials are what a user presents to log in or register.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
