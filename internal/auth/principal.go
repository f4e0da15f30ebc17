// internal/auth/principal.go
package auth

import "fmt"

// Role is the authorization role carried in the token's role claim.
type Role string

const (
	RolePatron    Role = "PATRON"
	RoleLibrarian Role = "LIBRARIAN"
)

// ParseRole validates a raw role claim value.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RolePatron, RoleLibrarian:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Principal is the authenticated identity reconstructed from a verified
// token on every inbound request. It is never persisted.
type Principal struct {
	Subject string
	Email   string
	Role    Role
}
