package auth

import "errors"

// Role is the caller's role, carried in the token's "role" claim.
type Role string

// Roles.
const (
	RoleViewer      Role = "viewer"
	RoleOperator    Role = "operator"
	RoleProvisioner Role = "provisioner"
)

// ValidRoles lists every accepted role.
var ValidRoles = []Role{RoleViewer, RoleOperator, RoleProvisioner}

// IsValid reports whether r is a known role.
func (r Role) IsValid() bool {
	for _, v := range ValidRoles {
		if r == v {
			return true
		}
	}
	return false
}

// Sentinel errors.
var (
	ErrTokenInvalid = errors.New("invalid token")
	ErrTokenMissing = errors.New("missing bearer token")
	ErrForbidden    = errors.New("permission denied")
)
