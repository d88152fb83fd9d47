package domain

// Role labels an account capability.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleProvider Role = "PROVIDER"
	RoleRegular  Role = "REGULAR"
)

// DefaultRoles is assigned to every freshly registered user.
func DefaultRoles() []Role {
	return []Role{RoleRegular}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleProvider, RoleRegular:
		return true
	}
	return false
}
