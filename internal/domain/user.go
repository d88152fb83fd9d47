package domain

import "time"

// User is an account holder. Username, email and phone are unique at the store.
type User struct {
	ID           int64
	Username     string
	Email        string
	Phone        string
	PasswordHash string
	Confirmed    bool
	Roles        []Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasRole reports whether the user holds role.
func (u *User) HasRole(role Role) bool {
	if u == nil {
		return false
	}
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsAdmin is shorthand for HasRole(RoleAdmin).
func (u *User) IsAdmin() bool {
	return u.HasRole(RoleAdmin)
}

// UserFields carries a partial update; nil fields are left untouched.
type UserFields struct {
	Username  *string
	Email     *string
	Phone     *string
	Confirmed *bool
	Roles     []Role
}

// Empty reports whether no field is set.
func (f UserFields) Empty() bool {
	return f.Username == nil && f.Email == nil && f.Phone == nil && f.Confirmed == nil && f.Roles == nil
}
