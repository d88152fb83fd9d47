package auth

import "github.com/ereignis/ereignis-api/internal/domain"

// Authorize decides whether actor may proceed given the required roles.
// A nil actor is always denied. An empty role set admits any actor.
func Authorize(actor *domain.User, required []domain.Role) bool {
	if actor == nil {
		return false
	}
	if len(required) == 0 {
		return true
	}
	for _, role := range required {
		if actor.HasRole(role) {
			return true
		}
	}
	return false
}

// OwnerOrAdmin reports whether actor owns the record identified by ownerID or is an ADMIN.
func OwnerOrAdmin(actor *domain.User, ownerID int64) bool {
	if actor == nil {
		return false
	}
	return actor.ID == ownerID || actor.IsAdmin()
}

// CanViewEmail allows only the account owner to read its email.
func CanViewEmail(viewer *domain.User, user *domain.User) bool {
	return viewer != nil && user != nil && viewer.ID == user.ID
}

// CanViewRoles allows only ADMIN viewers to read role sets.
func CanViewRoles(viewer *domain.User) bool {
	return viewer.IsAdmin()
}
