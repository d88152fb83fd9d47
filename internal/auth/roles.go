package auth

import (
	"github.com/ereignis/ereignis-api/internal/domain"
	apperrors "github.com/ereignis/ereignis-api/pkg/util/errorutil"
)

// Requirement declares who may run an operation.
type Requirement struct {
	// Public operations skip the evaluator entirely.
	Public bool
	// Roles lists accepted roles; empty means any authenticated actor.
	Roles []domain.Role
}

// Public lets anonymous callers through.
func Public() Requirement {
	return Requirement{Public: true}
}

// Authenticated requires a resolved actor with any role.
func Authenticated() Requirement {
	return Requirement{}
}

// RequireRoles requires the actor to hold at least one of roles.
func RequireRoles(roles ...domain.Role) Requirement {
	return Requirement{Roles: roles}
}

// Check returns a top-level authorization error when actor does not satisfy r.
func (r Requirement) Check(actor *domain.User) error {
	if r.Public {
		return nil
	}
	if actor == nil {
		return apperrors.NewUnauthorized("not authenticated")
	}
	if !Authorize(actor, r.Roles) {
		return apperrors.NewForbidden("access denied")
	}
	return nil
}
