package dto

import (
	"time"

	"github.com/ereignis/ereignis-api/internal/auth"
	"github.com/ereignis/ereignis-api/internal/domain"
	"github.com/ereignis/ereignis-api/internal/service"
	"github.com/ereignis/ereignis-api/internal/validate"
)

// RegisterOptions mirrors the registration form. Length and format rules are
// enforced by validate.Register so they come back as field errors.
type RegisterOptions struct {
	Email        string `json:"email" validate:"max=255"`
	Username     string `json:"username" validate:"max=64"`
	Phone        string `json:"phone" validate:"max=32"`
	Password     string `json:"password" validate:"max=72"`
	Confirmation string `json:"confirmation" validate:"max=72"`
}

// Input converts the options for the validator.
func (o RegisterOptions) Input() validate.RegisterInput {
	return validate.RegisterInput{
		Email:        o.Email,
		Username:     o.Username,
		Phone:        o.Phone,
		Password:     o.Password,
		Confirmation: o.Confirmation,
	}
}

// RegisterVariables payload for register.
type RegisterVariables struct {
	Options RegisterOptions `json:"options"`
}

// LoginVariables payload for login.
type LoginVariables struct {
	UsernameOrEmail string `json:"usernameOrEmail" validate:"max=255"`
	Password        string `json:"password" validate:"max=72"`
}

// IDVariables addresses a single record.
type IDVariables struct {
	ID int64 `json:"id" validate:"required,gt=0"`
}

// PageVariables selects one page of a listing.
type PageVariables struct {
	Limit  int     `json:"limit" validate:"gte=1"`
	Cursor *string `json:"cursor" validate:"omitempty,max=64"`
}

// CursorValue returns the cursor or "" for the first page.
func (p PageVariables) CursorValue() string {
	if p.Cursor == nil {
		return ""
	}
	return *p.Cursor
}

// ProfileUpdateInput lists the profile fields to change. Absent fields stay untouched.
type ProfileUpdateInput struct {
	Email    *string `json:"email" validate:"omitempty,max=255"`
	Username *string `json:"username" validate:"omitempty,max=64"`
	Phone    *string `json:"phone" validate:"omitempty,max=32"`
}

// UpdateProfileVariables payload for updateProfile.
type UpdateProfileVariables struct {
	ID    int64              `json:"id" validate:"required,gt=0"`
	Input ProfileUpdateInput `json:"input"`
}

// Profile converts the input for the service.
func (v UpdateProfileVariables) Profile() service.ProfileInput {
	return service.ProfileInput{Username: v.Input.Username, Email: v.Input.Email, Phone: v.Input.Phone}
}

// ConfirmAccountVariables payload for confirmAccount.
type ConfirmAccountVariables struct {
	Token string `json:"token" validate:"required,max=1024"`
}

// User is the externally visible shape of an account.
type User struct {
	ID        int64         `json:"id"`
	Username  string        `json:"username"`
	Email     string        `json:"email"`
	Phone     string        `json:"phone"`
	Confirmed bool          `json:"confirmed"`
	Roles     []domain.Role `json:"roles,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// NewUser shapes u for viewer. Email is blanked unless viewer owns the
// account; roles are omitted unless viewer is an admin.
func NewUser(viewer *domain.User, u *domain.User) *User {
	if u == nil {
		return nil
	}
	out := &User{
		ID:        u.ID,
		Username:  u.Username,
		Phone:     u.Phone,
		Confirmed: u.Confirmed,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
	if auth.CanViewEmail(viewer, u) {
		out.Email = u.Email
	}
	if auth.CanViewRoles(viewer) {
		out.Roles = append([]domain.Role(nil), u.Roles...)
	}
	return out
}

// UserResponse is the payload of operations returning a single user.
type UserResponse struct {
	Errors []domain.FieldError `json:"errors"`
	User   *User               `json:"user"`
}

// HasFieldErrors reports whether the payload carries business errors.
func (r UserResponse) HasFieldErrors() bool { return len(r.Errors) > 0 }

// NewUserResponse shapes a service result for viewer.
func NewUserResponse(viewer *domain.User, resp service.UserResponse) UserResponse {
	return UserResponse{Errors: resp.Errors, User: NewUser(viewer, resp.User)}
}

// PaginatedUsers is one page of the users listing.
type PaginatedUsers struct {
	Users      []User `json:"users"`
	HasMore    bool   `json:"hasMore"`
	NextCursor string `json:"nextCursor,omitempty"`
}

// NewPaginatedUsers shapes a page for viewer.
func NewPaginatedUsers(viewer *domain.User, page service.UserPage) PaginatedUsers {
	out := PaginatedUsers{Users: make([]User, 0, len(page.Users)), HasMore: page.HasMore, NextCursor: page.NextCursor}
	for i := range page.Users {
		out.Users = append(out.Users, *NewUser(viewer, &page.Users[i]))
	}
	return out
}
