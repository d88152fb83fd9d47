// Package validate holds pure input checks. Every check runs, so callers can
// surface all violations in one response.
package validate

import (
	"strings"
	"unicode/utf8"

	"github.com/ereignis/ereignis-api/internal/domain"
)

const (
	MsgInvalidEmail      = "invalid email"
	MsgUsernameAt        = "username cannot contain @"
	MsgTooShort          = "length must be greater than 2"
	MsgPasswordsMismatch = "passwords do not match"
)

// RegisterInput is the registration payload.
type RegisterInput struct {
	Email        string
	Username     string
	Phone        string
	Password     string
	Confirmation string
}

// Register returns nil when the input is acceptable.
func Register(in RegisterInput) []domain.FieldError {
	var errs []domain.FieldError
	if !strings.Contains(in.Email, "@") {
		errs = append(errs, domain.FieldError{Field: "email", Message: MsgInvalidEmail})
	}
	if strings.Contains(in.Username, "@") {
		errs = append(errs, domain.FieldError{Field: "username", Message: MsgUsernameAt})
	}
	if utf8.RuneCountInString(in.Username) <= 2 {
		errs = append(errs, domain.FieldError{Field: "username", Message: MsgTooShort})
	}
	if utf8.RuneCountInString(in.Password) <= 2 {
		errs = append(errs, domain.FieldError{Field: "password", Message: MsgTooShort})
	}
	if in.Password != in.Confirmation {
		errs = append(errs, domain.FieldError{Field: "confirmation", Message: MsgPasswordsMismatch})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ProfileUpdate applies the registration rules to whichever fields are set.
func ProfileUpdate(email, username *string) []domain.FieldError {
	var errs []domain.FieldError
	if email != nil && !strings.Contains(*email, "@") {
		errs = append(errs, domain.FieldError{Field: "email", Message: MsgInvalidEmail})
	}
	if username != nil {
		if strings.Contains(*username, "@") {
			errs = append(errs, domain.FieldError{Field: "username", Message: MsgUsernameAt})
		}
		if utf8.RuneCountInString(*username) <= 2 {
			errs = append(errs, domain.FieldError{Field: "username", Message: MsgTooShort})
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}
