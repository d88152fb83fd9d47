package validate

import (
	"unicode/utf8"

	"github.com/ereignis/ereignis-api/internal/domain"
)

const (
	MsgStreetEmpty = "street cannot be empty"
	MsgZipLength   = "zip code must have 5 digits"
)

// Address checks street presence and zip length.
func Address(in domain.AddressInput) []domain.FieldError {
	var errs []domain.FieldError
	if in.Street == "" {
		errs = append(errs, domain.FieldError{Field: "street", Message: MsgStreetEmpty})
	}
	if utf8.RuneCountInString(in.Zip) != 5 {
		errs = append(errs, domain.FieldError{Field: "zip", Message: MsgZipLength})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}
