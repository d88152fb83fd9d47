package dto

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/ereignis/ereignis-api/pkg/util/errorutil"
)

// GraphRequest is the body accepted by the operation endpoint.
type GraphRequest struct {
	OperationName string          `json:"operationName" validate:"required,max=64"`
	Variables     json.RawMessage `json:"variables"`
}

// Binder decodes operation variables and runs structural checks on them.
// Business rules such as password length stay in package validate so they
// surface as field errors rather than top-level failures.
type Binder struct {
	v *validator.Validate
}

// NewBinder returns a Binder that reports json field names.
func NewBinder() *Binder {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Binder{v: v}
}

// Validate checks an already decoded value.
func (b *Binder) Validate(target any) error {
	if err := b.v.Struct(target); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			details := make(map[string]any, len(ve))
			for _, fe := range ve {
				details[fieldPath(fe)] = fieldError(fe)
			}
			return apperrors.NewValidationError("invalid variables", details)
		}
		return err
	}
	return nil
}

// Bind decodes raw into target and validates it. Missing variables decode as an empty object.
func (b *Binder) Bind(raw json.RawMessage, target any) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		raw = []byte("{}")
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(target); err != nil {
		return apperrors.NewValidationError("malformed variables", map[string]any{"reason": err.Error()})
	}
	return b.Validate(target)
}

func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func fieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte", "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	default:
		return fmt.Sprintf("failed validation (%s)", fe.Tag())
	}
}
