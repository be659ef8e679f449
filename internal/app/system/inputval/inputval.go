// internal/app/system/inputval/inputval.go
//
// Package inputval provides field-level validation primitives. Entity
// validators (in the store packages) run their checks in declaration order
// and report the first failing field's code, so API callers always see a
// stable `fieldReason` message such as "nameRequired" or "memberLimitMin".
package inputval

import (
	"net/mail"
	"strings"
)

// FieldError identifies a single failed field check. Code is the stable
// caller-visible reason (e.g. "userAccountTooShort") and doubles as the
// error message on the wire.
type FieldError struct {
	Field string
	Code  string
}

func (e *FieldError) Error() string { return e.Code }

// Result accumulates field errors in check order.
type Result struct {
	Errors []FieldError
}

// Fail records a failed check.
func (r *Result) Fail(field, code string) {
	r.Errors = append(r.Errors, FieldError{Field: field, Code: code})
}

// HasErrors reports whether any check failed.
func (r *Result) HasErrors() bool { return len(r.Errors) > 0 }

// First returns the first failing field's code, or "".
func (r *Result) First() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0].Code
}

// Err returns the first field error, or nil when all checks passed.
func (r *Result) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	return &r.Errors[0]
}

// IsValidEmail reports whether s parses as a bare RFC 5322 address
// (display-name forms are rejected).
func IsValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return false
	}
	return addr.Address == s
}

// IsAlphanumeric reports whether s is non-empty ASCII letters and digits.
func IsAlphanumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

// IsValidObjectID reports whether s (after trimming) is a 24-character
// hex string, the text form of a Mongo ObjectID.
func IsValidObjectID(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) != 24 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

// OneOf reports whether s equals one of the allowed values.
func OneOf(s string, allowed []string) bool {
	for _, a := range allowed {
		if s == a {
			return true
		}
	}
	return false
}
