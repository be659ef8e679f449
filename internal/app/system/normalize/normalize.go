// internal/app/system/normalize/normalize.go
//
// Package normalize holds the input canonicalization rules applied before
// user-supplied identity fields are stored or queried. Keeping them in one
// place guarantees lookups and writes agree on the stored form.
package normalize

import "strings"

// Email lowercases and trims an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Account lowercases and trims an account handle.
func Account(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims a display name and collapses interior runs of whitespace
// to single spaces.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
