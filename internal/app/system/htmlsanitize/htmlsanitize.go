// internal/app/system/htmlsanitize/htmlsanitize.go
//
// Package htmlsanitize wraps the bluemonday policies used for
// user-generated content. Group descriptions and content bodies may carry
// limited formatting; comments and chat messages are stripped to plain
// text before storage.
package htmlsanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	ugcPolicy    = bluemonday.UGCPolicy()
	strictPolicy = bluemonday.StrictPolicy()
)

// Sanitize cleans user-generated HTML, keeping common formatting tags and
// safe links while stripping scripts and event handlers.
func Sanitize(s string) string {
	return ugcPolicy.Sanitize(s)
}

// Plain strips all markup, returning trimmed plain text. Used for fields
// that are never rendered as HTML (comments, chat messages, names).
func Plain(s string) string {
	return strings.TrimSpace(strictPolicy.Sanitize(s))
}
