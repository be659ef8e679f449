// internal/app/system/paging/paging.go
//
// Package paging holds the offset-pagination rules for chat message reads
// and other paged lists: pages are 1-based, page sizes are clamped to
// [1, MaxPageSize], and the skip offset is (page-1)*size.
package paging

import (
	"net/http"
	"strconv"
)

// DefaultPageSize is used when the caller supplies no limit.
const DefaultPageSize = 10

// MaxPageSize caps the number of rows returned per page.
const MaxPageSize = 50

// Page holds a normalized page request.
type Page struct {
	Number int // 1-based
	Size   int // within [1, MaxPageSize]
}

// Offset returns the number of rows to skip.
func (p Page) Offset() int { return (p.Number - 1) * p.Size }

// Clamp normalizes raw page/size values: page is floored at 1, size is
// clamped to [1, MaxPageSize] with DefaultPageSize substituted for
// non-positive sizes.
func Clamp(page, size int) Page {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return Page{Number: page, Size: size}
}

// FromRequest reads "page" and "limit" query parameters and clamps them.
// Absent or malformed values fall back to page 1 / DefaultPageSize.
func FromRequest(r *http.Request) Page {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	size, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return Clamp(page, size)
}
