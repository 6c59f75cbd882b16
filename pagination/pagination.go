// Package pagination provides the page request and page result value objects
// used by the list endpoints, along with the response header names that carry
// pagination metadata.
package pagination

import (
	"fmt"
	"strings"

	"github.com/code19m/errx"
	"github.com/creasty/defaults"
)

// Response header names carrying pagination metadata on list endpoints.
const (
	HeaderCurrentPage     = "currentPage"
	HeaderCurrentElements = "currentElements"
	HeaderTotalElements   = "totalElements"
	HeaderTotalPages      = "totalPages"
)

// maxSize caps the page size accepted from clients.
const maxSize = 100

// Direction is the sort direction of a page request.
type Direction string

const (
	ASC  Direction = "ASC"
	DESC Direction = "DESC"
)

// PageRequest captures the pagination and sorting parameters of a list
// request. It is constructed per request from query parameters and never
// persisted.
//
// Defaults after Normalize: page 0 (zero-based), size 20, direction ASC,
// orderBy "id".
type PageRequest struct {
	Page      int       `query:"page"      json:"page"`
	Size      int       `query:"size"      json:"size"      default:"20"`
	Direction Direction `query:"direction" json:"direction" default:"ASC"`
	OrderBy   string    `query:"orderBy"   json:"orderBy"   default:"id"`
}

// Normalize applies defaults and constraints. Negative pages snap to 0, the
// size is defaulted and capped, and an unrecognized direction falls back to
// ASC.
func (r *PageRequest) Normalize() error {
	if err := defaults.Set(r); err != nil {
		return errx.Wrap(err)
	}

	if r.Page < 0 {
		r.Page = 0
	}
	if r.Size <= 0 {
		r.Size = 20
	}
	if r.Size > maxSize {
		r.Size = maxSize
	}

	switch Direction(strings.ToUpper(string(r.Direction))) {
	case DESC:
		r.Direction = DESC
	default:
		r.Direction = ASC
	}

	return nil
}

// Limit returns the query limit value.
func (r *PageRequest) Limit() int {
	return r.Size
}

// Offset returns the query offset value for the zero-based page index.
func (r *PageRequest) Offset() int {
	return r.Page * r.Size
}

// String returns a readable representation of the request.
func (r *PageRequest) String() string {
	return fmt.Sprintf("page=%d size=%d direction=%s orderBy=%s", r.Page, r.Size, r.Direction, r.OrderBy)
}

// Page is a total-count-aware slice of results.
type Page[E any] struct {
	// Content holds the entities of the current page.
	Content []E
	// Number is the zero-based index of the current page.
	Number int
	// Size is the requested page size.
	Size int
	// TotalElements is the number of entities matching the query across all pages.
	TotalElements int64
}

// NewPage builds a page result from the scanned content and the total count
// of the underlying query.
func NewPage[E any](content []E, total int64, req PageRequest) *Page[E] {
	return &Page[E]{
		Content:       content,
		Number:        req.Page,
		Size:          req.Size,
		TotalElements: total,
	}
}

// NumberOfElements returns the number of entities on the current page.
func (p *Page[E]) NumberOfElements() int {
	return len(p.Content)
}

// TotalPages returns ceil(TotalElements / Size). An empty result still counts
// as one page.
func (p *Page[E]) TotalPages() int {
	if p.Size <= 0 {
		return 1
	}
	pages := int(p.TotalElements) / p.Size
	if int(p.TotalElements)%p.Size > 0 {
		pages++
	}
	if pages < 1 {
		pages = 1
	}
	return pages
}
