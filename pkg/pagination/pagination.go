package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
	MinLimit     = 1
)

// Params holds validated pagination parameters
type Params struct {
	Page   int
	Limit  int
	Offset int
}

// Meta is the pagination block returned with every listing.
type Meta struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

// Page is one page of records plus its metadata.
type Page[T any] struct {
	Records    []T  `json:"records"`
	Pagination Meta `json:"pagination"`
}

// Parse extracts and validates page/limit from query parameters
func Parse(c *gin.Context) Params {
	return New(c.Query("page"), c.Query("limit"))
}

// New validates raw page/limit values. Non-numeric or non-positive values
// fall back to the defaults.
func New(rawPage, rawLimit string) Params {
	page, err := strconv.Atoi(rawPage)
	if err != nil || page < 1 {
		page = DefaultPage
	}
	limit, err := strconv.Atoi(rawLimit)
	if err != nil || limit < MinLimit {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	return Params{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}

// NewMeta computes the page count as ceil(total/limit).
func NewMeta(p Params, total int64) Meta {
	pages := int64(0)
	if p.Limit > 0 {
		pages = (total + int64(p.Limit) - 1) / int64(p.Limit)
	}
	return Meta{Page: p.Page, Limit: p.Limit, Total: total, Pages: pages}
}

// NewPage assembles a page, never returning a nil record slice.
func NewPage[T any](records []T, p Params, total int64) Page[T] {
	if records == nil {
		records = []T{}
	}
	return Page[T]{Records: records, Pagination: NewMeta(p, total)}
}

// Map converts the records of a page keeping its metadata.
func Map[T, R any](in Page[T], fn func(T) R) Page[R] {
	out := make([]R, 0, len(in.Records))
	for _, r := range in.Records {
		out = append(out, fn(r))
	}
	return Page[R]{Records: out, Pagination: in.Pagination}
}
