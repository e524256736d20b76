// Package pagination parses page/limit query parameters for the admin
// review listings and wraps result pages with paging metadata.
package pagination

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// DefaultLimit is the page size when the request does not specify one
const DefaultLimit = 25

// MaxLimit caps the page size a listing will serve
const MaxLimit = 200

// Params are the sanitized paging inputs of one request
type Params struct {
	Page   int `json:"page"`
	Limit  int `json:"limit"`
	Offset int `json:"-"`
}

// GetParams reads page/limit from the query string, clamping both to
// sane bounds
func GetParams(c *fiber.Ctx) *Params {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", strconv.Itoa(DefaultLimit)))

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	return &Params{Page: page, Limit: limit, Offset: (page - 1) * limit}
}

// Meta describes where one page sits in the full result set
type Meta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// Response pairs one page of data with its metadata
type Response struct {
	Data interface{} `json:"data"`
	Meta *Meta       `json:"meta"`
}

// NewResponse wraps one page of results
func NewResponse(data interface{}, params *Params, total int64) *Response {
	totalPages := int(total) / params.Limit
	if int(total)%params.Limit > 0 {
		totalPages++
	}

	return &Response{
		Data: data,
		Meta: &Meta{
			Page:       params.Page,
			Limit:      params.Limit,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    params.Page < totalPages,
			HasPrev:    params.Page > 1,
		},
	}
}
