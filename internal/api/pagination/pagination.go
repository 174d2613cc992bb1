// Package pagination implements page/per_page list pagination with the
// meta block clients use to render pagers.
package pagination

import (
	"net/url"
	"strconv"
)

const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

type Params struct {
	Page    int
	PerPage int
}

// Parse reads page and per_page from query values. Out-of-range or
// malformed values fall back to defaults rather than erroring; listing
// endpoints stay permissive.
func Parse(values url.Values) Params {
	params := Params{Page: 1, PerPage: DefaultPerPage}

	if raw := values.Get("page"); raw != "" {
		if page, err := strconv.Atoi(raw); err == nil && page >= 1 {
			params.Page = page
		}
	}
	if raw := values.Get("per_page"); raw != "" {
		if perPage, err := strconv.Atoi(raw); err == nil && perPage >= 1 {
			if perPage > MaxPerPage {
				perPage = MaxPerPage
			}
			params.PerPage = perPage
		}
	}
	return params
}

func (p Params) Offset() int {
	return (p.Page - 1) * p.PerPage
}

func (p Params) Limit() int {
	return p.PerPage
}

// Meta is the pagination block returned alongside list items.
type Meta struct {
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
	LastPage    int   `json:"last_page"`
	From        int   `json:"from"`
	To          int   `json:"to"`
}

func NewMeta(params Params, total int64, returned int) Meta {
	lastPage := int((total + int64(params.PerPage) - 1) / int64(params.PerPage))
	if lastPage < 1 {
		lastPage = 1
	}

	meta := Meta{
		CurrentPage: params.Page,
		PerPage:     params.PerPage,
		Total:       total,
		LastPage:    lastPage,
	}
	if returned > 0 {
		meta.From = params.Offset() + 1
		meta.To = params.Offset() + returned
	}
	return meta
}
