package common

import (
	"net/http"
	"strconv"
)

// maxPerPage caps client-supplied page sizes.
const maxPerPage = 100

// Pagination is the metadata block attached to list responses.
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
}

// NewPagination fills the metadata block, deriving the page count from the
// item total.
func NewPagination(page, perPage, totalItems int) Pagination {
	pages := 0
	if perPage > 0 {
		pages = (totalItems + perPage - 1) / perPage
	}
	return Pagination{Page: page, PerPage: perPage, TotalItems: totalItems, TotalPages: pages}
}

// ParsePagination reads the page and limit query parameters, falling back to
// page 1 and the given default size.
func ParsePagination(r *http.Request, defaultPerPage int) (page, perPage int) {
	page = 1
	perPage = defaultPerPage
	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
		page = p
	}
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 {
		perPage = l
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return
}
