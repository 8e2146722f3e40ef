package handlers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

const maxPageLimit = 100

// PaginationParams holds parsed pagination parameters
type PaginationParams struct {
	Page  int
	Limit int
}

// QueryParamParser parses query parameters, keeping the first error
type QueryParamParser struct {
	c   *gin.Context
	err error
}

// NewQueryParamParser creates a new query parameter parser
func NewQueryParamParser(c *gin.Context) *QueryParamParser {
	return &QueryParamParser{c: c}
}

// Error returns any parsing error that occurred
func (p *QueryParamParser) Error() error {
	return p.err
}

// Pagination parses page and limit, clamping limit to maxPageLimit
func (p *QueryParamParser) Pagination(defaultLimit int) PaginationParams {
	params := PaginationParams{Page: 1, Limit: defaultLimit}
	if p.err != nil {
		return params
	}

	page, ok := p.int("page")
	if !ok {
		return params
	}
	limit, ok := p.int("limit")
	if !ok {
		return params
	}

	if page > 1 {
		params.Page = page
	}
	if limit > 0 {
		params.Limit = min(limit, maxPageLimit)
	}
	return params
}

// String gets a trimmed string parameter with a default
func (p *QueryParamParser) String(key, defaultValue string) string {
	if p.err != nil {
		return defaultValue
	}
	value := strings.TrimSpace(p.c.Query(key))
	if value == "" {
		return defaultValue
	}
	return value
}

// int returns 0 for an absent key
func (p *QueryParamParser) int(key string) (int, bool) {
	raw := p.c.Query(key)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		p.err = fmt.Errorf("invalid '%s' parameter: must be a number", key)
		return 0, false
	}
	return n, true
}

// Page slices items for params, returning an empty slice past the end
func Page[T any](items []T, params PaginationParams) []T {
	start := (params.Page - 1) * params.Limit
	if start >= len(items) {
		return []T{}
	}
	end := min(start+params.Limit, len(items))
	return items[start:end]
}
