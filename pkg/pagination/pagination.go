// Package pagination normalises page requests and derives page windows.
package pagination

import (
	"math"
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultPageSize = 24
	MaxPageSize     = 100
)

// Config bounds the page size accepted from clients.
type Config struct {
	DefaultPageSize int
	MaxPageSize     int
}

// WithDefaults fills zero or inconsistent values.
func (c Config) WithDefaults() Config {
	if c.MaxPageSize <= 0 {
		c.MaxPageSize = MaxPageSize
	}
	if c.DefaultPageSize <= 0 {
		c.DefaultPageSize = DefaultPageSize
	}
	if c.DefaultPageSize > c.MaxPageSize {
		c.DefaultPageSize = c.MaxPageSize
	}
	return c
}

// Request is a client request for one page of records.
type Request struct {
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
}

// Normalize clamps page to >= 1 and page size to [1, MaxPageSize],
// substituting the default size when none was given.
func (r *Request) Normalize(cfg Config) {
	cfg = cfg.WithDefaults()
	if r.Page < 1 {
		r.Page = 1
	}
	if r.PageSize < 1 {
		r.PageSize = cfg.DefaultPageSize
	}
	if r.PageSize > cfg.MaxPageSize {
		r.PageSize = cfg.MaxPageSize
	}
}

// Offset is the number of records skipped before this page. It saturates at
// math.MaxInt instead of overflowing for very large pages.
func (r Request) Offset() int {
	if r.Page < 1 || r.PageSize < 1 {
		return 0
	}
	if r.Page-1 > math.MaxInt/r.PageSize {
		return math.MaxInt
	}
	return (r.Page - 1) * r.PageSize
}

// Limit is the maximum number of records on this page.
func (r Request) Limit() int {
	return r.PageSize
}

// FromQuery parses page and pageSize query values. Unparseable values fall
// back to defaults.
func FromQuery(values url.Values, cfg Config) Request {
	page, _ := strconv.Atoi(strings.TrimSpace(values.Get("page")))
	size, _ := strconv.Atoi(strings.TrimSpace(values.Get("pageSize")))
	req := Request{Page: page, PageSize: size}
	req.Normalize(cfg)
	return req
}

// TotalPages returns ceil(total/pageSize); zero records yield zero pages.
func TotalPages(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	pages := total / pageSize
	if total%pageSize != 0 {
		pages++
	}
	return pages
}
