package pagination

import (
	"net/url"
	"strconv"

	"github.com/tfiliano/dt-route-planner/pkg/query"
)

// PageRequest represents a client request for a page of data with optional search and sorting.
type PageRequest struct {
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
	Search   *string           `json:"search,omitempty"`
	Sort     []query.SortField `json:"sort,omitempty"`

	// offset carries an explicit record offset from the limit/offset
	// parameter form, which need not fall on a page boundary.
	offset *int
}

// Normalize adjusts the request to ensure valid pagination values based on the config.
func (r *PageRequest) Normalize(cfg Config) {
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

// Offset returns the number of records to skip: the explicit offset
// when the request came in limit/offset form, otherwise the start of
// the requested page.
func (r *PageRequest) Offset() int {
	if r.offset != nil {
		return *r.offset
	}
	return (r.Page - 1) * r.PageSize
}

// PageRequestFromQuery parses pagination parameters from URL query values.
// Supported parameters: page, page_size (or limit/offset), search, and
// sort (comma-separated, "-" prefix for descending). An explicit offset
// is honored exactly; the Page field then reports the page containing
// the first returned record. The result is normalized according to the
// provided config.
func PageRequestFromQuery(values url.Values, cfg Config) PageRequest {
	page, _ := strconv.Atoi(values.Get("page"))
	pageSize, _ := strconv.Atoi(values.Get("page_size"))

	if pageSize == 0 {
		pageSize, _ = strconv.Atoi(values.Get("limit"))
	}

	var explicitOffset *int
	if page == 0 {
		if offset, err := strconv.Atoi(values.Get("offset")); err == nil && offset > 0 {
			size := pageSize
			if size < 1 {
				size = cfg.DefaultPageSize
			}
			explicitOffset = &offset
			page = offset/size + 1
		}
	}

	var search *string
	if s := values.Get("search"); s != "" {
		search = &s
	}

	req := PageRequest{
		Page:     page,
		PageSize: pageSize,
		Search:   search,
		Sort:     query.ParseSortFields(values.Get("sort")),
		offset:   explicitOffset,
	}

	req.Normalize(cfg)
	return req
}

// PageResult holds a page of data along with pagination metadata.
type PageResult[T any] struct {
	Data       []T `json:"data"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
}

// NewPageResult creates a PageResult with calculated total pages.
func NewPageResult[T any](data []T, total, page, pageSize int) PageResult[T] {
	totalPages := total / pageSize
	if total%pageSize != 0 {
		totalPages++
	}
	if totalPages < 1 {
		totalPages = 1
	}

	if data == nil {
		data = []T{}
	}

	return PageResult[T]{
		Data:       data,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}
