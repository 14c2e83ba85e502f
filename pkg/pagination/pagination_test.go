package pagination_test

import (
	"net/url"
	"testing"

	"github.com/tfiliano/dt-route-planner/pkg/pagination"
)

func testConfig() pagination.Config {
	return pagination.Config{
		DefaultPageSize: 100,
		MaxPageSize:     500,
	}
}

func TestPageRequest_Normalize(t *testing.T) {
	cfg := testConfig()

	tests := []struct {
		name         string
		request      pagination.PageRequest
		wantPage     int
		wantPageSize int
	}{
		{
			name:         "valid values unchanged",
			request:      pagination.PageRequest{Page: 2, PageSize: 25},
			wantPage:     2,
			wantPageSize: 25,
		},
		{
			name:         "zero page becomes 1",
			request:      pagination.PageRequest{Page: 0, PageSize: 25},
			wantPage:     1,
			wantPageSize: 25,
		},
		{
			name:         "negative page becomes 1",
			request:      pagination.PageRequest{Page: -1, PageSize: 25},
			wantPage:     1,
			wantPageSize: 25,
		},
		{
			name:         "zero page size gets default",
			request:      pagination.PageRequest{Page: 1, PageSize: 0},
			wantPage:     1,
			wantPageSize: 100,
		},
		{
			name:         "page size exceeding max gets capped",
			request:      pagination.PageRequest{Page: 1, PageSize: 900},
			wantPage:     1,
			wantPageSize: 500,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.request.Normalize(cfg)

			if tt.request.Page != tt.wantPage {
				t.Errorf("Page = %d, want %d", tt.request.Page, tt.wantPage)
			}

			if tt.request.PageSize != tt.wantPageSize {
				t.Errorf("PageSize = %d, want %d", tt.request.PageSize, tt.wantPageSize)
			}
		})
	}
}

func TestPageRequest_Offset(t *testing.T) {
	tests := []struct {
		name     string
		page     int
		pageSize int
		want     int
	}{
		{"first page", 1, 20, 0},
		{"second page", 2, 20, 20},
		{"fifth page", 5, 10, 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := pagination.PageRequest{Page: tt.page, PageSize: tt.pageSize}
			if got := r.Offset(); got != tt.want {
				t.Errorf("Offset() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPageRequestFromQuery(t *testing.T) {
	cfg := testConfig()

	tests := []struct {
		name         string
		rawQuery     string
		wantPage     int
		wantPageSize int
	}{
		{
			name:         "empty query gets defaults",
			rawQuery:     "",
			wantPage:     1,
			wantPageSize: 100,
		},
		{
			name:         "page and page_size",
			rawQuery:     "page=3&page_size=25",
			wantPage:     3,
			wantPageSize: 25,
		},
		{
			name:         "limit alias for page_size",
			rawQuery:     "limit=50",
			wantPage:     1,
			wantPageSize: 50,
		},
		{
			name:         "limit and offset translated",
			rawQuery:     "limit=20&offset=40",
			wantPage:     3,
			wantPageSize: 20,
		},
		{
			name:         "page_size wins over limit",
			rawQuery:     "page_size=25&limit=50",
			wantPage:     1,
			wantPageSize: 25,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := url.ParseQuery(tt.rawQuery)
			if err != nil {
				t.Fatalf("ParseQuery(%q) error = %v", tt.rawQuery, err)
			}

			req := pagination.PageRequestFromQuery(values, cfg)

			if req.Page != tt.wantPage {
				t.Errorf("Page = %d, want %d", req.Page, tt.wantPage)
			}

			if req.PageSize != tt.wantPageSize {
				t.Errorf("PageSize = %d, want %d", req.PageSize, tt.wantPageSize)
			}
		})
	}
}

func TestPageRequestFromQuery_ExactOffset(t *testing.T) {
	cfg := testConfig()

	tests := []struct {
		name       string
		rawQuery   string
		wantOffset int
		wantPage   int
	}{
		{
			name:       "page-aligned offset",
			rawQuery:   "limit=20&offset=40",
			wantOffset: 40,
			wantPage:   3,
		},
		{
			name:       "unaligned offset honored exactly",
			rawQuery:   "limit=10&offset=5",
			wantOffset: 5,
			wantPage:   1,
		},
		{
			name:       "offset without limit uses default size",
			rawQuery:   "offset=150",
			wantOffset: 150,
			wantPage:   2,
		},
		{
			name:       "page form derives offset",
			rawQuery:   "page=4&page_size=10",
			wantOffset: 30,
			wantPage:   4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := url.ParseQuery(tt.rawQuery)
			if err != nil {
				t.Fatalf("ParseQuery(%q) error = %v", tt.rawQuery, err)
			}

			req := pagination.PageRequestFromQuery(values, cfg)

			if got := req.Offset(); got != tt.wantOffset {
				t.Errorf("Offset() = %d, want %d", got, tt.wantOffset)
			}

			if req.Page != tt.wantPage {
				t.Errorf("Page = %d, want %d", req.Page, tt.wantPage)
			}
		})
	}
}

func TestPageRequestFromQuery_SearchAndSort(t *testing.T) {
	values, _ := url.ParseQuery("search=acme&sort=-PlannedDate,CreatedAt")

	req := pagination.PageRequestFromQuery(values, testConfig())

	if req.Search == nil || *req.Search != "acme" {
		t.Errorf("Search = %v, want acme", req.Search)
	}

	if len(req.Sort) != 2 {
		t.Fatalf("len(Sort) = %d, want 2", len(req.Sort))
	}

	if !req.Sort[0].Descending || req.Sort[0].Field != "PlannedDate" {
		t.Errorf("Sort[0] = %+v, want PlannedDate descending", req.Sort[0])
	}
}

func TestNewPageResult(t *testing.T) {
	tests := []struct {
		name           string
		total          int
		pageSize       int
		wantTotalPages int
	}{
		{"exact division", 100, 20, 5},
		{"remainder rounds up", 101, 20, 6},
		{"empty result keeps one page", 0, 20, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := pagination.NewPageResult([]int{}, tt.total, 1, tt.pageSize)

			if result.TotalPages != tt.wantTotalPages {
				t.Errorf("TotalPages = %d, want %d", result.TotalPages, tt.wantTotalPages)
			}
		})
	}
}

func TestNewPageResult_NilData(t *testing.T) {
	result := pagination.NewPageResult[string](nil, 0, 1, 20)

	if result.Data == nil {
		t.Error("Data = nil, want empty slice")
	}
}
