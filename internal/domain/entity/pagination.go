package entity

// PaginationParams represents pagination request parameters
type PaginationParams struct {
	Page  int `json:"page" query:"page"`
	Limit int `json:"limit" query:"limit"`
}

// Paging is the pagination block of the response envelope.
type Paging struct {
	CurrentPage int   `json:"current_page"`
	FirstPage   int   `json:"first_page"`
	LastPage    int   `json:"last_page"`
	Total       int64 `json:"total"`
}

// Pagination constants
const (
	DefaultPageSize = 10
	MaxPageSize     = 25
	MinPageSize     = 1
	DefaultPage     = 1
)

// Normalize clamps page and limit into their allowed ranges.
func (p *PaginationParams) Normalize() {
	if p.Page < 1 {
		p.Page = DefaultPage
	}

	if p.Limit < MinPageSize {
		p.Limit = DefaultPageSize
	} else if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
}

// Offset calculates the database offset from page and limit
func (p PaginationParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// NewPaging creates pagination metadata from parameters and total count.
// An empty result still reports a last page of 1.
func NewPaging(page, limit int, total int64) Paging {
	lastPage := 1
	if limit > 0 && total > 0 {
		lastPage = int(total) / limit
		if int(total)%limit > 0 {
			lastPage++
		}
	}

	return Paging{
		CurrentPage: page,
		FirstPage:   DefaultPage,
		LastPage:    lastPage,
		Total:       total,
	}
}
