package entity

import "strings"

// Sort orders accepted by board listings.
const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

var boardOrderColumns = map[string]string{
	"title":      "boards.title",
	"created_at": "boards.created_at",
	"updated_at": "boards.updated_at",
}

// BoardQuery filters the boards a user belongs to.
type BoardQuery struct {
	PaginationParams
	Search  string `query:"s"`
	OrderBy string `query:"orderBy"`
	Order   string `query:"order"`
}

// Normalize applies defaults to the sort and pagination fields.
func (q *BoardQuery) Normalize() {
	q.PaginationParams.Normalize()
	q.Search = strings.TrimSpace(q.Search)
	if _, ok := boardOrderColumns[q.OrderBy]; !ok {
		q.OrderBy = "created_at"
	}
	q.Order = strings.ToLower(q.Order)
	if q.Order != OrderAsc {
		q.Order = OrderDesc
	}
}

// OrderClause returns a whitelisted ORDER BY expression.
func (q BoardQuery) OrderClause() string {
	col, ok := boardOrderColumns[q.OrderBy]
	if !ok {
		col = boardOrderColumns["created_at"]
	}
	dir := "DESC"
	if q.Order == OrderAsc {
		dir = "ASC"
	}
	return col + " " + dir
}

// ValidBoardOrderBy reports whether column may be used to sort boards.
func ValidBoardOrderBy(column string) bool {
	_, ok := boardOrderColumns[column]
	return ok
}

// TeamQuery filters a board's memberships by username prefix.
type TeamQuery struct {
	PaginationParams
	Search string `query:"s"`
}

func (q *TeamQuery) Normalize() {
	q.PaginationParams.Normalize()
	q.Search = strings.TrimSpace(q.Search)
}
