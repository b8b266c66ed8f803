package pagination

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

type Query struct {
	Page     int
	PageSize int
}

// Normalize clamps the query to sane bounds so a bad client cannot request
// page 0 or a million rows.
func (q Query) Normalize() Query {
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.PageSize < 1 {
		q.PageSize = DefaultPageSize
	}
	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}
	return q
}

func (q Query) Offset() int {
	return (q.Page - 1) * q.PageSize
}

type Meta struct {
	TotalItems   int64 `json:"totalItems"`
	ItemCount    int   `json:"itemCount"`
	ItemsPerPage int   `json:"itemsPerPage"`
	TotalPages   int   `json:"totalPages"`
	CurrentPage  int   `json:"currentPage"`
}

func BuildMeta(totalItems int64, itemCount int, q Query) Meta {
	totalPages := int(totalItems) / q.PageSize
	if int(totalItems)%q.PageSize != 0 {
		totalPages++
	}
	return Meta{
		TotalItems:   totalItems,
		ItemCount:    itemCount,
		ItemsPerPage: q.PageSize,
		TotalPages:   totalPages,
		CurrentPage:  q.Page,
	}
}
