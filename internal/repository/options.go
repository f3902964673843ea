package repository

// Where is an unordered column → exact-match value predicate, combined with
// implicit AND semantics.
type Where map[string]any

// Sort is one (column, direction) sort key.
type Sort struct {
	Column string
	Desc   bool
}

// QueryOptions tunes a single read.
//
// WithDeleted only takes effect on a soft-delete engine. When set, the
// engine re-establishes the bare table scope: every predicate accumulated
// before option application is dropped, not just the soft-delete filter.
// Callers combining WithDeleted with other filters must reapply them
// afterwards. This mirrors long-standing observed behavior and is kept
// deliberately; see DESIGN.md before changing it.
type QueryOptions struct {
	Fields      []string // projection; empty means *
	OrderBy     []Sort
	Limit       int  // 0 means no limit
	Offset      *int // nil lets Paginate derive (page-1)*limit
	WithDeleted bool
}

// Pagination is the 1-based page input for Paginate.
type Pagination struct {
	Page  int // default 1
	Limit int // default 10
}

// PaginationResult carries one page of rows plus derived metadata. All
// fields are computed from total, page and limit; none is independently
// mutable.
type PaginationResult[T any] struct {
	Data       []T
	Page       int
	Limit      int
	Total      int64
	TotalPages int
	HasNext    bool
	HasPrev    bool
}

const (
	defaultPage  = 1
	defaultLimit = 10
)

func (p Pagination) normalize() (page, limit int) {
	page, limit = p.Page, p.Limit
	if page < 1 {
		page = defaultPage
	}
	if limit < 1 {
		limit = defaultLimit
	}
	return page, limit
}
