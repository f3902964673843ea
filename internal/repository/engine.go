// Package repository provides a generic, soft-delete-aware query engine
// over Postgres. One Engine is bound to one table; CRUD, pagination and
// counting run through squirrel-built SQL and pgx row scanning.
package repository

import (
	"context"
	"math"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/trongtien/page-builder-cms-sub000/internal/database"
	"github.com/trongtien/page-builder-cms-sub000/pkg/logger"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// DefaultDeletedAtColumn marks soft-deleted rows when no column is named.
const DefaultDeletedAtColumn = "deleted_at"

// Options configures an Engine for one table.
type Options struct {
	SoftDelete      bool
	DeletedAtColumn string // defaults to DefaultDeletedAtColumn
}

// Engine executes CRUD against a named table. T is the row shape scanned
// with pgx.RowToStructByNameLax, so fields carry db tags.
//
// The zero Engine is not usable; construct with NewEngine. An Engine is
// safe for concurrent use: all state is set at construction.
type Engine[T any] struct {
	db         database.Querier
	table      string
	softDelete bool
	deletedAt  string
	log        *logger.DB
}

// NewEngine creates an engine for table over db. db is usually the
// manager's handle; tests pass a mock and transactions use WithTx.
func NewEngine[T any](db database.Querier, table string, opts Options, log *logger.DB) *Engine[T] {
	col := opts.DeletedAtColumn
	if col == "" {
		col = DefaultDeletedAtColumn
	}
	return &Engine[T]{
		db:         db,
		table:      table,
		softDelete: opts.SoftDelete,
		deletedAt:  col,
		log:        log,
	}
}

// WithTx returns a copy of the engine pinned to the transaction scope.
// The copy never connects on its own; tx implies a live handle.
func (e *Engine[T]) WithTx(tx pgx.Tx) *Engine[T] {
	c := *e
	c.db = tx
	return &c
}

// Table returns the bound table name.
func (e *Engine[T]) Table() string { return e.table }

// selectQuery builds the base read for opts. Soft-delete filtering is
// applied first; WithDeleted on a soft-delete engine rebuilds the bare
// table scope instead (dropping every predicate added so far, see
// QueryOptions).
func (e *Engine[T]) selectQuery(opts *QueryOptions) sq.SelectBuilder {
	cols := []string{"*"}
	if opts != nil && len(opts.Fields) > 0 {
		cols = opts.Fields
	}
	b := psql.Select(cols...).From(e.table)
	if e.softDelete && (opts == nil || !opts.WithDeleted) {
		b = b.Where(sq.Eq{e.deletedAt: nil})
	}
	if opts != nil {
		for _, s := range opts.OrderBy {
			dir := " ASC"
			if s.Desc {
				dir = " DESC"
			}
			b = b.OrderBy(s.Column + dir)
		}
		if opts.Limit > 0 {
			b = b.Limit(uint64(opts.Limit))
		}
		if opts.Offset != nil {
			b = b.Offset(uint64(*opts.Offset))
		}
	}
	return b
}

// collect runs the select and scans every row into T.
func (e *Engine[T]) collect(ctx context.Context, op string, b sq.SelectBuilder) ([]T, error) {
	sqlStr, args, err := b.ToSql()
	if err != nil {
		return nil, e.fail(op, err)
	}
	rows, err := e.db.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, e.fail(op, err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowToStructByNameLax[T])
	if err != nil {
		return nil, e.fail(op, err)
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

// fail logs the failure once with operation context and wraps it; the
// original error stays reachable through errors.Is/As.
func (e *Engine[T]) fail(op string, err error) error {
	e.log.Error("query failed", "table", e.table, "operation", op, "error", err.Error())
	return &QueryError{Table: e.table, Op: op, Err: err}
}

// FindAll returns every visible row, honoring opts.
func (e *Engine[T]) FindAll(ctx context.Context, opts *QueryOptions) ([]T, error) {
	out, err := e.collect(ctx, "findAll", e.selectQuery(opts))
	if err != nil {
		return nil, err
	}
	e.log.Query(e.table, "findAll", "count", len(out))
	return out, nil
}

// FindWhere returns the rows matching where, honoring opts.
func (e *Engine[T]) FindWhere(ctx context.Context, where Where, opts *QueryOptions) ([]T, error) {
	b := e.selectQuery(opts)
	if len(where) > 0 {
		b = b.Where(sq.Eq(where))
	}
	out, err := e.collect(ctx, "findWhere", b)
	if err != nil {
		return nil, err
	}
	e.log.Query(e.table, "findWhere", "count", len(out))
	return out, nil
}

// FindOne returns the first row matching where, or nil when none does.
// "Not found" is not an error.
func (e *Engine[T]) FindOne(ctx context.Context, where Where, opts *QueryOptions) (*T, error) {
	b := e.selectQuery(opts)
	if len(where) > 0 {
		b = b.Where(sq.Eq(where))
	}
	b = b.Limit(1)
	out, err := e.collect(ctx, "findOne", b)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return &out[0], nil
}

// FindByID is FindOne on the id column.
func (e *Engine[T]) FindByID(ctx context.Context, id any, opts *QueryOptions) (*T, error) {
	return e.FindOne(ctx, Where{"id": id}, opts)
}

// Paginate runs a count query and a bounded data query against identical
// predicates and derives the page metadata from the unbounded total.
func (e *Engine[T]) Paginate(ctx context.Context, p Pagination, opts *QueryOptions) (*PaginationResult[T], error) {
	page, limit := p.normalize()

	total, err := e.countQuery(ctx, "paginate", nil, opts)
	if err != nil {
		return nil, err
	}

	offset := (page - 1) * limit
	if opts != nil && opts.Offset != nil {
		offset = *opts.Offset
	}
	var dataOpts QueryOptions
	if opts != nil {
		dataOpts = *opts
	}
	dataOpts.Limit = limit
	dataOpts.Offset = &offset

	data, err := e.collect(ctx, "paginate", e.selectQuery(&dataOpts))
	if err != nil {
		return nil, err
	}

	totalPages := int(math.Ceil(float64(total) / float64(limit)))
	e.log.Query(e.table, "paginate", "count", len(data), "total", total, "page", page)
	return &PaginationResult[T]{
		Data:       data,
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}, nil
}

// countQuery runs COUNT(*) with the same soft-delete handling and where
// predicate as the corresponding data query, never limited or offset.
func (e *Engine[T]) countQuery(ctx context.Context, op string, where Where, opts *QueryOptions) (int64, error) {
	b := psql.Select("COUNT(*)").From(e.table)
	if e.softDelete && (opts == nil || !opts.WithDeleted) {
		b = b.Where(sq.Eq{e.deletedAt: nil})
	}
	if len(where) > 0 {
		b = b.Where(sq.Eq(where))
	}
	sqlStr, args, err := b.ToSql()
	if err != nil {
		return 0, e.fail(op, err)
	}
	var total int64
	if err := e.db.QueryRow(ctx, sqlStr, args...).Scan(&total); err != nil {
		return 0, e.fail(op, err)
	}
	return total, nil
}

// Count returns the number of visible rows matching where.
func (e *Engine[T]) Count(ctx context.Context, where Where) (int64, error) {
	total, err := e.countQuery(ctx, "count", where, nil)
	if err != nil {
		return 0, err
	}
	e.log.Query(e.table, "count", "count", total)
	return total, nil
}

// Exists reports whether any visible row matches where.
func (e *Engine[T]) Exists(ctx context.Context, where Where) (bool, error) {
	total, err := e.countQuery(ctx, "exists", where, nil)
	if err != nil {
		return false, err
	}
	return total > 0, nil
}

// Query returns the composable select already scoped to the table with the
// soft-delete base filter applied, for callers that need bespoke
// predicates. The engine's Querier still executes the result.
func (e *Engine[T]) Query() sq.SelectBuilder {
	return e.selectQuery(nil)
}

// Querier exposes the execution surface for queries built with Query.
func (e *Engine[T]) Querier() database.Querier { return e.db }
