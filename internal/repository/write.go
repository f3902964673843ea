package repository

import (
	"context"
	"errors"
	"sort"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
)

// Values is a column → value map used for inserts and partial updates.
type Values map[string]any

// Insert writes one or more rows and returns the inserted rows. The result
// is always a slice, also for a single input.
func (e *Engine[T]) Insert(ctx context.Context, data ...Values) ([]T, error) {
	if len(data) == 0 {
		return []T{}, nil
	}

	cols := make([]string, 0, len(data[0]))
	for col := range data[0] {
		cols = append(cols, col)
	}
	sort.Strings(cols)

	b := psql.Insert(e.table).Columns(cols...)
	for _, row := range data {
		vals := make([]any, len(cols))
		for i, col := range cols {
			vals[i] = row[col]
		}
		b = b.Values(vals...)
	}
	b = b.Suffix("RETURNING *")

	sqlStr, args, err := b.ToSql()
	if err != nil {
		return nil, e.fail("insert", err)
	}
	rows, err := e.db.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, e.fail("insert", err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowToStructByNameLax[T])
	if err != nil {
		return nil, e.fail("insert", err)
	}
	e.log.Query(e.table, "insert", "count", len(out))
	return out, nil
}

// InsertOne writes one row and returns it.
func (e *Engine[T]) InsertOne(ctx context.Context, data Values) (*T, error) {
	out, err := e.Insert(ctx, data)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, e.fail("insertOne", errors.New("insert returned no rows"))
	}
	return &out[0], nil
}

// Update applies patch to the visible rows matching where and returns the
// updated rows. On a soft-delete engine already-deleted rows are never
// reachable through this path.
func (e *Engine[T]) Update(ctx context.Context, where Where, patch Values) ([]T, error) {
	b := psql.Update(e.table).SetMap(patch)
	if e.softDelete {
		b = b.Where(sq.Eq{e.deletedAt: nil})
	}
	if len(where) > 0 {
		b = b.Where(sq.Eq(where))
	}
	b = b.Suffix("RETURNING *")

	sqlStr, args, err := b.ToSql()
	if err != nil {
		return nil, e.fail("update", err)
	}
	rows, err := e.db.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, e.fail("update", err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowToStructByNameLax[T])
	if err != nil {
		return nil, e.fail("update", err)
	}
	if out == nil {
		out = []T{}
	}
	e.log.Query(e.table, "update", "affectedRows", len(out))
	return out, nil
}

// UpdateByID applies patch to the row with the given id, returning the
// updated row or nil when no visible row matched.
func (e *Engine[T]) UpdateByID(ctx context.Context, id any, patch Values) (*T, error) {
	out, err := e.Update(ctx, Where{"id": id}, patch)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return &out[0], nil
}

// Delete removes the rows matching where and returns the affected count.
// On a soft-delete engine this stamps the deleted-at column on currently
// visible rows and never physically deletes.
func (e *Engine[T]) Delete(ctx context.Context, where Where) (int64, error) {
	if !e.softDelete {
		return e.hardDelete(ctx, "delete", where)
	}

	b := psql.Update(e.table).
		Set(e.deletedAt, sq.Expr("NOW()")).
		Where(sq.Eq{e.deletedAt: nil})
	if len(where) > 0 {
		b = b.Where(sq.Eq(where))
	}
	sqlStr, args, err := b.ToSql()
	if err != nil {
		return 0, e.fail("softDelete", err)
	}
	tag, err := e.db.Exec(ctx, sqlStr, args...)
	if err != nil {
		return 0, e.fail("softDelete", err)
	}
	n := tag.RowsAffected()
	e.log.Query(e.table, "softDelete", "affectedRows", n)
	return n, nil
}

// DeleteByID deletes the row with the given id, reporting whether a row
// was affected.
func (e *Engine[T]) DeleteByID(ctx context.Context, id any) (bool, error) {
	n, err := e.Delete(ctx, Where{"id": id})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ForceDelete physically removes the rows matching where regardless of the
// soft-delete flag. The only path that bypasses soft-delete semantics.
func (e *Engine[T]) ForceDelete(ctx context.Context, where Where) (int64, error) {
	return e.hardDelete(ctx, "forceDelete", where)
}

func (e *Engine[T]) hardDelete(ctx context.Context, op string, where Where) (int64, error) {
	b := psql.Delete(e.table)
	if len(where) > 0 {
		b = b.Where(sq.Eq(where))
	}
	sqlStr, args, err := b.ToSql()
	if err != nil {
		return 0, e.fail(op, err)
	}
	tag, err := e.db.Exec(ctx, sqlStr, args...)
	if err != nil {
		return 0, e.fail(op, err)
	}
	n := tag.RowsAffected()
	e.log.Query(e.table, op, "affectedRows", n)
	return n, nil
}

// Restore clears the deleted-at column on soft-deleted rows matching where
// and returns them. On an engine without soft delete it fails immediately
// with *RestoreUnsupportedError and never touches the store.
func (e *Engine[T]) Restore(ctx context.Context, where Where) ([]T, error) {
	if !e.softDelete {
		err := &RestoreUnsupportedError{Table: e.table}
		e.log.Error("query failed", "table", e.table, "operation", "restore", "error", err.Error())
		return nil, err
	}

	b := psql.Update(e.table).
		Set(e.deletedAt, nil).
		Where(sq.NotEq{e.deletedAt: nil})
	if len(where) > 0 {
		b = b.Where(sq.Eq(where))
	}
	b = b.Suffix("RETURNING *")

	sqlStr, args, err := b.ToSql()
	if err != nil {
		return nil, e.fail("restore", err)
	}
	rows, err := e.db.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, e.fail("restore", err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowToStructByNameLax[T])
	if err != nil {
		return nil, e.fail("restore", err)
	}
	if out == nil {
		out = []T{}
	}
	e.log.Query(e.table, "restore", "count", len(out))
	return out, nil
}
