package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/shrek82/dbquery/driver"
)

// Exec is a fire-and-forget statement: it executes and discards any
// result. Use it for DDL and other statements whose outcome does not
// matter beyond success.
type Exec struct {
	Statement
}

// NewExec declares an unbound Exec statement.
func NewExec(sqlText string) *Exec {
	return &Exec{Statement{sql: sqlText, kind: kindExec}}
}

func (h *Exec) Call(ctx context.Context, args ...any) error {
	_, err := h.invoke(ctx, nopProducer{}, args)
	return err
}

type nopProducer struct{}

func (nopProducer) produce(driver.Cursor) (any, error) { return nil, nil }

// Manipulation executes INSERT/UPDATE/DELETE style statements and
// returns the affected-row count. An expected count can be pinned
// with ExpectRows; a mismatch fails the call with a RowCountError, so
// a surrounding Transaction rolls back.
type Manipulation struct {
	Statement
	expect *int64
}

// NewManipulation declares an unbound Manipulation statement.
func NewManipulation(sqlText string) *Manipulation {
	return &Manipulation{Statement: Statement{sql: sqlText, kind: kindExec}}
}

// ExpectRows pins the affected-row count the statement must report.
func (h *Manipulation) ExpectRows(n int64) *Manipulation {
	h.expect = &n
	return h
}

func (h *Manipulation) Call(ctx context.Context, args ...any) (int64, error) {
	out, err := h.invoke(ctx, &manipulationProducer{expect: h.expect}, args)
	if err != nil {
		return 0, err
	}
	n, _ := out.(int64)
	return n, nil
}

type manipulationProducer struct {
	expect *int64
}

func (p *manipulationProducer) produce(cur driver.Cursor) (any, error) {
	affected := cur.RowsAffected()
	if p.expect != nil && *p.expect != affected {
		return nil, &RowCountError{Expected: *p.expect, Actual: affected}
	}
	return affected, nil
}

// ResultSet is a fully materialized select result. Middleware (e.g.
// the cache middlewares) rely on this concrete type to decide what is
// cacheable.
type ResultSet struct {
	Columns []string     `json:"columns"`
	Rows    []driver.Row `json:"rows"`
}

// Maps reshapes the rows into maps keyed by lower-cased column name.
func (rs *ResultSet) Maps() []map[string]any {
	out := make([]map[string]any, len(rs.Rows))
	for i, row := range rs.Rows {
		out[i] = rowToMap(rs.Columns, row)
	}
	return out
}

func rowToMap(columns []string, row driver.Row) map[string]any {
	m := make(map[string]any, len(row))
	for i, v := range row {
		if i < len(columns) {
			m[strings.ToLower(columns[i])] = v
		}
	}
	return m
}

// Select executes a row-producing statement and materializes the full
// result. No row-count bound is enforced; keep result sizes in check
// on the caller side or use SelectIterator.
type Select struct {
	Statement
}

// NewSelect declares an unbound Select statement.
func NewSelect(sqlText string) *Select {
	return &Select{Statement{sql: sqlText, kind: kindSelect}}
}

func (h *Select) Call(ctx context.Context, args ...any) ([]driver.Row, error) {
	rs, err := h.ResultSet(ctx, args...)
	if err != nil {
		return nil, err
	}
	return rs.Rows, nil
}

// ResultSet is like Call but keeps the column names alongside the
// rows.
func (h *Select) ResultSet(ctx context.Context, args ...any) (*ResultSet, error) {
	out, err := h.invoke(ctx, selectProducer{}, args)
	if err != nil {
		return nil, err
	}
	return out.(*ResultSet), nil
}

// Maps executes the statement and returns each row as a map keyed by
// lower-cased column name.
func (h *Select) Maps(ctx context.Context, args ...any) ([]map[string]any, error) {
	rs, err := h.ResultSet(ctx, args...)
	if err != nil {
		return nil, err
	}
	return rs.Maps(), nil
}

type selectProducer struct{}

func (selectProducer) produce(cur driver.Cursor) (any, error) {
	cols, err := cur.Columns()
	if err != nil {
		return nil, err
	}
	rows, err := cur.FetchAll()
	if err != nil {
		return nil, err
	}
	return &ResultSet{Columns: cols, Rows: rows}, nil
}

// SelectOne executes a statement expected to match at most one row.
// Call returns:
//   - nil when no row matched (not an error),
//   - the bare column value when the row has a single column,
//   - the driver.Row otherwise.
//
// Only one row is ever fetched; if the statement actually matches
// more, the extra rows are discarded when the cursor closes.
type SelectOne struct {
	Statement
}

// NewSelectOne declares an unbound SelectOne statement.
func NewSelectOne(sqlText string) *SelectOne {
	return &SelectOne{Statement{sql: sqlText, kind: kindSelect}}
}

func (h *SelectOne) Call(ctx context.Context, args ...any) (any, error) {
	rs, err := h.one(ctx, args)
	if err != nil || rs == nil {
		return nil, err
	}
	row := rs.Rows[0]
	if len(row) == 1 {
		return row[0], nil
	}
	return row, nil
}

// Map is like Call but returns the row as a map keyed by lower-cased
// column name, nil when no row matched.
func (h *SelectOne) Map(ctx context.Context, args ...any) (map[string]any, error) {
	rs, err := h.one(ctx, args)
	if err != nil || rs == nil {
		return nil, err
	}
	return rowToMap(rs.Columns, rs.Rows[0]), nil
}

func (h *SelectOne) one(ctx context.Context, args []any) (*ResultSet, error) {
	out, err := h.invoke(ctx, selectOneProducer{}, args)
	if err != nil || out == nil {
		return nil, err
	}
	rs := out.(*ResultSet)
	if len(rs.Rows) == 0 {
		return nil, nil
	}
	return rs, nil
}

type selectOneProducer struct{}

func (selectOneProducer) produce(cur driver.Cursor) (any, error) {
	cols, err := cur.Columns()
	if err != nil {
		return nil, err
	}
	row, err := cur.FetchOne()
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, nil
	}
	return &ResultSet{Columns: cols, Rows: []driver.Row{row}}, nil
}

// NextVal declares a SelectOne returning the next value of a
// PostgreSQL sequence.
func NextVal(sequence string) *SelectOne {
	return NewSelectOne(fmt.Sprintf("SELECT nextval('%s')", sequence))
}

// QueryCursor executes the statement and hands the open cursor to a
// caller-supplied function for direct driver-level access (fetch by
// hand, partial reads). The cursor is closed when the function
// returns, on every path.
type QueryCursor struct {
	Statement
}

// NewQueryCursor declares an unbound QueryCursor statement.
func NewQueryCursor(sqlText string) *QueryCursor {
	return &QueryCursor{Statement{sql: sqlText, kind: kindSelect}}
}

func (h *QueryCursor) Call(ctx context.Context, fn func(cur driver.Cursor) error, args ...any) error {
	_, err := h.invoke(ctx, &cursorProducer{fn: fn}, args)
	return err
}

type cursorProducer struct {
	fn func(cur driver.Cursor) error
}

func (p *cursorProducer) produce(cur driver.Cursor) (any, error) {
	return nil, p.fn(cur)
}
