package core

import (
	"context"
	"fmt"

	"github.com/shrek82/dbquery/driver"
)

// DefaultFetchSize is the batch size a SelectIterator uses when
// callers have no better number.
const DefaultFetchSize = 1

// IteratorFunc consumes the rows streamed by a SelectIterator. The
// extra arguments given at construction are passed through on every
// call. Its return value becomes the result of Call.
type IteratorFunc func(rows *Rows, extra ...any) (any, error)

// SelectIterator streams a large result set through a callback
// without materializing it. Rows are pulled from the cursor in
// batches of fetchSize; the cursor stays open for the duration of the
// callback and is closed right after it returns or fails.
type SelectIterator struct {
	Statement
	fn        IteratorFunc
	fetchSize int
	extra     []any
}

// NewSelectIterator declares an unbound SelectIterator. fetchSize
// must be at least 1.
func NewSelectIterator(sqlText string, fn IteratorFunc, fetchSize int, extra ...any) (*SelectIterator, error) {
	if fetchSize < 1 {
		return nil, &ConfigError{Reason: fmt.Sprintf("fetch size must be positive, got %d", fetchSize)}
	}
	return &SelectIterator{
		Statement: Statement{sql: sqlText, kind: kindSelect},
		fn:        fn,
		fetchSize: fetchSize,
		extra:     extra,
	}, nil
}

func (h *SelectIterator) Call(ctx context.Context, args ...any) (any, error) {
	return h.invoke(ctx, &iteratorProducer{h: h}, args)
}

type iteratorProducer struct {
	h *SelectIterator
}

func (p *iteratorProducer) produce(cur driver.Cursor) (any, error) {
	rows := &Rows{cur: cur, size: p.h.fetchSize}
	return p.h.fn(rows, p.h.extra...)
}

// Rows streams one result set in fetch-size batches. It is finite and
// cannot be restarted. Iteration follows the database/sql shape:
//
//	for rows.Next() {
//		row := rows.Row()
//		...
//	}
//	if err := rows.Err(); err != nil {
//		...
//	}
type Rows struct {
	cur  driver.Cursor
	size int

	buf  []driver.Row
	pos  int
	row  driver.Row
	err  error
	done bool
}

// Next advances to the next row, fetching a new batch from the cursor
// when the current one is drained. It returns false at the end of the
// result set or on error.
func (r *Rows) Next() bool {
	if r.err != nil {
		return false
	}
	if r.pos >= len(r.buf) {
		if r.done {
			return false
		}
		batch, err := r.cur.FetchMany(r.size)
		if err != nil {
			r.err = err
			return false
		}
		if len(batch) < r.size {
			// Short batch: the result set is exhausted.
			r.done = true
		}
		if len(batch) == 0 {
			return false
		}
		r.buf, r.pos = batch, 0
	}
	r.row = r.buf[r.pos]
	r.pos++
	return true
}

// Row returns the row Next advanced to.
func (r *Rows) Row() driver.Row {
	return r.row
}

// Err returns the error that stopped iteration, if any.
func (r *Rows) Err() error {
	return r.err
}

// Columns returns the result column names.
func (r *Rows) Columns() ([]string, error) {
	return r.cur.Columns()
}
