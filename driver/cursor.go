package driver

import "database/sql"

// rowsCursor wraps *sql.Rows as a Cursor for row-producing
// statements.
type rowsCursor struct {
	rows   *sql.Rows
	cols   []string
	done   bool
	closed bool
}

func newRowsCursor(rows *sql.Rows) *rowsCursor {
	return &rowsCursor{rows: rows}
}

func (c *rowsCursor) Columns() ([]string, error) {
	if c.cols == nil {
		cols, err := c.rows.Columns()
		if err != nil {
			return nil, err
		}
		c.cols = cols
	}
	return c.cols, nil
}

func (c *rowsCursor) FetchOne() (Row, error) {
	if c.done {
		return nil, nil
	}
	if !c.rows.Next() {
		c.done = true
		return nil, c.rows.Err()
	}

	cols, err := c.Columns()
	if err != nil {
		return nil, err
	}
	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := c.rows.Scan(ptrs...); err != nil {
		return nil, err
	}
	return Row(values), nil
}

func (c *rowsCursor) FetchMany(n int) ([]Row, error) {
	var out []Row
	for len(out) < n {
		row, err := c.FetchOne()
		if err != nil {
			return nil, err
		}
		if row == nil {
			break
		}
		out = append(out, row)
	}
	return out, nil
}

func (c *rowsCursor) FetchAll() ([]Row, error) {
	var out []Row
	for {
		row, err := c.FetchOne()
		if err != nil {
			return nil, err
		}
		if row == nil {
			return out, nil
		}
		out = append(out, row)
	}
}

func (c *rowsCursor) RowsAffected() int64 { return -1 }

func (c *rowsCursor) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	return c.rows.Close()
}

// execCursor carries the result of a statement that produced no rows.
type execCursor struct {
	affected int64
}

func newExecCursor(res sql.Result) *execCursor {
	affected, err := res.RowsAffected()
	if err != nil {
		// Some drivers cannot report a count; mirror the DB-API
		// convention of -1.
		affected = -1
	}
	return &execCursor{affected: affected}
}

func (c *execCursor) Columns() ([]string, error) { return nil, nil }

func (c *execCursor) FetchOne() (Row, error) { return nil, nil }

func (c *execCursor) FetchMany(int) ([]Row, error) { return nil, nil }

func (c *execCursor) FetchAll() ([]Row, error) { return nil, nil }

func (c *execCursor) RowsAffected() int64 { return c.affected }

func (c *execCursor) Close() error { return nil }
