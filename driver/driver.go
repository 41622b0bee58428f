package driver

import "context"

// Row is a single result record, column values in select order.
type Row []any

// Executor runs SQL statements. It is implemented by Conn and Tx, so
// statements execute the same way inside and outside a transaction.
type Executor interface {
	// Query executes a statement that produces rows and returns a
	// cursor positioned before the first row.
	Query(ctx context.Context, query string, args ...any) (Cursor, error)
	// Exec executes a statement that produces no rows. The returned
	// cursor only carries the affected-row count.
	Exec(ctx context.Context, query string, args ...any) (Cursor, error)
}

// Conn is a single live database connection.
type Conn interface {
	Executor
	Begin(ctx context.Context) (Tx, error)
	Ping(ctx context.Context) error
	Close() error
}

// Tx is an open transaction on a Conn.
type Tx interface {
	Executor
	Commit() error
	Rollback() error
}

// Cursor tracks the result of one executed statement. A cursor is
// valid for a single pass over its rows and must be closed.
type Cursor interface {
	// Columns returns the result column names, nil for statements
	// that produce no rows.
	Columns() ([]string, error)
	// FetchOne returns the next row, or a nil row when the result set
	// is exhausted.
	FetchOne() (Row, error)
	// FetchMany returns up to n rows. It returns fewer than n only
	// when the result set is exhausted.
	FetchMany(n int) ([]Row, error)
	// FetchAll drains the remaining rows.
	FetchAll() ([]Row, error)
	// RowsAffected reports the affected-row count of an Exec, -1 for
	// row-producing statements.
	RowsAffected() int64
	Close() error
}
