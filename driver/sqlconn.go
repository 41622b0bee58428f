package driver

import (
	"context"
	"database/sql"
)

// SQLConn adapts a database/sql driver to the Conn interface. It
// checks out exactly one *sql.Conn from the pool, so everything
// issued through it shares a single physical connection.
type SQLConn struct {
	db   *sql.DB
	conn *sql.Conn
}

// Open dials the named database/sql driver with the given DSN and
// reserves one connection. Unlike sql.Open, the dial happens here: a
// bad address fails immediately, not on first use.
func Open(ctx context.Context, driverName, dsn string) (*SQLConn, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	conn, err := db.Conn(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &SQLConn{db: db, conn: conn}, nil
}

func (c *SQLConn) Query(ctx context.Context, query string, args ...any) (Cursor, error) {
	rows, err := c.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return newRowsCursor(rows), nil
}

func (c *SQLConn) Exec(ctx context.Context, query string, args ...any) (Cursor, error) {
	res, err := c.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return newExecCursor(res), nil
}

func (c *SQLConn) Begin(ctx context.Context) (Tx, error) {
	tx, err := c.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqlTx{tx: tx}, nil
}

func (c *SQLConn) Ping(ctx context.Context) error {
	return c.conn.PingContext(ctx)
}

// Close releases the reserved connection and the underlying pool.
func (c *SQLConn) Close() error {
	err := c.conn.Close()
	if derr := c.db.Close(); err == nil {
		err = derr
	}
	return err
}

// sqlTx routes statements through an open *sql.Tx.
type sqlTx struct {
	tx *sql.Tx
}

func (t *sqlTx) Query(ctx context.Context, query string, args ...any) (Cursor, error) {
	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return newRowsCursor(rows), nil
}

func (t *sqlTx) Exec(ctx context.Context, query string, args ...any) (Cursor, error) {
	res, err := t.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return newExecCursor(res), nil
}

func (t *sqlTx) Commit() error { return t.tx.Commit() }

func (t *sqlTx) Rollback() error { return t.tx.Rollback() }
