package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/shrek82/dbquery/backend"
	"github.com/shrek82/dbquery/driver"
)

// fakeBackend counts connect attempts and fails the first `fails` of
// them.
type fakeBackend struct {
	name          string
	transactional bool
	fails         int
	attempts      int
	conn          *fakeConn
}

func (b *fakeBackend) Name() string        { return b.name }
func (b *fakeBackend) Transactional() bool { return b.transactional }

func (b *fakeBackend) Connect(ctx context.Context, cfg backend.Config) (driver.Conn, error) {
	b.attempts++
	if b.attempts <= b.fails {
		return nil, fmt.Errorf("dial refused (attempt %d)", b.attempts)
	}
	b.conn = &fakeConn{}
	return b.conn, nil
}

// registerFake registers b under a name derived from the test and
// returns that name.
func registerFake(testName string, b *fakeBackend) string {
	b.name = "fake-" + testName
	backend.Register(b.name, b)
	return b.name
}

// fakeConn records everything executed through it.
type fakeConn struct {
	closed    bool
	execSQL   []string
	querySQL  []string
	commits   int
	rollbacks int

	// next* seed the cursor handed out by the next Query/Exec call.
	nextRows     []driver.Row
	nextCols     []string
	nextAffected int64
	nextErr      error

	lastCursor *fakeCursor
	lastTx     *fakeTx
}

func (c *fakeConn) cursor() (driver.Cursor, error) {
	if c.nextErr != nil {
		return nil, c.nextErr
	}
	c.lastCursor = &fakeCursor{
		cols:     c.nextCols,
		rows:     c.nextRows,
		affected: c.nextAffected,
	}
	return c.lastCursor, nil
}

func (c *fakeConn) Query(ctx context.Context, query string, args ...any) (driver.Cursor, error) {
	c.querySQL = append(c.querySQL, query)
	return c.cursor()
}

func (c *fakeConn) Exec(ctx context.Context, query string, args ...any) (driver.Cursor, error) {
	c.execSQL = append(c.execSQL, query)
	return c.cursor()
}

func (c *fakeConn) Begin(ctx context.Context) (driver.Tx, error) {
	c.lastTx = &fakeTx{conn: c}
	return c.lastTx, nil
}

func (c *fakeConn) Ping(ctx context.Context) error { return nil }

func (c *fakeConn) Close() error {
	c.closed = true
	return nil
}

// fakeTx routes statements back to its conn and counts the outcome.
type fakeTx struct {
	conn    *fakeConn
	execSQL []string
}

func (t *fakeTx) Query(ctx context.Context, query string, args ...any) (driver.Cursor, error) {
	return t.conn.Query(ctx, query, args...)
}

func (t *fakeTx) Exec(ctx context.Context, query string, args ...any) (driver.Cursor, error) {
	t.execSQL = append(t.execSQL, query)
	return t.conn.Exec(ctx, query, args...)
}

func (t *fakeTx) Commit() error {
	t.conn.commits++
	return nil
}

func (t *fakeTx) Rollback() error {
	t.conn.rollbacks++
	return nil
}

// fakeCursor serves seeded rows and records fetch batching.
type fakeCursor struct {
	cols     []string
	rows     []driver.Row
	pos      int
	affected int64

	fetchManyCalls []int
	closes         int
}

var errCursorClosed = errors.New("cursor closed")

func (c *fakeCursor) Columns() ([]string, error) {
	return c.cols, nil
}

func (c *fakeCursor) FetchOne() (driver.Row, error) {
	if c.closes > 0 {
		return nil, errCursorClosed
	}
	if c.pos >= len(c.rows) {
		return nil, nil
	}
	row := c.rows[c.pos]
	c.pos++
	return row, nil
}

func (c *fakeCursor) FetchMany(n int) ([]driver.Row, error) {
	c.fetchManyCalls = append(c.fetchManyCalls, n)
	if c.closes > 0 {
		return nil, errCursorClosed
	}
	end := c.pos + n
	if end > len(c.rows) {
		end = len(c.rows)
	}
	batch := c.rows[c.pos:end]
	c.pos = end
	return batch, nil
}

func (c *fakeCursor) FetchAll() ([]driver.Row, error) {
	if c.closes > 0 {
		return nil, errCursorClosed
	}
	rest := c.rows[c.pos:]
	c.pos = len(c.rows)
	return rest, nil
}

func (c *fakeCursor) RowsAffected() int64 { return c.affected }

func (c *fakeCursor) Close() error {
	c.closes++
	return nil
}
