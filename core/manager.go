package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shrek82/dbquery/backend"
	"github.com/shrek82/dbquery/driver"
	"github.com/shrek82/dbquery/logger"
)

// Options defines the configuration for a Manager.
type Options struct {
	// Retry is how many additional connect attempts to make after the
	// first one fails. 0 means a single attempt.
	Retry  int
	Logger logger.Logger
}

// Manager owns the connect configuration and the single physical
// connection shared by every statement bound to it. The connection is
// established on first use and kept until Close.
//
// A Manager serializes work over one connection and provides no
// locking of its own; do not share it across goroutines without
// external synchronization.
type Manager struct {
	backend backend.Backend
	cfg     backend.Config
	retry   int
	logger  logger.Logger

	conn       driver.Conn
	tx         driver.Tx
	middleware []Middleware
}

// New creates a Manager for the named backend. No connection is made
// here; the first statement (or transaction) dials.
func New(backendName string, cfg backend.Config, opts *Options) (*Manager, error) {
	b, ok := backend.Get(backendName)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, backendName)
	}

	m := &Manager{
		backend: b,
		cfg:     cfg,
		logger:  logger.NewStdLogger(),
	}
	if opts != nil {
		if opts.Retry < 0 {
			return nil, &ConfigError{Reason: fmt.Sprintf("retry must not be negative, got %d", opts.Retry)}
		}
		m.retry = opts.Retry
		if opts.Logger != nil {
			m.logger = opts.Logger
		}
	}
	return m, nil
}

// SetLogger sets a custom logger for the manager.
func (m *Manager) SetLogger(l logger.Logger) {
	m.logger = l
}

// Backend returns the name of the configured backend.
func (m *Manager) Backend() string {
	return m.backend.Name()
}

// Use installs a statement middleware. Middleware run in the order
// they were added, outermost first.
func (m *Manager) Use(mw Middleware) error {
	if err := mw.Init(m); err != nil {
		return fmt.Errorf("middleware %s init failed: %w", mw.Name(), err)
	}
	m.middleware = append(m.middleware, mw)
	return nil
}

// Connection returns the live connection, dialing it if absent. A
// failed dial is retried immediately up to Retry more times; when
// every attempt fails the last error is returned inside a
// ConnectError. While a transaction is open the retry budget is zero:
// a transaction cannot continue on a new physical connection.
func (m *Manager) Connection(ctx context.Context) (driver.Conn, error) {
	if m.conn != nil {
		return m.conn, nil
	}

	retry := m.retry
	if m.tx != nil {
		retry = 0
	}

	attempts := retry + 1
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		conn, err := m.backend.Connect(ctx, m.cfg)
		if err == nil {
			m.conn = conn
			return conn, nil
		}
		lastErr = err
		m.logger.Warn("connect to %s failed (attempt %d/%d): %v", m.backend.Name(), attempt, attempts, err)
	}
	return nil, &ConnectError{Backend: m.backend.Name(), Attempts: attempts, Err: lastErr}
}

// executor resolves where statements run: the open transaction when
// there is one, the plain connection otherwise.
func (m *Manager) executor(ctx context.Context) (driver.Executor, error) {
	if m.tx != nil {
		return m.tx, nil
	}
	return m.Connection(ctx)
}

// Transaction executes fn within a database transaction on the
// manager's connection. A nil return commits; an error rolls back and
// is returned to the caller. Returning the Abort marker rolls back
// but reports success.
func (m *Manager) Transaction(ctx context.Context, fn func() error) (err error) {
	if !m.backend.Transactional() {
		return fmt.Errorf("%w: %s", ErrTransactionsUnsupported, m.backend.Name())
	}
	if m.tx != nil {
		return ErrTransactionActive
	}

	conn, err := m.Connection(ctx)
	if err != nil {
		return err
	}

	start := time.Now()
	tx, err := conn.Begin(ctx)
	m.logSQL("BEGIN", time.Since(start))
	if err != nil {
		return fmt.Errorf("begin transaction failed: %w", err)
	}
	m.tx = tx

	defer func() {
		m.tx = nil
		if p := recover(); p != nil {
			start := time.Now()
			_ = tx.Rollback()
			m.logSQL("ROLLBACK", time.Since(start))
			panic(p)
		} else if err != nil {
			start := time.Now()
			_ = tx.Rollback()
			m.logSQL("ROLLBACK", time.Since(start))
			if errors.Is(err, errAbort) {
				// Intentional abort, not a failure.
				err = nil
			}
		} else {
			start := time.Now()
			err = tx.Commit()
			m.logSQL("COMMIT", time.Since(start))
		}
	}()

	err = fn()
	return err
}

// Abort returns the marker error that makes the surrounding
// Transaction roll back and exit without a failure:
//
//	m.Transaction(ctx, func() error {
//		if skip {
//			return m.Abort()
//		}
//		...
//	})
func (m *Manager) Abort() error {
	if m.tx == nil {
		return ErrNoTransaction
	}
	return errAbort
}

// Show renders the statement together with its arguments for
// diagnostics. The arguments are appended, not interpolated; none of
// the supported drivers expose server-side statement rendering.
func (m *Manager) Show(sqlText string, args ...any) string {
	if len(args) == 0 {
		return sqlText
	}
	return fmt.Sprintf("%s %v", sqlText, args)
}

// Close releases the connection and returns the manager to its empty
// state; the next statement dials again. Closing inside an open
// transaction scope is refused: tearing down the connection there
// would strand the pending transaction.
func (m *Manager) Close() error {
	if m.tx != nil {
		return ErrTransactionActive
	}
	if m.conn == nil {
		return nil
	}
	err := m.conn.Close()
	m.conn = nil
	return err
}

// Shutdown stops every installed middleware, then closes the
// connection.
func (m *Manager) Shutdown() error {
	for _, mw := range m.middleware {
		if err := mw.Shutdown(); err != nil {
			m.logger.Error("middleware %s shutdown failed: %v", mw.Name(), err)
		}
	}
	return m.Close()
}

// logSQL logs a statement execution if a logger is set.
func (m *Manager) logSQL(sqlText string, duration time.Duration, args ...any) {
	if m.logger != nil {
		m.logger.SQL(sqlText, duration, args...)
	}
}

// Exec creates a fire-and-forget statement bound to this manager.
func (m *Manager) Exec(sqlText string) *Exec {
	h := NewExec(sqlText)
	h.Bind(m)
	return h
}

// Select creates a fetch-all select statement bound to this manager.
func (m *Manager) Select(sqlText string) *Select {
	h := NewSelect(sqlText)
	h.Bind(m)
	return h
}

// SelectOne creates a single-row select statement bound to this
// manager.
func (m *Manager) SelectOne(sqlText string) *SelectOne {
	h := NewSelectOne(sqlText)
	h.Bind(m)
	return h
}

// Manipulation creates a data-manipulation statement bound to this
// manager.
func (m *Manager) Manipulation(sqlText string) *Manipulation {
	h := NewManipulation(sqlText)
	h.Bind(m)
	return h
}

// QueryCursor creates a raw-cursor statement bound to this manager.
func (m *Manager) QueryCursor(sqlText string) *QueryCursor {
	h := NewQueryCursor(sqlText)
	h.Bind(m)
	return h
}

// SelectIterator creates a streaming select statement bound to this
// manager. fetchSize rows are pulled per underlying fetch; extra is
// forwarded to fn on every call.
func (m *Manager) SelectIterator(sqlText string, fn IteratorFunc, fetchSize int, extra ...any) (*SelectIterator, error) {
	h, err := NewSelectIterator(sqlText, fn, fetchSize, extra...)
	if err != nil {
		return nil, err
	}
	h.Bind(m)
	return h, nil
}
