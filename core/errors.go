package core

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownBackend is returned when no backend is registered
	// under the requested name.
	ErrUnknownBackend = errors.New("unknown backend")
	// ErrTransactionsUnsupported is returned when a transaction is
	// requested on a backend without transaction support.
	ErrTransactionsUnsupported = errors.New("backend does not support transactions")
	// ErrNoTransaction is returned by Abort when no transaction is in
	// progress.
	ErrNoTransaction = errors.New("no transaction in progress")
	// ErrTransactionActive is returned when a transaction is started
	// while another one is still open on the same manager.
	ErrTransactionActive = errors.New("transaction already in progress")

	// errAbort marks an intentional transaction abort. Transaction
	// rolls back and swallows it instead of reporting a failure.
	errAbort = errors.New("transaction aborted")
)

// ConfigError reports invalid construction parameters.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "invalid configuration: " + e.Reason
}

// ConnectError is returned when every connect attempt has failed. It
// wraps the last dial error.
type ConnectError struct {
	Backend  string
	Attempts int
	Err      error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("connect to %s failed after %d attempt(s): %v", e.Backend, e.Attempts, e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }

// ExecError wraps a driver-level execution failure together with the
// statement and arguments that caused it.
type ExecError struct {
	SQL  string
	Args []any
	Err  error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("execute failed: %v | sql: %s | args: %v", e.Err, e.SQL, e.Args)
}

func (e *ExecError) Unwrap() error { return e.Err }

// RowCountError reports a manipulation whose affected-row count did
// not match the expected count.
type RowCountError struct {
	Expected int64
	Actual   int64
}

func (e *RowCountError) Error() string {
	return fmt.Sprintf("row count was %d, expected %d", e.Actual, e.Expected)
}
