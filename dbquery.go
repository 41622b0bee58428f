// Package dbquery turns SQL statements into reusable callable units
// over a lazily established single database connection.
package dbquery

import (
	"github.com/shrek82/dbquery/backend"
	"github.com/shrek82/dbquery/core"
)

// Re-export core types and functions
type Manager = core.Manager
type Options = core.Options
type Config = backend.Config

type Exec = core.Exec
type Select = core.Select
type SelectOne = core.SelectOne
type SelectIterator = core.SelectIterator
type Manipulation = core.Manipulation
type QueryCursor = core.QueryCursor

type Rows = core.Rows
type ResultSet = core.ResultSet
type IteratorFunc = core.IteratorFunc
type Middleware = core.Middleware

type ConfigError = core.ConfigError
type ConnectError = core.ConnectError
type ExecError = core.ExecError
type RowCountError = core.RowCountError

var (
	New     = core.New
	BindAll = core.BindAll

	NewExec           = core.NewExec
	NewSelect         = core.NewSelect
	NewSelectOne      = core.NewSelectOne
	NewSelectIterator = core.NewSelectIterator
	NewManipulation   = core.NewManipulation
	NewQueryCursor    = core.NewQueryCursor
	NextVal           = core.NextVal

	ErrUnknownBackend          = core.ErrUnknownBackend
	ErrTransactionsUnsupported = core.ErrTransactionsUnsupported
	ErrNoTransaction           = core.ErrNoTransaction
	ErrTransactionActive       = core.ErrTransactionActive
)
