package core

import (
	"context"
	"time"

	"github.com/shrek82/dbquery/driver"
)

// producer shapes an executed cursor into a statement's result. Each
// statement variant supplies one; everything else about an invocation
// (connection acquisition, execution, cursor release, logging) is
// shared.
type producer interface {
	produce(cur driver.Cursor) (any, error)
}

type stmtKind int

const (
	kindExec stmtKind = iota
	kindSelect
)

// Statement is a SQL string bound to a Manager. All statement
// variants embed it and share its dispatch. A Statement can be
// declared unbound (package level, struct fields) and attached to a
// manager later with Bind.
type Statement struct {
	sql  string
	kind stmtKind
	mgr  *Manager
}

// Bind attaches the statement to a manager. The manager must outlive
// the statement.
func (s *Statement) Bind(m *Manager) {
	s.mgr = m
}

// SQL returns the statement text.
func (s *Statement) SQL() string {
	return s.sql
}

// IsSelect reports whether the statement produces rows.
func (s *Statement) IsSelect() bool {
	return s.kind == kindSelect
}

// invoke runs the statement through the manager's middleware chain
// and shapes the result with prod.
func (s *Statement) invoke(ctx context.Context, prod producer, args []any) (any, error) {
	if s.mgr == nil {
		return nil, &ConfigError{Reason: "statement is not bound to a manager"}
	}

	chain := Next(func(ctx context.Context, inv *Invocation) (any, error) {
		return s.run(ctx, prod, inv.Args)
	})
	mws := s.mgr.middleware
	for i := len(mws) - 1; i >= 0; i-- {
		mw, next := mws[i], chain
		chain = func(ctx context.Context, inv *Invocation) (any, error) {
			return mw.Process(ctx, inv, next)
		}
	}
	return chain(ctx, &Invocation{Statement: s, Args: args})
}

// run acquires the connection (or the open transaction), executes the
// statement and applies prod. The cursor is released on every path.
func (s *Statement) run(ctx context.Context, prod producer, args []any) (any, error) {
	ex, err := s.mgr.executor(ctx)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	var cur driver.Cursor
	if s.kind == kindExec {
		cur, err = ex.Exec(ctx, s.sql, args...)
	} else {
		cur, err = ex.Query(ctx, s.sql, args...)
	}
	s.mgr.logSQL(s.sql, time.Since(start), args...)
	if err != nil {
		return nil, &ExecError{SQL: s.sql, Args: args, Err: err}
	}
	defer cur.Close()

	return prod.produce(cur)
}

// Binder is anything that can be attached to a manager. All statement
// variants implement it.
type Binder interface {
	Bind(m *Manager)
}

// BindAll attaches a set of declared statements to one manager. It is
// the composition step for statements declared independently of any
// manager.
func BindAll(m *Manager, stmts ...Binder) {
	for _, s := range stmts {
		s.Bind(m)
	}
}
