package core

import "context"

// Invocation is one statement call as seen by middleware.
type Invocation struct {
	Statement *Statement
	Args      []any
}

// Next is the function type for the next step in the middleware
// chain.
type Next func(ctx context.Context, inv *Invocation) (any, error)

// Middleware intercepts statement invocations.
type Middleware interface {
	Name() string
	Init(m *Manager) error
	Shutdown() error
	Process(ctx context.Context, inv *Invocation, next Next) (any, error)
}
