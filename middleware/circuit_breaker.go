package middleware

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shrek82/dbquery/core"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

// CircuitBreakerMiddleware stops sending statements to a failing
// database. After Threshold consecutive failures the circuit opens
// and calls fail fast with ErrCircuitOpen; after ResetTimeout one
// probe call is let through.
type CircuitBreakerMiddleware struct {
	Threshold    int
	ResetTimeout time.Duration

	mu          sync.Mutex
	state       State
	failures    int
	lastFailure time.Time
	probing     bool
}

func NewCircuitBreaker(threshold int, resetTimeout time.Duration) *CircuitBreakerMiddleware {
	return &CircuitBreakerMiddleware{
		Threshold:    threshold,
		ResetTimeout: resetTimeout,
		state:        StateClosed,
	}
}

func (m *CircuitBreakerMiddleware) Name() string {
	return "CircuitBreaker"
}

func (m *CircuitBreakerMiddleware) Init(mgr *core.Manager) error {
	return nil
}

func (m *CircuitBreakerMiddleware) Shutdown() error {
	return nil
}

// CurrentState returns the breaker state at this moment.
func (m *CircuitBreakerMiddleware) CurrentState() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *CircuitBreakerMiddleware) Process(ctx context.Context, inv *core.Invocation, next core.Next) (any, error) {
	m.mu.Lock()
	switch m.state {
	case StateOpen:
		if time.Since(m.lastFailure) > m.ResetTimeout {
			m.state = StateHalfOpen
			m.probing = false
		} else {
			m.mu.Unlock()
			return nil, ErrCircuitOpen
		}
	case StateHalfOpen:
		if m.probing {
			// One probe at a time.
			m.mu.Unlock()
			return nil, ErrCircuitOpen
		}
	}
	if m.state == StateHalfOpen {
		m.probing = true
	}
	m.mu.Unlock()

	res, err := next(ctx, inv)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.failures++
		m.lastFailure = time.Now()
		if m.state == StateHalfOpen || m.failures >= m.Threshold {
			m.state = StateOpen
		}
		return res, err
	}

	m.failures = 0
	m.state = StateClosed
	return res, nil
}
