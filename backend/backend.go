package backend

import (
	"context"

	"github.com/shrek82/dbquery/driver"
)

// Config carries the connect parameters for a backend. Either a full
// DSN or keyword Params can be given; DSN wins when both are set.
// How the fields map to a driver DSN is backend-specific.
type Config struct {
	DSN    string
	Params map[string]string
}

// Backend maps a Config onto a concrete database engine. Each engine
// (SQLite, PostgreSQL, MySQL) implements this interface to be
// selectable by name.
type Backend interface {
	// Name returns the backend name used at registration.
	Name() string
	// Connect dials the engine and returns a live connection.
	Connect(ctx context.Context, cfg Config) (driver.Conn, error)
	// Transactional reports whether the engine supports begin/commit/
	// rollback through this backend.
	Transactional() bool
}

var backends = make(map[string]Backend)

// Register registers a backend under the given name
func Register(name string, b Backend) {
	backends[name] = b
}

// Get retrieves a registered backend by name
func Get(name string) (Backend, bool) {
	b, ok := backends[name]
	return b, ok
}
