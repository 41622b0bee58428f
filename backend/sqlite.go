package backend

import (
	"context"
	"net/url"

	_ "github.com/mattn/go-sqlite3"

	"github.com/shrek82/dbquery/driver"
)

// sqlite is the embedded file-based backend. It runs in autocommit
// mode and is registered as non-transactional.
type sqlite struct{}

func init() {
	Register("sqlite3", &sqlite{})
}

func (b *sqlite) Name() string { return "sqlite3" }

func (b *sqlite) Transactional() bool { return false }

func (b *sqlite) Connect(ctx context.Context, cfg Config) (driver.Conn, error) {
	return driver.Open(ctx, "sqlite3", b.dsn(cfg))
}

// dsn builds the go-sqlite3 connection string. The database file (or
// ":memory:") comes from DSN or the "database" param; any remaining
// params become URI options, e.g. file:app.db?cache=shared.
func (b *sqlite) dsn(cfg Config) string {
	path := cfg.DSN
	if path == "" {
		path = cfg.Params["database"]
	}

	values := url.Values{}
	for k, v := range cfg.Params {
		if k == "database" {
			continue
		}
		values.Set(k, v)
	}
	if len(values) == 0 {
		return path
	}
	return "file:" + path + "?" + values.Encode()
}
