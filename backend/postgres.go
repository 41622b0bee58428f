package backend

import (
	"context"
	"sort"
	"strings"

	_ "github.com/lib/pq"

	"github.com/shrek82/dbquery/driver"
)

// postgres is the client/server backend over lib/pq. It accepts a
// full DSN ("postgres://..." or keyword form) or keyword Params
// (host, port, user, password, dbname, sslmode, ...).
type postgres struct{}

func init() {
	Register("postgres", &postgres{})
}

func (b *postgres) Name() string { return "postgres" }

func (b *postgres) Transactional() bool { return true }

func (b *postgres) Connect(ctx context.Context, cfg Config) (driver.Conn, error) {
	return driver.Open(ctx, "postgres", b.dsn(cfg))
}

// dsn builds the lib/pq keyword connection string. Params map 1:1
// onto pq keywords, rendered in stable order.
func (b *postgres) dsn(cfg Config) string {
	if cfg.DSN != "" {
		return cfg.DSN
	}

	keys := make([]string, 0, len(cfg.Params))
	for k := range cfg.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+cfg.Params[k])
	}
	return strings.Join(pairs, " ")
}
