package backend

import (
	"context"
	"fmt"
	"net/url"

	_ "github.com/go-sql-driver/mysql"

	"github.com/shrek82/dbquery/driver"
)

// mysqlBackend is the client/server backend over go-sql-driver. A
// full DSN in the driver's user:pass@tcp(host:port)/db form can be
// given directly, or assembled from keyword Params.
type mysqlBackend struct{}

func init() {
	Register("mysql", &mysqlBackend{})
}

func (b *mysqlBackend) Name() string { return "mysql" }

func (b *mysqlBackend) Transactional() bool { return true }

func (b *mysqlBackend) Connect(ctx context.Context, cfg Config) (driver.Conn, error) {
	return driver.Open(ctx, "mysql", b.dsn(cfg))
}

func (b *mysqlBackend) dsn(cfg Config) string {
	if cfg.DSN != "" {
		return cfg.DSN
	}

	host := cfg.Params["host"]
	if host == "" {
		host = "127.0.0.1"
	}
	port := cfg.Params["port"]
	if port == "" {
		port = "3306"
	}

	cred := cfg.Params["user"]
	if pass := cfg.Params["password"]; pass != "" {
		cred += ":" + pass
	}

	dsn := fmt.Sprintf("%s@tcp(%s:%s)/%s", cred, host, port, cfg.Params["database"])

	values := url.Values{}
	for k, v := range cfg.Params {
		switch k {
		case "host", "port", "user", "password", "database":
		default:
			values.Set(k, v)
		}
	}
	if len(values) > 0 {
		dsn += "?" + values.Encode()
	}
	return dsn
}
