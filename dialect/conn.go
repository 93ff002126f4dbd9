package dialect

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/denisenkom/go-mssqldb" // sqlserver driver, registers "sqlserver"
	_ "github.com/go-sql-driver/mysql"   // registers "mysql"
	_ "github.com/godror/godror"         // registers "godror" (Oracle)
	_ "github.com/lib/pq"                // registers "postgres"
	_ "modernc.org/sqlite"               // registers "sqlite"
)

// driverName maps a dialect Tag to the database/sql driver name registered
// by the imports above. The generator itself never calls these — they
// exist so a host application linking this package can open a real
// connection; per spec §1 the concrete drivers are external collaborators,
// this is the thinnest possible bridge to them.
var driverName = map[Tag]string{
	SQLite:    "sqlite",
	MySQL:     "mysql",
	Postgres:  "postgres",
	SQLServer: "sqlserver",
	Oracle:    "godror",
}

// ExecQuerier wraps the standard Exec and Query methods used by generated
// code and the runtime shim (§6 runtime shim surface).
type ExecQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Conn is the injected connection generated methods receive. It is never
// opened or closed by generated code (§5 resource discipline) — only used.
type Conn struct {
	ExecQuerier
	Dialect Tag
}

// Open opens a database/sql connection for tag using the driver registered
// above and wraps it as a Conn.
func Open(tag Tag, dsn string) (*Conn, *sql.DB, error) {
	name, ok := driverName[tag]
	if !ok {
		return nil, nil, fmt.Errorf("dialect: no driver registered for %q", tag)
	}
	db, err := sql.Open(name, dsn)
	if err != nil {
		return nil, nil, err
	}
	return &Conn{ExecQuerier: db, Dialect: tag}, db, nil
}

// Tx mirrors Conn for the lifetime of a transaction; generated batch
// methods (§5) accept either.
type Tx struct {
	Conn
	*sql.Tx
}
