package document

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/jwalitptl/admin-console/internal/config"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// NewDB opens the configured database and makes sure the records table exists.
func NewDB(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	var (
		db  *sqlx.DB
		err error
	)

	switch cfg.Driver {
	case DriverSQLite:
		db, err = openSQLite(cfg.DSN)
	case DriverPostgres:
		db, err = sqlx.ConnectContext(ctx, DriverPostgres, cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func openSQLite(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open(DriverSQLite, dsn)
	if err != nil {
		return nil, err
	}

	// One connection: SQLite serializes writers anyway and an in-memory
	// database lives only as long as its connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	for _, p := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("exec %q: %w", p, err)
		}
	}
	return db, nil
}

// Migrate creates the records table and its indexes if they are missing.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schema(db.DriverName()) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate records: %w", err)
		}
	}
	return nil
}

func schema(driver string) []string {
	seq := "seq INTEGER PRIMARY KEY AUTOINCREMENT"
	if driver == DriverPostgres {
		seq = "seq BIGSERIAL PRIMARY KEY"
	}
	return []string{
		`CREATE TABLE IF NOT EXISTS records (
			` + seq + `,
			tenant TEXT NOT NULL,
			resource TEXT NOT NULL,
			id TEXT NOT NULL,
			data TEXT NOT NULL,
			UNIQUE (tenant, resource, id)
		)`,
		`CREATE INDEX IF NOT EXISTS records_tenant_resource ON records (tenant, resource, seq)`,
	}
}
