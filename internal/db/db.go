package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// DB wraps the sqlx.DB for connection management
type DB struct {
	conn *sqlx.DB
}

// DriverFor picks the driver for dsn. postgres:// and postgresql:// URLs open
// PostgreSQL; anything else is treated as a SQLite path or URI.
func DriverFor(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return DriverPostgres
	}
	return DriverSQLite
}

// New creates a new DB connection
func New(ctx context.Context, dsn string) (*DB, error) {
	driver := DriverFor(dsn)
	conn, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}
	if driver == DriverSQLite {
		// one writer keeps shared in-memory databases consistent
		conn.SetMaxOpenConns(1)
		if _, err := conn.ExecContext(ctx, `PRAGMA foreign_keys = ON`); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("enable foreign keys: %w", err)
		}
	}
	return &DB{conn: conn}, nil
}

// Wrap adopts an existing connection, typically a sqlmock in tests.
func Wrap(conn *sql.DB, driver string) *DB {
	return &DB{conn: sqlx.NewDb(conn, driver)}
}

// Close closes the DB connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// Driver returns the driver name the connection was opened with.
func (db *DB) Driver() string {
	return db.conn.DriverName()
}

// Rebind converts ? placeholders to the driver's bindvar style.
func (db *DB) Rebind(query string) string {
	return db.conn.Rebind(query)
}

// Exec executes a query
func (db *DB) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.conn.ExecContext(ctx, db.Rebind(query), args...)
}

// QueryRow executes a query that is expected to return at most one row
func (db *DB) QueryRow(ctx context.Context, query string, args ...any) *sqlx.Row {
	return db.conn.QueryRowxContext(ctx, db.Rebind(query), args...)
}

// Get scans a single row into dest.
func (db *DB) Get(ctx context.Context, dest any, query string, args ...any) error {
	return db.conn.GetContext(ctx, dest, db.Rebind(query), args...)
}

// Select scans all rows into dest, which must be a pointer to a slice.
func (db *DB) Select(ctx context.Context, dest any, query string, args ...any) error {
	return db.conn.SelectContext(ctx, dest, db.Rebind(query), args...)
}

// Tx runs fn inside a transaction, rolling back when fn returns an error.
func (db *DB) Tx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetConn returns the underlying sqlx.DB
func (db *DB) GetConn() *sqlx.DB {
	return db.conn
}
