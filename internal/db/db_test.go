package db_test

import (
	"context"
	"testing"
	"time"

	dbpkg "github.com/garnizeh/interviewdesk/internal/db"
	"github.com/jmoiron/sqlx"
)

func TestNew_Close_GetConn(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	// Use in-memory SQLite
	d, err := dbpkg.New(ctx, "file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	if d.GetConn() == nil {
		t.Fatalf("expected non-nil sqlx.DB from GetConn")
	}
	if d.Driver() != dbpkg.DriverSQLite {
		t.Fatalf("unexpected driver %q", d.Driver())
	}

	if err := d.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
}

func TestDriverFor(t *testing.T) {
	tests := map[string]string{
		"interviewdesk.db":                dbpkg.DriverSQLite,
		"file::memory:?cache=shared":      dbpkg.DriverSQLite,
		"postgres://u:p@localhost/desk":   dbpkg.DriverPostgres,
		"postgresql://u:p@localhost/desk": dbpkg.DriverPostgres,
		"/var/lib/interviewdesk/postgres": dbpkg.DriverSQLite,
	}
	for dsn, want := range tests {
		if got := dbpkg.DriverFor(dsn); got != want {
			t.Fatalf("DriverFor(%q) = %q, want %q", dsn, got, want)
		}
	}
}

func TestExec_QueryRow(t *testing.T) {
	ctx := context.Background()
	d, err := dbpkg.New(ctx, ":memory:")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	defer d.Close()

	_, err = d.Exec(ctx, `CREATE TABLE IF NOT EXISTS items (id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT);`)
	if err != nil {
		t.Fatalf("Exec create table returned error: %v", err)
	}

	res, err := d.Exec(ctx, `INSERT INTO items (name) VALUES (?)`, "foo")
	if err != nil {
		t.Fatalf("Exec insert returned error: %v", err)
	}
	lastID, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("LastInsertId returned error: %v", err)
	}
	if lastID == 0 {
		t.Fatalf("expected last insert id > 0")
	}

	var name string
	if err := d.QueryRow(ctx, `SELECT name FROM items WHERE id = ?`, lastID).Scan(&name); err != nil {
		t.Fatalf("QueryRow scan returned error: %v", err)
	}
	if name != "foo" {
		t.Fatalf("expected name 'foo' got %q", name)
	}

	var names []string
	if err := d.Select(ctx, &names, `SELECT name FROM items ORDER BY id`); err != nil {
		t.Fatalf("Select returned error: %v", err)
	}
	if len(names) != 1 || names[0] != "foo" {
		t.Fatalf("unexpected names %v", names)
	}
}

func TestTx_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	d, err := dbpkg.New(ctx, ":memory:")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	defer d.Close()

	if _, err := d.Exec(ctx, `CREATE TABLE items (name TEXT)`); err != nil {
		t.Fatalf("create table: %v", err)
	}

	err = d.Tx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO items (name) VALUES ('a')`); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `INSERT INTO missing_table (name) VALUES ('b')`)
		return err
	})
	if err == nil {
		t.Fatalf("expected error from failing statement")
	}

	var count int
	if err := d.Get(ctx, &count, `SELECT COUNT(1) FROM items`); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected rollback to leave 0 rows, got %d", count)
	}
}

func TestNew_BadDSN(t *testing.T) {
	ctx := context.Background()
	_, err := dbpkg.New(ctx, "/path/that/does/not/exist/desk.db")
	if err == nil {
		t.Fatalf("expected error for bad DSN, got nil")
	}
}
