package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/garnizeh/interviewdesk/internal/config"
	"github.com/garnizeh/interviewdesk/internal/db"
)

func main() {
	out := flag.String("out", "", "backup file (default: <database>.bak)")
	flag.Parse()

	cfg, err := config.LoadConfig("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if db.DriverFor(cfg.DatabaseDSN) != db.DriverSQLite {
		fmt.Fprintln(os.Stderr, "Backup error: only sqlite databases are supported; use pg_dump for postgres")
		os.Exit(1)
	}
	dst := *out
	if dst == "" {
		dst = cfg.DatabaseDSN + ".bak"
	}
	if _, err := os.Stat(dst); err == nil {
		fmt.Fprintf(os.Stderr, "Backup error: %s already exists\n", dst)
		os.Exit(1)
	}

	ctx := context.Background()
	database, err := db.New(ctx, cfg.DatabaseDSN)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Backup error: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	// VACUUM INTO writes a consistent copy while the server keeps running.
	if _, err := database.Exec(ctx, `VACUUM INTO ?`, dst); err != nil {
		fmt.Fprintf(os.Stderr, "Backup error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Database backup written to %s.\n", dst)
}
