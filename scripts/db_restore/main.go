package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/garnizeh/interviewdesk/internal/config"
	"github.com/garnizeh/interviewdesk/internal/db"
)

// Restore overwrites the configured sqlite database. Stop the server first.
func main() {
	from := flag.String("from", "", "backup file (default: <database>.bak)")
	flag.Parse()

	cfg, err := config.LoadConfig("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if db.DriverFor(cfg.DatabaseDSN) != db.DriverSQLite {
		fmt.Fprintln(os.Stderr, "Restore error: only sqlite databases are supported")
		os.Exit(1)
	}
	src := *from
	if src == "" {
		src = cfg.DatabaseDSN + ".bak"
	}
	dst := cfg.DatabaseDSN

	srcFile, err := os.Open(src)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Restore error: %v\n", err)
		os.Exit(1)
	}
	defer srcFile.Close()

	dstFile, err := os.Create(dst)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Restore error: %v\n", err)
		os.Exit(1)
	}
	defer dstFile.Close()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		fmt.Fprintf(os.Stderr, "Restore error: %v\n", err)
		os.Exit(1)
	}
	if err := dstFile.Sync(); err != nil {
		fmt.Fprintf(os.Stderr, "Restore error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Database restored from %s.\n", src)
}
