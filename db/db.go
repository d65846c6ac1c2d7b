package db

import "embed"

// Migrations holds one directory of ordered .sql files per driver.
//
//go:embed migrations/*/*.sql
var Migrations embed.FS
