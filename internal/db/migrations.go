package db

import "embed"

// migrationsFS holds the goose SQL migrations, applied in filename order.
//
//go:embed migrations/*.sql
var migrationsFS embed.FS
