package migrations

import "embed"

// Migrations holds the SQL migration files applied by goose.
//
//go:embed *.sql
var Migrations embed.FS
