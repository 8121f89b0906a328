package migrations

import "embed"

// Postgres holds the SQL migrations for the history store
//
//go:embed postgres/*.sql
var Postgres embed.FS
