// Package migrations embeds the SQL migrations applied by golang-migrate.
package migrations

import "embed"

const PostgresDir = "postgres"

//go:embed postgres/*.sql
var Postgres embed.FS
