// Package migrations embeds the goose SQL migration files for the account,
// guildcard, and per-client-version schema, grounded on the teacher's
// internal/db/migrations embed.FS mechanism.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
