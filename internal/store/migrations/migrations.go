// Package migrations embeds the goose SQL migration files for the players
// table.
package migrations

import "embed"

// FS holds the embedded .sql migration files, handed to goose.SetBaseFS.
//
//go:embed *.sql
var FS embed.FS
