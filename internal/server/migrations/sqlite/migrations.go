// Package sqlite embeds the SQLite schema migrations applied by goose.
package sqlite

import "embed"

//go:embed *.sql
var Migrations embed.FS
