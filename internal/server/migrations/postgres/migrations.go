// Package postgres embeds the PostgreSQL schema migrations applied by goose.
package postgres

import "embed"

//go:embed *.sql
var Migrations embed.FS
