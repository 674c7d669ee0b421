// Package migrations embeds the goose SQL migrations for the Lirra schema.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
