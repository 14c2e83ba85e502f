// Package migrations embeds the SQL schema migration files applied at
// service startup.
package migrations

import "embed"

//go:embed *.sql
var Files embed.FS
