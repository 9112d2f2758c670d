// Package migrations embeds the SQL schema migrations
package migrations

import "embed"

// FS holds the NNN_name.up.sql and NNN_name.down.sql files
//
//go:embed *.sql
var FS embed.FS
