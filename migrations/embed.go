// Package migrations embeds the SQL schema migrations so the server can
// apply them at startup without a migrations directory on disk.
package migrations

import "embed"

// FS contains the embedded goose SQL migration files.
//
//go:embed *.sql
var FS embed.FS
