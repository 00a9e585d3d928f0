// Package migrations embeds the goose SQL migrations that define the travel
// log schema. The server applies them at startup and the repository
// integration tests apply them in TestMain.
package migrations

import "embed"

// FS holds all *.sql migration files embedded at compile time.
//
//go:embed *.sql
var FS embed.FS
