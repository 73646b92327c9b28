// Package migrations holds the ordered schema migration list, embedded into
// the binary and applied once at startup.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
