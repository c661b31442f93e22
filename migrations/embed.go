// Package migrations embeds the SQL migration files so they can be run from
// the binary via golang-migrate's iofs source.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
