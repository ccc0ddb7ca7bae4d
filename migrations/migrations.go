// Package migrations embeds the schema migration files so a deployed
// binary can migrate without the source tree on disk.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
