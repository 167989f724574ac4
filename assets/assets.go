// Package assets embeds files shipped with the binary.
package assets

import "embed"

// Migrations holds the SQL migrations applied by the migrate command.
//
//go:embed migrations/*.sql
var Migrations embed.FS
