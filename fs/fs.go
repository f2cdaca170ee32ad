// Package appfs embeds the static files shipped with the binaries.
package appfs

import "embed"

//go:embed migrations all:templates assets
var FS embed.FS

// MigrationsDir returns the migrations directory for a database engine.
func MigrationsDir(engine string) string {
	return "migrations/" + engine
}
