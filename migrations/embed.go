// Package migrations embeds the schema migrations, one directory per dialect.
package migrations

import "embed"

// FS holds postgres/*.sql and sqlite3/*.sql in golang-migrate's
// <version>_<title>.<up|down>.sql layout.
//
//go:embed postgres/*.sql sqlite3/*.sql
var FS embed.FS
