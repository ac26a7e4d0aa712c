// Package migrations bundles the SQL schema migrations for the media service.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
