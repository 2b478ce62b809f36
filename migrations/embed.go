// Package migrations embeds the SQL schema migrations so binaries can apply
// them without a checkout of the repository.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
