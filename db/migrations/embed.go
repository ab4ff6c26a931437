// Package migrations exposes the embedded SQL migrations bundled into
// storefront binaries.
package migrations

import "embed"

//go:embed *.sql
var Files embed.FS
