// Package appfs embeds files the binaries need at runtime (database migrations).
package appfs

import "embed"

//go:embed migrations
var FS embed.FS
