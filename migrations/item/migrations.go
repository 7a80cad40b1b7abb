// Package item embeds the goose migrations of the item bounded context.
package item

import "embed"

// FS holds the *.sql migrations, applied in filename order.
//
//go:embed *.sql
var FS embed.FS
