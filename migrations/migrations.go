// Package migrations встраивает SQL-миграции схемы справочника.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
