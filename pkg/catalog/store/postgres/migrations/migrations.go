// Package migrations embeds the catalog schema's golang-migrate source
// files, grounded on the teacher's pkg/store/metadata/postgres/migrations
// embed pattern (consumed via source/iofs in ../migrate.go).
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
