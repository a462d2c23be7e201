// Package migrations holds the schema migrations, applied in file-name order
// by bun's migrator. Every step is check-then-apply so that a partially
// applied migration can be re-run.
package migrations

import "github.com/uptrace/bun/migrate"

var Migrations = migrate.NewMigrations()

func init() {
	if err := Migrations.DiscoverCaller(); err != nil {
		panic(err)
	}
}
