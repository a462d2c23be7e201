package migrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

// addConstraint adds a named table constraint unless it already exists.
func addConstraint(ctx context.Context, db bun.IDB, table, name, definition string) error {
	stmt := fmt.Sprintf(
		`DO $$ BEGIN IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = '%s') THEN ALTER TABLE %s ADD CONSTRAINT %s %s; END IF; END $$`,
		name, table, name, definition,
	)
	if _, err := db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("adding constraint %s: %w", name, err)
	}
	return nil
}

func createTables(ctx context.Context, db bun.IDB, tables ...any) error {
	for _, model := range tables {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("creating table for %T: %w", model, err)
		}
	}
	return nil
}

func dropTables(ctx context.Context, db bun.IDB, tables ...any) error {
	for _, model := range tables {
		if _, err := db.NewDropTable().Model(model).IfExists().Cascade().Exec(ctx); err != nil {
			return fmt.Errorf("dropping table for %T: %w", model, err)
		}
	}
	return nil
}

func execAll(ctx context.Context, db bun.IDB, stmts ...string) error {
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%s: %w", stmt, err)
		}
	}
	return nil
}
