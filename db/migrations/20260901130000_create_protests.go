package migrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/ZeMendes2393/sailscore/models"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating regatta_counters and protests...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if err := createTables(ctx, tx, (*models.RegattaCounter)(nil), (*models.Protest)(nil)); err != nil {
				return err
			}
			constraints := []struct{ table, name, def string }{
				{"regatta_counters", "regatta_counters_no_dupes", "UNIQUE (regatta_id, name)"},
				{"protests", "protests_regatta_fk", "FOREIGN KEY (regatta_id) REFERENCES regattas(id) ON DELETE CASCADE"},
				{"protests", "protests_number_unique", "UNIQUE (regatta_id, number)"},
			}
			for _, c := range constraints {
				if err := addConstraint(ctx, tx, c.table, c.name, c.def); err != nil {
					return err
				}
			}
			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping regatta_counters and protests...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			return dropTables(ctx, tx, (*models.Protest)(nil), (*models.RegattaCounter)(nil))
		})
	})
}
