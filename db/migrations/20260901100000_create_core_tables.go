package migrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/ZeMendes2393/sailscore/models"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating users, regattas, classes, entries, races and results...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if err := createTables(ctx, tx,
				(*models.User)(nil),
				(*models.Regatta)(nil),
				(*models.RegattaClass)(nil),
				(*models.Entry)(nil),
				(*models.Race)(nil),
				(*models.Result)(nil),
			); err != nil {
				return err
			}

			constraints := []struct{ table, name, def string }{
				{"regatta_classes", "regatta_classes_regatta_fk", "FOREIGN KEY (regatta_id) REFERENCES regattas(id) ON DELETE CASCADE"},
				{"regatta_classes", "regatta_classes_no_dupes", "UNIQUE (regatta_id, name)"},
				{"entries", "entries_class_fk", "FOREIGN KEY (class_id) REFERENCES regatta_classes(id) ON DELETE CASCADE"},
				{"entries", "entries_no_dupes", "UNIQUE (regatta_id, class_id, country_code, sail_number)"},
				{"races", "races_class_fk", "FOREIGN KEY (class_id) REFERENCES regatta_classes(id) ON DELETE CASCADE"},
				{"races", "races_no_dupes", "UNIQUE (regatta_id, class_id, order_index)"},
				{"results", "results_race_fk", "FOREIGN KEY (race_id) REFERENCES races(id) ON DELETE CASCADE"},
				{"results", "results_no_dupes", "UNIQUE (race_id, country_code, sail_number)"},
				{"results", "results_position_positive", "CHECK (position > 0)"},
			}
			for _, c := range constraints {
				if err := addConstraint(ctx, tx, c.table, c.name, c.def); err != nil {
					return err
				}
			}

			return execAll(ctx, tx,
				`CREATE INDEX IF NOT EXISTS idx_entries_class ON entries(class_id)`,
				`CREATE INDEX IF NOT EXISTS idx_races_class_order ON races(class_id, order_index)`,
				`CREATE INDEX IF NOT EXISTS idx_results_class ON results(class_id)`,
			)
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping core tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			return dropTables(ctx, tx,
				(*models.Result)(nil),
				(*models.Race)(nil),
				(*models.Entry)(nil),
				(*models.RegattaClass)(nil),
				(*models.Regatta)(nil),
				(*models.User)(nil),
			)
		})
	})
}
