package migrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/ZeMendes2393/sailscore/models"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating fleet_sets, fleets and fleet_assignments...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if err := createTables(ctx, tx,
				(*models.FleetSet)(nil),
				(*models.Fleet)(nil),
				(*models.FleetAssignment)(nil),
			); err != nil {
				return err
			}

			constraints := []struct{ table, name, def string }{
				{"fleet_sets", "fleet_sets_class_fk", "FOREIGN KEY (class_id) REFERENCES regatta_classes(id) ON DELETE CASCADE"},
				{"fleet_sets", "fleet_sets_label_unique", "UNIQUE (regatta_id, class_id, phase, label)"},
				{"fleet_sets", "fleet_sets_phase_check", "CHECK (phase IN ('qualifying', 'finals'))"},
				{"fleets", "fleets_set_fk", "FOREIGN KEY (fleet_set_id) REFERENCES fleet_sets(id) ON DELETE CASCADE"},
				{"fleet_assignments", "fleet_assignments_set_fk", "FOREIGN KEY (fleet_set_id) REFERENCES fleet_sets(id) ON DELETE CASCADE"},
				{"fleet_assignments", "fleet_assignments_fleet_fk", "FOREIGN KEY (fleet_id) REFERENCES fleets(id) ON DELETE CASCADE"},
				{"fleet_assignments", "fleet_assignments_entry_fk", "FOREIGN KEY (entry_id) REFERENCES entries(id) ON DELETE CASCADE"},
				{"fleet_assignments", "fleet_assignments_no_dupes", "UNIQUE (fleet_set_id, entry_id)"},
				{"races", "races_fleet_set_fk", "FOREIGN KEY (fleet_set_id) REFERENCES fleet_sets(id) ON DELETE SET NULL"},
			}
			for _, c := range constraints {
				if err := addConstraint(ctx, tx, c.table, c.name, c.def); err != nil {
					return err
				}
			}

			return execAll(ctx, tx,
				`CREATE INDEX IF NOT EXISTS idx_fleet_sets_class_created ON fleet_sets(class_id, created_at)`,
				`CREATE INDEX IF NOT EXISTS idx_fleet_assignments_fleet ON fleet_assignments(fleet_id)`,
				`CREATE INDEX IF NOT EXISTS idx_races_fleet_set ON races(fleet_set_id)`,
			)
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping fleet tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if err := execAll(ctx, tx, `ALTER TABLE races DROP CONSTRAINT IF EXISTS races_fleet_set_fk`); err != nil {
				return err
			}
			return dropTables(ctx, tx,
				(*models.FleetAssignment)(nil),
				(*models.Fleet)(nil),
				(*models.FleetSet)(nil),
			)
		})
	})
}
