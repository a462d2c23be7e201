package migrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/ZeMendes2393/sailscore/models"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating scoring_code_overrides table...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if err := createTables(ctx, tx, (*models.ScoringCodeOverride)(nil)); err != nil {
				return err
			}
			if err := addConstraint(ctx, tx, "scoring_code_overrides", "scoring_code_overrides_regatta_fk",
				"FOREIGN KEY (regatta_id) REFERENCES regattas(id) ON DELETE CASCADE"); err != nil {
				return err
			}
			// class_id is NULL for regatta defaults, so uniqueness needs two partial indexes.
			return execAll(ctx, tx,
				`CREATE UNIQUE INDEX IF NOT EXISTS uq_scoring_codes_regatta ON scoring_code_overrides(regatta_id, code) WHERE class_id IS NULL`,
				`CREATE UNIQUE INDEX IF NOT EXISTS uq_scoring_codes_class ON scoring_code_overrides(regatta_id, class_id, code) WHERE class_id IS NOT NULL`,
			)
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping scoring_code_overrides table...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			return dropTables(ctx, tx, (*models.ScoringCodeOverride)(nil))
		})
	})
}
