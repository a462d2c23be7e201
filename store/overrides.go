package store

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/ZeMendes2393/sailscore/models"
)

// ListOverrides returns the configured codes of a regatta (classID nil) or of
// one class.
func (r *Impl) ListOverrides(ctx context.Context, db bun.IDB, regattaID int64, classID *int64) ([]models.ScoringCodeOverride, error) {
	var rows []models.ScoringCodeOverride
	q := r.conn(db).NewSelect().Model(&rows).Where("sco.regatta_id = ?", regattaID)
	if classID == nil {
		q = q.Where("sco.class_id IS NULL")
	} else {
		q = q.Where("sco.class_id = ?", *classID)
	}
	if err := q.Order("sco.code ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("store.ListOverrides: %w", err)
	}
	return rows, nil
}

// ReplaceOverrides swaps the whole code table of one level for rows.
func (r *Impl) ReplaceOverrides(ctx context.Context, db bun.IDB, regattaID int64, classID *int64, rows []models.ScoringCodeOverride) error {
	conn := r.conn(db)
	q := conn.NewDelete().Model((*models.ScoringCodeOverride)(nil)).Where("regatta_id = ?", regattaID)
	if classID == nil {
		q = q.Where("class_id IS NULL")
	} else {
		q = q.Where("class_id = ?", *classID)
	}
	if _, err := q.Exec(ctx); err != nil {
		return fmt.Errorf("store.ReplaceOverrides: delete: %w", err)
	}
	if len(rows) == 0 {
		return nil
	}
	for i := range rows {
		rows[i].ID = 0
		rows[i].RegattaID = regattaID
		rows[i].ClassID = classID
	}
	if _, err := conn.NewInsert().Model(&rows).Exec(ctx); err != nil {
		return fmt.Errorf("store.ReplaceOverrides: insert: %w", err)
	}
	return nil
}
