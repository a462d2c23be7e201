package store

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/ZeMendes2393/sailscore/models"
	"github.com/ZeMendes2393/sailscore/scoring"
)

// ListRaceResults returns the results of one race by position.
func (r *Impl) ListRaceResults(ctx context.Context, db bun.IDB, raceID int64) ([]models.Result, error) {
	var results []models.Result
	err := r.conn(db).NewSelect().Model(&results).
		Where("r.race_id = ?", raceID).
		Order("r.position ASC", "r.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("store.ListRaceResults: %w", err)
	}
	return results, nil
}

// ListClassResults returns every result of a class.
func (r *Impl) ListClassResults(ctx context.Context, db bun.IDB, classID int64) ([]models.Result, error) {
	var results []models.Result
	err := r.conn(db).NewSelect().Model(&results).
		Where("r.class_id = ?", classID).
		Order("r.race_id ASC", "r.position ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("store.ListClassResults: %w", err)
	}
	return results, nil
}

// DeleteRaceResults removes the results of a race, or only those of boats
// when boats is non-empty.
func (r *Impl) DeleteRaceResults(ctx context.Context, db bun.IDB, raceID int64, boats []scoring.BoatKey) error {
	q := r.conn(db).NewDelete().Model((*models.Result)(nil)).Where("race_id = ?", raceID)
	if boats != nil {
		if len(boats) == 0 {
			return nil
		}
		q = q.WhereGroup(" AND ", func(q *bun.DeleteQuery) *bun.DeleteQuery {
			for _, b := range boats {
				q = q.WhereOr("(country_code = ? AND sail_number = ?)", b.Country, b.SailNumber)
			}
			return q
		})
	}
	if _, err := q.Exec(ctx); err != nil {
		return fmt.Errorf("store.DeleteRaceResults: %w", err)
	}
	return nil
}

// InsertResults bulk-inserts results.
func (r *Impl) InsertResults(ctx context.Context, db bun.IDB, results []*models.Result) error {
	if len(results) == 0 {
		return nil
	}
	if _, err := r.conn(db).NewInsert().Model(&results).Exec(ctx); err != nil {
		return fmt.Errorf("store.InsertResults: %w", err)
	}
	return nil
}

// ResultCounts returns result totals per race for raceIDs.
func (r *Impl) ResultCounts(ctx context.Context, db bun.IDB, raceIDs []int64) (map[int64]ResultCount, error) {
	out := make(map[int64]ResultCount, len(raceIDs))
	if len(raceIDs) == 0 {
		return out, nil
	}

	var rows []struct {
		RaceID int64 `bun:"race_id"`
		ResultCount
	}
	err := r.conn(db).NewSelect().
		TableExpr("results").
		ColumnExpr("race_id").
		ColumnExpr("count(*) AS total").
		ColumnExpr("count(*) FILTER (WHERE points IS NULL) AS unscored").
		Where("race_id IN (?)", bun.In(raceIDs)).
		Group("race_id").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("store.ResultCounts: %w", err)
	}
	for _, row := range rows {
		out[row.RaceID] = row.ResultCount
	}
	return out, nil
}
