package store

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/ZeMendes2393/sailscore/models"
)

// RegattaExists reports whether the regatta exists.
func (r *Impl) RegattaExists(ctx context.Context, db bun.IDB, regattaID int64) (bool, error) {
	ok, err := r.conn(db).NewSelect().Model((*models.Regatta)(nil)).Where("id = ?", regattaID).Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("store.RegattaExists: %w", err)
	}
	return ok, nil
}

// GetClass loads a class with its scoring settings.
func (r *Impl) GetClass(ctx context.Context, db bun.IDB, classID int64) (*models.RegattaClass, error) {
	class := new(models.RegattaClass)
	if err := r.conn(db).NewSelect().Model(class).Where("rcl.id = ?", classID).Scan(ctx); err != nil {
		return nil, fmt.Errorf("store.GetClass: %w", notFound(err))
	}
	return class, nil
}

// UpdateClass writes the named columns of class.
func (r *Impl) UpdateClass(ctx context.Context, db bun.IDB, class *models.RegattaClass, columns ...string) error {
	res, err := r.conn(db).NewUpdate().Model(class).Column(columns...).WherePK().Exec(ctx)
	if err != nil {
		return fmt.Errorf("store.UpdateClass: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("store.UpdateClass: %w", ErrNoRowsAffected)
	}
	return nil
}

// GetRace loads one race.
func (r *Impl) GetRace(ctx context.Context, db bun.IDB, raceID int64) (*models.Race, error) {
	race := new(models.Race)
	if err := r.conn(db).NewSelect().Model(race).Where("ra.id = ?", raceID).Scan(ctx); err != nil {
		return nil, fmt.Errorf("store.GetRace: %w", notFound(err))
	}
	return race, nil
}

// ListRaces returns the races of a class in sailing order.
func (r *Impl) ListRaces(ctx context.Context, db bun.IDB, classID int64) ([]models.Race, error) {
	var races []models.Race
	err := r.conn(db).NewSelect().Model(&races).
		Where("ra.class_id = ?", classID).
		Order("ra.order_index ASC", "ra.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("store.ListRaces: %w", err)
	}
	return races, nil
}

// CountRaces returns how many races a class has.
func (r *Impl) CountRaces(ctx context.Context, db bun.IDB, classID int64) (int, error) {
	n, err := r.conn(db).NewSelect().Model((*models.Race)(nil)).Where("class_id = ?", classID).Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("store.CountRaces: %w", err)
	}
	return n, nil
}

// ListEntries returns every entry of a class, confirmed or not.
func (r *Impl) ListEntries(ctx context.Context, db bun.IDB, classID int64) ([]models.Entry, error) {
	var entries []models.Entry
	err := r.conn(db).NewSelect().Model(&entries).
		Where("e.class_id = ?", classID).
		Order("e.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("store.ListEntries: %w", err)
	}
	return entries, nil
}
