package store

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/ZeMendes2393/sailscore/models"
)

// NextSequence increments and returns the named counter of a regatta. It
// must run inside a transaction: the counter row stays locked until commit.
func (r *Impl) NextSequence(ctx context.Context, db bun.IDB, regattaID int64, name string) (int64, error) {
	conn := r.conn(db)

	seed := &models.RegattaCounter{RegattaID: regattaID, Name: name}
	if _, err := conn.NewInsert().Model(seed).On("CONFLICT (regatta_id, name) DO NOTHING").Exec(ctx); err != nil {
		return 0, fmt.Errorf("store.NextSequence: seed: %w", err)
	}

	counter := new(models.RegattaCounter)
	err := conn.NewSelect().Model(counter).
		Where("rc.regatta_id = ? AND rc.name = ?", regattaID, name).
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		return 0, fmt.Errorf("store.NextSequence: lock: %w", notFound(err))
	}

	counter.Value++
	if _, err := conn.NewUpdate().Model(counter).Column("value").WherePK().Exec(ctx); err != nil {
		return 0, fmt.Errorf("store.NextSequence: update: %w", err)
	}
	return counter.Value, nil
}

// InsertProtest stores a protest.
func (r *Impl) InsertProtest(ctx context.Context, db bun.IDB, p *models.Protest) error {
	if _, err := r.conn(db).NewInsert().Model(p).Returning("*").Exec(ctx); err != nil {
		return fmt.Errorf("store.InsertProtest: %w", err)
	}
	return nil
}
