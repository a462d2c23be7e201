package store

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/ZeMendes2393/sailscore/fleets"
	"github.com/ZeMendes2393/sailscore/models"
)

func withRosters(q *bun.SelectQuery) *bun.SelectQuery {
	return q.
		Relation("Fleets", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("fl.order_index ASC")
		}).
		Relation("Fleets.Assignments", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("fa.id ASC")
		}).
		Relation("Fleets.Assignments.Entry")
}

// GetFleetSet loads a set with its fleets and assigned entries.
func (r *Impl) GetFleetSet(ctx context.Context, db bun.IDB, setID int64) (*models.FleetSet, error) {
	set := new(models.FleetSet)
	q := r.conn(db).NewSelect().Model(set).Where("fs.id = ?", setID)
	if err := withRosters(q).Scan(ctx); err != nil {
		return nil, fmt.Errorf("store.GetFleetSet: %w", notFound(err))
	}
	return set, nil
}

// LatestFleetSet returns the most recently created set of a class.
func (r *Impl) LatestFleetSet(ctx context.Context, db bun.IDB, classID int64) (*models.FleetSet, error) {
	set := new(models.FleetSet)
	q := r.conn(db).NewSelect().Model(set).
		Where("fs.class_id = ?", classID).
		Order("fs.created_at DESC", "fs.id DESC").
		Limit(1)
	if err := withRosters(q).Scan(ctx); err != nil {
		return nil, fmt.Errorf("store.LatestFleetSet: %w", notFound(err))
	}
	return set, nil
}

// ListFleetSets lists the sets of a class, oldest first. Published sets are
// ordered by publication time.
func (r *Impl) ListFleetSets(ctx context.Context, db bun.IDB, classID int64, publishedOnly bool) ([]models.FleetSet, error) {
	var sets []models.FleetSet
	q := r.conn(db).NewSelect().Model(&sets).Where("fs.class_id = ?", classID)
	if publishedOnly {
		q = q.Where("fs.is_published = TRUE").Order("fs.published_at ASC", "fs.id ASC")
	} else {
		q = q.Order("fs.created_at ASC", "fs.id ASC")
	}
	if err := withRosters(q).Scan(ctx); err != nil {
		return nil, fmt.Errorf("store.ListFleetSets: %w", err)
	}
	return sets, nil
}

// FleetSetLabels returns the labels in use for a class and phase.
func (r *Impl) FleetSetLabels(ctx context.Context, db bun.IDB, classID int64, phase string) ([]string, error) {
	var labels []string
	err := r.conn(db).NewSelect().Model((*models.FleetSet)(nil)).
		Column("label").
		Where("class_id = ? AND phase = ?", classID, phase).
		Scan(ctx, &labels)
	if err != nil {
		return nil, fmt.Errorf("store.FleetSetLabels: %w", err)
	}
	return labels, nil
}

// CreateFleetSet inserts set together with its generated fleets and their
// assignments, filling set.Fleets.
func (r *Impl) CreateFleetSet(ctx context.Context, db bun.IDB, set *models.FleetSet, generated []fleets.Fleet) error {
	conn := r.conn(db)
	if _, err := conn.NewInsert().Model(set).Returning("*").Exec(ctx); err != nil {
		return fmt.Errorf("store.CreateFleetSet: set: %w", err)
	}

	set.Fleets = make([]*models.Fleet, 0, len(generated))
	for _, g := range generated {
		f := &models.Fleet{FleetSetID: set.ID, Name: g.Name, Color: g.Color, OrderIndex: g.Order}
		if _, err := conn.NewInsert().Model(f).Returning("id").Exec(ctx); err != nil {
			return fmt.Errorf("store.CreateFleetSet: fleet %s: %w", g.Name, err)
		}

		f.Assignments = make([]*models.FleetAssignment, 0, len(g.Members))
		for _, entryID := range g.Members {
			f.Assignments = append(f.Assignments, &models.FleetAssignment{FleetSetID: set.ID, FleetID: f.ID, EntryID: entryID})
		}
		if len(f.Assignments) > 0 {
			if _, err := conn.NewInsert().Model(&f.Assignments).Returning("id").Exec(ctx); err != nil {
				return fmt.Errorf("store.CreateFleetSet: assignments for %s: %w", g.Name, err)
			}
		}
		set.Fleets = append(set.Fleets, f)
	}
	return nil
}

// UpdateFleetSetPublication writes the publication columns of set.
func (r *Impl) UpdateFleetSetPublication(ctx context.Context, db bun.IDB, set *models.FleetSet) error {
	res, err := r.conn(db).NewUpdate().Model(set).
		Column("is_published", "public_title", "published_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("store.UpdateFleetSetPublication: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("store.UpdateFleetSetPublication: %w", ErrNoRowsAffected)
	}
	return nil
}

// DeleteFleetSet removes a set; fleets and assignments cascade.
func (r *Impl) DeleteFleetSet(ctx context.Context, db bun.IDB, setID int64) error {
	res, err := r.conn(db).NewDelete().Model((*models.FleetSet)(nil)).Where("id = ?", setID).Exec(ctx)
	if err != nil {
		return fmt.Errorf("store.DeleteFleetSet: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("store.DeleteFleetSet: %w", ErrNoRowsAffected)
	}
	return nil
}

// GetFleet loads a fleet with its assigned entries.
func (r *Impl) GetFleet(ctx context.Context, db bun.IDB, fleetID int64) (*models.Fleet, error) {
	f := new(models.Fleet)
	err := r.conn(db).NewSelect().Model(f).
		Where("fl.id = ?", fleetID).
		Relation("Assignments").
		Relation("Assignments.Entry").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("store.GetFleet: %w", notFound(err))
	}
	return f, nil
}

// FleetSetRaces returns the races attached to a set in sailing order.
func (r *Impl) FleetSetRaces(ctx context.Context, db bun.IDB, setID int64) ([]models.Race, error) {
	var races []models.Race
	err := r.conn(db).NewSelect().Model(&races).
		Where("ra.fleet_set_id = ?", setID).
		Order("ra.order_index ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("store.FleetSetRaces: %w", err)
	}
	return races, nil
}

// AttachRaces points the given races of classID at setID and returns how
// many were updated.
func (r *Impl) AttachRaces(ctx context.Context, db bun.IDB, setID, classID int64, raceIDs []int64) (int, error) {
	if len(raceIDs) == 0 {
		return 0, nil
	}
	res, err := r.conn(db).NewUpdate().Model((*models.Race)(nil)).
		Set("fleet_set_id = ?", setID).
		Where("class_id = ?", classID).
		Where("id IN (?)", bun.In(raceIDs)).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("store.AttachRaces: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// DetachRaces clears the set from every race attached to it.
func (r *Impl) DetachRaces(ctx context.Context, db bun.IDB, setID int64) error {
	_, err := r.conn(db).NewUpdate().Model((*models.Race)(nil)).
		Set("fleet_set_id = NULL").
		Where("fleet_set_id = ?", setID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("store.DetachRaces: %w", err)
	}
	return nil
}
