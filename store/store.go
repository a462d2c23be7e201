// Package store is the PostgreSQL persistence layer. Every method takes the
// bun.IDB to run on so that callers can compose several calls in one
// transaction; a nil IDB means the store's own connection.
package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"github.com/ZeMendes2393/sailscore/fleets"
	"github.com/ZeMendes2393/sailscore/models"
	"github.com/ZeMendes2393/sailscore/scoring"
)

// Repository is the full persistence contract used by the services.
//
// Error semantics:
//   - ErrNotFound: the record does not exist
//   - ErrNoRowsAffected: an UPDATE/DELETE matched nothing
//   - anything else: infrastructure failure
type Repository interface {
	RegattaExists(ctx context.Context, db bun.IDB, regattaID int64) (bool, error)
	GetClass(ctx context.Context, db bun.IDB, classID int64) (*models.RegattaClass, error)
	UpdateClass(ctx context.Context, db bun.IDB, class *models.RegattaClass, columns ...string) error

	GetRace(ctx context.Context, db bun.IDB, raceID int64) (*models.Race, error)
	ListRaces(ctx context.Context, db bun.IDB, classID int64) ([]models.Race, error)
	CountRaces(ctx context.Context, db bun.IDB, classID int64) (int, error)

	ListEntries(ctx context.Context, db bun.IDB, classID int64) ([]models.Entry, error)

	ListRaceResults(ctx context.Context, db bun.IDB, raceID int64) ([]models.Result, error)
	ListClassResults(ctx context.Context, db bun.IDB, classID int64) ([]models.Result, error)
	// DeleteRaceResults removes the results of a race; with boats set only
	// those boats' rows go.
	DeleteRaceResults(ctx context.Context, db bun.IDB, raceID int64, boats []scoring.BoatKey) error
	InsertResults(ctx context.Context, db bun.IDB, results []*models.Result) error
	// ResultCounts returns, per race, how many results exist and how many of
	// them have no points yet.
	ResultCounts(ctx context.Context, db bun.IDB, raceIDs []int64) (map[int64]ResultCount, error)

	ListOverrides(ctx context.Context, db bun.IDB, regattaID int64, classID *int64) ([]models.ScoringCodeOverride, error)
	ReplaceOverrides(ctx context.Context, db bun.IDB, regattaID int64, classID *int64, rows []models.ScoringCodeOverride) error

	GetFleetSet(ctx context.Context, db bun.IDB, setID int64) (*models.FleetSet, error)
	LatestFleetSet(ctx context.Context, db bun.IDB, classID int64) (*models.FleetSet, error)
	ListFleetSets(ctx context.Context, db bun.IDB, classID int64, publishedOnly bool) ([]models.FleetSet, error)
	FleetSetLabels(ctx context.Context, db bun.IDB, classID int64, phase string) ([]string, error)
	CreateFleetSet(ctx context.Context, db bun.IDB, set *models.FleetSet, generated []fleets.Fleet) error
	UpdateFleetSetPublication(ctx context.Context, db bun.IDB, set *models.FleetSet) error
	DeleteFleetSet(ctx context.Context, db bun.IDB, setID int64) error
	GetFleet(ctx context.Context, db bun.IDB, fleetID int64) (*models.Fleet, error)
	FleetSetRaces(ctx context.Context, db bun.IDB, setID int64) ([]models.Race, error)
	AttachRaces(ctx context.Context, db bun.IDB, setID, classID int64, raceIDs []int64) (int, error)
	DetachRaces(ctx context.Context, db bun.IDB, setID int64) error

	NextSequence(ctx context.Context, db bun.IDB, regattaID int64, name string) (int64, error)
	InsertProtest(ctx context.Context, db bun.IDB, p *models.Protest) error

	GetUser(ctx context.Context, db bun.IDB, username string) (*models.User, error)
	CreateUser(ctx context.Context, db bun.IDB, u *models.User) error
}

// ResultCount summarises the stored results of one race.
type ResultCount struct {
	Total    int `bun:"total" json:"total"`
	Unscored int `bun:"unscored" json:"unscored"`
}

// Impl implements Repository on bun.
type Impl struct {
	db *bun.DB
}

var _ Repository = (*Impl)(nil)

// New returns a repository on db.
func New(db *bun.DB) *Impl {
	return &Impl{db: db}
}

func (r *Impl) conn(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
