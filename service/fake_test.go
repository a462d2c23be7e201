package service

import (
	"context"
	"sync"

	"github.com/uptrace/bun"

	"github.com/ZeMendes2393/sailscore/fleets"
	"github.com/ZeMendes2393/sailscore/models"
	"github.com/ZeMendes2393/sailscore/scoring"
	"github.com/ZeMendes2393/sailscore/store"
)

// FakeRepository is a programmable store.Repository. Unset funcs return
// zero values; every call is recorded in the trace.
type FakeRepository struct {
	mu    sync.Mutex
	trace []string

	RegattaExistsFunc func(ctx context.Context, db bun.IDB, regattaID int64) (bool, error)
	GetClassFunc      func(ctx context.Context, db bun.IDB, classID int64) (*models.RegattaClass, error)
	UpdateClassFunc   func(ctx context.Context, db bun.IDB, class *models.RegattaClass, columns ...string) error

	GetRaceFunc    func(ctx context.Context, db bun.IDB, raceID int64) (*models.Race, error)
	ListRacesFunc  func(ctx context.Context, db bun.IDB, classID int64) ([]models.Race, error)
	CountRacesFunc func(ctx context.Context, db bun.IDB, classID int64) (int, error)

	ListEntriesFunc func(ctx context.Context, db bun.IDB, classID int64) ([]models.Entry, error)

	ListRaceResultsFunc   func(ctx context.Context, db bun.IDB, raceID int64) ([]models.Result, error)
	ListClassResultsFunc  func(ctx context.Context, db bun.IDB, classID int64) ([]models.Result, error)
	DeleteRaceResultsFunc func(ctx context.Context, db bun.IDB, raceID int64, boats []scoring.BoatKey) error
	InsertResultsFunc     func(ctx context.Context, db bun.IDB, results []*models.Result) error
	ResultCountsFunc      func(ctx context.Context, db bun.IDB, raceIDs []int64) (map[int64]store.ResultCount, error)

	ListOverridesFunc    func(ctx context.Context, db bun.IDB, regattaID int64, classID *int64) ([]models.ScoringCodeOverride, error)
	ReplaceOverridesFunc func(ctx context.Context, db bun.IDB, regattaID int64, classID *int64, rows []models.ScoringCodeOverride) error

	GetFleetSetFunc               func(ctx context.Context, db bun.IDB, setID int64) (*models.FleetSet, error)
	LatestFleetSetFunc            func(ctx context.Context, db bun.IDB, classID int64) (*models.FleetSet, error)
	ListFleetSetsFunc             func(ctx context.Context, db bun.IDB, classID int64, publishedOnly bool) ([]models.FleetSet, error)
	FleetSetLabelsFunc            func(ctx context.Context, db bun.IDB, classID int64, phase string) ([]string, error)
	CreateFleetSetFunc            func(ctx context.Context, db bun.IDB, set *models.FleetSet, generated []fleets.Fleet) error
	UpdateFleetSetPublicationFunc func(ctx context.Context, db bun.IDB, set *models.FleetSet) error
	DeleteFleetSetFunc            func(ctx context.Context, db bun.IDB, setID int64) error
	GetFleetFunc                  func(ctx context.Context, db bun.IDB, fleetID int64) (*models.Fleet, error)
	FleetSetRacesFunc             func(ctx context.Context, db bun.IDB, setID int64) ([]models.Race, error)
	AttachRacesFunc               func(ctx context.Context, db bun.IDB, setID, classID int64, raceIDs []int64) (int, error)
	DetachRacesFunc               func(ctx context.Context, db bun.IDB, setID int64) error

	NextSequenceFunc  func(ctx context.Context, db bun.IDB, regattaID int64, name string) (int64, error)
	InsertProtestFunc func(ctx context.Context, db bun.IDB, p *models.Protest) error

	GetUserFunc    func(ctx context.Context, db bun.IDB, username string) (*models.User, error)
	CreateUserFunc func(ctx context.Context, db bun.IDB, u *models.User) error
}

var _ store.Repository = (*FakeRepository)(nil)

func (f *FakeRepository) record(step string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, step)
}

// Trace returns the calls made so far.
func (f *FakeRepository) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.trace...)
}

func (f *FakeRepository) RegattaExists(ctx context.Context, db bun.IDB, regattaID int64) (bool, error) {
	f.record("RegattaExists")
	if f.RegattaExistsFunc != nil {
		return f.RegattaExistsFunc(ctx, db, regattaID)
	}
	return true, nil
}

func (f *FakeRepository) GetClass(ctx context.Context, db bun.IDB, classID int64) (*models.RegattaClass, error) {
	f.record("GetClass")
	if f.GetClassFunc != nil {
		return f.GetClassFunc(ctx, db, classID)
	}
	return nil, store.ErrNotFound
}

func (f *FakeRepository) UpdateClass(ctx context.Context, db bun.IDB, class *models.RegattaClass, columns ...string) error {
	f.record("UpdateClass")
	if f.UpdateClassFunc != nil {
		return f.UpdateClassFunc(ctx, db, class, columns...)
	}
	return nil
}

func (f *FakeRepository) GetRace(ctx context.Context, db bun.IDB, raceID int64) (*models.Race, error) {
	f.record("GetRace")
	if f.GetRaceFunc != nil {
		return f.GetRaceFunc(ctx, db, raceID)
	}
	return nil, store.ErrNotFound
}

func (f *FakeRepository) ListRaces(ctx context.Context, db bun.IDB, classID int64) ([]models.Race, error) {
	f.record("ListRaces")
	if f.ListRacesFunc != nil {
		return f.ListRacesFunc(ctx, db, classID)
	}
	return nil, nil
}

func (f *FakeRepository) CountRaces(ctx context.Context, db bun.IDB, classID int64) (int, error) {
	f.record("CountRaces")
	if f.CountRacesFunc != nil {
		return f.CountRacesFunc(ctx, db, classID)
	}
	return 0, nil
}

func (f *FakeRepository) ListEntries(ctx context.Context, db bun.IDB, classID int64) ([]models.Entry, error) {
	f.record("ListEntries")
	if f.ListEntriesFunc != nil {
		return f.ListEntriesFunc(ctx, db, classID)
	}
	return nil, nil
}

func (f *FakeRepository) ListRaceResults(ctx context.Context, db bun.IDB, raceID int64) ([]models.Result, error) {
	f.record("ListRaceResults")
	if f.ListRaceResultsFunc != nil {
		return f.ListRaceResultsFunc(ctx, db, raceID)
	}
	return nil, nil
}

func (f *FakeRepository) ListClassResults(ctx context.Context, db bun.IDB, classID int64) ([]models.Result, error) {
	f.record("ListClassResults")
	if f.ListClassResultsFunc != nil {
		return f.ListClassResultsFunc(ctx, db, classID)
	}
	return nil, nil
}

func (f *FakeRepository) DeleteRaceResults(ctx context.Context, db bun.IDB, raceID int64, boats []scoring.BoatKey) error {
	f.record("DeleteRaceResults")
	if f.DeleteRaceResultsFunc != nil {
		return f.DeleteRaceResultsFunc(ctx, db, raceID, boats)
	}
	return nil
}

func (f *FakeRepository) InsertResults(ctx context.Context, db bun.IDB, results []*models.Result) error {
	f.record("InsertResults")
	if f.InsertResultsFunc != nil {
		return f.InsertResultsFunc(ctx, db, results)
	}
	return nil
}

func (f *FakeRepository) ResultCounts(ctx context.Context, db bun.IDB, raceIDs []int64) (map[int64]store.ResultCount, error) {
	f.record("ResultCounts")
	if f.ResultCountsFunc != nil {
		return f.ResultCountsFunc(ctx, db, raceIDs)
	}
	return map[int64]store.ResultCount{}, nil
}

func (f *FakeRepository) ListOverrides(ctx context.Context, db bun.IDB, regattaID int64, classID *int64) ([]models.ScoringCodeOverride, error) {
	f.record("ListOverrides")
	if f.ListOverridesFunc != nil {
		return f.ListOverridesFunc(ctx, db, regattaID, classID)
	}
	return nil, nil
}

func (f *FakeRepository) ReplaceOverrides(ctx context.Context, db bun.IDB, regattaID int64, classID *int64, rows []models.ScoringCodeOverride) error {
	f.record("ReplaceOverrides")
	if f.ReplaceOverridesFunc != nil {
		return f.ReplaceOverridesFunc(ctx, db, regattaID, classID, rows)
	}
	return nil
}

func (f *FakeRepository) GetFleetSet(ctx context.Context, db bun.IDB, setID int64) (*models.FleetSet, error) {
	f.record("GetFleetSet")
	if f.GetFleetSetFunc != nil {
		return f.GetFleetSetFunc(ctx, db, setID)
	}
	return nil, store.ErrNotFound
}

func (f *FakeRepository) LatestFleetSet(ctx context.Context, db bun.IDB, classID int64) (*models.FleetSet, error) {
	f.record("LatestFleetSet")
	if f.LatestFleetSetFunc != nil {
		return f.LatestFleetSetFunc(ctx, db, classID)
	}
	return nil, store.ErrNotFound
}

func (f *FakeRepository) ListFleetSets(ctx context.Context, db bun.IDB, classID int64, publishedOnly bool) ([]models.FleetSet, error) {
	f.record("ListFleetSets")
	if f.ListFleetSetsFunc != nil {
		return f.ListFleetSetsFunc(ctx, db, classID, publishedOnly)
	}
	return nil, nil
}

func (f *FakeRepository) FleetSetLabels(ctx context.Context, db bun.IDB, classID int64, phase string) ([]string, error) {
	f.record("FleetSetLabels")
	if f.FleetSetLabelsFunc != nil {
		return f.FleetSetLabelsFunc(ctx, db, classID, phase)
	}
	return nil, nil
}

func (f *FakeRepository) CreateFleetSet(ctx context.Context, db bun.IDB, set *models.FleetSet, generated []fleets.Fleet) error {
	f.record("CreateFleetSet")
	if f.CreateFleetSetFunc != nil {
		return f.CreateFleetSetFunc(ctx, db, set, generated)
	}
	return nil
}

func (f *FakeRepository) UpdateFleetSetPublication(ctx context.Context, db bun.IDB, set *models.FleetSet) error {
	f.record("UpdateFleetSetPublication")
	if f.UpdateFleetSetPublicationFunc != nil {
		return f.UpdateFleetSetPublicationFunc(ctx, db, set)
	}
	return nil
}

func (f *FakeRepository) DeleteFleetSet(ctx context.Context, db bun.IDB, setID int64) error {
	f.record("DeleteFleetSet")
	if f.DeleteFleetSetFunc != nil {
		return f.DeleteFleetSetFunc(ctx, db, setID)
	}
	return nil
}

func (f *FakeRepository) GetFleet(ctx context.Context, db bun.IDB, fleetID int64) (*models.Fleet, error) {
	f.record("GetFleet")
	if f.GetFleetFunc != nil {
		return f.GetFleetFunc(ctx, db, fleetID)
	}
	return nil, store.ErrNotFound
}

func (f *FakeRepository) FleetSetRaces(ctx context.Context, db bun.IDB, setID int64) ([]models.Race, error) {
	f.record("FleetSetRaces")
	if f.FleetSetRacesFunc != nil {
		return f.FleetSetRacesFunc(ctx, db, setID)
	}
	return nil, nil
}

func (f *FakeRepository) AttachRaces(ctx context.Context, db bun.IDB, setID, classID int64, raceIDs []int64) (int, error) {
	f.record("AttachRaces")
	if f.AttachRacesFunc != nil {
		return f.AttachRacesFunc(ctx, db, setID, classID, raceIDs)
	}
	return len(raceIDs), nil
}

func (f *FakeRepository) DetachRaces(ctx context.Context, db bun.IDB, setID int64) error {
	f.record("DetachRaces")
	if f.DetachRacesFunc != nil {
		return f.DetachRacesFunc(ctx, db, setID)
	}
	return nil
}

func (f *FakeRepository) NextSequence(ctx context.Context, db bun.IDB, regattaID int64, name string) (int64, error) {
	f.record("NextSequence")
	if f.NextSequenceFunc != nil {
		return f.NextSequenceFunc(ctx, db, regattaID, name)
	}
	return 1, nil
}

func (f *FakeRepository) InsertProtest(ctx context.Context, db bun.IDB, p *models.Protest) error {
	f.record("InsertProtest")
	if f.InsertProtestFunc != nil {
		return f.InsertProtestFunc(ctx, db, p)
	}
	return nil
}

func (f *FakeRepository) GetUser(ctx context.Context, db bun.IDB, username string) (*models.User, error) {
	f.record("GetUser")
	if f.GetUserFunc != nil {
		return f.GetUserFunc(ctx, db, username)
	}
	return nil, store.ErrNotFound
}

func (f *FakeRepository) CreateUser(ctx context.Context, db bun.IDB, u *models.User) error {
	f.record("CreateUser")
	if f.CreateUserFunc != nil {
		return f.CreateUserFunc(ctx, db, u)
	}
	return nil
}

// FakePublisher records published events.
type FakePublisher struct {
	mu     sync.Mutex
	Topics []string
	Events []any
	Err    error
}

func (p *FakePublisher) Publish(topic string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Topics = append(p.Topics, topic)
	p.Events = append(p.Events, payload)
	return p.Err
}
