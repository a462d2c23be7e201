package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sort"
	"strconv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/ZeMendes2393/sailscore/fleets"
	"github.com/ZeMendes2393/sailscore/models"
	"github.com/ZeMendes2393/sailscore/scoring"
	"github.com/ZeMendes2393/sailscore/store"
)

var testNow = time.Date(2026, 7, 4, 14, 0, 0, 0, time.UTC)

// world is an in-memory class backing a FakeRepository.
type world struct {
	class     models.RegattaClass
	races     []*models.Race
	entries   []*models.Entry
	results   []models.Result
	overrides []models.ScoringCodeOverride
	sets      []*models.FleetSet
	nextID    int64
}

// newWorld builds a one-design class with boats entries (ids and sail
// numbers 1..boats, all confirmed and paid) and races races (ids 10, 20, ...).
func newWorld(boats, races int) *world {
	w := &world{
		class:  models.RegattaClass{ID: 1, RegattaID: 100, Name: "ILCA 7", ClassType: models.ClassOneDesign},
		nextID: 1000,
	}
	for i := 1; i <= boats; i++ {
		w.entries = append(w.entries, &models.Entry{
			ID: int64(i), RegattaID: 100, ClassID: 1,
			SailNumber: strconv.Itoa(i),
			Skipper:    fmt.Sprintf("Skipper %d", i),
			Confirmed:  true,
			Paid:       true,
		})
	}
	for i := 1; i <= races; i++ {
		w.races = append(w.races, &models.Race{ID: int64(10 * i), RegattaID: 100, ClassID: 1, Name: fmt.Sprintf("R%d", i), OrderIndex: i})
	}
	return w
}

func (w *world) id() int64 {
	w.nextID++
	return w.nextID
}

func (w *world) race(id int64) *models.Race {
	for _, r := range w.races {
		if r.ID == id {
			return r
		}
	}
	return nil
}

func (w *world) entry(id int64) *models.Entry {
	for _, e := range w.entries {
		if e.ID == id {
			return e
		}
	}
	return nil
}

func pts(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

// finish stores a finishing order for a race: the first sail scores 1.
func (w *world) finish(raceID int64, sails ...string) {
	for i, sail := range sails {
		w.results = append(w.results, models.Result{
			ID: w.id(), RaceID: raceID, RegattaID: 100, ClassID: 1,
			SailNumber: sail, Position: i + 1, Points: pts(strconv.Itoa(i + 1)),
		})
	}
}

// addSet stores a fleet set with one fleet per member list, entries by id.
func (w *world) addSet(label string, members ...[]int64) *models.FleetSet {
	generated := make([]fleets.Fleet, len(members))
	for i, m := range members {
		generated[i] = fleets.Fleet{Name: fmt.Sprintf("F%d", i+1), Order: i + 1, Members: m}
	}
	set := &models.FleetSet{RegattaID: 100, ClassID: 1, Phase: models.PhaseQualifying, Label: label}
	w.createSet(set, generated)
	return set
}

func (w *world) createSet(set *models.FleetSet, generated []fleets.Fleet) {
	set.ID = w.id()
	set.Fleets = nil
	for _, g := range generated {
		f := &models.Fleet{ID: w.id(), FleetSetID: set.ID, Name: g.Name, Color: g.Color, OrderIndex: g.Order}
		for _, entryID := range g.Members {
			f.Assignments = append(f.Assignments, &models.FleetAssignment{
				ID: w.id(), FleetSetID: set.ID, FleetID: f.ID, EntryID: entryID, Entry: w.entry(entryID),
			})
		}
		set.Fleets = append(set.Fleets, f)
	}
	w.sets = append(w.sets, set)
}

func (w *world) attach(set *models.FleetSet, raceIDs ...int64) {
	for _, id := range raceIDs {
		setID := set.ID
		w.race(id).FleetSetID = &setID
	}
}

func (w *world) raceResults(raceID int64) []models.Result {
	var out []models.Result
	for _, r := range w.results {
		if r.RaceID == raceID {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}

func (w *world) repo() *FakeRepository {
	return &FakeRepository{
		GetClassFunc: func(_ context.Context, _ bun.IDB, classID int64) (*models.RegattaClass, error) {
			if classID != w.class.ID {
				return nil, store.ErrNotFound
			}
			c := w.class
			return &c, nil
		},
		UpdateClassFunc: func(_ context.Context, _ bun.IDB, class *models.RegattaClass, _ ...string) error {
			w.class = *class
			return nil
		},
		GetRaceFunc: func(_ context.Context, _ bun.IDB, raceID int64) (*models.Race, error) {
			if r := w.race(raceID); r != nil {
				c := *r
				return &c, nil
			}
			return nil, store.ErrNotFound
		},
		ListRacesFunc: func(_ context.Context, _ bun.IDB, _ int64) ([]models.Race, error) {
			out := make([]models.Race, len(w.races))
			for i, r := range w.races {
				out[i] = *r
			}
			return out, nil
		},
		CountRacesFunc: func(_ context.Context, _ bun.IDB, _ int64) (int, error) {
			return len(w.races), nil
		},
		ListEntriesFunc: func(_ context.Context, _ bun.IDB, _ int64) ([]models.Entry, error) {
			out := make([]models.Entry, len(w.entries))
			for i, e := range w.entries {
				out[i] = *e
			}
			return out, nil
		},
		ListRaceResultsFunc: func(_ context.Context, _ bun.IDB, raceID int64) ([]models.Result, error) {
			return w.raceResults(raceID), nil
		},
		ListClassResultsFunc: func(_ context.Context, _ bun.IDB, _ int64) ([]models.Result, error) {
			return append([]models.Result(nil), w.results...), nil
		},
		DeleteRaceResultsFunc: func(_ context.Context, _ bun.IDB, raceID int64, boats []scoring.BoatKey) error {
			drop := make(map[scoring.BoatKey]bool, len(boats))
			for _, b := range boats {
				drop[b] = true
			}
			kept := w.results[:0]
			for _, r := range w.results {
				if r.RaceID == raceID && (boats == nil || drop[r.Boat()]) {
					continue
				}
				kept = append(kept, r)
			}
			w.results = kept
			return nil
		},
		InsertResultsFunc: func(_ context.Context, _ bun.IDB, results []*models.Result) error {
			for _, r := range results {
				r.ID = w.id()
				w.results = append(w.results, *r)
			}
			return nil
		},
		ResultCountsFunc: func(_ context.Context, _ bun.IDB, raceIDs []int64) (map[int64]store.ResultCount, error) {
			out := make(map[int64]store.ResultCount)
			for _, id := range raceIDs {
				var c store.ResultCount
				for _, r := range w.raceResults(id) {
					c.Total++
					if r.Points == nil {
						c.Unscored++
					}
				}
				if c.Total > 0 {
					out[id] = c
				}
			}
			return out, nil
		},
		ListOverridesFunc: func(_ context.Context, _ bun.IDB, _ int64, classID *int64) ([]models.ScoringCodeOverride, error) {
			var out []models.ScoringCodeOverride
			for _, o := range w.overrides {
				if (classID == nil) == (o.ClassID == nil) {
					out = append(out, o)
				}
			}
			return out, nil
		},
		ReplaceOverridesFunc: func(_ context.Context, _ bun.IDB, _ int64, classID *int64, rows []models.ScoringCodeOverride) error {
			var kept []models.ScoringCodeOverride
			for _, o := range w.overrides {
				if (classID == nil) != (o.ClassID == nil) {
					kept = append(kept, o)
				}
			}
			for _, r := range rows {
				r.ClassID = classID
				kept = append(kept, r)
			}
			w.overrides = kept
			return nil
		},
		GetFleetSetFunc: func(_ context.Context, _ bun.IDB, setID int64) (*models.FleetSet, error) {
			for _, s := range w.sets {
				if s.ID == setID {
					return s, nil
				}
			}
			return nil, store.ErrNotFound
		},
		LatestFleetSetFunc: func(_ context.Context, _ bun.IDB, _ int64) (*models.FleetSet, error) {
			if len(w.sets) == 0 {
				return nil, store.ErrNotFound
			}
			return w.sets[len(w.sets)-1], nil
		},
		ListFleetSetsFunc: func(_ context.Context, _ bun.IDB, _ int64, publishedOnly bool) ([]models.FleetSet, error) {
			var out []models.FleetSet
			for _, s := range w.sets {
				if !publishedOnly || s.IsPublished {
					out = append(out, *s)
				}
			}
			if publishedOnly {
				sort.SliceStable(out, func(i, j int) bool { return out[i].PublishedAt.Before(*out[j].PublishedAt) })
			}
			return out, nil
		},
		FleetSetLabelsFunc: func(_ context.Context, _ bun.IDB, _ int64, phase string) ([]string, error) {
			var out []string
			for _, s := range w.sets {
				if s.Phase == phase {
					out = append(out, s.Label)
				}
			}
			return out, nil
		},
		CreateFleetSetFunc: func(_ context.Context, _ bun.IDB, set *models.FleetSet, generated []fleets.Fleet) error {
			w.createSet(set, generated)
			return nil
		},
		DeleteFleetSetFunc: func(_ context.Context, _ bun.IDB, setID int64) error {
			for i, s := range w.sets {
				if s.ID == setID {
					w.sets = append(w.sets[:i], w.sets[i+1:]...)
					return nil
				}
			}
			return store.ErrNoRowsAffected
		},
		GetFleetFunc: func(_ context.Context, _ bun.IDB, fleetID int64) (*models.Fleet, error) {
			for _, s := range w.sets {
				for _, f := range s.Fleets {
					if f.ID == fleetID {
						return f, nil
					}
				}
			}
			return nil, store.ErrNotFound
		},
		FleetSetRacesFunc: func(_ context.Context, _ bun.IDB, setID int64) ([]models.Race, error) {
			var out []models.Race
			for _, r := range w.races {
				if r.FleetSetID != nil && *r.FleetSetID == setID {
					out = append(out, *r)
				}
			}
			return out, nil
		},
		AttachRacesFunc: func(_ context.Context, _ bun.IDB, setID, classID int64, raceIDs []int64) (int, error) {
			n := 0
			for _, id := range raceIDs {
				if r := w.race(id); r != nil && r.ClassID == classID {
					sid := setID
					r.FleetSetID = &sid
					n++
				}
			}
			return n, nil
		},
		DetachRacesFunc: func(_ context.Context, _ bun.IDB, setID int64) error {
			for _, r := range w.races {
				if r.FleetSetID != nil && *r.FleetSetID == setID {
					r.FleetSetID = nil
				}
			}
			return nil
		},
	}
}

func newTestService(t *testing.T, repo store.Repository, pub Publisher) *Service {
	t.Helper()
	s := New(nil, repo, pub, zap.NewNop(), time.Minute)
	s.now = func() time.Time { return testNow }
	s.rng = func() *rand.Rand { return rand.New(rand.NewPCG(1, 2)) }
	return s
}

func countCalls(trace []string, step string) int {
	n := 0
	for _, s := range trace {
		if s == step {
			n++
		}
	}
	return n
}
