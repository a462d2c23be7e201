package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/ZeMendes2393/sailscore/apperr"
	"github.com/ZeMendes2393/sailscore/events"
	"github.com/ZeMendes2393/sailscore/fleets"
	"github.com/ZeMendes2393/sailscore/metrics"
	"github.com/ZeMendes2393/sailscore/models"
	"github.com/ZeMendes2393/sailscore/scoring"
	"github.com/ZeMendes2393/sailscore/store"
)

// Default labels for generated sets.
const (
	DefaultQualifyingLabel = "Qualifying"
	DefaultFinalsLabel     = "Finals"
)

const (
	fleetSetLabelConstraint = "fleet_sets_label_unique"
	createSetAttempts       = 3
)

// QualifyingInput asks for a random initial split.
type QualifyingInput struct {
	FleetCount int    `json:"fleet_count"`
	Label      string `json:"label" validate:"max=80"`
}

// ReshuffleInput asks for a new qualifying set seeded from the standings.
// FleetCount 0 keeps the fleet count of the previous set.
type ReshuffleInput struct {
	FleetCount int    `json:"fleet_count"`
	Label      string `json:"label" validate:"max=80"`
}

// FinalsInput asks for finals groups sliced from the standings.
type FinalsInput struct {
	Label  string         `json:"label" validate:"max=80"`
	Groups []fleets.Group `json:"groups" validate:"dive"`
}

// BlockingRace is a race that still lacks results.
type BlockingRace struct {
	RaceID   int64  `json:"race_id"`
	Name     string `json:"name"`
	Unscored int    `json:"unscored"`
}

// CreateQualifying splits the confirmed, paid entries of a class at random
// into fleet count qualifying fleets.
func (s *Service) CreateQualifying(ctx context.Context, classID int64, in QualifyingInput) (*models.FleetSet, error) {
	var set *models.FleetSet
	err := s.createInTx(ctx, nil, func(ctx context.Context, db bun.IDB) error {
		class, err := s.repo.GetClass(ctx, db, classID)
		if err != nil {
			return missing(err, "class", classID)
		}
		entries, err := s.repo.ListEntries(ctx, db, classID)
		if err != nil {
			return err
		}
		generated, err := fleets.InitialSplit(splitEligible(entries), in.FleetCount, s.rng())
		if err != nil {
			return err
		}
		set, err = s.createSet(ctx, db, class, models.PhaseQualifying, labelOr(in.Label, DefaultQualifyingLabel), generated)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.fleetSetCreated(set, "initial")
	return set, nil
}

// Reshuffle builds a new qualifying set by snake seeding over the current
// standings. Every race attached to the latest set must be fully scored.
func (s *Service) Reshuffle(ctx context.Context, classID int64, in ReshuffleInput) (*models.FleetSet, error) {
	var set *models.FleetSet
	err := s.createInTx(ctx, repeatableRead, func(ctx context.Context, db bun.IDB) error {
		class, err := s.repo.GetClass(ctx, db, classID)
		if err != nil {
			return missing(err, "class", classID)
		}
		prev, err := s.repo.LatestFleetSet(ctx, db, classID)
		if errors.Is(err, store.ErrNotFound) {
			return apperr.Precondition(apperr.CodeNoPreviousFleetSet, "class %d has no fleet set to reshuffle", classID).
				With("class_id", classID)
		}
		if err != nil {
			return err
		}
		if err := s.checkScored(ctx, db, prev); err != nil {
			return err
		}

		count := in.FleetCount
		if count == 0 {
			count = len(prev.Fleets)
		}
		ranked, err := s.rankedEntries(ctx, db, class)
		if err != nil {
			return err
		}
		generated, err := fleets.Reshuffle(ranked, count)
		if err != nil {
			return err
		}
		set, err = s.createSet(ctx, db, class, models.PhaseQualifying, labelOr(in.Label, DefaultQualifyingLabel), generated)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.fleetSetCreated(set, "reshuffle")
	return set, nil
}

// Finals slices the current standings into finals groups. When the class
// already sails in fleets, the latest set must be fully scored first.
func (s *Service) Finals(ctx context.Context, classID int64, in FinalsInput) (*models.FleetSet, error) {
	var set *models.FleetSet
	err := s.createInTx(ctx, repeatableRead, func(ctx context.Context, db bun.IDB) error {
		class, err := s.repo.GetClass(ctx, db, classID)
		if err != nil {
			return missing(err, "class", classID)
		}
		prev, err := s.repo.LatestFleetSet(ctx, db, classID)
		switch {
		case errors.Is(err, store.ErrNotFound):
		case err != nil:
			return err
		default:
			if err := s.checkScored(ctx, db, prev); err != nil {
				return err
			}
		}

		ranked, err := s.rankedEntries(ctx, db, class)
		if err != nil {
			return err
		}
		generated, err := fleets.Finals(ranked, in.Groups)
		if err != nil {
			return err
		}
		set, err = s.createSet(ctx, db, class, models.PhaseFinals, labelOr(in.Label, DefaultFinalsLabel), generated)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.fleetSetCreated(set, "finals")
	return set, nil
}

// FleetSets lists every set of a class with rosters, oldest first.
func (s *Service) FleetSets(ctx context.Context, classID int64) ([]models.FleetSet, error) {
	if _, err := s.repo.GetClass(ctx, nil, classID); err != nil {
		return nil, missing(err, "class", classID)
	}
	return s.repo.ListFleetSets(ctx, nil, classID, false)
}

// AttachRaces marks races of the set's class as sailed in the set.
func (s *Service) AttachRaces(ctx context.Context, setID int64, raceIDs []int64) (*models.FleetSet, error) {
	ids := uniqueIDs(raceIDs)
	var set *models.FleetSet
	err := s.runInTx(ctx, nil, func(ctx context.Context, db bun.IDB) error {
		var err error
		set, err = s.repo.GetFleetSet(ctx, db, setID)
		if err != nil {
			return missing(err, "fleet set", setID)
		}
		n, err := s.repo.AttachRaces(ctx, db, set.ID, set.ClassID, ids)
		if err != nil {
			return err
		}
		if n != len(ids) {
			return apperr.Validation(apperr.CodeInvalidRequest, "%d of %d races do not belong to class %d", len(ids)-n, len(ids), set.ClassID).
				With("race_ids", ids)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return set, nil
}

// PublishFleetSet makes a set visible on the public rosters. An empty title
// falls back to the label.
func (s *Service) PublishFleetSet(ctx context.Context, setID int64, title string) (*models.FleetSet, error) {
	set, err := s.setPublication(ctx, setID, func(set *models.FleetSet) {
		now := s.now()
		set.IsPublished = true
		set.PublishedAt = &now
		if t := strings.TrimSpace(title); t != "" {
			set.PublicTitle = &t
		} else {
			set.PublicTitle = nil
		}
	})
	if err != nil {
		return nil, err
	}
	s.publish(events.TopicFleetSetPublished, events.FleetSetChanged{
		RegattaID:  set.RegattaID,
		ClassID:    set.ClassID,
		FleetSetID: set.ID,
		Phase:      set.Phase,
		Label:      set.Label,
		Title:      set.Title(),
		At:         s.now(),
	})
	return set, nil
}

// UnpublishFleetSet hides a set from the public rosters.
func (s *Service) UnpublishFleetSet(ctx context.Context, setID int64) (*models.FleetSet, error) {
	return s.setPublication(ctx, setID, func(set *models.FleetSet) {
		set.IsPublished = false
		set.PublishedAt = nil
	})
}

func (s *Service) setPublication(ctx context.Context, setID int64, apply func(*models.FleetSet)) (*models.FleetSet, error) {
	var set *models.FleetSet
	err := s.runInTx(ctx, nil, func(ctx context.Context, db bun.IDB) error {
		var err error
		set, err = s.repo.GetFleetSet(ctx, db, setID)
		if err != nil {
			return missing(err, "fleet set", setID)
		}
		apply(set)
		return s.repo.UpdateFleetSetPublication(ctx, db, set)
	})
	if err != nil {
		return nil, err
	}
	return set, nil
}

// DeleteFleetSet removes a set and detaches its races. Sets whose races
// already hold scored results are kept unless force is set.
func (s *Service) DeleteFleetSet(ctx context.Context, setID int64, force bool) error {
	return s.runInTx(ctx, nil, func(ctx context.Context, db bun.IDB) error {
		set, err := s.repo.GetFleetSet(ctx, db, setID)
		if err != nil {
			return missing(err, "fleet set", setID)
		}
		races, err := s.repo.FleetSetRaces(ctx, db, set.ID)
		if err != nil {
			return err
		}
		counts, err := s.repo.ResultCounts(ctx, db, raceIDs(races))
		if err != nil {
			return err
		}

		scored := 0
		var withResults []int64
		for _, r := range races {
			c := counts[r.ID]
			if n := c.Total - c.Unscored; n > 0 {
				scored += n
				withResults = append(withResults, r.ID)
			}
		}
		if scored > 0 && !force {
			return apperr.Precondition(apperr.CodeFleetSetHasResults, "fleet set %d has %d scored results in %d races", set.ID, scored, len(withResults)).
				With("scored_results", scored).
				With("race_ids", withResults)
		}

		if err := s.repo.DetachRaces(ctx, db, set.ID); err != nil {
			return err
		}
		if err := s.repo.DeleteFleetSet(ctx, db, set.ID); err != nil {
			return err
		}
		s.logger.Info("fleet set deleted",
			zap.Int64("fleet_set_id", set.ID),
			zap.Bool("forced", force),
			zap.Int("scored_results", scored))
		return nil
	})
}

// PublicFleet is a published fleet roster.
type PublicFleet struct {
	Name  string       `json:"name"`
	Color string       `json:"color"`
	Boats []PublicBoat `json:"boats"`
}

// PublicBoat is one boat of a public roster.
type PublicBoat struct {
	SailNumber  string `json:"sail_number"`
	CountryCode string `json:"country_code,omitempty"`
	BoatName    string `json:"boat_name,omitempty"`
	Skipper     string `json:"skipper,omitempty"`
}

// PublicFleetSet is a published set as shown to the public.
type PublicFleetSet struct {
	ID          int64         `json:"id"`
	Title       string        `json:"title"`
	Phase       string        `json:"phase"`
	PublishedAt *time.Time    `json:"published_at,omitempty"`
	Fleets      []PublicFleet `json:"fleets"`
}

// PublicFleetSets lists the published sets of a class in publication order.
func (s *Service) PublicFleetSets(ctx context.Context, classID int64) ([]PublicFleetSet, error) {
	if _, err := s.repo.GetClass(ctx, nil, classID); err != nil {
		return nil, missing(err, "class", classID)
	}
	sets, err := s.repo.ListFleetSets(ctx, nil, classID, true)
	if err != nil {
		return nil, err
	}
	out := make([]PublicFleetSet, 0, len(sets))
	for i := range sets {
		set := &sets[i]
		if !set.IsPublished {
			continue
		}
		pub := PublicFleetSet{ID: set.ID, Title: set.Title(), Phase: set.Phase, PublishedAt: set.PublishedAt}
		for _, f := range set.Fleets {
			pf := PublicFleet{Name: f.Name, Color: f.Color, Boats: []PublicBoat{}}
			for _, a := range f.Assignments {
				if a.Entry == nil {
					continue
				}
				pf.Boats = append(pf.Boats, PublicBoat{
					SailNumber:  a.Entry.SailNumber,
					CountryCode: a.Entry.CountryCode,
					BoatName:    a.Entry.BoatName,
					Skipper:     a.Entry.Skipper,
				})
			}
			pub.Fleets = append(pub.Fleets, pf)
		}
		out = append(out, pub)
	}
	return out, nil
}

// checkScored fails with UnscoredRacesRemain when a race attached to set
// has a result without points or a boat of the set without a result.
// Rows of boats outside the set never stand in for a missing member.
func (s *Service) checkScored(ctx context.Context, db bun.IDB, set *models.FleetSet) error {
	races, err := s.repo.FleetSetRaces(ctx, db, set.ID)
	if err != nil {
		return err
	}

	var members []scoring.BoatKey
	for _, f := range set.Fleets {
		for _, a := range f.Assignments {
			if a.Entry != nil {
				members = append(members, a.Entry.Boat())
			}
		}
	}

	var blocking []BlockingRace
	ids := []int64{}
	total := 0
	for _, r := range races {
		results, err := s.repo.ListRaceResults(ctx, db, r.ID)
		if err != nil {
			return err
		}
		have := make(map[scoring.BoatKey]bool, len(results))
		unscored := 0
		for i := range results {
			have[results[i].Boat()] = true
			if results[i].Points == nil {
				unscored++
			}
		}
		for _, b := range members {
			if !have[b] {
				unscored++
			}
		}
		if unscored == 0 {
			continue
		}
		blocking = append(blocking, BlockingRace{RaceID: r.ID, Name: r.Name, Unscored: unscored})
		ids = append(ids, r.ID)
		total += unscored
	}
	if len(blocking) == 0 {
		return nil
	}
	return apperr.Precondition(apperr.CodeUnscoredRacesRemain, "%d races of %q still have %d unscored results", len(blocking), set.Label, total).
		With("race_ids", ids).
		With("unscored_results", total).
		With("races", blocking)
}

// rankedEntries returns the confirmed, paid entries of a class best first.
// Entries without any result follow in sail-number order.
func (s *Service) rankedEntries(ctx context.Context, db bun.IDB, class *models.RegattaClass) ([]int64, error) {
	standings, err := s.rankClass(ctx, db, class, false)
	if err != nil {
		return nil, err
	}
	entries, err := s.repo.ListEntries(ctx, db, class.ID)
	if err != nil {
		return nil, err
	}

	eligible := make(map[int64]*models.Entry)
	for i := range entries {
		if entries[i].Confirmed && entries[i].Paid {
			eligible[entries[i].ID] = &entries[i]
		}
	}

	out := make([]int64, 0, len(eligible))
	placed := make(map[int64]bool, len(eligible))
	for _, st := range standings.Standings {
		if _, ok := eligible[st.EntryID]; ok && !placed[st.EntryID] {
			out = append(out, st.EntryID)
			placed[st.EntryID] = true
		}
	}

	var rest []*models.Entry
	for id, e := range eligible {
		if !placed[id] {
			rest = append(rest, e)
		}
	}
	sort.Slice(rest, func(i, j int) bool {
		if rest[i].Boat() != rest[j].Boat() {
			return rest[i].Boat().Less(rest[j].Boat())
		}
		return rest[i].ID < rest[j].ID
	})
	for _, e := range rest {
		out = append(out, e.ID)
	}
	return out, nil
}

// createInTx runs a fleet set creation in a transaction and reruns it when a
// concurrent create took the same label or the snapshot went stale. Each run
// recomputes the label from what is committed.
func (s *Service) createInTx(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context, db bun.IDB) error) error {
	for attempt := 1; ; attempt++ {
		err := s.runInTx(ctx, opts, fn)
		if err == nil || attempt >= createSetAttempts || !(labelTaken(err) || retryable(err)) {
			return err
		}
		s.logger.Warn("retrying fleet set creation", zap.Int("attempt", attempt), zap.Error(err))
	}
}

// labelTaken reports a unique violation on the fleet set label. Drivers that
// do not name the constraint are trusted on the SQLSTATE alone.
func labelTaken(err error) bool {
	var pgErr sqlStateError
	if !errors.As(err, &pgErr) || pgErr.Field('C') != "23505" {
		return false
	}
	name := pgErr.Field('n')
	return name == "" || name == fleetSetLabelConstraint
}

func (s *Service) createSet(ctx context.Context, db bun.IDB, class *models.RegattaClass, phase, label string, generated []fleets.Fleet) (*models.FleetSet, error) {
	labels, err := s.repo.FleetSetLabels(ctx, db, class.ID, phase)
	if err != nil {
		return nil, err
	}
	set := &models.FleetSet{
		RegattaID: class.RegattaID,
		ClassID:   class.ID,
		Phase:     phase,
		Label:     fleets.UniqueLabel(labels, label),
		CreatedAt: s.now(),
	}
	if err := s.repo.CreateFleetSet(ctx, db, set, generated); err != nil {
		return nil, err
	}
	return set, nil
}

func (s *Service) fleetSetCreated(set *models.FleetSet, kind string) {
	metrics.RecordFleetSet(kind)
	s.publish(events.TopicFleetSetCreated, events.FleetSetChanged{
		RegattaID:  set.RegattaID,
		ClassID:    set.ClassID,
		FleetSetID: set.ID,
		Phase:      set.Phase,
		Label:      set.Label,
		At:         s.now(),
	})
	s.logger.Info("fleet set created",
		zap.Int64("class_id", set.ClassID),
		zap.Int64("fleet_set_id", set.ID),
		zap.String("kind", kind),
		zap.String("label", set.Label),
		zap.Int("fleets", len(set.Fleets)))
}

// splitEligible returns the confirmed, paid entries in id order.
func splitEligible(entries []models.Entry) []int64 {
	var ids []int64
	for i := range entries {
		if entries[i].Confirmed && entries[i].Paid {
			ids = append(ids, entries[i].ID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func labelOr(label, fallback string) string {
	if l := strings.TrimSpace(label); l != "" {
		return l
	}
	return fallback
}

func raceIDs(races []models.Race) []int64 {
	ids := make([]int64, len(races))
	for i, r := range races {
		ids[i] = r.ID
	}
	return ids
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
