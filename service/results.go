package service

import (
	"context"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/ZeMendes2393/sailscore/apperr"
	"github.com/ZeMendes2393/sailscore/events"
	"github.com/ZeMendes2393/sailscore/metrics"
	"github.com/ZeMendes2393/sailscore/models"
	"github.com/ZeMendes2393/sailscore/scoring"
)

// ScopeAll replaces every result of a race.
const ScopeAll = "all"

// ResultInput is one submitted row.
type ResultInput struct {
	SailNumber    string           `json:"sail_number"`
	CountryCode   string           `json:"country_code"`
	Position      int              `json:"position" validate:"gte=0"`
	Code          string           `json:"code"`
	Points        *decimal.Decimal `json:"points"`
	FinishTime    string           `json:"finish_time"`
	ElapsedTime   string           `json:"elapsed_time"`
	CorrectedTime string           `json:"corrected_time"`
}

func (in ResultInput) row() scoring.Row {
	return scoring.Row{
		Boat:          scoring.NewBoatKey(in.SailNumber, in.CountryCode),
		Position:      in.Position,
		Points:        in.Points,
		Code:          scoring.ParseCode(in.Code),
		FinishTime:    in.FinishTime,
		ElapsedTime:   in.ElapsedTime,
		CorrectedTime: in.CorrectedTime,
	}
}

// RaceResults is the stored result list of a race.
type RaceResults struct {
	Race    *models.Race    `json:"race"`
	Results []models.Result `json:"results"`
}

// SubmitResults replaces the results of a race scope with the normalized
// form of rows. scope is ScopeAll or a fleet id.
func (s *Service) SubmitResults(ctx context.Context, raceID int64, scope string, input []ResultInput) (*RaceResults, error) {
	rows := make([]scoring.Row, len(input))
	for i, in := range input {
		rows[i] = in.row()
	}
	if err := scoring.ValidatePayload(rows); err != nil {
		metrics.RecordSubmission("rejected")
		return nil, err
	}

	var (
		race     *models.Race
		inserted []*models.Result
	)
	err := s.runInTx(ctx, nil, func(ctx context.Context, db bun.IDB) error {
		var err error
		race, err = s.repo.GetRace(ctx, db, raceID)
		if err != nil {
			return missing(err, "race", raceID)
		}
		class, err := s.repo.GetClass(ctx, db, race.ClassID)
		if err != nil {
			return missing(err, "class", race.ClassID)
		}
		table, err := s.codeTable(ctx, db, class)
		if err != nil {
			return err
		}
		entries, err := s.repo.ListEntries(ctx, db, class.ID)
		if err != nil {
			return err
		}

		in := scoring.NormalizeInput{
			Rows:     rows,
			Table:    table,
			Handicap: class.IsHandicap(),
			Ratings:  ratings(entries),
		}
		if race.StartTime != nil {
			in.StartTime = *race.StartTime
		}

		// nil clears the whole race
		var replace []scoring.BoatKey
		if scope == "" || scope == ScopeAll {
			in.Eligible, err = s.raceEligible(ctx, db, race, entries)
			if err != nil {
				return err
			}
		} else {
			members, err := s.fleetMembers(ctx, db, race, scope)
			if err != nil {
				return err
			}
			if err := checkInFleet(rows, members, scope); err != nil {
				return err
			}
			existing, err := s.repo.ListRaceResults(ctx, db, race.ID)
			if err != nil {
				return err
			}
			for _, r := range existing {
				if _, ok := members[r.Boat()]; ok {
					in.Kept = append(in.Kept, r.Row())
				}
			}
			replace = make([]scoring.BoatKey, 0, len(members))
			for b := range members {
				in.Eligible = append(in.Eligible, b)
				replace = append(replace, b)
			}
		}

		in.Averages, err = s.seriesAverages(ctx, db, class.ID, race.ID)
		if err != nil {
			return err
		}

		normalized, err := scoring.Normalize(in)
		if err != nil {
			return err
		}

		if err := s.repo.DeleteRaceResults(ctx, db, race.ID, replace); err != nil {
			return err
		}
		inserted = make([]*models.Result, len(normalized))
		for i, row := range normalized {
			inserted[i] = models.ResultFromRow(race, row)
		}
		return s.repo.InsertResults(ctx, db, inserted)
	})
	if err != nil {
		if _, ok := apperr.As(err); ok {
			metrics.RecordSubmission("rejected")
		} else {
			metrics.RecordSubmission("failed")
		}
		return nil, err
	}

	metrics.RecordSubmission("accepted")
	s.invalidate(race.ClassID)
	if scope == "" {
		scope = ScopeAll
	}
	s.publish(events.TopicResultsNormalized, events.ResultsNormalized{
		RegattaID: race.RegattaID,
		ClassID:   race.ClassID,
		RaceID:    race.ID,
		Scope:     scope,
		Rows:      len(inserted),
		At:        s.now(),
	})
	s.logger.Info("results normalized",
		zap.Int64("race_id", race.ID),
		zap.String("scope", scope),
		zap.Int("rows", len(inserted)))

	return s.RaceResults(ctx, race.ID)
}

// RaceResults returns the stored results of a race by position.
func (s *Service) RaceResults(ctx context.Context, raceID int64) (*RaceResults, error) {
	race, err := s.repo.GetRace(ctx, nil, raceID)
	if err != nil {
		return nil, missing(err, "race", raceID)
	}
	results, err := s.repo.ListRaceResults(ctx, nil, raceID)
	if err != nil {
		return nil, err
	}
	return &RaceResults{Race: race, Results: results}, nil
}

// raceEligible returns the boats that must have a row in the race: the
// boats of the attached fleet set, or the confirmed entries of the class.
func (s *Service) raceEligible(ctx context.Context, db bun.IDB, race *models.Race, entries []models.Entry) ([]scoring.BoatKey, error) {
	if race.FleetSetID != nil {
		set, err := s.repo.GetFleetSet(ctx, db, *race.FleetSetID)
		if err != nil {
			return nil, missing(err, "fleet set", *race.FleetSetID)
		}
		var boats []scoring.BoatKey
		for _, f := range set.Fleets {
			for _, a := range f.Assignments {
				if a.Entry != nil {
					boats = append(boats, a.Entry.Boat())
				}
			}
		}
		return boats, nil
	}

	var boats []scoring.BoatKey
	for i := range entries {
		if entries[i].Confirmed {
			boats = append(boats, entries[i].Boat())
		}
	}
	return boats, nil
}

func (s *Service) fleetMembers(ctx context.Context, db bun.IDB, race *models.Race, scope string) (map[scoring.BoatKey]struct{}, error) {
	fleetID, err := strconv.ParseInt(scope, 10, 64)
	if err != nil {
		return nil, apperr.Validation(apperr.CodeInvalidFleetScope, "scope must be %q or a fleet id, got %q", ScopeAll, scope).
			With("scope", scope)
	}
	if race.FleetSetID == nil {
		return nil, apperr.Validation(apperr.CodeInvalidFleetScope, "race %d is not sailed in fleets", race.ID).
			With("race_id", race.ID)
	}
	fleet, err := s.repo.GetFleet(ctx, db, fleetID)
	if err != nil {
		if apperr.HasCode(missing(err, "fleet", fleetID), apperr.CodeNotFound) {
			return nil, apperr.Validation(apperr.CodeInvalidFleetScope, "fleet %d does not exist", fleetID).
				With("fleet_id", fleetID)
		}
		return nil, err
	}
	if fleet.FleetSetID != *race.FleetSetID {
		return nil, apperr.Validation(apperr.CodeInvalidFleetScope, "fleet %d is not part of the fleet set of race %d", fleetID, race.ID).
			With("fleet_id", fleetID).
			With("race_id", race.ID)
	}

	members := make(map[scoring.BoatKey]struct{}, len(fleet.Assignments))
	for _, a := range fleet.Assignments {
		if a.Entry != nil {
			members[a.Entry.Boat()] = struct{}{}
		}
	}
	return members, nil
}

func checkInFleet(rows []scoring.Row, members map[scoring.BoatKey]struct{}, scope string) error {
	for _, r := range rows {
		if _, ok := members[r.Boat]; !ok {
			return apperr.Validation(apperr.CodeInvalidFleetScope, "boat %s is not in fleet %s", r.Boat, scope).
				With("boat", r.Boat.String())
		}
	}
	return nil
}

// seriesAverages returns each boat's mean points over the scored races of
// the class other than raceID.
func (s *Service) seriesAverages(ctx context.Context, db bun.IDB, classID, raceID int64) (map[scoring.BoatKey]decimal.Decimal, error) {
	results, err := s.repo.ListClassResults(ctx, db, classID)
	if err != nil {
		return nil, err
	}
	type acc struct {
		sum decimal.Decimal
		n   int64
	}
	sums := make(map[scoring.BoatKey]*acc)
	for i := range results {
		r := &results[i]
		if r.RaceID == raceID || r.Points == nil {
			continue
		}
		a, ok := sums[r.Boat()]
		if !ok {
			a = &acc{}
			sums[r.Boat()] = a
		}
		a.sum = a.sum.Add(*r.Points)
		a.n++
	}

	out := make(map[scoring.BoatKey]decimal.Decimal, len(sums))
	for b, a := range sums {
		out[b] = a.sum.Div(decimal.NewFromInt(a.n))
	}
	return out, nil
}

func ratings(entries []models.Entry) map[scoring.BoatKey]float64 {
	out := make(map[scoring.BoatKey]float64)
	for i := range entries {
		if entries[i].Rating != nil {
			out[entries[i].Boat()] = *entries[i].Rating
		}
	}
	return out
}
