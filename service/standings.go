package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/uptrace/bun"

	"github.com/ZeMendes2393/sailscore/events"
	"github.com/ZeMendes2393/sailscore/metrics"
	"github.com/ZeMendes2393/sailscore/models"
	"github.com/ZeMendes2393/sailscore/scoring"
)

// RaceHeader is one column of the standings table.
type RaceHeader struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Order   int    `json:"order_index"`
	IsMedal bool   `json:"is_medal,omitempty"`
}

// ClassStandings is the overall ranking of a class.
type ClassStandings struct {
	ClassID        int64        `json:"class_id"`
	ClassName      string       `json:"class_name"`
	PublishedOnly  bool         `json:"published_only"`
	PublishedRaces int          `json:"published_races"`
	Races          []RaceHeader `json:"races"`
	scoring.Ranking
}

// Standings ranks a class. With publishedOnly only the first K races (the
// class's published count) are taken into account. Results are memoised
// until the next write for the class; callers must not modify them.
func (s *Service) Standings(ctx context.Context, classID int64, publishedOnly bool) (*ClassStandings, error) {
	key := standingsKey(classID, publishedOnly)
	if v, ok := s.cache.Get(key); ok {
		metrics.RecordCacheLookup(true)
		return v.(*ClassStandings), nil
	}
	metrics.RecordCacheLookup(false)

	class, err := s.repo.GetClass(ctx, nil, classID)
	if err != nil {
		return nil, missing(err, "class", classID)
	}
	out, err := s.rankClass(ctx, nil, class, publishedOnly)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, out, cache.DefaultExpiration)
	return out, nil
}

func (s *Service) rankClass(ctx context.Context, db bun.IDB, class *models.RegattaClass, publishedOnly bool) (*ClassStandings, error) {
	defer metrics.ObserveRanking(time.Now())

	races, err := s.repo.ListRaces(ctx, db, class.ID)
	if err != nil {
		return nil, err
	}
	if publishedOnly {
		races = publishedSubset(races, class.PublishedRaces)
	}
	results, err := s.repo.ListClassResults(ctx, db, class.ID)
	if err != nil {
		return nil, err
	}
	entries, err := s.repo.ListEntries(ctx, db, class.ID)
	if err != nil {
		return nil, err
	}

	in := scoring.RankInput{
		Races:     make([]scoring.RaceRef, len(races)),
		Scores:    make(map[int64]map[scoring.BoatKey]scoring.Score, len(races)),
		Discards:  class.DiscardRule(),
		MedalRace: class.HasMedalRace,
	}
	headers := make([]RaceHeader, len(races))
	for i, r := range races {
		in.Races[i] = scoring.RaceRef{ID: r.ID, Order: r.OrderIndex, Name: r.Name, IsMedal: r.IsMedal}
		in.Scores[r.ID] = make(map[scoring.BoatKey]scoring.Score)
		headers[i] = RaceHeader{ID: r.ID, Name: r.Name, Order: r.OrderIndex, IsMedal: r.IsMedal}
	}
	for i := range results {
		r := &results[i]
		byBoat, ok := in.Scores[r.RaceID]
		if !ok {
			continue
		}
		byBoat[r.Boat()] = scoring.Score{Position: r.Position, Points: r.Points, Code: r.ScoreCode()}
	}
	for i := range entries {
		e := &entries[i]
		if !e.Confirmed {
			continue
		}
		in.Competitors = append(in.Competitors, scoring.Competitor{Boat: e.Boat(), EntryID: e.ID, Name: e.DisplayName()})
	}

	ranking := scoring.Rank(in)
	names := make(map[scoring.BoatKey]*models.Entry, len(entries))
	for i := range entries {
		names[entries[i].Boat()] = &entries[i]
	}
	for i := range ranking.Standings {
		st := &ranking.Standings[i]
		if e, ok := names[st.Boat]; ok && st.EntryID == 0 {
			st.EntryID = e.ID
			st.Name = e.DisplayName()
		}
	}

	return &ClassStandings{
		ClassID:        class.ID,
		ClassName:      class.Name,
		PublishedOnly:  publishedOnly,
		PublishedRaces: class.PublishedRaces,
		Races:          headers,
		Ranking:        ranking,
	}, nil
}

// publishedSubset keeps the first k races by order index, never one whose
// order index is beyond k.
func publishedSubset(races []models.Race, k int) []models.Race {
	sorted := append([]models.Race(nil), races...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].OrderIndex < sorted[j].OrderIndex })
	out := make([]models.Race, 0, k)
	for _, r := range sorted {
		if len(out) == k || r.OrderIndex > k {
			break
		}
		out = append(out, r)
	}
	return out
}

// StandingsSheet renders the full standings of a class as a table.
func (s *Service) StandingsSheet(ctx context.Context, classID int64) (events.Sheet, error) {
	st, err := s.Standings(ctx, classID, false)
	if err != nil {
		return events.Sheet{}, err
	}
	return standingsSheet(st), nil
}

// StandingsWorkbook returns the standings of a class as an XLSX file.
func (s *Service) StandingsWorkbook(ctx context.Context, classID int64, publishedOnly bool) ([]byte, error) {
	st, err := s.Standings(ctx, classID, publishedOnly)
	if err != nil {
		return nil, err
	}
	return events.RenderXLSX(standingsSheet(st))
}

func standingsSheet(st *ClassStandings) events.Sheet {
	header := []string{"Rank", "Sail", "Boat"}
	for _, r := range st.Races {
		header = append(header, r.Name)
	}
	header = append(header, "Total", "Net")

	rows := make([][]string, len(st.Standings))
	for i, s := range st.Standings {
		rank := strconv.Itoa(s.Rank)
		if s.Tied {
			rank += "="
		}
		row := []string{rank, s.Boat.String(), s.Name}
		for _, c := range s.Races {
			row = append(row, cellText(c))
		}
		row = append(row, s.Total.String(), s.Net.String())
		rows[i] = row
	}
	return events.Sheet{Title: st.ClassName, Header: header, Rows: rows}
}

func cellText(c scoring.RaceCell) string {
	if c.Points == nil {
		if c.Code != "" {
			return string(c.Code)
		}
		return ""
	}
	text := c.Points.String()
	if c.Code != "" {
		text = fmt.Sprintf("%s %s", text, c.Code)
	}
	if c.Discarded {
		text = "(" + text + ")"
	}
	return text
}
