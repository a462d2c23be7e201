package scoring

import (
	"sort"

	"github.com/shopspring/decimal"
)

// RaceRef describes one race of the series being ranked.
type RaceRef struct {
	ID      int64
	Order   int
	Name    string
	IsMedal bool
}

// Competitor is a boat taking part in the series.
type Competitor struct {
	Boat    BoatKey
	EntryID int64
	Name    string
}

// Score is a stored race result as seen by the ranking engine. A nil Points
// means the result exists but has not been scored yet.
type Score struct {
	Position int
	Points   *decimal.Decimal
	Code     Code
}

// RankInput is the full result set of one class (or the published subset).
type RankInput struct {
	Races       []RaceRef
	Competitors []Competitor
	Scores      map[int64]map[BoatKey]Score
	Discards    DiscardRule
	// MedalRace enables the medal-race-first tie-break when one of the races
	// is flagged IsMedal.
	MedalRace bool
}

// RaceCell is one boat's result in one race.
type RaceCell struct {
	RaceID    int64            `json:"race_id"`
	Order     int              `json:"order_index"`
	Position  int              `json:"position,omitempty"`
	Points    *decimal.Decimal `json:"points"`
	Code      Code             `json:"code,omitempty"`
	Discarded bool             `json:"discarded,omitempty"`
}

// Standing is one row of the overall results.
type Standing struct {
	Rank      int             `json:"rank"`
	Tied      bool            `json:"tied,omitempty"`
	Boat      BoatKey         `json:"boat"`
	EntryID   int64           `json:"entry_id,omitempty"`
	Name      string          `json:"name,omitempty"`
	Total     decimal.Decimal `json:"total"`
	Net       decimal.Decimal `json:"net"`
	Races     []RaceCell      `json:"races"`
	Discarded []int64         `json:"discarded_race_ids"`
}

// Ranking is the output of Rank.
type Ranking struct {
	RacesSailed int        `json:"races_sailed"`
	Discards    int        `json:"discards"`
	Standings   []Standing `json:"standings"`
}

type ranked struct {
	st       *Standing
	scored   int
	sorted   []decimal.Decimal
	byRace   map[int64]decimal.Decimal
	medalPos int
	inMedal  bool
}

// Rank orders boats by net points (lower is better) and resolves ties with
// the medal race first, when applicable, then RRS A8.1 and A8.2. Boats that
// are still level share a rank. Boats with no scored race at all rank last.
func Rank(in RankInput) Ranking {
	races := append([]RaceRef(nil), in.Races...)
	sort.SliceStable(races, func(i, j int) bool {
		if races[i].Order != races[j].Order {
			return races[i].Order < races[j].Order
		}
		return races[i].ID < races[j].ID
	})

	sailed := 0
	for _, race := range races {
		for _, s := range in.Scores[race.ID] {
			if s.Points != nil {
				sailed++
				break
			}
		}
	}
	discards := in.Discards.Discards(sailed)

	var medalID int64
	if in.MedalRace {
		for _, race := range races {
			if race.IsMedal {
				medalID = race.ID
			}
		}
	}

	entries := make([]*ranked, 0, len(in.Competitors))
	for _, c := range collectCompetitors(in, races) {
		entries = append(entries, score(c, races, in.Scores, discards, medalID))
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if (a.scored == 0) != (b.scored == 0) {
			return a.scored > 0
		}
		if c := a.st.Net.Cmp(b.st.Net); c != 0 {
			return c < 0
		}
		return a.st.Boat.Less(b.st.Boat)
	})

	out := Ranking{RacesSailed: sailed, Discards: discards, Standings: make([]Standing, 0, len(entries))}
	place := 0
	for start := 0; start < len(entries); {
		end := start + 1
		for end < len(entries) && sameGroup(entries[start], entries[end]) {
			end++
		}
		for _, tier := range resolveTie(entries[start:end], races, medalID) {
			for _, e := range tier {
				e.st.Rank = place + 1
				e.st.Tied = len(tier) > 1
				out.Standings = append(out.Standings, *e.st)
			}
			place += len(tier)
		}
		start = end
	}
	return out
}

func collectCompetitors(in RankInput, races []RaceRef) []Competitor {
	seen := make(map[BoatKey]bool, len(in.Competitors))
	out := make([]Competitor, 0, len(in.Competitors))
	for _, c := range in.Competitors {
		if seen[c.Boat] {
			continue
		}
		seen[c.Boat] = true
		out = append(out, c)
	}
	for _, race := range races {
		for boat := range in.Scores[race.ID] {
			if !seen[boat] {
				seen[boat] = true
				out = append(out, Competitor{Boat: boat})
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Boat.Less(out[j].Boat) })
	return out
}

func score(c Competitor, races []RaceRef, scores map[int64]map[BoatKey]Score, discards int, medalID int64) *ranked {
	e := &ranked{
		st: &Standing{
			Boat:      c.Boat,
			EntryID:   c.EntryID,
			Name:      c.Name,
			Races:     make([]RaceCell, 0, len(races)),
			Discarded: []int64{},
		},
		byRace: make(map[int64]decimal.Decimal, len(races)),
	}

	var counted []RaceScore
	for _, race := range races {
		cell := RaceCell{RaceID: race.ID, Order: race.Order}
		if s, ok := scores[race.ID][c.Boat]; ok {
			cell.Position = s.Position
			cell.Code = s.Code
			if s.Points != nil {
				p := *s.Points
				cell.Points = &p
				counted = append(counted, RaceScore{RaceID: race.ID, Order: race.Order, Points: p, Code: s.Code, Protected: race.IsMedal})
				e.byRace[race.ID] = p
				e.sorted = append(e.sorted, p)
				if race.ID == medalID {
					e.inMedal = true
					e.medalPos = s.Position
				}
			}
		}
		e.st.Races = append(e.st.Races, cell)
	}

	total := decimal.Zero
	for _, s := range counted {
		total = total.Add(s.Points)
	}
	net, dropped := ApplyDiscards(counted, discards)
	e.st.Total = total
	e.st.Net = net
	e.scored = len(counted)
	if len(dropped) > 0 {
		e.st.Discarded = dropped
		isDropped := make(map[int64]bool, len(dropped))
		for _, id := range dropped {
			isDropped[id] = true
		}
		for i := range e.st.Races {
			e.st.Races[i].Discarded = isDropped[e.st.Races[i].RaceID]
		}
	}

	sort.Slice(e.sorted, func(i, j int) bool { return e.sorted[i].LessThan(e.sorted[j]) })
	return e
}

func sameGroup(a, b *ranked) bool {
	if (a.scored == 0) != (b.scored == 0) {
		return false
	}
	return a.st.Net.Equal(b.st.Net)
}

// resolveTie splits a group of boats on equal net points into ordered tiers;
// boats in one tier are genuinely tied.
func resolveTie(group []*ranked, races []RaceRef, medalID int64) [][]*ranked {
	if len(group) == 1 {
		return [][]*ranked{group}
	}
	if group[0].scored == 0 {
		return [][]*ranked{group}
	}

	if medalID != 0 && allInMedal(group) {
		sort.SliceStable(group, func(i, j int) bool { return group[i].medalPos < group[j].medalPos })
		var tiers [][]*ranked
		for start := 0; start < len(group); {
			end := start + 1
			for end < len(group) && group[end].medalPos == group[start].medalPos {
				end++
			}
			tiers = append(tiers, a8Tiers(group[start:end], races)...)
			start = end
		}
		return tiers
	}
	return a8Tiers(group, races)
}

func allInMedal(group []*ranked) bool {
	for _, e := range group {
		if !e.inMedal {
			return false
		}
	}
	return true
}

func a8Tiers(group []*ranked, races []RaceRef) [][]*ranked {
	sort.SliceStable(group, func(i, j int) bool { return compareA8(group[i], group[j], races) < 0 })
	var tiers [][]*ranked
	for start := 0; start < len(group); {
		end := start + 1
		for end < len(group) && compareA8(group[start], group[end], races) == 0 {
			end++
		}
		tiers = append(tiers, group[start:end])
		start = end
	}
	return tiers
}

// compareA8 applies A8.1 (every score, excluded ones included, best first)
// and then A8.2 (last race, then the one before, and so on). A missing score
// counts as worse than any score.
func compareA8(a, b *ranked, races []RaceRef) int {
	for i := 0; i < len(a.sorted) && i < len(b.sorted); i++ {
		if c := a.sorted[i].Cmp(b.sorted[i]); c != 0 {
			return c
		}
	}
	if len(a.sorted) != len(b.sorted) {
		if len(a.sorted) > len(b.sorted) {
			return -1
		}
		return 1
	}

	for i := len(races) - 1; i >= 0; i-- {
		pa, okA := a.byRace[races[i].ID]
		pb, okB := b.byRace[races[i].ID]
		switch {
		case !okA && !okB:
			continue
		case !okA:
			return 1
		case !okB:
			return -1
		}
		if c := pa.Cmp(pb); c != 0 {
			return c
		}
	}
	return 0
}
