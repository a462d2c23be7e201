package scoring

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/ZeMendes2393/sailscore/apperr"
)

// DiscardRule says how many results a boat may exclude. When the schedule is
// active it is indexed by races sailed (schedule[0] applies after one race);
// otherwise Count discards apply once Threshold races have been sailed.
type DiscardRule struct {
	Schedule       []int `json:"schedule"`
	ScheduleActive bool  `json:"schedule_active"`
	Count          int   `json:"count"`
	Threshold      int   `json:"threshold"`
}

// Validate rejects negative values and schedules that ever decrease.
func (r DiscardRule) Validate() error {
	if r.Count < 0 || r.Threshold < 0 {
		return apperr.Validation(apperr.CodeInvalidDiscardRule, "discard count and threshold must not be negative")
	}
	for i, n := range r.Schedule {
		if n < 0 {
			return apperr.Validation(apperr.CodeInvalidDiscardRule, "schedule entry %d is negative", i+1).With("index", i+1)
		}
		if i > 0 && n < r.Schedule[i-1] {
			return apperr.Validation(apperr.CodeInvalidDiscardRule, "schedule decreases at entry %d", i+1).With("index", i+1)
		}
	}
	if r.ScheduleActive && len(r.Schedule) == 0 {
		return apperr.Validation(apperr.CodeInvalidDiscardRule, "an active schedule needs at least one entry")
	}
	return nil
}

// Discards returns how many results may be excluded after racesSailed races.
func (r DiscardRule) Discards(racesSailed int) int {
	if racesSailed < 1 {
		return 0
	}
	if r.ScheduleActive && len(r.Schedule) > 0 {
		if racesSailed <= len(r.Schedule) {
			return r.Schedule[racesSailed-1]
		}
		return r.Schedule[len(r.Schedule)-1]
	}
	if r.Count > 0 && racesSailed >= r.Threshold {
		return r.Count
	}
	return 0
}

// RaceScore is one scored race for one boat.
type RaceScore struct {
	RaceID int64
	Order  int
	Points decimal.Decimal
	Code   Code
	// Protected results (the medal race) are never excluded.
	Protected bool
}

// ApplyDiscards excludes the n worst discardable results and returns the net
// total together with the excluded race ids in race order. Equal points are
// excluded earliest race first.
func ApplyDiscards(scores []RaceScore, n int) (decimal.Decimal, []int64) {
	total := decimal.Zero
	candidates := make([]RaceScore, 0, len(scores))
	for _, s := range scores {
		total = total.Add(s.Points)
		if !s.Protected && s.Code.Discardable() {
			candidates = append(candidates, s)
		}
	}
	if n <= 0 || len(candidates) == 0 {
		return total, nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if c := candidates[i].Points.Cmp(candidates[j].Points); c != 0 {
			return c > 0
		}
		return candidates[i].Order < candidates[j].Order
	})
	if n > len(candidates) {
		n = len(candidates)
	}

	dropped := candidates[:n]
	sort.Slice(dropped, func(i, j int) bool { return dropped[i].Order < dropped[j].Order })

	net := total
	ids := make([]int64, 0, n)
	for _, d := range dropped {
		net = net.Sub(d.Points)
		ids = append(ids, d.RaceID)
	}
	return net, ids
}
