package scoring

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/ZeMendes2393/sailscore/apperr"
)

// Row is one result inside a normalization scope. On input Points carries the
// operator-supplied value for adjustable codes; on output it always holds the
// computed points.
type Row struct {
	ID       int64
	Boat     BoatKey
	Position int
	Points   *decimal.Decimal
	Code     Code

	FinishTime       string
	ElapsedTime      string
	CorrectedTime    string
	ElapsedSeconds   *float64
	CorrectedSeconds *float64
	Delta            string
}

// NormalizeInput is everything Normalize needs for one race scope.
type NormalizeInput struct {
	// Rows is the operator payload for the scope.
	Rows []Row
	// Kept are stored rows of the scope that the payload does not replace
	// (fleet-scoped submissions only). Rows for boats present in the payload
	// are ignored.
	Kept []Row
	// Eligible boats get a DNC row when they have no result in the scope.
	Eligible []BoatKey

	Table     Table
	Handicap  bool
	StartTime string
	Ratings   map[BoatKey]float64
	Averages  map[BoatKey]decimal.Decimal
}

type slot struct {
	row         Row
	seq         int
	back        bool
	provisional int
}

// ValidatePayload rejects rows without a boat identity and duplicated boats.
func ValidatePayload(rows []Row) error {
	seen := make(map[BoatKey]int, len(rows))
	for i, r := range rows {
		key := NewBoatKey(r.Boat.SailNumber, r.Boat.Country)
		if key.IsZero() {
			return apperr.Validation(apperr.CodeMissingBoatIdentity, "row %d has no sail number", i+1).
				With("row", i+1)
		}
		if first, ok := seen[key]; ok {
			return apperr.Validation(apperr.CodeDuplicateBoatInPayload, "boat %s appears more than once", key).
				With("boat", key.String()).
				With("rows", []int{first + 1, i + 1})
		}
		seen[key] = i
	}
	return nil
}

// Normalize turns the operator payload for a race scope into the complete,
// consistent row set to store: every eligible boat has exactly one row,
// positions are 1..N without gaps and points agree with position and code.
// The same input always produces the same output.
func Normalize(in NormalizeInput) ([]Row, error) {
	if err := ValidatePayload(in.Rows); err != nil {
		return nil, err
	}

	payload := make(map[BoatKey]struct{}, len(in.Rows))
	rows := make([]Row, len(in.Rows))
	for i, r := range in.Rows {
		r.Boat = NewBoatKey(r.Boat.SailNumber, r.Boat.Country)
		r.Code = ParseCode(string(r.Code))
		rows[i] = r
		payload[r.Boat] = struct{}{}
	}

	kept := make([]Row, 0, len(in.Kept))
	for _, r := range in.Kept {
		if _, replaced := payload[r.Boat]; !replaced {
			kept = append(kept, r)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].ID < kept[j].ID })

	slots := make([]*slot, 0, len(kept)+len(rows)+len(in.Eligible))
	present := make(map[BoatKey]struct{}, cap(slots))
	for _, r := range kept {
		slots = append(slots, &slot{row: r, seq: len(slots)})
		present[r.Boat] = struct{}{}
	}
	for _, r := range rows {
		slots = append(slots, &slot{row: r, seq: len(slots)})
		present[r.Boat] = struct{}{}
	}

	for _, s := range slots {
		_, hasAvg := in.Averages[s.row.Boat]
		if err := CheckResolvable(s.row.Code, in.Table, manualPoints(s.row), hasAvg); err != nil {
			return nil, err
		}
	}

	eligible := append([]BoatKey(nil), in.Eligible...)
	sort.SliceStable(eligible, func(i, j int) bool { return eligible[i].Less(eligible[j]) })
	for _, b := range eligible {
		if _, ok := present[b]; ok {
			continue
		}
		present[b] = struct{}{}
		slots = append(slots, &slot{row: Row{Boat: b, Code: CodeDNC}, seq: len(slots)})
	}

	if in.Handicap {
		if err := orderByTime(slots, in); err != nil {
			return nil, err
		}
	} else {
		orderByPosition(slots)
	}

	// Compact: finishers by provisional position, then everyone moved to the
	// back; row sequence breaks ties.
	sort.SliceStable(slots, func(i, j int) bool {
		a, b := slots[i], slots[j]
		if a.back != b.back {
			return !a.back
		}
		if a.provisional != b.provisional {
			return a.provisional < b.provisional
		}
		return a.seq < b.seq
	})

	finishers := 0
	for _, s := range slots {
		if !s.back {
			finishers++
		}
	}

	out := make([]Row, len(slots))
	for i, s := range slots {
		r := s.row
		r.Position = i + 1

		var avg *decimal.Decimal
		if v, ok := in.Averages[r.Boat]; ok {
			avg = &v
		}
		pts, err := ResolvePoints(r.Code, r.Position, finishers, in.Table, manualPoints(r), avg)
		if err != nil {
			return nil, err
		}
		r.Points = &pts
		if s.back || !in.Handicap {
			r.Delta = ""
		}
		out[i] = r
	}
	return out, nil
}

func manualPoints(r Row) *decimal.Decimal {
	if r.Code == "" || r.Code.Kind() != KindAdjustable {
		return nil
	}
	return r.Points
}

func provisionalOf(position int) int {
	if position > 0 {
		return position
	}
	return math.MaxInt
}

func orderByPosition(slots []*slot) {
	for _, s := range slots {
		s.back = s.row.Code.MovesToBack()
		s.provisional = provisionalOf(s.row.Position)
	}
}

// orderByTime ranks finishers of a handicap race by corrected time. Untimed
// finishers follow in submitted order; coded boats go to the back.
func orderByTime(slots []*slot, in NormalizeInput) error {
	var timed, untimed []*slot
	for _, s := range slots {
		if err := handicapTimes(&s.row, in.StartTime, in.Ratings[s.row.Boat]); err != nil {
			return err
		}
		s.back = s.row.Code.MovesToBack()
		switch {
		case s.back:
			s.provisional = provisionalOf(s.row.Position)
		case s.row.CorrectedSeconds != nil:
			timed = append(timed, s)
		default:
			untimed = append(untimed, s)
		}
	}

	sort.SliceStable(timed, func(i, j int) bool {
		a, b := *timed[i].row.CorrectedSeconds, *timed[j].row.CorrectedSeconds
		if a != b {
			return a < b
		}
		return timed[i].seq < timed[j].seq
	})
	sort.SliceStable(untimed, func(i, j int) bool {
		a, b := provisionalOf(untimed[i].row.Position), provisionalOf(untimed[j].row.Position)
		if a != b {
			return a < b
		}
		return untimed[i].seq < untimed[j].seq
	})

	for i, s := range timed {
		s.provisional = i + 1
		s.row.Delta = FormatDelta(*s.row.CorrectedSeconds - *timed[0].row.CorrectedSeconds)
	}
	for i, s := range untimed {
		s.provisional = len(timed) + i + 1
		s.row.Delta = ""
	}
	return nil
}
