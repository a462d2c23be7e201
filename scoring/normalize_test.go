package scoring

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZeMendes2393/sailscore/apperr"
)

func boat(sail string) BoatKey { return NewBoatKey(sail, "") }

func positions(rows []Row) []int {
	out := make([]int, len(rows))
	for i, r := range rows {
		out[i] = r.Position
	}
	return out
}

func points(rows []Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Points.String()
	}
	return out
}

func sails(rows []Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Boat.SailNumber
	}
	return out
}

func TestNormalizePlainFinish(t *testing.T) {
	in := NormalizeInput{
		Rows: []Row{
			{Boat: boat("11"), Position: 3},
			{Boat: boat("12"), Position: 1},
			{Boat: boat("13"), Position: 5},
			{Boat: boat("14"), Position: 2},
			{Boat: boat("15"), Position: 4},
		},
		Table: BuiltinTable(),
	}

	rows, err := Normalize(in)
	require.NoError(t, err)
	assert.Equal(t, []string{"12", "14", "11", "15", "13"}, sails(rows))
	assert.Equal(t, []int{1, 2, 3, 4, 5}, positions(rows))
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, points(rows))
}

func TestNormalizeNPlusOneMovesToBack(t *testing.T) {
	in := NormalizeInput{
		Rows: []Row{
			{Boat: boat("1"), Position: 1},
			{Boat: boat("2"), Position: 2, Code: "dnc"},
			{Boat: boat("3"), Position: 3},
			{Boat: boat("4"), Position: 4},
			{Boat: boat("5"), Position: 5},
			{Boat: boat("6"), Position: 6},
		},
		Table: BuiltinTable(),
	}

	rows, err := Normalize(in)
	require.NoError(t, err)
	require.Len(t, rows, 6)

	last := rows[5]
	assert.Equal(t, "2", last.Boat.SailNumber)
	assert.Equal(t, CodeDNC, last.Code)
	assert.Equal(t, 6, last.Position)
	assert.Equal(t, "6", last.Points.String())
	assert.Equal(t, []string{"1", "2", "3", "4", "5", "6"}, points(rows))
}

func TestNormalizeCompactsGapsAndFillsDNC(t *testing.T) {
	in := NormalizeInput{
		Rows: []Row{
			{Boat: boat("7"), Position: 10},
			{Boat: boat("8"), Position: 4},
			{Boat: boat("9"), Code: CodeDNF},
			{Boat: boat("10")},
		},
		Eligible: []BoatKey{boat("7"), boat("8"), boat("9"), boat("10"), boat("21"), boat("20")},
		Table:    BuiltinTable(),
	}

	rows, err := Normalize(in)
	require.NoError(t, err)
	assert.Equal(t, []string{"8", "7", "10", "9", "20", "21"}, sails(rows))
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, positions(rows))
	// three finishers, everyone else scores 4
	assert.Equal(t, []string{"1", "2", "3", "4", "4", "4"}, points(rows))
	assert.Equal(t, CodeDNC, rows[4].Code)
	assert.Equal(t, CodeDNC, rows[5].Code)
}

func TestNormalizeIsIdempotent(t *testing.T) {
	in := NormalizeInput{
		Rows: []Row{
			{Boat: NewBoatKey("101", "por"), Position: 2},
			{Boat: NewBoatKey("101", "esp"), Position: 2},
			{Boat: boat("55"), Code: CodeRDG, Points: dec(2.5)},
			{Boat: boat("56"), Code: CodeOCS},
		},
		Eligible: []BoatKey{boat("99")},
		Table:    BuiltinTable(),
	}

	first, err := Normalize(in)
	require.NoError(t, err)
	second, err := Normalize(in)
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("normalization is not idempotent (-first +second):\n%s", diff)
	}

	// Re-submitting the committed rows must not move anything either.
	again, err := Normalize(NormalizeInput{Rows: first, Eligible: in.Eligible, Table: in.Table})
	require.NoError(t, err)
	for i := range again {
		again[i].ID = first[i].ID
	}
	if diff := cmp.Diff(first, again); diff != "" {
		t.Fatalf("re-normalizing committed rows changed them (-first +again):\n%s", diff)
	}
}

func TestNormalizePositionsAreContiguous(t *testing.T) {
	codes := []Code{"", CodeDNF, "", CodeDSQ, "", "", CodeRET, CodeRDG, ""}
	var rows []Row
	for i, c := range codes {
		r := Row{Boat: boat(string(rune('A' + i))), Position: (i * 7) % 11, Code: c}
		if c == CodeRDG {
			r.Points = dec(3)
		}
		rows = append(rows, r)
	}

	out, err := Normalize(NormalizeInput{Rows: rows, Table: BuiltinTable()})
	require.NoError(t, err)

	seen := map[int]bool{}
	for _, r := range out {
		assert.False(t, seen[r.Position], "duplicate position %d", r.Position)
		seen[r.Position] = true
	}
	for p := 1; p <= len(out); p++ {
		assert.True(t, seen[p], "missing position %d", p)
	}
}

func TestNormalizeValidation(t *testing.T) {
	tests := []struct {
		name    string
		rows    []Row
		errCode string
	}{
		{
			name:    "missing sail number",
			rows:    []Row{{Boat: boat("1"), Position: 1}, {Boat: boat("  "), Position: 2}},
			errCode: apperr.CodeMissingBoatIdentity,
		},
		{
			name:    "duplicate boat",
			rows:    []Row{{Boat: NewBoatKey("1", "por"), Position: 1}, {Boat: NewBoatKey("1 ", "POR"), Position: 2}},
			errCode: apperr.CodeDuplicateBoatInPayload,
		},
		{
			name:    "unknown code",
			rows:    []Row{{Boat: boat("1"), Position: 1, Code: "ZZZ"}},
			errCode: apperr.CodeCodeNotConfigured,
		},
		{
			name:    "redress without value",
			rows:    []Row{{Boat: boat("1"), Position: 1, Code: CodeRDG}},
			errCode: apperr.CodeCodeNotConfigured,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(NormalizeInput{Rows: tt.rows, Table: BuiltinTable()})
			require.Error(t, err)
			assert.True(t, apperr.HasCode(err, tt.errCode), "got %v", err)
		})
	}
}

func TestNormalizeSameSailDifferentCountry(t *testing.T) {
	rows, err := Normalize(NormalizeInput{
		Rows: []Row{
			{Boat: NewBoatKey("200", "POR"), Position: 1},
			{Boat: NewBoatKey("200", "ITA"), Position: 2},
		},
		Table: BuiltinTable(),
	})
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestNormalizeKeepsOtherFleetMembers(t *testing.T) {
	kept := []Row{
		{ID: 10, Boat: boat("1"), Position: 1, Points: dec(1)},
		{ID: 11, Boat: boat("2"), Position: 2, Points: dec(2)},
		{ID: 12, Boat: boat("3"), Position: 3, Points: dec(3)},
	}
	rows, err := Normalize(NormalizeInput{
		Rows:     []Row{{Boat: boat("2"), Code: CodeDSQ}},
		Kept:     kept,
		Eligible: []BoatKey{boat("1"), boat("2"), boat("3"), boat("4")},
		Table:    BuiltinTable(),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"1", "3", "2", "4"}, sails(rows))
	assert.Equal(t, []int{1, 2, 3, 4}, positions(rows))
	assert.Equal(t, []string{"1", "2", "3", "3"}, points(rows))
	assert.Equal(t, int64(10), rows[0].ID)
}

func TestNormalizeAverageRedress(t *testing.T) {
	table := ResolveTable([]Override{{Code: CodeRDG, Average: true}}, nil)
	rows, err := Normalize(NormalizeInput{
		Rows: []Row{
			{Boat: boat("1"), Position: 1},
			{Boat: boat("2"), Position: 2, Code: CodeRDG},
		},
		Table:    table,
		Averages: map[BoatKey]decimal.Decimal{boat("2"): decimal.RequireFromString("2.25")},
	})
	require.NoError(t, err)
	assert.Equal(t, "2.3", rows[1].Points.String())
	assert.Equal(t, 2, rows[1].Position)
}

func TestNormalizeHandicapRanksByCorrectedTime(t *testing.T) {
	in := NormalizeInput{
		Rows: []Row{
			{Boat: boat("A"), Position: 1, ElapsedTime: "1:00:00"},
			{Boat: boat("B"), Position: 2, FinishTime: "12:50:00"},
			{Boat: boat("C"), Position: 3, CorrectedTime: "58:30"},
			{Boat: boat("D"), Code: CodeDNF, ElapsedTime: "0:30:00"},
			{Boat: boat("E"), Position: 4},
		},
		Handicap:  true,
		StartTime: "12:00:00",
		Ratings:   map[BoatKey]float64{boat("A"): 0.95, boat("B"): 1.2},
		Table:     BuiltinTable(),
	}

	rows, err := Normalize(in)
	require.NoError(t, err)

	// A: 3600*0.95 = 3420, B: 3000*1.2 = 3600, C: 3510
	assert.Equal(t, []string{"A", "C", "B", "E", "D"}, sails(rows))
	assert.Equal(t, []int{1, 2, 3, 4, 5}, positions(rows))
	assert.Equal(t, "+00:00:00", rows[0].Delta)
	assert.Equal(t, "+00:01:30", rows[1].Delta)
	assert.Equal(t, "+00:03:00", rows[2].Delta)
	assert.Equal(t, "", rows[3].Delta)
	assert.Equal(t, "", rows[4].Delta)
	assert.Equal(t, "5", rows[4].Points.String())
	require.NotNil(t, rows[2].ElapsedSeconds)
	assert.InDelta(t, 3000, *rows[2].ElapsedSeconds, 0.001)
}

func TestNormalizeHandicapRejectsBadTime(t *testing.T) {
	_, err := Normalize(NormalizeInput{
		Rows:     []Row{{Boat: boat("A"), ElapsedTime: "1:75:00"}},
		Handicap: true,
		Table:    BuiltinTable(),
	})
	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, apperr.CodeInvalidTimeFormat))
}

func TestNormalizeHandicapRejectsNonNumericTimes(t *testing.T) {
	for _, corrected := range []string{"NaN", "Inf", "1e3"} {
		_, err := Normalize(NormalizeInput{
			Rows: []Row{
				{Boat: boat("A"), Position: 1, CorrectedTime: "01:00:00"},
				{Boat: boat("B"), Position: 2, CorrectedTime: corrected},
				{Boat: boat("C"), Position: 3, CorrectedTime: "00:50:00"},
			},
			Handicap: true,
			Table:    BuiltinTable(),
		})
		require.Error(t, err, corrected)
		assert.True(t, apperr.HasCode(err, apperr.CodeInvalidTimeFormat), corrected)
	}
}

func TestParseClock(t *testing.T) {
	tests := map[string]float64{
		"01:02:03":  3723,
		"2:03":      123,
		"95":        95,
		"0:00:10.5": 10.5,
	}
	for in, want := range tests {
		got, err := ParseClock(in)
		require.NoError(t, err, in)
		assert.InDelta(t, want, got, 1e-9, in)
	}

	for _, bad := range []string{"", "a:b", "1:2:3:4", "10:61", "NaN", "Inf", "-Inf", "1e3", "0:00:NaN", "1:+5", "-3", "1.", "1.5:00", "1.2.3"} {
		_, err := ParseClock(bad)
		assert.Error(t, err, bad)
	}
}
