package scoring

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/ZeMendes2393/sailscore/apperr"
)

// Level identifies where a table entry came from.
type Level int

const (
	LevelBuiltin Level = iota
	LevelRegatta
	LevelClass
)

func (l Level) String() string {
	switch l {
	case LevelRegatta:
		return "regatta"
	case LevelClass:
		return "class"
	default:
		return "builtin"
	}
}

// Override is one configured code value, at regatta or class level.
// Points nil means "keep the policy default"; Average asks for the boat's
// series average (adjustable codes only).
type Override struct {
	Code    Code
	Points  *decimal.Decimal
	Average bool
}

// TableEntry is a resolved code.
type TableEntry struct {
	Code    Code             `json:"code"`
	Kind    Kind             `json:"-"`
	Points  *decimal.Decimal `json:"points,omitempty"`
	Average bool             `json:"average,omitempty"`
	Source  Level            `json:"-"`
}

// Table is the resolved code -> value mapping for one class.
type Table struct {
	entries map[Code]TableEntry
}

// ResolveTable merges overrides with priority class > regatta > built-in.
func ResolveTable(classOverrides, regattaOverrides []Override) Table {
	t := Table{entries: make(map[Code]TableEntry, len(builtinPolicies)+len(classOverrides)+len(regattaOverrides))}
	for c, p := range builtinPolicies {
		t.entries[c] = TableEntry{Code: c, Kind: p.kind, Source: LevelBuiltin}
	}
	t.apply(regattaOverrides, LevelRegatta)
	t.apply(classOverrides, LevelClass)
	return t
}

// BuiltinTable is the table with no overrides.
func BuiltinTable() Table {
	return ResolveTable(nil, nil)
}

func (t *Table) apply(overrides []Override, level Level) {
	for _, o := range overrides {
		code := ParseCode(string(o.Code))
		if code == "" {
			continue
		}
		e := TableEntry{Code: code, Kind: code.Kind(), Source: level}
		if o.Points != nil {
			p := *o.Points
			e.Points = &p
		}
		if e.Kind == KindAdjustable {
			e.Average = o.Average
		}
		t.entries[code] = e
	}
}

// Lookup returns the resolved entry for code.
func (t Table) Lookup(code Code) (TableEntry, bool) {
	e, ok := t.entries[code]
	return e, ok
}

// Entries returns every entry ordered by code.
func (t Table) Entries() []TableEntry {
	out := make([]TableEntry, 0, len(t.entries))
	for _, e := range t.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// ResolvePoints computes the points for one result.
//
// manual is the operator-supplied value (used by adjustable codes only) and
// average the boat's series average when one is available.
func ResolvePoints(code Code, position, finishers int, table Table, manual, average *decimal.Decimal) (decimal.Decimal, error) {
	if code == "" {
		return decimal.NewFromInt(int64(position)), nil
	}

	e, ok := table.Lookup(code)
	if !ok {
		return decimal.Zero, codeNotConfigured(code, "code is not in the scoring table")
	}

	if e.Kind == KindNPlusOne {
		if e.Points != nil {
			return *e.Points, nil
		}
		return decimal.NewFromInt(int64(finishers + 1)), nil
	}

	switch {
	case manual != nil:
		return *manual, nil
	case e.Points != nil:
		return *e.Points, nil
	case e.Average && average != nil:
		return average.Round(1), nil
	}
	return decimal.Zero, codeNotConfigured(code, "no value supplied and none configured")
}

// CheckResolvable fails fast when a code could never be scored, before any
// positions are assigned.
func CheckResolvable(code Code, table Table, manual *decimal.Decimal, hasAverage bool) error {
	if code == "" {
		return nil
	}
	e, ok := table.Lookup(code)
	if !ok {
		return codeNotConfigured(code, "code is not in the scoring table")
	}
	if e.Kind == KindNPlusOne || manual != nil || e.Points != nil || (e.Average && hasAverage) {
		return nil
	}
	return codeNotConfigured(code, "no value supplied and none configured")
}

func codeNotConfigured(code Code, reason string) error {
	return apperr.Configuration(apperr.CodeCodeNotConfigured, "scoring code %s cannot be scored: %s", code, reason).
		With("code", string(code))
}
