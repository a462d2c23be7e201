package models

import (
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"

	"github.com/ZeMendes2393/sailscore/scoring"
)

// Result is one boat's result in one race. Points is NULL until the race
// has been scored.
type Result struct {
	bun.BaseModel `bun:"table:results,alias:r"`

	ID               int64            `bun:"id,pk,autoincrement" json:"id"`
	RaceID           int64            `bun:"race_id,notnull" json:"race_id"`
	RegattaID        int64            `bun:"regatta_id,notnull" json:"regatta_id"`
	ClassID          int64            `bun:"class_id,notnull" json:"class_id"`
	SailNumber       string           `bun:"sail_number,notnull" json:"sail_number"`
	CountryCode      string           `bun:"country_code,notnull,default:''" json:"country_code"`
	Position         int              `bun:"position,notnull" json:"position"`
	Points           *decimal.Decimal `bun:"points,type:numeric(8,2)" json:"points"`
	Code             *string          `bun:"code" json:"code,omitempty"`
	FinishTime       *string          `bun:"finish_time" json:"finish_time,omitempty"`
	ElapsedTime      *string          `bun:"elapsed_time" json:"elapsed_time,omitempty"`
	CorrectedTime    *string          `bun:"corrected_time" json:"corrected_time,omitempty"`
	ElapsedSeconds   *float64         `bun:"elapsed_seconds" json:"elapsed_seconds,omitempty"`
	CorrectedSeconds *float64         `bun:"corrected_seconds" json:"corrected_seconds,omitempty"`
	Delta            *string          `bun:"delta" json:"delta,omitempty"`
}

func (r *Result) Boat() scoring.BoatKey {
	return scoring.NewBoatKey(r.SailNumber, r.CountryCode)
}

// ScoreCode returns the stored code, empty when the boat finished normally.
func (r *Result) ScoreCode() scoring.Code {
	if r.Code == nil {
		return ""
	}
	return scoring.ParseCode(*r.Code)
}

// Row converts the stored result to a normalizer row.
func (r *Result) Row() scoring.Row {
	return scoring.Row{
		ID:               r.ID,
		Boat:             r.Boat(),
		Position:         r.Position,
		Points:           r.Points,
		Code:             r.ScoreCode(),
		FinishTime:       deref(r.FinishTime),
		ElapsedTime:      deref(r.ElapsedTime),
		CorrectedTime:    deref(r.CorrectedTime),
		ElapsedSeconds:   r.ElapsedSeconds,
		CorrectedSeconds: r.CorrectedSeconds,
		Delta:            deref(r.Delta),
	}
}

// ResultFromRow builds the row to insert for a normalized result.
func ResultFromRow(race *Race, row scoring.Row) *Result {
	return &Result{
		RaceID:           race.ID,
		RegattaID:        race.RegattaID,
		ClassID:          race.ClassID,
		SailNumber:       row.Boat.SailNumber,
		CountryCode:      row.Boat.Country,
		Position:         row.Position,
		Points:           row.Points,
		Code:             optional(string(row.Code)),
		FinishTime:       optional(row.FinishTime),
		ElapsedTime:      optional(row.ElapsedTime),
		CorrectedTime:    optional(row.CorrectedTime),
		ElapsedSeconds:   row.ElapsedSeconds,
		CorrectedSeconds: row.CorrectedSeconds,
		Delta:            optional(row.Delta),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
