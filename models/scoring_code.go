package models

import (
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"

	"github.com/ZeMendes2393/sailscore/scoring"
)

// ScoringCodeOverride configures one code for a regatta (ClassID nil) or for
// a single class.
type ScoringCodeOverride struct {
	bun.BaseModel `bun:"table:scoring_code_overrides,alias:sco"`

	ID        int64            `bun:"id,pk,autoincrement" json:"id"`
	RegattaID int64            `bun:"regatta_id,notnull" json:"regatta_id"`
	ClassID   *int64           `bun:"class_id" json:"class_id,omitempty"`
	Code      string           `bun:"code,notnull" json:"code"`
	Points    *decimal.Decimal `bun:"points,type:numeric(8,2)" json:"points"`
	Average   bool             `bun:"average,notnull,default:false" json:"average"`
}

func (o *ScoringCodeOverride) Override() scoring.Override {
	return scoring.Override{Code: scoring.ParseCode(o.Code), Points: o.Points, Average: o.Average}
}

// Overrides converts stored rows for ResolveTable.
func Overrides(rows []ScoringCodeOverride) []scoring.Override {
	out := make([]scoring.Override, len(rows))
	for i := range rows {
		out[i] = rows[i].Override()
	}
	return out
}
