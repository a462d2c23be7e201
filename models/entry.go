package models

import (
	"github.com/uptrace/bun"

	"github.com/ZeMendes2393/sailscore/scoring"
)

// Entry is a boat registered in a class.
type Entry struct {
	bun.BaseModel `bun:"table:entries,alias:e"`

	ID          int64    `bun:"id,pk,autoincrement" json:"id"`
	RegattaID   int64    `bun:"regatta_id,notnull" json:"regatta_id"`
	ClassID     int64    `bun:"class_id,notnull" json:"class_id"`
	SailNumber  string   `bun:"sail_number,notnull" json:"sail_number"`
	CountryCode string   `bun:"country_code,notnull,default:''" json:"country_code"`
	BoatName    string   `bun:"boat_name,notnull,default:''" json:"boat_name"`
	Skipper     string   `bun:"skipper,notnull,default:''" json:"skipper"`
	Rating      *float64 `bun:"rating" json:"rating,omitempty"`
	Confirmed   bool     `bun:"confirmed,notnull,default:false" json:"confirmed"`
	Paid        bool     `bun:"paid,notnull,default:false" json:"paid"`
}

func (e *Entry) Boat() scoring.BoatKey {
	return scoring.NewBoatKey(e.SailNumber, e.CountryCode)
}

// DisplayName is the boat name, or the skipper when the boat has none.
func (e *Entry) DisplayName() string {
	if e.BoatName != "" {
		return e.BoatName
	}
	return e.Skipper
}
