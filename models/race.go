package models

import "github.com/uptrace/bun"

// Race is one race of a class. FleetSetID is set while the race is sailed in
// fleets.
type Race struct {
	bun.BaseModel `bun:"table:races,alias:ra"`

	ID         int64   `bun:"id,pk,autoincrement" json:"id"`
	RegattaID  int64   `bun:"regatta_id,notnull" json:"regatta_id"`
	ClassID    int64   `bun:"class_id,notnull" json:"class_id"`
	Name       string  `bun:"name,notnull" json:"name"`
	OrderIndex int     `bun:"order_index,notnull" json:"order_index"`
	IsMedal    bool    `bun:"is_medal,notnull,default:false" json:"is_medal"`
	StartTime  *string `bun:"start_time" json:"start_time,omitempty"`
	FleetSetID *int64  `bun:"fleet_set_id" json:"fleet_set_id,omitempty"`
}
