package models

import (
	"time"

	"github.com/uptrace/bun"
)

// RegattaCounter is a named per-regatta sequence.
type RegattaCounter struct {
	bun.BaseModel `bun:"table:regatta_counters,alias:rc"`

	ID        int64  `bun:"id,pk,autoincrement" json:"id"`
	RegattaID int64  `bun:"regatta_id,notnull" json:"regatta_id"`
	Name      string `bun:"name,notnull" json:"name"`
	Value     int64  `bun:"value,notnull,default:0" json:"value"`
}

// Protest statuses.
const (
	ProtestSubmitted = "submitted"
	ProtestHeard     = "heard"
	ProtestWithdrawn = "withdrawn"
)

// Protest is a lodged protest, numbered per regatta.
type Protest struct {
	bun.BaseModel `bun:"table:protests,alias:pr"`

	ID          int64     `bun:"id,pk,autoincrement" json:"id"`
	RegattaID   int64     `bun:"regatta_id,notnull" json:"regatta_id"`
	ClassID     *int64    `bun:"class_id" json:"class_id,omitempty"`
	RaceID      *int64    `bun:"race_id" json:"race_id,omitempty"`
	Number      int64     `bun:"number,notnull" json:"number"`
	Initiator   string    `bun:"initiator,notnull" json:"initiator"`
	Respondents []string  `bun:"respondents,array" json:"respondents"`
	Description string    `bun:"description,notnull,default:''" json:"description"`
	Status      string    `bun:"status,notnull,default:'submitted'" json:"status"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}
