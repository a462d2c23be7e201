package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Fleet set phases.
const (
	PhaseQualifying = "qualifying"
	PhaseFinals     = "finals"
)

// FleetSet is one generation of the division of a class into fleets. Sets
// are never rewritten; only publication state and race attachments change.
type FleetSet struct {
	bun.BaseModel `bun:"table:fleet_sets,alias:fs"`

	ID          int64      `bun:"id,pk,autoincrement" json:"id"`
	RegattaID   int64      `bun:"regatta_id,notnull" json:"regatta_id"`
	ClassID     int64      `bun:"class_id,notnull" json:"class_id"`
	Phase       string     `bun:"phase,notnull" json:"phase"`
	Label       string     `bun:"label,notnull" json:"label"`
	IsPublished bool       `bun:"is_published,notnull,default:false" json:"is_published"`
	PublicTitle *string    `bun:"public_title" json:"public_title,omitempty"`
	PublishedAt *time.Time `bun:"published_at" json:"published_at,omitempty"`
	CreatedAt   time.Time  `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`

	Fleets []*Fleet `bun:"rel:has-many,join:id=fleet_set_id" json:"fleets,omitempty"`
}

// Title is the public title, defaulting to the label.
func (s *FleetSet) Title() string {
	if s.PublicTitle != nil && *s.PublicTitle != "" {
		return *s.PublicTitle
	}
	return s.Label
}

// Fleet is one fleet of a set.
type Fleet struct {
	bun.BaseModel `bun:"table:fleets,alias:fl"`

	ID         int64  `bun:"id,pk,autoincrement" json:"id"`
	FleetSetID int64  `bun:"fleet_set_id,notnull" json:"fleet_set_id"`
	Name       string `bun:"name,notnull" json:"name"`
	Color      string `bun:"color,notnull,default:''" json:"color"`
	OrderIndex int    `bun:"order_index,notnull" json:"order_index"`

	Assignments []*FleetAssignment `bun:"rel:has-many,join:id=fleet_id" json:"assignments,omitempty"`
}

// FleetAssignment places one entry in one fleet of a set.
type FleetAssignment struct {
	bun.BaseModel `bun:"table:fleet_assignments,alias:fa"`

	ID         int64 `bun:"id,pk,autoincrement" json:"id"`
	FleetSetID int64 `bun:"fleet_set_id,notnull" json:"fleet_set_id"`
	FleetID    int64 `bun:"fleet_id,notnull" json:"fleet_id"`
	EntryID    int64 `bun:"entry_id,notnull" json:"entry_id"`

	Entry *Entry `bun:"rel:belongs-to,join:entry_id=id" json:"entry,omitempty"`
}
