package models

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/ZeMendes2393/sailscore/scoring"
)

// Regatta is one event. Classes, entries and races all belong to a regatta.
type Regatta struct {
	bun.BaseModel `bun:"table:regattas,alias:rg"`

	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	Name      string    `bun:"name,notnull" json:"name"`
	Slug      string    `bun:"slug,notnull,unique" json:"slug"`
	StartDate time.Time `bun:"start_date,type:date" json:"start_date"`
	EndDate   time.Time `bun:"end_date,type:date" json:"end_date"`
}

// Class types.
const (
	ClassOneDesign = "one_design"
	ClassHandicap  = "handicap"
)

// RegattaClass is a class sailing in a regatta, with its scoring settings.
type RegattaClass struct {
	bun.BaseModel `bun:"table:regatta_classes,alias:rcl"`

	ID        int64  `bun:"id,pk,autoincrement" json:"id"`
	RegattaID int64  `bun:"regatta_id,notnull" json:"regatta_id"`
	Name      string `bun:"name,notnull" json:"name"`
	ClassType string `bun:"class_type,notnull,default:'one_design'" json:"class_type"`

	DiscardSchedule       []int `bun:"discard_schedule,array" json:"discard_schedule"`
	DiscardScheduleActive bool  `bun:"discard_schedule_active,notnull,default:false" json:"discard_schedule_active"`
	DiscardCount          int   `bun:"discard_count,notnull,default:0" json:"discard_count"`
	DiscardThreshold      int   `bun:"discard_threshold,notnull,default:0" json:"discard_threshold"`

	PublishedRaces int  `bun:"published_races,notnull,default:0" json:"published_races"`
	HasMedalRace   bool `bun:"has_medal_race,notnull,default:false" json:"has_medal_race"`
}

func (c *RegattaClass) IsHandicap() bool { return c.ClassType == ClassHandicap }

// DiscardRule returns the class's discard settings.
func (c *RegattaClass) DiscardRule() scoring.DiscardRule {
	return scoring.DiscardRule{
		Schedule:       append([]int{}, c.DiscardSchedule...),
		ScheduleActive: c.DiscardScheduleActive,
		Count:          c.DiscardCount,
		Threshold:      c.DiscardThreshold,
	}
}

// SetDiscardRule copies r into the class columns.
func (c *RegattaClass) SetDiscardRule(r scoring.DiscardRule) {
	c.DiscardSchedule = append([]int{}, r.Schedule...)
	c.DiscardScheduleActive = r.ScheduleActive
	c.DiscardCount = r.Count
	c.DiscardThreshold = r.Threshold
}
