// Package events carries best-effort side effects out of the request path:
// services publish after commit, and subscribers on an in-process watermill
// channel write standings documents and call the outbound webhook.
package events

import "time"

// Topics.
const (
	TopicResultsNormalized = "results.normalized"
	TopicFleetSetCreated   = "fleetset.created"
	TopicFleetSetPublished = "fleetset.published"
	TopicProtestSubmitted  = "protest.submitted"
)

// AllTopics lists every topic the service publishes.
var AllTopics = []string{
	TopicResultsNormalized,
	TopicFleetSetCreated,
	TopicFleetSetPublished,
	TopicProtestSubmitted,
}

// ResultsNormalized is published after a race scope has been rewritten.
type ResultsNormalized struct {
	RegattaID int64     `json:"regatta_id"`
	ClassID   int64     `json:"class_id"`
	RaceID    int64     `json:"race_id"`
	Scope     string    `json:"scope"`
	Rows      int       `json:"rows"`
	At        time.Time `json:"at"`
}

// FleetSetChanged is published when a fleet set is created or published.
type FleetSetChanged struct {
	RegattaID  int64     `json:"regatta_id"`
	ClassID    int64     `json:"class_id"`
	FleetSetID int64     `json:"fleet_set_id"`
	Phase      string    `json:"phase"`
	Label      string    `json:"label"`
	Title      string    `json:"title,omitempty"`
	At         time.Time `json:"at"`
}

// ProtestSubmitted is published after a protest got its number.
type ProtestSubmitted struct {
	RegattaID int64     `json:"regatta_id"`
	ProtestID int64     `json:"protest_id"`
	Number    int64     `json:"number"`
	At        time.Time `json:"at"`
}
