package models

import (
	"time"

	"github.com/google/uuid"
)

// Event represents a sporting event offered by an odds provider
type Event struct {
	ID        uuid.UUID `db:"id" json:"id" validate:"required,uuid4"`
	SourceID  string    `db:"source_id" json:"source_id" validate:"required"`
	Source    string    `db:"source" json:"source" validate:"required"`
	Sport     string    `db:"sport" json:"sport"`
	League    string    `db:"league" json:"league"`
	HomeTeam  string    `db:"home_team" json:"home_team"`
	AwayTeam  string    `db:"away_team" json:"away_team"`
	StartTime time.Time `db:"start_time" json:"start_time"`
	Status    string    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Name returns a human-readable event name
func (e *Event) Name() string {
	if e.HomeTeam == "" && e.AwayTeam == "" {
		return e.SourceID
	}
	return e.HomeTeam + " v " + e.AwayTeam
}

// HasStarted checks whether the event has already started at the given time
func (e *Event) HasStarted(now time.Time) bool {
	return !e.StartTime.IsZero() && !now.Before(e.StartTime)
}
