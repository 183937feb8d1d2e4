package pubsub

import (
	"time"

	"cloud.google.com/go/pubsub"
)

type client struct {
	client   *pubsub.Client
	teardown func()
}

// EventType represents the type of event/message sent via pubsub.
type EventType string

const (
	EventComputeRatings EventType = "compute-ratings"
	EventRatingsUpdated EventType = "ratings-updated"
)

// ComputeRequest asks a subscriber to run a rating pass.
type ComputeRequest struct {
	Season string `msgpack:"season"`
	DryRun bool   `msgpack:"dry_run"`
}

// RatingsUpdated is published after a rating pass committed changes.
type RatingsUpdated struct {
	RunID         string    `msgpack:"run_id"`
	MatchesRated  int       `msgpack:"matches_rated"`
	SinglesRated  int       `msgpack:"singles_rated"`
	DoublesRated  int       `msgpack:"doubles_rated"`
	Backfilled    int       `msgpack:"backfilled"`
	LastMatchDate time.Time `msgpack:"last_match_date"`
	CompletedAt   time.Time `msgpack:"completed_at"`
}
