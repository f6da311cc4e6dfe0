// Package types defines the shared domain model for the Matchday digest
// worker: the reference data (sports, teams, broadcasters), the daily event
// schedule, the standing user alerts that select events, and the error and
// logging primitives used across packages.
package types

// Tennis is matched on tour-level league IDs rather than team names, so the
// sport and its two recognized tours are fixed identifiers in the catalog.
const (
	SportIDTennis int64 = 20
	LeagueIDATP   int64 = 21
	LeagueIDWTA   int64 = 22
)

// Competition names that resolve to a tennis tour league ID.
const (
	CompetitionATPTour = "ATP Tour"
	CompetitionWTATour = "WTA Tour"
)

// BroadcasterType distinguishes how an event can be watched.
type BroadcasterType string

const (
	BroadcasterTV        BroadcasterType = "tv"
	BroadcasterStreaming BroadcasterType = "streaming"
)

// EventStatusForecasted marks events that are scheduled (as opposed to
// live, finished, or cancelled). Only forecasted events enter digests.
const EventStatusForecasted = "forecasted"

// AlertTypeEmail is the only alert type the digest worker acts on.
const AlertTypeEmail = "email"

// Sport is immutable reference data loaded once per run.
type Sport struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Emoji string `json:"emoji"`
}

// Team is reference data used only for case-insensitive name matching
// against an event's participant details.
type Team struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Broadcaster is a TV channel or streaming service carrying an event.
type Broadcaster struct {
	ID   int64           `json:"id"`
	Name string          `json:"name"`
	URL  string          `json:"url"`
	Type BroadcasterType `json:"type"`
}

// Event is a scheduled sports event on the target date.
//
// Date is a civil "YYYY-MM-DD" string and Time a "HH:MM:SS" string, both in
// the reference timezone; StartAt is the sortable start timestamp (empty when
// the event has no confirmed start). Broadcasters is hydrated by the enricher
// from BroadcasterIDs and is not a stored column.
type Event struct {
	ID             int64   `json:"id"`
	SportID        int64   `json:"sport_id"`
	Competition    string  `json:"competition"`
	Date           string  `json:"date"`
	Time           string  `json:"time"`
	EventDetail1   string  `json:"event_detail_1"`
	EventDetail2   string  `json:"event_detail_2"`
	BroadcasterIDs []int64 `json:"broadcaster_ids"`
	Status         string  `json:"status"`
	StartAt        string  `json:"start_at"`

	Broadcasters []Broadcaster `json:"broadcasters,omitempty"`
}

// Alert is a standing user preference. LeagueID and TeamID are optional
// filters; nil means "match any league" / "match any team" for the sport.
type Alert struct {
	ID      int64  `json:"id"`
	UserID  string `json:"user_id"`
	SportID int64  `json:"sport_id"`
	LeagueID *int64 `json:"league_id,omitempty"`
	TeamID   *int64 `json:"team_id,omitempty"`
	Type     string `json:"type"`
}

// User is the recipient of a digest. Users without an email address are
// skipped at dispatch time.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// SenderIdentity is the From identity for outbound digest emails,
// fixed per run.
type SenderIdentity struct {
	Address string `json:"address"`
	Name    string `json:"name"`
}

// SendInput carries one pre-rendered email to the transport provider.
type SendInput struct {
	From     SenderIdentity
	To       string
	Subject  string
	BodyHTML string
	BodyText string
	// ReferenceID correlates the provider send with the run and user,
	// e.g. "<run_id>/<user_id>".
	ReferenceID string
}
