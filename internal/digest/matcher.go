package digest

import (
	"strings"

	"matchday/internal/types"
)

// Assignments accumulates matched events per user. Users are kept in the
// order of their first match, and each user's events in the order they first
// matched; an event matched by several of a user's alerts is recorded once,
// keyed by its ID.
type Assignments struct {
	userOrder []string
	events    map[string][]types.Event
	seen      map[string]map[int64]struct{}
}

// NewAssignments creates an empty accumulator.
func NewAssignments() *Assignments {
	return &Assignments{
		events: make(map[string][]types.Event),
		seen:   make(map[string]map[int64]struct{}),
	}
}

// add records an event for a user, ignoring duplicates by event ID.
func (a *Assignments) add(userID string, event types.Event) {
	ids, ok := a.seen[userID]
	if !ok {
		ids = make(map[int64]struct{})
		a.seen[userID] = ids
		a.userOrder = append(a.userOrder, userID)
	}
	if _, dup := ids[event.ID]; dup {
		return
	}
	ids[event.ID] = struct{}{}
	a.events[userID] = append(a.events[userID], event)
}

// Users returns user IDs in first-match order. A user appears only if at
// least one event matched; there are no empty entries.
func (a *Assignments) Users() []string {
	return a.userOrder
}

// EventsFor returns the matched events for a user in first-match order.
func (a *Assignments) EventsFor(userID string) []types.Event {
	return a.events[userID]
}

// Len returns the number of users with at least one matched event.
func (a *Assignments) Len() int {
	return len(a.userOrder)
}

// Match pairs every event with every alert sharing its sport and accumulates
// the matches per user. Tennis alerts filter on tour league; all other sports
// filter on team name against the event's participant details. An alert with
// no filter matches every event of its sport.
func Match(events []types.Event, alerts []types.Alert, teams []types.Team) *Assignments {
	teamNames := make(map[int64]string, len(teams))
	for _, t := range teams {
		teamNames[t.ID] = strings.ToLower(t.Name)
	}

	out := NewAssignments()
	for _, event := range events {
		for _, alert := range alerts {
			if alert.SportID != event.SportID {
				continue
			}

			var matched bool
			if event.SportID == types.SportIDTennis {
				matched = matchesTennis(alert, event)
			} else {
				matched = matchesTeam(alert, event, teamNames)
			}

			if matched {
				out.add(alert.UserID, event)
			}
		}
	}
	return out
}

// matchesTennis matches tennis events on tour league. An alert with no league
// filter matches every tennis event, including competitions outside the two
// recognized tours. A filtered alert matches only when the event's
// competition resolves to the same tour league ID.
func matchesTennis(alert types.Alert, event types.Event) bool {
	if alert.LeagueID == nil {
		return true
	}
	leagueID, ok := competitionLeagueID(event.Competition)
	return ok && leagueID == *alert.LeagueID
}

// competitionLeagueID maps a tennis competition name to its tour league ID.
// Competitions outside the two tours have no league ID.
func competitionLeagueID(competition string) (int64, bool) {
	switch competition {
	case types.CompetitionATPTour:
		return types.LeagueIDATP, true
	case types.CompetitionWTATour:
		return types.LeagueIDWTA, true
	default:
		return 0, false
	}
}

// matchesTeam matches non-tennis events on team name. An alert with no team
// filter matches every event of its sport. A team ID that is missing from
// the catalog never matches; a lookup miss is not a wildcard.
func matchesTeam(alert types.Alert, event types.Event, teamNames map[int64]string) bool {
	if alert.TeamID == nil {
		return true
	}
	name, ok := teamNames[*alert.TeamID]
	if !ok {
		return false
	}
	return name == strings.ToLower(event.EventDetail1) ||
		name == strings.ToLower(event.EventDetail2)
}
