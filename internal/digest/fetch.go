package digest

import (
	"context"

	"golang.org/x/sync/errgroup"

	"matchday/internal/types"
)

// CatalogReader loads the immutable reference data for a run.
type CatalogReader interface {
	ListSports(ctx context.Context) ([]types.Sport, error)
	ListTeams(ctx context.Context) ([]types.Team, error)
	ListBroadcasters(ctx context.Context) ([]types.Broadcaster, error)
}

// EventReader loads the forecasted events for a calendar date.
type EventReader interface {
	ListForecastedOn(ctx context.Context, date string) ([]types.Event, error)
}

// AlertReader loads the standing email alerts.
type AlertReader interface {
	ListEmailAlerts(ctx context.Context) ([]types.Alert, error)
}

// UserReader loads the users eligible to receive digests.
type UserReader interface {
	List(ctx context.Context) ([]types.User, error)
}

// Dataset is everything a run reads, loaded once and held in memory.
type Dataset struct {
	Sports       []types.Sport
	Teams        []types.Team
	Broadcasters []types.Broadcaster
	Events       []types.Event
	Alerts       []types.Alert
	Users        []types.User
}

// Fetcher issues the six read queries for a run in parallel.
//
// The events query is mandatory: if it fails, the whole fetch fails and the
// run aborts. The other five degrade to empty datasets with a warning, so a
// flaky catalog read costs digest quality rather than the entire run.
type Fetcher struct {
	catalog CatalogReader
	events  EventReader
	alerts  AlertReader
	users   UserReader
	logger  types.Logger
}

// NewFetcher creates a Fetcher over the given readers.
func NewFetcher(
	catalog CatalogReader,
	events EventReader,
	alerts AlertReader,
	users UserReader,
	logger types.Logger,
) *Fetcher {
	return &Fetcher{
		catalog: catalog,
		events:  events,
		alerts:  alerts,
		users:   users,
		logger:  logger,
	}
}

// Fetch loads the full dataset for the target date. Only an events failure
// is returned as an error.
func (f *Fetcher) Fetch(ctx context.Context, date string) (*Dataset, error) {
	ds := &Dataset{}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		events, err := f.events.ListForecastedOn(gctx, date)
		if err != nil {
			return err
		}
		ds.Events = events
		return nil
	})

	g.Go(func() error {
		ds.Sports = f.optionalSports(gctx)
		return nil
	})
	g.Go(func() error {
		ds.Teams = f.optionalTeams(gctx)
		return nil
	})
	g.Go(func() error {
		ds.Broadcasters = f.optionalBroadcasters(gctx)
		return nil
	})
	g.Go(func() error {
		ds.Alerts = f.optionalAlerts(gctx)
		return nil
	})
	g.Go(func() error {
		ds.Users = f.optionalUsers(gctx)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return ds, nil
}

func (f *Fetcher) optionalSports(ctx context.Context) []types.Sport {
	sports, err := f.catalog.ListSports(ctx)
	if err != nil {
		f.logger.Warn("sports fetch failed, continuing with empty catalog", "error", err)
		return nil
	}
	return sports
}

func (f *Fetcher) optionalTeams(ctx context.Context) []types.Team {
	teams, err := f.catalog.ListTeams(ctx)
	if err != nil {
		f.logger.Warn("teams fetch failed, continuing with empty catalog", "error", err)
		return nil
	}
	return teams
}

func (f *Fetcher) optionalBroadcasters(ctx context.Context) []types.Broadcaster {
	broadcasters, err := f.catalog.ListBroadcasters(ctx)
	if err != nil {
		f.logger.Warn("broadcasters fetch failed, continuing with empty catalog", "error", err)
		return nil
	}
	return broadcasters
}

func (f *Fetcher) optionalAlerts(ctx context.Context) []types.Alert {
	alerts, err := f.alerts.ListEmailAlerts(ctx)
	if err != nil {
		f.logger.Warn("alerts fetch failed, continuing with no alerts", "error", err)
		return nil
	}
	return alerts
}

func (f *Fetcher) optionalUsers(ctx context.Context) []types.User {
	users, err := f.users.List(ctx)
	if err != nil {
		f.logger.Warn("users fetch failed, continuing with no users", "error", err)
		return nil
	}
	return users
}
