package digest

import (
	"context"
	"time"

	"matchday/internal/config"
	"matchday/internal/dispatch"
	"matchday/internal/types"
)

// DigestSender delivers rendered digests. Satisfied by dispatch.Dispatcher.
type DigestSender interface {
	Dispatch(ctx context.Context, digests []dispatch.UserDigest) dispatch.Report
}

// RunInput carries optional per-invocation overrides. TargetDate, when set
// ("YYYY-MM-DD"), skips date resolution; used for backfills and manual runs.
type RunInput struct {
	TargetDate string `json:"target_date,omitempty"`
}

// RunReport summarizes one completed run.
type RunReport struct {
	TargetDate   string
	Events       int
	Alerts       int
	MatchedUsers int
	Sent         int
	Failed       int
}

// Service runs the digest pipeline end to end: resolve the target date,
// fetch the day's data, enrich and match, render per user, then dispatch.
type Service struct {
	fetcher  *Fetcher
	renderer *Renderer
	sender   DigestSender
	metrics  dispatch.MetricsPublisher
	clock    types.Clock
	logger   types.Logger

	loc        *time.Location
	cutoffHour int
}

// NewService creates a Service. The digest timezone must be a valid IANA
// zone; config validation guarantees that before this point.
func NewService(
	fetcher *Fetcher,
	renderer *Renderer,
	sender DigestSender,
	metrics dispatch.MetricsPublisher,
	clock types.Clock,
	cfg config.DigestConfig,
	logger types.Logger,
) (*Service, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, types.NewAppError(
			types.ErrCodeConfigInvalid,
			"invalid digest timezone "+cfg.Timezone,
			err,
		)
	}
	return &Service{
		fetcher:    fetcher,
		renderer:   renderer,
		sender:     sender,
		metrics:    metrics,
		clock:      clock,
		logger:     logger,
		loc:        loc,
		cutoffHour: cfg.CutoffHour,
	}, nil
}

// Run executes one digest run. It returns an error only for fatal failures:
// an invalid date override or a failed events fetch. Everything downstream
// degrades or is isolated per user.
func (s *Service) Run(ctx context.Context, input RunInput) (*RunReport, error) {
	date, err := s.resolveDate(input)
	if err != nil {
		return nil, err
	}
	logger := s.logger.With("target_date", date)
	logger.Info("digest run started")

	ds, err := s.fetcher.Fetch(ctx, date)
	if err != nil {
		return nil, err
	}
	logger.Info("dataset loaded",
		"events", len(ds.Events),
		"alerts", len(ds.Alerts),
		"users", len(ds.Users),
	)

	EnrichBroadcasters(ds.Events, ds.Broadcasters)
	assignments := Match(ds.Events, ds.Alerts, ds.Teams)

	digests, renderFailures := s.buildDigests(ds, assignments, date, logger)
	report := s.sender.Dispatch(ctx, digests)
	report.Failed += renderFailures

	s.metrics.PublishRunMetrics(ctx, assignments.Len(), report)

	runReport := &RunReport{
		TargetDate:   date,
		Events:       len(ds.Events),
		Alerts:       len(ds.Alerts),
		MatchedUsers: assignments.Len(),
		Sent:         report.Sent,
		Failed:       report.Failed,
	}
	logger.Info("digest run finished",
		"matched_users", runReport.MatchedUsers,
		"sent", runReport.Sent,
		"failed", runReport.Failed,
	)
	return runReport, nil
}

func (s *Service) resolveDate(input RunInput) (string, error) {
	if input.TargetDate == "" {
		return TargetDate(s.clock.Now(), s.loc, s.cutoffHour), nil
	}
	if _, err := time.Parse(civilDateFormat, input.TargetDate); err != nil {
		return "", types.NewAppError(
			types.ErrCodeConfigInvalid,
			"target date override must be YYYY-MM-DD, got "+input.TargetDate,
			err,
		)
	}
	return input.TargetDate, nil
}

// buildDigests renders one digest per eligible user: the user must exist,
// have an email address, and own at least one matched event. Users are
// processed in the matcher's first-match order, which fixes the dispatch
// order. A render failure skips that user and is counted as a failed send.
func (s *Service) buildDigests(
	ds *Dataset,
	assignments *Assignments,
	date string,
	logger types.Logger,
) ([]dispatch.UserDigest, int) {
	emailByUserID := make(map[string]string, len(ds.Users))
	for _, u := range ds.Users {
		emailByUserID[u.ID] = u.Email
	}

	var digests []dispatch.UserDigest
	failures := 0
	for _, userID := range assignments.Users() {
		email := emailByUserID[userID]
		if email == "" {
			logger.Warn("skipping user without email address", "user_id", userID)
			continue
		}

		rendered, err := s.renderer.Render(assignments.EventsFor(userID), ds.Sports, date)
		if err != nil {
			failures++
			logger.Error("digest render failed", "user_id", userID, "error", err)
			continue
		}

		digests = append(digests, dispatch.UserDigest{
			UserID:   userID,
			Email:    email,
			Subject:  rendered.Subject,
			BodyHTML: rendered.BodyHTML,
			BodyText: rendered.BodyText,
		})
	}
	return digests, failures
}
