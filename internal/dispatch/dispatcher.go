// Package dispatch sends rendered digests through the email provider in
// fixed-size batches with pacing delays, isolating per-send failures.
package dispatch

import (
	"context"
	"fmt"
	"time"

	"matchday/internal/config"
	"matchday/internal/external"
	"matchday/internal/types"
)

// UserDigest is one user's fully rendered, ready-to-send email.
type UserDigest struct {
	UserID   string
	Email    string
	Subject  string
	BodyHTML string
	BodyText string
}

// Report summarizes a dispatch pass.
type Report struct {
	Sent   int
	Failed int
}

// Dispatcher sends digests sequentially in batches. The delays are fixed
// pacing toward the provider's rate limits, not adaptive backoff: a short
// sleep after every send, and a longer one between batches except after the
// last. A failed send is logged and counted; it never aborts the run and is
// not retried.
type Dispatcher struct {
	provider external.EmailProvider
	from     types.SenderIdentity
	cfg      config.DispatchConfig
	logger   types.Logger
	sleepFn  func(time.Duration)
}

// Option is a functional option for configuring a Dispatcher.
type Option func(*Dispatcher)

// WithSleepFunc overrides the sleep function used for pacing delays.
// Intended for tests to avoid real delays.
func WithSleepFunc(fn func(time.Duration)) Option {
	return func(d *Dispatcher) {
		d.sleepFn = fn
	}
}

// NewDispatcher creates a Dispatcher sending via provider as from.
func NewDispatcher(
	provider external.EmailProvider,
	from types.SenderIdentity,
	cfg config.DispatchConfig,
	logger types.Logger,
	opts ...Option,
) *Dispatcher {
	d := &Dispatcher{
		provider: provider,
		from:     from,
		cfg:      cfg,
		logger:   logger,
		sleepFn:  time.Sleep,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch sends one email per digest, in the given order, and reports the
// sent and failed counts.
func (d *Dispatcher) Dispatch(ctx context.Context, digests []UserDigest) Report {
	var report Report

	batches := splitBatches(digests, d.cfg.BatchSize)
	for i, batch := range batches {
		for _, dg := range batch {
			if err := d.send(ctx, dg); err != nil {
				report.Failed++
				d.logger.Error("digest send failed",
					"user_id", dg.UserID,
					"error", err,
				)
			} else {
				report.Sent++
			}
			d.sleepFn(d.cfg.SendDelay)
		}
		if i < len(batches)-1 {
			d.sleepFn(d.cfg.BatchDelay)
		}
	}

	return report
}

func (d *Dispatcher) send(ctx context.Context, dg UserDigest) error {
	messageID, err := d.provider.Send(ctx, types.SendInput{
		From:        d.from,
		To:          dg.Email,
		Subject:     dg.Subject,
		BodyHTML:    dg.BodyHTML,
		BodyText:    dg.BodyText,
		ReferenceID: fmt.Sprintf("%s/%s", types.GetRunID(ctx), dg.UserID),
	})
	if err != nil {
		return err
	}
	d.logger.Info("digest sent",
		"user_id", dg.UserID,
		"message_id", messageID,
	)
	return nil
}

// splitBatches chunks digests into groups of at most size. A size below one
// falls back to a single batch.
func splitBatches(digests []UserDigest, size int) [][]UserDigest {
	if len(digests) == 0 {
		return nil
	}
	if size < 1 {
		return [][]UserDigest{digests}
	}
	var batches [][]UserDigest
	for start := 0; start < len(digests); start += size {
		end := start + size
		if end > len(digests) {
			end = len(digests)
		}
		batches = append(batches, digests[start:end])
	}
	return batches
}
