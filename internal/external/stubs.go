package external

import (
	"context"
	"fmt"
	"sync"

	"matchday/internal/types"
)

// StubEmailProvider is a local-mode EmailProvider that logs sends instead of
// calling Resend. It records every SendInput it receives so tests and local
// runs can inspect what would have gone out.
type StubEmailProvider struct {
	logger types.Logger

	mu    sync.Mutex
	sent  []types.SendInput
	calls int
}

// NewStubEmailProvider creates a stub provider that logs via the given logger.
func NewStubEmailProvider(logger types.Logger) *StubEmailProvider {
	return &StubEmailProvider{logger: logger}
}

// Send logs the email and returns a synthetic message ID.
func (s *StubEmailProvider) Send(_ context.Context, input types.SendInput) (string, error) {
	s.mu.Lock()
	s.calls++
	n := s.calls
	s.sent = append(s.sent, input)
	s.mu.Unlock()

	s.logger.Info("stub email send",
		"to", input.To,
		"subject", input.Subject,
		"html_bytes", len(input.BodyHTML),
	)
	return fmt.Sprintf("stub-%d", n), nil
}

// Sent returns a copy of every SendInput received so far.
func (s *StubEmailProvider) Sent() []types.SendInput {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.SendInput, len(s.sent))
	copy(out, s.sent)
	return out
}

var _ EmailProvider = (*StubEmailProvider)(nil)
