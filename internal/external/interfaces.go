package external

import (
	"context"

	"matchday/internal/types"
)

// EmailProvider abstracts the outbound email transport (Resend).
// Implementations transmit pre-rendered content and report success or
// failure; the dispatcher never retries a failed send within a run.
type EmailProvider interface {
	// Send transmits one email and returns the provider's message ID.
	Send(ctx context.Context, input types.SendInput) (string, error)
}
