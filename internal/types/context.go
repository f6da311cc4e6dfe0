package types

import "context"

type contextKey string

const runIDKey contextKey = "run_id"

// WithRunID stores the digest run ID in the context. The run ID is minted
// once per invocation and attached to every log line and outbound request.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey, id)
}

// GetRunID retrieves the digest run ID from the context, or "" if absent.
func GetRunID(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey).(string)
	return id
}
