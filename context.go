package deptadmin

import "context"

// contextKey represents an internal key for adding context fields.
// This is considered best practice as it prevents other packages from
// interfering with our context keys.
type contextKey int

// List of context keys.
// These are used to store request-scoped information.
const (
	// Stores the key identifying the browser session. Each session owns its
	// own department manager.
	sessionKeyContextKey = contextKey(iota + 1)

	// Stores the id assigned to the current request, for log correlation.
	requestIDContextKey
)

// NewContextWithSessionKey returns a new context with the given session key.
func NewContextWithSessionKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, sessionKeyContextKey, key)
}

// SessionKeyFromContext returns the current session key, or "" when the
// request has no session.
func SessionKeyFromContext(ctx context.Context) string {
	key, _ := ctx.Value(sessionKeyContextKey).(string)
	return key
}

// NewContextWithRequestID returns a new context with the given request id.
func NewContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDContextKey, id)
}

// RequestIDFromContext returns the id of the current request.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDContextKey).(string)
	return id
}
