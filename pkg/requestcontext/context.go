// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// Middleware sets these; services only read them. Keeping the package free of
// net/http lets workers and tests inject values without an HTTP stack. The
// legacy application carried the acting agent in a global session singleton;
// here identity always travels through context or explicit parameters.
package requestcontext

import (
	"context"
	"time"
)

type (
	agentIDKey     struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// Exported context keys for tests that need raw context.WithValue.
var (
	ContextKeyAgentID     = agentIDKey{}
	ContextKeyRequestID   = requestIDKey{}
	ContextKeyRequestTime = requestTimeKey{}
)

// AgentID retrieves the authenticated agent ID from the context.
// Returns 0 if not set.
func AgentID(ctx context.Context) int64 {
	if id, ok := ctx.Value(ContextKeyAgentID).(int64); ok {
		return id
	}
	return 0
}

// WithAgentID injects an agent ID into the context.
func WithAgentID(ctx context.Context, agentID int64) context.Context {
	return context.WithValue(ctx, ContextKeyAgentID, agentID)
}

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() for non-HTTP contexts like workers and tests.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context. Useful for service unit
// tests that need deterministic acquisition and validation timestamps.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}
