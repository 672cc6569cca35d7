package analysis

import "context"

type contextKey string

const sessionKey contextKey = "analysis_session"

// WithSession attributes calls made with ctx to a workflow session, so
// the call log can be grouped by session.
func WithSession(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionKey, id)
}

// SessionFrom returns the session id attached to ctx, or "".
func SessionFrom(ctx context.Context) string {
	if v, ok := ctx.Value(sessionKey).(string); ok {
		return v
	}
	return ""
}
