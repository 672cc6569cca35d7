package llm

import "context"

type contextKey string

const taskKey contextKey = "llm_task"

// WithTask labels the context with the analysis task being performed,
// e.g. "extract-skills". The label shows up in request logs.
func WithTask(ctx context.Context, task string) context.Context {
	return context.WithValue(ctx, taskKey, task)
}

// TaskFrom returns the task label, or "unknown".
func TaskFrom(ctx context.Context) string {
	if v, ok := ctx.Value(taskKey).(string); ok {
		return v
	}
	return "unknown"
}
