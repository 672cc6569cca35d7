package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a record lookup matches nothing.
var ErrNotFound = errors.New("not found")

// QueryOpts filters and paginates list queries. Zero values disable a
// filter.
type QueryOpts struct {
	Limit      int
	SessionID  string
	Operation  string
	FailedOnly bool
	From       time.Time
	To         time.Time
}

// SessionRecord is the audit row for one assessment session. Slices are
// stored as JSON arrays.
type SessionRecord struct {
	ID          string
	StartedAt   time.Time
	UpdatedAt   time.Time
	Stage       string
	ResumeChars int
	Skills      []string
	Questions   []string
	Answers     []string
	Score       *float64
	Category    string
}

// SessionRepo persists assessment sessions for history. Records are never
// used to restore a live session.
type SessionRepo interface {
	// StartSession inserts a new session row. StartedAt is stamped if zero.
	StartSession(ctx context.Context, rec SessionRecord) error

	// UpdateSession overwrites the mutable columns of an existing session.
	UpdateSession(ctx context.Context, rec SessionRecord) error

	// ListSessions returns sessions newest first.
	ListSessions(ctx context.Context, opts QueryOpts) ([]SessionRecord, error)

	// GetSession returns ErrNotFound when id is unknown.
	GetSession(ctx context.Context, id string) (*SessionRecord, error)
}

// CallRecord is one remote analysis call.
type CallRecord struct {
	ID           int64
	SessionID    string
	Operation    string
	Backend      string
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
	CreatedAt    time.Time
}

// OperationUsage aggregates the call log per operation.
type OperationUsage struct {
	Operation    string
	Calls        int
	Failures     int
	AvgLatencyMs float64
}

// CallRepo is the append-only audit log of remote analysis calls.
type CallRepo interface {
	AppendCall(ctx context.Context, rec CallRecord) error
	QueryCalls(ctx context.Context, opts QueryOpts) ([]CallRecord, error)
	GetCall(ctx context.Context, id int64) (*CallRecord, error)
	UsageByOperation(ctx context.Context, opts QueryOpts) ([]OperationUsage, error)
}
