package analysis

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/resumebot/internal/store"
)

// LoggingClient records every call in the call log and the zap log.
type LoggingClient struct {
	inner   Client
	calls   store.CallRepo
	backend string
	logger  *zap.Logger
}

// WithLogging wraps c so each call is appended to repo, tagged with
// backend ("http", "local", "llm").
func WithLogging(c Client, repo store.CallRepo, backend string, logger *zap.Logger) Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoggingClient{inner: c, calls: repo, backend: backend, logger: logger.Named("analysis")}
}

func (l *LoggingClient) ScanResume(ctx context.Context, resumeText string) (ScanResult, error) {
	start := time.Now()
	res, err := l.inner.ScanResume(ctx, resumeText)
	l.record(ctx, OpScanResume, start, map[string]any{"resume": resumeText}, res, err)
	return res, err
}

func (l *LoggingClient) GenerateTest(ctx context.Context, skills []string) (TestResult, error) {
	start := time.Now()
	res, err := l.inner.GenerateTest(ctx, skills)
	l.record(ctx, OpGenerateTest, start, map[string]any{"skills": skills}, res, err)
	return res, err
}

func (l *LoggingClient) EvaluateTest(ctx context.Context, answers []string) (Evaluation, error) {
	start := time.Now()
	res, err := l.inner.EvaluateTest(ctx, answers)
	l.record(ctx, OpEvaluateTest, start, map[string]any{"answers": answers}, res, err)
	return res, err
}

func (l *LoggingClient) record(ctx context.Context, op Op, start time.Time, req, resp any, err error) {
	latency := time.Since(start)
	rec := store.CallRecord{
		SessionID:   SessionFrom(ctx),
		Operation:   string(op),
		Backend:     l.backend,
		LatencyMs:   latency.Milliseconds(),
		Success:     err == nil,
		RequestBody: marshalBody(req),
	}
	if err != nil {
		rec.ErrorMessage = err.Error()
	} else {
		rec.ResponseBody = marshalBody(resp)
	}

	fields := []zap.Field{
		zap.String("op", string(op)),
		zap.String("backend", l.backend),
		zap.String("session", rec.SessionID),
		zap.Duration("latency", latency),
	}
	if err != nil {
		l.logger.Warn("analysis call failed", append(fields, zap.Error(err))...)
	} else {
		l.logger.Debug("analysis call", fields...)
	}

	// A cancelled caller context must not drop the audit row.
	if logErr := l.calls.AppendCall(context.WithoutCancel(ctx), rec); logErr != nil {
		l.logger.Warn("failed to record analysis call", zap.Error(logErr))
	}
}

func marshalBody(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
