package analysis

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracingClient opens one span per remote call.
type TracingClient struct {
	inner  Client
	tracer trace.Tracer
}

// WithTracing wraps c with OpenTelemetry spans named "analysis.<op>".
func WithTracing(c Client, tracer trace.Tracer) Client {
	return &TracingClient{inner: c, tracer: tracer}
}

func (t *TracingClient) ScanResume(ctx context.Context, resumeText string) (ScanResult, error) {
	ctx, span := t.start(ctx, OpScanResume, attribute.Int("analysis.resume_chars", len(resumeText)))
	defer span.End()

	res, err := t.inner.ScanResume(ctx, resumeText)
	finish(span, err, attribute.Int("analysis.skills", len(res.Skills)))
	return res, err
}

func (t *TracingClient) GenerateTest(ctx context.Context, skills []string) (TestResult, error) {
	ctx, span := t.start(ctx, OpGenerateTest, attribute.StringSlice("analysis.skills", skills))
	defer span.End()

	res, err := t.inner.GenerateTest(ctx, skills)
	finish(span, err, attribute.Int("analysis.questions", len(res.Questions)))
	return res, err
}

func (t *TracingClient) EvaluateTest(ctx context.Context, answers []string) (Evaluation, error) {
	ctx, span := t.start(ctx, OpEvaluateTest, attribute.Int("analysis.answers", len(answers)))
	defer span.End()

	res, err := t.inner.EvaluateTest(ctx, answers)
	finish(span, err,
		attribute.Float64("analysis.score", res.Score),
		attribute.String("analysis.category", res.Category),
	)
	return res, err
}

func (t *TracingClient) start(ctx context.Context, op Op, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.String("analysis.operation", string(op)))
	if id := SessionFrom(ctx); id != "" {
		attrs = append(attrs, attribute.String("analysis.session_id", id))
	}
	return t.tracer.Start(ctx, "analysis."+string(op), trace.WithAttributes(attrs...))
}

func finish(span trace.Span, err error, okAttrs ...attribute.KeyValue) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	span.SetAttributes(okAttrs...)
	span.SetStatus(codes.Ok, "")
}
