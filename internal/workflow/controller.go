// Package workflow drives one résumé assessment session through its four
// stages, delegating all analysis to an analysis.Client.
package workflow

import (
	"context"
	"fmt"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/resumebot/internal/analysis"
)

// Controller owns the state of a single session. It is safe for
// concurrent use; at most one remote call runs at a time and overlapping
// attempts are rejected, never queued.
type Controller struct {
	client    analysis.Client
	logger    *zap.Logger
	recorder  Recorder
	sessionID string
	now       func() time.Time
	startedAt time.Time

	mu     sync.Mutex
	st     state
	flight *inflight

	// recMu serializes writes to the recorder and guards recorded, which
	// flips only once StartSession has succeeded.
	recMu    sync.Mutex
	recorded bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithRecorder attaches an audit recorder.
func WithRecorder(r Recorder) Option {
	return func(c *Controller) { c.recorder = r }
}

// WithClock replaces time.Now for session and call timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithSessionID overrides the generated session id.
func WithSessionID(id string) Option {
	return func(c *Controller) { c.sessionID = id }
}

// New returns a Controller in AwaitingResume.
func New(client analysis.Client, opts ...Option) *Controller {
	c := &Controller{
		client:    client,
		logger:    zap.NewNop(),
		sessionID: uuid.NewString(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.startedAt = c.now()
	c.logger = c.logger.With(zap.String("session", c.sessionID))
	return c
}

// SessionID returns the id used for logs and the audit trail.
func (c *Controller) SessionID() string {
	return c.sessionID
}

// View returns a snapshot for rendering.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

func (c *Controller) viewLocked() View {
	v := c.st.view()
	v.SessionID = c.sessionID
	v.StartedAt = c.startedAt
	if c.flight != nil {
		v.Pending = true
		v.PendingOp = c.flight.op
	}
	return v
}

// SubmitResume sends text for skill extraction. On success the session
// moves to SkillsReady; on a remote failure the stage is unchanged,
// LastError is set, and nil is returned.
func (c *Controller) SubmitResume(ctx context.Context, text string) error {
	tok, err := c.acquire("SubmitResume", analysis.OpScanResume, AwaitingResume, func(s *state) error {
		s.resumeText = text
		return nil
	})
	if err != nil {
		return err
	}
	defer c.release(tok)

	res, callErr := c.client.ScanResume(c.callContext(ctx), text)
	c.complete(ctx, tok, callErr, func(s *state) {
		s.skills = normalize(res.Skills)
		s.stage = SkillsReady
	})
	return nil
}

// GenerateTest requests questions for the detected skills. It is rejected
// with ErrNoSkills when the scan found nothing.
func (c *Controller) GenerateTest(ctx context.Context) error {
	var skills []string
	tok, err := c.acquire("GenerateTest", analysis.OpGenerateTest, SkillsReady, func(s *state) error {
		if len(s.skills) == 0 {
			return ErrNoSkills
		}
		skills = append([]string(nil), s.skills...)
		return nil
	})
	if err != nil {
		return err
	}
	defer c.release(tok)

	res, callErr := c.client.GenerateTest(c.callContext(ctx), skills)
	c.complete(ctx, tok, callErr, func(s *state) {
		s.questions = normalize(res.Questions)
		s.answers = make([]string, len(s.questions))
		s.stage = TestReady
	})
	return nil
}

// SetAnswer replaces the answer at index. It is a local edit and never
// touches the network, but it is refused while the test is being
// submitted so the scored answers match what the session holds.
func (c *Controller) SetAnswer(index int, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.flight != nil {
		return &InvalidStateError{Op: "SetAnswer", Stage: c.st.stage, Reason: ErrRequestInFlight}
	}
	if c.st.stage != TestReady {
		return &InvalidStateError{Op: "SetAnswer", Stage: c.st.stage, Reason: ErrWrongStage}
	}
	if index < 0 || index >= len(c.st.answers) {
		return &IndexOutOfRangeError{Index: index, Len: len(c.st.answers)}
	}
	c.st.answers[index] = value
	return nil
}

// SubmitTest sends the answers, positionally aligned with the questions,
// for scoring. On success the session is Completed.
func (c *Controller) SubmitTest(ctx context.Context) error {
	var answers []string
	tok, err := c.acquire("SubmitTest", analysis.OpEvaluateTest, TestReady, func(s *state) error {
		answers = append([]string{}, s.answers...)
		return nil
	})
	if err != nil {
		return err
	}
	defer c.release(tok)

	res, callErr := c.client.EvaluateTest(c.callContext(ctx), answers)
	if callErr == nil {
		callErr = checkEvaluation(res)
	}
	c.complete(ctx, tok, callErr, func(s *state) {
		s.result = &Result{Score: res.Score, Category: res.Category}
		s.stage = Completed
	})
	return nil
}

// acquire checks preconditions and takes the in-flight token. prepare runs
// under the lock after the stage check and may veto with a reason error;
// on any rejection nothing is mutated.
func (c *Controller) acquire(name string, op analysis.Op, want Stage, prepare func(*state) error) (*inflight, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.flight != nil {
		return nil, &InvalidStateError{Op: name, Stage: c.st.stage, Reason: ErrRequestInFlight}
	}
	if c.st.stage != want {
		return nil, &InvalidStateError{Op: name, Stage: c.st.stage, Reason: ErrWrongStage}
	}

	// prepare sees a scratch copy so a veto leaves state untouched.
	next := c.st
	if err := prepare(&next); err != nil {
		return nil, &InvalidStateError{Op: name, Stage: c.st.stage, Reason: err}
	}
	c.st = next

	tok := &inflight{op: op, started: c.now()}
	c.flight = tok
	c.st.lastError = ""
	return tok, nil
}

// release clears the token if it is still current. It is deferred by every
// remote operation so a panicking client cannot wedge the session.
func (c *Controller) release(tok *inflight) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.flight == tok {
		c.flight = nil
	}
}

// complete applies the outcome of a remote call and releases the token in
// one critical section, then records the session.
func (c *Controller) complete(ctx context.Context, tok *inflight, callErr error, apply func(*state)) {
	c.mu.Lock()
	latency := c.now().Sub(tok.started)
	from := c.st.stage
	if callErr != nil {
		c.st.lastError = analysis.UserMessage(callErr)
	} else {
		apply(&c.st)
	}
	if c.flight == tok {
		c.flight = nil
	}
	snap := c.viewLocked()
	c.mu.Unlock()

	fields := []zap.Field{
		zap.String("op", string(tok.op)),
		zap.Stringer("stage", from),
		zap.Duration("latency", latency),
	}
	if callErr != nil {
		c.logger.Warn("remote call failed", append(fields, zap.Error(callErr))...)
	} else {
		c.logger.Info("remote call succeeded", append(fields, zap.Stringer("next", snap.Stage))...)
	}

	c.persist(ctx, snap)
}

// persist inserts the session on the first successful write and updates
// it afterwards. A failed insert is retried on the next call.
func (c *Controller) persist(ctx context.Context, v View) {
	if c.recorder == nil {
		return
	}
	c.recMu.Lock()
	defer c.recMu.Unlock()

	ctx = context.WithoutCancel(ctx)
	rec := v.record()
	var err error
	if c.recorded {
		err = c.recorder.UpdateSession(ctx, rec)
	} else {
		err = c.recorder.StartSession(ctx, rec)
	}
	if err != nil {
		c.logger.Warn("failed to record session", zap.Error(err))
		return
	}
	c.recorded = true
}

func (c *Controller) callContext(ctx context.Context) context.Context {
	return analysis.WithSession(ctx, c.sessionID)
}

// checkEvaluation rejects scores outside [0, 100] before they reach state.
func checkEvaluation(e analysis.Evaluation) error {
	if math.IsNaN(e.Score) || e.Score < 0 || e.Score > 100 {
		return &analysis.ErrInvalidResponse{
			Op:  analysis.OpEvaluateTest,
			Err: fmt.Errorf("score %v outside [0, 100]", e.Score),
		}
	}
	return nil
}

func normalize(s []string) []string {
	if s == nil {
		return []string{}
	}
	return slices.Clone(s)
}
