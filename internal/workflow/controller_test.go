package workflow

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/abhisek/resumebot/internal/analysis"
	"github.com/abhisek/resumebot/internal/store"
)

var pythonQuestions = []string{
	"What is a list comprehension?",
	"Explain the difference between a tuple and a list.",
}

func newTestController(t *testing.T, client analysis.Client, opts ...Option) *Controller {
	t.Helper()
	opts = append([]Option{WithLogger(zaptest.NewLogger(t)), WithSessionID("test-session")}, opts...)
	return New(client, opts...)
}

// toTestReady drives a fresh controller through scan and generate.
func toTestReady(t *testing.T, questions []string) (*Controller, *analysis.MockClient) {
	t.Helper()
	mock := analysis.NewMockClient().
		Enqueue(analysis.OpScanResume, analysis.MockReply{Scan: analysis.ScanResult{Skills: []string{"python"}}}).
		Enqueue(analysis.OpGenerateTest, analysis.MockReply{Test: analysis.TestResult{Questions: questions}})
	c := newTestController(t, mock)
	ctx := context.Background()
	if err := c.SubmitResume(ctx, "Experienced in Python"); err != nil {
		t.Fatalf("SubmitResume: %v", err)
	}
	if err := c.GenerateTest(ctx); err != nil {
		t.Fatalf("GenerateTest: %v", err)
	}
	if got := c.View().Stage; got != TestReady {
		t.Fatalf("expected TestReady, got %s", got)
	}
	return c, mock
}

func TestController_InitialView(t *testing.T) {
	v := newTestController(t, analysis.NewMockClient()).View()
	if v.Stage != AwaitingResume || v.Pending || v.LastError != "" || v.Result != nil {
		t.Fatalf("unexpected initial view: %+v", v)
	}
	if v.SessionID != "test-session" {
		t.Fatalf("expected session id, got %q", v.SessionID)
	}
}

func TestController_FullRun(t *testing.T) {
	mock := analysis.NewMockClient().
		Enqueue(analysis.OpScanResume, analysis.MockReply{Scan: analysis.ScanResult{Skills: []string{"python"}}}).
		Enqueue(analysis.OpGenerateTest, analysis.MockReply{Test: analysis.TestResult{Questions: pythonQuestions}}).
		Enqueue(analysis.OpEvaluateTest, analysis.MockReply{Evaluation: analysis.Evaluation{Score: 80, Category: "Intermediate"}})
	c := newTestController(t, mock)
	ctx := context.Background()

	if err := c.SubmitResume(ctx, "Experienced in Python"); err != nil {
		t.Fatalf("SubmitResume: %v", err)
	}
	v := c.View()
	if v.Stage != SkillsReady || len(v.Skills) != 1 || v.Skills[0] != "python" {
		t.Fatalf("unexpected view after scan: %+v", v)
	}
	if v.ResumeText != "Experienced in Python" {
		t.Fatalf("expected resume text to be kept, got %q", v.ResumeText)
	}

	if err := c.GenerateTest(ctx); err != nil {
		t.Fatalf("GenerateTest: %v", err)
	}
	v = c.View()
	if v.Stage != TestReady || len(v.Questions) != 2 {
		t.Fatalf("unexpected view after generate: %+v", v)
	}
	if len(v.Answers) != 2 || v.Answers[0] != "" || v.Answers[1] != "" {
		t.Fatalf("expected two empty answers, got %q", v.Answers)
	}

	if err := c.SetAnswer(0, "A concise way to build lists"); err != nil {
		t.Fatalf("SetAnswer: %v", err)
	}
	if err := c.SubmitTest(ctx); err != nil {
		t.Fatalf("SubmitTest: %v", err)
	}
	v = c.View()
	if v.Stage != Completed || v.Result == nil {
		t.Fatalf("expected completed result, got %+v", v)
	}
	if v.Result.Score != 80 || v.Result.Category != "Intermediate" {
		t.Fatalf("unexpected result: %+v", v.Result)
	}

	calls := mock.Calls()
	if len(calls) != 3 {
		t.Fatalf("expected 3 remote calls, got %d", len(calls))
	}
	if got := calls[1].Input; len(got) != 1 || got[0] != "python" {
		t.Fatalf("generate called with %q", got)
	}
	if got := calls[2].Input; len(got) != 2 || got[0] != "A concise way to build lists" || got[1] != "" {
		t.Fatalf("evaluate called with %q", got)
	}
}

func TestController_RemoteFailures(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantMsg string
	}{
		{"network error", &analysis.TransportError{Op: analysis.OpScanResume, Err: errors.New("connection refused")}, "An unexpected error occurred. Please try again."},
		{"service error", &analysis.RemoteError{Op: analysis.OpScanResume, StatusCode: 400, Message: "'resume'"}, "Error: 'resume'"},
		{"service error without message", &analysis.RemoteError{Op: analysis.OpScanResume, StatusCode: 500}, "Error: An unexpected error occurred"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := analysis.NewMockClient().
				Enqueue(analysis.OpScanResume,
					analysis.MockReply{Err: tt.err},
					analysis.MockReply{Scan: analysis.ScanResult{Skills: []string{"css"}}},
				)
			c := newTestController(t, mock)
			ctx := context.Background()

			if err := c.SubmitResume(ctx, "CSS wizard"); err != nil {
				t.Fatalf("remote failures must not be returned, got %v", err)
			}
			v := c.View()
			if v.Stage != AwaitingResume || v.Pending {
				t.Fatalf("expected unchanged stage and no pending call, got %+v", v)
			}
			if v.LastError != tt.wantMsg {
				t.Fatalf("LastError = %q, want %q", v.LastError, tt.wantMsg)
			}

			if err := c.SubmitResume(ctx, "CSS wizard"); err != nil {
				t.Fatalf("retry: %v", err)
			}
			v = c.View()
			if v.LastError != "" || v.Stage != SkillsReady {
				t.Fatalf("expected retry to clear error and advance, got %+v", v)
			}
		})
	}
}

func TestController_GenerateTestWithNoSkills(t *testing.T) {
	mock := analysis.NewMockClient().
		Enqueue(analysis.OpScanResume, analysis.MockReply{Scan: analysis.ScanResult{Skills: nil}})
	c := newTestController(t, mock)
	ctx := context.Background()

	if err := c.SubmitResume(ctx, "Forklift operator"); err != nil {
		t.Fatalf("SubmitResume: %v", err)
	}
	v := c.View()
	if v.Skills == nil || len(v.Skills) != 0 {
		t.Fatalf("expected empty non-nil skills, got %#v", v.Skills)
	}
	if !v.NoSkillsDetected() || v.CanGenerate() {
		t.Fatalf("expected view to flag no skills: %+v", v)
	}

	err := c.GenerateTest(ctx)
	if !errors.Is(err, ErrInvalidState) || !errors.Is(err, ErrNoSkills) {
		t.Fatalf("expected ErrNoSkills invalid state, got %v", err)
	}
	if len(mock.Calls()) != 1 {
		t.Fatalf("expected no remote call for rejected generate, got %d calls", len(mock.Calls()))
	}
	if c.View().Stage != SkillsReady {
		t.Fatalf("stage changed on rejection")
	}
}

func TestController_WrongStage(t *testing.T) {
	ctx := context.Background()
	c := newTestController(t, analysis.NewMockClient())

	tests := []struct {
		name string
		call func() error
	}{
		{"generate before scan", func() error { return c.GenerateTest(ctx) }},
		{"submit test before scan", func() error { return c.SubmitTest(ctx) }},
		{"set answer before test", func() error { return c.SetAnswer(0, "x") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			var ise *InvalidStateError
			if !errors.As(err, &ise) || !errors.Is(err, ErrWrongStage) {
				t.Fatalf("expected wrong stage error, got %v", err)
			}
			if ise.Stage != AwaitingResume {
				t.Fatalf("expected error to carry stage, got %s", ise.Stage)
			}
		})
	}

	c2, _ := toTestReady(t, pythonQuestions)
	if err := c2.SubmitResume(ctx, "again"); !errors.Is(err, ErrWrongStage) {
		t.Fatalf("expected resubmit to be rejected, got %v", err)
	}
	if got := c2.View().ResumeText; got != "Experienced in Python" {
		t.Fatalf("resume text must not change outside AwaitingResume, got %q", got)
	}
}

func TestController_SetAnswer(t *testing.T) {
	c, _ := toTestReady(t, pythonQuestions)

	if err := c.SetAnswer(1, "Tuples are immutable"); err != nil {
		t.Fatalf("SetAnswer: %v", err)
	}
	v := c.View()
	if v.Answers[0] != "" || v.Answers[1] != "Tuples are immutable" {
		t.Fatalf("SetAnswer touched the wrong index: %q", v.Answers)
	}
	if v.Answered() != 1 {
		t.Fatalf("expected 1 answered, got %d", v.Answered())
	}

	for _, idx := range []int{-1, 2, 100} {
		err := c.SetAnswer(idx, "x")
		var oor *IndexOutOfRangeError
		if !errors.As(err, &oor) || !errors.Is(err, ErrIndexOutOfRange) {
			t.Fatalf("index %d: expected IndexOutOfRangeError, got %v", idx, err)
		}
		if oor.Index != idx || oor.Len != 2 {
			t.Fatalf("unexpected error fields: %+v", oor)
		}
	}
}

func TestController_ScoreOutOfRange(t *testing.T) {
	c, mock := toTestReady(t, pythonQuestions)
	mock.Enqueue(analysis.OpEvaluateTest, analysis.MockReply{Evaluation: analysis.Evaluation{Score: 140, Category: "Expert"}})

	if err := c.SubmitTest(context.Background()); err != nil {
		t.Fatalf("SubmitTest: %v", err)
	}
	v := c.View()
	if v.Stage != TestReady || v.Result != nil {
		t.Fatalf("out of range score must not complete the session: %+v", v)
	}
	if v.LastError != "Error: The analysis service returned an invalid response." {
		t.Fatalf("unexpected LastError %q", v.LastError)
	}
}

func TestController_EmptyTestCanBeSubmitted(t *testing.T) {
	c, mock := toTestReady(t, nil)
	mock.Enqueue(analysis.OpEvaluateTest, analysis.MockReply{Evaluation: analysis.Evaluation{Score: 0, Category: "Beginner"}})

	v := c.View()
	if v.Questions == nil || len(v.Answers) != 0 {
		t.Fatalf("expected empty normalized test, got %+v", v)
	}
	if err := c.SubmitTest(context.Background()); err != nil {
		t.Fatalf("SubmitTest: %v", err)
	}
	if c.View().Stage != Completed {
		t.Fatal("expected Completed")
	}
}

func TestController_ViewIsACopy(t *testing.T) {
	c, _ := toTestReady(t, pythonQuestions)

	v := c.View()
	v.Answers[0] = "mutated"
	v.Questions[0] = "mutated"
	v.Skills[0] = "mutated"

	fresh := c.View()
	if fresh.Answers[0] != "" || fresh.Questions[0] != pythonQuestions[0] || fresh.Skills[0] != "python" {
		t.Fatalf("view mutation leaked into controller: %+v", fresh)
	}
}

// gatedClient blocks each call until released, so tests can observe the
// controller mid-flight.
type gatedClient struct {
	*analysis.MockClient
	entered chan analysis.Op
	gate    chan struct{}
}

func newGatedClient(mock *analysis.MockClient) *gatedClient {
	return &gatedClient{MockClient: mock, entered: make(chan analysis.Op, 1), gate: make(chan struct{})}
}

func (g *gatedClient) wait(op analysis.Op) {
	g.entered <- op
	<-g.gate
}

func (g *gatedClient) ScanResume(ctx context.Context, text string) (analysis.ScanResult, error) {
	g.wait(analysis.OpScanResume)
	return g.MockClient.ScanResume(ctx, text)
}

func (g *gatedClient) EvaluateTest(ctx context.Context, answers []string) (analysis.Evaluation, error) {
	g.wait(analysis.OpEvaluateTest)
	return g.MockClient.EvaluateTest(ctx, answers)
}

func TestController_RetryClearsErrorWhileInFlight(t *testing.T) {
	mock := analysis.NewMockClient().
		Enqueue(analysis.OpScanResume,
			analysis.MockReply{Err: &analysis.TransportError{Op: analysis.OpScanResume, Err: errors.New("timeout")}},
			analysis.MockReply{Scan: analysis.ScanResult{Skills: []string{"html"}}},
		)
	gc := newGatedClient(mock)
	c := newTestController(t, gc)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- c.SubmitResume(ctx, "HTML author") }()
	<-gc.entered
	gc.gate <- struct{}{}
	if err := <-done; err != nil {
		t.Fatalf("first attempt: %v", err)
	}
	if c.View().LastError == "" {
		t.Fatal("expected LastError after failed scan")
	}

	go func() { done <- c.SubmitResume(ctx, "HTML author") }()
	<-gc.entered

	v := c.View()
	if !v.Pending || v.PendingOp != analysis.OpScanResume {
		t.Fatalf("expected retry in flight, got %+v", v)
	}
	if v.LastError != "" {
		t.Fatalf("LastError must clear when the retry starts, got %q", v.LastError)
	}

	gc.gate <- struct{}{}
	if err := <-done; err != nil {
		t.Fatalf("retry: %v", err)
	}
	if v := c.View(); v.Stage != SkillsReady || v.Pending {
		t.Fatalf("unexpected view after retry: %+v", v)
	}
}

func TestController_SingleFlight(t *testing.T) {
	mock := analysis.NewMockClient().
		Enqueue(analysis.OpScanResume, analysis.MockReply{Scan: analysis.ScanResult{Skills: []string{"react"}}})
	gc := newGatedClient(mock)
	c := newTestController(t, gc)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- c.SubmitResume(ctx, "React developer") }()
	<-gc.entered

	v := c.View()
	if !v.Pending || v.PendingOp != analysis.OpScanResume {
		t.Fatalf("expected pending scan, got %+v", v)
	}

	err := c.SubmitResume(ctx, "Second résumé")
	if !errors.Is(err, ErrRequestInFlight) || !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrRequestInFlight, got %v", err)
	}
	if got := c.View().ResumeText; got != "React developer" {
		t.Fatalf("rejected call mutated state: %q", got)
	}

	close(gc.gate)
	if err := <-done; err != nil {
		t.Fatalf("SubmitResume: %v", err)
	}
	v = c.View()
	if v.Pending || v.Stage != SkillsReady {
		t.Fatalf("expected settled SkillsReady, got %+v", v)
	}
	if len(mock.Calls()) != 1 {
		t.Fatalf("expected exactly one remote call, got %d", len(mock.Calls()))
	}
}

func TestController_SetAnswerRejectedWhileSubmitting(t *testing.T) {
	mock := analysis.NewMockClient().
		Enqueue(analysis.OpScanResume, analysis.MockReply{Scan: analysis.ScanResult{Skills: []string{"python"}}}).
		Enqueue(analysis.OpGenerateTest, analysis.MockReply{Test: analysis.TestResult{Questions: pythonQuestions}}).
		Enqueue(analysis.OpEvaluateTest, analysis.MockReply{Evaluation: analysis.Evaluation{Score: 55, Category: "Intermediate"}})
	gc := newGatedClient(mock)
	c := newTestController(t, gc)
	ctx := context.Background()

	go func() { <-gc.entered; gc.gate <- struct{}{} }()
	if err := c.SubmitResume(ctx, "python"); err != nil {
		t.Fatalf("SubmitResume: %v", err)
	}
	if err := c.GenerateTest(ctx); err != nil {
		t.Fatalf("GenerateTest: %v", err)
	}
	if err := c.SetAnswer(0, "first"); err != nil {
		t.Fatalf("SetAnswer: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- c.SubmitTest(ctx) }()
	<-gc.entered

	if err := c.SetAnswer(0, "changed"); !errors.Is(err, ErrRequestInFlight) {
		t.Fatalf("expected ErrRequestInFlight, got %v", err)
	}

	gc.gate <- struct{}{}
	if err := <-done; err != nil {
		t.Fatalf("SubmitTest: %v", err)
	}
	calls := mock.Calls()
	if got := calls[len(calls)-1].Input[0]; got != "first" {
		t.Fatalf("evaluate saw %q, want %q", got, "first")
	}
}

func TestController_ConcurrentSubmitsOnlyOneWins(t *testing.T) {
	mock := analysis.NewMockClient()
	for range 8 {
		mock.Enqueue(analysis.OpScanResume, analysis.MockReply{Scan: analysis.ScanResult{Skills: []string{"html"}}})
	}
	gc := newGatedClient(mock)
	c := newTestController(t, gc)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- c.SubmitResume(context.Background(), "HTML")
		}()
	}
	<-gc.entered
	close(gc.gate)
	wg.Wait()
	close(errs)

	ok, rejected := 0, 0
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrInvalidState):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || rejected != 7 {
		t.Fatalf("expected 1 winner and 7 rejections, got %d/%d", ok, rejected)
	}
	if len(mock.Calls()) != 1 {
		t.Fatalf("expected one remote call, got %d", len(mock.Calls()))
	}
}

type panicClient struct{ analysis.Client }

func (panicClient) ScanResume(context.Context, string) (analysis.ScanResult, error) {
	panic("client exploded")
}

func TestController_ReleasesOnPanic(t *testing.T) {
	c := newTestController(t, panicClient{})

	func() {
		defer func() {
			if recover() == nil {
				t.Fatal("expected panic to propagate")
			}
		}()
		_ = c.SubmitResume(context.Background(), "x")
	}()

	if c.View().Pending {
		t.Fatal("pending flag not cleared after panic")
	}
}

type fakeRecorder struct {
	mu       sync.Mutex
	started  []store.SessionRecord
	updated  []store.SessionRecord
	err      error
	startErr []error // consumed one per StartSession before err
}

func (f *fakeRecorder) StartSession(_ context.Context, rec store.SessionRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started = append(f.started, rec)
	if len(f.startErr) > 0 {
		err := f.startErr[0]
		f.startErr = f.startErr[1:]
		return err
	}
	return f.err
}

func (f *fakeRecorder) UpdateSession(_ context.Context, rec store.SessionRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated = append(f.updated, rec)
	return f.err
}

func TestController_RecordsSession(t *testing.T) {
	mock := analysis.NewMockClient().
		Enqueue(analysis.OpScanResume, analysis.MockReply{Scan: analysis.ScanResult{Skills: []string{"python"}}}).
		Enqueue(analysis.OpGenerateTest, analysis.MockReply{Test: analysis.TestResult{Questions: pythonQuestions}}).
		Enqueue(analysis.OpEvaluateTest, analysis.MockReply{Evaluation: analysis.Evaluation{Score: 91, Category: "Expert"}})
	rec := &fakeRecorder{}
	c := newTestController(t, mock, WithRecorder(rec))
	ctx := context.Background()

	_ = c.SubmitResume(ctx, "Python")
	_ = c.GenerateTest(ctx)
	_ = c.SubmitTest(ctx)

	if len(rec.started) != 1 || rec.started[0].ID != "test-session" || rec.started[0].Stage != "skills_ready" {
		t.Fatalf("unexpected start records: %+v", rec.started)
	}
	if rec.started[0].ResumeChars != 6 {
		t.Fatalf("expected 6 resume chars, got %d", rec.started[0].ResumeChars)
	}
	if len(rec.updated) != 2 {
		t.Fatalf("expected 2 updates, got %d", len(rec.updated))
	}
	last := rec.updated[1]
	if last.Stage != "completed" || last.Score == nil || *last.Score != 91 || last.Category != "Expert" {
		t.Fatalf("unexpected final record: %+v", last)
	}
}

func TestController_RecorderErrorsAreSwallowed(t *testing.T) {
	mock := analysis.NewMockClient().
		Enqueue(analysis.OpScanResume, analysis.MockReply{Scan: analysis.ScanResult{Skills: []string{"css"}}})
	c := newTestController(t, mock, WithRecorder(&fakeRecorder{err: errors.New("disk full")}))

	if err := c.SubmitResume(context.Background(), "css"); err != nil {
		t.Fatalf("recorder failure leaked: %v", err)
	}
	if v := c.View(); v.Stage != SkillsReady || v.LastError != "" {
		t.Fatalf("recorder failure affected state: %+v", v)
	}
}

func TestController_RetriesFailedSessionInsert(t *testing.T) {
	mock := analysis.NewMockClient().
		Enqueue(analysis.OpScanResume, analysis.MockReply{Scan: analysis.ScanResult{Skills: []string{"go"}}}).
		Enqueue(analysis.OpGenerateTest, analysis.MockReply{Test: analysis.TestResult{Questions: []string{"What is a channel?"}}})
	rec := &fakeRecorder{startErr: []error{errors.New("database is locked")}}
	c := newTestController(t, mock, WithRecorder(rec))
	ctx := context.Background()

	_ = c.SubmitResume(ctx, "Go")
	_ = c.GenerateTest(ctx)

	if len(rec.started) != 2 {
		t.Fatalf("expected the insert to be retried, got %d starts", len(rec.started))
	}
	if rec.started[1].Stage != "test_ready" {
		t.Fatalf("retried insert should carry the latest stage, got %q", rec.started[1].Stage)
	}
	if len(rec.updated) != 0 {
		t.Fatalf("no update may precede a successful insert, got %d", len(rec.updated))
	}
}

func TestController_RecordsSessionStart(t *testing.T) {
	start := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	clock := start
	mock := analysis.NewMockClient().
		Enqueue(analysis.OpScanResume, analysis.MockReply{Scan: analysis.ScanResult{Skills: []string{"sql"}}})
	rec := &fakeRecorder{}
	c := newTestController(t, mock, WithRecorder(rec), WithClock(func() time.Time { return clock }))

	clock = start.Add(7 * time.Minute)
	_ = c.SubmitResume(context.Background(), "SQL")

	if got := c.View().StartedAt; !got.Equal(start) {
		t.Fatalf("View().StartedAt = %v, want %v", got, start)
	}
	if len(rec.started) != 1 || !rec.started[0].StartedAt.Equal(start) {
		t.Fatalf("expected record to carry the session start, got %+v", rec.started)
	}
}

func TestController_PassesSessionInContext(t *testing.T) {
	var got string
	c := newTestController(t, sessionSpy{got: &got})
	_ = c.SubmitResume(context.Background(), "x")
	if got != "test-session" {
		t.Fatalf("expected session id in context, got %q", got)
	}
}

type sessionSpy struct {
	analysis.Client
	got *string
}

func (s sessionSpy) ScanResume(ctx context.Context, _ string) (analysis.ScanResult, error) {
	*s.got = analysis.SessionFrom(ctx)
	return analysis.ScanResult{}, nil
}
