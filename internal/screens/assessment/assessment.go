// Package assessment is the résumé → skills → test → score screen.
package assessment

import (
	"context"

	"charm.land/bubbles/v2/textarea"
	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"

	"github.com/abhisek/resumebot/internal/analysis"
	"github.com/abhisek/resumebot/internal/router"
	"github.com/abhisek/resumebot/internal/screen"
	"github.com/abhisek/resumebot/internal/ui/components"
	"github.com/abhisek/resumebot/internal/ui/layout"
	"github.com/abhisek/resumebot/internal/workflow"
)

const (
	maxResumeChars = 50000
	maxAnswerChars = 2000
)

// Deps wires the screen to the analysis backend and the audit trail.
type Deps struct {
	Client   analysis.Client
	Recorder workflow.Recorder
	Logger   *zap.Logger
}

// AssessmentScreen drives one workflow.Controller. Every key press maps to
// at most one controller operation; what is drawn is derived from the
// controller's View.
type AssessmentScreen struct {
	deps Deps
	ctrl *workflow.Controller

	resume  textarea.Model
	answers []components.AnswerInput
	focus   int

	spinner   components.Spinner
	waiting   bool
	pendingOp analysis.Op
	notice    string

	view workflow.View
}

var _ screen.Screen = (*AssessmentScreen)(nil)
var _ screen.KeyHintProvider = (*AssessmentScreen)(nil)

// New creates a screen with a fresh session. prefill seeds the résumé box.
func New(deps Deps, prefill string) *AssessmentScreen {
	opts := []workflow.Option{}
	if deps.Logger != nil {
		opts = append(opts, workflow.WithLogger(deps.Logger))
	}
	if deps.Recorder != nil {
		opts = append(opts, workflow.WithRecorder(deps.Recorder))
	}
	ctrl := workflow.New(deps.Client, opts...)

	ta := textarea.New()
	ta.Placeholder = "Paste your resume here..."
	ta.ShowLineNumbers = false
	ta.CharLimit = maxResumeChars
	ta.SetWidth(60)
	ta.SetHeight(10)
	if prefill != "" {
		ta.SetValue(prefill)
	}

	return &AssessmentScreen{
		deps:   deps,
		ctrl:   ctrl,
		resume: ta,
		view:   ctrl.View(),
	}
}

func (s *AssessmentScreen) Init() tea.Cmd {
	return s.resume.Focus()
}

func (s *AssessmentScreen) Title() string {
	return "Assessment"
}

// Controller exposes the session for callers that need its id.
func (s *AssessmentScreen) Controller() *workflow.Controller {
	return s.ctrl
}

func (s *AssessmentScreen) KeyHints() []layout.KeyHint {
	if s.waiting {
		return []layout.KeyHint{{Key: "Esc", Description: "Back"}}
	}
	switch s.view.Stage {
	case workflow.AwaitingResume:
		return []layout.KeyHint{
			{Key: "Ctrl+S", Description: "Upload resume"},
			{Key: "Esc", Description: "Back"},
		}
	case workflow.SkillsReady:
		if s.view.NoSkillsDetected() {
			return []layout.KeyHint{
				{Key: "N", Description: "Try another resume"},
				{Key: "Esc", Description: "Back"},
			}
		}
		return []layout.KeyHint{
			{Key: "Enter", Description: "Generate test"},
			{Key: "N", Description: "Start over"},
			{Key: "Esc", Description: "Back"},
		}
	case workflow.TestReady:
		return []layout.KeyHint{
			{Key: "Tab", Description: "Next answer"},
			{Key: "Ctrl+S", Description: "Submit test"},
			{Key: "Esc", Description: "Back"},
		}
	case workflow.Completed:
		return []layout.KeyHint{
			{Key: "N", Description: "New assessment"},
			{Key: "Enter", Description: "Home"},
		}
	}
	return nil
}

func (s *AssessmentScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.resize(msg.Width, msg.Height)
		return s, nil

	case callDoneMsg:
		return s.handleDone(msg)

	case components.SpinnerTickMsg:
		if !s.waiting {
			return s, nil
		}
		s.spinner = s.spinner.Advance()
		return s, s.spinner.Tick()

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	return s.forward(msg)
}

func (s *AssessmentScreen) resize(width, height int) {
	cw := layout.ContentWidth(width)
	s.resume.SetWidth(cw - 2)
	if layout.IsCompactHeight(height) {
		s.resume.SetHeight(6)
	} else {
		s.resume.SetHeight(12)
	}
}

func (s *AssessmentScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	if s.waiting {
		return s, nil
	}
	key := msg.String()

	switch s.view.Stage {
	case workflow.AwaitingResume:
		if key == "ctrl+s" {
			text := s.resume.Value()
			s.resume.Blur()
			return s, s.run(analysis.OpScanResume, func(ctx context.Context) error {
				return s.ctrl.SubmitResume(ctx, text)
			})
		}

	case workflow.SkillsReady:
		switch key {
		case "enter":
			if !s.view.CanGenerate() {
				return s, nil
			}
			return s, s.run(analysis.OpGenerateTest, s.ctrl.GenerateTest)
		case "n", "N":
			return s, s.restart()
		}
		return s, nil

	case workflow.TestReady:
		switch key {
		case "tab", "down", "enter":
			return s, s.moveFocus(1)
		case "shift+tab", "up":
			return s, s.moveFocus(-1)
		case "ctrl+s":
			return s, s.run(analysis.OpEvaluateTest, s.ctrl.SubmitTest)
		}

	case workflow.Completed:
		switch key {
		case "n", "N":
			return s, s.restart()
		case "enter":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
		return s, nil
	}

	return s.forward(msg)
}

// forward passes msg to whichever input is live for the current stage.
func (s *AssessmentScreen) forward(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if s.waiting {
		return s, nil
	}

	var cmd tea.Cmd
	switch s.view.Stage {
	case workflow.AwaitingResume:
		s.resume, cmd = s.resume.Update(msg)
	case workflow.TestReady:
		if s.focus >= len(s.answers) {
			return s, nil
		}
		before := s.answers[s.focus].Value()
		s.answers[s.focus], cmd = s.answers[s.focus].Update(msg)
		if after := s.answers[s.focus].Value(); after != before {
			if err := s.ctrl.SetAnswer(s.focus, after); err != nil {
				s.notice = err.Error()
			} else {
				s.notice = ""
			}
			s.view = s.ctrl.View()
		}
	}
	return s, cmd
}

// run starts op in the background and animates the spinner until it
// returns.
func (s *AssessmentScreen) run(op analysis.Op, fn func(context.Context) error) tea.Cmd {
	s.waiting = true
	s.pendingOp = op
	s.notice = ""
	// The controller clears its error when the call starts; mirror that
	// now rather than when the call returns.
	s.view.LastError = ""
	s.view.Pending = true
	return tea.Batch(
		s.spinner.Tick(),
		func() tea.Msg {
			return callDoneMsg{Op: op, Err: fn(context.Background())}
		},
	)
}

func (s *AssessmentScreen) handleDone(msg callDoneMsg) (screen.Screen, tea.Cmd) {
	s.waiting = false
	if msg.Err != nil {
		s.notice = msg.Err.Error()
	}

	prev := s.view.Stage
	s.view = s.ctrl.View()

	switch {
	case s.view.Stage == workflow.AwaitingResume:
		return s, s.resume.Focus()
	case s.view.Stage == workflow.TestReady && prev != workflow.TestReady:
		s.answers = make([]components.AnswerInput, len(s.view.Questions))
		for i := range s.answers {
			s.answers[i] = components.NewAnswerInput(i+1, maxAnswerChars)
		}
		s.focus = 0
		if len(s.answers) > 0 {
			return s, s.answers[0].Focus()
		}
	}
	return s, nil
}

func (s *AssessmentScreen) moveFocus(delta int) tea.Cmd {
	if len(s.answers) == 0 {
		return nil
	}
	s.answers[s.focus].Blur()
	s.focus = (s.focus + delta + len(s.answers)) % len(s.answers)
	return s.answers[s.focus].Focus()
}

func (s *AssessmentScreen) restart() tea.Cmd {
	next := New(s.deps, "")
	return func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
}
