package workflow

import (
	"slices"
	"time"

	"github.com/abhisek/resumebot/internal/analysis"
)

// Result is the scored outcome shown on completion.
type Result struct {
	Score    float64
	Category string
}

// View is a read-only snapshot of a session for rendering. Slices are
// copies; mutating them does not affect the controller.
type View struct {
	SessionID  string
	StartedAt  time.Time
	Stage      Stage
	ResumeText string
	Skills     []string
	Questions  []string
	Answers    []string
	Result     *Result

	// Pending is true while a remote call is in flight; PendingOp names it.
	Pending   bool
	PendingOp analysis.Op

	LastError string
}

// CanGenerate reports whether GenerateTest would be accepted.
func (v View) CanGenerate() bool {
	return v.Stage == SkillsReady && len(v.Skills) > 0 && !v.Pending
}

// NoSkillsDetected is true when the scan finished without any skill, so
// the user has to go back and try another résumé.
func (v View) NoSkillsDetected() bool {
	return v.Stage == SkillsReady && len(v.Skills) == 0
}

// Answered counts non-empty answers.
func (v View) Answered() int {
	n := 0
	for _, a := range v.Answers {
		if a != "" {
			n++
		}
	}
	return n
}

// state is the mutable aggregate behind a Controller. It is only touched
// with Controller.mu held.
type state struct {
	stage      Stage
	resumeText string
	skills     []string
	questions  []string
	answers    []string
	result     *Result
	lastError  string
}

func (s *state) view() View {
	v := View{
		Stage:      s.stage,
		ResumeText: s.resumeText,
		Skills:     slices.Clone(s.skills),
		Questions:  slices.Clone(s.questions),
		Answers:    slices.Clone(s.answers),
		LastError:  s.lastError,
	}
	if s.result != nil {
		r := *s.result
		v.Result = &r
	}
	return v
}
