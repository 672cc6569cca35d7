package workflow

// Stage is the position of a session in the four-step assessment.
// Stages only move forward, one edge at a time.
type Stage int

const (
	AwaitingResume Stage = iota
	SkillsReady
	TestReady
	Completed
)

var stageNames = [...]string{
	AwaitingResume: "awaiting_resume",
	SkillsReady:    "skills_ready",
	TestReady:      "test_ready",
	Completed:      "completed",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return "unknown"
	}
	return stageNames[s]
}

// Next returns the stage a successful remote call advances s to.
// Completed is terminal and returns itself.
func (s Stage) Next() Stage {
	if s >= Completed {
		return Completed
	}
	return s + 1
}

// Terminal reports whether no further transition exists.
func (s Stage) Terminal() bool {
	return s == Completed
}
