package assessment

import "github.com/abhisek/resumebot/internal/analysis"

// callDoneMsg is sent when a controller operation returns. Err is only
// set for rejected calls; remote failures surface through the view's
// LastError.
type callDoneMsg struct {
	Op  analysis.Op
	Err error
}
