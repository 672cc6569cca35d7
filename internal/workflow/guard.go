package workflow

import (
	"time"

	"github.com/abhisek/resumebot/internal/analysis"
)

// inflight is the token for the single remote call a Controller may have
// outstanding. Whoever holds the pointer stored in Controller.flight owns
// the call; release compares pointers so a stale token is a no-op.
type inflight struct {
	op      analysis.Op
	started time.Time
}
