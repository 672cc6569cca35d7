package workflow

import (
	"context"

	"github.com/abhisek/resumebot/internal/store"
)

// Recorder keeps an audit trail of sessions. It is write-only from the
// controller's point of view; nothing is ever read back into a live
// session. store.SessionRepo satisfies it.
type Recorder interface {
	StartSession(ctx context.Context, rec store.SessionRecord) error
	UpdateSession(ctx context.Context, rec store.SessionRecord) error
}

func (v View) record() store.SessionRecord {
	rec := store.SessionRecord{
		ID:          v.SessionID,
		StartedAt:   v.StartedAt,
		Stage:       v.Stage.String(),
		ResumeChars: len([]rune(v.ResumeText)),
		Skills:      v.Skills,
		Questions:   v.Questions,
		Answers:     v.Answers,
	}
	if v.Result != nil {
		score := v.Result.Score
		rec.Score = &score
		rec.Category = v.Result.Category
	}
	return rec
}
