package workflow

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"testing"

	"pgregory.net/rapid"

	"github.com/abhisek/resumebot/internal/analysis"
)

// scriptedClient fails or succeeds according to the next drawn outcome.
type scriptedClient struct {
	fail      bool
	skills    []string
	questions []string
	score     float64
}

func (s *scriptedClient) err(op analysis.Op) error {
	if s.fail {
		return &analysis.TransportError{Op: op, Err: errors.New("scripted failure")}
	}
	return nil
}

func (s *scriptedClient) ScanResume(context.Context, string) (analysis.ScanResult, error) {
	return analysis.ScanResult{Skills: s.skills}, s.err(analysis.OpScanResume)
}

func (s *scriptedClient) GenerateTest(context.Context, []string) (analysis.TestResult, error) {
	return analysis.TestResult{Questions: s.questions}, s.err(analysis.OpGenerateTest)
}

func (s *scriptedClient) EvaluateTest(context.Context, []string) (analysis.Evaluation, error) {
	return analysis.Evaluation{Score: s.score, Category: "x"}, s.err(analysis.OpEvaluateTest)
}

func TestController_StateMachineInvariants(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		client := &scriptedClient{}
		c := New(client)
		ctx := context.Background()

		steps := rapid.IntRange(1, 40).Draw(t, "steps")
		for i := range steps {
			before := c.View()

			client.fail = rapid.Bool().Draw(t, fmt.Sprintf("fail_%d", i))
			client.skills = rapid.SliceOfN(rapid.SampledFrom([]string{"python", "css", "html"}), 0, 3).Draw(t, fmt.Sprintf("skills_%d", i))
			client.questions = rapid.SliceOfN(rapid.StringMatching(`[a-z ]{1,12}\?`), 0, 5).Draw(t, fmt.Sprintf("questions_%d", i))
			client.score = rapid.Float64Range(-20, 120).Draw(t, fmt.Sprintf("score_%d", i))

			var err error
			remote := true
			switch action := rapid.IntRange(0, 3).Draw(t, fmt.Sprintf("action_%d", i)); action {
			case 0:
				err = c.SubmitResume(ctx, "resume")
			case 1:
				err = c.GenerateTest(ctx)
			case 2:
				remote = false
				idx := rapid.IntRange(-1, 6).Draw(t, fmt.Sprintf("index_%d", i))
				val := rapid.String().Draw(t, fmt.Sprintf("value_%d", i))
				err = c.SetAnswer(idx, val)
				after := c.View()
				if err == nil {
					for j := range after.Answers {
						if j == idx {
							if after.Answers[j] != val {
								t.Fatalf("answer %d not set", j)
							}
						} else if after.Answers[j] != before.Answers[j] {
							t.Fatalf("SetAnswer(%d) changed index %d", idx, j)
						}
					}
				}
			case 3:
				err = c.SubmitTest(ctx)
			}

			after := c.View()

			if after.Pending {
				t.Fatalf("pending after synchronous call returned")
			}
			if after.Stage < before.Stage || after.Stage > before.Stage+1 {
				t.Fatalf("stage moved %s -> %s", before.Stage, after.Stage)
			}
			if after.Stage >= TestReady && len(after.Answers) != len(after.Questions) {
				t.Fatalf("answers/questions misaligned: %d vs %d", len(after.Answers), len(after.Questions))
			}
			if after.Result != nil && (after.Result.Score < 0 || after.Result.Score > 100) {
				t.Fatalf("result score %v out of range", after.Result.Score)
			}
			if (after.Stage == Completed) != (after.Result != nil) {
				t.Fatalf("result presence does not match stage %s", after.Stage)
			}

			if err != nil {
				// Rejected preconditions leave everything untouched.
				if !slices.Equal(after.Answers, before.Answers) || after.Stage != before.Stage || after.LastError != before.LastError {
					t.Fatalf("rejected call mutated state: %v", err)
				}
				continue
			}
			if !remote {
				continue
			}
			if client.fail {
				if after.Stage != before.Stage || after.LastError == "" {
					t.Fatalf("failed call: stage %s -> %s, error %q", before.Stage, after.Stage, after.LastError)
				}
			} else if after.Stage == before.Stage.Next() && after.LastError != "" {
				t.Fatalf("successful call left error %q", after.LastError)
			}
		}
	})
}
