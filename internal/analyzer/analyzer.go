// Package analyzer implements the analysis service on top of a hosted
// language model.
package analyzer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/abhisek/resumebot/internal/analysis"
	"github.com/abhisek/resumebot/internal/catalog"
	"github.com/abhisek/resumebot/internal/llm"
)

// Model task labels, visible in request logs.
const (
	TaskExtractSkills = "extract-skills"
	TaskGenerateTest  = "generate-test"
	TaskGradeTest     = "grade-test"
)

const msgNoTest = "No test has been generated yet"

// LLMAnalyzer implements analysis.Client. Answers are graded against the
// most recently generated test, position by position.
type LLMAnalyzer struct {
	provider llm.Provider
	config   Config
	logger   *zap.Logger

	mu       sync.Mutex
	lastTest []string
}

// New creates an LLMAnalyzer. A nil logger is replaced with a no-op one.
func New(provider llm.Provider, cfg Config, logger *zap.Logger) *LLMAnalyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LLMAnalyzer{provider: provider, config: cfg, logger: logger}
}

type skillsOutput struct {
	Skills []string `json:"skills"`
}

type testOutput struct {
	Questions []struct {
		Skill    string `json:"skill"`
		Question string `json:"question"`
	} `json:"questions"`
}

type gradeOutput struct {
	Score    float64 `json:"score"`
	Feedback string  `json:"feedback"`
}

func (a *LLMAnalyzer) ScanResume(ctx context.Context, resumeText string) (analysis.ScanResult, error) {
	if strings.TrimSpace(resumeText) == "" {
		return analysis.ScanResult{Skills: []string{}}, nil
	}

	var out skillsOutput
	err := a.generate(llm.WithTask(ctx, TaskExtractSkills), analysis.OpScanResume, llm.Request{
		Instructions: skillsPrompt,
		Prompt:       buildSkillsMessage(resumeText, a.config.MaxResumeChars),
		Schema:       SkillsSchema,
	}, &out)
	if err != nil {
		return analysis.ScanResult{}, err
	}

	skills := cleanSkills(out.Skills)
	if a.config.MaxSkills > 0 && len(skills) > a.config.MaxSkills {
		skills = skills[:a.config.MaxSkills]
	}
	return analysis.ScanResult{Skills: skills}, nil
}

func (a *LLMAnalyzer) GenerateTest(ctx context.Context, skills []string) (analysis.TestResult, error) {
	if len(skills) == 0 {
		a.remember(nil)
		return analysis.TestResult{Questions: []string{}}, nil
	}

	var out testOutput
	err := a.generate(llm.WithTask(ctx, TaskGenerateTest), analysis.OpGenerateTest, llm.Request{
		Instructions: testPrompt,
		Prompt:       buildTestMessage(skills, a.config.QuestionsPerSkill),
		Schema:       TestSchema,
		Temperature:  a.config.Temperature,
	}, &out)
	if err != nil {
		return analysis.TestResult{}, err
	}

	perSkill := make(map[string]int)
	questions := make([]string, 0, len(out.Questions))
	for _, q := range out.Questions {
		text := strings.TrimSpace(q.Question)
		if text == "" {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(q.Skill))
		if a.config.QuestionsPerSkill > 0 && perSkill[key] >= a.config.QuestionsPerSkill {
			continue
		}
		perSkill[key]++
		questions = append(questions, text)
	}

	a.remember(questions)
	return analysis.TestResult{Questions: questions}, nil
}

func (a *LLMAnalyzer) EvaluateTest(ctx context.Context, answers []string) (analysis.Evaluation, error) {
	a.mu.Lock()
	questions := slices.Clone(a.lastTest)
	a.mu.Unlock()

	if len(questions) == 0 {
		return analysis.Evaluation{}, &analysis.RemoteError{Op: analysis.OpEvaluateTest, Message: msgNoTest}
	}
	if len(answers) != len(questions) {
		a.logger.Warn("answer count differs from question count",
			zap.Int("answers", len(answers)),
			zap.Int("questions", len(questions)),
		)
	}

	var out gradeOutput
	err := a.generate(llm.WithTask(ctx, TaskGradeTest), analysis.OpEvaluateTest, llm.Request{
		Instructions: gradePrompt,
		Prompt:       buildGradeMessage(questions, answers),
		Schema:       GradeSchema,
	}, &out)
	if err != nil {
		return analysis.Evaluation{}, err
	}

	return analysis.Evaluation{Score: out.Score, Category: catalog.CategoryFor(out.Score)}, nil
}

func (a *LLMAnalyzer) remember(questions []string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastTest = questions
}

// generate runs one model request and decodes its JSON into out, mapping
// provider failures onto the analysis error taxonomy.
func (a *LLMAnalyzer) generate(ctx context.Context, op analysis.Op, req llm.Request, out any) error {
	if req.MaxTokens == 0 {
		req.MaxTokens = a.config.MaxTokens
	}

	resp, err := a.provider.Generate(ctx, req)
	if err != nil {
		return mapError(op, err)
	}
	if err := json.Unmarshal(resp.Content, out); err != nil {
		return &analysis.ErrInvalidResponse{Op: op, Body: resp.Content, Err: fmt.Errorf("decode model output: %w", err)}
	}
	return nil
}

func mapError(op analysis.Op, err error) error {
	var invalid *llm.ErrInvalidResponse
	if errors.As(err, &invalid) {
		return &analysis.ErrInvalidResponse{Op: op, Body: invalid.Content, Err: err}
	}
	return &analysis.TransportError{Op: op, Err: err}
}

// cleanSkills lowercases, trims, and deduplicates, keeping first order.
func cleanSkills(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
