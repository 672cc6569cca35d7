package catalog

import (
	"context"
	"math/rand/v2"
	"sync"

	"github.com/abhisek/resumebot/internal/analysis"
)

// QuestionsPerSkill caps how many questions a test draws per skill.
const QuestionsPerSkill = 2

// Client serves the analysis contract from a Catalog in-process.
type Client struct {
	cat *Catalog

	mu  sync.Mutex
	rng *rand.Rand
}

// NewClient returns a Client over cat. src drives question sampling and
// scoring; pass a fixed-seed source for reproducible runs.
func NewClient(cat *Catalog, src rand.Source) *Client {
	if cat == nil {
		cat = Default()
	}
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &Client{cat: cat, rng: rand.New(src)}
}

var _ analysis.Client = (*Client)(nil)

func (c *Client) ScanResume(_ context.Context, resumeText string) (analysis.ScanResult, error) {
	return analysis.ScanResult{Skills: c.cat.ExtractSkills(resumeText)}, nil
}

// GenerateTest samples up to QuestionsPerSkill questions for each known
// skill, in skill order. Unknown skills contribute nothing.
func (c *Client) GenerateTest(_ context.Context, skills []string) (analysis.TestResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	questions := []string{}
	for _, skill := range skills {
		bank := c.cat.Questions(skill)
		c.rng.Shuffle(len(bank), func(i, j int) { bank[i], bank[j] = bank[j], bank[i] })
		questions = append(questions, bank[:min(len(bank), QuestionsPerSkill)]...)
	}
	return analysis.TestResult{Questions: questions}, nil
}

// EvaluateTest does not grade content: it draws a uniform integer score
// in [0, 100].
func (c *Client) EvaluateTest(_ context.Context, _ []string) (analysis.Evaluation, error) {
	c.mu.Lock()
	score := float64(c.rng.IntN(101))
	c.mu.Unlock()

	return analysis.Evaluation{Score: score, Category: CategoryFor(score)}, nil
}
