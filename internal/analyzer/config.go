package analyzer

// Config controls the behavior of the LLMAnalyzer.
type Config struct {
	// MaxTokens is the token budget for each LLM response.
	MaxTokens int

	// Temperature controls LLM output randomness (0.0-1.0). Question
	// generation uses it as is; extraction and grading run at zero.
	Temperature float64

	// QuestionsPerSkill caps how many questions are asked per skill.
	QuestionsPerSkill int

	// MaxSkills caps the number of skills kept from a résumé.
	MaxSkills int

	// MaxResumeChars truncates long résumés before they reach the prompt.
	MaxResumeChars int
}

// DefaultConfig returns a Config with recommended defaults.
func DefaultConfig() Config {
	return Config{
		MaxTokens:         1024,
		Temperature:       0.7,
		QuestionsPerSkill: 2,
		MaxSkills:         8,
		MaxResumeChars:    20000,
	}
}
