package analyzer

import "github.com/abhisek/resumebot/internal/llm"

// SkillsSchema is the response shape for skill extraction.
var SkillsSchema = &llm.Schema{
	Name:        "resume-skills",
	Description: "Technical skills mentioned in a résumé",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"skills": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Short lowercase skill names in the order they appear, e.g. \"python\", \"react\"",
			},
		},
		"required":             []any{"skills"},
		"additionalProperties": false,
	},
}

// TestSchema is the response shape for question generation.
var TestSchema = &llm.Schema{
	Name:        "skills-test",
	Description: "Interview questions grouped by skill",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"skill":    map[string]any{"type": "string"},
						"question": map[string]any{"type": "string", "minLength": 1},
					},
					"required":             []any{"skill", "question"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"questions"},
		"additionalProperties": false,
	},
}

// GradeSchema is the response shape for grading a completed test.
var GradeSchema = &llm.Schema{
	Name:        "test-grade",
	Description: "Overall score for a set of answers",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"score": map[string]any{
				"type":        "number",
				"minimum":     0,
				"maximum":     100,
				"description": "Overall score from 0 (no correct answers) to 100 (all answers excellent)",
			},
			"feedback": map[string]any{
				"type":        "string",
				"description": "One or two sentences summarizing strengths and gaps",
			},
		},
		"required":             []any{"score", "feedback"},
		"additionalProperties": false,
	},
}
