// Package catalog is the built-in reference implementation of the
// analysis service: keyword skill extraction over a fixed skills →
// questions table, sampled tests, and a randomized score.
package catalog

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

// Catalog maps lowercase skill names to their question bank.
type Catalog struct {
	questions map[string][]string
}

// Default returns the built-in catalog.
func Default() *Catalog {
	return &Catalog{questions: map[string][]string{
		"python": {
			"What is a list comprehension?",
			"Explain the difference between a tuple and a list.",
		},
		"javascript": {
			"What is closure in JavaScript?",
			"Explain the difference between let and var.",
		},
		"react": {
			"What is JSX?",
			"Explain the concept of state in React.",
		},
		"css": {
			"What is the box model?",
			"Explain the difference between flexbox and grid.",
		},
		"html": {
			"What is semantic HTML?",
			"Explain the purpose of the 'alt' attribute in img tags.",
		},
	}}
}

type catalogFile struct {
	Skills map[string][]string `yaml:"skills"`
}

// LoadFile reads a YAML catalog of the form
//
//	skills:
//	  go:
//	    - What is a goroutine?
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	if len(f.Skills) == 0 {
		return nil, fmt.Errorf("catalog %s: no skills defined", path)
	}

	c := &Catalog{questions: make(map[string][]string, len(f.Skills))}
	for skill, qs := range f.Skills {
		key := strings.ToLower(strings.TrimSpace(skill))
		if key == "" || strings.IndexFunc(key, isSeparator) >= 0 {
			return nil, fmt.Errorf("catalog %s: invalid skill name %q", path, skill)
		}
		c.questions[key] = append(c.questions[key], qs...)
	}
	return c, nil
}

// Skills returns the known skill names, sorted.
func (c *Catalog) Skills() []string {
	out := make([]string, 0, len(c.questions))
	for k := range c.questions {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// Questions returns a copy of the question bank for skill.
func (c *Catalog) Questions(skill string) []string {
	return slices.Clone(c.questions[skill])
}

// ExtractSkills returns the catalog skills mentioned in text, matched as
// whole words case-insensitively, deduplicated in order of first
// appearance. The result is never nil.
func (c *Catalog) ExtractSkills(text string) []string {
	out := []string{}
	seen := make(map[string]bool)
	for _, word := range strings.FieldsFunc(strings.ToLower(text), isSeparator) {
		if _, ok := c.questions[word]; ok && !seen[word] {
			seen[word] = true
			out = append(out, word)
		}
	}
	return out
}

func isSeparator(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

// CategoryFor buckets a 0–100 score: above 80 is Expert, above 50
// Intermediate, anything else Beginner.
func CategoryFor(score float64) string {
	switch {
	case score > 80:
		return "Expert"
	case score > 50:
		return "Intermediate"
	default:
		return "Beginner"
	}
}
