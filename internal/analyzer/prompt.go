package analyzer

import (
	"fmt"
	"strings"
)

const skillsPrompt = `You read résumés and list the technical skills they mention.

Rules:
- Return only concrete technologies, languages, frameworks, and tools.
- Use short lowercase names ("python", "react", "postgresql"), no versions.
- Keep the order in which skills first appear in the résumé.
- Do not infer skills the résumé does not mention.
- Return an empty list when none are found.`

const testPrompt = `You write short technical interview questions.

Rules:
- Write at most the requested number of questions for each listed skill.
- Each question must be answerable in a few sentences of plain text.
- Prefer conceptual questions ("What is...", "Explain the difference between...").
- Group questions by skill in the order the skills are listed.
- No code blocks, no multiple choice.`

const gradePrompt = `You grade answers to a technical interview test.

Rules:
- Each answer is paired with the question of the same number.
- An empty answer earns nothing for its question.
- Weigh all questions equally and return an overall score from 0 to 100.
- Be strict about factual errors and lenient about wording.`

func buildSkillsMessage(resume string, maxChars int) string {
	if maxChars > 0 && len(resume) > maxChars {
		resume = resume[:maxChars]
	}
	return "Résumé:\n" + resume
}

func buildTestMessage(skills []string, perSkill int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Questions per skill: %d\n", perSkill)
	b.WriteString("Skills:\n")
	for _, s := range skills {
		fmt.Fprintf(&b, "- %s\n", s)
	}
	return b.String()
}

func buildGradeMessage(questions, answers []string) string {
	var b strings.Builder
	for i, q := range questions {
		a := ""
		if i < len(answers) {
			a = strings.TrimSpace(answers[i])
		}
		if a == "" {
			a = "(no answer)"
		}
		fmt.Fprintf(&b, "%d. Question: %s\n   Answer: %s\n", i+1, q, a)
	}
	return b.String()
}
