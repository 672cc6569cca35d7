package assessment

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/muesli/reflow/wordwrap"

	"github.com/abhisek/resumebot/internal/analysis"
	"github.com/abhisek/resumebot/internal/ui/components"
	"github.com/abhisek/resumebot/internal/ui/layout"
	"github.com/abhisek/resumebot/internal/ui/theme"
	"github.com/abhisek/resumebot/internal/workflow"
)

const noSkillsText = "No skills detected. Please try uploading your resume again."

var pendingLabels = map[analysis.Op]string{
	analysis.OpScanResume:   "Scanning your resume...",
	analysis.OpGenerateTest: "Generating your skill test...",
	analysis.OpEvaluateTest: "Evaluating your answers...",
}

func (s *AssessmentScreen) View(width, height int) string {
	cw := layout.ContentWidth(width)

	var top []string
	if s.view.LastError != "" {
		top = append(top, theme.ErrorBanner.Width(cw).Render(s.view.LastError))
	}
	if s.notice != "" {
		top = append(top, lipgloss.NewStyle().Foreground(theme.Warning).Render(s.notice))
	}
	if s.waiting {
		label := pendingLabels[s.pendingOp]
		if label == "" {
			label = "Working..."
		}
		top = append(top, s.spinner.View(label))
	}

	header := strings.Join(top, "\n")
	avail := height - lipgloss.Height(header) - 1
	if header == "" {
		avail = height
	}

	var body string
	switch s.view.Stage {
	case workflow.AwaitingResume:
		body = s.renderResume()
	case workflow.SkillsReady:
		body = s.renderSkills(cw)
	case workflow.TestReady:
		body = s.renderTest(cw, avail)
	case workflow.Completed:
		body = renderResult(s.view.Result, cw)
	}

	content := body
	if header != "" {
		content = header + "\n\n" + body
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.NewStyle().Width(cw).Render(content))
}

func (s *AssessmentScreen) renderResume() string {
	var b strings.Builder
	b.WriteString(theme.Heading.Render("Paste your resume"))
	b.WriteString("\n\n")
	b.WriteString(s.resume.View())
	b.WriteString("\n\n")
	b.WriteString(components.NewButton("Upload Resume", "Ctrl+S", !s.waiting).View())
	return b.String()
}

func (s *AssessmentScreen) renderSkills(cw int) string {
	var b strings.Builder
	b.WriteString(theme.Heading.Render("Detected Skills:"))
	b.WriteString("\n\n")

	if s.view.NoSkillsDetected() {
		b.WriteString(theme.Hint.Render(wordwrap.String(noSkillsText, cw)))
	} else {
		for _, skill := range s.view.Skills {
			b.WriteString(lipgloss.NewStyle().Foreground(theme.Secondary).Render("  • "))
			b.WriteString(theme.Body.Render(skill))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n\n")
	b.WriteString(components.NewButton("Generate Skill Test", "Enter", s.view.CanGenerate()).View())
	return b.String()
}

// renderTest shows as many question blocks as fit in height, keeping the
// focused one visible.
func (s *AssessmentScreen) renderTest(cw, height int) string {
	head := theme.Heading.Render("Skill Test:")
	if len(s.view.Questions) == 0 {
		return head + "\n\n" + theme.Hint.Render("The service returned no questions. Submit to finish.") +
			"\n\n" + components.NewButton("Submit Test", "Ctrl+S", !s.waiting).View()
	}

	meter := components.Meter{
		Label: "Answered",
		Value: float64(s.view.Answered()),
		Max:   float64(len(s.view.Questions)),
		Width: cw,
	}.View()
	footer := components.NewButton("Submit Test", "Ctrl+S", !s.waiting).View()

	blocks := make([]string, len(s.view.Questions))
	for i, q := range s.view.Questions {
		text := wordwrap.String(q, cw-4)
		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.focus {
			style = style.Bold(true)
		}
		input := ""
		if i < len(s.answers) {
			input = s.answers[i].View()
		}
		blocks[i] = style.Render(text) + "\n" + input
	}

	budget := height - lipgloss.Height(head) - lipgloss.Height(meter) - lipgloss.Height(footer) - 6
	first, last := window(blocks, s.focus, budget)

	var b strings.Builder
	b.WriteString(head)
	b.WriteString("\n")
	b.WriteString(meter)
	b.WriteString("\n\n")
	if first > 0 {
		b.WriteString(theme.Hint.Render(fmt.Sprintf("↑ %d more", first)) + "\n")
	}
	b.WriteString(strings.Join(blocks[first:last+1], "\n\n"))
	if rest := len(blocks) - last - 1; rest > 0 {
		b.WriteString("\n" + theme.Hint.Render(fmt.Sprintf("↓ %d more", rest)))
	}
	b.WriteString("\n\n")
	b.WriteString(footer)
	return b.String()
}

// window returns the inclusive range of blocks to draw so that focus is
// visible and the total height stays within budget when possible.
func window(blocks []string, focus, budget int) (int, int) {
	if len(blocks) == 0 {
		return 0, -1
	}
	focus = min(max(focus, 0), len(blocks)-1)
	first, last := focus, focus
	used := lipgloss.Height(blocks[focus])
	for {
		grew := false
		if last+1 < len(blocks) {
			if h := lipgloss.Height(blocks[last+1]) + 1; used+h <= budget {
				last++
				used += h
				grew = true
			}
		}
		if first > 0 {
			if h := lipgloss.Height(blocks[first-1]) + 1; used+h <= budget {
				first--
				used += h
				grew = true
			}
		}
		if !grew {
			return first, last
		}
	}
}

func renderResult(r *workflow.Result, cw int) string {
	var b strings.Builder
	b.WriteString(theme.Heading.Render("Test Results:"))
	b.WriteString("\n\n")
	if r == nil {
		return b.String()
	}

	score := strconv.FormatFloat(r.Score, 'f', -1, 64)
	b.WriteString(theme.Body.Render("Score: " + score + "%"))
	b.WriteString("\n")
	b.WriteString(theme.Body.Render("Category: "))
	b.WriteString(lipgloss.NewStyle().Foreground(categoryColor(r.Category)).Bold(true).Render(r.Category))
	b.WriteString("\n\n")
	b.WriteString(components.Meter{
		Value:  r.Score,
		Max:    100,
		Width:  cw,
		Suffix: score + "%",
		Color:  categoryColor(r.Category),
	}.View())
	return b.String()
}

func categoryColor(category string) color.Color {
	switch category {
	case "Expert":
		return theme.Success
	case "Intermediate":
		return theme.Secondary
	case "Beginner":
		return theme.Warning
	default:
		return theme.Accent
	}
}
