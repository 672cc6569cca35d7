package components

import (
	"fmt"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/resumebot/internal/ui/theme"
)

// AnswerInput is a labelled single-line input for one test answer.
type AnswerInput struct {
	Model  textinput.Model
	Number int
}

// NewAnswerInput creates an unfocused input for question number n.
func NewAnswerInput(n int, charLimit int) AnswerInput {
	ti := textinput.New()
	ti.Placeholder = "Type your answer..."
	ti.Prompt = "› "
	if charLimit > 0 {
		ti.CharLimit = charLimit
	}
	return AnswerInput{Model: ti, Number: n}
}

func (a AnswerInput) Update(msg tea.Msg) (AnswerInput, tea.Cmd) {
	var cmd tea.Cmd
	a.Model, cmd = a.Model.Update(msg)
	return a, cmd
}

// Focus focuses the input and returns the cursor blink command.
func (a *AnswerInput) Focus() tea.Cmd {
	return a.Model.Focus()
}

func (a *AnswerInput) Blur() {
	a.Model.Blur()
}

func (a AnswerInput) Focused() bool {
	return a.Model.Focused()
}

func (a AnswerInput) Value() string {
	return a.Model.Value()
}

// View renders the number marker and the input; the focused input is
// highlighted.
func (a AnswerInput) View() string {
	marker := lipgloss.NewStyle().Foreground(theme.TextDim).Render(fmt.Sprintf("%2d.", a.Number))
	if a.Focused() {
		marker = theme.Selected.Render(fmt.Sprintf("%2d.", a.Number))
	}
	return marker + " " + a.Model.View()
}
