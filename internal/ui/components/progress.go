package components

import (
	"fmt"
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/resumebot/internal/ui/theme"
)

// Meter is a horizontal bar for a value in [0, Max], used for answered
// questions and the final score.
type Meter struct {
	Label string
	Value float64
	Max   float64
	Width int

	// Suffix replaces the default "n/max" text after the bar.
	Suffix string
	Color  color.Color
}

// Fraction returns Value/Max clamped to [0, 1].
func (m Meter) Fraction() float64 {
	if m.Max <= 0 {
		return 0
	}
	return min(max(m.Value/m.Max, 0), 1)
}

// View renders the meter.
func (m Meter) View() string {
	var b strings.Builder
	if m.Label != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Render(m.Label) + "  ")
	}

	suffix := m.Suffix
	if suffix == "" {
		suffix = fmt.Sprintf("%g/%g", m.Value, m.Max)
	}
	suffix = "  " + suffix

	barWidth := max(m.Width-lipgloss.Width(b.String())-lipgloss.Width(suffix), 4)
	filled := int(float64(barWidth) * m.Fraction())

	fill := m.Color
	if fill == nil {
		fill = theme.Secondary
	}
	b.WriteString(lipgloss.NewStyle().Background(fill).Render(strings.Repeat(" ", filled)))
	b.WriteString(lipgloss.NewStyle().Background(theme.Border).Render(strings.Repeat(" ", barWidth-filled)))
	b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Render(suffix))
	return b.String()
}
