// Package history lists past assessment sessions from the store.
package history

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/muesli/reflow/wordwrap"

	"github.com/abhisek/resumebot/internal/router"
	"github.com/abhisek/resumebot/internal/screen"
	"github.com/abhisek/resumebot/internal/store"
	"github.com/abhisek/resumebot/internal/ui/layout"
	"github.com/abhisek/resumebot/internal/ui/theme"
)

const pageSize = 50

type historyLoadedMsg struct {
	Sessions []store.SessionRecord
	Err      error
}

// HistoryScreen displays past sessions, newest first.
type HistoryScreen struct {
	repo     store.SessionRepo
	sessions []store.SessionRecord
	selected int
	expanded map[int]bool
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(repo store.SessionRepo) *HistoryScreen {
	return &HistoryScreen{
		repo:     repo,
		expanded: make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	return func() tea.Msg {
		sessions, err := s.repo.ListSessions(context.Background(), store.QueryOpts{Limit: pageSize})
		return historyLoadedMsg{Sessions: sessions, Err: err}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.sessions = msg.Sessions
		}
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.sessions)-1 {
				s.selected++
			}
		case "enter":
			s.expanded[s.selected] = !s.expanded[s.selected]
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	center := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)
	if s.errMsg != "" {
		return center.Foreground(theme.Error).Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return center.Foreground(theme.TextDim).Render("\n\n  Loading history...")
	}
	if len(s.sessions) == 0 {
		return center.Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No sessions yet. Start an assessment!")
	}

	cw := layout.ContentWidth(width)
	var b strings.Builder
	b.WriteString("\n")

	for i, sess := range s.sessions {
		prefix := "  "
		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			prefix = "> "
			style = style.Foreground(theme.Primary).Bold(true)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(prefix+Summary(sess))))
		b.WriteString("\n")

		if s.expanded[i] {
			details := lipgloss.NewStyle().Width(cw).Foreground(theme.TextDim).Render(Details(sess, cw-4))
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, details))
			b.WriteString("\n")
		}
	}

	return b.String()
}

// Summary is the one-line description of a session.
func Summary(r store.SessionRecord) string {
	outcome := strings.ReplaceAll(r.Stage, "_", " ")
	if r.Score != nil {
		outcome = fmt.Sprintf("%s%% %s", strconv.FormatFloat(*r.Score, 'f', -1, 64), r.Category)
	}
	return fmt.Sprintf("%s  %d skills  %d questions  %s",
		r.StartedAt.Local().Format("Jan 02, 2006 15:04"), len(r.Skills), len(r.Questions), outcome)
}

// Details renders skills and each question with its answer.
func Details(r store.SessionRecord, width int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Session %s\n", r.ID)
	if len(r.Skills) > 0 {
		fmt.Fprintf(&b, "Skills: %s\n", strings.Join(r.Skills, ", "))
	}
	for i, q := range r.Questions {
		answer := ""
		if i < len(r.Answers) {
			answer = r.Answers[i]
		}
		if answer == "" {
			answer = "(no answer)"
		}
		fmt.Fprintf(&b, "%d. %s\n   %s\n", i+1, wordwrap.String(q, width), answer)
	}
	return strings.TrimRight(b.String(), "\n")
}
