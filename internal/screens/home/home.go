// Package home is the landing menu of the TUI.
package home

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/resumebot/internal/router"
	"github.com/abhisek/resumebot/internal/screen"
	"github.com/abhisek/resumebot/internal/screens/assessment"
	"github.com/abhisek/resumebot/internal/screens/history"
	"github.com/abhisek/resumebot/internal/store"
	"github.com/abhisek/resumebot/internal/ui/components"
	"github.com/abhisek/resumebot/internal/ui/layout"
	"github.com/abhisek/resumebot/internal/ui/theme"
)

const banner = `┏━┓┏━╸┏━┓╻ ╻┏┳┓┏━╸┏┓ ┏━┓╺┳╸
┣┳┛┣╸ ┗━┓┃ ┃┃┃┃┣╸ ┣┻┓┃ ┃ ┃
╹┗╸┗━╸┗━┛┗━┛╹ ╹┗━╸┗━┛┗━┛ ╹ `

const tagline = "Scan your resume, take a skill test, get a score."

// HomeScreen is the main menu.
type HomeScreen struct {
	menu    components.Menu
	backend string
}

var _ screen.Screen = (*HomeScreen)(nil)

// New creates the home menu. sessions may be nil, which disables
// History. prefill is handed to the first assessment only.
func New(deps assessment.Deps, sessions store.SessionRepo, backend, prefill string) *HomeScreen {
	h := &HomeScreen{backend: backend}

	items := []components.MenuItem{
		{
			Label:       "START ASSESSMENT",
			Description: "Paste a resume and get tested on its skills",
			Action: func() tea.Cmd {
				next := assessment.New(deps, prefill)
				prefill = ""
				return func() tea.Msg { return router.PushScreenMsg{Screen: next} }
			},
		},
		{
			Label:       "HISTORY",
			Description: "Review past sessions",
			Disabled:    sessions == nil,
			Action: func() tea.Cmd {
				return func() tea.Msg { return router.PushScreenMsg{Screen: history.New(sessions)} }
			},
		},
		{
			Label:  "QUIT",
			Action: func() tea.Cmd { return tea.Quit },
		},
	}
	h.menu = components.NewMenu(items)
	return h
}

func (h *HomeScreen) Init() tea.Cmd {
	return nil
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	cw := layout.ContentWidth(width)

	var sections []string
	if !layout.IsCompactHeight(height + layout.HeaderHeight + layout.FooterHeight) {
		sections = append(sections, theme.Title.Render(banner))
	}
	sections = append(sections, theme.Hint.Render(tagline))
	sections = append(sections, theme.Card.Width(min(cw, 56)).Render(strings.TrimRight(h.menu.View(), "\n")))
	if h.backend != "" {
		sections = append(sections, lipgloss.NewStyle().Foreground(theme.TextDim).Render("analysis backend: "+h.backend))
	}

	content := lipgloss.JoinVertical(lipgloss.Center, sections...)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

func (h *HomeScreen) Title() string {
	return "Home"
}
