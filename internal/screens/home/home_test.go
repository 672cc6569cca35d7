package home

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/resumebot/internal/analysis"
	"github.com/abhisek/resumebot/internal/router"
	"github.com/abhisek/resumebot/internal/screens/assessment"
)

func TestHome_StartAssessment(t *testing.T) {
	h := New(assessment.Deps{Client: analysis.NewMockClient()}, nil, "local", "prefilled resume")

	_, cmd := h.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a command")
	}
	push, ok := cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatal("expected PushScreenMsg")
	}
	if _, ok := push.Screen.(*assessment.AssessmentScreen); !ok {
		t.Errorf("pushed %T, want *assessment.AssessmentScreen", push.Screen)
	}
}

func TestHome_HistoryDisabledWithoutStore(t *testing.T) {
	h := New(assessment.Deps{Client: analysis.NewMockClient()}, nil, "", "")

	h.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if h.menu.Selected != 2 {
		t.Errorf("selected = %d, want QUIT (2) since HISTORY is disabled", h.menu.Selected)
	}
}

func TestHome_View(t *testing.T) {
	h := New(assessment.Deps{Client: analysis.NewMockClient()}, nil, "http", "")
	view := h.View(80, 30)
	for _, want := range []string{"START ASSESSMENT", "analysis backend: http"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}
