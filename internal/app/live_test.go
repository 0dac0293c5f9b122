package app

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/jwulff/scribe/internal/api"

	tea "github.com/charmbracelet/bubbletea"
)

// TestLiveTUIFlow exercises the model against a running backend.
// Skipped unless SCRIBE_LIVE_URL is set.
func TestLiveTUIFlow(t *testing.T) {
	url := os.Getenv("SCRIBE_LIVE_URL")
	if url == "" {
		t.Skip("SCRIBE_LIVE_URL not set")
	}

	client := api.New(url, api.WithTimeout(10*time.Second))
	m := New(Options{Backend: client, BackendURL: client.BaseURL(), Logger: zerolog.Nop()})

	m, _ = applyUpdate(m, tea.WindowSizeMsg{Width: 120, Height: 40})
	if view := m.View(); view == "Initializing..." {
		t.Error("view should render after WindowSizeMsg")
	}

	data, err := client.Structure(context.Background())
	if err != nil {
		t.Fatalf("structure: %v", err)
	}
	m, _ = applyUpdate(m, StructureLoadedMsg{Seq: m.library.Begin(), Data: data})
	fmt.Printf("Library: %d folders, %d sessions, %d documents\n",
		len(data.Folders), len(data.Sessions), len(data.Documents))
	fmt.Println("=== Library View ===")
	fmt.Println(m.View())

	if len(data.Sessions) == 0 {
		t.Log("no sessions on the backend, stopping after the library")
		return
	}

	// Open the first session row.
	rows := m.library.Rows()
	for i, r := range rows {
		if r.Node.ID == data.Sessions[0].ID {
			m.cursor = i
		}
	}
	if m.selected() == nil || m.selected().ID != data.Sessions[0].ID {
		t.Log("first session is inside a collapsed folder, stopping")
		return
	}
	m, cmd := applyUpdate(m, key(KeyEnter))
	if cmd == nil {
		t.Fatal("opening a session should fetch it")
	}
	m, _ = applyUpdate(m, cmd())
	if m.errorMessage != "" {
		t.Fatalf("session load: %s", m.errorMessage)
	}
	fmt.Printf("Session %q: %d segments, %d speakers\n",
		m.session.Meta.Title, len(m.timeline.Segments()), len(m.palette.Names()))
	fmt.Println("=== Session View ===")
	fmt.Println(m.View())

	m, _ = applyUpdate(m, key(KeyRight))
	fmt.Printf("After skip: position=%.1f active=%d %s\n",
		m.player.Position(), m.timeline.Active(), m.activity.Label())
}
