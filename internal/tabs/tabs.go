// Package tabs tracks the open views (home, sessions, documents) and which one
// is active.
package tabs

import (
	"errors"
)

// HomeID is the id of the permanent home tab.
const HomeID = "home"

// ErrHomeTab is returned when closing the home tab.
var ErrHomeTab = errors.New("the home tab cannot be closed")

// ErrNoSuchTab is returned for an id that is not open.
var ErrNoSuchTab = errors.New("no such tab")

// Kind is what a tab shows.
type Kind string

const (
	KindHome     Kind = "home"
	KindSession  Kind = "session"
	KindDocument Kind = "document"
)

// Pane is the single content pane visible for the active tab.
type Pane int

const (
	PaneCreate Pane = iota
	PaneSession
	PaneDocument
)

func (p Pane) String() string {
	switch p {
	case PaneSession:
		return "session"
	case PaneDocument:
		return "document"
	}
	return "create"
}

// DocumentPayload is the loaded content of a document tab.
type DocumentPayload struct {
	Filename string
	Type     string
	Content  string
}

// Tab is one open view.
type Tab struct {
	ID       string
	Kind     Kind
	Title    string
	Document *DocumentPayload
}

// Transition describes the view after a tab operation.
type Transition struct {
	Active Tab
	Pane   Pane
	// FetchSession is set when the active session differs from the one
	// already loaded and must be fetched.
	FetchSession string
}

// Manager holds the ordered open tabs. The home tab is always first.
type Manager struct {
	tabs     []Tab
	activeID string
	loaded   string
}

// New returns a manager with only the home tab, active.
func New() *Manager {
	return &Manager{
		tabs:     []Tab{{ID: HomeID, Kind: KindHome, Title: "Home"}},
		activeID: HomeID,
	}
}

// Tabs returns a copy of the open tabs in order.
func (m *Manager) Tabs() []Tab {
	out := make([]Tab, len(m.tabs))
	copy(out, m.tabs)
	return out
}

// Active returns the active tab.
func (m *Manager) Active() Tab {
	return m.tabs[m.index(m.activeID)]
}

// LoadedSession returns the id of the session whose content is loaded.
func (m *Manager) LoadedSession() string { return m.loaded }

// MarkLoaded records that a session's content is now displayed. Pass "" after
// a failed load so the next switch retries.
func (m *Manager) MarkLoaded(id string) { m.loaded = id }

// Open switches to tab.ID if already open, otherwise appends it first.
func (m *Manager) Open(tab Tab) Transition {
	if i := m.index(tab.ID); i >= 0 {
		if tab.Document != nil {
			m.tabs[i].Document = tab.Document
		}
		t, _ := m.Switch(tab.ID)
		return t
	}
	if tab.Kind == "" {
		tab.Kind = KindSession
	}
	m.tabs = append(m.tabs, tab)
	t, _ := m.Switch(tab.ID)
	return t
}

// Switch activates the tab id.
func (m *Manager) Switch(id string) (Transition, error) {
	i := m.index(id)
	if i < 0 {
		return Transition{}, ErrNoSuchTab
	}
	m.activeID = id
	return m.transition(m.tabs[i]), nil
}

func (m *Manager) transition(tab Tab) Transition {
	t := Transition{Active: tab, Pane: paneFor(tab.Kind)}
	switch tab.Kind {
	case KindSession:
		if m.loaded != tab.ID {
			t.FetchSession = tab.ID
		}
	case KindHome:
		m.loaded = ""
	}
	return t
}

// Close removes tab id. When it was active, the tab now at the same index
// becomes active, clamped to the last tab.
func (m *Manager) Close(id string) (Transition, error) {
	if id == HomeID {
		return Transition{}, ErrHomeTab
	}
	i := m.index(id)
	if i < 0 {
		return Transition{}, ErrNoSuchTab
	}
	wasActive := m.activeID == id
	m.tabs = append(m.tabs[:i], m.tabs[i+1:]...)
	if m.loaded == id {
		m.loaded = ""
	}
	if !wasActive {
		return Transition{Active: m.Active(), Pane: paneFor(m.Active().Kind)}, nil
	}
	if i >= len(m.tabs) {
		i = len(m.tabs) - 1
	}
	return m.Switch(m.tabs[i].ID)
}

// SetTitle renames an open tab. Unknown ids are ignored.
func (m *Manager) SetTitle(id, title string) {
	if i := m.index(id); i >= 0 {
		m.tabs[i].Title = title
	}
}

// Next activates the tab after the active one, wrapping around.
func (m *Manager) Next() Transition {
	i := (m.index(m.activeID) + 1) % len(m.tabs)
	t, _ := m.Switch(m.tabs[i].ID)
	return t
}

// Prev activates the tab before the active one, wrapping around.
func (m *Manager) Prev() Transition {
	i := (m.index(m.activeID) - 1 + len(m.tabs)) % len(m.tabs)
	t, _ := m.Switch(m.tabs[i].ID)
	return t
}

// Has reports whether id is open.
func (m *Manager) Has(id string) bool { return m.index(id) >= 0 }

func (m *Manager) index(id string) int {
	for i, t := range m.tabs {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func paneFor(k Kind) Pane {
	switch k {
	case KindSession:
		return PaneSession
	case KindDocument:
		return PaneDocument
	}
	return PaneCreate
}
