package app

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"

	"github.com/jwulff/scribe/internal/library"
	"github.com/jwulff/scribe/internal/speakers"
	"github.com/jwulff/scribe/internal/timeline"
	"github.com/jwulff/scribe/internal/transcript"

	tea "github.com/charmbracelet/bubbletea"
)

type promptKind int

const (
	promptNewFolder promptKind = iota
	promptRenameFolder
	promptRenameSession
	promptRenameSpeaker
	promptEditSpeaker
	promptEditText
	promptTranscribe
	promptYouTube
	promptUpload
	promptExport
	promptConfirmDelete
)

// prompt is the one-line input shown above the footer.
type prompt struct {
	kind  promptKind
	label string
	input textinput.Model

	target string
	item   library.Kind
	index  int
	old    string
}

func newPrompt(kind promptKind, label, value string) *prompt {
	ti := textinput.New()
	ti.Prompt = ""
	ti.SetValue(value)
	ti.CursorEnd()
	ti.Focus()
	return &prompt{kind: kind, label: label, input: ti}
}

func (m *Model) open(p *prompt) tea.Cmd {
	m.prompt = p
	return textinput.Blink
}

func (m *Model) handlePromptKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case KeyEsc:
		m.prompt = nil
		return nil
	case KeyEnter:
		return m.submitPrompt()
	case KeyCtrlC:
		return m.quit()
	}
	var cmd tea.Cmd
	m.prompt.input, cmd = m.prompt.input.Update(msg)
	return cmd
}

// submitPrompt closes the prompt and starts the request it collected.
func (m *Model) submitPrompt() tea.Cmd {
	p := m.prompt
	m.prompt = nil
	value := strings.TrimSpace(p.input.Value())

	switch p.kind {
	case promptNewFolder:
		return createFolderCmd(m.ctx, m.backend, value)
	case promptRenameFolder:
		return renameFolderCmd(m.ctx, m.backend, p.target, value)
	case promptRenameSession:
		return renameSessionCmd(m.ctx, m.backend, p.target, value)
	case promptRenameSpeaker:
		if value == p.old {
			return nil
		}
		return renameSpeakerCmd(m.ctx, m.backend, p.target, p.old, value)
	case promptEditSpeaker:
		return editSegmentCmd(m.ctx, m.backend, p.target, p.index, timeline.FieldSpeaker, value)
	case promptEditText:
		if value == "" {
			return m.notify("Segment text unchanged")
		}
		return editSegmentCmd(m.ctx, m.backend, p.target, p.index, timeline.FieldText, value)
	case promptTranscribe:
		if value == "" {
			return nil
		}
		m.busy++
		return tea.Batch(m.notify("Transcribing "+filepath.Base(value)+"..."),
			transcribeFileCmd(m.ctx, m.backend, expandHome(value), m.defaults))
	case promptYouTube:
		if value == "" {
			return nil
		}
		m.busy++
		return tea.Batch(m.notify("Downloading and transcribing..."),
			youTubeCmd(m.ctx, m.backend, value, m.defaults))
	case promptUpload:
		if value == "" {
			return nil
		}
		return uploadCmd(m.ctx, m.backend, expandHome(value))
	case promptExport:
		if value == "" {
			return nil
		}
		segs := append([]timeline.Segment(nil), m.timeline.Segments()...)
		return exportCmd(segs, expandHome(value))
	case promptConfirmDelete:
		if v := strings.ToLower(value); v != "y" && v != "yes" {
			return m.notify("Delete cancelled")
		}
		return deleteCmd(m.ctx, m.backend, m.cache, m.backendURL, p.target, p.item)
	}
	return nil
}

// Prompt actions bound in keymap.go.

func (m *Model) promptNewFolder() tea.Cmd {
	return m.open(newPrompt(promptNewFolder, "New folder", ""))
}

func (m *Model) promptRename() tea.Cmd {
	n := m.selected()
	if n == nil {
		return nil
	}
	switch n.Kind {
	case library.KindFolder:
		p := newPrompt(promptRenameFolder, "Rename folder", n.Label)
		p.target = n.ID
		return m.open(p)
	case library.KindSession:
		p := newPrompt(promptRenameSession, "Rename session", n.Label)
		p.target = n.ID
		return m.open(p)
	}
	return m.notify("Documents cannot be renamed")
}

func (m *Model) promptRenameSession() tea.Cmd {
	if m.session == nil {
		return nil
	}
	p := newPrompt(promptRenameSession, "Rename session", m.session.Meta.Title)
	p.target = m.session.Meta.ID
	return m.open(p)
}

func (m *Model) promptDelete() tea.Cmd {
	n := m.selected()
	if n == nil {
		return nil
	}
	label := n.Label
	if label == "" {
		label = n.ID
	}
	p := newPrompt(promptConfirmDelete, "Delete "+string(n.Kind)+" "+label+"? (y/N)", "")
	p.target = n.ID
	p.item = n.Kind
	return m.open(p)
}

// cursorSegment returns the segment under the session cursor.
func (m *Model) cursorSegment() (int, timeline.Segment, bool) {
	segs := m.timeline.Segments()
	i := m.segments.cursor
	if m.session == nil || i < 0 || i >= len(segs) {
		return 0, timeline.Segment{}, false
	}
	return i, segs[i], true
}

func (m *Model) promptRenameSpeaker() tea.Cmd {
	_, seg, ok := m.cursorSegment()
	if !ok {
		return nil
	}
	if seg.Speaker == "" || seg.Speaker == speakers.Unknown {
		return m.notify("This segment has no speaker to rename; use S to set one")
	}
	p := newPrompt(promptRenameSpeaker, "Rename speaker "+seg.Speaker+" everywhere", seg.Speaker)
	p.target = m.session.Meta.ID
	p.old = seg.Speaker
	return m.open(p)
}

func (m *Model) promptEditSpeaker() tea.Cmd {
	i, seg, ok := m.cursorSegment()
	if !ok {
		return nil
	}
	p := newPrompt(promptEditSpeaker, "Speaker of this segment", seg.Speaker)
	p.target = m.session.Meta.ID
	p.index = i
	return m.open(p)
}

func (m *Model) promptEditText() tea.Cmd {
	i, seg, ok := m.cursorSegment()
	if !ok {
		return nil
	}
	p := newPrompt(promptEditText, "Segment text", seg.Text)
	p.target = m.session.Meta.ID
	p.index = i
	return m.open(p)
}

func (m *Model) promptTranscribe() tea.Cmd {
	return m.open(newPrompt(promptTranscribe, "Audio file to transcribe", ""))
}

func (m *Model) promptYouTube() tea.Cmd {
	return m.open(newPrompt(promptYouTube, "YouTube URL", ""))
}

func (m *Model) promptUpload() tea.Cmd {
	return m.open(newPrompt(promptUpload, "Document to upload", ""))
}

func (m *Model) promptExport() tea.Cmd {
	if m.session == nil {
		return nil
	}
	name := transcript.Filename(time.Now(), transcript.FormatText)
	return m.open(newPrompt(promptExport, "Export transcript to (.txt or .md)", name))
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
