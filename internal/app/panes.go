package app

import (
	"encoding/base64"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"
	"github.com/muesli/reflow/wordwrap"

	"github.com/jwulff/scribe/internal/api"
	"github.com/jwulff/scribe/internal/speakers"
	"github.com/jwulff/scribe/internal/tabs"
	"github.com/jwulff/scribe/internal/timeline"
	"github.com/jwulff/scribe/internal/transcript"
	"github.com/jwulff/scribe/internal/ui"
)

// segmentPane renders a session's segments in a scrollable view. It is the
// timeline's Highlighter.
type segmentPane struct {
	view        viewport.Model
	highlighted int
	cursor      int
	// starts holds the first content line of each segment.
	starts []int
}

func newSegmentPane() *segmentPane {
	return &segmentPane{view: viewport.New(0, 0), highlighted: -1}
}

func (p *segmentPane) reset() {
	p.highlighted = -1
	p.cursor = 0
	p.starts = nil
	p.view.SetContent("")
	p.view.GotoTop()
}

// Highlight marks segment i as active.
func (p *segmentPane) Highlight(i int) { p.highlighted = i }

// Unhighlight clears segment i if it is the active one.
func (p *segmentPane) Unhighlight(i int) {
	if p.highlighted == i {
		p.highlighted = -1
	}
}

// Center scrolls so segment i sits in the middle of the view.
func (p *segmentPane) Center(i int) {
	if i < 0 || i >= len(p.starts) {
		return
	}
	p.view.SetYOffset(max(0, p.starts[i]-p.view.Height/2))
}

// reveal scrolls just enough to show the cursor's segment.
func (p *segmentPane) reveal() {
	if p.cursor < 0 || p.cursor >= len(p.starts) {
		return
	}
	line := p.starts[p.cursor]
	if line < p.view.YOffset {
		p.view.SetYOffset(line)
	} else if line >= p.view.YOffset+p.view.Height {
		p.view.SetYOffset(line - p.view.Height + 2)
	}
}

func (p *segmentPane) layout(segments []timeline.Segment, palette *speakers.Palette, width, height int) {
	p.view.Width = width
	p.view.Height = max(1, height)
	if p.cursor >= len(segments) {
		p.cursor = max(0, len(segments)-1)
	}

	textW := max(10, width-4)
	var lines []string
	p.starts = p.starts[:0]
	for i, s := range segments {
		p.starts = append(p.starts, len(lines))

		marker := "  "
		if i == p.cursor {
			marker = ui.SelectedStyle.Render("› ")
		}
		name := s.Speaker
		if name == "" {
			name = speakers.Unknown
		}
		stamp := ui.TimestampStyle.Render("[" + transcript.FormatTime(s.Start) + "]")
		lines = append(lines, marker+stamp+" "+palette.Style(name).Render(name))

		for _, l := range strings.Split(wordwrap.String(s.Text, textW), "\n") {
			if i == p.highlighted {
				l = ui.HighlightStyle.Render(l)
			}
			lines = append(lines, "    "+l)
		}
	}
	if len(lines) == 0 {
		lines = append(lines, ui.DimStyle.Render("  This session has no transcript."))
	}
	p.view.SetContent(strings.Join(lines, "\n"))
}

// readerPane shows a block of text or markdown, re-rendered only when its
// source or width changes.
type readerPane struct {
	view     viewport.Model
	key      string
	source   string
	markdown bool
	width    int
}

func newReaderPane() *readerPane {
	return &readerPane{view: viewport.New(0, 0), width: -1}
}

// set replaces the content identified by key. Setting the same key again is a
// no-op so the scroll position survives.
func (r *readerPane) set(key, source string, markdown bool) {
	if r.key == key && r.source == source {
		return
	}
	r.key = key
	r.source = source
	r.markdown = markdown
	r.width = -1
	r.view.GotoTop()
}

func (r *readerPane) layout(width, height int) {
	r.view.Width = width
	r.view.Height = max(1, height)
	if r.width == width {
		return
	}
	r.width = width
	if r.markdown {
		r.view.SetContent(renderMarkdown(r.source, width))
	} else {
		r.view.SetContent(wordwrap.String(r.source, max(10, width)))
	}
}

// chatPanel is the question box with the active thread's history.
type chatPanel struct {
	open     bool
	scope    string
	sessions []string
	threads  []api.ChatThread
	chatID   string
	history  []api.ChatMessage
	pending  bool

	view  viewport.Model
	input textinput.Model
	dirty bool
	width int
}

func newChatPanel() *chatPanel {
	ti := textinput.New()
	ti.Placeholder = "Ask about your meetings..."
	ti.Prompt = "> "
	return &chatPanel{view: viewport.New(0, 0), input: ti, width: -1}
}

// reset clears the thread state for a new scope.
func (c *chatPanel) reset(scope string, sessions []string) {
	c.scope = scope
	c.sessions = sessions
	c.threads = nil
	c.chatID = ""
	c.history = nil
	c.pending = false
	c.dirty = true
}

func (c *chatPanel) append(role, content string) {
	c.history = append(c.history, api.ChatMessage{Role: role, Content: content})
	c.dirty = true
}

func (c *chatPanel) layout(width, height int) {
	c.view.Width = width
	c.view.Height = max(1, height)
	c.input.Width = max(10, width-4)
	if !c.dirty && c.width == width {
		return
	}
	c.dirty = false
	c.width = width

	var blocks []string
	for _, msg := range c.history {
		if msg.Role == "user" {
			blocks = append(blocks, ui.ChatUserStyle.Render("You")+"\n"+wordwrap.String(msg.Content, max(10, width-2)))
			continue
		}
		blocks = append(blocks, ui.ChatAssistantStyle.Render("Assistant")+"\n"+renderMarkdown(msg.Content, width))
	}
	if c.pending {
		blocks = append(blocks, ui.SpinnerStyle.Render("Thinking..."))
	}
	if len(blocks) == 0 {
		blocks = append(blocks, ui.DimStyle.Render("No messages yet."))
	}
	c.view.SetContent(strings.Join(blocks, "\n\n"))
	c.view.GotoBottom()
}

// threadLabel describes the active thread, such as "chat 2/3".
func (c *chatPanel) threadLabel() string {
	if len(c.threads) == 0 {
		return "new chat"
	}
	for i, t := range c.threads {
		if t.ID == c.chatID {
			if t.Title != "" {
				return fmt.Sprintf("%s (%d/%d)", t.Title, i+1, len(c.threads))
			}
			return fmt.Sprintf("chat %d/%d", i+1, len(c.threads))
		}
	}
	return "new chat"
}

// renderMarkdown renders text for a terminal of the given width, falling back
// to plain wrapping if glamour fails.
func renderMarkdown(text string, width int) string {
	width = max(10, width)
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath("dark"),
		glamour.WithWordWrap(width-2),
	)
	if err != nil {
		return wordwrap.String(text, width)
	}
	out, err := r.Render(text)
	if err != nil {
		return wordwrap.String(text, width)
	}
	return strings.Trim(out, "\n")
}

// documentBody returns what the reader shows for a document and whether it is
// markdown.
func documentBody(doc *tabs.DocumentPayload) (string, bool) {
	if doc.Type == "pdf" {
		size := base64.StdEncoding.DecodedLen(len(doc.Content))
		return fmt.Sprintf("%s is a PDF document (%s).\n\nPDF pages are not rendered in the terminal; open it from the web interface instead.",
			doc.Filename, humanSize(size)), false
	}
	switch strings.ToLower(filepath.Ext(doc.Filename)) {
	case ".md", ".markdown":
		return doc.Content, true
	}
	return doc.Content, false
}

func humanSize(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	}
	return fmt.Sprintf("%d B", n)
}
