package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jwulff/scribe/internal/library"
	"github.com/jwulff/scribe/internal/tabs"
	"github.com/jwulff/scribe/internal/transcript"
	"github.com/jwulff/scribe/internal/ui"
)

// Rows used by everything except the main content.
const chromeLines = 6

func (m Model) contentHeight() int {
	if m.height == 0 {
		return 20
	}
	return max(5, m.height-chromeLines)
}

func (m Model) sidebarWidth() int {
	if m.width == 0 {
		return 30
	}
	return max(24, m.width*30/100)
}

func (m Model) mainWidth() int {
	if m.width == 0 {
		return 60
	}
	return max(30, m.width-m.sidebarWidth()-1)
}

// chatHeight is the share of the main pane given to the chat panel.
func (m Model) chatHeight() int {
	if !m.chat.open {
		return 0
	}
	h := m.contentHeight()
	return min(h-3, max(4, h*2/5))
}

// layout sizes the panes and re-renders their content.
func (m *Model) layout() {
	w := m.mainWidth()
	h := m.contentHeight() - m.chatHeight()

	// Session and document panes spend two lines on their header.
	bodyH := max(1, h-2)
	m.segments.layout(m.timeline.Segments(), m.palette, w, bodyH)
	m.reader.layout(w, bodyH)
	if m.chat.open {
		m.chat.layout(w, m.chatHeight()-3)
	}
}

// View renders the full TUI.
func (m Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	var sections []string
	sections = append(sections, m.renderHeader())
	sections = append(sections, m.renderTabBar())
	sections = append(sections, ui.DividerStyle.Render(strings.Repeat("─", m.width)))
	sections = append(sections, m.renderMainContent())
	sections = append(sections, ui.DividerStyle.Render(strings.Repeat("─", m.width)))
	sections = append(sections, m.renderStatusLine())
	sections = append(sections, m.renderFooter())

	return strings.Join(sections, "\n")
}

func (m Model) renderHeader() string {
	title := ui.TitleStyle.Render("SCRIBE")
	server := ui.DimStyle.Render("  " + m.backendURL)

	var state string
	switch {
	case m.offline:
		state = "  " + ui.ErrorTextStyle.Render("offline")
	case !m.cachedAt.IsZero():
		state = "  " + ui.DimStyle.Render("cached "+m.cachedAt.Format("Jan 2 15:04"))
	case !m.library.Loaded():
		state = "  " + ui.SpinnerStyle.Render("⟳ loading")
	}
	if m.busy > 0 {
		state += "  " + ui.SpinnerStyle.Render(fmt.Sprintf("⟳ transcribing (%d)", m.busy))
	}
	return title + server + state
}

func (m Model) renderTabBar() string {
	active := m.tabs.Active().ID
	var parts []string
	for _, t := range m.tabs.Tabs() {
		title := t.Title
		if title == "" {
			title = t.ID
		}
		title = truncateToWidth(title, 20)
		if t.ID == active {
			parts = append(parts, ui.TabActiveStyle.Render(title))
		} else {
			parts = append(parts, ui.TabStyle.Render(title))
		}
	}
	return truncateToWidth(strings.Join(parts, ""), m.width)
}

func (m Model) renderMainContent() string {
	sideW := m.sidebarWidth()
	mainW := m.mainWidth()
	contentH := m.contentHeight()

	side := strings.Split(m.renderLibraryPanel(sideW, contentH), "\n")
	main := strings.Split(m.renderMainPanel(mainW, contentH), "\n")
	divider := ui.DividerStyle.Render("│")

	rows := make([]string, 0, contentH)
	for i := 0; i < contentH; i++ {
		l := strings.Repeat(" ", sideW)
		if i < len(side) {
			l = padRight(side[i], sideW)
		}
		r := ""
		if i < len(main) {
			r = main[i]
		}
		rows = append(rows, l+divider+r)
	}
	return strings.Join(rows, "\n")
}

func (m Model) panelTitle(text string, focused bool) string {
	if focused {
		return ui.PanelTitleActiveStyle.Render(text)
	}
	return ui.PanelTitleStyle.Render(text)
}

func (m Model) renderLibraryPanel(width, height int) string {
	rows := m.library.Rows()
	lines := []string{m.panelTitle("LIBRARY", m.focus == FocusLibrary)}

	if len(rows) == 0 {
		if m.library.Loaded() {
			lines = append(lines, ui.DimStyle.Render("  Nothing here yet."))
			lines = append(lines, ui.DimStyle.Render("  t transcribes a file"))
		} else {
			lines = append(lines, ui.DimStyle.Render("  Loading library..."))
		}
		return strings.Join(lines, "\n")
	}

	visible := height - 1
	start := 0
	if m.cursor >= visible {
		start = m.cursor - visible + 1
	}
	grabbed, _, grabbing := m.drag.Dragging()

	for i := start; i < len(rows) && i < start+visible; i++ {
		row := rows[i]
		n := row.Node
		line := strings.Repeat("  ", row.Depth) + m.rowIcon(n) + " " + m.rowLabel(n)
		if m.library.IsChecked(n.ID) {
			line += " " + ui.CheckedStyle.Render("✓")
		}

		cursor := "  "
		if i == m.cursor && m.focus == FocusLibrary {
			cursor = ui.SelectedStyle.Render("> ")
		}
		switch {
		case grabbing && n.ID == grabbed:
			line = ui.GrabbedStyle.Render(line)
		case n.ID == m.library.Active():
			line = ui.SelectedStyle.Render(line)
		}
		lines = append(lines, truncateToWidth(cursor+line, width))
	}
	return strings.Join(lines, "\n")
}

func (m Model) rowIcon(n *library.Node) string {
	switch n.Kind {
	case library.KindFolder:
		if m.library.Expanded(n.ID) {
			return ui.FolderStyle.Render("▾")
		}
		return ui.FolderStyle.Render("▸")
	case library.KindDocument:
		return ui.DocumentStyle.Render("≡")
	}
	return ui.SessionStyle.Render("•")
}

func (m Model) rowLabel(n *library.Node) string {
	label := n.Label
	if label == "" {
		label = "(untitled)"
	}
	switch n.Kind {
	case library.KindFolder:
		return ui.FolderStyle.Render(label)
	case library.KindDocument:
		return ui.DocumentStyle.Render(label)
	}
	return label
}

func (m Model) renderMainPanel(width, height int) string {
	chatH := m.chatHeight()
	var body string
	switch m.pane {
	case tabs.PaneSession:
		body = m.renderSessionPane(width)
	case tabs.PaneDocument:
		body = m.renderDocumentPane(width)
	default:
		body = m.renderHomePane(width)
	}
	lines := strings.Split(body, "\n")
	mainH := height - chatH
	for len(lines) < mainH {
		lines = append(lines, "")
	}
	lines = lines[:mainH]
	if chatH > 0 {
		lines = append(lines, strings.Split(m.renderChatPanel(width, chatH), "\n")...)
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderHomePane(width int) string {
	focused := m.focus == FocusContent
	data := m.library.Data()
	lines := []string{
		m.panelTitle("HOME", focused),
		"",
		"  " + ui.HeaderStyle.Render("Meeting notes, transcripts and minutes."),
		ui.DimStyle.Render(fmt.Sprintf("  %d folders, %d sessions, %d documents",
			len(data.Folders), len(data.Sessions), len(data.Documents))),
		"",
	}
	for _, item := range [][2]string{
		{KeyTranscribe, "Transcribe an audio file"},
		{KeyYouTube, "Transcribe a YouTube video"},
		{KeyUpload, "Upload a document"},
		{KeyNewFolder, "Create a folder"},
		{KeyChat, "Ask about your meetings"},
	} {
		lines = append(lines, "  "+ui.FooterKeyStyle.Render(item[0])+"  "+item[1])
	}
	if m.busy > 0 {
		lines = append(lines, "", "  "+ui.SpinnerStyle.Render("Transcription in progress..."))
	}
	for i, l := range lines {
		lines[i] = truncateToWidth(l, width)
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderSessionPane(width int) string {
	focused := m.focus == FocusContent
	if m.session == nil {
		title := m.tabs.Active().Title
		return m.panelTitle(strings.ToUpper(title), focused) + "\n" + ui.DimStyle.Render("  Loading session...")
	}

	name := "TRANSCRIPT"
	if m.showMinutes {
		name = "MINUTES"
	}
	header := m.panelTitle(name, focused) + "  " + ui.HeaderStyle.Render(m.session.Meta.Title)
	if m.indexed != nil && *m.indexed {
		header += "  " + ui.DimStyle.Render("chat ready")
	}

	pos, dur := m.player.Position(), m.player.Duration()
	state := ui.PausedStyle.Render("❚❚ paused")
	if m.player.Playing() {
		state = ui.PlayingStyle.Render("▶ playing")
	}
	speaking := ui.DimStyle.Render(m.activity.Label())
	if _, ok := m.activity.Current(); ok {
		speaking = ui.SpeakingStyle.Render(m.activity.Label())
	}
	status := fmt.Sprintf("%s / %s  %s  %s",
		transcript.FormatTime(pos), transcript.FormatTime(dur), state, speaking)

	view := m.segments.view.View()
	if m.showMinutes {
		view = m.reader.view.View()
	}
	return truncateToWidth(header, width) + "\n" + truncateToWidth(status, width) + "\n" + view
}

func (m Model) renderDocumentPane(width int) string {
	t := m.tabs.Active()
	header := m.panelTitle("DOCUMENT", m.focus == FocusContent) + "  " + ui.HeaderStyle.Render(t.Title)
	info := ""
	if t.Document != nil {
		info = ui.DimStyle.Render(strings.ToUpper(t.Document.Type))
	}
	return truncateToWidth(header, width) + "\n" + info + "\n" + m.reader.view.View()
}

func (m Model) renderChatPanel(width, height int) string {
	scope := "all sessions"
	if n := len(m.chat.sessions); n == 1 {
		scope = "this session"
		if node := m.library.Lookup(m.chat.sessions[0]); node != nil && node.Label != "" {
			scope = node.Label
		}
	} else if n > 1 {
		scope = fmt.Sprintf("%d sessions", n)
	}
	header := m.panelTitle("CHAT", m.focus == FocusChat) + "  " +
		ui.DimStyle.Render(scope+" · "+m.chat.threadLabel())

	lines := []string{ui.DividerStyle.Render(strings.Repeat("─", width)), truncateToWidth(header, width)}
	lines = append(lines, strings.Split(m.chat.view.View(), "\n")...)
	for len(lines) < height-1 {
		lines = append(lines, "")
	}
	lines = append(lines[:height-1], m.chat.input.View())
	return strings.Join(lines, "\n")
}

func (m Model) renderStatusLine() string {
	switch {
	case m.prompt != nil:
		return ui.PromptStyle.Render(m.prompt.label+": ") + m.prompt.input.View()
	case m.errorMessage != "":
		return ui.ErrorStyle.Render("Error: ") + ui.ErrorTextStyle.Render(m.errorMessage)
	case m.notice != "":
		return ui.NoticeStyle.Render(m.notice)
	}
	return ""
}

type hint struct{ key, desc string }

func (m Model) footerHints() []hint {
	if m.prompt != nil {
		return []hint{{"Enter", "Confirm"}, {"Esc", "Cancel"}}
	}
	switch m.role() {
	case RoleLibrary:
		return []hint{{"Enter", "Open"}, {"x", "Select"}, {"m/p", "Move"}, {"n", "Folder"}, {"r", "Rename"}, {"d", "Delete"}, {"/", "Chat"}, {"Tab", "Focus"}}
	case RoleSession:
		return []hint{{"Space", "Play"}, {"←→", "±5s"}, {"↑↓", "Segment"}, {"j/k", "Select"}, {"s/S/e", "Edit"}, {"M", "Minutes"}, {"c", "Copy"}, {"E", "Export"}, {"w", "Close"}}
	case RoleDocument:
		return []hint{{"j/k", "Scroll"}, {"c", "Copy"}, {"w", "Close"}, {"[ ]", "Tabs"}}
	case RoleChat:
		return []hint{{"Enter", "Send"}, {"ctrl+n", "New chat"}, {"ctrl+t", "Next chat"}, {"Esc", "Close"}}
	}
	return []hint{{"t", "Transcribe"}, {"y", "YouTube"}, {"u", "Upload"}, {"[ ]", "Tabs"}, {"Tab", "Focus"}}
}

func (m Model) renderFooter() string {
	var parts []string
	for _, h := range m.footerHints() {
		parts = append(parts, ui.FooterKeyStyle.Render(h.key)+ui.FooterDescStyle.Render(" "+h.desc))
	}
	if m.prompt == nil && m.focus != FocusChat {
		parts = append(parts, ui.FooterKeyStyle.Render("q")+ui.FooterDescStyle.Render(" Quit"))
	}
	return truncateToWidth(strings.Join(parts, "  "), m.width)
}

// Helpers

func padRight(s string, width int) string {
	visible := lipgloss.Width(s)
	if visible >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visible)
}

func truncateToWidth(s string, width int) string {
	if width <= 0 || lipgloss.Width(s) <= width {
		return s
	}
	return lipgloss.NewStyle().MaxWidth(width-1).Render(s) + "…"
}
