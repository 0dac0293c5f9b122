package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/rs/zerolog"

	"github.com/jwulff/scribe/internal/api"
	"github.com/jwulff/scribe/internal/library"
	"github.com/jwulff/scribe/internal/speakers"
	"github.com/jwulff/scribe/internal/tabs"
	"github.com/jwulff/scribe/internal/timeline"
	"github.com/jwulff/scribe/internal/transcript"

	tea "github.com/charmbracelet/bubbletea"
)

// Clipboard writers, swapped in tests.
var (
	clipboardTranscript = transcript.Copy
	clipboardText       = transcript.CopyText
)

// PanelFocus tracks which panel has keyboard focus.
type PanelFocus int

const (
	FocusLibrary PanelFocus = iota
	FocusContent
	FocusChat
)

// Options wires the model to its collaborators.
type Options struct {
	Backend Backend
	// Cache is optional.
	Cache Cache
	// BackendURL keys the cache so several servers do not mix.
	BackendURL string
	Logger     zerolog.Logger
	// Transcribe holds defaults for new transcriptions.
	Transcribe api.TranscribeOptions
	Context    context.Context
	// Clock drives the playback position; time.Now when nil.
	Clock func() time.Time
}

// Model is the root bubbletea model for the scribe TUI.
type Model struct {
	ctx        context.Context
	backend    Backend
	cache      Cache
	backendURL string
	log        zerolog.Logger
	defaults   api.TranscribeOptions

	library  *library.Store
	drag     *library.DragDrop
	tabs     *tabs.Manager
	timeline *timeline.Timeline
	player   *timeline.ClockPlayer
	palette  *speakers.Palette
	activity *speakers.Activity

	segments *segmentPane
	reader   *readerPane
	chat     *chatPanel

	// Loaded session content, nil while none is shown.
	session     *api.SessionDetail
	indexed     *bool
	showMinutes bool

	// cachedAt is set while the sidebar shows a cached snapshot.
	cachedAt time.Time
	offline  bool

	cursor  int
	focus   PanelFocus
	pane    tabs.Pane
	prompt  *prompt
	ticking bool
	busy    int

	width  int
	height int

	errorMessage   string
	errorTransient bool
	notice         string
	noticeSerial   int
}

// New creates a Model with default state.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	store := library.NewStore(opts.Backend, opts.Logger)
	player := timeline.NewClockPlayer(0, clock)
	segments := newSegmentPane()
	activity := &speakers.Activity{}

	return Model{
		ctx:        ctx,
		backend:    opts.Backend,
		cache:      opts.Cache,
		backendURL: opts.BackendURL,
		log:        opts.Logger.With().Str("component", "tui").Logger(),
		defaults:   opts.Transcribe,
		library:    store,
		// Refreshes after a move go through Update, so the controller gets no store.
		drag:     library.NewDragDrop(opts.Backend, nil),
		tabs:     tabs.New(),
		timeline: timeline.New(player, segments, activity),
		player:   player,
		palette:  &speakers.Palette{},
		activity: activity,
		segments: segments,
		reader:   newReaderPane(),
		chat:     newChatPanel(),
		pane:     tabs.PaneCreate,
	}
}

// Init loads the cached library and starts the first refresh.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		loadCacheCmd(m.cache, m.backendURL),
		fetchStructureCmd(m.ctx, m.backend, m.library.Begin()),
	)
}

// Update processes messages and returns the updated model and any commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := m.update(msg)
	m.layout()
	return m, cmd
}

func (m *Model) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return nil

	case CacheLoadedMsg:
		if !m.library.Loaded() {
			m.library.Seed(msg.Data)
			m.cachedAt = msg.FetchedAt
			m.clampCursor()
		}
		return nil

	case StructureLoadedMsg:
		if msg.Err != nil {
			m.library.Fail(msg.Seq, msg.Err)
			m.offline = api.IsTransport(msg.Err)
			return nil
		}
		if !m.library.Apply(msg.Seq, msg.Data) {
			return nil
		}
		m.offline = false
		m.cachedAt = time.Time{}
		m.clampCursor()
		m.syncTabTitles()
		return saveStructureCmd(m.cache, m.backendURL, msg.Data)

	case SessionLoadedMsg:
		return m.sessionLoaded(msg)

	case DocumentLoadedMsg:
		if msg.Err != nil {
			return m.fail(msg.Err)
		}
		if m.tabs.Active().ID != msg.ID {
			return nil
		}
		doc := &tabs.DocumentPayload{Filename: msg.Content.Filename, Type: msg.Content.Type, Content: msg.Content.Content}
		active := m.tabs.Active()
		if doc.Filename == "" {
			doc.Filename = active.Title
		}
		return m.apply(m.tabs.Open(tabs.Tab{ID: msg.ID, Kind: tabs.KindDocument, Title: active.Title, Document: doc}))

	case MoveDoneMsg:
		if msg.Err != nil {
			return m.fail(msg.Err)
		}
		return tea.Batch(m.notify("Moved"), m.refresh())

	case ActionDoneMsg:
		if msg.Err != nil {
			return m.fail(msg.Err)
		}
		cmds := []tea.Cmd{m.notify(msg.Action), m.refresh()}
		if msg.ClosedID != "" && m.tabs.Has(msg.ClosedID) {
			if tr, err := m.tabs.Close(msg.ClosedID); err == nil {
				cmds = append(cmds, m.apply(tr))
			}
		}
		if m.library.IsChecked(msg.ClosedID) {
			m.library.ToggleChecked(msg.ClosedID)
		}
		return tea.Batch(cmds...)

	case SessionRenamedMsg:
		if msg.Err != nil {
			return m.fail(msg.Err)
		}
		m.tabs.SetTitle(msg.ID, msg.Title)
		if m.session != nil && m.session.Meta.ID == msg.ID {
			m.session.Meta.Title = msg.Title
		}
		return tea.Batch(m.notify("Session renamed"), m.refresh())

	case SpeakerRenamedMsg:
		if msg.Err != nil {
			return m.fail(msg.Err)
		}
		if m.session == nil || m.session.Meta.ID != msg.SessionID {
			return nil
		}
		n := m.timeline.RenameSpeaker(msg.Old, msg.New)
		m.palette.Rename(msg.Old, msg.New)
		return m.notify(fmt.Sprintf("Renamed %s to %s in %d segments", msg.Old, msg.New, n))

	case SegmentEditedMsg:
		if msg.Err != nil {
			return m.fail(msg.Err)
		}
		if m.session == nil || m.session.Meta.ID != msg.SessionID {
			return nil
		}
		if err := m.timeline.Edit(msg.Index, msg.Field, msg.Value); err != nil {
			return m.fail(err)
		}
		return m.notify("Segment updated")

	case ThreadsLoadedMsg:
		return m.threadsLoaded(msg)

	case ThreadCreatedMsg:
		if msg.Scope != m.chat.scope {
			return nil
		}
		if msg.Err != nil {
			return m.fail(msg.Err)
		}
		m.chat.threads = append([]api.ChatThread{{ID: msg.ChatID}}, m.chat.threads...)
		m.chat.chatID = msg.ChatID
		m.chat.history = nil
		m.chat.dirty = true
		return nil

	case HistoryLoadedMsg:
		if msg.Scope != m.chat.scope || msg.ChatID != m.chat.chatID {
			return nil
		}
		if msg.Err != nil {
			return m.fail(msg.Err)
		}
		m.chat.history = msg.History
		m.chat.dirty = true
		return nil

	case ChatAnsweredMsg:
		if msg.ChatID != m.chat.chatID {
			return nil
		}
		m.chat.pending = false
		m.chat.dirty = true
		if msg.Err != nil {
			return m.fail(msg.Err)
		}
		m.chat.append("assistant", msg.Answer)
		return nil

	case TranscribedMsg:
		m.busy = max(0, m.busy-1)
		if msg.Err != nil {
			return m.fail(msg.Err)
		}
		title := msg.Title
		if title == "" {
			title = msg.SessionID
		}
		tr := m.tabs.Open(tabs.Tab{ID: msg.SessionID, Kind: tabs.KindSession, Title: title})
		return tea.Batch(m.notify(fmt.Sprintf("Transcribed %q", title)), m.refresh(), m.apply(tr))

	case UploadedMsg:
		if msg.Err != nil {
			return m.fail(msg.Err)
		}
		return tea.Batch(m.notify("Uploaded "+msg.Document.Filename), m.refresh())

	case IndexMsg:
		if msg.Err != nil {
			if msg.Rebuilt {
				return m.fail(msg.Err)
			}
			return nil
		}
		if m.session != nil && m.session.Meta.ID == msg.SessionID {
			ok := msg.Indexed
			m.indexed = &ok
		}
		if msg.Rebuilt {
			return m.notify("Chat index rebuilt")
		}
		return nil

	case ExportedMsg:
		if msg.Err != nil {
			return m.fail(msg.Err)
		}
		return m.notify("Exported to " + msg.Path)

	case PlayerTickMsg:
		m.syncPosition()
		if !m.player.Playing() {
			m.ticking = false
			return nil
		}
		return playerTickCmd()

	case ClearTransientErrorMsg:
		if m.errorTransient {
			m.errorMessage = ""
			m.errorTransient = false
		}
		return nil

	case ClearNoticeMsg:
		if msg.Serial == m.noticeSerial {
			m.notice = ""
		}
		return nil
	}

	if m.prompt != nil {
		var cmd tea.Cmd
		m.prompt.input, cmd = m.prompt.input.Update(msg)
		return cmd
	}
	if m.focus == FocusChat {
		var cmd tea.Cmd
		m.chat.input, cmd = m.chat.input.Update(msg)
		return cmd
	}
	return nil
}

// role maps the focus and visible pane to the key dispatch role.
func (m *Model) role() Role {
	switch m.focus {
	case FocusLibrary:
		return RoleLibrary
	case FocusChat:
		return RoleChat
	}
	switch m.pane {
	case tabs.PaneSession:
		return RoleSession
	case tabs.PaneDocument:
		return RoleDocument
	}
	return RoleHome
}

// handleKey routes a key press to the prompt, then the dispatch table, then
// the chat input.
func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.prompt != nil {
		return m.handlePromptKey(msg)
	}
	role := m.role()
	if act, ok := lookup(role, msg.String()); ok {
		return act(m)
	}
	if role == RoleChat {
		var cmd tea.Cmd
		m.chat.input, cmd = m.chat.input.Update(msg)
		return cmd
	}
	return nil
}

// apply shows the pane a tab transition selected and fetches what it needs.
func (m *Model) apply(tr tabs.Transition) tea.Cmd {
	if m.pane == tabs.PaneSession && tr.Pane != tabs.PaneSession {
		m.player.Pause()
	}
	m.pane = tr.Pane
	m.showMinutes = false

	switch tr.Pane {
	case tabs.PaneSession:
		m.library.SetActive(tr.Active.ID)
		if tr.FetchSession == "" {
			return nil
		}
		m.player.Pause()
		m.session = nil
		m.indexed = nil
		m.timeline.SetSegments(nil)
		m.segments.reset()
		return loadSessionCmd(m.ctx, m.backend, m.cache, m.backendURL, tr.FetchSession)

	case tabs.PaneDocument:
		m.library.SetActive(tr.Active.ID)
		if tr.Active.Document == nil {
			m.reader.set("loading:"+tr.Active.ID, "Loading...", false)
			return loadDocumentCmd(m.ctx, m.backend, tr.Active.ID)
		}
		body, md := documentBody(tr.Active.Document)
		m.reader.set("doc:"+tr.Active.ID, body, md)
		return nil
	}

	m.library.SetActive("")
	if m.tabs.LoadedSession() == "" {
		m.session = nil
		m.indexed = nil
		m.timeline.SetSegments(nil)
		m.segments.reset()
	}
	return nil
}

func (m *Model) sessionLoaded(msg SessionLoadedMsg) tea.Cmd {
	if m.tabs.Active().ID != msg.ID {
		return nil
	}
	if msg.Err != nil && !msg.Offline {
		m.tabs.MarkLoaded("")
		return m.fail(msg.Err)
	}

	d := msg.Detail
	d.Meta.ID = msg.ID
	m.session = &d
	m.tabs.MarkLoaded(msg.ID)
	if d.Meta.Title != "" {
		m.tabs.SetTitle(msg.ID, d.Meta.Title)
	}

	m.palette.Reset()
	for _, s := range d.Segments {
		m.palette.Color(s.Speaker)
	}
	m.player.Pause()
	m.player.SetDuration(d.Duration())
	m.player.Seek(0)
	m.segments.reset()
	m.timeline.SetSegments(d.Segments)
	m.layout()
	m.timeline.OnTimeUpdate(m.player.Position())

	if msg.Offline {
		m.indexed = nil
		return m.fail(fmt.Errorf("showing cached copy: %s", api.Detail(msg.Err)))
	}
	return indexStatusCmd(m.ctx, m.backend, msg.ID)
}

func (m *Model) threadsLoaded(msg ThreadsLoadedMsg) tea.Cmd {
	if msg.Scope != m.chat.scope {
		return nil
	}
	if msg.Err != nil {
		return m.fail(msg.Err)
	}
	m.chat.threads = msg.Threads
	m.chat.dirty = true
	if len(msg.Threads) == 0 {
		return createThreadCmd(m.ctx, m.backend, m.chat.scope)
	}
	m.chat.chatID = msg.Threads[0].ID
	return loadHistoryCmd(m.ctx, m.backend, m.chat.scope, m.chat.chatID)
}

// syncPosition feeds the playback position to the timeline.
func (m *Model) syncPosition() {
	if m.session == nil {
		return
	}
	m.timeline.OnTimeUpdate(m.player.Position())
}

// startTicking begins position updates if playback started.
func (m *Model) startTicking() tea.Cmd {
	if !m.player.Playing() || m.ticking {
		return nil
	}
	m.ticking = true
	return playerTickCmd()
}

// syncTabTitles renames open tabs after their library entries.
func (m *Model) syncTabTitles() {
	for _, t := range m.tabs.Tabs() {
		if n := m.library.Lookup(t.ID); n != nil && n.Label != "" {
			m.tabs.SetTitle(t.ID, n.Label)
		}
	}
}

func (m *Model) clampCursor() {
	rows := m.library.Rows()
	if m.cursor >= len(rows) {
		m.cursor = len(rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// selected returns the node under the sidebar cursor.
func (m *Model) selected() *library.Node {
	rows := m.library.Rows()
	if m.cursor < 0 || m.cursor >= len(rows) {
		return nil
	}
	return rows[m.cursor].Node
}

// chatSessions returns the sessions a question is about: the checked ones,
// else the open session, else none for the global chat.
func (m *Model) chatSessions() []string {
	var ids []string
	for _, id := range m.library.Checked() {
		if n := m.library.Lookup(id); n != nil && n.Kind == library.KindSession {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 && m.pane == tabs.PaneSession && m.session != nil {
		ids = []string{m.session.Meta.ID}
	}
	return ids
}

// fail shows err in the transient error bar.
func (m *Model) fail(err error) tea.Cmd {
	m.log.Warn().Err(err).Msg("action failed")
	m.errorMessage = api.Detail(err)
	m.errorTransient = true
	return clearTransientErrorCmd()
}

// notify shows a short-lived status message.
func (m *Model) notify(text string) tea.Cmd {
	m.noticeSerial++
	m.notice = text
	return clearNoticeCmd(m.noticeSerial)
}

// Actions bound in keymap.go.

func (m *Model) quit() tea.Cmd {
	m.player.Pause()
	return tea.Quit
}

func (m *Model) focusNext() tea.Cmd {
	switch m.focus {
	case FocusLibrary:
		m.focus = FocusContent
	case FocusContent:
		if m.chat.open {
			m.focus = FocusChat
			return m.chat.input.Focus()
		}
		m.focus = FocusLibrary
	case FocusChat:
		m.chat.input.Blur()
		m.focus = FocusLibrary
	}
	return nil
}

func (m *Model) refresh() tea.Cmd {
	return fetchStructureCmd(m.ctx, m.backend, m.library.Begin())
}

func (m *Model) nextTab() tea.Cmd { return m.apply(m.tabs.Next()) }

func (m *Model) prevTab() tea.Cmd { return m.apply(m.tabs.Prev()) }

func (m *Model) closeActiveTab() tea.Cmd {
	tr, err := m.tabs.Close(m.tabs.Active().ID)
	if err != nil {
		return m.fail(err)
	}
	return m.apply(tr)
}

func (m *Model) cursorUp() tea.Cmd {
	if m.cursor > 0 {
		m.cursor--
	}
	return nil
}

func (m *Model) cursorDown() tea.Cmd {
	if m.cursor < len(m.library.Rows())-1 {
		m.cursor++
	}
	return nil
}

// openRow toggles a folder or opens a session or document in a tab.
func (m *Model) openRow() tea.Cmd {
	n := m.selected()
	if n == nil {
		return nil
	}
	switch n.Kind {
	case library.KindFolder:
		m.library.ToggleFolder(n.ID)
		return nil
	case library.KindSession:
		m.focus = FocusContent
		return m.apply(m.tabs.Open(tabs.Tab{ID: n.ID, Kind: tabs.KindSession, Title: n.Label}))
	case library.KindDocument:
		m.focus = FocusContent
		return m.apply(m.tabs.Open(tabs.Tab{ID: n.ID, Kind: tabs.KindDocument, Title: n.Label}))
	}
	return nil
}

func (m *Model) toggleChecked() tea.Cmd {
	if n := m.selected(); n != nil && !n.IsFolder() {
		m.library.ToggleChecked(n.ID)
	}
	return nil
}

func (m *Model) grab() tea.Cmd {
	n := m.selected()
	if n == nil {
		return nil
	}
	m.drag.Start(n.ID, n.Kind)
	return m.notify(fmt.Sprintf("Moving %q: p drops into the folder under the cursor, P to the top level, esc cancels", n.Label))
}

func (m *Model) cancelGrab() tea.Cmd {
	if _, _, ok := m.drag.Dragging(); ok {
		m.drag.Cancel()
		return m.notify("Move cancelled")
	}
	return nil
}

// dropTarget is the folder under the cursor, or the folder holding the item
// under the cursor.
func (m *Model) dropTarget() string {
	n := m.selected()
	if n == nil {
		return library.RootSentinel
	}
	var parent *string
	switch n.Kind {
	case library.KindFolder:
		return n.ID
	case library.KindSession:
		parent = n.Session.FolderID
	case library.KindDocument:
		parent = n.Document.FolderID
	}
	if parent != nil {
		if p := m.library.Lookup(*parent); p != nil && p.IsFolder() {
			return p.ID
		}
	}
	return library.RootSentinel
}

func (m *Model) drop() tea.Cmd { return m.dropInto(m.dropTarget()) }

func (m *Model) dropRoot() tea.Cmd { return m.dropInto(library.RootSentinel) }

// dropInto releases the grabbed item onto target. Invalid moves, such as a
// folder onto itself, fail here without reaching the backend.
func (m *Model) dropInto(target string) tea.Cmd {
	id, kind, ok := m.drag.Dragging()
	if !ok {
		return m.notify("Nothing to move: press m on an item first")
	}
	m.drag.Cancel()
	req, err := library.NewMoveRequest(id, kind, target)
	if err != nil {
		return m.fail(err)
	}
	return moveCmd(m.ctx, m.drag, req)
}

func (m *Model) togglePlay() tea.Cmd {
	if m.session == nil {
		return nil
	}
	m.player.Toggle()
	m.syncPosition()
	return m.startTicking()
}

func (m *Model) skipBack() tea.Cmd { return m.skip(-5) }

func (m *Model) skipForward() tea.Cmd { return m.skip(5) }

func (m *Model) skip(delta float64) tea.Cmd {
	if m.session == nil {
		return nil
	}
	m.player.SkipBy(delta)
	m.syncPosition()
	return nil
}

func (m *Model) prevSegment() tea.Cmd {
	if m.timeline.Prev() {
		m.segments.cursor = m.timeline.Active()
	}
	return m.startTicking()
}

func (m *Model) nextSegment() tea.Cmd {
	if m.timeline.Next() {
		m.segments.cursor = m.timeline.Active()
	}
	return m.startTicking()
}

func (m *Model) segmentCursorUp() tea.Cmd {
	if m.segments.cursor > 0 {
		m.segments.cursor--
		m.segments.reveal()
	}
	return nil
}

func (m *Model) segmentCursorDown() tea.Cmd {
	if m.segments.cursor < len(m.timeline.Segments())-1 {
		m.segments.cursor++
		m.segments.reveal()
	}
	return nil
}

func (m *Model) jumpToCursor() tea.Cmd {
	if !m.timeline.JumpTo(m.segments.cursor) {
		return nil
	}
	return m.startTicking()
}

func (m *Model) toggleMinutes() tea.Cmd {
	if m.session == nil {
		return nil
	}
	m.showMinutes = !m.showMinutes
	if m.showMinutes {
		minutes := m.session.Minutes
		if strings.TrimSpace(minutes) == "" {
			minutes = "_No minutes were generated for this session._"
		}
		m.reader.set("minutes:"+m.session.Meta.ID, minutes, true)
	}
	return nil
}

func (m *Model) copyTranscript() tea.Cmd {
	if m.session == nil {
		return nil
	}
	if m.showMinutes {
		return m.copyText(m.session.Minutes, "Minutes copied")
	}
	if err := clipboardTranscript(m.timeline.Segments()); err != nil {
		return m.fail(err)
	}
	return m.notify("Transcript copied")
}

func (m *Model) copyDocument() tea.Cmd {
	if m.tabs.Active().Document == nil {
		return nil
	}
	return m.copyText(m.tabs.Active().Document.Content, "Document copied")
}

func (m *Model) copyText(text, done string) tea.Cmd {
	if err := clipboardText(text); err != nil {
		return m.fail(err)
	}
	return m.notify(done)
}

func (m *Model) reindex() tea.Cmd {
	if m.session == nil {
		return nil
	}
	return tea.Batch(m.notify("Rebuilding chat index..."), reindexCmd(m.ctx, m.backend, m.session.Meta.ID))
}

// scrollTarget is the viewport paging keys act on.
func (m *Model) scrollTarget() *viewport.Model {
	if m.pane == tabs.PaneSession && !m.showMinutes {
		return &m.segments.view
	}
	return &m.reader.view
}

func (m *Model) scrollUp() tea.Cmd {
	m.reader.view.SetYOffset(m.reader.view.YOffset - 1)
	return nil
}

func (m *Model) scrollDown() tea.Cmd {
	m.reader.view.SetYOffset(m.reader.view.YOffset + 1)
	return nil
}

func (m *Model) pageUp() tea.Cmd {
	v := m.scrollTarget()
	v.SetYOffset(v.YOffset - v.Height/2)
	return nil
}

func (m *Model) pageDown() tea.Cmd {
	v := m.scrollTarget()
	v.SetYOffset(v.YOffset + v.Height/2)
	return nil
}

func (m *Model) openChat() tea.Cmd {
	sessions := m.chatSessions()
	scope := ""
	if len(sessions) == 1 {
		scope = sessions[0]
	}
	reload := !m.chat.open || scope != m.chat.scope || strings.Join(sessions, ",") != strings.Join(m.chat.sessions, ",")
	m.chat.open = true
	m.focus = FocusChat
	focus := m.chat.input.Focus()
	if !reload {
		return focus
	}
	m.chat.reset(scope, sessions)
	return tea.Batch(focus, textinput.Blink, loadThreadsCmd(m.ctx, m.backend, scope))
}

func (m *Model) closeChat() tea.Cmd {
	m.chat.open = false
	m.chat.input.Blur()
	m.focus = FocusContent
	return nil
}

func (m *Model) sendChat() tea.Cmd {
	q := strings.TrimSpace(m.chat.input.Value())
	if q == "" || m.chat.pending || m.chat.chatID == "" {
		return nil
	}
	m.chat.input.Reset()
	m.chat.append("user", q)
	m.chat.pending = true
	return chatCmd(m.ctx, m.backend, api.ChatRequest{
		SessionIDs: m.chat.sessions,
		Question:   q,
		ChatID:     m.chat.chatID,
	})
}

func (m *Model) newThread() tea.Cmd {
	m.chat.pending = false
	return createThreadCmd(m.ctx, m.backend, m.chat.scope)
}

func (m *Model) nextThread() tea.Cmd {
	if len(m.chat.threads) < 2 {
		return nil
	}
	next := 0
	for i, t := range m.chat.threads {
		if t.ID == m.chat.chatID {
			next = (i + 1) % len(m.chat.threads)
		}
	}
	m.chat.chatID = m.chat.threads[next].ID
	m.chat.history = nil
	m.chat.pending = false
	m.chat.dirty = true
	return loadHistoryCmd(m.ctx, m.backend, m.chat.scope, m.chat.chatID)
}
