package app

import tea "github.com/charmbracelet/bubbletea"

// Key binding constants used in the dispatch table.
const (
	KeyQuit       = "q"
	KeyCtrlC      = "ctrl+c"
	KeySpace      = " "
	KeyTab        = "tab"
	KeyShiftTab   = "shift+tab"
	KeyEsc        = "esc"
	KeyEnter      = "enter"
	KeyUp         = "up"
	KeyDown       = "down"
	KeyLeft       = "left"
	KeyRight      = "right"
	KeyPgUp       = "pgup"
	KeyPgDown     = "pgdown"
	KeyJ          = "j"
	KeyK          = "k"
	KeyNextTab    = "]"
	KeyPrevTab    = "["
	KeyCloseTab   = "w"
	KeyChat       = "/"
	KeyRefresh    = "g"
	KeyNewFolder  = "n"
	KeyRename     = "r"
	KeyDelete     = "d"
	KeyGrab       = "m"
	KeyDrop       = "p"
	KeyDropRoot   = "P"
	KeyCheck      = "x"
	KeyTranscribe = "t"
	KeyYouTube    = "y"
	KeyUpload     = "u"
	KeySpeaker    = "s"
	KeySpeakerSeg = "S"
	KeyEditText   = "e"
	KeyMinutes    = "M"
	KeyCopy       = "c"
	KeyExport     = "E"
	KeyReindex    = "i"
	KeyNewThread  = "ctrl+n"
	KeyNextThread = "ctrl+t"
)

// Role is the part of the screen a key is routed to.
type Role int

const (
	RoleAny Role = iota
	RoleLibrary
	RoleHome
	RoleSession
	RoleDocument
	RoleChat
)

type binding struct {
	role Role
	key  string
}

// action is a named transition on the model, run from Update.
type action func(m *Model) tea.Cmd

// bindings is the key dispatch table. Lookups try the focused role first and
// then RoleAny; the chat role never falls through so typing is not captured.
var bindings = map[binding]action{
	{RoleAny, KeyCtrlC}:      (*Model).quit,
	{RoleAny, KeyQuit}:       (*Model).quit,
	{RoleAny, KeyTab}:        (*Model).focusNext,
	{RoleAny, KeyShiftTab}:   (*Model).focusNext,
	{RoleAny, KeyNextTab}:    (*Model).nextTab,
	{RoleAny, KeyPrevTab}:    (*Model).prevTab,
	{RoleAny, KeyCloseTab}:   (*Model).closeActiveTab,
	{RoleAny, KeyChat}:       (*Model).openChat,
	{RoleAny, KeyRefresh}:    (*Model).refresh,
	{RoleAny, KeyTranscribe}: (*Model).promptTranscribe,
	{RoleAny, KeyYouTube}:    (*Model).promptYouTube,
	{RoleAny, KeyUpload}:     (*Model).promptUpload,
	{RoleAny, KeyNewFolder}:  (*Model).promptNewFolder,

	{RoleLibrary, KeyUp}:       (*Model).cursorUp,
	{RoleLibrary, KeyK}:        (*Model).cursorUp,
	{RoleLibrary, KeyDown}:     (*Model).cursorDown,
	{RoleLibrary, KeyJ}:        (*Model).cursorDown,
	{RoleLibrary, KeyEnter}:    (*Model).openRow,
	{RoleLibrary, KeySpace}:    (*Model).openRow,
	{RoleLibrary, KeyCheck}:    (*Model).toggleChecked,
	{RoleLibrary, KeyRename}:   (*Model).promptRename,
	{RoleLibrary, KeyDelete}:   (*Model).promptDelete,
	{RoleLibrary, KeyGrab}:     (*Model).grab,
	{RoleLibrary, KeyDrop}:     (*Model).drop,
	{RoleLibrary, KeyDropRoot}: (*Model).dropRoot,
	{RoleLibrary, KeyEsc}:      (*Model).cancelGrab,

	{RoleSession, KeySpace}:      (*Model).togglePlay,
	{RoleSession, KeyLeft}:       (*Model).skipBack,
	{RoleSession, KeyRight}:      (*Model).skipForward,
	{RoleSession, KeyUp}:         (*Model).prevSegment,
	{RoleSession, KeyDown}:       (*Model).nextSegment,
	{RoleSession, KeyK}:          (*Model).segmentCursorUp,
	{RoleSession, KeyJ}:          (*Model).segmentCursorDown,
	{RoleSession, KeyEnter}:      (*Model).jumpToCursor,
	{RoleSession, KeySpeaker}:    (*Model).promptRenameSpeaker,
	{RoleSession, KeySpeakerSeg}: (*Model).promptEditSpeaker,
	{RoleSession, KeyEditText}:   (*Model).promptEditText,
	{RoleSession, KeyRename}:     (*Model).promptRenameSession,
	{RoleSession, KeyMinutes}:    (*Model).toggleMinutes,
	{RoleSession, KeyCopy}:       (*Model).copyTranscript,
	{RoleSession, KeyExport}:     (*Model).promptExport,
	{RoleSession, KeyReindex}:    (*Model).reindex,
	{RoleSession, KeyPgUp}:       (*Model).pageUp,
	{RoleSession, KeyPgDown}:     (*Model).pageDown,

	{RoleDocument, KeyUp}:     (*Model).scrollUp,
	{RoleDocument, KeyK}:      (*Model).scrollUp,
	{RoleDocument, KeyDown}:   (*Model).scrollDown,
	{RoleDocument, KeyJ}:      (*Model).scrollDown,
	{RoleDocument, KeyPgUp}:   (*Model).pageUp,
	{RoleDocument, KeyPgDown}: (*Model).pageDown,
	{RoleDocument, KeyCopy}:   (*Model).copyDocument,

	{RoleChat, KeyCtrlC}:      (*Model).quit,
	{RoleChat, KeyEnter}:      (*Model).sendChat,
	{RoleChat, KeyEsc}:        (*Model).closeChat,
	{RoleChat, KeyTab}:        (*Model).focusNext,
	{RoleChat, KeyNewThread}:  (*Model).newThread,
	{RoleChat, KeyNextThread}: (*Model).nextThread,
}

// lookup finds the action bound to key for role.
func lookup(role Role, key string) (action, bool) {
	if act, ok := bindings[binding{role, key}]; ok {
		return act, true
	}
	if role == RoleChat {
		return nil, false
	}
	act, ok := bindings[binding{RoleAny, key}]
	return act, ok
}
