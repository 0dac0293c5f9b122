package app

import (
	"time"

	"github.com/jwulff/scribe/internal/api"
	"github.com/jwulff/scribe/internal/library"
)

// CacheLoadedMsg carries the last library snapshot saved on disk.
type CacheLoadedMsg struct {
	Data      library.Structure
	FetchedAt time.Time
}

// StructureLoadedMsg carries the response to library refresh Seq.
type StructureLoadedMsg struct {
	Seq  uint64
	Data library.Structure
	Err  error
}

// SessionLoadedMsg carries a session's content. Offline is set when Detail
// came from the local cache because the backend could not be reached.
type SessionLoadedMsg struct {
	ID      string
	Detail  api.SessionDetail
	Offline bool
	Err     error
}

// DocumentLoadedMsg carries a document's content.
type DocumentLoadedMsg struct {
	ID      string
	Content api.DocumentContent
	Err     error
}

// MoveDoneMsg reports the result of a move request.
type MoveDoneMsg struct {
	ItemID string
	Err    error
}

// ActionDoneMsg reports a backend mutation that only needs a library refresh
// afterwards, such as creating or deleting a folder.
type ActionDoneMsg struct {
	Action string
	// ClosedID is a tab to close because its item no longer exists.
	ClosedID string
	Err      error
}

// SessionRenamedMsg reports a session title change.
type SessionRenamedMsg struct {
	ID    string
	Title string
	Err   error
}

// SpeakerRenamedMsg reports a speaker rename in a session.
type SpeakerRenamedMsg struct {
	SessionID string
	Old       string
	New       string
	Err       error
}

// SegmentEditedMsg reports a single segment edit.
type SegmentEditedMsg struct {
	SessionID string
	Index     int
	Field     string
	Value     string
	Err       error
}

// ThreadsLoadedMsg carries the chat threads of Scope ("" for global).
type ThreadsLoadedMsg struct {
	Scope   string
	Threads []api.ChatThread
	Err     error
}

// ThreadCreatedMsg carries a newly created thread id.
type ThreadCreatedMsg struct {
	Scope  string
	ChatID string
	Err    error
}

// HistoryLoadedMsg carries the messages of one thread.
type HistoryLoadedMsg struct {
	Scope   string
	ChatID  string
	History []api.ChatMessage
	Err     error
}

// ChatAnsweredMsg carries the assistant's reply to Question.
type ChatAnsweredMsg struct {
	ChatID   string
	Question string
	Answer   string
	Err      error
}

// TranscribedMsg reports a finished transcription.
type TranscribedMsg struct {
	SessionID string
	Title     string
	Err       error
}

// UploadedMsg reports a finished document upload.
type UploadedMsg struct {
	Document library.Document
	Err      error
}

// IndexMsg reports a session's chat index state after a status check or
// re-index.
type IndexMsg struct {
	SessionID string
	Indexed   bool
	Rebuilt   bool
	Err       error
}

// ExportedMsg reports a transcript written to disk.
type ExportedMsg struct {
	Path string
	Err  error
}

// PlayerTickMsg advances the playback clock while playing.
type PlayerTickMsg struct{}

// ClearTransientErrorMsg clears a transient error after a timeout.
type ClearTransientErrorMsg struct{}

// ClearNoticeMsg clears the status notice with the matching serial.
type ClearNoticeMsg struct {
	Serial int
}
