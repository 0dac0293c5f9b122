package app

import (
	"context"
	"io"
	"time"

	"github.com/jwulff/scribe/internal/api"
	"github.com/jwulff/scribe/internal/db"
	"github.com/jwulff/scribe/internal/library"
)

// Backend is the note server as the TUI uses it. *api.Client implements it.
type Backend interface {
	Structure(ctx context.Context) (library.Structure, error)
	Move(ctx context.Context, itemID string, kind library.Kind, targetFolderID string) error
	CreateFolder(ctx context.Context, name, parentID string) (library.Folder, error)
	RenameFolder(ctx context.Context, id, name string) (library.Folder, error)
	Delete(ctx context.Context, id string, kind library.Kind) error

	Session(ctx context.Context, id string) (api.SessionDetail, error)
	RenameSession(ctx context.Context, id, title string) error
	RenameSpeaker(ctx context.Context, id, oldName, newName string) error
	EditSegment(ctx context.Context, id string, index int, field, value string) error

	DocumentContent(ctx context.Context, id string) (api.DocumentContent, error)
	UploadDocument(ctx context.Context, filename string, r io.Reader) (library.Document, error)

	Chat(ctx context.Context, req api.ChatRequest) (string, error)
	ChatThreads(ctx context.Context, sessionID string) ([]api.ChatThread, error)
	CreateChatThread(ctx context.Context, sessionID string) (string, error)
	ChatHistory(ctx context.Context, sessionID, chatID string) ([]api.ChatMessage, error)

	Transcribe(ctx context.Context, filename string, r io.Reader, opts api.TranscribeOptions) (string, error)
	YouTube(ctx context.Context, videoURL string) (api.Download, error)
	TranscribeFile(ctx context.Context, path string, opts api.TranscribeOptions) (string, error)
	Reindex(ctx context.Context, sessionID string) (bool, error)
	IndexStatus(ctx context.Context, sessionID string) (bool, error)
}

// Cache persists library snapshots and opened sessions between runs.
// *db.Store implements it.
type Cache interface {
	SaveStructure(backend string, data library.Structure, at time.Time) error
	LatestStructure(backend string) (*db.Snapshot, error)
	SaveSession(backend, id, title string, payload []byte, at time.Time) error
	CachedSession(backend, id string) (*db.CachedSession, error)
	DeleteSession(backend, id string) error
}
