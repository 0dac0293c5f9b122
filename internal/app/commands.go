package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jwulff/scribe/internal/api"
	"github.com/jwulff/scribe/internal/library"
	"github.com/jwulff/scribe/internal/timeline"
	"github.com/jwulff/scribe/internal/transcript"
)

const (
	transientErrorDelay = 5 * time.Second
	noticeDelay         = 3 * time.Second
	playerTickInterval  = 250 * time.Millisecond
)

// loadCacheCmd reads the last library snapshot for backend.
func loadCacheCmd(cache Cache, backend string) tea.Cmd {
	if cache == nil {
		return nil
	}
	return func() tea.Msg {
		snap, err := cache.LatestStructure(backend)
		if err != nil || snap == nil {
			return nil // a missing or unreadable cache just means a cold start
		}
		return CacheLoadedMsg{Data: snap.Structure, FetchedAt: snap.FetchedAt}
	}
}

// saveStructureCmd writes a fresh listing to the cache.
func saveStructureCmd(cache Cache, backend string, data library.Structure) tea.Cmd {
	if cache == nil {
		return nil
	}
	return func() tea.Msg {
		_ = cache.SaveStructure(backend, data, time.Now())
		return nil
	}
}

// fetchStructureCmd loads the library listing for refresh seq.
func fetchStructureCmd(ctx context.Context, b Backend, seq uint64) tea.Cmd {
	return func() tea.Msg {
		data, err := b.Structure(ctx)
		return StructureLoadedMsg{Seq: seq, Data: data, Err: err}
	}
}

// loadSessionCmd fetches a session. When the backend fails and a cached copy
// exists, the copy is returned alongside the error.
func loadSessionCmd(ctx context.Context, b Backend, cache Cache, backend, id string) tea.Cmd {
	return func() tea.Msg {
		detail, err := b.Session(ctx, id)
		if err == nil {
			if cache != nil {
				if payload, merr := json.Marshal(detail); merr == nil {
					_ = cache.SaveSession(backend, id, detail.Meta.Title, payload, time.Now())
				}
			}
			return SessionLoadedMsg{ID: id, Detail: detail}
		}
		if cache != nil && api.IsTransport(err) {
			if cs, cerr := cache.CachedSession(backend, id); cerr == nil && cs != nil {
				var cached api.SessionDetail
				if json.Unmarshal(cs.Payload, &cached) == nil {
					cached.Meta.ID = id
					return SessionLoadedMsg{ID: id, Detail: cached, Offline: true, Err: err}
				}
			}
		}
		return SessionLoadedMsg{ID: id, Err: err}
	}
}

// loadDocumentCmd fetches a document's content.
func loadDocumentCmd(ctx context.Context, b Backend, id string) tea.Cmd {
	return func() tea.Msg {
		content, err := b.DocumentContent(ctx, id)
		return DocumentLoadedMsg{ID: id, Content: content, Err: err}
	}
}

// moveCmd sends a validated move through the drag-drop controller.
func moveCmd(ctx context.Context, d *library.DragDrop, req library.MoveRequest) tea.Cmd {
	return func() tea.Msg {
		err := d.OnDrop(ctx, req.ItemID, req.Kind, req.TargetFolderID)
		return MoveDoneMsg{ItemID: req.ItemID, Err: err}
	}
}

func createFolderCmd(ctx context.Context, b Backend, name string) tea.Cmd {
	return func() tea.Msg {
		_, err := b.CreateFolder(ctx, name, library.RootSentinel)
		return ActionDoneMsg{Action: "Folder created", Err: err}
	}
}

func renameFolderCmd(ctx context.Context, b Backend, id, name string) tea.Cmd {
	return func() tea.Msg {
		_, err := b.RenameFolder(ctx, id, name)
		return ActionDoneMsg{Action: "Folder renamed", Err: err}
	}
}

func deleteCmd(ctx context.Context, b Backend, cache Cache, backend, id string, kind library.Kind) tea.Cmd {
	return func() tea.Msg {
		err := b.Delete(ctx, id, kind)
		if err == nil && kind == library.KindSession && cache != nil {
			_ = cache.DeleteSession(backend, id)
		}
		return ActionDoneMsg{Action: fmt.Sprintf("Deleted %s", kind), ClosedID: id, Err: err}
	}
}

func renameSessionCmd(ctx context.Context, b Backend, id, title string) tea.Cmd {
	return func() tea.Msg {
		err := b.RenameSession(ctx, id, title)
		return SessionRenamedMsg{ID: id, Title: title, Err: err}
	}
}

func renameSpeakerCmd(ctx context.Context, b Backend, id, oldName, newName string) tea.Cmd {
	return func() tea.Msg {
		err := b.RenameSpeaker(ctx, id, oldName, newName)
		return SpeakerRenamedMsg{SessionID: id, Old: oldName, New: newName, Err: err}
	}
}

func editSegmentCmd(ctx context.Context, b Backend, id string, index int, field, value string) tea.Cmd {
	return func() tea.Msg {
		err := b.EditSegment(ctx, id, index, field, value)
		return SegmentEditedMsg{SessionID: id, Index: index, Field: field, Value: value, Err: err}
	}
}

func loadThreadsCmd(ctx context.Context, b Backend, scope string) tea.Cmd {
	return func() tea.Msg {
		threads, err := b.ChatThreads(ctx, scope)
		return ThreadsLoadedMsg{Scope: scope, Threads: threads, Err: err}
	}
}

func createThreadCmd(ctx context.Context, b Backend, scope string) tea.Cmd {
	return func() tea.Msg {
		id, err := b.CreateChatThread(ctx, scope)
		return ThreadCreatedMsg{Scope: scope, ChatID: id, Err: err}
	}
}

func loadHistoryCmd(ctx context.Context, b Backend, scope, chatID string) tea.Cmd {
	return func() tea.Msg {
		history, err := b.ChatHistory(ctx, scope, chatID)
		return HistoryLoadedMsg{Scope: scope, ChatID: chatID, History: history, Err: err}
	}
}

func chatCmd(ctx context.Context, b Backend, req api.ChatRequest) tea.Cmd {
	return func() tea.Msg {
		answer, err := b.Chat(ctx, req)
		return ChatAnsweredMsg{ChatID: req.ChatID, Question: req.Question, Answer: answer, Err: err}
	}
}

// transcribeFileCmd uploads a local audio file.
func transcribeFileCmd(ctx context.Context, b Backend, path string, opts api.TranscribeOptions) tea.Cmd {
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return TranscribedMsg{Err: fmt.Errorf("open %s: %w", path, err)}
		}
		defer f.Close()
		if opts.Title == "" {
			opts.Title = stem(path)
		}
		id, err := b.Transcribe(ctx, path, f, opts)
		return TranscribedMsg{SessionID: id, Title: opts.Title, Err: err}
	}
}

// youTubeCmd has the backend download a video's audio, then transcribes it.
func youTubeCmd(ctx context.Context, b Backend, videoURL string, opts api.TranscribeOptions) tea.Cmd {
	return func() tea.Msg {
		dl, err := b.YouTube(ctx, videoURL)
		if err != nil {
			return TranscribedMsg{Err: err}
		}
		if opts.Title == "" {
			opts.Title = dl.Title
		}
		id, err := b.TranscribeFile(ctx, dl.Path, opts)
		return TranscribedMsg{SessionID: id, Title: opts.Title, Err: err}
	}
}

func uploadCmd(ctx context.Context, b Backend, path string) tea.Cmd {
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return UploadedMsg{Err: fmt.Errorf("open %s: %w", path, err)}
		}
		defer f.Close()
		doc, err := b.UploadDocument(ctx, filepath.Base(path), f)
		return UploadedMsg{Document: doc, Err: err}
	}
}

func indexStatusCmd(ctx context.Context, b Backend, id string) tea.Cmd {
	return func() tea.Msg {
		ok, err := b.IndexStatus(ctx, id)
		return IndexMsg{SessionID: id, Indexed: ok, Err: err}
	}
}

func reindexCmd(ctx context.Context, b Backend, id string) tea.Cmd {
	return func() tea.Msg {
		ok, err := b.Reindex(ctx, id)
		return IndexMsg{SessionID: id, Indexed: ok, Rebuilt: true, Err: err}
	}
}

// exportCmd writes segments to path. A .md path selects markdown.
func exportCmd(segments []timeline.Segment, path string) tea.Cmd {
	return func() tea.Msg {
		format := transcript.FormatText
		if strings.EqualFold(filepath.Ext(path), ".md") {
			format = transcript.FormatMarkdown
		}
		text, err := transcript.Render(segments, format)
		if err != nil {
			return ExportedMsg{Path: path, Err: err}
		}
		if err := os.WriteFile(path, []byte(text+"\n"), 0o644); err != nil {
			return ExportedMsg{Path: path, Err: fmt.Errorf("write %s: %w", path, err)}
		}
		return ExportedMsg{Path: path}
	}
}

// clearTransientErrorCmd fires after a delay to clear transient errors.
func clearTransientErrorCmd() tea.Cmd {
	return tea.Tick(transientErrorDelay, func(time.Time) tea.Msg {
		return ClearTransientErrorMsg{}
	})
}

func clearNoticeCmd(serial int) tea.Cmd {
	return tea.Tick(noticeDelay, func(time.Time) tea.Msg {
		return ClearNoticeMsg{Serial: serial}
	})
}

// playerTickCmd schedules the next playback position update.
func playerTickCmd() tea.Cmd {
	return tea.Tick(playerTickInterval, func(time.Time) tea.Msg {
		return PlayerTickMsg{}
	})
}

func stem(path string) string {
	base := filepath.Base(path)
	return base[:len(base)-len(filepath.Ext(base))]
}
