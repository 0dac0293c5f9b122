package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwulff/scribe/internal/library"
)

// newServer serves one handler and returns a client pointed at it.
func newServer(t *testing.T, h http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL, opts...)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestStructure(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/structure", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		io.WriteString(w, `{
			"folders": [{"id":"f1","name":"Work","parent_id":null,"created_at":"2024-01-01T00:00:00"}],
			"sessions": [{"id":"s1","title":"Standup","date":"2024-01-02T09:00:00","folder_id":"f1"}],
			"documents": [{"id":"d1","filename":"notes.md","folder_id":null,"created_at":"2024-01-03"}]
		}`)
	})

	data, err := c.Structure(context.Background())
	require.NoError(t, err)
	require.Len(t, data.Folders, 1)
	assert.Nil(t, data.Folders[0].ParentID)
	require.Len(t, data.Sessions, 1)
	assert.Equal(t, "f1", *data.Sessions[0].FolderID)
	assert.Equal(t, "2024-01-02T09:00:00", data.Sessions[0].Date)
	assert.Equal(t, "notes.md", data.Documents[0].Filename)
}

func TestMove_FormWithRootSentinel(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/move", r.URL.Path)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "s1", r.PostForm.Get("item_id"))
		assert.Equal(t, "session", r.PostForm.Get("type"))
		assert.Equal(t, "root", r.PostForm.Get("target_folder_id"))
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	})

	require.NoError(t, c.Move(context.Background(), "s1", library.KindSession, ""))
}

func TestMove_SelfNestNeverSent(t *testing.T) {
	called := false
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) { called = true })

	err := c.Move(context.Background(), "f1", library.KindFolder, "f1")
	assert.ErrorIs(t, err, library.ErrSelfNest)
	assert.False(t, called)
}

func TestSuccessFalseBecomesError(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "detail": "Move failed"})
	})

	err := c.Move(context.Background(), "s1", library.KindSession, "f2")
	var ae *Error
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, http.StatusOK, ae.Status)
	assert.Equal(t, "Move failed", ae.Detail)
	assert.Equal(t, "Move failed", Detail(err))
}

func TestSuccessFalseWithoutDetail(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"success": false})
	})

	err := c.RenameSpeaker(context.Background(), "s1", "A", "B")
	assert.EqualError(t, err, "request failed")
}

func TestHTTPErrorDetail(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]any{"detail": "Session not found"})
	})

	_, err := c.Session(context.Background(), "missing")
	assert.True(t, IsNotFound(err))
	assert.Equal(t, "Session not found", Detail(err))
}

func TestHTTPErrorValidationList(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"detail": []map[string]any{{"loc": []string{"body", "name"}, "msg": "field required"}},
		})
	})

	_, err := c.CreateFolder(context.Background(), "x", "")
	assert.Equal(t, "field required", Detail(err))
}

func TestHTTPErrorPlainBody(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		io.WriteString(w, "upstream down")
	})

	err := c.DeleteFolder(context.Background(), "f1")
	assert.Equal(t, "upstream down", Detail(err))
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := New(url).Structure(context.Background())
	require.Error(t, err)
	assert.True(t, IsTransport(err))
}

func TestTimeout(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}, WithTimeout(50*time.Millisecond))

	_, err := c.Structure(context.Background())
	assert.True(t, IsTransport(err))
}

func TestValidationBeforeRequest(t *testing.T) {
	called := false
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) { called = true })
	ctx := context.Background()

	_, err := c.CreateFolder(ctx, "  ", "")
	assert.ErrorIs(t, err, ErrValidation)
	assert.ErrorIs(t, c.RenameSession(ctx, "s1", ""), ErrValidation)
	assert.ErrorIs(t, c.EditSegment(ctx, "s1", 0, "start", "1"), ErrValidation)
	_, err = c.Chat(ctx, ChatRequest{Question: " "})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = c.YouTube(ctx, "")
	assert.ErrorIs(t, err, ErrValidation)
	assert.False(t, called)
}

func TestCreateFolderUnderRoot(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "Projects", r.PostForm.Get("name"))
		assert.Equal(t, "root", r.PostForm.Get("parent_id"))
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "folder": map[string]any{"id": "f9", "name": "Projects"}})
	})

	f, err := c.CreateFolder(context.Background(), "Projects", "")
	require.NoError(t, err)
	assert.Equal(t, "f9", f.ID)
}

func TestSession(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/session/s1", r.URL.Path)
		io.WriteString(w, `{
			"meta": {"title": "Standup"},
			"segments": [{"start":0,"end":2.5,"text":"hi","speaker":"A"},{"start":2.5,"end":7,"text":"yo"}],
			"transcript": "[A] hi",
			"minutes": "# Minutes",
			"speakers": ["A"],
			"audio": {"base64": "aGVsbG8=", "mime": "audio/mpeg"}
		}`)
	})

	s, err := c.Session(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", s.Meta.ID)
	assert.Equal(t, "Standup", s.Meta.Title)
	require.Len(t, s.Segments, 2)
	assert.Equal(t, 7.0, s.Duration())
	b, err := s.Audio.Bytes()
	require.NoError(t, err)
	assert.Equal(t, "hello", string(b))
}

func TestEditSegment(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/session/s1/segment", r.URL.Path)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "3", r.PostForm.Get("index"))
		assert.Equal(t, "text", r.PostForm.Get("field"))
		assert.Equal(t, "fixed", r.PostForm.Get("value"))
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	})

	require.NoError(t, c.EditSegment(context.Background(), "s1", 3, "text", "fixed"))
}

func TestChat(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []any{}, req["session_ids"])
		assert.Equal(t, "what was decided?", req["question"])
		assert.Equal(t, "c1", req["chat_id"])
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "answer": "Ship it."})
	})

	answer, err := c.Chat(context.Background(), ChatRequest{Question: "what was decided?", ChatID: "c1"})
	require.NoError(t, err)
	assert.Equal(t, "Ship it.", answer)
}

func TestChatThreadsGlobal(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/session/global/chats":
			writeJSON(w, http.StatusOK, map[string]any{"chats": []map[string]any{{"id": "c1", "updated_at": "2024-01-01"}}})
		case r.Method == http.MethodPost && r.URL.Path == "/api/session/global/chats":
			writeJSON(w, http.StatusOK, map[string]any{"chat_id": "c2"})
		case r.URL.Path == "/api/session/global/chat/c1":
			writeJSON(w, http.StatusOK, map[string]any{"history": []map[string]any{{"role": "user", "content": "hi"}}})
		default:
			http.NotFound(w, r)
		}
	})
	ctx := context.Background()

	threads, err := c.ChatThreads(ctx, "")
	require.NoError(t, err)
	require.Len(t, threads, 1)
	assert.Equal(t, "c1", threads[0].ID)

	id, err := c.CreateChatThread(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "c2", id)

	history, err := c.ChatHistory(ctx, "", "c1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "user", history[0].Role)
}

func TestTranscribeMultipart(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "Weekly", r.FormValue("title"))
		assert.Equal(t, "true", r.FormValue("enable_diarization"))
		assert.Equal(t, "English", r.FormValue("language"))
		f, hdr, err := r.FormFile("audio")
		if !assert.NoError(t, err) {
			return
		}
		defer f.Close()
		assert.Equal(t, "meeting.mp3", hdr.Filename)
		b, _ := io.ReadAll(f)
		assert.Equal(t, "ID3data", string(b))
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "session_id": "s42"})
	})

	id, err := c.Transcribe(context.Background(), "/tmp/meeting.mp3", strings.NewReader("ID3data"), TranscribeOptions{
		Title: "Weekly", Language: "English", EnableDiarization: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "s42", id)
}

func TestTranscribeFile(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "/srv/downloads/talk.mp3", req["file_path"])
		assert.Equal(t, "Talk", req["title"])
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "session_id": "s7"})
	})

	id, err := c.TranscribeFile(context.Background(), "/srv/downloads/talk.mp3", TranscribeOptions{Title: "Talk"})
	require.NoError(t, err)
	assert.Equal(t, "s7", id)
}

func TestDocumentContentAndIndex(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/documents/d1/content":
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "filename": "a.pdf", "content": "JVBERi0=", "type": "pdf"})
		case "/api/index/s1/status":
			writeJSON(w, http.StatusOK, map[string]any{"indexed": true})
		case "/api/index/s1":
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "indexed": true})
		default:
			http.NotFound(w, r)
		}
	})
	ctx := context.Background()

	doc, err := c.DocumentContent(ctx, "d1")
	require.NoError(t, err)
	assert.True(t, doc.IsPDF())

	ok, err := c.IndexStatus(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.Reindex(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"folders": []any{}})
	}, WithMetrics(m))

	_, err := c.Structure(context.Background())
	require.NoError(t, err)
	_, err = c.Structure(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("structure", "200")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.RequestDuration))
}
