// Package api is the REST client for the transcription backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jwulff/scribe/internal/library"
)

// DefaultBaseURL is where the backend listens out of the box.
const DefaultBaseURL = "http://127.0.0.1:7860"

const (
	defaultTimeout     = 30 * time.Second
	defaultLongTimeout = 30 * time.Minute
)

// Client talks to one backend. It is safe for concurrent use.
type Client struct {
	baseURL     string
	http        *http.Client
	timeout     time.Duration
	longTimeout time.Duration
	log         zerolog.Logger
	metrics     *Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.http = hc } }

// WithTimeout bounds ordinary requests.
func WithTimeout(d time.Duration) Option { return func(c *Client) { c.timeout = d } }

// WithLongTimeout bounds transcription, download, chat and indexing requests.
func WithLongTimeout(d time.Duration) Option { return func(c *Client) { c.longTimeout = d } }

// WithLogger sets the request logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l.With().Str("component", "api").Logger() }
}

// WithMetrics records request counts and latency.
func WithMetrics(m *Metrics) Option { return func(c *Client) { c.metrics = m } }

// New creates a client for baseURL ("" for DefaultBaseURL).
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		http:        &http.Client{},
		timeout:     defaultTimeout,
		longTimeout: defaultLongTimeout,
		log:         zerolog.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// BaseURL returns the backend address.
func (c *Client) BaseURL() string { return c.baseURL }

type call struct {
	endpoint    string
	method      string
	path        string
	body        io.Reader
	contentType string
	long        bool
}

func form(v url.Values) (io.Reader, string) {
	return strings.NewReader(v.Encode()), "application/x-www-form-urlencoded"
}

func jsonBody(v any) (io.Reader, string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, "", fmt.Errorf("marshal request: %w", err)
	}
	return bytes.NewReader(data), "application/json", nil
}

// envelope is the part of every reply that signals failure.
type envelope struct {
	Success *bool           `json:"success"`
	Detail  json.RawMessage `json:"detail"`
}

func (c *Client) do(ctx context.Context, k call, out any) error {
	timeout := c.timeout
	if k.long {
		timeout = c.longTimeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, k.method, c.baseURL+k.path, k.body)
	if err != nil {
		if rc, ok := k.body.(io.Closer); ok {
			rc.Close()
		}
		return fmt.Errorf("build %s request: %w", k.endpoint, err)
	}
	if k.contentType != "" {
		req.Header.Set("Content-Type", k.contentType)
	}
	req.Header.Set("Accept", "application/json")
	reqID := uuid.NewString()
	req.Header.Set("X-Request-ID", reqID)

	start := time.Now()
	resp, err := c.http.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		c.metrics.observe(k.endpoint, "error", elapsed.Seconds())
		c.log.Warn().Err(err).Str("endpoint", k.endpoint).Str("request_id", reqID).Msg("request failed")
		return &TransportError{Op: k.method + " " + k.path, Err: err}
	}
	defer resp.Body.Close()
	c.metrics.observe(k.endpoint, strconv.Itoa(resp.StatusCode), elapsed.Seconds())

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: "read " + k.endpoint + " response", Err: err}
	}
	c.log.Debug().
		Str("endpoint", k.endpoint).
		Str("request_id", reqID).
		Int("status", resp.StatusCode).
		Dur("elapsed", elapsed).
		Int("bytes", len(data)).
		Msg("request done")

	return decode(k.endpoint, resp.StatusCode, data, out)
}

func decode(endpoint string, status int, data []byte, out any) error {
	var env envelope
	jsonErr := json.Unmarshal(data, &env)

	if status < 200 || status >= 300 {
		detail := detailText(env.Detail)
		if detail == "" && jsonErr != nil {
			detail = snippet(data)
		}
		return &Error{Status: status, Detail: detail}
	}
	if env.Success != nil && !*env.Success {
		detail := detailText(env.Detail)
		if detail == "" {
			detail = "request failed"
		}
		return &Error{Status: status, Detail: detail}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &TransportError{Op: "decode " + endpoint + " response", Err: err}
	}
	return nil
}

// detailText accepts a plain string or a list of validation errors.
func detailText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var list []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(raw, &list); err == nil {
		msgs := make([]string, 0, len(list))
		for _, item := range list {
			if item.Msg != "" {
				msgs = append(msgs, item.Msg)
			}
		}
		if len(msgs) > 0 {
			return strings.Join(msgs, "; ")
		}
	}
	return string(raw)
}

func snippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}

func esc(id string) string { return url.PathEscape(id) }

// Structure fetches the flat library listing.
func (c *Client) Structure(ctx context.Context) (library.Structure, error) {
	var out library.Structure
	err := c.do(ctx, call{endpoint: "structure", method: http.MethodGet, path: "/api/structure"}, &out)
	if err != nil {
		return library.Structure{}, err
	}
	return out, nil
}

// Move reparents an item. targetFolderID "" or "root" moves it to the top level.
func (c *Client) Move(ctx context.Context, itemID string, kind library.Kind, targetFolderID string) error {
	req, err := library.NewMoveRequest(itemID, kind, targetFolderID)
	if err != nil {
		return err
	}
	body, ct := form(url.Values{
		"item_id":          {req.ItemID},
		"type":             {string(req.Kind)},
		"target_folder_id": {req.TargetFolderID},
	})
	return c.do(ctx, call{endpoint: "move", method: http.MethodPut, path: "/api/move", body: body, contentType: ct}, nil)
}

// CreateFolder creates a folder under parentID ("" for root).
func (c *Client) CreateFolder(ctx context.Context, name, parentID string) (library.Folder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return library.Folder{}, invalid("folder name is required")
	}
	if parentID == "" {
		parentID = library.RootSentinel
	}
	body, ct := form(url.Values{"name": {name}, "parent_id": {parentID}})
	var out struct {
		Folder library.Folder `json:"folder"`
	}
	err := c.do(ctx, call{endpoint: "folders.create", method: http.MethodPost, path: "/api/folders", body: body, contentType: ct}, &out)
	return out.Folder, err
}

// RenameFolder changes a folder's name.
func (c *Client) RenameFolder(ctx context.Context, id, name string) (library.Folder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return library.Folder{}, invalid("folder name is required")
	}
	body, ct := form(url.Values{"name": {name}})
	var out struct {
		Folder library.Folder `json:"folder"`
	}
	err := c.do(ctx, call{endpoint: "folders.rename", method: http.MethodPut, path: "/api/folders/" + esc(id), body: body, contentType: ct}, &out)
	return out.Folder, err
}

// DeleteFolder removes a folder.
func (c *Client) DeleteFolder(ctx context.Context, id string) error {
	return c.do(ctx, call{endpoint: "folders.delete", method: http.MethodDelete, path: "/api/folders/" + esc(id)}, nil)
}

// Delete removes an item of any kind.
func (c *Client) Delete(ctx context.Context, id string, kind library.Kind) error {
	switch kind {
	case library.KindFolder:
		return c.DeleteFolder(ctx, id)
	case library.KindSession:
		return c.DeleteSession(ctx, id)
	case library.KindDocument:
		return c.DeleteDocument(ctx, id)
	}
	return invalid("unknown kind %q", kind)
}

// Session loads a session's segments, minutes and audio.
func (c *Client) Session(ctx context.Context, id string) (SessionDetail, error) {
	var out SessionDetail
	err := c.do(ctx, call{endpoint: "session.get", method: http.MethodGet, path: "/api/session/" + esc(id)}, &out)
	if err != nil {
		return SessionDetail{}, err
	}
	if out.Meta.ID == "" {
		out.Meta.ID = id
	}
	return out, nil
}

// RenameSession changes a session's title.
func (c *Client) RenameSession(ctx context.Context, id, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return invalid("title is required")
	}
	body, ct := form(url.Values{"title": {title}})
	return c.do(ctx, call{endpoint: "session.title", method: http.MethodPut, path: "/api/session/" + esc(id) + "/title", body: body, contentType: ct}, nil)
}

// RenameSpeaker relabels every segment of oldName in a session.
func (c *Client) RenameSpeaker(ctx context.Context, id, oldName, newName string) error {
	newName = strings.TrimSpace(newName)
	if oldName == "" || newName == "" {
		return invalid("speaker names are required")
	}
	body, ct := form(url.Values{"old_name": {oldName}, "new_name": {newName}})
	return c.do(ctx, call{endpoint: "session.speaker", method: http.MethodPut, path: "/api/session/" + esc(id) + "/speaker", body: body, contentType: ct}, nil)
}

// EditSegment sets the speaker or text of one segment.
func (c *Client) EditSegment(ctx context.Context, id string, index int, field, value string) error {
	if index < 0 {
		return invalid("segment index %d", index)
	}
	if field != "speaker" && field != "text" {
		return invalid("segment field %q", field)
	}
	body, ct := form(url.Values{"index": {strconv.Itoa(index)}, "field": {field}, "value": {value}})
	return c.do(ctx, call{endpoint: "session.segment", method: http.MethodPut, path: "/api/session/" + esc(id) + "/segment", body: body, contentType: ct}, nil)
}

// DeleteSession removes a session with its audio and chats.
func (c *Client) DeleteSession(ctx context.Context, id string) error {
	return c.do(ctx, call{endpoint: "session.delete", method: http.MethodDelete, path: "/api/session/" + esc(id)}, nil)
}

// DocumentContent loads a document's text, or base64 for PDFs.
func (c *Client) DocumentContent(ctx context.Context, id string) (DocumentContent, error) {
	var out DocumentContent
	err := c.do(ctx, call{endpoint: "documents.content", method: http.MethodGet, path: "/api/documents/" + esc(id) + "/content"}, &out)
	return out, err
}

// UploadDocument stores a reference file.
func (c *Client) UploadDocument(ctx context.Context, filename string, r io.Reader) (library.Document, error) {
	if filename == "" {
		return library.Document{}, invalid("filename is required")
	}
	body, ct := multipartBody("file", filename, r, nil)
	var out struct {
		Document library.Document `json:"document"`
	}
	err := c.do(ctx, call{endpoint: "documents.upload", method: http.MethodPost, path: "/api/documents", body: body, contentType: ct, long: true}, &out)
	return out.Document, err
}

// DeleteDocument removes a document.
func (c *Client) DeleteDocument(ctx context.Context, id string) error {
	return c.do(ctx, call{endpoint: "documents.delete", method: http.MethodDelete, path: "/api/documents/" + esc(id)}, nil)
}

// Chat asks a question and returns the answer.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (string, error) {
	req.Question = strings.TrimSpace(req.Question)
	if req.Question == "" {
		return "", invalid("question is required")
	}
	if req.SessionIDs == nil {
		req.SessionIDs = []string{}
	}
	body, ct, err := jsonBody(req)
	if err != nil {
		return "", err
	}
	var out struct {
		Answer string `json:"answer"`
	}
	err = c.do(ctx, call{endpoint: "chat", method: http.MethodPost, path: "/api/chat", body: body, contentType: ct, long: true}, &out)
	return out.Answer, err
}

func chatSession(sid string) string {
	if sid == "" {
		return GlobalChat
	}
	return sid
}

// ChatThreads lists the threads of a session ("" for the global chat).
func (c *Client) ChatThreads(ctx context.Context, sessionID string) ([]ChatThread, error) {
	var out struct {
		Chats []ChatThread `json:"chats"`
	}
	err := c.do(ctx, call{endpoint: "chats.list", method: http.MethodGet, path: "/api/session/" + esc(chatSession(sessionID)) + "/chats"}, &out)
	return out.Chats, err
}

// CreateChatThread starts a new thread and returns its id.
func (c *Client) CreateChatThread(ctx context.Context, sessionID string) (string, error) {
	var out struct {
		ChatID string `json:"chat_id"`
	}
	err := c.do(ctx, call{endpoint: "chats.create", method: http.MethodPost, path: "/api/session/" + esc(chatSession(sessionID)) + "/chats"}, &out)
	return out.ChatID, err
}

// ChatHistory loads a thread's messages.
func (c *Client) ChatHistory(ctx context.Context, sessionID, chatID string) ([]ChatMessage, error) {
	var out struct {
		History []ChatMessage `json:"history"`
	}
	path := "/api/session/" + esc(chatSession(sessionID)) + "/chat/" + esc(chatID)
	err := c.do(ctx, call{endpoint: "chats.history", method: http.MethodGet, path: path}, &out)
	return out.History, err
}

// DeleteChatThread removes a thread.
func (c *Client) DeleteChatThread(ctx context.Context, sessionID, chatID string) error {
	path := "/api/session/" + esc(chatSession(sessionID)) + "/chat/" + esc(chatID)
	return c.do(ctx, call{endpoint: "chats.delete", method: http.MethodDelete, path: path}, nil)
}

// YouTube downloads a video's audio onto the backend host.
func (c *Client) YouTube(ctx context.Context, videoURL string) (Download, error) {
	videoURL = strings.TrimSpace(videoURL)
	if videoURL == "" {
		return Download{}, invalid("url is required")
	}
	body, ct, err := jsonBody(map[string]string{"url": videoURL})
	if err != nil {
		return Download{}, err
	}
	var out Download
	err = c.do(ctx, call{endpoint: "youtube", method: http.MethodPost, path: "/api/youtube", body: body, contentType: ct, long: true}, &out)
	return out, err
}

// Transcribe uploads audio and returns the new session id.
func (c *Client) Transcribe(ctx context.Context, filename string, r io.Reader, opts TranscribeOptions) (string, error) {
	if filename == "" {
		return "", invalid("filename is required")
	}
	fields := map[string]string{
		"title":              opts.Title,
		"participants":       opts.Participants,
		"agenda":             opts.Agenda,
		"enable_diarization": strconv.FormatBool(opts.EnableDiarization),
	}
	if opts.Language != "" {
		fields["language"] = opts.Language
	}
	if opts.HFToken != "" {
		fields["hf_token"] = opts.HFToken
	}
	body, ct := multipartBody("audio", filename, r, fields)
	var out struct {
		SessionID string `json:"session_id"`
	}
	err := c.do(ctx, call{endpoint: "transcribe", method: http.MethodPost, path: "/api/transcribe", body: body, contentType: ct, long: true}, &out)
	return out.SessionID, err
}

// TranscribeFile transcribes a file already on the backend host, such as a
// YouTube download.
func (c *Client) TranscribeFile(ctx context.Context, path string, opts TranscribeOptions) (string, error) {
	if path == "" {
		return "", invalid("file path is required")
	}
	payload := struct {
		FilePath string `json:"file_path"`
		TranscribeOptions
	}{FilePath: path, TranscribeOptions: opts}
	body, ct, err := jsonBody(payload)
	if err != nil {
		return "", err
	}
	var out struct {
		SessionID string `json:"session_id"`
	}
	err = c.do(ctx, call{endpoint: "transcribe.file", method: http.MethodPost, path: "/api/transcribe-file", body: body, contentType: ct, long: true}, &out)
	return out.SessionID, err
}

// Reindex rebuilds the chat embeddings for a session.
func (c *Client) Reindex(ctx context.Context, sessionID string) (bool, error) {
	var out struct {
		Indexed bool `json:"indexed"`
	}
	err := c.do(ctx, call{endpoint: "index", method: http.MethodPost, path: "/api/index/" + esc(sessionID), long: true}, &out)
	return out.Indexed, err
}

// IndexStatus reports whether a session has chat embeddings.
func (c *Client) IndexStatus(ctx context.Context, sessionID string) (bool, error) {
	var out struct {
		Indexed bool `json:"indexed"`
	}
	err := c.do(ctx, call{endpoint: "index.status", method: http.MethodGet, path: "/api/index/" + esc(sessionID) + "/status"}, &out)
	return out.Indexed, err
}

// multipartBody streams a file part plus plain fields through a pipe.
func multipartBody(field, filename string, r io.Reader, fields map[string]string) (io.Reader, string) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		for k, v := range fields {
			if err := mw.WriteField(k, v); err != nil {
				pw.CloseWithError(err)
				return
			}
		}
		part, err := mw.CreateFormFile(field, filepath.Base(filename))
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, r); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(mw.Close())
	}()
	return pr, mw.FormDataContentType()
}
