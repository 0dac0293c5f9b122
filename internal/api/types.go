package api

import (
	"encoding/base64"
	"fmt"

	"github.com/jwulff/scribe/internal/timeline"
)

// Audio is a session's recording, inlined as base64.
type Audio struct {
	Base64 string `json:"base64"`
	Mime   string `json:"mime"`
}

// Bytes decodes the inlined audio.
func (a Audio) Bytes() ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(a.Base64)
	if err != nil {
		return nil, fmt.Errorf("decode audio: %w", err)
	}
	return b, nil
}

// SessionMeta is the session's stored metadata.
type SessionMeta struct {
	ID           string  `json:"id,omitempty"`
	Title        string  `json:"title"`
	CreatedAt    string  `json:"created_at,omitempty"`
	Participants string  `json:"participants,omitempty"`
	Agenda       string  `json:"agenda,omitempty"`
	Language     string  `json:"language,omitempty"`
	Duration     float64 `json:"duration,omitempty"`
	FolderID     *string `json:"folder_id,omitempty"`
}

// SessionDetail is the full payload of GET /api/session/{id}.
type SessionDetail struct {
	Meta       SessionMeta        `json:"meta"`
	Segments   []timeline.Segment `json:"segments"`
	Transcript string             `json:"transcript"`
	Minutes    string             `json:"minutes"`
	Speakers   []string           `json:"speakers"`
	Audio      Audio              `json:"audio"`
}

// Duration returns the stored duration, or the end of the last segment.
func (s SessionDetail) Duration() float64 {
	if s.Meta.Duration > 0 {
		return s.Meta.Duration
	}
	var end float64
	for _, seg := range s.Segments {
		if seg.End > end {
			end = seg.End
		}
	}
	return end
}

// DocumentContent is the payload of GET /api/documents/{id}/content. For PDFs
// Content is base64.
type DocumentContent struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
	Type     string `json:"type"`
}

// IsPDF reports whether Content holds base64 PDF data.
func (d DocumentContent) IsPDF() bool { return d.Type == "pdf" }

// ChatRequest asks a question over zero or more sessions. No sessions means
// the global chat over the whole library.
type ChatRequest struct {
	SessionIDs []string `json:"session_ids"`
	Question   string   `json:"question"`
	ChatID     string   `json:"chat_id,omitempty"`
}

// ChatThread is one conversation attached to a session.
type ChatThread struct {
	ID        string `json:"id"`
	Title     string `json:"title,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// ChatMessage is one turn of a thread's history.
type ChatMessage struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp,omitempty"`
}

// GlobalChat is the session id used for threads not tied to a session.
const GlobalChat = "global"

// Download is a YouTube audio file fetched onto the backend host.
type Download struct {
	Path     string `json:"path"`
	Filename string `json:"filename"`
	Title    string `json:"title"`
}

// TranscribeOptions are the form fields sent with an upload.
type TranscribeOptions struct {
	Title             string `json:"title,omitempty"`
	Participants      string `json:"participants,omitempty"`
	Agenda            string `json:"agenda,omitempty"`
	Language          string `json:"language,omitempty"`
	EnableDiarization bool   `json:"enable_diarization"`
	HFToken           string `json:"hf_token,omitempty"`
}
