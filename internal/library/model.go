// Package library models the note library (folders, sessions, documents) and
// turns the backend's flat listing into the tree shown in the sidebar.
package library

import (
	"strings"
	"time"
)

// Kind identifies what a library entry is.
type Kind string

const (
	KindFolder   Kind = "folder"
	KindSession  Kind = "session"
	KindDocument Kind = "document"
)

// ParseKind converts a user or wire string into a Kind.
func ParseKind(s string) (Kind, bool) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindFolder:
		return KindFolder, true
	case KindSession:
		return KindSession, true
	case KindDocument:
		return KindDocument, true
	}
	return "", false
}

// Folder groups sessions, documents and other folders.
type Folder struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	ParentID  *string `json:"parent_id"`
	CreatedAt string  `json:"created_at,omitempty"`
}

// Session is one completed transcription.
type Session struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	FolderID  *string `json:"folder_id"`
	CreatedAt string  `json:"created_at,omitempty"`
	Date      string  `json:"date,omitempty"`
}

// Document is an uploaded reference file.
type Document struct {
	ID        string  `json:"id"`
	Filename  string  `json:"filename"`
	FolderID  *string `json:"folder_id"`
	CreatedAt string  `json:"created_at,omitempty"`
	Date      string  `json:"date,omitempty"`
	Type      string  `json:"type,omitempty"`
	Size      int64   `json:"size,omitempty"`
}

// Structure is the flat listing returned by GET /api/structure.
type Structure struct {
	Folders   []Folder   `json:"folders"`
	Sessions  []Session  `json:"sessions"`
	Documents []Document `json:"documents"`
}

// Len returns the total number of entries of every kind.
func (s Structure) Len() int {
	return len(s.Folders) + len(s.Sessions) + len(s.Documents)
}

// StrPtr returns a pointer to s. Convenience for building fixtures and requests.
func StrPtr(s string) *string { return &s }

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTimestamp parses the timestamp formats the backend emits. Empty or
// unrecognized values yield the zero time.
func ParseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// sortTime prefers createdAt and falls back to the generic date field.
func sortTime(createdAt, date string) time.Time {
	if createdAt != "" {
		return ParseTimestamp(createdAt)
	}
	return ParseTimestamp(date)
}
