// Package transcript formats session segments for export and copying.
package transcript

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/atotto/clipboard"

	"github.com/jwulff/scribe/internal/timeline"
)

// Format is an export format.
type Format string

const (
	FormatText     Format = "txt"
	FormatMarkdown Format = "md"
)

// ErrEmpty is returned when there is nothing to export.
var ErrEmpty = errors.New("transcript has no segments")

// ParseFormat accepts "txt", "text", "md" or "markdown".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "txt", "text":
		return FormatText, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("unknown format %q (want txt or md)", s)
}

// FormatTime renders seconds as zero-padded MM:SS. Minutes are not capped at 59.
func FormatTime(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	total := int(math.Floor(seconds))
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// Render joins segments in the given format, separated by blank lines.
func Render(segments []timeline.Segment, f Format) (string, error) {
	if len(segments) == 0 {
		return "", ErrEmpty
	}
	entries := make([]string, 0, len(segments))
	for _, s := range segments {
		span := FormatTime(s.Start) + " - " + FormatTime(s.End)
		switch f {
		case FormatMarkdown:
			speaker := ""
			if s.Speaker != "" {
				speaker = "**[" + s.Speaker + "]**"
			}
			entries = append(entries, fmt.Sprintf("### [%s] %s\n%s", span, speaker, s.Text))
		default:
			speaker := ""
			if s.Speaker != "" {
				speaker = "[" + s.Speaker + "] "
			}
			entries = append(entries, fmt.Sprintf("[%s] %s%s", span, speaker, s.Text))
		}
	}
	return strings.Join(entries, "\n\n"), nil
}

// Filename returns the download name for an export made on day.
func Filename(day time.Time, f Format) string {
	ext := "txt"
	if f == FormatMarkdown {
		ext = "md"
	}
	return fmt.Sprintf("transcript_%s.%s", day.UTC().Format("2006-01-02"), ext)
}

// Speakers returns the distinct speakers in order of first appearance.
func Speakers(segments []timeline.Segment) []string {
	seen := make(map[string]bool)
	var out []string
	for _, s := range segments {
		if s.Speaker == "" || seen[s.Speaker] {
			continue
		}
		seen[s.Speaker] = true
		out = append(out, s.Speaker)
	}
	return out
}

// writeClipboard is swapped in tests.
var writeClipboard = clipboard.WriteAll

// Copy puts the plain-text transcript on the system clipboard.
func Copy(segments []timeline.Segment) error {
	text, err := Render(segments, FormatText)
	if err != nil {
		return err
	}
	if err := writeClipboard(text); err != nil {
		return fmt.Errorf("copy transcript: %w", err)
	}
	return nil
}

// CopyText puts arbitrary text, such as minutes, on the clipboard.
func CopyText(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmpty
	}
	if err := writeClipboard(text); err != nil {
		return fmt.Errorf("copy text: %w", err)
	}
	return nil
}
