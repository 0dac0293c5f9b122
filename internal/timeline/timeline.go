// Package timeline maps playback position to the active transcript segment.
package timeline

import (
	"errors"
	"fmt"
)

// Segment is one time-bounded piece of transcript, covering [Start, End).
type Segment struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Text    string  `json:"text"`
	Speaker string  `json:"speaker,omitempty"`
}

// Contains reports whether t falls inside the half-open interval.
func (s Segment) Contains(t float64) bool { return s.Start <= t && t < s.End }

// ActiveIndex returns the highest index whose segment contains t, or -1.
func ActiveIndex(segments []Segment, t float64) int {
	active := -1
	for i, s := range segments {
		if s.Contains(t) {
			active = i
		}
	}
	return active
}

// Highlighter renders the active segment.
type Highlighter interface {
	Unhighlight(index int)
	Highlight(index int)
	// Center scrolls the segment into the middle of its container.
	Center(index int)
}

// SpeakerDisplay is told who is speaking. An empty name means nobody.
type SpeakerDisplay interface {
	Speaking(name string)
}

// Editable segment fields.
const (
	FieldSpeaker = "speaker"
	FieldText    = "text"
)

// ErrBadField is returned by Edit for an unknown field name.
var ErrBadField = errors.New("segment field must be speaker or text")

// Timeline holds one session's segments and follows the player's position.
type Timeline struct {
	segments []Segment
	active   int

	player   Player
	hl       Highlighter
	speakers SpeakerDisplay
}

// New creates an empty timeline. Any of the collaborators may be nil.
func New(player Player, hl Highlighter, speakers SpeakerDisplay) *Timeline {
	return &Timeline{active: -1, player: player, hl: hl, speakers: speakers}
}

// SetSegments replaces the segments and resets the active index.
func (tl *Timeline) SetSegments(segments []Segment) {
	if tl.active >= 0 && tl.hl != nil {
		tl.hl.Unhighlight(tl.active)
	}
	tl.segments = segments
	tl.active = -1
	if tl.speakers != nil {
		tl.speakers.Speaking("")
	}
}

// Segments returns the current segments.
func (tl *Timeline) Segments() []Segment { return tl.segments }

// Active returns the active index, or -1.
func (tl *Timeline) Active() int { return tl.active }

// Player returns the playback source.
func (tl *Timeline) Player() Player { return tl.player }

// OnTimeUpdate recomputes the active segment for position t. It returns the
// new index and whether it changed.
func (tl *Timeline) OnTimeUpdate(t float64) (int, bool) {
	idx := ActiveIndex(tl.segments, t)
	if idx == tl.active {
		return idx, false
	}
	prev := tl.active
	tl.active = idx
	if tl.hl != nil {
		if prev >= 0 {
			tl.hl.Unhighlight(prev)
		}
		if idx >= 0 {
			tl.hl.Highlight(idx)
			tl.hl.Center(idx)
		}
	}
	if tl.speakers != nil {
		name := ""
		if idx >= 0 {
			name = tl.segments[idx].Speaker
		}
		tl.speakers.Speaking(name)
	}
	return idx, true
}

// JumpTo seeks to the start of segment i and plays. Out of range is a no-op.
func (tl *Timeline) JumpTo(i int) bool {
	if i < 0 || i >= len(tl.segments) || tl.player == nil {
		return false
	}
	tl.player.Seek(tl.segments[i].Start)
	tl.player.Play()
	tl.OnTimeUpdate(tl.player.Position())
	return true
}

// Prev jumps to the segment before the active one, or to the first segment
// when nothing earlier is active.
func (tl *Timeline) Prev() bool {
	if tl.active > 0 {
		return tl.JumpTo(tl.active - 1)
	}
	return tl.JumpTo(0)
}

// Next jumps to the segment after the active one.
func (tl *Timeline) Next() bool {
	if tl.active < len(tl.segments)-1 {
		return tl.JumpTo(tl.active + 1)
	}
	return false
}

// Edit changes the speaker or text of segment i. Call it only after the
// backend has accepted the change.
func (tl *Timeline) Edit(i int, field, value string) error {
	if i < 0 || i >= len(tl.segments) {
		return fmt.Errorf("segment %d out of range", i)
	}
	switch field {
	case FieldSpeaker:
		tl.segments[i].Speaker = value
		if i == tl.active && tl.speakers != nil {
			tl.speakers.Speaking(value)
		}
	case FieldText:
		tl.segments[i].Text = value
	default:
		return ErrBadField
	}
	return nil
}

// RenameSpeaker relabels every segment spoken by oldName.
func (tl *Timeline) RenameSpeaker(oldName, newName string) int {
	n := 0
	for i := range tl.segments {
		if tl.segments[i].Speaker == oldName {
			tl.segments[i].Speaker = newName
			n++
		}
	}
	if n > 0 && tl.active >= 0 && tl.speakers != nil && tl.segments[tl.active].Speaker == newName {
		tl.speakers.Speaking(newName)
	}
	return n
}
