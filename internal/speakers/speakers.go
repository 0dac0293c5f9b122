// Package speakers assigns stable colors to speakers and tracks who is talking.
package speakers

import (
	"github.com/charmbracelet/lipgloss"
)

// Colors is the palette, handed out in order of first appearance.
var Colors = []lipgloss.Color{
	"#e94560", "#6366f1", "#10b981", "#f59e0b", "#ec4899",
	"#8b5cf6", "#14b8a6", "#f97316", "#06b6d4", "#84cc16",
}

// Unknown is the label shown for segments without a speaker.
const Unknown = "Unknown"

// Palette maps speaker names to colors. The zero value is ready to use.
type Palette struct {
	order  []string
	colors map[string]lipgloss.Color
}

// Reset forgets all assignments.
func (p *Palette) Reset() {
	p.order = nil
	p.colors = nil
}

// Color returns the speaker's color, assigning the next free one on first use.
// Colors repeat after the palette is exhausted.
func (p *Palette) Color(name string) lipgloss.Color {
	if name == "" {
		name = Unknown
	}
	if c, ok := p.colors[name]; ok {
		return c
	}
	if p.colors == nil {
		p.colors = make(map[string]lipgloss.Color)
	}
	c := Colors[len(p.order)%len(Colors)]
	p.colors[name] = c
	p.order = append(p.order, name)
	return c
}

// Rename moves oldName's color to newName.
func (p *Palette) Rename(oldName, newName string) {
	c, ok := p.colors[oldName]
	if !ok {
		return
	}
	delete(p.colors, oldName)
	if _, taken := p.colors[newName]; !taken {
		p.colors[newName] = c
	}
	for i, n := range p.order {
		if n == oldName {
			p.order[i] = newName
		}
	}
}

// Names returns the speakers in order of first appearance.
func (p *Palette) Names() []string {
	out := make([]string, len(p.order))
	copy(out, p.order)
	return out
}

// Style returns a bold foreground style in the speaker's color.
func (p *Palette) Style(name string) lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(p.Color(name))
}

// Activity is the "now speaking" indicator.
type Activity struct {
	current string
	active  bool
}

// Speaking records the current speaker. An empty name means nobody is talking.
func (a *Activity) Speaking(name string) {
	a.current = name
	a.active = name != ""
}

// Current returns the speaker and whether anyone is talking.
func (a *Activity) Current() (string, bool) { return a.current, a.active }

// Label returns the indicator text.
func (a *Activity) Label() string {
	if !a.active {
		return "Waiting..."
	}
	return a.current + " speaking"
}
