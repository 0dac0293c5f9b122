package timeline

import "time"

// Player is a playback position source.
type Player interface {
	Position() float64
	Duration() float64
	Seek(seconds float64)
	Play()
	Pause()
	Toggle()
	Playing() bool
	SkipBy(delta float64)
}

// ClockPlayer advances its position with wall time while playing. It does not
// decode audio.
type ClockPlayer struct {
	now      func() time.Time
	duration float64

	base    float64
	started time.Time
	playing bool
}

// NewClockPlayer returns a paused player at 0. A nil clock uses time.Now.
func NewClockPlayer(duration float64, clock func() time.Time) *ClockPlayer {
	if clock == nil {
		clock = time.Now
	}
	return &ClockPlayer{now: clock, duration: duration}
}

// Duration returns the length in seconds; zero means unknown.
func (p *ClockPlayer) Duration() float64 { return p.duration }

// SetDuration updates the length, clamping the position into it.
func (p *ClockPlayer) SetDuration(d float64) {
	pos := p.Position()
	p.duration = d
	p.Seek(pos)
}

// Position returns the current position in seconds. Playback stops at the end.
func (p *ClockPlayer) Position() float64 {
	if !p.playing {
		return p.base
	}
	pos := p.base + p.now().Sub(p.started).Seconds()
	if p.duration > 0 && pos >= p.duration {
		p.base = p.duration
		p.playing = false
		return p.base
	}
	return pos
}

// Seek moves to seconds, clamped to [0, duration].
func (p *ClockPlayer) Seek(seconds float64) {
	p.base = p.clamp(seconds)
	p.started = p.now()
}

// Play starts advancing. At the end it restarts from 0.
func (p *ClockPlayer) Play() {
	if p.playing {
		return
	}
	if p.duration > 0 && p.base >= p.duration {
		p.base = 0
	}
	p.started = p.now()
	p.playing = true
}

// Pause freezes the position.
func (p *ClockPlayer) Pause() {
	if !p.playing {
		return
	}
	p.base = p.Position()
	p.playing = false
}

// Toggle switches between playing and paused.
func (p *ClockPlayer) Toggle() {
	if p.playing {
		p.Pause()
		return
	}
	p.Play()
}

// Playing reports whether the position is advancing.
func (p *ClockPlayer) Playing() bool {
	if p.playing {
		p.Position()
	}
	return p.playing
}

// SkipBy moves the position by delta seconds, clamped to [0, duration].
func (p *ClockPlayer) SkipBy(delta float64) {
	p.Seek(p.Position() + delta)
}

func (p *ClockPlayer) clamp(s float64) float64 {
	if s < 0 {
		return 0
	}
	if p.duration > 0 && s > p.duration {
		return p.duration
	}
	return s
}
