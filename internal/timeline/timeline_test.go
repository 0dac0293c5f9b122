package timeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	events   []string
	speakers []string
}

func (r *recorder) Unhighlight(i int) { r.events = append(r.events, "off", itoa(i)) }
func (r *recorder) Highlight(i int)   { r.events = append(r.events, "on", itoa(i)) }
func (r *recorder) Center(i int)      { r.events = append(r.events, "center", itoa(i)) }
func (r *recorder) Speaking(n string) { r.speakers = append(r.speakers, n) }

func itoa(i int) string { return string(rune('0' + i)) }

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func segs() []Segment {
	return []Segment{
		{Start: 0, End: 5, Text: "hello", Speaker: "Alice"},
		{Start: 5, End: 10, Text: "hi", Speaker: "Bob"},
		{Start: 12, End: 15, Text: "bye"},
	}
}

func TestActiveIndex(t *testing.T) {
	s := segs()
	assert.Equal(t, 0, ActiveIndex(s, 0))
	assert.Equal(t, 1, ActiveIndex(s, 5), "boundary belongs to the later segment")
	assert.Equal(t, -1, ActiveIndex(s, 11))
	assert.Equal(t, -1, ActiveIndex(s, 15))
	assert.Equal(t, -1, ActiveIndex(nil, 1))
}

func TestActiveIndex_OverlapLastWins(t *testing.T) {
	s := []Segment{{Start: 0, End: 10}, {Start: 2, End: 4}, {Start: 3, End: 8}}
	assert.Equal(t, 2, ActiveIndex(s, 3.5))
	assert.Equal(t, 0, ActiveIndex(s, 9))
}

func TestActiveIndex_MatchesBruteForce(t *testing.T) {
	s := []Segment{{Start: 0, End: 2}, {Start: 1, End: 3}, {Start: 3, End: 3}, {Start: 2.5, End: 6}}
	for x := -1.0; x < 7; x += 0.25 {
		want := -1
		for i := len(s) - 1; i >= 0; i-- {
			if s[i].Start <= x && x < s[i].End {
				want = i
				break
			}
		}
		assert.Equal(t, want, ActiveIndex(s, x), "t=%v", x)
	}
}

func TestOnTimeUpdate_NotifiesOnChange(t *testing.T) {
	r := &recorder{}
	tl := New(nil, r, r)
	tl.SetSegments(segs())
	r.speakers = nil

	idx, changed := tl.OnTimeUpdate(1)
	assert.Equal(t, 0, idx)
	assert.True(t, changed)

	_, changed = tl.OnTimeUpdate(2)
	assert.False(t, changed)

	tl.OnTimeUpdate(6)
	tl.OnTimeUpdate(11)

	assert.Equal(t, []string{"on", "0", "center", "0", "off", "0", "on", "1", "center", "1", "off", "1"}, r.events)
	assert.Equal(t, []string{"Alice", "Bob", ""}, r.speakers)
	assert.Equal(t, -1, tl.Active())
}

func TestJumpTo(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	p := NewClockPlayer(20, clock.Now)
	r := &recorder{}
	tl := New(p, r, r)
	tl.SetSegments(segs())

	assert.False(t, tl.JumpTo(-1))
	assert.False(t, tl.JumpTo(3))
	assert.False(t, p.Playing())
	assert.Equal(t, 0.0, p.Position())

	require.True(t, tl.JumpTo(1))
	assert.True(t, p.Playing())
	assert.Equal(t, 5.0, p.Position())
	assert.Equal(t, 1, tl.Active())
}

func TestPrevNext(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	p := NewClockPlayer(20, clock.Now)
	tl := New(p, nil, nil)
	tl.SetSegments(segs())

	require.True(t, tl.Prev())
	assert.Equal(t, 0, tl.Active())
	require.True(t, tl.Next())
	require.True(t, tl.Next())
	assert.Equal(t, 2, tl.Active())
	assert.False(t, tl.Next())
	require.True(t, tl.Prev())
	assert.Equal(t, 1, tl.Active())
}

func TestEdit(t *testing.T) {
	r := &recorder{}
	tl := New(nil, r, r)
	tl.SetSegments(segs())
	tl.OnTimeUpdate(1)

	require.NoError(t, tl.Edit(0, FieldSpeaker, "Carol"))
	require.NoError(t, tl.Edit(1, FieldText, "hey"))
	assert.Equal(t, "Carol", tl.Segments()[0].Speaker)
	assert.Equal(t, "hey", tl.Segments()[1].Text)
	assert.Equal(t, "Carol", r.speakers[len(r.speakers)-1])

	assert.ErrorIs(t, tl.Edit(0, "start", "1"), ErrBadField)
	assert.Error(t, tl.Edit(9, FieldText, "x"))
}

func TestRenameSpeaker(t *testing.T) {
	tl := New(nil, nil, nil)
	tl.SetSegments([]Segment{{Speaker: "S1"}, {Speaker: "S2"}, {Speaker: "S1"}})

	assert.Equal(t, 2, tl.RenameSpeaker("S1", "Dana"))
	assert.Equal(t, "Dana", tl.Segments()[2].Speaker)
	assert.Equal(t, 0, tl.RenameSpeaker("nobody", "x"))
}
