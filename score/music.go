package score

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNegativeDuration = errors.New("negative duration")
	ErrNegativeIndex    = errors.New("negative lyric index")
	ErrEmptyChord       = errors.New("chord has no members")
	ErrTupletSize       = errors.New("tuplet size must be 2, 3 or 4")
	ErrTupletMembers    = errors.New("tuplet member count does not match its size")
	ErrRestInTuplet     = errors.New("tuplet cannot contain a rest")
)

// Music is an immutable piece of music. The set of implementations is closed:
// *Note, *Rest, *Chord, *Tuplet, *Concat and *Repeat.
type Music interface {
	fmt.Stringer
	music()
}

// Scheduler receives the timed output of Play. Beats are measured in default
// note lengths from the start of the piece.
type Scheduler interface {
	AddNote(instr Instrument, p Pitch, startBeat, numBeats float64)
	// AddEvent runs cb once playback reaches atBeat. cb gets the beat it
	// actually fired at, which may be rounded by the scheduler.
	AddEvent(atBeat float64, cb func(beat float64))
}

// Notifier is told which syllable becomes active when a note starts.
type Notifier interface {
	Notify(lyricIndex int)
}

type silent struct{}

func (silent) Notify(int) {}

// Note is a single pitched sound.
type Note struct {
	duration   Beats
	pitch      Pitch
	instrument Instrument
	lyricIndex int
}

func NewNote(duration Beats, pitch Pitch, instr Instrument, lyricIndex int) (*Note, error) {
	if duration.Sign() < 0 {
		return nil, ErrNegativeDuration
	}
	if lyricIndex < 0 {
		return nil, ErrNegativeIndex
	}
	return &Note{duration: duration, pitch: pitch, instrument: instr, lyricIndex: lyricIndex}, nil
}

func (n *Note) Pitch() Pitch           { return n.pitch }
func (n *Note) Instrument() Instrument { return n.instrument }
func (n *Note) LyricIndex() int        { return n.lyricIndex }

// Rest is silence of a given length.
type Rest struct {
	duration Beats
}

func NewRest(duration Beats) (*Rest, error) {
	if duration.Sign() < 0 {
		return nil, ErrNegativeDuration
	}
	return &Rest{duration: duration}, nil
}

// Silence returns a zero-length rest, the identity for Concat.
func Silence() *Rest {
	return &Rest{}
}

// Chord sounds all of its members at once. It lasts as long as its first member.
type Chord struct {
	members    []Music
	lyricIndex int
}

func NewChord(members []Music, lyricIndex int) (*Chord, error) {
	if len(members) == 0 {
		return nil, ErrEmptyChord
	}
	if lyricIndex < 0 {
		return nil, ErrNegativeIndex
	}
	return &Chord{members: append([]Music(nil), members...), lyricIndex: lyricIndex}, nil
}

func (c *Chord) Members() []Music { return append([]Music(nil), c.members...) }
func (c *Chord) LyricIndex() int  { return c.lyricIndex }

// Tuplet is a group of n notes whose lengths have already been scaled by
// TupletScale(n).
type Tuplet struct {
	size    int
	members []Music
}

// TupletScale returns the factor applied to note lengths inside a tuplet of
// size n: (n-1)/n, except a duplet which stretches by 3/2.
func TupletScale(n int) Beats {
	if n == 2 {
		return NewBeats(3, 2)
	}
	return NewBeats(int64(n-1), int64(n))
}

func NewTuplet(n int, members []Music) (*Tuplet, error) {
	if n < 2 || n > 4 {
		return nil, fmt.Errorf("%w: got %d", ErrTupletSize, n)
	}
	if len(members) != n {
		return nil, fmt.Errorf("%w: want %d, got %d", ErrTupletMembers, n, len(members))
	}
	for _, m := range members {
		if _, ok := m.(*Rest); ok {
			return nil, ErrRestInTuplet
		}
	}
	return &Tuplet{size: n, members: append([]Music(nil), members...)}, nil
}

func (t *Tuplet) Size() int        { return t.size }
func (t *Tuplet) Members() []Music { return append([]Music(nil), t.members...) }

// Concat plays one piece of music and then another.
type Concat struct {
	left, right Music
}

func NewConcat(left, right Music) *Concat {
	if left == nil || right == nil {
		panic("score: nil music in concat")
	}
	return &Concat{left: left, right: right}
}

func (c *Concat) Left() Music  { return c.left }
func (c *Concat) Right() Music { return c.right }

// ConcatAll folds ms left to right. It returns Silence for an empty list.
func ConcatAll(ms ...Music) Music {
	if len(ms) == 0 {
		return Silence()
	}
	acc := ms[0]
	for _, m := range ms[1:] {
		acc = NewConcat(acc, m)
	}
	return acc
}

// Repeat plays its body twice, or once per ending with that ending appended.
type Repeat struct {
	body    Music
	endings []Music
}

func NewRepeat(body Music, endings []Music) *Repeat {
	if body == nil {
		panic("score: nil repeat body")
	}
	return &Repeat{body: body, endings: append([]Music(nil), endings...)}
}

func (r *Repeat) Body() Music      { return r.body }
func (r *Repeat) Endings() []Music { return append([]Music(nil), r.endings...) }

func (*Note) music()   {}
func (*Rest) music()   {}
func (*Chord) music()  {}
func (*Tuplet) music() {}
func (*Concat) music() {}
func (*Repeat) music() {}

// Duration returns how many beats m lasts.
func Duration(m Music) Beats {
	switch m := m.(type) {
	case *Note:
		return m.duration
	case *Rest:
		return m.duration
	case *Chord:
		return Duration(m.members[0])
	case *Tuplet:
		var d Beats
		for _, member := range m.members {
			d = d.Add(Duration(member))
		}
		return d
	case *Concat:
		return Duration(m.left).Add(Duration(m.right))
	case *Repeat:
		body := Duration(m.body)
		if len(m.endings) == 0 {
			return body.Add(body)
		}
		var d Beats
		for _, e := range m.endings {
			d = d.Add(body).Add(Duration(e))
		}
		return d
	default:
		panic(fmt.Sprintf("unhandled music type %T", m))
	}
}

// Play registers m with s starting at beat at. Notes and chords tell n which
// syllable they activate when they fire. Play returns the beat at which m ends.
func Play(m Music, s Scheduler, at Beats, n Notifier) Beats {
	switch m := m.(type) {
	case *Note:
		idx := m.lyricIndex
		s.AddEvent(at.Float64(), func(float64) { n.Notify(idx) })
		s.AddNote(m.instrument, m.pitch, at.Float64(), m.duration.Float64())
	case *Rest:
	case *Chord:
		idx := m.lyricIndex
		s.AddEvent(at.Float64(), func(float64) { n.Notify(idx) })
		for _, member := range m.members {
			Play(member, s, at, silent{})
		}
	case *Tuplet:
		beat := at
		for _, member := range m.members {
			beat = Play(member, s, beat, n)
		}
	case *Concat:
		Play(m.right, s, Play(m.left, s, at, n), n)
	case *Repeat:
		beat := at
		if len(m.endings) == 0 {
			beat = Play(m.body, s, beat, n)
			beat = Play(m.body, s, beat, n)
		}
		for _, e := range m.endings {
			beat = Play(m.body, s, beat, n)
			beat = Play(e, s, beat, n)
		}
	default:
		panic(fmt.Sprintf("unhandled music type %T", m))
	}
	return at.Add(Duration(m))
}

func (n *Note) String() string   { return render(n, WholeBeats(1)) }
func (r *Rest) String() string   { return render(r, WholeBeats(1)) }
func (c *Chord) String() string  { return render(c, WholeBeats(1)) }
func (t *Tuplet) String() string { return render(t, WholeBeats(1)) }
func (c *Concat) String() string { return render(c, WholeBeats(1)) }
func (r *Repeat) String() string { return render(r, WholeBeats(1)) }

// render writes m in ABC notation. Lengths are divided by unit, which lets a
// tuplet print its members at their written rather than played length.
func render(m Music, unit Beats) string {
	var b strings.Builder
	write(&b, m, unit)
	return b.String()
}

func write(b *strings.Builder, m Music, unit Beats) {
	switch m := m.(type) {
	case *Note:
		b.WriteString(m.pitch.String())
		b.WriteString(lengthSuffix(m.duration.Div(unit)))
	case *Rest:
		b.WriteString("z")
		b.WriteString(lengthSuffix(m.duration.Div(unit)))
	case *Chord:
		b.WriteByte('[')
		for _, member := range m.members {
			write(b, member, unit)
		}
		b.WriteByte(']')
	case *Tuplet:
		fmt.Fprintf(b, "(%d", m.size)
		inner := unit.Mul(TupletScale(m.size))
		for _, member := range m.members {
			write(b, member, inner)
		}
	case *Concat:
		left, right := isSilence(m.left), isSilence(m.right)
		if !left {
			write(b, m.left, unit)
		}
		if !left && !right {
			b.WriteByte(' ')
		}
		if !right {
			write(b, m.right, unit)
		}
	case *Repeat:
		b.WriteString("|: ")
		write(b, m.body, unit)
		if len(m.endings) == 0 {
			b.WriteString(" :|")
			return
		}
		for i, e := range m.endings {
			if i > 0 {
				b.WriteString(" :|")
			}
			fmt.Fprintf(b, " [%d ", i+1)
			write(b, e, unit)
		}
		b.WriteString(" |")
	default:
		panic(fmt.Sprintf("unhandled music type %T", m))
	}
}

func isSilence(m Music) bool {
	r, ok := m.(*Rest)
	return ok && r.duration.IsZero()
}

func lengthSuffix(d Beats) string {
	switch {
	case d.Equal(WholeBeats(1)):
		return ""
	case d.Denom() == 1:
		return fmt.Sprintf("%d", d.Num())
	case d.Num() == 1:
		return fmt.Sprintf("/%d", d.Denom())
	default:
		return fmt.Sprintf("%d/%d", d.Num(), d.Denom())
	}
}
