package score

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var ErrUnknownVoice = errors.New("unknown voice")

// Fraction is a fraction of a whole note, as used by meters and note lengths.
type Fraction struct {
	Num, Den int
}

func (f Fraction) String() string {
	return fmt.Sprintf("%d/%d", f.Num, f.Den)
}

// Less reports whether f is smaller than o. Both denominators must be positive.
func (f Fraction) Less(o Fraction) bool {
	return f.Num*o.Den < o.Num*f.Den
}

// Tempo is BPM beats of length Beat per minute.
type Tempo struct {
	Beat Fraction
	BPM  int
}

func (t Tempo) String() string {
	return fmt.Sprintf("%s=%d", t.Beat, t.BPM)
}

const (
	DefaultComposer = "Unknown"
	DefaultBPM      = 100
)

var (
	CommonTime = Fraction{4, 4}
	CutTime    = Fraction{2, 2}
)

// DefaultLength returns the note length implied by a meter: a sixteenth for
// meters below 3/4 and an eighth otherwise.
func DefaultLength(meter Fraction) Fraction {
	if meter.Less(Fraction{3, 4}) {
		return Fraction{1, 16}
	}
	return Fraction{1, 8}
}

// Header holds a score's metadata fields.
type Header struct {
	TrackNumber int
	Title       string
	Composer    string
	Meter       Fraction
	Length      Fraction
	Tempo       Tempo
	Key         Key
	VoiceNames  []string
}

func (h Header) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "X:%d\n", h.TrackNumber)
	fmt.Fprintf(&b, "T:%s\n", h.Title)
	fmt.Fprintf(&b, "C:%s\n", h.Composer)
	fmt.Fprintf(&b, "M:%s\n", h.Meter)
	fmt.Fprintf(&b, "L:%s\n", h.Length)
	fmt.Fprintf(&b, "Q:%s\n", h.Tempo)
	for _, name := range h.VoiceNames {
		fmt.Fprintf(&b, "V:%s\n", name)
	}
	fmt.Fprintf(&b, "K:%s", h.Key)
	return b.String()
}

// Composition is a header plus its voices in order of first appearance.
// It is built once and then only used to play and attach listeners.
type Composition struct {
	header Header
	voices []*Voice
}

func NewComposition(h Header) *Composition {
	h.VoiceNames = append([]string(nil), h.VoiceNames...)
	return &Composition{header: h}
}

func (c *Composition) Header() Header {
	h := c.header
	h.VoiceNames = append([]string(nil), h.VoiceNames...)
	return h
}

// AddVoice adds v, joining it onto any voice already present with the same name.
func (c *Composition) AddVoice(v *Voice) {
	for i, existing := range c.voices {
		if existing.Name() == v.Name() {
			c.voices[i] = existing.Join(v)
			return
		}
	}
	c.voices = append(c.voices, v)
}

// Voice returns the voice called name.
func (c *Composition) Voice(name string) (*Voice, bool) {
	for _, v := range c.voices {
		if v.Name() == name {
			return v, true
		}
	}
	return nil, false
}

func (c *Composition) Voices() []*Voice {
	return append([]*Voice(nil), c.voices...)
}

func (c *Composition) VoiceNames() []string {
	names := make([]string, len(c.voices))
	for i, v := range c.voices {
		names[i] = v.Name()
	}
	return names
}

// AddVoiceListener registers l on the named voice.
func (c *Composition) AddVoiceListener(name string, l Listener) (uuid.UUID, error) {
	v, ok := c.Voice(name)
	if !ok {
		return uuid.Nil, fmt.Errorf("%w %q", ErrUnknownVoice, name)
	}
	return v.AddListener(l), nil
}

// Play registers every voice with s, all starting at beat 0.
func (c *Composition) Play(s Scheduler) {
	for _, v := range c.voices {
		v.Play(s)
	}
}

// Duration returns the length of the longest voice.
func (c *Composition) Duration() Beats {
	var d Beats
	for _, v := range c.voices {
		d = d.Max(v.Duration())
	}
	return d
}

// BeatsPerMinute converts the header tempo into default note lengths per minute.
func (c *Composition) BeatsPerMinute() float64 {
	t, l := c.header.Tempo, c.header.Length
	if t.Beat.Den == 0 || l.Num == 0 {
		return float64(t.BPM)
	}
	return float64(t.BPM) * float64(t.Beat.Num*l.Den) / float64(t.Beat.Den*l.Num)
}

func (c *Composition) String() string {
	var b strings.Builder
	b.WriteString(c.header.String())
	for _, v := range c.voices {
		b.WriteByte('\n')
		b.WriteString(v.String())
	}
	return b.String()
}
