package score

import (
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Listener receives one rendered lyric line per notification. The last line a
// listener sees for a voice is End.
type Listener func(line string)

type listenerEntry struct {
	id uuid.UUID
	fn Listener
}

// A single named melodic line with its lyrics.
// Music and syllables never change after construction; only the listener set does.
type Voice struct {
	name      string
	music     Music
	syllables []string
	logger    *log.Logger

	mu        sync.Mutex
	listeners []listenerEntry
}

// NewVoice returns a voice playing m. Lyric indices in m refer to syllables.
// Listener panics are logged to logger; if logger is nil, log.Default() is used.
func NewVoice(name string, m Music, syllables []string, logger *log.Logger) *Voice {
	if logger == nil {
		logger = log.Default()
	}
	if m == nil {
		m = Silence()
	}
	return &Voice{
		name:      name,
		music:     m,
		syllables: append([]string(nil), syllables...),
		logger:    logger,
	}
}

func (v *Voice) Name() string    { return v.name }
func (v *Voice) Music() Music    { return v.music }
func (v *Voice) Duration() Beats { return Duration(v.music) }

// Syllables returns a copy of the voice's lyric tokens.
func (v *Voice) Syllables() []string {
	return append([]string(nil), v.syllables...)
}

// Join returns a new voice with other's music and syllables appended to v's.
// The result keeps v's name and starts with no listeners.
func (v *Voice) Join(other *Voice) *Voice {
	syllables := make([]string, 0, len(v.syllables)+len(other.syllables))
	syllables = append(syllables, v.syllables...)
	syllables = append(syllables, other.syllables...)
	return &Voice{
		name:      v.name,
		music:     NewConcat(v.music, other.music),
		syllables: syllables,
		logger:    v.logger,
	}
}

// AddListener registers l for every later notification. The returned handle
// removes it again.
func (v *Voice) AddListener(l Listener) uuid.UUID {
	id := uuid.New()
	v.mu.Lock()
	v.listeners = append(v.listeners, listenerEntry{id: id, fn: l})
	v.mu.Unlock()
	return id
}

// RemoveListener unregisters the listener with the given handle and reports
// whether it was registered.
func (v *Voice) RemoveListener(id uuid.UUID) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	for i, e := range v.listeners {
		if e.id == id {
			// Copy so snapshots taken by in-flight notifications stay intact.
			v.listeners = append(v.listeners[:i:i], v.listeners[i+1:]...)
			return true
		}
	}
	return false
}

// Line renders the lyric line with the syllable at lyricIndex highlighted.
func (v *Voice) Line(lyricIndex int) string {
	return Line(v.syllables, lyricIndex)
}

// Notify sends the line for lyricIndex to every registered listener.
func (v *Voice) Notify(lyricIndex int) {
	v.deliver(v.Line(lyricIndex))
}

// NotifyEnd sends End to every registered listener.
func (v *Voice) NotifyEnd() {
	v.deliver(End)
}

func (v *Voice) deliver(line string) {
	v.mu.Lock()
	snapshot := v.listeners
	v.mu.Unlock()

	for _, e := range snapshot {
		v.call(e, line)
	}
}

func (v *Voice) call(e listenerEntry, line string) {
	defer func() {
		if r := recover(); r != nil {
			v.logger.Printf("voice %q: listener %s panicked: %v", v.name, e.id, r)
		}
	}()
	e.fn(line)
}

// Play registers the voice's music with s from beat 0, followed by End once
// the music is over.
func (v *Voice) Play(s Scheduler) {
	end := Play(v.music, s, Beats{}, v)
	s.AddEvent(end.Float64(), func(float64) { v.NotifyEnd() })
}

func (v *Voice) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "V:%s\n", v.name)
	b.WriteString(v.music.String())
	if len(v.syllables) > 0 {
		b.WriteString("\nw:")
		for _, s := range v.syllables {
			fmt.Fprintf(&b, " %q", s)
		}
	}
	return b.String()
}
