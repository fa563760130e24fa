package abc

import (
	"maps"

	"github.com/QEStudios/karaoke/score"
)

// pitchClass identifies a written note for accidental carry-over within a measure.
type pitchClass struct {
	letter score.Letter
	octave int
}

// env is the state threaded through the building of one voice block. It is
// passed and returned by value; the overrides map is copied before writing.
type env struct {
	key        map[score.Letter]int // shared, never written
	overrides  map[pitchClass]int
	unit       score.Beats // length of a note written without a length
	instrument score.Instrument

	syllables []string
	cursor    int
	locked    bool
	offset    int  // syllables in earlier blocks of the same voice
	overran   bool // a note was given an index past the last syllable
}

func newEnv(key map[score.Letter]int, instr score.Instrument, syllables []string, offset int) env {
	return env{
		key:        key,
		unit:       score.WholeBeats(1),
		instrument: instr,
		syllables:  syllables,
		offset:     offset,
	}
}

// semitones returns the alteration a note without its own accidental gets.
func (e env) semitones(pc pitchClass) int {
	if s, ok := e.overrides[pc]; ok {
		return s
	}
	return e.key[pc.letter]
}

func (e env) withOverride(pc pitchClass, semitones int) env {
	o := maps.Clone(e.overrides)
	if o == nil {
		o = make(map[pitchClass]int)
	}
	o[pc] = semitones
	e.overrides = o
	return e
}

// newMeasure clears accidentals carried over from the previous measure.
func (e env) newMeasure() env {
	e.overrides = nil
	return e
}

// take returns the global lyric index for the next note and moves the cursor
// past it unless the cursor is locked by a chord.
//
// A bar-line token under the cursor is passed over. At the first note of a
// measure this is the bar being consumed by the measure boundary. Anywhere
// else the lyrics ran short of the notes in the previous measure, so the
// cursor moves early to the first syllable of the next one.
func (e env) take() (int, env) {
	for e.cursor < len(e.syllables) && score.IsBarLine(e.syllables[e.cursor]) {
		e.cursor++
	}
	if e.cursor >= len(e.syllables) {
		e.overran = true
		return e.offset + len(e.syllables), e
	}
	idx := e.offset + e.cursor
	if !e.locked {
		e.cursor++
	}
	return idx, e
}
