package score

import (
	"fmt"
	"strings"
)

// Letter is a pitch letter name, 'A' through 'G'.
type Letter byte

// Semitone offset of each letter above C in the same octave.
var letterBase = map[Letter]int{
	'C': 0,
	'D': 2,
	'E': 4,
	'F': 5,
	'G': 7,
	'A': 9,
	'B': 11,
}

// IsValid reports whether l is one of A-G.
func (l Letter) IsValid() bool {
	_, ok := letterBase[l]
	return ok
}

// Pitch is a letter in an octave, shifted by a number of semitones.
//
// Octave 0 is the octave starting at middle C, which is how upper-case ABC note
// letters are written. Identity is structural: C sharp and D flat are different
// pitches even though they sound the same.
type Pitch struct {
	Letter    Letter
	Octave    int
	Semitones int
}

// NewPitch returns the natural pitch of letter in octave 0. It panics on an
// invalid letter, mirroring the way pitch literals are only written by code.
func NewPitch(letter Letter) Pitch {
	if !letter.IsValid() {
		panic(fmt.Sprintf("score: invalid pitch letter %q", letter))
	}
	return Pitch{Letter: letter}
}

// Transpose returns p moved by n semitones.
func (p Pitch) Transpose(n int) Pitch {
	p.Semitones += n
	return p
}

// OctaveUp returns p moved by n octaves (negative n moves down).
func (p Pitch) OctaveUp(n int) Pitch {
	p.Octave += n
	return p
}

// Midi returns the MIDI note number of p, with middle C at 60.
func (p Pitch) Midi() int {
	return 60 + 12*p.Octave + letterBase[p.Letter] + p.Semitones
}

// accidentalMarks maps a semitone offset to its ABC accidental prefix.
var accidentalMarks = map[int]string{
	2:  "^^",
	1:  "^",
	-1: "_",
	-2: "__",
}

// String renders p in ABC notation, e.g. "^c'" or "_B,".
func (p Pitch) String() string {
	var b strings.Builder
	if mark, ok := accidentalMarks[p.Semitones]; ok {
		b.WriteString(mark)
	} else if p.Semitones != 0 {
		// Offsets beyond a double accidental have no ABC spelling.
		fmt.Fprintf(&b, "{%+d}", p.Semitones)
	}
	if p.Octave >= 1 {
		b.WriteString(strings.ToLower(string(p.Letter)))
		b.WriteString(strings.Repeat("'", p.Octave-1))
	} else {
		b.WriteByte(byte(p.Letter))
		b.WriteString(strings.Repeat(",", -p.Octave))
	}
	return b.String()
}
