package score

import (
	"fmt"
	"strings"
)

// Instrument is a General MIDI program number.
type Instrument int

const (
	Piano         Instrument = 0
	BrightPiano   Instrument = 1
	ElectricGrand Instrument = 2
	Harpsichord   Instrument = 6
	Celesta       Instrument = 8
	Glockenspiel  Instrument = 9
	MusicBox      Instrument = 10
	Marimba       Instrument = 12
	ChurchOrgan   Instrument = 19
	Accordion     Instrument = 21
	NylonGuitar   Instrument = 24
	Violin        Instrument = 40
	ChoirAahs     Instrument = 52
	Trumpet       Instrument = 56
	Flute         Instrument = 73
)

var instrumentNames = map[Instrument]string{
	Piano:         "piano",
	BrightPiano:   "bright_piano",
	ElectricGrand: "electric_grand",
	Harpsichord:   "harpsichord",
	Celesta:       "celesta",
	Glockenspiel:  "glockenspiel",
	MusicBox:      "music_box",
	Marimba:       "marimba",
	ChurchOrgan:   "church_organ",
	Accordion:     "accordion",
	NylonGuitar:   "nylon_guitar",
	Violin:        "violin",
	ChoirAahs:     "choir_aahs",
	Trumpet:       "trumpet",
	Flute:         "flute",
}

func (i Instrument) String() string {
	if name, ok := instrumentNames[i]; ok {
		return name
	}
	return fmt.Sprintf("program_%d", int(i))
}

// ParseInstrument looks up an instrument by the name returned from String.
func ParseInstrument(name string) (Instrument, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for instr, n := range instrumentNames {
		if n == name {
			return instr, nil
		}
	}
	return 0, fmt.Errorf("unknown instrument %q", name)
}
