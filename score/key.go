package score

import (
	"fmt"
	"strings"
)

// Key is a key signature as written in a K: header field.
type Key struct {
	Tonic  string // e.g. "C", "F#", "Bb"
	Mode   string // "" for major, "m" for minor, or a mode suffix such as "Dor"
	Fifths int    // sharps when positive, flats when negative
}

func (k Key) String() string {
	return k.Tonic + k.Mode
}

// Each row lists the keys sharing one position on the circle of fifths.
var circleOfFifths = []struct {
	fifths int
	keys   string
}{
	{7, "C# A#m G#Mix D#Dor E#Phr F#Lyd B#Loc"},
	{6, "F# D#m C#Mix G#Dor A#Phr BLyd E#Loc"},
	{5, "B G#m F#Mix C#Dor D#Phr ELyd A#Loc"},
	{4, "E C#m BMix F#Dor G#Phr ALyd D#Loc"},
	{3, "A F#m EMix BDor C#Phr DLyd G#Loc"},
	{2, "D Bm AMix EDor F#Phr GLyd C#Loc"},
	{1, "G Em DMix ADor BPhr CLyd F#Loc"},
	{0, "C Am GMix DDor EPhr FLyd BLoc"},
	{-1, "F Dm CMix GDor APhr BbLyd ELoc"},
	{-2, "Bb Gm FMix CDor DPhr EbLyd ALoc"},
	{-3, "Eb Cm BbMix FDor GPhr AbLyd DLoc"},
	{-4, "Ab Fm EbMix BbDor CPhr DbLyd GLoc"},
	{-5, "Db Bbm AbMix EbDor FPhr GbLyd CLoc"},
	{-6, "Gb Ebm DbMix AbDor BbPhr CbLyd FLoc"},
	{-7, "Cb Abm GbMix DbDor EbPhr FbLyd BbLoc"},
}

var keyFifths = func() map[string]int {
	m := make(map[string]int)
	for _, row := range circleOfFifths {
		for _, name := range strings.Fields(row.keys) {
			m[name] = row.fifths
		}
	}
	return m
}()

// Long spellings accepted for the mode part of a key, lower-cased.
var modeAliases = map[string]string{
	"":           "",
	"maj":        "",
	"major":      "",
	"ion":        "",
	"ionian":     "",
	"m":          "m",
	"min":        "m",
	"minor":      "m",
	"aeo":        "m",
	"aeolian":    "m",
	"mix":        "Mix",
	"mixolydian": "Mix",
	"dor":        "Dor",
	"dorian":     "Dor",
	"phr":        "Phr",
	"phrygian":   "Phr",
	"lyd":        "Lyd",
	"lydian":     "Lyd",
	"loc":        "Loc",
	"locrian":    "Loc",
}

// CMajor is the key used when a score declares none.
var CMajor = Key{Tonic: "C"}

// ParseKey reads a key such as "G", "F#m", "Bb minor" or "D Dor".
func ParseKey(s string) (Key, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Key{}, fmt.Errorf("empty key")
	}
	tonic := strings.ToUpper(s[:1])
	rest := s[1:]
	if len(rest) > 0 && (rest[0] == '#' || rest[0] == 'b') {
		tonic += rest[:1]
		rest = rest[1:]
	}
	// Anything after the mode word (clef, transposition) is ignored.
	fields := strings.Fields(rest)
	word := ""
	if len(fields) > 0 {
		word = strings.ToLower(fields[0])
	}
	mode, ok := modeAliases[word]
	if !ok {
		return Key{}, fmt.Errorf("unknown key %q", s)
	}
	fifths, ok := keyFifths[tonic+mode]
	if !ok {
		return Key{}, fmt.Errorf("unknown key %q", s)
	}
	return Key{Tonic: tonic, Mode: mode, Fifths: fifths}, nil
}

const (
	sharpOrder = "FCGDAEB"
	flatOrder  = "BEADGCF"
)

// KeySignature returns the semitone offset the key applies to each letter it
// alters. Letters left natural are absent from the map.
func KeySignature(k Key) map[Letter]int {
	sig := make(map[Letter]int)
	switch {
	case k.Fifths > 0:
		for i := 0; i < k.Fifths && i < len(sharpOrder); i++ {
			sig[Letter(sharpOrder[i])] = 1
		}
	case k.Fifths < 0:
		for i := 0; i < -k.Fifths && i < len(flatOrder); i++ {
			sig[Letter(flatOrder[i])] = -1
		}
	}
	return sig
}
