package abc

import (
	"fmt"
	"strings"
)

// Symbol names the grammar rule a Node was produced by.
type Symbol int

const (
	Composition Symbol = iota
	Header
	TrackNumber
	Title
	Composer
	Meter
	Length
	Tempo
	VoiceName
	Key

	VoiceBlock
	MusicLine
	Measure
	Repeat
	Ending
	Note
	Rest
	Chord
	Tuplet
	TupletSize
	Accidental
	BaseNote
	Octave
	NoteLength
	Numerator
	Slash
	Denominator

	LyricLine
	Syllable
	Hold
	Skip
	LyricBar
)

var symbolNames = map[Symbol]string{
	Composition: "Composition",
	Header:      "Header",
	TrackNumber: "TrackNumber",
	Title:       "Title",
	Composer:    "Composer",
	Meter:       "Meter",
	Length:      "Length",
	Tempo:       "Tempo",
	VoiceName:   "VoiceName",
	Key:         "Key",
	VoiceBlock:  "VoiceBlock",
	MusicLine:   "MusicLine",
	Measure:     "Measure",
	Repeat:      "Repeat",
	Ending:      "Ending",
	Note:        "Note",
	Rest:        "Rest",
	Chord:       "Chord",
	Tuplet:      "Tuplet",
	TupletSize:  "TupletSize",
	Accidental:  "Accidental",
	BaseNote:    "BaseNote",
	Octave:      "Octave",
	NoteLength:  "NoteLength",
	Numerator:   "Numerator",
	Slash:       "Slash",
	Denominator: "Denominator",
	LyricLine:   "LyricLine",
	Syllable:    "Syllable",
	Hold:        "Hold",
	Skip:        "Skip",
	LyricBar:    "LyricBar",
}

func (s Symbol) String() string {
	if name, ok := symbolNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Symbol(%d)", int(s))
}

// Node is one element of a parse tree. Leaves carry the matched text.
type Node struct {
	Symbol   Symbol
	Text     string
	Line     int
	Children []*Node
}

func newNode(sym Symbol, line int, children ...*Node) *Node {
	return &Node{Symbol: sym, Line: line, Children: append([]*Node(nil), children...)}
}

func newLeaf(sym Symbol, line int, text string) *Node {
	return &Node{Symbol: sym, Line: line, Text: text}
}

func (n *Node) add(children ...*Node) {
	n.Children = append(n.Children, children...)
}

// Child returns the first child with the given symbol, or nil.
func (n *Node) Child(sym Symbol) *Node {
	for _, c := range n.Children {
		if c.Symbol == sym {
			return c
		}
	}
	return nil
}

// All returns every child with the given symbol.
func (n *Node) All(sym Symbol) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Symbol == sym {
			out = append(out, c)
		}
	}
	return out
}

// String renders the tree as an indented outline, one node per line.
func (n *Node) String() string {
	var b strings.Builder
	n.outline(&b, 0)
	return strings.TrimSuffix(b.String(), "\n")
}

func (n *Node) outline(b *strings.Builder, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString(n.Symbol.String())
	if n.Text != "" {
		fmt.Fprintf(b, " %q", n.Text)
	}
	b.WriteByte('\n')
	for _, c := range n.Children {
		c.outline(b, depth+1)
	}
}
