package abc

import (
	"bytes"
	"errors"
	"log"
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"
)

func parse(t *testing.T, src string) (*Node, *Parser) {
	t.Helper()
	p := NewParser(strings.NewReader(src), log.New(&bytes.Buffer{}, "", 0))
	tree, err := p.Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return tree, p
}

const header = "X:1\nT:Test\nK:C\n"

func TestParseHeader(t *testing.T) {
	tree, _ := parse(t, "X: 7\nT:Piece\nC:Someone\nM:3/4\nL:1/4\nQ:1/4=90\nV:1\nV:2 clef=bass\nK:G\n")
	h := tree.Child(Header)
	if h == nil {
		t.Fatal("no header")
	}
	want := map[Symbol]string{
		TrackNumber: "7",
		Title:       "Piece",
		Composer:    "Someone",
		Meter:       "3/4",
		Length:      "1/4",
		Tempo:       "1/4=90",
		Key:         "G",
	}
	for sym, text := range want {
		n := h.Child(sym)
		if n == nil || n.Text != text {
			t.Errorf("%s = %v, want %q", sym, n, text)
		}
	}
	voices := h.All(VoiceName)
	if len(voices) != 2 || voices[0].Text != "1" || voices[1].Text != "2" {
		t.Errorf("voices = %s", spew.Sdump(voices))
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		line int
	}{
		{"missing X", "T:Test\nK:C\n", 1},
		{"missing T", "X:1\nK:C\n", 2},
		{"missing K", "X:1\nT:Test\n", 2},
		{"text in header", "X:1\nT:Test\nCDEF\n", 3},
		{"bad character", header + "C D ? E\n", 4},
		{"unterminated chord", header + "[CEG\n", 4},
		{"short tuplet", header + "(3CD|\n", 4},
		{"accidental without note", header + "^ C\n", 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewParser(strings.NewReader(tt.src), nil)
			_, err := p.Parse()
			var se *SyntaxError
			if !errors.As(err, &se) {
				t.Fatalf("err = %v, want *SyntaxError", err)
			}
			if se.Line != tt.line {
				t.Errorf("error line = %d, want %d (%v)", se.Line, tt.line, se)
			}
		})
	}
}

func TestParserSingleUse(t *testing.T) {
	p := NewParser(strings.NewReader(header+"C\n"), log.New(&bytes.Buffer{}, "", 0))
	if _, err := p.Parse(); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Parse(); err == nil {
		t.Error("second Parse succeeded")
	}
}

func TestParseNote(t *testing.T) {
	tree, _ := parse(t, header+"^^c'',3/4 _B// =E3 z/\n")
	ml := tree.Child(VoiceBlock).Child(MusicLine)
	want := `MusicLine
  Measure
    Note
      Accidental "^^"
      BaseNote "c"
      Octave "'"
      Octave "'"
      Octave ","
      NoteLength
        Numerator "3"
        Slash "/"
        Denominator "4"
    Note
      Accidental "_"
      BaseNote "B"
      NoteLength
        Slash "/"
        Slash "/"
    Note
      Accidental "="
      BaseNote "E"
      NoteLength
        Numerator "3"
    Rest
      BaseNote "z"
      NoteLength
        Slash "/"`
	if got := ml.String(); got != want {
		t.Errorf("tree =\n%s\nwant\n%s", got, want)
	}
}

func TestParseChordAndTuplet(t *testing.T) {
	tree, _ := parse(t, header+"[CEG] (3 C [DF] E |\n")
	ml := tree.Child(VoiceBlock).Child(MusicLine)
	want := `MusicLine
  Measure
    Chord
      Note
        BaseNote "C"
      Note
        BaseNote "E"
      Note
        BaseNote "G"
    Tuplet
      TupletSize "3"
      Note
        BaseNote "C"
      Chord
        Note
          BaseNote "D"
        Note
          BaseNote "F"
      Note
        BaseNote "E"`
	if got := ml.String(); got != want {
		t.Errorf("tree =\n%s\nwant\n%s", got, want)
	}
}

// outline renders the measures, repeats and endings of a music line in brief,
// e.g. "M R(M M E(M) E(M)) M".
func outline(n *Node) string {
	var parts []string
	for _, c := range n.Children {
		switch c.Symbol {
		case Measure:
			parts = append(parts, "M")
		case Repeat:
			parts = append(parts, "R("+outline(c)+")")
		case Ending:
			parts = append(parts, "E("+outline(c)+")")
		}
	}
	return strings.Join(parts, " ")
}

func TestParseRepeats(t *testing.T) {
	tests := []struct {
		music string
		want  string
	}{
		{"C | D | E", "M M M"},
		{"C | D :| E", "R(M M) M"},
		{"C |: D | E :| F", "M R(M M) M"},
		{"C || D :|", "M R(M)"},
		{"C [| D :|", "M R(M)"},
		{"|: C |1 D :|2 E | F", "R(M E(M) E(M)) M"},
		{"|: C [1 D | D2 :| [2 E | F |]", "R(M E(M M) E(M)) M"},
		{"C [1 D :|[2 E :|[3 F G |", "R(M E(M) E(M) E(M))"},
		{"|: C :: D :|", "R(M) R(M)"},
		{"C |1 D :| E", "R(M E(M)) M"},
		{"|: C :|", "R(M)"},
	}
	for _, tt := range tests {
		tree, _ := parse(t, header+tt.music+"\n")
		ml := tree.Child(VoiceBlock).Child(MusicLine)
		if got := outline(ml); got != tt.want {
			t.Errorf("%q: got %s, want %s", tt.music, got, tt.want)
		}
	}
}

func TestParseVoicesAndLyrics(t *testing.T) {
	src := "X:1\nT:Duet\nV:up\nV:down\nK:C\n" +
		"V:up\nC D E F|\nw:one two three four\n" +
		"V:down\nC, D, E, F,|\n" +
		"V:up\nG A B c|\nw:five six\n"
	tree, p := parse(t, src)
	blocks := tree.All(VoiceBlock)
	if len(blocks) != 3 {
		t.Fatalf("got %d voice blocks, want 3", len(blocks))
	}
	names := []string{"up", "down", "up"}
	lyrics := []bool{true, false, true}
	for i, b := range blocks {
		if vn := b.Child(VoiceName); vn == nil || vn.Text != names[i] {
			t.Errorf("block %d voice = %v, want %q", i, vn, names[i])
		}
		if (b.Child(LyricLine) != nil) != lyrics[i] {
			t.Errorf("block %d has lyrics = %v, want %v", i, !lyrics[i], lyrics[i])
		}
	}
	if len(p.Warnings()) != 0 {
		t.Errorf("unexpected warnings: %v", p.Warnings())
	}
}

func TestParseWarnings(t *testing.T) {
	var buf bytes.Buffer
	p := NewParser(strings.NewReader("X:1\nT:Test\nR:reel\nK:C\nw:orphan\n\"Am\"C-C {g}D % comment\n"), log.New(&buf, "", 0))
	tree, err := p.Parse()
	if err != nil {
		t.Fatal(err)
	}
	if n := len(tree.Child(VoiceBlock).Child(MusicLine).Child(Measure).Children); n != 3 {
		t.Errorf("measure has %d notes, want 3", n)
	}
	if got := len(p.Warnings()); got != 4 {
		t.Errorf("got %d warnings, want 4: %v", got, p.Warnings())
	}
	if !strings.Contains(buf.String(), "line 3: unsupported header field R") {
		t.Errorf("warnings were not logged: %q", buf.String())
	}
}

func TestParseLyrics(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"syll-a-ble", []string{"syll", "a", "ble "}},
		{"syll-a-_ble", []string{"syll", "a", "_", "ble "}},
		{"syll-a--ble", []string{"syll", "a", "", "ble "}},
		{"syll-a -ble", []string{"syll", "a", "", "ble "}},
		{"time__", []string{"time", "_", "_ "}},
		{"time_ day", []string{"time", "_ ", "day "}},
		{"syll*ble", []string{"syll", "*", "ble "}},
		{"of~the~day", []string{"of~the~day "}},
		{`of\-the day`, []string{`of\-the `, "day "}},
		{"a-b-c | a-b-c-d", []string{"a", "b", "c ", "| ", "a", "b", "c", "d "}},
		{"  lead  ", []string{"lead "}},
		{"con-", []string{"con"}},
		{"", nil},
	}
	for _, tt := range tests {
		n := parseLyrics(tt.in, 1)
		var got []string
		for _, c := range n.Children {
			got = append(got, c.Text)
		}
		if strings.Join(got, "\x00") != strings.Join(tt.want, "\x00") || len(got) != len(tt.want) {
			t.Errorf("parseLyrics(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLyricSymbols(t *testing.T) {
	n := parseLyrics("a_ * |b", 1)
	want := []Symbol{Syllable, Hold, Skip, LyricBar, Syllable}
	if len(n.Children) != len(want) {
		t.Fatalf("got %s", n)
	}
	for i, c := range n.Children {
		if c.Symbol != want[i] {
			t.Errorf("token %d is %s, want %s", i, c.Symbol, want[i])
		}
	}
}
