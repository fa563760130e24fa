package abc

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/QEStudios/karaoke/score"
	"github.com/davecgh/go-spew/spew"
)

// Options control how a parse tree becomes a composition.
type Options struct {
	Instrument score.Instrument // instrument every note is played on
	Logger     *log.Logger      // used by the built voices; nil means log.Default()
}

var accidentalSemitones = map[string]int{
	"^":  1,
	"_":  -1,
	"^^": 2,
	"__": -2,
	"=":  0,
}

// unhandled reports a node the builder has no rule for. The parser never
// produces one, so this is a bug rather than bad input.
func unhandled(n *Node) string {
	return fmt.Sprintf("unhandled grammar symbol %s\n%s", n.Symbol, spew.Sdump(n))
}

// Build turns a parse tree into a composition. Blocks of the same voice are
// joined in the order they appear.
func Build(root *Node, opts Options) (*score.Composition, error) {
	if root == nil || root.Symbol != Composition {
		return nil, fmt.Errorf("build: root is not a Composition node")
	}
	hn := root.Child(Header)
	if hn == nil {
		return nil, fmt.Errorf("build: missing header")
	}
	h, err := buildHeader(hn)
	if err != nil {
		return nil, err
	}

	key := score.KeySignature(h.Key)
	c := score.NewComposition(h)
	offsets := make(map[string]int)
	for _, child := range root.Children {
		switch child.Symbol {
		case Header:
		case VoiceBlock:
			v, err := buildVoiceBlock(child, key, opts, offsets)
			if err != nil {
				return nil, err
			}
			c.AddVoice(v)
		default:
			panic(unhandled(child))
		}
	}

	// Declared voices with no music still accept listeners.
	for _, name := range h.VoiceNames {
		if _, ok := c.Voice(name); !ok {
			c.AddVoice(score.NewVoice(name, score.Silence(), nil, opts.Logger))
		}
	}
	return c, nil
}

func buildVoiceBlock(block *Node, key map[score.Letter]int, opts Options, offsets map[string]int) (*score.Voice, error) {
	name := ""
	if vn := block.Child(VoiceName); vn != nil {
		name = vn.Text
	}
	syllables := lyricSyllables(block.Child(LyricLine))

	ml := block.Child(MusicLine)
	if ml == nil {
		return nil, fmt.Errorf("line %d: voice block has no music", block.Line)
	}
	m, e, err := build(ml, newEnv(key, opts.Instrument, syllables, offsets[name]))
	if err != nil {
		return nil, err
	}
	if e.overran {
		// Keeps notes past the end of this block's lyrics off the next block's first syllable.
		syllables = append(syllables, "")
	}
	offsets[name] += len(syllables)
	return score.NewVoice(name, m, syllables, opts.Logger), nil
}

func lyricSyllables(n *Node) []string {
	if n == nil {
		return nil
	}
	out := make([]string, 0, len(n.Children))
	for _, c := range n.Children {
		switch c.Symbol {
		case Syllable, Hold, Skip, LyricBar:
			out = append(out, c.Text)
		default:
			panic(unhandled(c))
		}
	}
	return out
}

func build(n *Node, e env) (score.Music, env, error) {
	switch n.Symbol {
	case MusicLine, Ending:
		return buildSeq(n.Children, e)

	case Measure:
		return buildSeq(n.Children, e.newMeasure())

	case Repeat:
		var body, endings []*Node
		for _, c := range n.Children {
			switch c.Symbol {
			case Measure:
				body = append(body, c)
			case Ending:
				endings = append(endings, c)
			default:
				panic(unhandled(c))
			}
		}
		bodyMusic, e, err := buildSeq(body, e)
		if err != nil {
			return nil, e, err
		}
		var endingMusic []score.Music
		for _, en := range endings {
			var m score.Music
			m, e, err = build(en, e)
			if err != nil {
				return nil, e, err
			}
			endingMusic = append(endingMusic, m)
		}
		return score.NewRepeat(bodyMusic, endingMusic), e, nil

	case Note:
		return buildNote(n, e)

	case Rest:
		d, err := noteLength(n.Child(NoteLength), e.unit)
		if err != nil {
			return nil, e, fmt.Errorf("line %d: %w", n.Line, err)
		}
		r, err := score.NewRest(d)
		if err != nil {
			return nil, e, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return r, e, nil

	case Chord:
		wasLocked := e.locked
		e.locked = true
		members, e, err := buildAll(n.Children, e)
		if err != nil {
			return nil, e, err
		}
		e.locked = wasLocked
		var idx int
		idx, e = e.take()
		ch, err := score.NewChord(members, idx)
		if err != nil {
			return nil, e, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return ch, e, nil

	case Tuplet:
		return buildTuplet(n, e)

	default:
		panic(unhandled(n))
	}
}

func buildAll(nodes []*Node, e env) ([]score.Music, env, error) {
	out := make([]score.Music, 0, len(nodes))
	for _, c := range nodes {
		m, next, err := build(c, e)
		if err != nil {
			return nil, e, err
		}
		e = next
		out = append(out, m)
	}
	return out, e, nil
}

func buildSeq(nodes []*Node, e env) (score.Music, env, error) {
	ms, e, err := buildAll(nodes, e)
	if err != nil {
		return nil, e, err
	}
	return score.ConcatAll(ms...), e, nil
}

func buildTuplet(n *Node, e env) (score.Music, env, error) {
	sizeNode := n.Child(TupletSize)
	if sizeNode == nil {
		panic(unhandled(n))
	}
	size, err := strconv.Atoi(sizeNode.Text)
	if err != nil || size < 2 || size > 4 {
		return nil, e, fmt.Errorf("line %d: %w: got %q", n.Line, score.ErrTupletSize, sizeNode.Text)
	}

	saved := e.unit
	e.unit = e.unit.Mul(score.TupletScale(size))
	var members []score.Music
	for _, c := range n.Children {
		if c.Symbol == TupletSize {
			continue
		}
		var m score.Music
		m, e, err = build(c, e)
		if err != nil {
			return nil, e, err
		}
		members = append(members, m)
	}
	e.unit = saved

	t, err := score.NewTuplet(size, members)
	if err != nil {
		return nil, e, fmt.Errorf("line %d: %w", n.Line, err)
	}
	return t, e, nil
}

func buildNote(n *Node, e env) (score.Music, env, error) {
	base := n.Child(BaseNote)
	if base == nil || len(base.Text) != 1 {
		panic(unhandled(n))
	}
	c := base.Text[0]
	letter := score.Letter(strings.ToUpper(base.Text)[0])
	if !letter.IsValid() {
		return nil, e, fmt.Errorf("line %d: invalid note %q", n.Line, base.Text)
	}
	octave := 0
	if c >= 'a' && c <= 'z' {
		octave = 1
	}
	for _, o := range n.All(Octave) {
		switch o.Text {
		case "'":
			octave++
		case ",":
			octave--
		default:
			panic(unhandled(o))
		}
	}

	pc := pitchClass{letter: letter, octave: octave}
	var semitones int
	if acc := n.Child(Accidental); acc != nil {
		s, ok := accidentalSemitones[acc.Text]
		if !ok {
			panic(unhandled(acc))
		}
		semitones = s
		e = e.withOverride(pc, s)
	} else {
		semitones = e.semitones(pc)
	}

	d, err := noteLength(n.Child(NoteLength), e.unit)
	if err != nil {
		return nil, e, fmt.Errorf("line %d: %w", n.Line, err)
	}
	var idx int
	idx, e = e.take()
	pitch := score.Pitch{Letter: letter, Octave: octave, Semitones: semitones}
	note, err := score.NewNote(d, pitch, e.instrument, idx)
	if err != nil {
		return nil, e, fmt.Errorf("line %d: %w", n.Line, err)
	}
	return note, e, nil
}

var errZeroDenominator = errors.New("note length has a zero denominator")

// noteLength scales unit by a written length such as "3", "/", "//" or "3/4".
func noteLength(n *Node, unit score.Beats) (score.Beats, error) {
	if n == nil {
		return unit, nil
	}
	num, den := int64(1), int64(1)
	slashes := 0
	for _, c := range n.Children {
		switch c.Symbol {
		case Numerator:
			v, err := strconv.ParseInt(c.Text, 10, 32)
			if err != nil {
				return score.Beats{}, fmt.Errorf("invalid note length %q: %w", c.Text, err)
			}
			num = v
		case Slash:
			slashes++
		case Denominator:
			v, err := strconv.ParseInt(c.Text, 10, 32)
			if err != nil {
				return score.Beats{}, fmt.Errorf("invalid note length %q: %w", c.Text, err)
			}
			den = v
		default:
			panic(unhandled(c))
		}
	}
	if n.Child(Denominator) == nil && slashes > 0 {
		den = int64(1) << min(slashes, 30)
	}
	if den == 0 {
		return score.Beats{}, errZeroDenominator
	}
	return unit.Scale(num, den), nil
}
