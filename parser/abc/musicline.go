package abc

import (
	"strconv"
	"unicode"
)

type barKind int

const (
	plainBar    barKind = iota // |
	sectionBar                 // || [| |]
	repeatStart                // |:
	repeatEnd                  // :|
	doubleRepeat               // ::
	noBar                      // an ending marker such as [2 with no bar line of its own
)

// musicLine groups the elements of one line of music into measures, repeats
// and endings. Repeats never span lines.
type musicLine struct {
	p    *Parser
	r    *lineReader
	line int

	top          []*Node // finished MusicLine children
	sectionStart int     // index in top where an unmatched :| repeats from
	measure      *Node

	repeat      *Node // repeat whose endings are being read
	ending      *Node // ending currently being filled
	endingCount int
	endingShut  bool // the current repeat's last ending was closed by :|
}

func (p *Parser) parseMusicLine(text string) (*Node, error) {
	m := &musicLine{p: p, r: newLineReader(text), line: p.lineNumber}
	if err := m.parse(); err != nil {
		return nil, err
	}
	return newNode(MusicLine, m.line, m.top...), nil
}

func (m *musicLine) parse() error {
	r := m.r
	for {
		r.SkipSpace()
		if r.EOL() {
			break
		}
		col := r.Col()
		c := r.Peek()
		switch {
		case c == '|' || c == ':':
			kind, ending, err := m.readBar()
			if err != nil {
				return err
			}
			m.bar(kind)
			if ending > 0 {
				m.startEnding(ending)
			}

		case c == '[' && unicode.IsDigit(r.PeekAt(1)):
			r.Next()
			n, _ := strconv.Atoi(r.ReadDigits())
			m.bar(noBar)
			m.startEnding(n)

		case c == '[' && r.PeekAt(1) == '|':
			r.Next()
			r.Next()
			m.bar(sectionBar)

		case c == '[':
			chord, err := m.readChord()
			if err != nil {
				return err
			}
			m.addElement(chord)

		case c == '(':
			r.Next()
			if !unicode.IsDigit(r.Peek()) {
				// Slurs do not affect timing.
				continue
			}
			tuplet, err := m.readTuplet()
			if err != nil {
				return err
			}
			m.addElement(tuplet)

		case c == ')':
			r.Next()

		case c == 'z' || c == 'x':
			m.addElement(m.readRest())

		case isNoteStart(c):
			note, err := m.readNote()
			if err != nil {
				return err
			}
			m.addElement(note)

		case c == '"':
			r.Next()
			if !r.SkipUntil('"') {
				return m.p.fatalAt(col, "unterminated annotation")
			}
		case c == '!' || c == '+':
			r.Next()
			if !r.SkipUntil(c) {
				return m.p.fatalAt(col, "unterminated decoration")
			}
		case c == '{':
			r.Next()
			if !r.SkipUntil('}') {
				return m.p.fatalAt(col, "unterminated grace notes")
			}
			m.p.addWarning("grace notes ignored")
		case c == '-':
			r.Next()
			m.p.addWarning("ties are not supported, notes are played separately")
		case c == '>' || c == '<':
			r.Next()
			m.p.addWarning("broken rhythm %q ignored", c)
		case c == '.' || c == '~' || c == 'u' || c == 'v' || c == '\\' || c == '`':
			r.Next()

		default:
			return m.p.fatalAt(col, "unexpected character %q in music", c)
		}
	}

	m.endMeasure()
	m.finishRepeat()
	return nil
}

func isNoteStart(c rune) bool {
	switch c {
	case '^', '_', '=':
		return true
	}
	return (c >= 'A' && c <= 'G') || (c >= 'a' && c <= 'g')
}

// readBar reads a bar line and any ending number written straight after it.
func (m *musicLine) readBar() (barKind, int, error) {
	r := m.r
	col := r.Col()
	var kind barKind
	switch r.Next() {
	case '|':
		switch {
		case r.Eat('|'), r.Eat(']'):
			kind = sectionBar
		case r.Eat(':'):
			kind = repeatStart
		default:
			kind = plainBar
		}
	case ':':
		switch {
		case r.Eat('|'):
			kind = repeatEnd
			r.Eat(']')
		case r.Eat(':'):
			kind = doubleRepeat
		default:
			return 0, 0, m.p.fatalAt(col, "unexpected ':'")
		}
	}
	if kind == plainBar || kind == repeatEnd {
		if digits := r.ReadDigits(); digits != "" {
			n, _ := strconv.Atoi(digits)
			return kind, n, nil
		}
	}
	return kind, 0, nil
}

func (m *musicLine) current() *Node {
	if m.measure == nil {
		m.measure = newNode(Measure, m.line)
	}
	return m.measure
}

func (m *musicLine) addElement(n *Node) {
	if m.endingShut {
		// Music after a closed ending means there are no more endings.
		m.finishRepeat()
	}
	m.current().add(n)
}

func (m *musicLine) endMeasure() {
	if m.measure == nil || len(m.measure.Children) == 0 {
		m.measure = nil
		return
	}
	if m.ending != nil {
		m.ending.add(m.measure)
	} else {
		m.top = append(m.top, m.measure)
	}
	m.measure = nil
}

func (m *musicLine) bar(kind barKind) {
	m.endMeasure()
	switch kind {
	case plainBar:
		// The last ending lasts one measure.
		if m.ending != nil && m.endingCount > 1 {
			m.finishRepeat()
		}
	case sectionBar, repeatStart:
		if m.repeat != nil && (m.endingShut || m.endingCount > 1) {
			m.finishRepeat()
		}
		m.sectionStart = len(m.top)
	case repeatEnd, doubleRepeat:
		switch {
		case m.ending != nil:
			m.ending = nil
			m.endingShut = true
		case m.repeat == nil:
			m.closeRepeat()
		default:
			m.p.addWarning(":| after a closed ending ignored")
		}
		if kind == doubleRepeat {
			m.finishRepeat()
			m.sectionStart = len(m.top)
		}
	}
}

// closeRepeat turns the measures since the section start into a repeat with no endings.
func (m *musicLine) closeRepeat() {
	body := m.top[m.sectionStart:]
	if len(body) == 0 {
		m.p.addWarning("empty repeat ignored")
		return
	}
	repeat := newNode(Repeat, m.line, body...)
	m.top = append(m.top[:m.sectionStart:m.sectionStart], repeat)
	m.sectionStart = len(m.top)
}

func (m *musicLine) startEnding(n int) {
	if m.repeat == nil {
		body := m.top[m.sectionStart:]
		m.repeat = newNode(Repeat, m.line, body...)
		m.top = m.top[:m.sectionStart:m.sectionStart]
	} else if m.ending != nil {
		m.p.addWarning("ending %d starts before the previous ending was closed with :|", n)
	}
	if n != m.endingCount+1 {
		m.p.addWarning("ending %d out of order, treated as ending %d", n, m.endingCount+1)
	}
	m.ending = newNode(Ending, m.line)
	m.repeat.add(m.ending)
	m.endingCount++
	m.endingShut = false
}

func (m *musicLine) finishRepeat() {
	if m.repeat == nil {
		return
	}
	m.endMeasure()
	m.top = append(m.top, m.repeat)
	m.repeat = nil
	m.ending = nil
	m.endingCount = 0
	m.endingShut = false
	m.sectionStart = len(m.top)
}

func (m *musicLine) readLength() *Node {
	r := m.r
	length := newNode(NoteLength, m.line)
	if digits := r.ReadDigits(); digits != "" {
		length.add(newLeaf(Numerator, m.line, digits))
	}
	slashes := 0
	for r.Eat('/') {
		length.add(newLeaf(Slash, m.line, "/"))
		slashes++
	}
	if slashes > 0 {
		if digits := r.ReadDigits(); digits != "" {
			length.add(newLeaf(Denominator, m.line, digits))
		}
	}
	if len(length.Children) == 0 {
		return nil
	}
	return length
}

func (m *musicLine) readNote() (*Node, error) {
	r := m.r
	col := r.Col()
	note := newNode(Note, m.line)
	switch c := r.Peek(); c {
	case '^', '_':
		r.Next()
		acc := string(c)
		if r.Eat(c) {
			acc += string(c)
		}
		note.add(newLeaf(Accidental, m.line, acc))
	case '=':
		r.Next()
		note.add(newLeaf(Accidental, m.line, "="))
	}
	c := r.Next()
	if !((c >= 'A' && c <= 'G') || (c >= 'a' && c <= 'g')) {
		return nil, m.p.fatalAt(col, "accidental is not followed by a note")
	}
	note.add(newLeaf(BaseNote, m.line, string(c)))
	for r.Peek() == '\'' || r.Peek() == ',' {
		note.add(newLeaf(Octave, m.line, string(r.Next())))
	}
	if length := m.readLength(); length != nil {
		note.add(length)
	}
	return note, nil
}

func (m *musicLine) readRest() *Node {
	rest := newNode(Rest, m.line, newLeaf(BaseNote, m.line, string(m.r.Next())))
	if length := m.readLength(); length != nil {
		rest.add(length)
	}
	return rest
}

func (m *musicLine) readChord() (*Node, error) {
	r := m.r
	col := r.Col()
	r.Next() // [
	chord := newNode(Chord, m.line)
	for !r.Eat(']') {
		if r.EOL() {
			return nil, m.p.fatalAt(col, "unterminated chord")
		}
		if !isNoteStart(r.Peek()) {
			return nil, m.p.fatalAt(r.Col(), "unexpected character %q in chord", r.Peek())
		}
		note, err := m.readNote()
		if err != nil {
			return nil, err
		}
		chord.add(note)
	}
	if len(chord.Children) == 0 {
		return nil, m.p.fatalAt(col, "empty chord")
	}
	if m.readLength() != nil {
		m.p.addWarning("chord length ignored, write lengths on the chord's notes")
	}
	return chord, nil
}

func (m *musicLine) readTuplet() (*Node, error) {
	r := m.r
	col := r.Col()
	digits := r.ReadDigits()
	n, err := strconv.Atoi(digits)
	if err != nil {
		return nil, m.p.fatalAt(col, "invalid tuplet size %q", digits)
	}
	tuplet := newNode(Tuplet, m.line, newLeaf(TupletSize, m.line, digits))
	for i := 0; i < n; i++ {
		r.SkipSpace()
		switch c := r.Peek(); {
		case c == '[' && !unicode.IsDigit(r.PeekAt(1)) && r.PeekAt(1) != '|':
			chord, err := m.readChord()
			if err != nil {
				return nil, err
			}
			tuplet.add(chord)
		case isNoteStart(c):
			note, err := m.readNote()
			if err != nil {
				return nil, err
			}
			tuplet.add(note)
		default:
			return nil, m.p.fatalAt(r.Col(), "tuplet of %d has only %d notes", n, i)
		}
	}
	return tuplet, nil
}
