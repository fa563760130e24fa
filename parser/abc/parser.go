package abc

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"strings"
	"unicode"

	"github.com/davecgh/go-spew/spew"
)

// Parser reads an ABC tune into a parse tree.
type Parser struct {
	scanner    *bufio.Scanner
	logger     *log.Logger
	lineNumber int
	state      string

	root      *Node
	header    *Node
	seen      map[string]bool // header fields already read
	voice     string          // voice selected by the last body V: line
	hasVoice  bool
	lastBlock *Node // block the next w: line belongs to

	// Collect any warnings whilst parsing.
	warnings []ParseWarning

	// Whether or not the parser has already been used.
	// Parsing can only be done once per Parser.
	used bool
}

// NewParser creates a new parser to parse a tune.
func NewParser(r io.Reader, logger *log.Logger) *Parser {
	if logger == nil {
		logger = log.Default()
	}
	header := newNode(Header, 0)
	return &Parser{
		scanner: bufio.NewScanner(r),
		logger:  logger,
		state:   "track number", // A tune starts with its X: field.
		root:    newNode(Composition, 0, header),
		header:  header,
		seen:    make(map[string]bool),
	}
}

// Parse reads the whole tune and returns its parse tree.
// Non-fatal problems are logged and kept in Warnings.
func (p *Parser) Parse() (*Node, error) {
	tree, err := p.parseInternal()
	if err != nil {
		return nil, err
	}

	if len(p.warnings) > 0 {
		p.logger.Println("Warnings produced while parsing file:")
		for _, warning := range p.warnings {
			p.logger.Printf("line %d: %v\n", warning.Line, warning.Message)
		}
	}
	return tree, nil
}

func (p *Parser) Warnings() []ParseWarning {
	return append([]ParseWarning(nil), p.warnings...)
}

// addWarning adds to the list of warnings encountered when parsing.
func (p *Parser) addWarning(format string, args ...any) {
	p.warnings = append(p.warnings, ParseWarning{
		Line:    p.lineNumber,
		Message: fmt.Sprintf(format, args...),
	})
}

func (p *Parser) fatalf(format string, args ...any) error {
	return &SyntaxError{Line: p.lineNumber, Msg: fmt.Sprintf(format, args...)}
}

func (p *Parser) fatalAt(col int, format string, args ...any) error {
	return &SyntaxError{Line: p.lineNumber, Col: col, Msg: fmt.Sprintf(format, args...)}
}

// splitField splits "K: G" into "K" and "G". ok is false if line is not a field.
func splitField(line string) (name, value string, ok bool) {
	if len(line) < 2 || line[1] != ':' || !unicode.IsLetter(rune(line[0])) {
		return "", "", false
	}
	return line[:1], strings.TrimSpace(line[2:]), true
}

// stripComment removes a trailing % comment. An escaped \% is kept.
func stripComment(line string) string {
	for i := 0; i < len(line); i++ {
		if line[i] == '%' && (i == 0 || line[i-1] != '\\') {
			return line[:i]
		}
	}
	return line
}

func (p *Parser) parseInternal() (*Node, error) {
	if p.used {
		return nil, fmt.Errorf("parser already used")
	}
	p.used = true
	for p.scanner.Scan() {
		p.lineNumber++
		line := p.scanner.Text()
		if p.lineNumber == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		trimmedLine := strings.TrimSpace(stripComment(line))

		// Blank lines and comments are ignored everywhere.
		if trimmedLine == "" {
			continue
		}

		switch p.state {
		case "track number":
			name, value, ok := splitField(trimmedLine)
			if !ok || name != "X" {
				return nil, p.fatalf("expected X: field at start of tune, found %q", trimmedLine)
			}
			p.header.add(newLeaf(TrackNumber, p.lineNumber, value))
			p.seen["X"] = true
			p.state = "header"

		case "header":
			name, value, ok := splitField(trimmedLine)
			if !ok {
				return nil, p.fatalf("expected header field, found %q", trimmedLine)
			}
			if err := p.parseHeaderField(name, value); err != nil {
				return nil, err
			}

		case "body":
			if err := p.parseBodyLine(trimmedLine); err != nil {
				return nil, err
			}

		default:
			spew.Dump(p.root)
			return nil, p.fatalf("unknown parser state: %s", p.state)
		}
	}

	if err := p.scanner.Err(); err != nil {
		return nil, fmt.Errorf("error while reading file: %w", err)
	}

	if p.state != "body" {
		return nil, p.fatalf("unexpected EOF: tune has no K: field")
	}
	if len(p.root.All(VoiceBlock)) == 0 {
		p.addWarning("tune has no music")
	}
	return p.root, nil
}

var headerSymbols = map[string]Symbol{
	"T": Title,
	"C": Composer,
	"M": Meter,
	"L": Length,
	"Q": Tempo,
}

func (p *Parser) parseHeaderField(name, value string) error {
	switch name {
	case "X":
		p.addWarning("duplicate X: field ignored")
	case "T", "C", "M", "L", "Q":
		if p.seen[name] {
			p.addWarning("duplicate %s: field ignored", name)
			return nil
		}
		p.seen[name] = true
		p.header.add(newLeaf(headerSymbols[name], p.lineNumber, value))
	case "V":
		voice := voiceID(value)
		if voice == "" {
			return p.fatalf("V: field has no voice name")
		}
		p.header.add(newLeaf(VoiceName, p.lineNumber, voice))
	case "K":
		if !p.seen["T"] {
			return p.fatalf("missing T: field before K:")
		}
		p.header.add(newLeaf(Key, p.lineNumber, value))
		p.state = "body"
	default:
		p.addWarning("unsupported header field %s: ignored", name)
	}
	return nil
}

// voiceID returns the voice name of a V: field, dropping any attributes after it.
func voiceID(value string) string {
	fields := strings.Fields(value)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// startsMusic reports whether c can begin a note or rest, which rules out
// reading "C:|" as a field.
func startsMusic(c byte) bool {
	return (c >= 'A' && c <= 'G') || (c >= 'a' && c <= 'g') || c == 'z' || c == 'x'
}

func (p *Parser) parseBodyLine(line string) error {
	name, value, ok := splitField(line)
	if ok && !startsMusic(line[0]) {
		switch name {
		case "V":
			voice := voiceID(value)
			if voice == "" {
				return p.fatalf("V: field has no voice name")
			}
			p.voice, p.hasVoice = voice, true
			p.lastBlock = nil
		case "w":
			if p.lastBlock == nil {
				p.addWarning("lyric line has no music line before it")
				return nil
			}
			if p.lastBlock.Child(LyricLine) != nil {
				p.addWarning("only one lyric line per music line is supported, extra line ignored")
				return nil
			}
			p.lastBlock.add(parseLyrics(value, p.lineNumber))
		default:
			p.addWarning("field %s: in tune body ignored", name)
		}
		return nil
	}

	music, err := p.parseMusicLine(line)
	if err != nil {
		return err
	}
	block := newNode(VoiceBlock, p.lineNumber)
	if p.hasVoice {
		block.add(newLeaf(VoiceName, p.lineNumber, p.voice))
	}
	block.add(music)
	p.root.add(block)
	p.lastBlock = block
	return nil
}
