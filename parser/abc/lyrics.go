package abc

import (
	"strings"
	"unicode"
)

// parseLyrics splits the text of a w: line into syllable tokens.
//
// A hyphen ends a syllable; a hyphen with no syllable before it marks a note
// the previous syllable carries over. Whitespace also ends a syllable, and is
// kept as a trailing space on the token before it unless a hyphen follows.
// "~" and "\-" stay inside the syllable. The end of the line counts as
// whitespace unless the line ends in a hyphen, so that lyrics continued on a
// later line stay apart from or joined to this one as written.
func parseLyrics(text string, line int) *Node {
	type token struct {
		sym  Symbol
		text string
	}
	var (
		tokens  []token
		cur     []rune
		pending bool // whitespace seen since the last token
		last    rune // last rune that was not whitespace
	)
	flush := func() {
		if len(cur) > 0 {
			tokens = append(tokens, token{Syllable, string(cur)})
			cur = cur[:0]
		}
	}

	r := newLineReader(text)
	for !r.EOL() {
		c := r.Next()
		if unicode.IsSpace(c) {
			flush()
			pending = len(tokens) > 0
			continue
		}
		last = c
		if pending {
			if c != '-' {
				tokens[len(tokens)-1].text += " "
			}
			pending = false
		}
		switch c {
		case '-':
			if len(cur) == 0 {
				tokens = append(tokens, token{Syllable, ""})
			}
			flush()
		case '_':
			flush()
			tokens = append(tokens, token{Hold, "_"})
		case '*':
			flush()
			tokens = append(tokens, token{Skip, "*"})
		case '|':
			flush()
			tokens = append(tokens, token{LyricBar, "|"})
		case '\\':
			if r.Eat('-') {
				cur = append(cur, '\\', '-')
			} else {
				cur = append(cur, c)
			}
		default:
			cur = append(cur, c)
		}
	}
	flush()
	if n := len(tokens); n > 0 && last != '-' && !strings.HasSuffix(tokens[n-1].text, " ") {
		tokens[n-1].text += " "
	}

	lyrics := newNode(LyricLine, line)
	for _, t := range tokens {
		lyrics.add(newLeaf(t.sym, line, t.text))
	}
	return lyrics
}
