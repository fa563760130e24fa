package abc

import (
	"unicode"
)

// lineReader walks the runes of a single line. Next and Peek return 0 once the
// line is exhausted.
type lineReader struct {
	runes []rune
	idx   int
}

func newLineReader(s string) *lineReader {
	return &lineReader{runes: []rune(s)}
}

func (r *lineReader) EOL() bool {
	return r.idx >= len(r.runes)
}

func (r *lineReader) Next() rune {
	if r.EOL() {
		return 0
	}
	c := r.runes[r.idx]
	r.idx++
	return c
}

func (r *lineReader) Peek() rune {
	if r.EOL() {
		return 0
	}
	return r.runes[r.idx]
}

// PeekAt returns the rune n positions ahead of the cursor.
func (r *lineReader) PeekAt(n int) rune {
	if r.idx+n >= len(r.runes) {
		return 0
	}
	return r.runes[r.idx+n]
}

func (r *lineReader) UnRead() {
	if r.idx > 0 {
		r.idx--
	}
}

// Eat consumes c if it is the next rune.
func (r *lineReader) Eat(c rune) bool {
	if r.Peek() == c && !r.EOL() {
		r.idx++
		return true
	}
	return false
}

func (r *lineReader) SkipSpace() {
	for !r.EOL() && unicode.IsSpace(r.Peek()) {
		r.idx++
	}
}

// ReadDigits consumes a run of ASCII digits and returns them.
func (r *lineReader) ReadDigits() string {
	start := r.idx
	for !r.EOL() && r.Peek() >= '0' && r.Peek() <= '9' {
		r.idx++
	}
	return string(r.runes[start:r.idx])
}

// SkipUntil consumes runes up to and including end. It reports whether end was found.
func (r *lineReader) SkipUntil(end rune) bool {
	for !r.EOL() {
		if r.Next() == end {
			return true
		}
	}
	return false
}

// Col returns the 1-based column of the next rune.
func (r *lineReader) Col() int {
	return r.idx + 1
}
