package score

import (
	"strings"
	"unicode"
)

// Special syllable tokens produced by a lyric line. Hold and bar tokens may
// carry one trailing space.
const (
	Hold    = "_"
	Skip    = "*"
	BarLine = "|"
	End     = "END"

	NoLyrics = "No Lyrics"
)

func isHold(tok string) bool    { return strings.TrimSpace(tok) == Hold }
func isSkip(tok string) bool    { return strings.TrimSpace(tok) == Skip }
func isBarLine(tok string) bool { return strings.TrimSpace(tok) == BarLine }

// IsBarLine reports whether tok is a bar-line sentinel.
func IsBarLine(tok string) bool { return isBarLine(tok) }

func isSyllable(tok string) bool {
	return strings.TrimSpace(tok) != "" && !isHold(tok) && !isSkip(tok) && !isBarLine(tok)
}

var syllableReplacer = strings.NewReplacer(`\-`, "-", "~", " ")

// Line renders syllables as one display line with the syllable at active
// wrapped in asterisks. A held note keeps the syllable it holds highlighted.
// An active index past the end highlights nothing.
func Line(syllables []string, active int) string {
	visible := false
	for _, tok := range syllables {
		if tok != "" {
			visible = true
			break
		}
	}
	if !visible {
		return NoLyrics
	}

	if active >= 0 && active < len(syllables) && isHold(syllables[active]) {
		active = heldSyllable(syllables, active)
	}

	var b strings.Builder
	for i, tok := range syllables {
		switch {
		case isHold(tok):
			if strings.HasSuffix(tok, " ") {
				b.WriteByte(' ')
			}
		case tok == "":
		case strings.TrimSpace(tok) == "":
			b.WriteByte(' ')
		case isSkip(tok), isBarLine(tok):
		case i == active:
			core := strings.TrimRightFunc(tok, unicode.IsSpace)
			b.WriteByte('*')
			b.WriteString(syllableReplacer.Replace(core))
			b.WriteByte('*')
			b.WriteString(tok[len(core):])
		default:
			b.WriteString(syllableReplacer.Replace(tok))
		}
	}
	return strings.TrimSpace(b.String())
}

// heldSyllable walks back from a hold over further holds and hyphen markers to
// the syllable being held. It returns -1 if there is none.
func heldSyllable(syllables []string, i int) int {
	for j := i - 1; j >= 0; j-- {
		tok := syllables[j]
		if isHold(tok) || tok == "" {
			continue
		}
		if isSyllable(tok) {
			return j
		}
		return -1
	}
	return -1
}
