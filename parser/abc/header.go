package abc

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/QEStudios/karaoke/score"
)

var (
	errNotFraction = errors.New("expected a fraction such as 3/4")
	errNotPositive = errors.New("must be positive")
)

func buildHeader(n *Node) (score.Header, error) {
	h := score.Header{
		Composer: score.DefaultComposer,
		Meter:    score.CommonTime,
		Key:      score.CMajor,
	}
	var lengthSet bool
	var tempo *Node
	for _, f := range n.Children {
		switch f.Symbol {
		case TrackNumber:
			x, err := strconv.Atoi(strings.TrimSpace(f.Text))
			if err != nil {
				return h, &FieldError{Line: f.Line, Field: "X", Value: f.Text, Err: err}
			}
			h.TrackNumber = x
		case Title:
			h.Title = f.Text
		case Composer:
			if f.Text != "" {
				h.Composer = f.Text
			}
		case Meter:
			m, err := parseMeter(f.Text)
			if err != nil {
				return h, &FieldError{Line: f.Line, Field: "M", Value: f.Text, Err: err}
			}
			h.Meter = m
		case Length:
			l, err := parseFraction(f.Text)
			if err != nil {
				return h, &FieldError{Line: f.Line, Field: "L", Value: f.Text, Err: err}
			}
			h.Length = l
			lengthSet = true
		case Tempo:
			tempo = f
		case VoiceName:
			h.VoiceNames = append(h.VoiceNames, f.Text)
		case Key:
			k, err := score.ParseKey(f.Text)
			if err != nil {
				return h, &FieldError{Line: f.Line, Field: "K", Value: f.Text, Err: err}
			}
			h.Key = k
		default:
			panic(unhandled(f))
		}
	}

	if !lengthSet {
		h.Length = score.DefaultLength(h.Meter)
	}
	h.Tempo = score.Tempo{Beat: h.Length, BPM: score.DefaultBPM}
	if tempo != nil {
		t, err := parseTempo(tempo.Text, h.Length)
		if err != nil {
			return h, &FieldError{Line: tempo.Line, Field: "Q", Value: tempo.Text, Err: err}
		}
		h.Tempo = t
	}
	return h, nil
}

func parseFraction(s string) (score.Fraction, error) {
	num, den, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok {
		return score.Fraction{}, errNotFraction
	}
	a, err := strconv.Atoi(strings.TrimSpace(num))
	if err != nil {
		return score.Fraction{}, fmt.Errorf("numerator: %w", err)
	}
	b, err := strconv.Atoi(strings.TrimSpace(den))
	if err != nil {
		return score.Fraction{}, fmt.Errorf("denominator: %w", err)
	}
	if a <= 0 || b <= 0 {
		return score.Fraction{}, errNotPositive
	}
	return score.Fraction{Num: a, Den: b}, nil
}

func parseMeter(s string) (score.Fraction, error) {
	switch strings.TrimSpace(s) {
	case "C":
		return score.CommonTime, nil
	case "C|":
		return score.CutTime, nil
	}
	return parseFraction(s)
}

// parseTempo reads "120" (beats of the default length) or "1/4=120".
func parseTempo(s string, length score.Fraction) (score.Tempo, error) {
	beat := length
	bpmText := s
	if lhs, rhs, ok := strings.Cut(s, "="); ok {
		f, err := parseFraction(lhs)
		if err != nil {
			return score.Tempo{}, err
		}
		beat, bpmText = f, rhs
	}
	bpm, err := strconv.Atoi(strings.TrimSpace(bpmText))
	if err != nil {
		return score.Tempo{}, err
	}
	if bpm <= 0 {
		return score.Tempo{}, errNotPositive
	}
	return score.Tempo{Beat: beat, BPM: bpm}, nil
}
