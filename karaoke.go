// Package karaoke loads ABC scores into playable compositions.
//
// A typical caller loads a score, attaches a listener to each voice it wants
// to display, and plays the composition on a sequencer:
//
//	c, err := karaoke.Load("song.abc", karaoke.Options{})
//	...
//	c.AddVoiceListener("", func(line string) { fmt.Println(line) })
//	seq := sequencer.New(64, c.BeatsPerMinute(), nil)
//	c.Play(seq)
//	err = seq.Play(ctx)
package karaoke

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/QEStudios/karaoke/config"
	"github.com/QEStudios/karaoke/parser/abc"
	"github.com/QEStudios/karaoke/score"
)

// Options control loading a score.
type Options struct {
	Instrument score.Instrument // instrument every note is played on
	Fallback   config.Encoding  // encoding of scores that are not UTF-8; empty means Latin-1
	Logger     *log.Logger      // nil means log.Default()
}

// OptionsFromConfig returns the loading options implied by cfg.
func OptionsFromConfig(cfg *config.Config, logger *log.Logger) Options {
	return Options{
		Instrument: cfg.Instrument,
		Fallback:   cfg.FallbackEncoding,
		Logger:     logger,
	}
}

// Parse reads an ABC score from r and builds its composition.
func Parse(r io.Reader, opts Options) (*score.Composition, error) {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	text, err := ReadScore(r, opts.Fallback)
	if err != nil {
		return nil, err
	}

	p := abc.NewParser(strings.NewReader(text), opts.Logger)
	tree, err := p.Parse()
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	c, err := abc.Build(tree, abc.Options{Instrument: opts.Instrument, Logger: opts.Logger})
	if err != nil {
		return nil, fmt.Errorf("build error: %w", err)
	}
	return c, nil
}

// Load parses the score in the named file.
func Load(path string, opts Options) (*score.Composition, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening score: %w", err)
	}
	defer file.Close()

	c, err := Parse(file, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}
