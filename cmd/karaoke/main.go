package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/pflag"
	"github.com/sqweek/dialog"

	"github.com/QEStudios/karaoke"
	"github.com/QEStudios/karaoke/config"
	"github.com/QEStudios/karaoke/midi"
	"github.com/QEStudios/karaoke/score"
	"github.com/QEStudios/karaoke/sequencer"
)

var logger *log.Logger

func main() {
	logger = log.New(os.Stdout, "", log.Ldate|log.Ltime)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("invalid configuration: %v", err)
	}

	cwd, err := os.Getwd()
	if err != nil {
		logger.Fatalf("failed to get current working directory: %v", err)
	}

	var (
		voices     []string
		dump       bool
		watch      bool
		dryRun     bool
		printScore bool
		writeMidi  bool
		showNotes  bool
		ticks      int
		instrument string
		tempoScale float64
	)
	pflag.StringSliceVarP(&voices, "voice", "v", nil, "voices to show lyrics for (default all)")
	pflag.BoolVarP(&dump, "dump", "d", false, "dump the built composition and exit")
	pflag.BoolVarP(&printScore, "print", "p", false, "print the score as it was understood and exit")
	pflag.BoolVarP(&writeMidi, "midi", "m", false, "write the score as a .mid file next to it and exit")
	pflag.BoolVarP(&watch, "watch", "w", false, "restart playback whenever the score file changes")
	pflag.BoolVarP(&dryRun, "dry-run", "n", false, "play without waiting between events")
	pflag.BoolVar(&showNotes, "notes", false, "log every note as it starts and stops")
	pflag.IntVarP(&ticks, "ticks", "t", cfg.TicksPerBeat, "scheduler ticks per beat")
	pflag.StringVarP(&instrument, "instrument", "i", cfg.Instrument.String(), "instrument to play every note on")
	pflag.Float64Var(&tempoScale, "tempo-scale", cfg.TempoScale, "multiplier applied to the score's tempo")
	pflag.Parse()

	instr, err := score.ParseInstrument(instrument)
	if err != nil {
		logger.Fatalf("invalid --instrument: %v", err)
	}
	if ticks <= 0 || tempoScale <= 0 {
		logger.Fatalf("--ticks and --tempo-scale must be positive")
	}

	path, err := choosePath(cwd, pflag.Args())
	if err != nil {
		if errors.Is(err, dialog.ErrCancelled) {
			logger.Printf("User cancelled the file dialog")
			os.Exit(1)
		}
		logger.Fatalf("failed to determine file path: %v", err)
	}

	opts := karaoke.OptionsFromConfig(cfg, logger)
	opts.Instrument = instr
	s := &session{
		opts:       opts,
		voices:     voices,
		ticks:      ticks,
		tempoScale: tempoScale,
		dryRun:     dryRun,
		showNotes:  showNotes,
		out:        os.Stdout,
	}

	if dump || printScore || writeMidi {
		c, err := karaoke.Load(path, s.opts)
		if err != nil {
			logger.Fatalf("%v", err)
		}
		if printScore {
			fmt.Fprintln(s.out, c)
		}
		if dump {
			s.dump(c)
		}
		if writeMidi {
			midiPath, err := s.writeMidi(path, c)
			if err != nil {
				logger.Fatalf("%v", err)
			}
			logger.Printf("Wrote %s", midiPath)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if watch {
		r, err := watchFile(path, cfg.WatchDebounce, logger)
		if err != nil {
			logger.Fatalf("%v", err)
		}
		defer r.Close()
		logger.Printf("Watching %s for changes, press Ctrl+C to exit", path)
		s.watch(ctx, path, r.C)
		return
	}

	c, err := karaoke.Load(path, s.opts)
	if err != nil {
		logger.Fatalf("%v", err)
	}
	if err := s.play(ctx, c); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatalf("playback error: %v", err)
	}
}

// session holds the settings for playing scores from the command line.
type session struct {
	opts       karaoke.Options
	voices     []string // empty means every voice
	ticks      int
	tempoScale float64
	dryRun     bool
	showNotes  bool
	out        io.Writer
}

func (s *session) dump(c *score.Composition) {
	spew.Fdump(s.out, c.Header())
	for _, v := range c.Voices() {
		spew.Fdump(s.out, v.Name(), v.Music(), v.Syllables())
	}
}

// writeMidi writes c to a .mid file in the same directory as the score.
func (s *session) writeMidi(path string, c *score.Composition) (string, error) {
	song, err := midi.Export(c, s.ticks)
	if err != nil {
		return "", fmt.Errorf("export error: %w", err)
	}
	song.BeatsPerMinute *= s.tempoScale
	data, err := song.Compile()
	if err != nil {
		return "", fmt.Errorf("compile error: %w", err)
	}

	midiPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".mid"
	if err := os.WriteFile(midiPath, data, 0o644); err != nil {
		return "", fmt.Errorf("error writing output file: %w", err)
	}
	return midiPath, nil
}

// play prints the lyric lines of the selected voices as c plays, and returns
// once every voice has finished or ctx is cancelled.
func (s *session) play(ctx context.Context, c *score.Composition) error {
	names := s.voices
	if len(names) == 0 {
		names = c.VoiceNames()
	}
	for _, name := range names {
		prefix := ""
		if len(names) > 1 && name != "" {
			prefix = "[" + name + "] "
		}
		if _, err := c.AddVoiceListener(name, func(line string) {
			fmt.Fprintln(s.out, prefix+line)
		}); err != nil {
			return fmt.Errorf("voice %q: %w (have %s)", name, err, strings.Join(c.VoiceNames(), ", "))
		}
	}

	seq := sequencer.New(s.ticks, c.BeatsPerMinute()*s.tempoScale, s.opts.Logger)
	if s.dryRun {
		seq.SetClock(sequencer.ImmediateClock{})
	}
	if s.showNotes {
		seq.SetSink(sequencer.LogSink{Logger: s.opts.Logger})
	}

	h := c.Header()
	s.opts.Logger.Printf("Playing %q by %s (%s, %.0f bpm)", h.Title, h.Composer, h.Key, c.BeatsPerMinute()*s.tempoScale)
	c.Play(seq)
	return seq.Play(ctx)
}

// watch plays the score at path, restarting from the beginning every time
// reload fires, until ctx is cancelled. A score that fails to load is
// reported and retried on the next change.
func (s *session) watch(ctx context.Context, path string, reload <-chan struct{}) {
	for {
		playCtx, cancel := context.WithCancel(ctx)
		done := make(chan error, 1)
		started := false
		if c, err := karaoke.Load(path, s.opts); err != nil {
			s.opts.Logger.Printf("%v", err)
		} else {
			started = true
			go func() { done <- s.play(playCtx, c) }()
		}

		stop := func() {
			cancel()
			if started {
				<-done
				started = false
			}
		}

	wait:
		for {
			select {
			case <-ctx.Done():
				stop()
				return
			case <-reload:
				s.opts.Logger.Printf("%s changed, reloading", path)
				stop()
				break wait
			case err := <-done:
				started = false
				if err != nil && !errors.Is(err, context.Canceled) {
					s.opts.Logger.Printf("playback error: %v", err)
				}
				s.opts.Logger.Printf("Finished, waiting for %s to change", path)
			}
		}
	}
}

// choosePath returns the score named on the command line, or asks for one
// with a file dialog when there is none. Closing the dialog without picking a
// file returns dialog.ErrCancelled.
func choosePath(cwd string, args []string) (string, error) {
	if len(args) > 0 {
		return scorePath(args[0], "score argument")
	}

	picked, err := dialog.
		File().
		Title("Open ABC score").
		Filter("ABC notation (*.abc)", "abc").
		SetStartDir(cwd).
		Load()
	if err != nil {
		return "", err
	}
	// Some platforms report a dismissed dialog as an empty selection.
	if picked == "" {
		return "", dialog.ErrCancelled
	}
	return scorePath(picked, "selected file")
}

// scorePath makes p absolute and checks it names a readable score.
func scorePath(p, source string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("%s %q: %w", source, p, err)
	}
	if err := validatePath(abs); err != nil {
		return "", fmt.Errorf("%s: %w", source, err)
	}
	return abs, nil
}

// validatePath rejects anything but an existing .abc file.
func validatePath(p string) error {
	if !strings.EqualFold(filepath.Ext(p), ".abc") {
		return fmt.Errorf("%s is not an .abc file", filepath.Base(p))
	}
	if _, err := os.Stat(p); err != nil {
		return fmt.Errorf("score not found: %w", err)
	}
	return nil
}
