// Package config loads runtime settings from the environment, optionally
// seeded from a .env file in the working directory.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/QEStudios/karaoke/score"
)

// Encoding names a fallback character set for scores that are not UTF-8.
type Encoding string

const (
	Latin1      Encoding = "latin1"
	Windows1252 Encoding = "windows1252"
	GBK         Encoding = "gbk"
)

type Config struct {
	TicksPerBeat     int              // scheduler resolution
	Instrument       score.Instrument // instrument every note is played on
	FallbackEncoding Encoding         // used when a score is not valid UTF-8
	WatchDebounce    time.Duration    // quiet time before a changed score is reloaded
	TempoScale       float64          // multiplies the tempo from the score header
}

const (
	ticksPerBeat     = 64
	instrument       = score.Piano
	fallbackEncoding = Latin1
	watchDebounce    = 500 * time.Millisecond
	tempoScale       = 1.0
)

// Load reads the configuration from environment variables, falling back to
// defaults for anything unset. A .env file is loaded first if present; it
// never overrides variables that are already set.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		TicksPerBeat:     ticksPerBeat,
		Instrument:       instrument,
		FallbackEncoding: fallbackEncoding,
		WatchDebounce:    parseDurationOrDefault(os.Getenv("KARAOKE_WATCH_DEBOUNCE"), watchDebounce),
		TempoScale:       tempoScale,
	}

	if s := os.Getenv("KARAOKE_TICKS_PER_BEAT"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("KARAOKE_TICKS_PER_BEAT must be a positive integer, got %q", s)
		}
		cfg.TicksPerBeat = n
	}
	if s := os.Getenv("KARAOKE_INSTRUMENT"); s != "" {
		instr, err := score.ParseInstrument(s)
		if err != nil {
			return nil, fmt.Errorf("KARAOKE_INSTRUMENT: %w", err)
		}
		cfg.Instrument = instr
	}
	if s := os.Getenv("KARAOKE_FALLBACK_ENCODING"); s != "" {
		enc, err := ParseEncoding(s)
		if err != nil {
			return nil, fmt.Errorf("KARAOKE_FALLBACK_ENCODING: %w", err)
		}
		cfg.FallbackEncoding = enc
	}
	if s := os.Getenv("KARAOKE_TEMPO_SCALE"); s != "" {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || f <= 0 {
			return nil, fmt.Errorf("KARAOKE_TEMPO_SCALE must be a positive number, got %q", s)
		}
		cfg.TempoScale = f
	}
	return cfg, nil
}

// ParseEncoding accepts the encoding names understood by Load, ignoring case
// and dashes ("ISO-8859-1" is Latin-1, "cp1252" is Windows-1252).
func ParseEncoding(s string) (Encoding, error) {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "") {
	case "latin1", "iso88591":
		return Latin1, nil
	case "windows1252", "cp1252":
		return Windows1252, nil
	case "gbk", "cp936":
		return GBK, nil
	}
	return "", fmt.Errorf("unknown encoding %q", s)
}

func parseDurationOrDefault(s string, defaultValue time.Duration) time.Duration {
	if s == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return defaultValue
	}
	return d
}
