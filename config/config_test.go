package config

import (
	"testing"
	"time"

	"github.com/QEStudios/karaoke/score"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"KARAOKE_TICKS_PER_BEAT",
		"KARAOKE_INSTRUMENT",
		"KARAOKE_FALLBACK_ENCODING",
		"KARAOKE_WATCH_DEBOUNCE",
		"KARAOKE_TEMPO_SCALE",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Config{
		TicksPerBeat:     64,
		Instrument:       score.Piano,
		FallbackEncoding: Latin1,
		WatchDebounce:    500 * time.Millisecond,
		TempoScale:       1,
	}
	if *cfg != want {
		t.Errorf("got %+v, want %+v", *cfg, want)
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("KARAOKE_TICKS_PER_BEAT", "96")
	t.Setenv("KARAOKE_INSTRUMENT", "Violin")
	t.Setenv("KARAOKE_FALLBACK_ENCODING", "GBK")
	t.Setenv("KARAOKE_WATCH_DEBOUNCE", "2s")
	t.Setenv("KARAOKE_TEMPO_SCALE", "1.5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Config{
		TicksPerBeat:     96,
		Instrument:       score.Violin,
		FallbackEncoding: GBK,
		WatchDebounce:    2 * time.Second,
		TempoScale:       1.5,
	}
	if *cfg != want {
		t.Errorf("got %+v, want %+v", *cfg, want)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"KARAOKE_TICKS_PER_BEAT", "zero"},
		{"KARAOKE_TICKS_PER_BEAT", "-4"},
		{"KARAOKE_INSTRUMENT", "theremin"},
		{"KARAOKE_FALLBACK_ENCODING", "ebcdic"},
		{"KARAOKE_TEMPO_SCALE", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("Load succeeded with %s=%q", tt.key, tt.value)
			}
		})
	}
}

func TestBadDebounceFallsBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("KARAOKE_WATCH_DEBOUNCE", "soon")
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.WatchDebounce != watchDebounce {
		t.Errorf("WatchDebounce = %v, want %v", cfg.WatchDebounce, watchDebounce)
	}
}

func TestParseEncoding(t *testing.T) {
	tests := []struct {
		in   string
		want Encoding
	}{
		{"latin1", Latin1},
		{"ISO-8859-1", Latin1},
		{"Windows-1252", Windows1252},
		{"cp1252", Windows1252},
		{"gbk", GBK},
	}
	for _, tt := range tests {
		got, err := ParseEncoding(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseEncoding(%q) = %q, %v, want %q", tt.in, got, err, tt.want)
		}
	}
}
