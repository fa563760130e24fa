package score

import (
	"sort"
	"testing"
)

type scheduledNote struct {
	instr Instrument
	pitch Pitch
	start float64
	beats float64
}

type scheduledEvent struct {
	beat float64
	cb   func(float64)
}

// fakeScheduler records registrations and fires events in beat order on run.
type fakeScheduler struct {
	notes  []scheduledNote
	events []scheduledEvent
}

func (s *fakeScheduler) AddNote(instr Instrument, p Pitch, start, beats float64) {
	s.notes = append(s.notes, scheduledNote{instr, p, start, beats})
}

func (s *fakeScheduler) AddEvent(beat float64, cb func(float64)) {
	s.events = append(s.events, scheduledEvent{beat, cb})
}

func (s *fakeScheduler) run() {
	events := append([]scheduledEvent(nil), s.events...)
	sort.SliceStable(events, func(i, j int) bool { return events[i].beat < events[j].beat })
	for _, e := range events {
		e.cb(e.beat)
	}
}

type recordingNotifier struct {
	indices []int
}

func (r *recordingNotifier) Notify(i int) { r.indices = append(r.indices, i) }

func mustNote(t *testing.T, d Beats, letter Letter, idx int) *Note {
	t.Helper()
	n, err := NewNote(d, NewPitch(letter), Piano, idx)
	if err != nil {
		t.Fatalf("NewNote: %v", err)
	}
	return n
}

func mustRest(t *testing.T, d Beats) *Rest {
	t.Helper()
	r, err := NewRest(d)
	if err != nil {
		t.Fatalf("NewRest: %v", err)
	}
	return r
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
