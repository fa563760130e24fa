// Package sequencer runs the notes and callbacks registered by a composition
// in beat order, in real time or as fast as possible.
package sequencer

import (
	"context"
	"errors"
	"log"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/QEStudios/karaoke/score"
)

var ErrAlreadyPlayed = errors.New("sequencer already played")

// NoteSink receives note on and off messages as playback reaches them.
type NoteSink interface {
	NoteOn(instr score.Instrument, p score.Pitch, tick int64)
	NoteOff(instr score.Instrument, p score.Pitch, tick int64)
}

type event struct {
	tick int64
	seq  int // registration order, breaks ties between events on one tick
	fire func(tick int64)
}

// Sequencer is a score.Scheduler. Beats are rounded to the nearest tick, and
// events on the same tick fire in the order they were added.
type Sequencer struct {
	ticksPerBeat   int
	beatsPerMinute float64
	clock          Clock
	sink           NoteSink
	logger         *log.Logger

	mu      sync.Mutex
	events  []event // sorted by (tick, seq)
	seq     int
	current int64 // tick being played; later events never fire before it
	used    bool
}

// New returns a sequencer playing at beatsPerMinute on a real-time clock with
// notes discarded. If logger is nil, log.Default() is used.
func New(ticksPerBeat int, beatsPerMinute float64, logger *log.Logger) *Sequencer {
	if logger == nil {
		logger = log.Default()
	}
	if ticksPerBeat <= 0 {
		ticksPerBeat = 1
	}
	return &Sequencer{
		ticksPerBeat:   ticksPerBeat,
		beatsPerMinute: beatsPerMinute,
		clock:          NewRealClock(),
		sink:           DiscardSink{},
		logger:         logger,
	}
}

func (s *Sequencer) SetClock(c Clock)   { s.clock = c }
func (s *Sequencer) SetSink(n NoteSink) { s.sink = n }

func (s *Sequencer) TicksPerBeat() int { return s.ticksPerBeat }

// tick converts a beat to the nearest tick.
func (s *Sequencer) tick(beat float64) int64 {
	return int64(math.Round(beat * float64(s.ticksPerBeat)))
}

func (s *Sequencer) beat(tick int64) float64 {
	return float64(tick) / float64(s.ticksPerBeat)
}

func (s *Sequencer) add(tick int64, fire func(int64)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if tick < s.current {
		tick = s.current
	}
	e := event{tick: tick, seq: s.seq, fire: fire}
	s.seq++
	i := sort.Search(len(s.events), func(i int) bool {
		return s.events[i].tick > tick
	})
	s.events = append(s.events, event{})
	copy(s.events[i+1:], s.events[i:])
	s.events[i] = e
}

// AddNote schedules a note on at startBeat and a note off numBeats later.
func (s *Sequencer) AddNote(instr score.Instrument, p score.Pitch, startBeat, numBeats float64) {
	on := s.tick(startBeat)
	off := s.tick(startBeat + numBeats)
	s.add(on, func(t int64) { s.sink.NoteOn(instr, p, t) })
	s.add(off, func(t int64) { s.sink.NoteOff(instr, p, t) })
}

// AddEvent schedules cb at atBeat. cb receives the beat after tick rounding.
func (s *Sequencer) AddEvent(atBeat float64, cb func(beat float64)) {
	s.add(s.tick(atBeat), func(t int64) { cb(s.beat(t)) })
}

// Pending returns the number of events not yet played.
func (s *Sequencer) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

// TickDuration returns the real time between two ticks.
func (s *Sequencer) TickDuration() time.Duration {
	if s.beatsPerMinute <= 0 {
		return 0
	}
	return time.Duration(float64(time.Minute) / (s.beatsPerMinute * float64(s.ticksPerBeat)))
}

// Play fires every registered event in order, waiting on the clock between
// them, and returns when none are left. Events added by callbacks during
// playback are played too. Play returns ctx.Err() if ctx is cancelled first.
func (s *Sequencer) Play(ctx context.Context) error {
	s.mu.Lock()
	if s.used {
		s.mu.Unlock()
		return ErrAlreadyPlayed
	}
	s.used = true
	s.mu.Unlock()

	tickDur := s.TickDuration()
	s.clock.Start()
	for {
		s.mu.Lock()
		if len(s.events) == 0 {
			s.mu.Unlock()
			return nil
		}
		e := s.events[0]
		s.events = s.events[1:]
		s.current = e.tick
		s.mu.Unlock()

		if err := s.clock.WaitUntil(ctx, time.Duration(e.tick)*tickDur); err != nil {
			s.logger.Printf("playback stopped at beat %.3f: %v", s.beat(e.tick), err)
			return err
		}
		e.fire(e.tick)
	}
}
