package sequencer

import (
	"log"

	"github.com/QEStudios/karaoke/score"
)

// DiscardSink drops every note.
type DiscardSink struct{}

func (DiscardSink) NoteOn(score.Instrument, score.Pitch, int64)  {}
func (DiscardSink) NoteOff(score.Instrument, score.Pitch, int64) {}

// LogSink prints each note on and off.
type LogSink struct {
	Logger *log.Logger
}

func (s LogSink) NoteOn(instr score.Instrument, p score.Pitch, tick int64) {
	s.Logger.Printf("tick %6d: %s on  %-4s (midi %d)", tick, instr, p, p.Midi())
}

func (s LogSink) NoteOff(instr score.Instrument, p score.Pitch, tick int64) {
	s.Logger.Printf("tick %6d: %s off %-4s (midi %d)", tick, instr, p, p.Midi())
}
