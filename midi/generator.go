package midi

import (
	"bytes"
	"fmt"
	"math"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

const maxMicrosPerBeat = (1 << 24) - 1

// message converts the command into the MIDI message it stands for.
func (c *command) message() []byte {
	switch c.commandType {
	case NoteOffCommand:
		return gomidi.NoteOff(c.channel, c.key)
	case NoteOnCommand:
		return gomidi.NoteOn(c.channel, c.key, c.velocity)
	case ProgramCommand:
		return gomidi.ProgramChange(c.channel, c.program)
	case LyricCommand:
		return smf.MetaLyric(c.text)
	default:
		panic(fmt.Sprintf("unhandled command type %d", c.commandType))
	}
}

// Events returns how many events the track holds, end of track excluded.
func (t *Track) Events() int {
	n := 1 // track name
	for _, frame := range t.Frames {
		n += len(frame.commands)
	}
	return n
}

func (t *Track) compile() smf.Track {
	var track smf.Track
	track.Add(0, smf.MetaTrackSequenceName(t.Name))

	// Frames with no commands write nothing; their delay moves on to the next event.
	var pending uint32
	for _, frame := range t.Frames {
		pending += frame.Delay
		for _, cmd := range frame.commands {
			track.Add(pending, cmd.message())
			pending = 0
		}
	}
	track.Close(pending)
	return track
}

// The conductor track carries the song's name, author and tempo.
func (s *Song) conductor() smf.Track {
	var track smf.Track
	track.Add(0, smf.MetaTrackSequenceName(s.Name))
	if s.Author != "" {
		track.Add(0, smf.MetaText(s.Author))
	}
	track.Add(0, smf.MetaTempo(s.BeatsPerMinute))
	track.Close(0)
	return track
}

func (s *Song) checkTempo() error {
	if s.BeatsPerMinute <= 0 || math.IsInf(s.BeatsPerMinute, 0) || math.IsNaN(s.BeatsPerMinute) {
		return fmt.Errorf("tempo must be positive, got %v bpm", s.BeatsPerMinute)
	}
	us := math.Round(60e6 / s.BeatsPerMinute)
	if us < 1 || us > maxMicrosPerBeat {
		return fmt.Errorf("tempo of %v bpm cannot be stored", s.BeatsPerMinute)
	}
	return nil
}

// Compile converts the song into a format 1 Standard MIDI File.
func (s *Song) Compile() ([]byte, error) {
	if s.TicksPerBeat == 0 || s.TicksPerBeat > maxDivision {
		return nil, fmt.Errorf("ticks per beat must be 1-%d, got %d", maxDivision, s.TicksPerBeat)
	}
	if len(s.Tracks) >= math.MaxUint16 {
		return nil, fmt.Errorf("too many tracks: %d", len(s.Tracks))
	}
	if err := s.checkTempo(); err != nil {
		return nil, err
	}

	file := smf.NewSMF1()
	file.TimeFormat = smf.MetricTicks(s.TicksPerBeat)
	if err := file.Add(s.conductor()); err != nil {
		return nil, fmt.Errorf("conductor track: %w", err)
	}
	for _, t := range s.Tracks {
		if err := file.Add(t.compile()); err != nil {
			return nil, fmt.Errorf("track %q: %w", t.Name, err)
		}
	}

	var buffer bytes.Buffer
	if _, err := file.WriteTo(&buffer); err != nil {
		return nil, fmt.Errorf("writing MIDI file: %w", err)
	}

	// Sanity check to make sure every track made it into the file.
	if got, want := len(file.Tracks), len(s.Tracks)+1; got != want {
		return nil, fmt.Errorf("MIDI file has %d tracks, expected %d", got, want)
	}
	return buffer.Bytes(), nil
}
