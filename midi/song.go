// Package midi writes compositions as Standard MIDI Files, with the
// karaoke line of each voice stored as lyric events.
package midi

import (
	"fmt"
	"strings"
)

const (
	maxChannel  = 15
	maxDataByte = (1 << 7) - 1
	maxDivision = (1 << 15) - 1

	// Channel 10 is reserved for percussion by General MIDI.
	percussionChannel = 9
)

type CommandType int

const (
	NoteOffCommand CommandType = iota // Stop a note.
	ProgramCommand                    // Change the instrument of a channel.
	LyricCommand                      // Display a lyric line.
	NoteOnCommand                     // Start a note.
)

// A whole song, written as one conductor track followed by one track per voice.
type Song struct {
	Name   string // Name of the song.
	Author string // Author of the song.

	TicksPerBeat   uint16  // Time resolution. A MIDI quarter note is one beat of the composition.
	BeatsPerMinute float64 // Tempo of the song.

	Tracks []*Track
}

// A single track, holding the events of one voice.
type Track struct {
	Name    string
	Channel uint8
	Frames  []Frame
}

// All the events that happen at one tick of a track.
type Frame struct {
	Delay    uint32 // Ticks since the previous frame.
	commands []command
}

// A single track event.
type command struct {
	commandType CommandType

	channel  uint8  // For every type but LyricCommand: the channel the command applies to (4-bit).
	key      uint8  // For NoteOn and NoteOff: the MIDI note number (7-bit).
	velocity uint8  // For NoteOn: how hard the note is struck (7-bit).
	program  uint8  // For ProgramCommand: the General MIDI program (7-bit).
	text     string // For LyricCommand: the line to display.
}

func (c *command) String() string {
	switch c.commandType {
	case NoteOffCommand:
		return fmt.Sprintf("Off %d", c.key)
	case NoteOnCommand:
		return fmt.Sprintf("On %d vel %d", c.key, c.velocity)
	case ProgramCommand:
		return fmt.Sprintf("Program %d", c.program)
	case LyricCommand:
		return fmt.Sprintf("%q", c.text)
	default:
		return ""
	}
}

// Commands returns how many commands the frame holds.
func (f *Frame) Commands() int {
	return len(f.commands)
}

// commandAlreadyExists returns whether a command of the given type already exists for a channel.
func (f *Frame) commandAlreadyExists(commandType CommandType, channel uint8) bool {
	for _, cmd := range f.commands {
		if cmd.commandType == commandType && (cmd.commandType == LyricCommand || cmd.channel == channel) {
			return true
		}
	}
	return false
}

func checkChannel(channel uint8) error {
	if channel > maxChannel {
		return fmt.Errorf("channel must be 0-%d, got %d", maxChannel, channel)
	}
	return nil
}

func checkKey(key int) error {
	if key < 0 || key > maxDataByte {
		return fmt.Errorf("key must be 0-%d, got %d", maxDataByte, key)
	}
	return nil
}

// NoteOn adds a command to the frame starting a note.
func (f *Frame) NoteOn(channel uint8, key int, velocity uint8) error {
	if err := checkChannel(channel); err != nil {
		return err
	}
	if err := checkKey(key); err != nil {
		return err
	}
	if velocity == 0 || velocity > maxDataByte {
		return fmt.Errorf("velocity must be 1-%d, got %d", maxDataByte, velocity)
	}

	f.commands = append(f.commands, command{
		commandType: NoteOnCommand,
		channel:     channel,
		key:         uint8(key),
		velocity:    velocity,
	})
	return nil
}

// NoteOff adds a command to the frame stopping a note.
func (f *Frame) NoteOff(channel uint8, key int) error {
	if err := checkChannel(channel); err != nil {
		return err
	}
	if err := checkKey(key); err != nil {
		return err
	}

	f.commands = append(f.commands, command{
		commandType: NoteOffCommand,
		channel:     channel,
		key:         uint8(key),
	})
	return nil
}

// SetProgram adds a command to the frame changing the instrument of a channel.
// Setting the program of the same channel twice in one frame returns an error.
func (f *Frame) SetProgram(channel uint8, program int) error {
	if err := checkChannel(channel); err != nil {
		return err
	}
	if program < 0 || program > maxDataByte {
		return fmt.Errorf("program must be 0-%d, got %d", maxDataByte, program)
	}
	if f.commandAlreadyExists(ProgramCommand, channel) {
		return fmt.Errorf("program already set for channel %d in this frame", channel)
	}

	f.commands = append(f.commands, command{
		commandType: ProgramCommand,
		channel:     channel,
		program:     uint8(program),
	})
	return nil
}

// Lyric adds a lyric line to the frame. Only one line can be shown per frame.
func (f *Frame) Lyric(text string) error {
	if f.commandAlreadyExists(LyricCommand, 0) {
		return fmt.Errorf("lyric already set in this frame")
	}

	f.commands = append(f.commands, command{
		commandType: LyricCommand,
		text:        text,
	})
	return nil
}

// formatCommands formats a frame's commands into a table with one column per command type.
func formatCommands(commands []command, indent int) string {
	headers := []string{"Note off", "Program", "Lyric", "Note on"}

	cols := make([][]command, len(headers))
	for _, c := range commands {
		cols[c.commandType] = append(cols[c.commandType], c)
	}

	maxRows := 0
	widths := make([]int, len(headers))
	for i, col := range cols {
		maxRows = max(maxRows, len(col))
		widths[i] = max(len(headers[i]), 12)
		for _, cmd := range col {
			widths[i] = max(widths[i], len(cmd.String()))
		}
	}

	padRight := func(s string, w int) string {
		if len(s) >= w {
			return s
		}
		return s + strings.Repeat(" ", w-len(s))
	}
	separator := func(b *strings.Builder) {
		b.WriteString(strings.Repeat(" ", indent))
		for _, w := range widths {
			b.WriteString("+")
			b.WriteString(strings.Repeat("-", w+2)) // +2 for the space padding either side
		}
		b.WriteString("+\n")
	}
	row := func(b *strings.Builder, cell func(i int) string) {
		b.WriteString(strings.Repeat(" ", indent))
		for i, w := range widths {
			b.WriteString("| ")
			b.WriteString(padRight(cell(i), w))
			b.WriteString(" ")
		}
		b.WriteString("|\n")
	}

	var b strings.Builder
	separator(&b)
	row(&b, func(i int) string { return headers[i] })
	separator(&b)
	for r := range maxRows {
		row(&b, func(i int) string {
			if r < len(cols[i]) {
				return cols[i][r].String()
			}
			return ""
		})
	}
	separator(&b)
	return b.String()
}

// Pretty-print
func (s *Song) String() string {
	var b strings.Builder
	b.WriteString("MIDI Song:\n")
	fmt.Fprintf(&b, "- Name: %s\n", s.Name)
	fmt.Fprintf(&b, "- Author: %s\n", s.Author)
	fmt.Fprintf(&b, "- Tempo: %g bpm, %d ticks per beat\n", s.BeatsPerMinute, s.TicksPerBeat)

	for _, track := range s.Tracks {
		fmt.Fprintf(&b, "\n- Track %q (channel %d):\n", track.Name, track.Channel+1)
		var tick uint64
		for i, frame := range track.Frames {
			tick += uint64(frame.Delay)
			fmt.Fprintf(&b, "  - Frame #%d at tick %d:\n", i, tick)
			b.WriteString(formatCommands(frame.commands, 4))
		}
		fmt.Fprintf(&b, "  [Track events: %d]\n", track.Events())
	}
	return b.String()
}
