package midi

import (
	"fmt"
	"math"
	"sort"

	"github.com/QEStudios/karaoke/score"
)

const velocity = 80

// A note or callback captured from score.Play.
type recorded struct {
	tick  int64
	seq   int
	on    bool // note on; otherwise note off, or a callback when cb is set
	instr score.Instrument
	pitch score.Pitch
	cb    func(beat float64)
}

// recorder is a score.Scheduler that keeps everything it is given, so a voice
// can be rendered without playing it in real time.
type recorder struct {
	ticksPerBeat int
	events       []recorded
	seq          int

	now    int64
	lyrics []lyric
}

type lyric struct {
	tick int64
	line string
}

func (r *recorder) tick(beat float64) int64 {
	return int64(math.Round(beat * float64(r.ticksPerBeat)))
}

func (r *recorder) add(e recorded) {
	e.seq = r.seq
	r.seq++
	r.events = append(r.events, e)
}

// AddNote drops notes too short to last a tick.
func (r *recorder) AddNote(instr score.Instrument, p score.Pitch, startBeat, numBeats float64) {
	start, end := r.tick(startBeat), r.tick(startBeat+numBeats)
	if end <= start {
		return
	}
	r.add(recorded{tick: start, on: true, instr: instr, pitch: p})
	r.add(recorded{tick: end, instr: instr, pitch: p})
}

func (r *recorder) AddEvent(atBeat float64, cb func(beat float64)) {
	r.add(recorded{tick: r.tick(atBeat), cb: cb})
}

// run fires the recorded callbacks in time order.
func (r *recorder) run() {
	sort.SliceStable(r.events, func(i, j int) bool {
		return r.events[i].tick < r.events[j].tick
	})
	for _, e := range r.events {
		if e.cb == nil {
			continue
		}
		r.now = e.tick
		e.cb(float64(e.tick) / float64(r.ticksPerBeat))
	}
}

// listen keeps the lines that change what is shown. When several arrive on
// one tick only the last is kept.
func (r *recorder) listen(line string) {
	if n := len(r.lyrics); n > 0 && r.lyrics[n-1].tick == r.now {
		r.lyrics = r.lyrics[:n-1]
	}
	if n := len(r.lyrics); n > 0 && r.lyrics[n-1].line == line {
		return
	}
	r.lyrics = append(r.lyrics, lyric{r.now, line})
}

// channelFor spreads voices over the MIDI channels, skipping percussion.
func channelFor(voice int) (uint8, error) {
	ch := voice
	if ch >= percussionChannel {
		ch++
	}
	if ch > maxChannel {
		return 0, fmt.Errorf("too many voices: MIDI has room for %d", maxChannel)
	}
	return uint8(ch), nil
}

// Export renders every voice of c into its own track. Each note start that
// changes the lyric line stores the rendered line as a lyric event, and the
// final End line marks where the voice finishes.
func Export(c *score.Composition, ticksPerBeat int) (*Song, error) {
	if ticksPerBeat <= 0 || ticksPerBeat > maxDivision {
		return nil, fmt.Errorf("ticks per beat must be 1-%d, got %d", maxDivision, ticksPerBeat)
	}
	h := c.Header()
	song := &Song{
		Name:           h.Title,
		Author:         h.Composer,
		TicksPerBeat:   uint16(ticksPerBeat),
		BeatsPerMinute: c.BeatsPerMinute(),
	}

	for i, v := range c.Voices() {
		channel, err := channelFor(i)
		if err != nil {
			return nil, err
		}
		track, err := exportVoice(v, channel, ticksPerBeat)
		if err != nil {
			return nil, fmt.Errorf("voice %q: %w", v.Name(), err)
		}
		song.Tracks = append(song.Tracks, track)
	}
	return song, nil
}

// Commands that happen on the same tick are ordered so a note can end and
// restart on one tick, and a line is shown before the note it belongs to.
type timed struct {
	tick int64
	kind CommandType
	seq  int
	add  func(f *Frame) error
}

func exportVoice(v *score.Voice, channel uint8, ticksPerBeat int) (*Track, error) {
	// A private copy so the voice's own listeners are not called.
	private := score.NewVoice(v.Name(), v.Music(), v.Syllables(), nil)
	r := &recorder{ticksPerBeat: ticksPerBeat}
	private.AddListener(r.listen)
	private.Play(r)
	r.run()

	var cmds []timed
	program := -1
	for _, e := range r.events {
		if e.cb != nil {
			continue
		}
		key := e.pitch.Midi()
		if !e.on {
			cmds = append(cmds, timed{e.tick, NoteOffCommand, e.seq, func(f *Frame) error {
				return f.NoteOff(channel, key)
			}})
			continue
		}
		if instr := int(e.instr); instr != program {
			program = instr
			cmds = append(cmds, timed{e.tick, ProgramCommand, e.seq, func(f *Frame) error {
				return f.SetProgram(channel, instr)
			}})
		}
		cmds = append(cmds, timed{e.tick, NoteOnCommand, e.seq, func(f *Frame) error {
			return f.NoteOn(channel, key, velocity)
		}})
	}

	for i, l := range r.lyrics {
		cmds = append(cmds, timed{l.tick, LyricCommand, i, func(f *Frame) error {
			return f.Lyric(l.line)
		}})
	}

	sort.SliceStable(cmds, func(i, j int) bool {
		a, b := cmds[i], cmds[j]
		if a.tick != b.tick {
			return a.tick < b.tick
		}
		if a.kind != b.kind {
			return a.kind < b.kind
		}
		return a.seq < b.seq
	})

	track := &Track{Name: v.Name(), Channel: channel}
	var prev int64
	for _, c := range cmds {
		if len(track.Frames) == 0 || c.tick != prev {
			track.Frames = append(track.Frames, Frame{Delay: uint32(c.tick - prev)})
			prev = c.tick
		}
		f := &track.Frames[len(track.Frames)-1]
		if err := c.add(f); err != nil {
			return nil, fmt.Errorf("tick %d: %w", c.tick, err)
		}
	}
	return track, nil
}
