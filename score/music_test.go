package score

import (
	"errors"
	"testing"

	"github.com/davecgh/go-spew/spew"
)

func TestConcatDurationIsSum(t *testing.T) {
	a := mustNote(t, NewBeats(3, 2), 'C', 0)
	b := mustRest(t, NewBeats(1, 4))
	c := NewConcat(a, b)
	if got, want := Duration(c), NewBeats(7, 4); !got.Equal(want) {
		t.Errorf("Duration(Concat) = %s, want %s", got, want)
	}
	if got := Duration(NewConcat(Silence(), a)); !got.Equal(Duration(a)) {
		t.Errorf("Silence is not the identity: %s", got)
	}
}

func TestConcatParts(t *testing.T) {
	a := mustNote(t, NewBeats(1, 1), 'C', 0)
	b := mustNote(t, NewBeats(1, 1), 'D', 1)
	c := NewConcat(a, b)
	if c.Left() != a || c.Right() != b {
		t.Errorf("parts = %v, %v, want %v, %v", c.Left(), c.Right(), a, b)
	}
	for _, tt := range []struct {
		name        string
		left, right Music
	}{
		{"nil left", nil, b},
		{"nil right", a, nil},
	} {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("NewConcat did not panic")
				}
			}()
			NewConcat(tt.left, tt.right)
		})
	}
}

func TestRepeatDuration(t *testing.T) {
	body := NewConcat(mustNote(t, WholeBeats(1), 'C', 0), mustNote(t, WholeBeats(1), 'D', 1))
	if got := Duration(NewRepeat(body, nil)); !got.Equal(WholeBeats(4)) {
		t.Errorf("Duration(Repeat without endings) = %s, want 4", got)
	}

	e1 := mustNote(t, WholeBeats(1), 'E', 2)
	e2 := mustNote(t, WholeBeats(3), 'F', 3)
	if got := Duration(NewRepeat(body, []Music{e1, e2})); !got.Equal(WholeBeats(8)) {
		t.Errorf("Duration(Repeat with endings) = %s, want 8", got)
	}
}

func TestTupletTiming(t *testing.T) {
	tests := []struct {
		n    int
		want Beats
	}{
		{2, WholeBeats(3)},
		{3, WholeBeats(2)},
		{4, WholeBeats(3)},
	}
	for _, tt := range tests {
		scale := TupletScale(tt.n)
		members := make([]Music, tt.n)
		for i := range members {
			members[i] = mustNote(t, WholeBeats(1).Mul(scale), 'C', i)
		}
		tup, err := NewTuplet(tt.n, members)
		if err != nil {
			t.Fatalf("NewTuplet(%d): %v", tt.n, err)
		}
		if got := Duration(tup); !got.Equal(tt.want) {
			t.Errorf("Duration(tuplet of %d) = %s, want %s", tt.n, got, tt.want)
		}
	}
}

func TestChordDurationIsFirstMember(t *testing.T) {
	ch, err := NewChord([]Music{
		mustNote(t, WholeBeats(1), 'C', 0),
		mustNote(t, WholeBeats(4), 'E', 0),
		mustNote(t, NewBeats(1, 2), 'G', 0),
	}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if got := Duration(ch); !got.Equal(WholeBeats(1)) {
		t.Errorf("Duration(chord) = %s, want 1", got)
	}
}

func TestConstructorErrors(t *testing.T) {
	note := mustNote(t, WholeBeats(1), 'C', 0)
	rest := mustRest(t, WholeBeats(1))

	_, err := NewNote(NewBeats(-1, 2), NewPitch('C'), Piano, 0)
	if !errors.Is(err, ErrNegativeDuration) {
		t.Errorf("negative note: err = %v", err)
	}
	_, err = NewNote(WholeBeats(1), NewPitch('C'), Piano, -1)
	if !errors.Is(err, ErrNegativeIndex) {
		t.Errorf("negative index: err = %v", err)
	}
	_, err = NewRest(WholeBeats(-1))
	if !errors.Is(err, ErrNegativeDuration) {
		t.Errorf("negative rest: err = %v", err)
	}
	_, err = NewChord(nil, 0)
	if !errors.Is(err, ErrEmptyChord) {
		t.Errorf("empty chord: err = %v", err)
	}
	_, err = NewTuplet(5, []Music{note, note, note, note, note})
	if !errors.Is(err, ErrTupletSize) {
		t.Errorf("tuplet of 5: err = %v", err)
	}
	_, err = NewTuplet(1, []Music{note})
	if !errors.Is(err, ErrTupletSize) {
		t.Errorf("tuplet of 1: err = %v", err)
	}
	_, err = NewTuplet(3, []Music{note, note})
	if !errors.Is(err, ErrTupletMembers) {
		t.Errorf("short tuplet: err = %v", err)
	}
	_, err = NewTuplet(2, []Music{note, rest})
	if !errors.Is(err, ErrRestInTuplet) {
		t.Errorf("rest in tuplet: err = %v", err)
	}
}

func TestPlayNotesAndEvents(t *testing.T) {
	m := ConcatAll(
		mustNote(t, WholeBeats(1), 'C', 0),
		mustRest(t, WholeBeats(2)),
		mustNote(t, NewBeats(1, 2), 'D', 1),
	)
	s := &fakeScheduler{}
	n := &recordingNotifier{}
	end := Play(m, s, WholeBeats(1), n)

	if !end.Equal(NewBeats(9, 2)) {
		t.Errorf("Play end = %s, want 9/2", end)
	}
	want := []scheduledNote{
		{Piano, NewPitch('C'), 1, 1},
		{Piano, NewPitch('D'), 4, 0.5},
	}
	if len(s.notes) != len(want) {
		t.Fatalf("notes = %s", spew.Sdump(s.notes))
	}
	for i := range want {
		if s.notes[i] != want[i] {
			t.Errorf("note %d = %+v, want %+v", i, s.notes[i], want[i])
		}
	}
	s.run()
	if len(n.indices) != 2 || n.indices[0] != 0 || n.indices[1] != 1 {
		t.Errorf("notified %v, want [0 1]", n.indices)
	}
}

func TestPlayChordNotifiesOnce(t *testing.T) {
	ch, err := NewChord([]Music{
		mustNote(t, WholeBeats(1), 'C', 7),
		mustNote(t, WholeBeats(1), 'E', 7),
		mustNote(t, WholeBeats(1), 'G', 7),
	}, 3)
	if err != nil {
		t.Fatal(err)
	}
	s := &fakeScheduler{}
	n := &recordingNotifier{}
	Play(ch, s, Beats{}, n)
	s.run()

	if len(s.notes) != 3 {
		t.Errorf("scheduled %d notes, want 3", len(s.notes))
	}
	for _, note := range s.notes {
		if note.start != 0 {
			t.Errorf("chord member starts at %v, want 0", note.start)
		}
	}
	if len(n.indices) != 1 || n.indices[0] != 3 {
		t.Errorf("notified %v, want [3]", n.indices)
	}
}

func TestPlayRepeatWithEndings(t *testing.T) {
	body := mustNote(t, WholeBeats(1), 'C', 0)
	e1 := mustNote(t, WholeBeats(1), 'D', 1)
	e2 := mustNote(t, WholeBeats(1), 'E', 2)
	s := &fakeScheduler{}
	n := &recordingNotifier{}
	Play(NewRepeat(body, []Music{e1, e2}), s, Beats{}, n)
	s.run()

	letters := ""
	for _, note := range s.notes {
		letters += string(note.pitch.Letter)
	}
	if letters != "CDCE" {
		t.Errorf("played %q, want %q", letters, "CDCE")
	}
	want := []int{0, 1, 0, 2}
	for i, idx := range n.indices {
		if idx != want[i] {
			t.Errorf("notified %v, want %v", n.indices, want)
			break
		}
	}
}

func TestMusicString(t *testing.T) {
	third := TupletScale(3)
	tup, err := NewTuplet(3, []Music{
		mustNote(t, third, 'C', 0),
		mustNote(t, third, 'D', 1),
		mustNote(t, third, 'E', 2),
	})
	if err != nil {
		t.Fatal(err)
	}
	sharp, _ := NewNote(WholeBeats(2), NewPitch('F').Transpose(1).OctaveUp(1), Piano, 0)
	ch, _ := NewChord([]Music{mustNote(t, NewBeats(1, 2), 'C', 0), mustNote(t, NewBeats(1, 2), 'E', 0)}, 0)

	tests := []struct {
		m    Music
		want string
	}{
		{tup, "(3CDE"},
		{sharp, "^f2"},
		{ch, "[C/2E/2]"},
		{mustRest(t, NewBeats(3, 2)), "z3/2"},
		{NewRepeat(mustNote(t, WholeBeats(1), 'G', 0), nil), "|: G :|"},
		{
			NewRepeat(mustNote(t, WholeBeats(1), 'G', 0), []Music{
				mustNote(t, WholeBeats(1), 'A', 0),
				mustNote(t, WholeBeats(1), 'B', 0),
			}),
			"|: G [1 A :| [2 B |",
		},
		{ConcatAll(Silence(), mustNote(t, WholeBeats(1), 'A', 0), mustNote(t, WholeBeats(1), 'B', 0)), "A B"},
	}
	for _, tt := range tests {
		if got := tt.m.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
