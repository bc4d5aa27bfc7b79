package contracts

import "testing"

func TestNoteVelocityDecodesAnyChannel(t *testing.T) {
	on := MIDI{Command: 0x93, Note: 64, Velocity: 100} // note on, channel 3
	note, velocity, ok := on.NoteVelocity()
	if !ok || note != 64 || velocity != 100 {
		t.Fatalf("NoteVelocity(on) = %d, %d, %v", note, velocity, ok)
	}

	off := MIDI{Command: 0x85, Note: 64, Velocity: 40} // note off, channel 5
	note, velocity, ok = off.NoteVelocity()
	if !ok || note != 64 || velocity != 0 {
		t.Fatalf("NoteVelocity(off) = %d, %d, %v; want velocity 0", note, velocity, ok)
	}
}

func TestNoteVelocityRejectsNonNotes(t *testing.T) {
	cc := MIDI{Command: 0xB0, Note: 7, Velocity: 127} // control change
	if _, _, ok := cc.NoteVelocity(); ok {
		t.Fatal("NoteVelocity accepted a control change")
	}
}

func TestNewProgramChange(t *testing.T) {
	ev := NewProgramChange(12, RouteRight)
	if !ev.IsProgramChange() {
		t.Fatal("NewProgramChange result not recognized as program change")
	}
	if ev.Note != 12 || ev.Route != RouteRight {
		t.Fatalf("program change = %+v", ev)
	}
	if _, _, ok := ev.NoteVelocity(); ok {
		t.Fatal("program change decoded as a note")
	}
}

func TestParseRoute(t *testing.T) {
	cases := map[string]Route{
		"none":    RouteNone,
		"left":    RouteLeft,
		"right":   RouteRight,
		"both":    RouteBoth,
		"garbage": RouteBoth,
		"":        RouteBoth,
	}
	for in, want := range cases {
		if got := ParseRoute(in); got != want {
			t.Errorf("ParseRoute(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestRecordingAppendAndAccess(t *testing.T) {
	var r Recording
	if _, ok := r.Last(); ok {
		t.Fatal("Last on empty recording reported ok")
	}
	r.Add(0.0, Event{MIDI: MIDI{Command: 0x90, Note: 60, Velocity: 90}})
	r.Add(1.25, Event{MIDI: MIDI{Command: 0x80, Note: 60}})

	if r.Len() != 2 {
		t.Fatalf("Len = %d, want 2", r.Len())
	}
	last, ok := r.Last()
	if !ok || last.Elapsed != 1.25 {
		t.Fatalf("Last = %+v, %v", last, ok)
	}

	// Events returns a copy the caller can hold without the lock.
	events := r.Events()
	events[0].Elapsed = 99
	if r.At(0).Elapsed != 0.0 {
		t.Fatal("Events() exposed internal storage")
	}
}
