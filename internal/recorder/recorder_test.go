package recorder

import (
	"testing"
	"time"

	"github.com/miditape/miditape/internal/eventq"
	"github.com/miditape/miditape/internal/logger"
	"github.com/miditape/miditape/sdk/contracts"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time {
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.t = c.t.Add(d)
}

func newTestRecorder(timeout float64) (*Recorder, *eventq.Queue[contracts.Event], *fakeClock) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	outgoing := eventq.New[contracts.Event]()
	rec := New(timeout, outgoing, "Test Keyboard", logger.Nop())
	rec.now = clock.now
	return rec, outgoing, clock
}

func noteOn(note, velocity byte) contracts.Event {
	return contracts.Event{MIDI: contracts.MIDI{Command: 0x90, Note: note, Velocity: velocity}}
}

func noteOff(note byte) contracts.Event {
	return contracts.Event{MIDI: contracts.MIDI{Command: 0x80, Note: note}}
}

func drain(q *eventq.Queue[contracts.Event]) []contracts.Event {
	var out []contracts.Event
	for {
		ev, ok := q.Pop()
		if !ok {
			return out
		}
		out = append(out, ev)
	}
}

func TestEventsWithinTimeoutShareOneRecording(t *testing.T) {
	rec, _, clock := newTestRecorder(2.0)

	rec.Receive(noteOn(60, 100))
	clock.advance(500 * time.Millisecond)
	rec.Receive(noteOff(60))
	clock.advance(time.Second)
	rec.Receive(noteOn(62, 90))

	if got := rec.Len(); got != 1 {
		t.Fatalf("Len() = %d, want 1", got)
	}
	r := rec.Recording(0)
	if r.Len() != 3 {
		t.Fatalf("recording has %d events, want 3", r.Len())
	}
	wantElapsed := []float64{0.0, 0.5, 1.5}
	for i, want := range wantElapsed {
		if got := r.At(i).Elapsed; got != want {
			t.Errorf("event %d elapsed = %v, want %v", i, got, want)
		}
	}
}

func TestGapAfterReleaseStartsNewRecording(t *testing.T) {
	rec, _, clock := newTestRecorder(2.0)

	// A: engage at t=0.0 -> opens recording 1, elapsed 0.0.
	rec.Receive(noteOn(60, 100))
	// B: release at t=0.5 -> still recording 1, elapsed 0.5.
	clock.advance(500 * time.Millisecond)
	rec.Receive(noteOff(60))
	// C: engage at t=3.0, a 2.5s gap after a release -> recording 2, elapsed 0.0.
	clock.advance(2500 * time.Millisecond)
	rec.Receive(noteOn(64, 80))

	if got := rec.Len(); got != 2 {
		t.Fatalf("Len() = %d, want 2", got)
	}
	first := rec.Recording(0)
	if first.Len() != 2 || first.At(0).Elapsed != 0.0 || first.At(1).Elapsed != 0.5 {
		t.Errorf("first recording wrong: %d events, elapsed %v %v",
			first.Len(), first.At(0).Elapsed, first.At(1).Elapsed)
	}
	second := rec.Recording(1)
	if second.Len() != 1 || second.At(0).Elapsed != 0.0 {
		t.Errorf("second recording wrong: %d events, elapsed %v",
			second.Len(), second.At(0).Elapsed)
	}
}

func TestHeldNoteBridgesAnyGap(t *testing.T) {
	rec, _, clock := newTestRecorder(2.0)

	rec.Receive(noteOn(60, 100))
	clock.advance(10 * time.Second) // silent, but the note is still engaged
	rec.Receive(noteOff(60))

	if got := rec.Len(); got != 1 {
		t.Fatalf("Len() = %d, want 1", got)
	}
	if got := rec.Recording(0).At(1).Elapsed; got != 10.0 {
		t.Errorf("release elapsed = %v, want 10.0", got)
	}
}

func TestEventsInArrivalOrder(t *testing.T) {
	rec, _, clock := newTestRecorder(2.0)

	notes := []byte{60, 64, 67, 72}
	for _, n := range notes {
		rec.Receive(noteOn(n, 100))
		rec.Receive(noteOff(n))
		clock.advance(100 * time.Millisecond)
	}

	r := rec.Recording(0)
	if r.Len() != len(notes)*2 {
		t.Fatalf("recording has %d events, want %d", r.Len(), len(notes)*2)
	}
	for i, n := range notes {
		if got := r.At(2 * i).Event.Note; got != n {
			t.Errorf("event %d note = %d, want %d", 2*i, got, n)
		}
	}
}

func TestDiscardLast(t *testing.T) {
	rec, _, clock := newTestRecorder(2.0)

	rec.Receive(noteOn(60, 100))
	rec.Receive(noteOff(60))
	clock.advance(3 * time.Second)
	rec.Receive(noteOn(62, 100))

	if got := rec.Len(); got != 2 {
		t.Fatalf("Len() = %d, want 2", got)
	}
	rec.DiscardLast()
	if got := rec.Len(); got != 1 {
		t.Fatalf("after first discard Len() = %d, want 1", got)
	}
	rec.DiscardLast()
	if got := rec.Len(); got != 0 {
		t.Fatalf("after second discard Len() = %d, want 0", got)
	}
	rec.DiscardLast() // no-op on empty log
	if got := rec.Len(); got != 0 {
		t.Fatalf("discard on empty log changed Len() to %d", got)
	}
}

func TestEveryAcceptedEventIsMirrored(t *testing.T) {
	rec, outgoing, clock := newTestRecorder(2.0)
	rec.SetLiveRoute(contracts.RouteLeft)

	// Mix of continuing events and a session boundary; the mirror is
	// unconditional either way.
	rec.Receive(noteOn(60, 100))
	rec.Receive(noteOff(60))
	clock.advance(5 * time.Second)
	rec.Receive(noteOn(62, 100))

	mirrored := drain(outgoing)
	if len(mirrored) != 3 {
		t.Fatalf("mirrored %d events, want 3", len(mirrored))
	}
	for i, ev := range mirrored {
		if ev.Route != contracts.RouteLeft {
			t.Errorf("mirrored event %d route = %v, want left", i, ev.Route)
		}
	}
	// The stored copies keep their original route.
	if got := rec.Recording(0).At(0).Event.Route; got != contracts.RouteNone {
		t.Errorf("stored event route = %v, want none", got)
	}
}

func TestInjectedCommandsBypassTheLog(t *testing.T) {
	rec, outgoing, _ := newTestRecorder(2.0)

	rec.Receive(noteOn(60, 100))
	rec.ProgramChange(5, contracts.RouteBoth)
	rec.InjectCommand(contracts.NewProgramChange(9, contracts.RouteRight))

	if got := rec.Len(); got != 1 {
		t.Fatalf("Len() = %d, want 1", got)
	}
	r := rec.Recording(0)
	for i := 0; i < r.Len(); i++ {
		if r.At(i).Event.IsProgramChange() {
			t.Errorf("injected command leaked into recording at %d", i)
		}
	}
	out := drain(outgoing)
	if len(out) != 3 {
		t.Fatalf("outgoing has %d events, want 3", len(out))
	}
	if !out[1].IsProgramChange() || out[1].Note != 5 {
		t.Errorf("second outgoing event = %+v, want program change 5", out[1])
	}
	if out[2].Route != contracts.RouteRight {
		t.Errorf("injected route = %v, want right", out[2].Route)
	}
}

func TestActivelyRecordingProbe(t *testing.T) {
	rec, _, clock := newTestRecorder(2.0)

	if rec.ActivelyRecording() {
		t.Fatal("empty log reported as actively recording")
	}
	rec.Receive(noteOn(60, 100))
	clock.advance(time.Hour)
	if !rec.ActivelyRecording() {
		t.Fatal("held note not reported as actively recording")
	}
	rec.Receive(noteOff(60))
	clock.advance(time.Second)
	if !rec.ActivelyRecording() {
		t.Fatal("recent release within timeout reported idle")
	}
	clock.advance(5 * time.Second)
	if rec.ActivelyRecording() {
		t.Fatal("stale release reported as actively recording")
	}
}

func TestSoloToggle(t *testing.T) {
	rec, _, _ := newTestRecorder(2.0)

	if rec.Soloing() {
		t.Fatal("fresh recorder reports soloing")
	}
	rec.BeginSolo(4.0)
	if !rec.Soloing() {
		t.Fatal("BeginSolo did not take effect")
	}
	rec.EndSolo()
	if rec.Soloing() {
		t.Fatal("EndSolo did not take effect")
	}
}

func TestInputPortName(t *testing.T) {
	rec, _, _ := newTestRecorder(2.0)
	if got := rec.InputPortName(); got != "Test Keyboard" {
		t.Errorf("InputPortName() = %q", got)
	}
}

func TestZeroTimeoutFallsBackToDefault(t *testing.T) {
	rec, _, _ := newTestRecorder(0)
	if got := rec.IdleTimeout(); got != DefaultIdleTimeout {
		t.Errorf("IdleTimeout() = %v, want %v", got, DefaultIdleTimeout)
	}
}
