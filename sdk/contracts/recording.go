package contracts

// TimestampedEvent is one event stamped with the seconds elapsed since
// the start of the recording that holds it, not wall-clock time. The
// recorder goroutine stamps sequentially, so elapsed times within one
// recording are monotonic in practice; nothing here assumes ordering
// across events queued concurrently by independent producers.
type TimestampedEvent struct {
	Elapsed float64
	Event   Event
}

// Recording is one contiguous span of performance, bounded by idle
// gaps. It is append-only: the session recorder appends to the current
// (last) recording and every earlier recording is effectively closed.
type Recording struct {
	events []TimestampedEvent
}

// Add appends an event with the given elapsed time.
func (r *Recording) Add(elapsed float64, ev Event) {
	r.events = append(r.events, TimestampedEvent{Elapsed: elapsed, Event: ev})
}

// Len returns the number of events in the recording.
func (r *Recording) Len() int {
	return len(r.events)
}

// At returns the i-th event. Out-of-range indices panic; callers check
// Len first, same contract as the recorder's own index operation.
func (r *Recording) At(i int) TimestampedEvent {
	return r.events[i]
}

// Last returns the most recently appended event, or ok=false if the
// recording is empty.
func (r *Recording) Last() (TimestampedEvent, bool) {
	if len(r.events) == 0 {
		return TimestampedEvent{}, false
	}
	return r.events[len(r.events)-1], true
}

// Events returns a copy of the event sequence, safe to hold after the
// control surface lock is released.
func (r *Recording) Events() []TimestampedEvent {
	out := make([]TimestampedEvent, len(r.events))
	copy(out, r.events)
	return out
}
