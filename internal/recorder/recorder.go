// Package recorder owns the session log and the idle-gap state machine
// that splits a live event stream into discrete recordings.
package recorder

import (
	"sync"
	"time"

	"github.com/miditape/miditape/internal/eventq"
	"github.com/miditape/miditape/sdk/contracts"
)

// DefaultIdleTimeout is the silence threshold, in seconds, after which
// the next incoming event starts a new recording.
const DefaultIdleTimeout = 2.0

// Recorder is the shared control surface of the pipeline: one coarse
// mutex around the whole session state. The monitor goroutine holds the
// lock for the duration of each Receive; UI callers hold it for one
// counter read or one command injection. Critical sections stay small
// so a polling UI is never stalled for more than one event append.
type Recorder struct {
	mu           sync.Mutex
	idleTimeout  float64
	recordings   []*contracts.Recording
	soloDuration *float64
	outgoing     *eventq.Queue[contracts.Event]
	lastEvent    time.Time
	sessionStart time.Time
	portName     string
	liveRoute    contracts.Route
	logger       contracts.Logger

	now func() time.Time // swapped out by tests
}

// New creates a recorder that mirrors accepted events onto outgoing.
// idleTimeout is in seconds; values <= 0 fall back to DefaultIdleTimeout.
func New(idleTimeout float64, outgoing *eventq.Queue[contracts.Event], portName string, logger contracts.Logger) *Recorder {
	if idleTimeout <= 0 {
		idleTimeout = DefaultIdleTimeout
	}
	return &Recorder{
		idleTimeout: idleTimeout,
		outgoing:    outgoing,
		portName:    portName,
		liveRoute:   contracts.RouteBoth,
		logger:      logger,
		now:         time.Now,
	}
}

// Receive accepts one captured event: mirrors a routed copy onto the
// playback queue, then appends the event to the current recording,
// opening a new one first if the session has gone idle.
//
// The mirror push is unconditional and independent of the segmentation
// decision. The two effects share no atomicity: relaying is best-effort
// monitoring, the log is the system of record.
func (r *Recorder) Receive(ev contracts.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	live := ev
	live.Route = r.liveRoute
	r.outgoing.Push(live)

	now := r.now()
	if !r.activelyRecording(now) {
		r.recordings = append(r.recordings, &contracts.Recording{})
		r.sessionStart = now
		if r.logger != nil {
			r.logger.Debug("new recording started",
				r.logger.Field().Int("recording", len(r.recordings)))
		}
	}
	current := r.recordings[len(r.recordings)-1]
	current.Add(now.Sub(r.sessionStart).Seconds(), ev)
	r.lastEvent = now
}

// activelyRecording decides, with the lock held, whether the incoming
// event continues the current recording. True when the log is non-empty
// and either the last stored event is a still-engaged note (non-zero
// velocity) or the silence since the last accepted event is shorter
// than the idle timeout.
//
// The decision is lazy: an idle gap is only ever detected in the past
// tense, when the next event arrives. No background timer closes a
// recording while the performer is silent.
func (r *Recorder) activelyRecording(now time.Time) bool {
	if len(r.recordings) == 0 {
		return false
	}
	last, ok := r.recordings[len(r.recordings)-1].Last()
	if !ok {
		return false
	}
	if _, velocity, isNote := last.Event.NoteVelocity(); isNote && velocity > 0 {
		return true
	}
	return now.Sub(r.lastEvent).Seconds() < r.idleTimeout
}

// Len returns the number of recordings, the in-progress one included.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.recordings)
}

// Recording returns the i-th recording. Out of range is a caller
// contract violation and panics; check Len first. Len and Recording are
// two separate lock acquisitions, so the log may have grown in between
// and callers must re-check bounds after a stale read.
func (r *Recorder) Recording(i int) *contracts.Recording {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recordings[i]
}

// DiscardLast removes the most recent recording. No-op on an empty log.
// Only the last entry is ever removable.
func (r *Recorder) DiscardLast() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.recordings) > 0 {
		r.recordings = r.recordings[:len(r.recordings)-1]
	}
}

// InjectCommand pushes a command straight onto the playback queue,
// bypassing the recording path entirely. Injected commands never appear
// in any recording, and their order relative to concurrently relayed
// events is undefined (see the eventq package).
func (r *Recorder) InjectCommand(ev contracts.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outgoing.Push(ev)
}

// ProgramChange injects an instrument switch for the live output path.
func (r *Recorder) ProgramChange(program byte, route contracts.Route) {
	r.InjectCommand(contracts.NewProgramChange(program, route))
}

// ActivelyRecording reports whether an event arriving now would extend
// the current recording rather than start a new one.
func (r *Recorder) ActivelyRecording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.activelyRecording(r.now())
}

// Soloing reports whether a solo span is in effect.
func (r *Recorder) Soloing() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.soloDuration != nil
}

// BeginSolo marks a solo span of the given duration in seconds.
func (r *Recorder) BeginSolo(duration float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.soloDuration = &duration
}

// EndSolo clears the solo marker.
func (r *Recorder) EndSolo() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.soloDuration = nil
}

// LiveRoute returns the route stamped on mirrored copies.
func (r *Recorder) LiveRoute() contracts.Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.liveRoute
}

// SetLiveRoute changes the route stamped on mirrored copies.
func (r *Recorder) SetLiveRoute(route contracts.Route) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.liveRoute = route
}

// InputPortName returns the name of the device feeding the pipeline.
func (r *Recorder) InputPortName() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.portName
}

// IdleTimeout returns the configured silence threshold in seconds.
func (r *Recorder) IdleTimeout() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.idleTimeout
}
