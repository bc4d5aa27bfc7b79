// Package pipeline runs the three long-lived stage loops: capture in,
// monitor/record, play out. Every loop polls a shared quit flag once
// per iteration; shutdown is cooperative, never forced. A goroutine
// parked inside a foreign transport read cannot observe the flag until
// the transport's own stop hook releases it, which is an accepted
// limitation of the design.
package pipeline

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/miditape/miditape/internal/eventq"
	"github.com/miditape/miditape/internal/recorder"
	"github.com/miditape/miditape/sdk/contracts"
)

// idlePoll is how long a stage sleeps when its queue is empty. Short
// enough for real-time monitoring, long enough not to spin a core.
const idlePoll = time.Millisecond

// RunCapture bridges the input client's event channel to the capture
// queue, tagging each message with the configured route. Returns when
// quit is set or the event channel is closed by the transport.
func RunCapture(events <-chan contracts.MIDI, out *eventq.Queue[contracts.Event], route contracts.Route, quit *atomic.Bool) {
	ticker := time.NewTicker(idlePoll)
	defer ticker.Stop()
	for !quit.Load() {
		select {
		case m, ok := <-events:
			if !ok {
				return
			}
			out.Push(contracts.Event{MIDI: m, Route: route})
		case <-ticker.C:
			// fall through to the quit check
		}
	}
}

// RunMonitor drains the capture queue into the recorder. Each accepted
// event is handed to Receive, which mirrors it to the playback queue
// and updates the session log under the control surface lock.
func RunMonitor(in *eventq.Queue[contracts.Event], rec *recorder.Recorder, quit *atomic.Bool) {
	for !quit.Load() {
		ev, ok := in.Pop()
		if !ok {
			time.Sleep(idlePoll)
			continue
		}
		rec.Receive(ev)
	}
}

// RunPlayback drains the playback queue into the sink. Sink errors are
// logged and dropped: delivery past the queue is best-effort and must
// never stall the monitoring path.
func RunPlayback(out *eventq.Queue[contracts.Event], sink contracts.Sink, logger contracts.Logger, quit *atomic.Bool) {
	for !quit.Load() {
		ev, ok := out.Pop()
		if !ok {
			time.Sleep(idlePoll)
			continue
		}
		if err := sink.Play(ev); err != nil && logger != nil {
			logger.Warn("sink rejected event",
				logger.Field().Uint8("command", ev.Command),
				logger.Field().Error("error", err))
		}
	}
}

// Spawn runs fn on its own goroutine tracked by wg.
func Spawn(wg *sync.WaitGroup, fn func()) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		fn()
	}()
}
