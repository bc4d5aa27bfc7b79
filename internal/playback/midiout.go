// Package playback provides the output-path collaborators fed by the
// playback stage. Voice allocation and actual sound generation belong
// to whatever sits behind the MIDI out port; this package only
// translates events into wire messages.
package playback

import (
	"errors"
	"fmt"
	"strings"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // register MIDI driver

	"github.com/miditape/miditape/sdk/contracts"
)

// ErrNoOutputPorts is returned when the host exposes no MIDI output at all.
var ErrNoOutputPorts = errors.New("no MIDI output ports available")

// PortSink renders events by sending them to a system MIDI out port,
// typically backed by a software synth. Note events are re-emitted on a
// fixed channel; program changes pass through as instrument switches;
// anything unrecognized is forwarded opaquely, byte for byte.
type PortSink struct {
	port    drivers.Out
	send    func(gomidi.Message) error
	channel uint8
	logger  contracts.Logger
}

// OpenPortSink opens the out port whose name contains name
// (case-insensitive), or the first available port when name is empty.
// Failure here is fatal to startup when an output path was requested.
func OpenPortSink(name string, channel uint8, logger contracts.Logger) (*PortSink, error) {
	outs := gomidi.GetOutPorts()
	if len(outs) == 0 {
		return nil, ErrNoOutputPorts
	}
	port := outs[0]
	if name != "" {
		found := false
		for _, out := range outs {
			if strings.Contains(strings.ToLower(out.String()), strings.ToLower(name)) {
				port = out
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("no MIDI output port matching %q", name)
		}
	}
	if err := port.Open(); err != nil {
		return nil, fmt.Errorf("open output port %q: %w", port.String(), err)
	}
	send, err := gomidi.SendTo(port)
	if err != nil {
		return nil, fmt.Errorf("attach sender to %q: %w", port.String(), err)
	}
	if logger != nil {
		logger.Info("output port opened",
			logger.Field().String("port", port.String()))
	}
	return &PortSink{port: port, send: send, channel: channel, logger: logger}, nil
}

// PortName returns the name of the open out port.
func (s *PortSink) PortName() string {
	return s.port.String()
}

// Play translates one event to a wire message and sends it.
func (s *PortSink) Play(ev contracts.Event) error {
	if ev.Route == contracts.RouteNone {
		return nil
	}
	if note, velocity, ok := ev.NoteVelocity(); ok {
		if velocity > 0 {
			return s.send(gomidi.NoteOn(s.channel, note, velocity))
		}
		return s.send(gomidi.NoteOff(s.channel, note))
	}
	if ev.IsProgramChange() {
		return s.send(gomidi.ProgramChange(s.channel, ev.Note))
	}
	// Opaque passthrough: validation is not this component's job.
	return s.send(gomidi.Message{ev.Command, ev.Note, ev.Velocity})
}

// Close releases the out port.
func (s *PortSink) Close() error {
	return s.port.Close()
}

// OutPortNames lists the MIDI output ports currently visible, for the
// devices command.
func OutPortNames() []string {
	outs := gomidi.GetOutPorts()
	names := make([]string, len(outs))
	for i, out := range outs {
		names[i] = out.String()
	}
	return names
}
