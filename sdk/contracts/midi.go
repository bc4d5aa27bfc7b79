package contracts

// MIDI represents one raw controller message with a timestamp, command, note, and velocity.
type MIDI struct {
	Timestamp uint64 // Timestamp indicates the time the event occurred (host clock, nanoseconds).
	Command   byte   // Command specifies the type of MIDI event (e.g., Note On, Note Off).
	Note      byte   // Note represents the MIDI note number (0-127), or the program for a Program Change.
	Velocity  byte   // Velocity indicates the strength of the note being played (0-127).
}

// NoteVelocity decodes the message as a note event, ignoring the channel
// nibble of the status byte. ok is false for anything that is not a
// Note On or Note Off. A Note Off is reported with velocity 0; a Note On
// with velocity 0 is a release by MIDI convention, so callers decide
// engagement by velocity alone.
func (m MIDI) NoteVelocity() (note, velocity byte, ok bool) {
	switch m.Command & 0xF0 {
	case byte(NoteOn):
		return m.Note, m.Velocity, true
	case byte(NoteOff):
		return m.Note, 0, true
	}
	return 0, 0, false
}

// IsProgramChange reports whether the message is a Program Change on any channel.
func (m MIDI) IsProgramChange() bool {
	return m.Command&0xF0 == byte(ProgramChange)
}

// Event is one performer message plus its routing hint. Events are
// immutable values: the capture stage produces each one once, and
// copies of it may travel on any number of queues without shared
// ownership between stages.
type Event struct {
	MIDI
	Route Route
}

// NewProgramChange builds the out-of-band instrument switch command
// that bypasses the recording path and goes straight to the output
// stage.
func NewProgramChange(program byte, route Route) Event {
	return Event{
		MIDI:  MIDI{Command: byte(ProgramChange), Note: program},
		Route: route,
	}
}

// ClientMIDI defines an interface for MIDI input client operations.
type ClientMIDI interface {
	Stop() error                         // Stops the MIDI client and releases resources.
	ListDevices() ([]DeviceInfo, error)  // Lists all available MIDI input devices.
	SelectDevice(deviceID int) error     // Selects a MIDI device by its ID for communication.
	StartCapture(eventChannel chan MIDI) // Starts capturing MIDI events and sends them to the specified channel.
}

// Sink consumes events drained from the playback queue and turns them
// into sound. Delivery past the playback queue is best-effort: a Sink
// may drop or coalesce under saturation, and Play errors are logged by
// the playback stage, never propagated back through the pipeline.
type Sink interface {
	Play(Event) error
	Close() error
}
