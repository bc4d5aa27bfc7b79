package midi

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/miditape/miditape/internal/midi/mididarwin"
	"github.com/miditape/miditape/internal/midi/midirt"
	"github.com/miditape/miditape/internal/midi/midiwindows"
	"github.com/miditape/miditape/sdk/contracts"
)

// ErrUnsupportedOS is returned when the operating system is not supported by the MIDI client.
var ErrUnsupportedOS = errors.New("unsupported operating system")

// clientInitializers maps OS names to corresponding MIDI client initializers.
var clientInitializers = map[string]func(*contracts.ClientOptions) (contracts.ClientMIDI, error){
	"darwin":  mididarwin.NewMIDIClient,  // macOS CoreMIDI client.
	"windows": midiwindows.NewMIDIClient, // Windows winmm client.
	"linux":   midirt.NewMIDIClient,      // rtmidi (ALSA) client.
}

// NewClient initializes a MIDI input client based on the current
// operating system, returning ErrUnsupportedOS when there is none.
func NewClient(opts *contracts.ClientOptions) (contracts.ClientMIDI, error) {
	if initializer, exists := clientInitializers[runtime.GOOS]; exists {
		return initializer(opts)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedOS, runtime.GOOS)
}
