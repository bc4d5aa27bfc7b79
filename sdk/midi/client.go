package midi

import (
	"github.com/miditape/miditape/sdk/contracts"
)

// NewMIDIClient creates a new MIDI input client with the specified
// options. Defaults are applied for anything not provided, then the
// platform client is selected by operating system.
//
// Returns:
//   - contracts.ClientMIDI: An instance of the MIDI client.
//   - error: An error, if any occurred during the creation of the client.
func NewMIDIClient(opts ...contracts.Option) (contracts.ClientMIDI, error) {
	options, err := applyDefaultOptions(opts...)
	if err != nil {
		return nil, err
	}

	client, err := NewClient(&options)
	if err != nil {
		return nil, err
	}

	return client, nil
}
