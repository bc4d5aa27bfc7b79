//go:build !windows
// +build !windows

package midiwindows

import (
	"fmt"

	"github.com/miditape/miditape/sdk/contracts"
)

type dummyClient struct {
	logger contracts.Logger
}

// NewMIDIClient returns a stub for non-Windows builds so the package
// always compiles; the factory never selects it off-platform.
func NewMIDIClient(options *contracts.ClientOptions) (contracts.ClientMIDI, error) {
	options.Logger.Info("using dummy MIDI client for non-Windows system")
	return &dummyClient{logger: options.Logger}, nil
}

func (c *dummyClient) ListDevices() ([]contracts.DeviceInfo, error) {
	c.logger.Warn("ListDevices called on dummy MIDI client")
	return nil, fmt.Errorf("winmm is not available on this platform")
}

func (c *dummyClient) SelectDevice(deviceID int) error {
	c.logger.Warn("SelectDevice called on dummy MIDI client")
	return fmt.Errorf("winmm is not available on this platform")
}

func (c *dummyClient) StartCapture(eventChannel chan contracts.MIDI) {
	c.logger.Warn("StartCapture called on dummy MIDI client")
}

func (c *dummyClient) Stop() error {
	return nil
}
