// Package midirt implements the MIDI input client over the rtmidi
// driver of gomidi, covering platforms without a native client (ALSA
// on Linux in particular).
package midirt

import (
	"errors"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // register MIDI driver

	"github.com/miditape/miditape/sdk/contracts"
)

var (
	ErrNoMIDIDevices     = errors.New("no MIDI devices found")
	ErrInvalidMIDIDevice = errors.New("invalid MIDI device")
	ErrNoDeviceSelected  = errors.New("no MIDI device selected")
)

// Client manages MIDI capture through a gomidi in port.
type Client struct {
	logger contracts.Logger
	filter *contracts.MIDIEventFilter

	mu        sync.Mutex
	port      drivers.In
	stop      func()
	capturing bool

	chmu         sync.RWMutex
	eventChannel chan contracts.MIDI
}

// NewMIDIClient creates the rtmidi-backed input client.
func NewMIDIClient(options *contracts.ClientOptions) (contracts.ClientMIDI, error) {
	options.Logger.Info("rtmidi client created")
	return &Client{
		logger: options.Logger,
		filter: options.MIDIEventFilter,
	}, nil
}

// ListDevices enumerates the in ports the driver can see. Zero ports is
// an error: the pipeline has no degraded capture-less mode.
func (c *Client) ListDevices() ([]contracts.DeviceInfo, error) {
	ins := gomidi.GetInPorts()
	if len(ins) == 0 {
		c.logger.Warn(ErrNoMIDIDevices.Error())
		return nil, ErrNoMIDIDevices
	}
	devices := make([]contracts.DeviceInfo, len(ins))
	for i, in := range ins {
		devices[i] = contracts.DeviceInfo{
			Name:       in.String(),
			EntityName: in.String(),
		}
	}
	return devices, nil
}

// SelectDevice starts listening on the in port at deviceID,
// disconnecting any previously selected port first.
func (c *Client) SelectDevice(deviceID int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	ins := gomidi.GetInPorts()
	if deviceID < 0 || deviceID >= len(ins) {
		c.logger.Error(ErrInvalidMIDIDevice.Error())
		return ErrInvalidMIDIDevice
	}
	if c.stop != nil {
		c.stop()
		c.stop = nil
	}

	port := ins[deviceID]
	stop, err := gomidi.ListenTo(port, c.handleMessage)
	if err != nil {
		return err
	}
	c.port = port
	c.stop = stop
	c.logger.Info("MIDI device connected",
		c.logger.Field().Int("deviceID", deviceID),
		c.logger.Field().String("deviceName", port.String()))
	return nil
}

// handleMessage runs on the driver's listener goroutine. Short messages
// are forwarded as-is; a full channel drops the event rather than
// blocking the driver.
func (c *Client) handleMessage(msg gomidi.Message, timestampms int32) {
	c.chmu.RLock()
	ch := c.eventChannel
	c.chmu.RUnlock()
	if ch == nil || len(msg) < 2 {
		return
	}

	event := contracts.MIDI{
		Timestamp: uint64(time.Now().UTC().UnixNano()),
		Command:   msg[0],
		Note:      msg[1],
	}
	if len(msg) >= 3 {
		event.Velocity = msg[2]
	}
	if c.filter != nil && !commandAllowed(event.Command, c.filter.Commands) {
		return
	}
	select {
	case ch <- event:
	default:
		c.logger.Warn("event buffer full; dropping MIDI event")
	}
}

func commandAllowed(command byte, allowed []contracts.MIDICommand) bool {
	for _, a := range allowed {
		if command&0xF0 == byte(a) {
			return true
		}
	}
	return false
}

// StartCapture publishes the event channel so the listener starts
// forwarding messages.
func (c *Client) StartCapture(eventChannel chan contracts.MIDI) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if eventChannel == nil {
		c.logger.Error("StartCapture called with nil eventChannel")
		return
	}
	if c.capturing {
		c.logger.Warn("capture already started")
		return
	}
	c.chmu.Lock()
	c.eventChannel = eventChannel
	c.chmu.Unlock()
	c.capturing = true
	c.logger.Info("starting MIDI event capture")
}

// Stop detaches the listener and releases the port.
func (c *Client) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stop != nil {
		c.stop()
		c.stop = nil
	}
	c.chmu.Lock()
	c.eventChannel = nil
	c.chmu.Unlock()
	c.capturing = false
	c.logger.Info("MIDI capture stopped")
	return nil
}
